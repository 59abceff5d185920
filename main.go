package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Imohh/portfolio-backend/internal/config"
	"github.com/Imohh/portfolio-backend/internal/db"
	"github.com/Imohh/portfolio-backend/internal/handlers"
	"github.com/Imohh/portfolio-backend/internal/media"
	appmiddleware "github.com/Imohh/portfolio-backend/internal/middleware"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	store, err := db.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer store.Close()

	// Create tables if not exist
	conn, err := store.Pool().Acquire(ctx)
	if err != nil {
		log.Fatalf("failed to acquire db connection: %v", err)
	}
	defer conn.Release()

	adminsTableSQL := `CREATE TABLE IF NOT EXISTS admins (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    email TEXT NOT NULL UNIQUE,
	    password_hash TEXT NOT NULL,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	_, err = conn.Exec(ctx, adminsTableSQL)
	if err != nil {
		log.Fatalf("failed to create admins table: %v", err)
	}

	postsTableSQL := `CREATE TABLE IF NOT EXISTS posts (
	    id TEXT PRIMARY KEY,
	    name TEXT NOT NULL,
	    author TEXT NOT NULL,
	    date TEXT NOT NULL DEFAULT '',
	    slug TEXT NOT NULL UNIQUE,
	    summary TEXT,
	    cover_image TEXT,
	    content JSONB NOT NULL,
	    content_type TEXT,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	_, err = conn.Exec(ctx, postsTableSQL)
	if err != nil {
		log.Fatalf("failed to create posts table: %v", err)
	}

	commentsTableSQL := `CREATE TABLE IF NOT EXISTS comments (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    slug TEXT NOT NULL,
	    name TEXT NOT NULL,
	    email TEXT NOT NULL,
	    text TEXT NOT NULL,
	    website TEXT,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS comments_slug_idx ON comments (slug);`
	_, err = conn.Exec(ctx, commentsTableSQL)
	if err != nil {
		log.Fatalf("failed to create comments table: %v", err)
	}

	uploader, err := media.NewS3Uploader(ctx, cfg)
	if err != nil {
		log.Fatalf("media uploader init failed: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	adminHandler := handlers.NewAdminHandler(store, []byte(cfg.JWTSecret))
	postsHandler := handlers.NewPostsHandler(store, uploader)
	commentsHandler := handlers.NewCommentsHandler(store)

	r.Get("/", handlers.Root)

	// In-memory rate limiter: 5 credential attempts per minute per IP
	credentialLimiter := appmiddleware.NewRateLimiter(5, time.Minute)
	r.Route("/admin", func(r chi.Router) {
		r.With(credentialLimiter.Limit).Post("/register", adminHandler.Register)
		r.With(credentialLimiter.Limit).Post("/login", adminHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.AdminAuth(store, []byte(cfg.JWTSecret)))
			r.Get("/me", adminHandler.Me)
		})
	})

	r.Route("/post", func(r chi.Router) {
		r.Post("/", postsHandler.Create)
		r.Get("/", postsHandler.List)
		r.Put("/", postsHandler.Update)
		r.Get("/{slug}", postsHandler.GetBySlug)
		r.Delete("/{id}", postsHandler.Delete)

		r.Post("/{slug}/comment", commentsHandler.Add)
		r.Get("/{slug}/comments", commentsHandler.List)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
