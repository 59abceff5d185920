package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/Imohh/portfolio-backend/internal/auth"
	"github.com/Imohh/portfolio-backend/internal/middleware"
	"github.com/Imohh/portfolio-backend/internal/models"
)

// AdminStore is the slice of the store the auth flow needs.
type AdminStore interface {
	CreateAdmin(ctx context.Context, email, passwordHash string) (*models.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type AdminHandler struct {
	store  AdminStore
	secret []byte
}

func NewAdminHandler(store AdminStore, secret []byte) *AdminHandler {
	return &AdminHandler{store: store, secret: secret}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register creates a new admin and returns a session token.
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password required")
		return
	}

	existing, err := h.store.GetAdminByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("register db error: %v", err)
		respondError(w, http.StatusInternalServerError, "db error")
		return
	}
	if existing != nil {
		respondError(w, http.StatusBadRequest, "Admin exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create admin")
		return
	}
	admin, err := h.store.CreateAdmin(r.Context(), req.Email, hash)
	if err != nil {
		log.Printf("register db error: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create admin")
		return
	}

	token, err := auth.GenerateToken(admin.ID, h.secret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "token error")
		return
	}
	respondJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

// Login verifies credentials and returns a fresh session token. Unknown email
// and wrong password are indistinguishable to the caller.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password required")
		return
	}

	admin, err := h.store.GetAdminByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("login db error: %v", err)
		respondError(w, http.StatusInternalServerError, "db error")
		return
	}
	if admin == nil || !auth.CheckPassword(admin.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(admin.ID, h.secret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "token error")
		return
	}
	respondJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Me returns the admin resolved by the auth gate.
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, admin)
}
