package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Imohh/portfolio-backend/internal/media"
	"github.com/Imohh/portfolio-backend/internal/models"
)

const testSecret = "test-secret"

// fakeStore is an in-memory stand-in for db.Store with a deterministic
// clock so ordering assertions are stable.
type fakeStore struct {
	mu       sync.Mutex
	admins   []models.Admin
	posts    []models.Post
	comments []models.Comment
	clock    time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) CreateAdmin(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.tick()
	admin := models.Admin{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.admins = append(f.admins, admin)
	out := admin
	return &out, nil
}

func (f *fakeStore) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Email == email {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetAdminByID(ctx context.Context, id string) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.ID == id {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.tick()
	post.CreatedAt = now
	post.UpdatedAt = now
	f.posts = append(f.posts, post)
	out := post
	return &out, nil
}

func (f *fakeStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Post, len(f.posts))
	copy(out, f.posts)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == slug {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.posts {
		if p.ID == post.ID {
			p.Name = post.Name
			p.Summary = post.Summary
			p.CoverImage = post.CoverImage
			p.Content = post.Content
			p.ContentType = post.ContentType
			p.UpdatedAt = f.tick()
			f.posts[i] = p
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) DeletePost(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.posts {
		if p.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.tick()
	comment.ID = uuid.New().String()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	f.comments = append(f.comments, comment)
	out := comment
	return &out, nil
}

func (f *fakeStore) ListCommentsBySlug(ctx context.Context, slug string) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Comment, 0)
	for _, c := range f.comments {
		if c.Slug == slug {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// fakeUploader mints deterministic durable URLs; URIs listed in failOn
// error out instead.
type fakeUploader struct {
	mu     sync.Mutex
	calls  int
	failOn map[string]bool
}

func (f *fakeUploader) Upload(ctx context.Context, folder, dataURI string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[dataURI] {
		return "", errors.New("upload failed")
	}
	f.calls++
	return "https://cdn.example.com/" + folder + "/upload-" + strconv.Itoa(f.calls) + ".png", nil
}

func newTestRouter(store *fakeStore, uploader media.Uploader) http.Handler {
	admin := NewAdminHandler(store, []byte(testSecret))
	posts := NewPostsHandler(store, uploader)
	comments := NewCommentsHandler(store)

	r := chi.NewRouter()
	r.Get("/", Root)
	r.Post("/admin/register", admin.Register)
	r.Post("/admin/login", admin.Login)
	r.Route("/post", func(r chi.Router) {
		r.Post("/", posts.Create)
		r.Get("/", posts.List)
		r.Put("/", posts.Update)
		r.Get("/{slug}", posts.GetBySlug)
		r.Delete("/{id}", posts.Delete)
		r.Post("/{slug}/comment", comments.Add)
		r.Get("/{slug}/comments", comments.List)
	})
	return r
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}
