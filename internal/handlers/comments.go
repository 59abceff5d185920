package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Imohh/portfolio-backend/internal/models"
)

// CommentStore is the slice of the store the comment handlers need.
type CommentStore interface {
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)
	ListCommentsBySlug(ctx context.Context, slug string) ([]models.Comment, error)
}

type CommentsHandler struct {
	store CommentStore
}

func NewCommentsHandler(store CommentStore) *CommentsHandler {
	return &CommentsHandler{store: store}
}

type addCommentRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Text    string `json:"text"`
	Website string `json:"website"`
}

// isValidEmail applies the same syntactic check the API has always used:
// local part and domain separated by one @, a dot in the domain, no
// whitespace anywhere.
func isValidEmail(email string) bool {
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	if strings.Contains(domain, "@") {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	return true
}

// Add appends a comment to a post's slug and returns the refreshed list,
// newest first. The slug is not checked against existing posts.
func (h *CommentsHandler) Add(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Text == "" {
		respondError(w, http.StatusBadRequest, "Name, email, and text are required")
		return
	}
	if !isValidEmail(req.Email) {
		respondError(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	if _, err := h.store.CreateComment(r.Context(), models.Comment{
		Slug:    slug,
		Name:    req.Name,
		Email:   req.Email,
		Text:    req.Text,
		Website: req.Website,
	}); err != nil {
		log.Printf("add comment db error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to add comment")
		return
	}

	comments, err := h.store.ListCommentsBySlug(r.Context(), slug)
	if err != nil {
		log.Printf("list comments db error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to add comment")
		return
	}
	respondJSON(w, http.StatusCreated, comments)
}

// List returns all comments for a slug, newest first. An unknown slug is an
// empty list, never a 404.
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	comments, err := h.store.ListCommentsBySlug(r.Context(), slug)
	if err != nil {
		log.Printf("list comments db error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}
	respondJSON(w, http.StatusOK, comments)
}
