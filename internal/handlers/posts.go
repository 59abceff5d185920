package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Imohh/portfolio-backend/internal/media"
	"github.com/Imohh/portfolio-backend/internal/models"
)

// Upload folders on the media host.
const (
	coverImageFolder = "portfolio-blog-covers"
	blockImageFolder = "portfolio-blog"
)

// PostStore is the slice of the store the post handlers need.
type PostStore interface {
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	UpdatePost(ctx context.Context, post models.Post) (*models.Post, error)
	DeletePost(ctx context.Context, id string) (bool, error)
}

type PostsHandler struct {
	store    PostStore
	uploader media.Uploader
}

func NewPostsHandler(store PostStore, uploader media.Uploader) *PostsHandler {
	return &PostsHandler{store: store, uploader: uploader}
}

const (
	blockSkipped  = "skipped"
	blockUploaded = "uploaded"
	blockFellBack = "fell_back"
)

// blockResult records the externalization outcome for one content block, so
// partial upload failures are observable instead of silent.
type blockResult struct {
	Index  int
	Status string
	Err    error
}

// externalizeBlocks uploads every inline image block to the media host. The
// uploads run concurrently and the output keeps input order. A failed upload
// is non-fatal: the block keeps its inline payload and its result is tagged
// fell_back.
func externalizeBlocks(ctx context.Context, uploader media.Uploader, blocks []models.ContentBlock) ([]models.ContentBlock, []blockResult) {
	out := make([]models.ContentBlock, len(blocks))
	results := make([]blockResult, len(blocks))

	var wg sync.WaitGroup
	for i, block := range blocks {
		out[i] = block
		results[i] = blockResult{Index: i, Status: blockSkipped}
		if block.Type != "image" || !media.IsDataURI(block.Src) {
			continue
		}
		wg.Add(1)
		go func(i int, block models.ContentBlock) {
			defer wg.Done()
			url, err := uploader.Upload(ctx, blockImageFolder, block.Src)
			if err != nil {
				results[i] = blockResult{Index: i, Status: blockFellBack, Err: err}
				return
			}
			block.Src = url
			out[i] = block
			results[i] = blockResult{Index: i, Status: blockUploaded}
		}(i, block)
	}
	wg.Wait()

	return out, results
}

func parseContentBlocks(raw string) ([]models.ContentBlock, error) {
	var blocks []models.ContentBlock
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// Create stores a new post. Content arrives as a JSON array of blocks;
// inline images (cover and blocks) are externalized to the media host first.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}

	name := r.FormValue("name")
	author := r.FormValue("author")
	slug := r.FormValue("slug")
	if name == "" || author == "" || slug == "" {
		respondError(w, http.StatusBadRequest, "name, author, and slug are required")
		return
	}

	blocks, err := parseContentBlocks(r.FormValue("content"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid content")
		return
	}

	var coverImageURL string
	if coverImage := r.FormValue("coverImage"); media.IsDataURI(coverImage) {
		coverImageURL, err = h.uploader.Upload(r.Context(), coverImageFolder, coverImage)
		if err != nil {
			log.Printf("cover image upload failed: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to create post")
			return
		}
	}

	processed, results := externalizeBlocks(r.Context(), h.uploader, blocks)
	for _, res := range results {
		if res.Status == blockFellBack {
			log.Printf("image upload failed for block %d, keeping inline payload: %v", res.Index, res.Err)
		}
	}

	created, err := h.store.CreatePost(r.Context(), models.Post{
		ID:          strconv.FormatInt(time.Now().UnixMilli(), 10),
		Name:        name,
		Author:      author,
		Date:        r.FormValue("date"),
		Slug:        slug,
		Summary:     r.FormValue("summary"),
		CoverImage:  coverImageURL,
		Content:     processed,
		ContentType: r.FormValue("contentType"),
	})
	if err != nil {
		log.Printf("create post db error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create post")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// List returns all posts, newest first. No pagination.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		log.Printf("list posts db error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

func (h *PostsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		respondError(w, http.StatusBadRequest, "missing slug")
		return
	}
	post, err := h.store.GetPostBySlug(r.Context(), slug)
	if err != nil {
		log.Printf("get post db error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Update overwrites the supplied fields of an existing post. An empty form
// value means "not supplied" and never clears a stored field. Block-level
// image externalization runs only on create; here only the cover image is
// re-uploaded when it arrives inline.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}

	id := r.FormValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing id")
		return
	}

	post, err := h.store.GetPostByID(r.Context(), id)
	if err != nil {
		log.Printf("update post db error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to update post")
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}

	if name := r.FormValue("name"); name != "" {
		post.Name = name
	}
	if summary := r.FormValue("summary"); summary != "" {
		post.Summary = summary
	}
	if contentType := r.FormValue("contentType"); contentType != "" {
		post.ContentType = contentType
	}
	if content := r.FormValue("content"); content != "" {
		blocks, err := parseContentBlocks(content)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid content")
			return
		}
		post.Content = blocks
	}
	if coverImage := r.FormValue("coverImage"); media.IsDataURI(coverImage) {
		url, err := h.uploader.Upload(r.Context(), coverImageFolder, coverImage)
		if err != nil {
			log.Printf("cover image upload failed: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to update post")
			return
		}
		post.CoverImage = url
	}

	updated, err := h.store.UpdatePost(r.Context(), *post)
	if err != nil {
		log.Printf("update post db error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to update post")
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a post by ID. Its comments stay behind; they are keyed by
// slug, not by reference.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing id")
		return
	}
	deleted, err := h.store.DeletePost(r.Context(), id)
	if err != nil {
		log.Printf("delete post db error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete post")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}
