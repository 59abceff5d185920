package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Imohh/portfolio-backend/internal/models"
)

func TestAddCommentInvalidEmail(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeUploader{})

	for _, email := range []string{"not-an-email", "a@b", "a b@c.com", "@c.com", "a@@b.com"} {
		resp := doJSON(t, router, http.MethodPost, "/post/hello/comment",
			`{"name":"Bob","email":"`+email+`","text":"hi"}`)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("email %q: expected 400, got %d", email, resp.Code)
		}
	}
	if len(store.comments) != 0 {
		t.Fatalf("rejected comments must not persist")
	}
}

func TestAddCommentMissingFields(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeUploader{})

	resp := doJSON(t, router, http.MethodPost, "/post/hello/comment", `{"name":"Bob","email":"b@c.com"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing text, got %d", resp.Code)
	}
}

func TestCommentsNewestFirst(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeUploader{})

	for _, text := range []string{"C1", "C2", "C3"} {
		resp := doJSON(t, router, http.MethodPost, "/post/hello/comment",
			`{"name":"Bob","email":"bob@c.com","text":"`+text+`","website":"https://bob.example"}`)
		if resp.Code != http.StatusCreated {
			t.Fatalf("add %s: expected 201, got %d", text, resp.Code)
		}
	}

	resp := doJSON(t, router, http.MethodGet, "/post/hello/comments", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var comments []models.Comment
	if err := json.Unmarshal(resp.Body.Bytes(), &comments); err != nil {
		t.Fatalf("json parse: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}
	for i, want := range []string{"C3", "C2", "C1"} {
		if comments[i].Text != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, comments[i].Text)
		}
	}
}

func TestAddCommentReturnsRefreshedList(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeUploader{})

	doJSON(t, router, http.MethodPost, "/post/hello/comment", `{"name":"Bob","email":"bob@c.com","text":"first"}`)
	resp := doJSON(t, router, http.MethodPost, "/post/hello/comment", `{"name":"Eve","email":"eve@c.com","text":"second"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var comments []models.Comment
	if err := json.Unmarshal(resp.Body.Bytes(), &comments); err != nil {
		t.Fatalf("json parse: %v", err)
	}
	if len(comments) != 2 || comments[0].Text != "second" {
		t.Fatalf("expected refreshed newest-first list, got %+v", comments)
	}
}

func TestListCommentsUnknownSlugIsEmpty(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeUploader{})

	resp := doJSON(t, router, http.MethodGet, "/post/ghost/comments", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown slug, got %d", resp.Code)
	}
	var comments []models.Comment
	if err := json.Unmarshal(resp.Body.Bytes(), &comments); err != nil {
		t.Fatalf("json parse: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("expected empty list, got %+v", comments)
	}
}
