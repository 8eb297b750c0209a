package posts

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/blog-api/internal/apperr"
	"github.com/ayush/blog-api/internal/middleware"
	"github.com/ayush/blog-api/internal/models"
	"github.com/ayush/blog-api/internal/web"
)

// MaxCoverSize caps cover uploads at 5 MiB.
const MaxCoverSize = 5 << 20

// Handler holds the /posts HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func view(e *Entry) *models.PostView {
	return models.NewPostView(e.Post, e.Author)
}

// Create stores a post authored by the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePostDto
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, err)
		return
	}

	entry, err := h.svc.CreatePost(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, view(entry))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.GetPostByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, view(entry))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePostDto
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, err)
		return
	}

	entry, err := h.svc.UpdatePost(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, view(entry))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.DeletePost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, view(entry))
}

// Latest serves GET /posts/latest?page=&pageSize=. Missing or unparsable
// values fall back to the defaults.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.ListLatest(r.Context(), models.Pagination{
		Page:     queryInt(q.Get("page")),
		PageSize: queryInt(q.Get("pageSize")),
	})
	if err != nil {
		web.WriteError(w, err)
		return
	}

	resp := models.LatestPosts{
		Posts:   make([]models.PostView, 0, len(page.Entries)),
		HasMore: page.HasMore,
		Page:    page.Page,
	}
	for i := range page.Entries {
		resp.Posts = append(resp.Posts, *view(&page.Entries[i]))
	}
	web.WriteJSON(w, http.StatusOK, resp)
}

// UploadCover stores the raw request body as the post's cover image.
func (h *Handler) UploadCover(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		web.WriteError(w, apperr.BadRequest("Cover must be an image"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, MaxCoverSize+1))
	if err != nil {
		web.WriteError(w, apperr.BadRequest("invalid request body"))
		return
	}
	if len(data) > MaxCoverSize {
		web.WriteError(w, apperr.New(http.StatusRequestEntityTooLarge, "Cover image too large"))
		return
	}
	if len(data) == 0 {
		web.WriteError(w, apperr.BadRequest("Cover image is empty"))
		return
	}

	postID := chi.URLParam(r, "id")
	if p := middleware.PostFrom(r.Context()); p != nil {
		postID = p.ID
	}
	entry, err := h.svc.SetCover(r.Context(), postID, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, view(entry))
}

// Cover streams the post's cover image.
func (h *Handler) Cover(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.svc.OpenCover(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("stream cover: %v", err)
	}
}

func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
