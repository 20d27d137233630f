package posts

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/auth"
)

// Handlers exposes the post service over HTTP.
type Handlers struct {
	service *PostService
}

// NewHandlers creates post HTTP handlers.
func NewHandlers(service *PostService) *Handlers {
	return &Handlers{service: service}
}

func postIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		return 0, apperror.NewValidationError("invalid postID", err)
	}
	return id, nil
}

// HandleList handles GET /api/posts.
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed, err := h.service.List(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, feed)
	}
}

// HandleGet handles GET /api/posts/{postID}.
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := postIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		post, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, post)
	}
}

// HandleCreate handles POST /api/posts.
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if req.Title == "" || req.Content == "" || req.UserID == 0 {
			auth.WriteError(w, r, apperror.NewValidationError("Title, content, and user_id are required", nil))
			return
		}

		post, err := h.service.Create(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Post created successfully!",
			"post":    post,
		})
	}
}

// HandleUpdate handles PUT /api/posts/{postID}.
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := postIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req UpdatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		post, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Post updated successfully!",
			"post":    post,
		})
	}
}

// HandleDelete handles DELETE /api/posts/{postID}.
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := postIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully!"})
	}
}

// HandleUpvote handles POST /api/posts/{postID}/upvote.
func (h *Handlers) HandleUpvote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := postIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		n, err := h.service.Upvote(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Post upvoted!",
			"upvotes": n,
		})
	}
}

// HandleDownvote handles POST /api/posts/{postID}/downvote.
func (h *Handlers) HandleDownvote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := postIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		n, err := h.service.Downvote(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message":   "Post downvoted!",
			"downvotes": n,
		})
	}
}
