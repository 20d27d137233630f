package tags

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/auth"
)

// Handlers exposes the tag service over HTTP.
type Handlers struct {
	service *TagService
}

// NewHandlers creates tag HTTP handlers.
func NewHandlers(service *TagService) *Handlers {
	return &Handlers{service: service}
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, apperror.NewValidationError("invalid "+name, err)
	}
	return id, nil
}

// HandleList handles GET /api/tags.
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.service.List(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, tags)
	}
}

// HandleGet handles GET /api/tags/{tagID}.
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "tagID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		tag, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, tag)
	}
}

// HandleCreate handles POST /api/tags.
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if req.Name == "" || req.UserID == 0 {
			auth.WriteError(w, r, apperror.NewValidationError("Name and user_id are required", nil))
			return
		}

		tag, err := h.service.Create(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Tag created successfully!",
			"tag":     tag,
		})
	}
}

// HandleDelete handles DELETE /api/tags/{tagID}.
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "tagID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"message": "Tag deleted successfully!"})
	}
}

// HandleAssociate handles POST /api/tags/{tagID}/associate/{postID}.
func (h *Handlers) HandleAssociate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tagID, err := idParam(r, "tagID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		postID, err := idParam(r, "postID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Associate(r.Context(), tagID, postID); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"message": "Tag associated with post!"})
	}
}

// HandlePostsForTag handles GET /api/tags/{tagID}/posts.
func (h *Handlers) HandlePostsForTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "tagID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		posts, err := h.service.PostsForTag(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, posts)
	}
}

// HandleTagsForPost handles GET /api/posts/{postID}/tags.
func (h *Handlers) HandleTagsForPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "postID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		tags, err := h.service.TagsForPost(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, tags)
	}
}
