package photos

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/auth"
)

// maxUploadBytes caps a single multipart upload at 16 MiB.
const maxUploadBytes = 16 << 20

// Handlers exposes the photo service over HTTP.
type Handlers struct {
	service *PhotoService
}

// NewHandlers creates photo HTTP handlers.
func NewHandlers(service *PhotoService) *Handlers {
	return &Handlers{service: service}
}

func photoIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "photoID"), 10, 64)
	if err != nil {
		return 0, apperror.NewValidationError("invalid photoID", err)
	}
	return id, nil
}

// HandleUpload handles POST /api/photos: multipart form with file field
// "photo" and form fields post_id and user_id.
func (h *Handlers) HandleUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("invalid multipart form", err))
			return
		}

		file, header, err := r.FormFile("photo")
		if err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("photo file is required", err))
			return
		}
		defer file.Close()

		postID, err := strconv.ParseInt(r.FormValue("post_id"), 10, 64)
		if err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("post_id is required", err))
			return
		}
		userID, err := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
		if err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("user_id is required", err))
			return
		}

		photo, err := h.service.Upload(r.Context(), userID, postID, header.Filename, file)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		resp := toPhotoResponse(photo)
		auth.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"message":   "Photo uploaded successfully!",
			"photo_id":  resp.ID,
			"photo_url": resp.URL,
		})
	}
}

// HandleList handles GET /api/photos.
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photos, err := h.service.List(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, toPhotoResponses(photos))
	}
}

// HandleGet handles GET /api/photos/{photoID}.
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := photoIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		photo, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, toPhotoResponse(photo))
	}
}

// HandleServeFile handles GET /api/photos/{photoID}/file, streaming the blob.
func (h *Handlers) HandleServeFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := photoIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		// Headers must precede the stream; errors after the first byte can
		// only truncate the body.
		w.Header().Set("Content-Type", "application/octet-stream")
		if err := h.service.ServeFile(r.Context(), id, w); err != nil {
			auth.WriteError(w, r, err)
			return
		}
	}
}

// HandleDelete handles DELETE /api/photos/{photoID}.
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := photoIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"message": "Photo deleted successfully!"})
	}
}
