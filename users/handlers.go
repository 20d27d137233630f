package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/auth"
)

// Handlers exposes the user service over HTTP.
type Handlers struct {
	service *UserService
}

// NewHandlers creates user HTTP handlers.
func NewHandlers(service *UserService) *Handlers {
	return &Handlers{service: service}
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, apperror.NewValidationError("invalid "+name, err)
	}
	return id, nil
}

// HandleList handles GET /api/users.
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.service.List(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, toUserResponses(users))
	}
}

// HandleGet handles GET /api/users/{userID}.
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "userID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		user, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, toUserResponse(user))
	}
}

// HandleCreate handles POST /api/users.
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if req.Name == "" || req.Email == "" || req.Password == "" {
			auth.WriteError(w, r, apperror.NewValidationError("Name, email, and password are required", nil))
			return
		}

		user, err := h.service.Create(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "User created successfully!",
			"user":    toUserResponse(user),
		})
	}
}

// HandleDelete handles DELETE /api/users/{userID}.
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "userID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully!"})
	}
}

// HandleFollow handles POST /api/users/{userID}/follow. The follower is the
// authenticated user.
func (h *Handlers) HandleFollow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		followerID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}
		followedID, err := idParam(r, "userID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Follow(r.Context(), followerID, followedID); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"message": "Now following user"})
	}
}

// HandleUnfollow handles DELETE /api/users/{userID}/follow.
func (h *Handlers) HandleUnfollow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		followerID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}
		followedID, err := idParam(r, "userID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Unfollow(r.Context(), followerID, followedID); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"message": "Unfollowed user"})
	}
}

// HandleFollowers handles GET /api/users/{userID}/followers.
func (h *Handlers) HandleFollowers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "userID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		followers, err := h.service.Followers(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, toUserResponses(followers))
	}
}

// HandleFollowing handles GET /api/users/{userID}/following.
func (h *Handlers) HandleFollowing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "userID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		following, err := h.service.Following(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, toUserResponses(following))
	}
}
