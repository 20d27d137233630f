package posts

import (
	"fmt"
	"time"

	"github.com/user/mealfeed-go/store"
)

// CreatePostRequest is the post-creation payload.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  int64  `json:"user_id"`
}

// UpdatePostRequest is the partial-update payload; nil fields are untouched.
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// AuthorResponse is the embedded author block of a feed entry.
type AuthorResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PostResponse is one feed entry: the post joined with its author and the
// URL of its first photo, when one exists.
type PostResponse struct {
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Upvotes   int            `json:"upvotes"`
	Downvotes int            `json:"downvotes"`
	UserID    int64          `json:"user_id"`
	Timestamp time.Time      `json:"timestamp"`
	User      AuthorResponse `json:"user"`
	ImageURL  string         `json:"image_url,omitempty"`
}

func toPostResponse(v *store.PostView) PostResponse {
	resp := PostResponse{
		ID:        v.ID,
		Title:     v.Title,
		Content:   v.Content,
		Upvotes:   v.Upvotes,
		Downvotes: v.Downvotes,
		UserID:    v.UserID,
		Timestamp: v.CreatedAt,
		User:      AuthorResponse{Name: "Unknown User"},
	}
	if v.AuthorName != nil {
		resp.User.Name = *v.AuthorName
	}
	if v.AuthorEmail != nil {
		resp.User.Email = *v.AuthorEmail
	}
	if v.PhotoID != nil {
		resp.ImageURL = fmt.Sprintf("/api/photos/%d/file", *v.PhotoID)
	}
	return resp
}
