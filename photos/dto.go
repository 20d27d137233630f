package photos

import (
	"fmt"

	"github.com/user/mealfeed-go/store"
)

// PhotoResponse is the public view of a photo. URL is the serving path, not
// the blob locator.
type PhotoResponse struct {
	ID     int64  `json:"id"`
	URL    string `json:"url"`
	PostID int64  `json:"post_id"`
	UserID int64  `json:"user_id"`
}

func toPhotoResponse(p *store.Photo) PhotoResponse {
	return PhotoResponse{
		ID:     p.ID,
		URL:    fmt.Sprintf("/api/photos/%d/file", p.ID),
		PostID: p.PostID,
		UserID: p.UserID,
	}
}

func toPhotoResponses(ps []store.Photo) []PhotoResponse {
	out := make([]PhotoResponse, 0, len(ps))
	for i := range ps {
		out = append(out, toPhotoResponse(&ps[i]))
	}
	return out
}
