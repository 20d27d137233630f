package tags

// CreateTagRequest is the tag-creation payload.
type CreateTagRequest struct {
	Name   string `json:"name"`
	UserID int64  `json:"user_id"`
}
