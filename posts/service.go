// Package posts manages user-authored posts: CRUD, voting, and the joined
// feed listing.
package posts

import (
	"context"
	"errors"
	"log"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/blobstore"
	"github.com/user/mealfeed-go/store"
)

// PostService provides post operations.
type PostService struct {
	store store.Store
	blobs blobstore.BlobStore
}

// NewPostService creates a new PostService. The blob store is used to remove
// attached photo files when a post is deleted.
func NewPostService(st store.Store, blobs blobstore.BlobStore) *PostService {
	return &PostService{store: st, blobs: blobs}
}

// List returns the feed projection: every post joined with its author and
// first photo.
func (s *PostService) List(ctx context.Context) ([]PostResponse, error) {
	views, err := s.store.ListPostViews(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}
	out := make([]PostResponse, 0, len(views))
	for i := range views {
		out = append(out, toPostResponse(&views[i]))
	}
	return out, nil
}

// Get returns a single post row by id.
func (s *PostService) Get(ctx context.Context, id int64) (*store.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("post not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get post", err)
	}
	return post, nil
}

// Create creates a post for an existing user.
func (s *PostService) Create(ctx context.Context, req CreatePostRequest) (*store.Post, error) {
	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	post := &store.Post{
		UserID:  req.UserID,
		Title:   req.Title,
		Content: req.Content,
	}
	created, err := s.store.CreatePost(ctx, post)
	if err != nil {
		var fk *store.ForeignKeyViolationError
		if errors.As(err, &fk) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create post", err)
	}
	return created, nil
}

// Update applies a partial update; absent fields keep their current values.
func (s *PostService) Update(ctx context.Context, id int64, req UpdatePostRequest) (*store.Post, error) {
	post, err := s.store.UpdatePost(ctx, id, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("post not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update post", err)
	}
	return post, nil
}

// Delete removes a post together with its tag associations and photo rows,
// then removes the photo blobs. Blob removal is best effort: a failure is
// logged, never surfaced, since the rows are already gone.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	locations, err := s.store.DeletePost(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperror.NewNotFoundError("post not found", nil)
		}
		return apperror.NewDatabaseError("failed to delete post", err)
	}

	for _, loc := range locations {
		if err := s.blobs.Delete(ctx, loc); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
			log.Printf("posts: failed to delete blob %q for post %d: %v", loc, id, err)
		}
	}
	return nil
}

// Upvote increments the post's upvote counter and returns the new value.
func (s *PostService) Upvote(ctx context.Context, id int64) (int, error) {
	n, err := s.store.UpvotePost(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, apperror.NewNotFoundError("post not found", nil)
		}
		return 0, apperror.NewDatabaseError("failed to upvote post", err)
	}
	return n, nil
}

// Downvote increments the post's downvote counter and returns the new value.
func (s *PostService) Downvote(ctx context.Context, id int64) (int, error) {
	n, err := s.store.DownvotePost(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, apperror.NewNotFoundError("post not found", nil)
		}
		return 0, apperror.NewDatabaseError("failed to downvote post", err)
	}
	return n, nil
}
