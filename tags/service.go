// Package tags manages labels and their association with posts.
package tags

import (
	"context"
	"errors"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/store"
)

// TagService provides tag operations.
type TagService struct {
	store store.Store
}

// NewTagService creates a new TagService.
func NewTagService(st store.Store) *TagService {
	return &TagService{store: st}
}

// List returns all tags.
func (s *TagService) List(ctx context.Context) ([]store.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tags", err)
	}
	return tags, nil
}

// Get returns a single tag by id.
func (s *TagService) Get(ctx context.Context, id int64) (*store.Tag, error) {
	tag, err := s.store.GetTag(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("tag not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get tag", err)
	}
	return tag, nil
}

// Create creates a tag owned by an existing user. Tag names are unique
// across the whole system, not per user.
func (s *TagService) Create(ctx context.Context, req CreateTagRequest) (*store.Tag, error) {
	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	tag, err := s.store.CreateTag(ctx, &store.Tag{UserID: req.UserID, Name: req.Name})
	if err != nil {
		var uv *store.UniqueViolationError
		if errors.As(err, &uv) {
			return nil, apperror.NewConflictError("tag name already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create tag", err)
	}
	return tag, nil
}

// Delete removes a tag and its post associations. Posts are untouched.
func (s *TagService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTag(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperror.NewNotFoundError("tag not found", nil)
		}
		return apperror.NewDatabaseError("failed to delete tag", err)
	}
	return nil
}

// Associate links a tag to a post. Linking an already-linked pair succeeds
// without change.
func (s *TagService) Associate(ctx context.Context, tagID, postID int64) error {
	if _, err := s.Get(ctx, tagID); err != nil {
		return err
	}
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperror.NewNotFoundError("post not found", nil)
		}
		return apperror.NewDatabaseError("failed to get post", err)
	}
	if err := s.store.AssociateTag(ctx, tagID, postID); err != nil {
		return apperror.NewDatabaseError("failed to associate tag", err)
	}
	return nil
}

// PostsForTag returns all posts carrying the tag.
func (s *TagService) PostsForTag(ctx context.Context, tagID int64) ([]store.Post, error) {
	if _, err := s.Get(ctx, tagID); err != nil {
		return nil, err
	}
	posts, err := s.store.PostsForTag(ctx, tagID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts for tag", err)
	}
	return posts, nil
}

// TagsForPost returns all tags attached to the post.
func (s *TagService) TagsForPost(ctx context.Context, postID int64) ([]store.Tag, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("post not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get post", err)
	}
	tags, err := s.store.TagsForPost(ctx, postID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tags for post", err)
	}
	return tags, nil
}
