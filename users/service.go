// Package users manages user accounts and the follow graph.
package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/store"
)

// UserService provides user account and follow-graph operations.
type UserService struct {
	store store.Store
}

// NewUserService creates a new UserService.
func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]store.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	return users, nil
}

// Get returns a single user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*store.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	return user, nil
}

// Create creates a user directly, hashing the supplied password. Unlike
// registration it does not issue a token.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*store.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &store.User{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hashed),
	}
	created, err := s.store.CreateUser(ctx, user)
	if err != nil {
		var uv *store.UniqueViolationError
		if errors.As(err, &uv) {
			if strings.Contains(uv.Constraint, "email") {
				return nil, apperror.NewConflictError("email already exists", nil)
			}
			return nil, apperror.NewConflictError("name already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return created, nil
}

// Delete removes a user. It is refused while the user still owns posts, tags
// or photos; follow edges are removed along with the user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperror.NewNotFoundError("user not found", nil)
		}
		var fk *store.ForeignKeyViolationError
		if errors.As(err, &fk) {
			return apperror.NewConflictError("user still owns posts, tags or photos", nil)
		}
		return apperror.NewDatabaseError("failed to delete user", err)
	}
	return nil
}

// Follow records that followerID follows followedID. Re-following is a no-op.
func (s *UserService) Follow(ctx context.Context, followerID, followedID int64) error {
	if _, err := s.Get(ctx, followedID); err != nil {
		return err
	}
	if err := s.store.Follow(ctx, followerID, followedID); err != nil {
		var fk *store.ForeignKeyViolationError
		if errors.As(err, &fk) {
			return apperror.NewNotFoundError("user not found", nil)
		}
		return apperror.NewDatabaseError("failed to follow user", err)
	}
	return nil
}

// Unfollow removes a follow edge. Unfollowing a user who was never followed
// is a no-op.
func (s *UserService) Unfollow(ctx context.Context, followerID, followedID int64) error {
	if _, err := s.Get(ctx, followedID); err != nil {
		return err
	}
	if err := s.store.Unfollow(ctx, followerID, followedID); err != nil {
		return apperror.NewDatabaseError("failed to unfollow user", err)
	}
	return nil
}

// Followers returns the users following the given user.
func (s *UserService) Followers(ctx context.Context, userID int64) ([]store.User, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	followers, err := s.store.Followers(ctx, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list followers", err)
	}
	return followers, nil
}

// Following returns the users the given user follows.
func (s *UserService) Following(ctx context.Context, userID int64) ([]store.User, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	following, err := s.store.Following(ctx, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list following", err)
	}
	return following, nil
}
