// Package store is the entity and relationship layer of mealfeed. It owns
// the four entity types (users, posts, tags, photos) and the two association
// edges (post↔tag, follower→followed), and defines the Store interface that
// every service operates through. Two implementations exist: a PostgreSQL
// store backed by pgx, and an in-memory store used by tests.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by point lookups, updates and deletes when the
// addressed row does not exist.
var ErrNotFound = errors.New("not found")

// UniqueViolationError reports a uniqueness constraint failure. Constraint
// carries the constraint name (e.g. "users_email_key") so callers can tell
// which field collided.
type UniqueViolationError struct {
	Constraint string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique violation on %s", e.Constraint)
}

// ForeignKeyViolationError reports a referential constraint failure: either
// an insert referencing a missing row, or a delete blocked by dependent rows.
type ForeignKeyViolationError struct {
	Constraint string
}

func (e *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("foreign key violation on %s", e.Constraint)
}

// User is a registered account. PasswordHash holds the bcrypt verifier and
// is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post is user-authored content. The vote counters only change through
// UpvotePost / DownvotePost.
type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag is a label owned by a user; its name is unique across the whole system.
type Tag struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// Photo is an uploaded image attached to a post. Location is the opaque blob
// store locator, not a public URL.
type Photo struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	PostID     int64     `json:"post_id"`
	Location   string    `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// PostView is the denormalized listing row: a post joined with its author
// (nil fields when the owner row is missing) and its first photo, if any.
type PostView struct {
	Post
	AuthorName  *string
	AuthorEmail *string
	PhotoID     *int64
}

// Store is the single handle every service receives at construction. All
// multi-row mutations (cascading deletes) are atomic: a failure midway leaves
// previously committed state untouched.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, u *User) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	// DeleteUser removes the user row and their follow edges. It fails with
	// ForeignKeyViolationError while the user still owns posts, tags or
	// photos.
	DeleteUser(ctx context.Context, id int64) error

	// Follow edges (asymmetric, idempotent both ways).
	Follow(ctx context.Context, followerID, followedID int64) error
	Unfollow(ctx context.Context, followerID, followedID int64) error
	Followers(ctx context.Context, userID int64) ([]User, error)
	Following(ctx context.Context, userID int64) ([]User, error)

	// Posts.
	CreatePost(ctx context.Context, p *Post) (*Post, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	ListPosts(ctx context.Context) ([]Post, error)
	ListPostViews(ctx context.Context) ([]PostView, error)
	// UpdatePost applies a partial update; nil fields retain current values.
	UpdatePost(ctx context.Context, id int64, title, content *string) (*Post, error)
	// DeletePost removes the post, its tag associations and its photo rows in
	// one transaction, returning the blob locations of the removed photos so
	// the caller can clean up the blob store.
	DeletePost(ctx context.Context, id int64) ([]string, error)
	// UpvotePost / DownvotePost atomically increment the counter by one and
	// return the new value.
	UpvotePost(ctx context.Context, id int64) (int, error)
	DownvotePost(ctx context.Context, id int64) (int, error)

	// Tags.
	CreateTag(ctx context.Context, t *Tag) (*Tag, error)
	GetTag(ctx context.Context, id int64) (*Tag, error)
	ListTags(ctx context.Context) ([]Tag, error)
	// DeleteTag removes the tag and its post associations, never the posts.
	DeleteTag(ctx context.Context, id int64) error
	// AssociateTag links a tag to a post. Linking an already-linked pair is a
	// no-op success.
	AssociateTag(ctx context.Context, tagID, postID int64) error
	TagsForPost(ctx context.Context, postID int64) ([]Tag, error)
	PostsForTag(ctx context.Context, tagID int64) ([]Post, error)

	// Photos.
	CreatePhoto(ctx context.Context, p *Photo) (*Photo, error)
	GetPhoto(ctx context.Context, id int64) (*Photo, error)
	ListPhotos(ctx context.Context) ([]Photo, error)
	DeletePhoto(ctx context.Context, id int64) error
}
