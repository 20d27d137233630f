// Package photos manages uploaded images: multipart upload, metadata rows,
// blob storage and file serving. A photo is two artifacts kept in step, the
// metadata row in the store and the blob behind an opaque locator.
package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/blobstore"
	"github.com/user/mealfeed-go/store"
)

// allowedExtensions is the upload allow-list, matched case-insensitively
// against the original filename's extension.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// PhotoService provides photo operations.
type PhotoService struct {
	store store.Store
	blobs blobstore.BlobStore
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(st store.Store, blobs blobstore.BlobStore) *PhotoService {
	return &PhotoService{store: st, blobs: blobs}
}

// Upload validates the file, writes the blob, then inserts the metadata row.
// If the insert fails the just-written blob is removed as compensation, so a
// failed upload leaves no visible trace. The stored name is a fresh UUID with
// the original extension; the client's filename never reaches the blob store.
func (s *PhotoService) Upload(ctx context.Context, userID, postID int64, filename string, file io.Reader) (*store.Photo, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, apperror.NewValidationError("file type not allowed; use png, jpg, jpeg, or gif", nil)
	}

	if _, err := s.store.GetPost(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("post not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get post", err)
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	storedName := uuid.NewString() + ext
	location, err := s.blobs.Put(ctx, storedName, file)
	if err != nil {
		return nil, apperror.NewStorageError("failed to store file", err)
	}

	photo := &store.Photo{
		UserID:   userID,
		PostID:   postID,
		Location: location,
	}
	created, err := s.store.CreatePhoto(ctx, photo)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, location); delErr != nil && !errors.Is(delErr, blobstore.ErrNotFound) {
			log.Printf("photos: failed to remove orphan blob %q: %v", location, delErr)
		}
		var fk *store.ForeignKeyViolationError
		if errors.As(err, &fk) {
			return nil, apperror.NewNotFoundError("post or user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create photo", err)
	}
	return created, nil
}

// List returns all photo metadata rows.
func (s *PhotoService) List(ctx context.Context) ([]store.Photo, error) {
	photos, err := s.store.ListPhotos(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list photos", err)
	}
	return photos, nil
}

// Get returns a single photo's metadata by id.
func (s *PhotoService) Get(ctx context.Context, id int64) (*store.Photo, error) {
	photo, err := s.store.GetPhoto(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("photo not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get photo", err)
	}
	return photo, nil
}

// ServeFile streams the photo's blob to w.
func (s *PhotoService) ServeFile(ctx context.Context, id int64, w io.Writer) error {
	photo, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.blobs.Get(ctx, photo.Location, w); err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return apperror.NewNotFoundError("photo file not found", nil)
		}
		return apperror.NewStorageError("failed to read file", err)
	}
	return nil
}

// Delete removes the blob first and the row only after. A blob that is
// already gone counts as deleted; any other blob failure aborts with the row
// intact, so the photo never dangles without its file while appearing live.
func (s *PhotoService) Delete(ctx context.Context, id int64) error {
	photo, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, photo.Location); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return apperror.NewStorageError(fmt.Sprintf("failed to delete file for photo %d", id), err)
	}

	if err := s.store.DeletePhoto(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperror.NewNotFoundError("photo not found", nil)
		}
		return apperror.NewDatabaseError("failed to delete photo", err)
	}
	return nil
}
