package blobstore

import (
	"context"
	"fmt"

	"github.com/user/mealfeed-go/config"
)

// NewFromConfig creates the BlobStore named by the storage configuration.
func NewFromConfig(ctx context.Context, cfg *config.StorageConfig) (BlobStore, error) {
	switch cfg.Backend {
	case "filesystem":
		return NewFilesystemStore(cfg.UploadDir)
	case "memory":
		return NewMemoryStore(), nil
	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("s3 blob store requires STORAGE_S3_BUCKET")
		}
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
