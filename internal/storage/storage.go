package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/templui/calldesk/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores a file at the given path
	Save(path string, file io.Reader) error

	// Open returns the stored bytes; ErrObjectNotFound if nothing is stored at path
	Open(path string) (io.ReadCloser, error)

	// Delete removes a file at the given path; deleting a missing file is not an error
	Delete(path string) error
}

// Linker is implemented by backends that can hand out a temporary direct download
// link instead of streaming the bytes through the server.
type Linker interface {
	DownloadURL(path string) (string, error)
}

// New creates the storage backend selected by STORAGE_DRIVER.
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case cfg.StorageDriverLocal, "":
		slog.Info("initializing local storage", "dir", c.UploadDir)
		return NewLocalStorage(c.UploadDir)
	case cfg.StorageDriverS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:               c.S3Region,
			Bucket:               c.S3Bucket,
			AccessKey:            c.S3AccessKey,
			SecretKey:            c.S3SecretKey,
			Endpoint:             c.S3Endpoint,
			PresignExpiryPrivate: c.S3PresignExpiryPrivate,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
