package uploads

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/rakbuku/bookstore/pkg/config"
)

// ErrNotFound is returned by Store.Open when no object has the given name.
var ErrNotFound = errors.New("image not found")

// Store is where uploaded images live. Names are flat; they never contain a
// path separator.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (*Object, error)
	// Remove deletes the named object. Removing a missing object is not an
	// error.
	Remove(ctx context.Context, name string) error
}

// Object is an opened image. Callers must close it.
type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

// NewStore builds the image store selected by cfg.ImageStore.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.ImageStore {
	case config.ImageStoreMinIO:
		store, err := NewMinIOStore(ctx, MinIOOptions{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return store, nil
	case config.ImageStoreLocal, "":
		store, err := NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return store, nil
	default:
		return nil, errors.Errorf("unsupported image store %q", cfg.ImageStore)
	}
}
