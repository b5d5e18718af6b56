package uploads

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// LocalStore keeps images as files in a single directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed and returns a store rooted at it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create upload dir %s", dir)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *LocalStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	if !validFilename(name) {
		return errors.Errorf("invalid image name %q", name)
	}

	f, err := os.OpenFile(s.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return errors.WithStack(err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return errors.WithStack(err)
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, name string) (*Object, error) {
	if !validFilename(name) {
		return nil, ErrNotFound
	}

	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.WithStack(err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.WithStack(err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, errors.WithStack(err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, errors.WithStack(err)
	}

	return &Object{ReadCloser: f, ContentType: mtype.String(), Size: info.Size()}, nil
}

func (s *LocalStore) Remove(_ context.Context, name string) error {
	if !validFilename(name) {
		return errors.Errorf("invalid image name %q", name)
	}

	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	return nil
}
