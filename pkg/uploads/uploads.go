// Package uploads stores the image attached to a book request and serves it
// back from the image store.
package uploads

import (
	"crypto/rand"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	// FieldName is the multipart form field an image is read from.
	FieldName = "image"

	contextKey    = "upload"
	filenameBytes = 16
)

// Upload describes an image that has been written to the image store for the
// current request.
type Upload struct {
	Filename     string
	OriginalName string
	ContentType  string
	Size         int64
}

// IsImage reports whether the sniffed content type is an image type.
func (u *Upload) IsImage() bool {
	return strings.HasPrefix(u.ContentType, "image/")
}

// RandomFilename returns 16 random bytes hex encoded, followed by the
// extension of original.
func RandomFilename(original string) (string, error) {
	buf := make([]byte, filenameBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.WithStack(err)
	}
	return hex.EncodeToString(buf) + filepath.Ext(original), nil
}

// validFilename rejects names that could escape the store's namespace.
func validFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
