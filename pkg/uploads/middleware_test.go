package uploads

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runMiddleware(t *testing.T, store Store, req *http.Request) (*Upload, bool, error) {
	t.Helper()

	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())

	var called bool
	var upload *Upload
	err := Middleware(store)(func(c echo.Context) error {
		called = true
		upload = FromContext(c)
		return nil
	})(c)
	return upload, called, err
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("stores the image field", func(tt *testing.T) {
		dir := tt.TempDir()
		store, err := NewLocalStore(dir)
		require.NoError(tt, err)

		req := newMultipartRequest(tt, map[string]string{"isbn": "12345"}, FieldName, "cover.png", pngBytes)
		upload, called, err := runMiddleware(tt, store, req)
		require.NoError(tt, err)
		assert.True(tt, called)
		require.NotNil(tt, upload)

		assert.Regexp(tt, `^[0-9a-f]{32}\.png$`, upload.Filename)
		assert.Equal(tt, "cover.png", upload.OriginalName)
		assert.Equal(tt, "image/png", upload.ContentType)
		assert.True(tt, upload.IsImage())

		data, err := os.ReadFile(filepath.Join(dir, upload.Filename))
		require.NoError(tt, err)
		assert.Equal(tt, pngBytes, data)
	})

	t.Run("records the sniffed type of non-images", func(tt *testing.T) {
		store, err := NewLocalStore(tt.TempDir())
		require.NoError(tt, err)

		req := newMultipartRequest(tt, nil, FieldName, "fake.png", []byte("just some text, not a picture"))
		upload, _, err := runMiddleware(tt, store, req)
		require.NoError(tt, err)
		require.NotNil(tt, upload)
		assert.False(tt, upload.IsImage())
	})

	t.Run("ignores other file fields", func(tt *testing.T) {
		dir := tt.TempDir()
		store, err := NewLocalStore(dir)
		require.NoError(tt, err)

		req := newMultipartRequest(tt, nil, "avatar", "a.png", pngBytes)
		upload, called, err := runMiddleware(tt, store, req)
		require.NoError(tt, err)
		assert.True(tt, called)
		assert.Nil(tt, upload)

		entries, err := os.ReadDir(dir)
		require.NoError(tt, err)
		assert.Empty(tt, entries)
	})

	t.Run("passes through non-multipart requests", func(tt *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("isbn=12345"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		upload, called, err := runMiddleware(tt, failingStore{}, req)
		require.NoError(tt, err)
		assert.True(tt, called)
		assert.Nil(tt, upload)
	})

	t.Run("fails before the handler when the store fails", func(tt *testing.T) {
		req := newMultipartRequest(tt, nil, FieldName, "cover.png", pngBytes)
		_, called, err := runMiddleware(tt, failingStore{}, req)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "failed to store image")
		assert.False(tt, called)
	})
}
