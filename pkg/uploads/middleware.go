package uploads

import (
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rakbuku/bookstore/pkg/errcodes"
	"github.com/robinjoseph08/golib/logger"
)

// Middleware writes the file under the "image" form field to store before the
// next handler runs, and exposes it through FromContext. Requests without a
// multipart body, or without that field, pass through untouched. Any other
// file fields are ignored.
func Middleware(store Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
				return next(c)
			}

			fh, err := c.FormFile(FieldName)
			if err != nil {
				if errors.Is(err, http.ErrMissingFile) {
					return next(c)
				}
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					return httpErr
				}
				return errcodes.MalformedPayload()
			}

			f, err := fh.Open()
			if err != nil {
				return errors.WithStack(err)
			}
			defer f.Close()

			mtype, err := mimetype.DetectReader(f)
			if err != nil {
				return errors.WithStack(err)
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return errors.WithStack(err)
			}

			name, err := RandomFilename(fh.Filename)
			if err != nil {
				return errors.Wrap(err, "failed to generate image name")
			}

			ctx := req.Context()
			if err := store.Save(ctx, name, f, fh.Size, mtype.String()); err != nil {
				return errors.Wrap(err, "failed to store image")
			}

			logger.FromContext(ctx).Debug("stored image", logger.Data{
				"filename":      name,
				"original_name": fh.Filename,
				"content_type":  mtype.String(),
				"size":          fh.Size,
			})

			c.Set(contextKey, &Upload{
				Filename:     name,
				OriginalName: fh.Filename,
				ContentType:  mtype.String(),
				Size:         fh.Size,
			})
			return next(c)
		}
	}
}

// FromContext returns the image stored for this request, or nil when the
// request didn't carry one.
func FromContext(c echo.Context) *Upload {
	upload, _ := c.Get(contextKey).(*Upload)
	return upload
}
