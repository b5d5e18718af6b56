package uploads

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rakbuku/bookstore/pkg/errcodes"
)

type handler struct {
	store Store
}

func (h *handler) serve(c echo.Context) error {
	ctx := c.Request().Context()

	obj, err := h.store.Open(ctx, c.Param("filename"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return errcodes.NotFound("Image")
		}
		return errors.WithStack(err)
	}
	defer obj.Close()

	if obj.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	}
	return errors.WithStack(c.Stream(http.StatusOK, obj.ContentType, obj))
}
