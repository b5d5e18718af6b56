package uploads

import (
	"github.com/labstack/echo/v4"
	"github.com/rakbuku/bookstore/pkg/models"
)

// RegisterRoutes serves stored images under models.ImageRoutePrefix.
func RegisterRoutes(e *echo.Echo, store Store) {
	h := &handler{store: store}

	e.GET(models.ImageRoutePrefix+":filename", h.serve)
	e.HEAD(models.ImageRoutePrefix+":filename", h.serve)
}
