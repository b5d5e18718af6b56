package books

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rakbuku/bookstore/pkg/config"
	"github.com/rakbuku/bookstore/pkg/uploads"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config, images uploads.Store) {
	bookService := NewService(db, images)

	h := &handler{
		bookService:      bookService,
		listEmptyAsArray: cfg.ListEmptyAsArray,
	}

	bodyLimit := middleware.BodyLimit(strconv.FormatInt(cfg.UploadMaxBytes, 10) + "B")
	upload := uploads.Middleware(images)

	// Collection routes answer with and without the trailing slash.
	for _, path := range []string{"", "/"} {
		g.GET(path, h.list)
		g.POST(path, h.create, bodyLimit, upload)
		g.PUT(path, h.update, bodyLimit, upload)
	}
	g.GET("/:isbn", h.retrieve)
	g.DELETE("/:isbn", h.delete)
}
