package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rakbuku/bookstore/pkg/binder"
	"github.com/rakbuku/bookstore/pkg/books"
	"github.com/rakbuku/bookstore/pkg/config"
	"github.com/rakbuku/bookstore/pkg/errcodes"
	"github.com/rakbuku/bookstore/pkg/testutils"
	"github.com/rakbuku/bookstore/pkg/uploads"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

const environmentTest = "test"

func New(cfg *config.Config, db *bun.DB, images uploads.Store) (*http.Server, error) {
	e, err := newEcho(cfg, db, images)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB, images uploads.Store) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b
	e.Validator = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)
	e.GET("/", root)

	booksGroup := e.Group("/book")
	books.RegisterRoutesWithGroup(booksGroup, db, cfg, images)

	uploads.RegisterRoutes(e, images)

	// Seeding and reset endpoints for end-to-end tests
	if cfg.Environment == environmentTest {
		testutils.RegisterRoutes(e, db)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func root(c echo.Context) error {
	return errors.WithStack(c.String(http.StatusOK, "Hello World!"))
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
