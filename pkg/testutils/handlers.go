package testutils

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rakbuku/bookstore/pkg/models"
	"github.com/uptrace/bun"
)

type handler struct {
	db *bun.DB
}

// createBookRequest is the request body for seeding a book. None of the
// book validation rules apply.
type createBookRequest struct {
	ISBN        string `json:"isbn"`
	Name        string `json:"name"`
	Year        string `json:"year"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// createBook inserts a book as is.
// POST /test/books.
func (h *handler) createBook(c echo.Context) error {
	ctx := c.Request().Context()

	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	now := time.Now()
	book := &models.Book{
		CreatedAt:   now,
		UpdatedAt:   now,
		ISBN:        req.ISBN,
		Name:        req.Name,
		Year:        req.Year,
		Author:      req.Author,
		Description: req.Description,
		Image:       req.Image,
	}

	_, err := h.db.NewInsert().Model(book).Returning("*").Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to create book")
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

// deleteAllBooksResponse is the response body for deleting all books.
type deleteAllBooksResponse struct {
	Deleted int `json:"deleted"`
}

// deleteAllBooks deletes all books from the database. Their images are left
// in the image store.
// DELETE /test/books.
func (h *handler) deleteAllBooks(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.db.NewDelete().
		Model((*models.Book)(nil)).
		Where("1=1").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to delete books")
	}

	deleted, _ := result.RowsAffected()

	return errors.WithStack(c.JSON(http.StatusOK, deleteAllBooksResponse{
		Deleted: int(deleted),
	}))
}
