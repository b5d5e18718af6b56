package books

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rakbuku/bookstore/pkg/errcodes"
	"github.com/rakbuku/bookstore/pkg/models"
	"github.com/rakbuku/bookstore/pkg/uploads"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	// emptyListMessage is sent instead of an empty array unless
	// list_empty_as_array is enabled.
	emptyListMessage = "Not available data"
)

type handler struct {
	bookService      *Service
	listEmptyAsArray bool
}

type envelope struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    *models.Book `json:"data,omitempty"`
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListBooks(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if len(books) == 0 && !h.listEmptyAsArray {
		return errors.WithStack(c.JSON(http.StatusOK, emptyListMessage))
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	isbn := c.Param("isbn")

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ISBN: &isbn,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) create(c echo.Context) (err error) {
	ctx := c.Request().Context()
	upload := uploads.FromContext(c)

	// The stored upload is only kept when the book is saved.
	defer func() {
		if err != nil {
			h.bookService.DiscardUpload(ctx, upload)
		}
	}()

	// Bind params.
	params := BookPayload{}
	v, err := newValidation(c.Bind(&params))
	if err != nil {
		return errors.WithStack(err)
	}
	if err := v.checkISBN(ctx, h.bookService, params.ISBN, errcodes.LocationBody, isbnMustBeNew); err != nil {
		return errors.WithStack(err)
	}
	v.checkImage(upload)
	if err := v.err(); err != nil {
		return errors.WithStack(err)
	}

	book := &models.Book{
		ISBN:        params.ISBN,
		Name:        params.Name,
		Year:        params.Year,
		Author:      params.Author,
		Description: params.Description,
	}
	if upload != nil {
		book.Image = upload.Filename
	}

	if err := h.bookService.CreateBook(ctx, book); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: "Book added",
		Data:    book,
	}))
}

func (h *handler) update(c echo.Context) (err error) {
	ctx := c.Request().Context()
	upload := uploads.FromContext(c)

	defer func() {
		if err != nil {
			h.bookService.DiscardUpload(ctx, upload)
		}
	}()

	// Bind params.
	params := BookPayload{}
	v, err := newValidation(c.Bind(&params))
	if err != nil {
		return errors.WithStack(err)
	}
	if err := v.checkISBN(ctx, h.bookService, params.ISBN, errcodes.LocationBody, isbnMustExist); err != nil {
		return errors.WithStack(err)
	}
	v.checkImage(upload)
	if err := v.err(); err != nil {
		return errors.WithStack(err)
	}

	changes := BookChanges{
		Name:        params.Name,
		Year:        params.Year,
		Author:      params.Author,
		Description: params.Description,
	}
	if upload != nil {
		changes.Image = upload.Filename
	}

	book, err := h.bookService.UpdateBookByISBN(ctx, params.ISBN, changes)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: "Book updated",
		Data:    book,
	}))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	params := DeleteBookParams{ISBN: c.Param("isbn")}
	v, err := newValidation(c.Validate(&params))
	if err != nil {
		return errors.WithStack(err)
	}
	if err := v.checkISBN(ctx, h.bookService, params.ISBN, errcodes.LocationParams, isbnMustExist); err != nil {
		return errors.WithStack(err)
	}
	if err := v.err(); err != nil {
		return errors.WithStack(err)
	}

	deleted, err := h.bookService.DeleteBookByISBN(ctx, params.ISBN)
	if err != nil {
		return errors.WithStack(err)
	}

	if deleted == 0 {
		return errors.WithStack(c.JSON(http.StatusOK, envelope{
			Status:  statusError,
			Message: "Failed",
		}))
	}

	return errors.WithStack(c.JSON(http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: "Book deleted",
	}))
}
