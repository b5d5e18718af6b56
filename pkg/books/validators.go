package books

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rakbuku/bookstore/pkg/errcodes"
	"github.com/rakbuku/bookstore/pkg/uploads"
)

const (
	isbnInUseMessage    = "ISBN already in use"
	isbnNotFoundMessage = "ISBN not found"
	notAnImageMessage   = `"image" must be an image file`
)

type BookPayload struct {
	ISBN        string `form:"isbn" json:"isbn" mod:"trim" validate:"min=5,digits"`
	Name        string `form:"name" json:"name" mod:"trim" validate:"min=2"`
	Year        string `form:"year" json:"year" mod:"trim" validate:"len=4,digits"`
	Author      string `form:"author" json:"author" mod:"trim" validate:"min=2"`
	Description string `form:"description" json:"description" mod:"trim" validate:"min=10"`
}

type DeleteBookParams struct {
	ISBN string `json:"isbn" mod:"trim" validate:"min=5,digits"`
}

// isbnRule is the storage check an isbn has to pass once its format is valid.
type isbnRule int

const (
	isbnMustBeNew isbnRule = iota
	isbnMustExist
)

// isbnChecker is the part of Service the validation pipeline needs.
type isbnChecker interface {
	ISBNExists(ctx context.Context, isbn string) (bool, error)
}

// validation collects every violation of a request before the handler decides
// whether to go ahead.
type validation struct {
	errs errcodes.ValidationErrors
}

// newValidation starts from the result of binding. Binding errors that aren't
// field violations (bad media type, malformed body) are returned as is.
func newValidation(bindErr error) (*validation, error) {
	v := &validation{errs: errcodes.ValidationErrors{}}
	if bindErr == nil {
		return v, nil
	}

	var verrs errcodes.ValidationErrors
	if !errors.As(bindErr, &verrs) {
		return nil, errors.WithStack(bindErr)
	}
	v.errs.Merge(verrs)
	return v, nil
}

// checkISBN runs the storage check, but only when the isbn is well formed.
func (v *validation) checkISBN(ctx context.Context, checker isbnChecker, isbn, location string, rule isbnRule) error {
	if v.errs.Has("isbn") {
		return nil
	}

	exists, err := checker.ISBNExists(ctx, isbn)
	if err != nil {
		return errors.WithStack(err)
	}

	switch {
	case rule == isbnMustBeNew && exists:
		v.add("isbn", isbn, isbnInUseMessage, "unique", location)
	case rule == isbnMustExist && !exists:
		v.add("isbn", isbn, isbnNotFoundMessage, "exists", location)
	}
	return nil
}

func (v *validation) checkImage(upload *uploads.Upload) {
	if upload == nil || upload.IsImage() {
		return
	}
	v.add(uploads.FieldName, upload.OriginalName, notAnImageMessage, "image", errcodes.LocationFile)
}

func (v *validation) add(field, value, msg, rule, location string) {
	v.errs.Add(&errcodes.FieldError{
		Value:    value,
		Message:  msg,
		Param:    field,
		Rule:     rule,
		Location: location,
	})
}

func (v *validation) err() error {
	return v.errs.ErrOrNil()
}
