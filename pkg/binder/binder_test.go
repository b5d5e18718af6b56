package binder

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rakbuku/bookstore/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Hello string `json:"hello" mod:"trim" validate:"max=9"`
	Omit  string `json:"-"`
}

type bookParams struct {
	ISBN string `form:"isbn" json:"isbn" mod:"trim" validate:"min=5,digits"`
	Year string `form:"year" json:"year" mod:"trim" validate:"len=4,digits"`
}

var (
	goodJSON             = `{"hello":" world "}`
	unknownFieldsErrJSON = `{"hello":"world","foo":"bar"}`
	typeErrJSON          = `{"hello":123}`
	validationErrJSON    = `{"hello":"0123456789"}`
)

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("only allows application/json and application/x-www-form-urlencoded", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"hello" should be of type string`)
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "world", p.Hello)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "length must be less than or equal to 9 characters")
	})

	t.Run("reports every invalid field with its first failed rule", func(tt *testing.T) {
		c := newContext(`{"isbn":"12a","year":"20x4"}`, echo.MIMEApplicationJSON)
		p := bookParams{}
		err := b.Bind(&p, c)
		require.Error(tt, err)

		var verrs errcodes.ValidationErrors
		require.True(tt, errors.As(err, &verrs))
		require.Len(tt, verrs, 2)
		assert.Equal(tt, "min", verrs["isbn"].Rule)
		assert.Equal(tt, "12a", verrs["isbn"].Value)
		assert.Equal(tt, errcodes.LocationBody, verrs["isbn"].Location)
		assert.Equal(tt, "digits", verrs["year"].Rule)
		assert.Equal(tt, `"year" must contain only digits`, verrs["year"].Message)
	})

	t.Run("binds text values of multipart forms", func(tt *testing.T) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		require.NoError(tt, w.WriteField("isbn", " 12345 "))
		require.NoError(tt, w.WriteField("year", "2020"))
		part, err := w.CreateFormFile("cover", "cover.png")
		require.NoError(tt, err)
		_, err = part.Write([]byte("not bound"))
		require.NoError(tt, err)
		require.NoError(tt, w.Close())

		c := newContext(body.String(), w.FormDataContentType())
		p := bookParams{}
		require.NoError(tt, b.Bind(&p, c))
		assert.Equal(tt, "12345", p.ISBN)
		assert.Equal(tt, "2020", p.Year)
	})

	t.Run("binds urlencoded forms", func(tt *testing.T) {
		c := newContext("isbn=98765&year=1999", echo.MIMEApplicationForm)
		p := bookParams{}
		require.NoError(tt, b.Bind(&p, c))
		assert.Equal(tt, "98765", p.ISBN)
	})

	t.Run("ignores the query string of form posts", func(tt *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(echo.POST, "/?x=1", strings.NewReader("isbn=98765&year=1999"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		c := e.NewContext(req, httptest.NewRecorder())

		p := bookParams{}
		require.NoError(tt, b.Bind(&p, c))
		assert.Equal(tt, "98765", p.ISBN)
	})

	t.Run("binds chunked bodies", func(tt *testing.T) {
		c := newContext("isbn=98765&year=1999", echo.MIMEApplicationForm)
		c.Request().ContentLength = -1
		c.Request().TransferEncoding = []string{"chunked"}

		p := bookParams{}
		require.NoError(tt, b.Bind(&p, c))
		assert.Equal(tt, "1999", p.Year)
	})

	t.Run("rejects empty bodies", func(tt *testing.T) {
		c := newContext("", echo.MIMEApplicationForm)
		p := bookParams{}
		err := b.Bind(&p, c)
		assert.Equal(tt, errcodes.EmptyRequestBody(), err)
	})

	t.Run("validates structs built from path params", func(tt *testing.T) {
		p := bookParams{ISBN: "12", Year: "2020"}
		err := b.Validate(&p)

		var verrs errcodes.ValidationErrors
		require.True(tt, errors.As(err, &verrs))
		assert.Equal(tt, errcodes.LocationParams, verrs["isbn"].Location)
		assert.False(tt, verrs.Has("year"))
	})
}

func TestDigitsValidator(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	for value, ok := range map[string]bool{
		"0123456789": true,
		"":           false,
		"-12345":     false,
		"12.45":      false,
	} {
		err := b.validate.Var(value, "digits")
		assert.Equal(t, ok, err == nil, "value %q", value)
	}
}

func newContext(payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.POST, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
