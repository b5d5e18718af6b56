package models

import (
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

// ImageRoutePrefix is the route uploaded images are served from. Stored
// filenames are always rendered behind it, never bare.
const ImageRoutePrefix = "/img/"

type Book struct {
	bun.BaseModel `bun:"table:book,alias:b"`

	ID          int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt   time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updatedAt"`
	ISBN        string    `bun:"isbn,notnull" json:"isbn"`
	Name        string    `bun:",notnull" json:"name"`
	Year        string    `bun:",notnull" json:"year"`
	Author      string    `bun:",notnull" json:"author"`
	Description string    `bun:",notnull" json:"description"`
	// Image is the stored filename, or empty when the book has no image.
	Image string `bun:",notnull" json:"-"`
}

// ImagePath is the public path of the book's image. A book without an image
// still renders the bare prefix.
func (b Book) ImagePath() string {
	return ImageRoutePrefix + b.Image
}

// MarshalJSON renders Image as its public path.
func (b Book) MarshalJSON() ([]byte, error) {
	type book Book
	return json.Marshal(struct {
		book
		Image string `json:"image"`
	}{book(b), b.ImagePath()})
}
