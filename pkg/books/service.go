package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/rakbuku/bookstore/pkg/errcodes"
	"github.com/rakbuku/bookstore/pkg/models"
	"github.com/rakbuku/bookstore/pkg/uploads"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type Service struct {
	db     *bun.DB
	images uploads.Store
}

func NewService(db *bun.DB, images uploads.Store) *Service {
	return &Service{db, images}
}

type RetrieveBookOptions struct {
	ID   *int
	ISBN *string
}

// BookChanges are the columns a client may change on an existing book.
type BookChanges struct {
	Name        string
	Year        string
	Author      string
	Description string
	Image       string
}

func (svc *Service) ListBooks(ctx context.Context) ([]*models.Book, error) {
	books := []*models.Book{}

	err := svc.db.
		NewSelect().
		Model(&books).
		Order("b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Order("b.id ASC").
		Limit(1)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.ISBN != nil {
		q = q.Where("b.isbn = ?", *opts.ISBN)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// ISBNExists reports whether any book carries isbn. It isn't tied to a
// transaction, so a concurrent create may still slip in afterwards.
func (svc *Service) ISBNExists(ctx context.Context, isbn string) (bool, error) {
	exists, err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Where("b.isbn = ?", isbn).
		Exists(ctx)
	return exists, errors.WithStack(err)
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

// UpdateBookByISBN applies changes to every book carrying isbn and returns the
// first of them. Images that are no longer referenced are removed from the
// image store once the rows are updated; a failed removal is only logged.
func (svc *Service) UpdateBookByISBN(ctx context.Context, isbn string, changes BookChanges) (*models.Book, error) {
	var updated *models.Book

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		books, err := booksByISBN(ctx, tx, isbn)
		if err != nil {
			return errors.WithStack(err)
		}
		if len(books) == 0 {
			return errcodes.NotFound("Book")
		}

		now := time.Now()
		stale := []string{}
		for _, book := range books {
			if book.Image != "" && book.Image != changes.Image {
				stale = append(stale, book.Image)
			}

			book.Name = changes.Name
			book.Year = changes.Year
			book.Author = changes.Author
			book.Description = changes.Description
			book.Image = changes.Image
			book.UpdatedAt = now

			_, err := tx.
				NewUpdate().
				Model(book).
				Column("name", "year", "author", "description", "image", "updated_at").
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		svc.removeImages(ctx, stale)

		updated = books[0]
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return updated, nil
}

// DeleteBookByISBN deletes every book carrying isbn, then removes their images
// from the image store. It returns the number of deleted rows.
func (svc *Service) DeleteBookByISBN(ctx context.Context, isbn string) (int64, error) {
	var deleted int64

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		books, err := booksByISBN(ctx, tx, isbn)
		if err != nil {
			return errors.WithStack(err)
		}

		result, err := tx.
			NewDelete().
			Model((*models.Book)(nil)).
			Where("isbn = ?", isbn).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		deleted, err = result.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}

		images := []string{}
		for _, book := range books {
			if book.Image != "" {
				images = append(images, book.Image)
			}
		}
		svc.removeImages(ctx, images)

		return nil
	})
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return deleted, nil
}

// DiscardUpload removes an image that was stored for a request that ended up
// not using it.
func (svc *Service) DiscardUpload(ctx context.Context, upload *uploads.Upload) {
	if upload == nil {
		return
	}
	svc.removeImages(ctx, []string{upload.Filename})
}

func (svc *Service) removeImages(ctx context.Context, names []string) {
	log := logger.FromContext(ctx)

	for _, name := range names {
		if err := svc.images.Remove(ctx, name); err != nil {
			log.Warn("failed to remove image", logger.Data{"image": name, "error": err.Error()})
		}
	}
}

func booksByISBN(ctx context.Context, tx bun.Tx, isbn string) ([]*models.Book, error) {
	books := []*models.Book{}

	err := tx.
		NewSelect().
		Model(&books).
		Where("b.isbn = ?", isbn).
		Order("b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}
