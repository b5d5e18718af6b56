package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		// isbn has no unique index. Uniqueness is only checked when a book is
		// created.
		idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
		if db.Dialect().Name() == dialect.PG {
			idColumn = "id SERIAL PRIMARY KEY"
		}
		_, err := db.ExecContext(ctx, `
			CREATE TABLE book (
				`+idColumn+`,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				isbn TEXT NOT NULL,
				name TEXT NOT NULL,
				year TEXT NOT NULL,
				author TEXT NOT NULL,
				description TEXT NOT NULL,
				image TEXT NOT NULL DEFAULT ''
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.ExecContext(ctx, `CREATE INDEX ix_book_isbn ON book (isbn)`)
		return errors.WithStack(err)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS book")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
