package repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/htol/locallibrary/book"
)

const bookGenres = "book_genres"

type genreLink struct {
	BookID   string `db:"book_id"`
	GenreID  string `db:"genre_id"`
	Position int    `db:"position"`
}

func (r *Repo) FindBooks(ctx context.Context, q Query) ([]book.Book, error) {
	books, err := find[book.Book](ctx, r, Books, bookColumns, q)
	if err != nil {
		return nil, err
	}
	if len(q.Fields) == 0 {
		if err := r.loadGenreIDs(ctx, books); err != nil {
			return nil, err
		}
	}
	return books, nil
}

func (r *Repo) GetBook(ctx context.Context, id string) (*book.Book, error) {
	b, err := findOne[book.Book](ctx, r, Books, bookColumns, id)
	if err != nil {
		return nil, err
	}
	books := []book.Book{*b}
	if err := r.loadGenreIDs(ctx, books); err != nil {
		return nil, err
	}
	return &books[0], nil
}

// InsertBook stores the book row and its genre references atomically.
func (r *Repo) InsertBook(ctx context.Context, b *book.Book) error {
	id := uuid.NewString()
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := insert(ctx, r, tx, Books, bookValues(id, b)); err != nil {
			return err
		}
		return insertLinks(ctx, r, tx, id, b.GenreIDs)
	})
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// ReplaceBook overwrites the row and swaps the whole genre set.
func (r *Repo) ReplaceBook(ctx context.Context, b *book.Book) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		values := bookValues(b.ID, b)
		delete(values, "id")
		if err := replace(ctx, r, tx, Books, b.ID, values); err != nil {
			return err
		}
		if err := deleteLinks(ctx, r, tx, "book_id", b.ID); err != nil {
			return err
		}
		return insertLinks(ctx, r, tx, b.ID, b.GenreIDs)
	})
}

func (r *Repo) DeleteBook(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := remove(ctx, r, tx, Books, id); err != nil {
			return err
		}
		return deleteLinks(ctx, r, tx, "book_id", id)
	})
}

func bookValues(id string, b *book.Book) map[string]any {
	return map[string]any{
		"id":        id,
		"title":     b.Title,
		"summary":   b.Summary,
		"isbn":      b.ISBN,
		"author_id": b.AuthorID,
	}
}

func insertLinks(ctx context.Context, r *Repo, ext sqlx.ExtContext, bookID string, genreIDs []string) error {
	genreIDs = lo.Uniq(lo.Compact(genreIDs))
	if len(genreIDs) == 0 {
		return nil
	}

	ib := r.sb.Insert(bookGenres).Columns("book_id", "genre_id", "position")
	for i, gid := range genreIDs {
		ib = ib.Values(bookID, gid, i)
	}

	query, args, err := ib.ToSql()
	if err != nil {
		return fmt.Errorf("build genre references insert: %w", err)
	}
	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert genre references for book %s: %w", bookID, err)
	}
	return nil
}

func deleteLinks(ctx context.Context, r *Repo, ext sqlx.ExtContext, column, id string) error {
	query, args, err := r.sb.Delete(bookGenres).Where(squirrel.Eq{column: id}).ToSql()
	if err != nil {
		return fmt.Errorf("build genre references delete: %w", err)
	}
	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete genre references by %s %s: %w", column, id, err)
	}
	return nil
}

// loadGenreIDs fills GenreIDs of every book, keeping the submitted order.
func (r *Repo) loadGenreIDs(ctx context.Context, books []book.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := lo.Map(books, func(b book.Book, _ int) string { return b.ID })

	query, args, err := r.sb.Select("book_id", "genre_id", "position").
		From(bookGenres).
		Where(squirrel.Eq{"book_id": ids}).
		OrderBy("book_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build genre references query: %w", err)
	}

	var links []genreLink
	if err := r.db.SelectContext(ctx, &links, query, args...); err != nil {
		return fmt.Errorf("query genre references: %w", err)
	}

	byBook := lo.GroupBy(links, func(l genreLink) string { return l.BookID })
	for i := range books {
		books[i].GenreIDs = lo.Map(byBook[books[i].ID], func(l genreLink, _ int) string { return l.GenreID })
	}
	return nil
}
