package repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"github.com/htol/locallibrary/book"
)

// PopulateAuthors resolves Book.AuthorID into Book.Author. Books whose author
// no longer exists keep a nil Author.
func (r *Repo) PopulateAuthors(ctx context.Context, books []book.Book) error {
	ids := lo.Uniq(lo.FilterMap(books, func(b book.Book, _ int) (string, bool) {
		return b.AuthorID, b.AuthorID != ""
	}))
	if len(ids) == 0 {
		return nil
	}

	authors, err := r.FindAuthors(ctx, Query{Filter: squirrel.Eq{"id": ids}})
	if err != nil {
		return fmt.Errorf("populate authors: %w", err)
	}

	byID := lo.KeyBy(authors, func(a book.Author) string { return a.ID })
	for i := range books {
		if a, ok := byID[books[i].AuthorID]; ok {
			books[i].Author = &a
		}
	}
	return nil
}

// PopulateGenres resolves Book.GenreIDs into Book.Genres, in reference order.
// Dangling references are skipped.
func (r *Repo) PopulateGenres(ctx context.Context, books []book.Book) error {
	ids := lo.Uniq(lo.FlatMap(books, func(b book.Book, _ int) []string { return b.GenreIDs }))
	if len(ids) == 0 {
		for i := range books {
			books[i].Genres = []book.Genre{}
		}
		return nil
	}

	genres, err := r.FindGenres(ctx, Query{Filter: squirrel.Eq{"id": ids}})
	if err != nil {
		return fmt.Errorf("populate genres: %w", err)
	}

	byID := lo.KeyBy(genres, func(g book.Genre) string { return g.ID })
	for i := range books {
		books[i].Genres = lo.FilterMap(books[i].GenreIDs, func(id string, _ int) (book.Genre, bool) {
			g, ok := byID[id]
			return g, ok
		})
	}
	return nil
}

// PopulateBooks resolves BookInstance.BookID into BookInstance.Book.
func (r *Repo) PopulateBooks(ctx context.Context, instances []book.BookInstance) error {
	ids := lo.Uniq(lo.FilterMap(instances, func(bi book.BookInstance, _ int) (string, bool) {
		return bi.BookID, bi.BookID != ""
	}))
	if len(ids) == 0 {
		return nil
	}

	books, err := r.FindBooks(ctx, Query{Filter: squirrel.Eq{"id": ids}})
	if err != nil {
		return fmt.Errorf("populate books: %w", err)
	}

	byID := lo.KeyBy(books, func(b book.Book) string { return b.ID })
	for i := range instances {
		if b, ok := byID[instances[i].BookID]; ok {
			instances[i].Book = &b
		}
	}
	return nil
}
