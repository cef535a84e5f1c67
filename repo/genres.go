package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/htol/locallibrary/book"
)

func (r *Repo) FindGenres(ctx context.Context, q Query) ([]book.Genre, error) {
	return find[book.Genre](ctx, r, Genres, genreColumns, q)
}

func (r *Repo) GetGenre(ctx context.Context, id string) (*book.Genre, error) {
	return findOne[book.Genre](ctx, r, Genres, genreColumns, id)
}

func (r *Repo) InsertGenre(ctx context.Context, g *book.Genre) error {
	id := uuid.NewString()
	if err := insert(ctx, r, r.db, Genres, map[string]any{"id": id, "name": g.Name}); err != nil {
		return err
	}
	g.ID = id
	return nil
}

func (r *Repo) ReplaceGenre(ctx context.Context, g *book.Genre) error {
	return replace(ctx, r, r.db, Genres, g.ID, map[string]any{"name": g.Name})
}

// DeleteGenre removes the genre and any book references to it.
func (r *Repo) DeleteGenre(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := remove(ctx, r, tx, Genres, id); err != nil {
			return err
		}
		return deleteLinks(ctx, r, tx, "genre_id", id)
	})
}
