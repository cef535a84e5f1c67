package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/htol/locallibrary/book"
)

func (r *Repo) FindBookInstances(ctx context.Context, q Query) ([]book.BookInstance, error) {
	return find[book.BookInstance](ctx, r, BookInstances, instanceColumns, q)
}

func (r *Repo) GetBookInstance(ctx context.Context, id string) (*book.BookInstance, error) {
	return findOne[book.BookInstance](ctx, r, BookInstances, instanceColumns, id)
}

func (r *Repo) InsertBookInstance(ctx context.Context, bi *book.BookInstance) error {
	id := uuid.NewString()
	if err := insert(ctx, r, r.db, BookInstances, instanceValues(id, bi)); err != nil {
		return err
	}
	bi.ID = id
	return nil
}

func (r *Repo) ReplaceBookInstance(ctx context.Context, bi *book.BookInstance) error {
	values := instanceValues(bi.ID, bi)
	delete(values, "id")
	return replace(ctx, r, r.db, BookInstances, bi.ID, values)
}

func (r *Repo) DeleteBookInstance(ctx context.Context, id string) error {
	return remove(ctx, r, r.db, BookInstances, id)
}

func instanceValues(id string, bi *book.BookInstance) map[string]any {
	return map[string]any{
		"id":       id,
		"book_id":  bi.BookID,
		"imprint":  bi.Imprint,
		"status":   string(bi.Status),
		"due_back": bi.DueBack,
	}
}
