package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/htol/locallibrary/book"
)

func (r *Repo) FindAuthors(ctx context.Context, q Query) ([]book.Author, error) {
	return find[book.Author](ctx, r, Authors, authorColumns, q)
}

func (r *Repo) GetAuthor(ctx context.Context, id string) (*book.Author, error) {
	return findOne[book.Author](ctx, r, Authors, authorColumns, id)
}

// InsertAuthor stores a and sets its new identity.
func (r *Repo) InsertAuthor(ctx context.Context, a *book.Author) error {
	id := uuid.NewString()
	if err := insert(ctx, r, r.db, Authors, authorValues(id, a)); err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *Repo) ReplaceAuthor(ctx context.Context, a *book.Author) error {
	values := authorValues(a.ID, a)
	delete(values, "id")
	return replace(ctx, r, r.db, Authors, a.ID, values)
}

func (r *Repo) DeleteAuthor(ctx context.Context, id string) error {
	return remove(ctx, r, r.db, Authors, id)
}

func authorValues(id string, a *book.Author) map[string]any {
	return map[string]any{
		"id":            id,
		"first_name":    a.FirstName,
		"family_name":   a.FamilyName,
		"date_of_birth": a.DateOfBirth,
		"date_of_death": a.DateOfDeath,
	}
}
