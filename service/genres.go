package service

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/htol/locallibrary/book"
	"github.com/htol/locallibrary/repo"
	"github.com/htol/locallibrary/validator"
)

const genreNameTaken = "Genre name already in use"

func (s *Service) GenreList(ctx context.Context) (*Result, error) {
	genres, err := s.repo.FindGenres(ctx, repo.Query{Sort: []string{"name ASC"}})
	if err != nil {
		return nil, fmt.Errorf("find genres: %w", err)
	}
	return render("genre_list", Data{"title": "Genre List", "genre_list": genres}), nil
}

// GenreDetail renders one genre with the books tagged with it.
func (s *Service) GenreDetail(ctx context.Context, id string) (*Result, error) {
	genre, books, err := s.genreWithBooks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("genre detail %s: %w", id, err)
	}
	if genre == nil {
		return nil, notFound("Genre not found")
	}
	return render("genre_detail", Data{"title": "Genre Detail", "genre": genre, "genre_books": books}), nil
}

func (s *Service) GenreCreateForm(ctx context.Context) (*Result, error) {
	return render("genre_form", Data{"title": "Create Genre"}), nil
}

// GenreCreate stores a new genre, or redirects to the genre that already
// carries the submitted name.
func (s *Service) GenreCreate(ctx context.Context, values url.Values) (*Result, error) {
	genre, form := genreFromForm(values)
	if !form.Valid() {
		return render("genre_form", Data{"title": "Create Genre", "genre": genre, "errors": form.Errors()}), nil
	}

	existing, err := s.genreByName(ctx, genre.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return redirect(existing.URL()), nil
	}

	if err := s.repo.InsertGenre(ctx, genre); err != nil {
		return nil, fmt.Errorf("insert genre: %w", err)
	}
	return redirect(genre.URL()), nil
}

func (s *Service) GenreUpdateForm(ctx context.Context, id string) (*Result, error) {
	genre, err := s.repo.GetGenre(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Genre not found", "get genre "+id)
	}
	return render("genre_form", Data{"title": "Update Genre", "genre": genre}), nil
}

// GenreUpdate renames the genre at id. A name owned by another genre is
// refused with a form error.
func (s *Service) GenreUpdate(ctx context.Context, id string, values url.Values) (*Result, error) {
	genre, form := genreFromForm(values)
	genre.ID = id
	if form.Valid() {
		existing, err := s.genreByName(ctx, genre.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			form.AddError("name", genreNameTaken, genre.Name)
		}
	}
	if !form.Valid() {
		return render("genre_form", Data{"title": "Update Genre", "genre": genre, "errors": form.Errors()}), nil
	}

	if err := s.repo.ReplaceGenre(ctx, genre); err != nil {
		return nil, lookupErr(err, "Genre not found", "replace genre "+id)
	}
	return redirect(genre.URL()), nil
}

// GenreDeleteForm asks for confirmation, listing the books that block deletion.
func (s *Service) GenreDeleteForm(ctx context.Context, id string) (*Result, error) {
	genre, books, err := s.genreWithBooks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("genre delete %s: %w", id, err)
	}
	if genre == nil {
		return redirect(genreListURL), nil
	}
	return render("genre_delete", Data{"title": "Delete Genre", "genre": genre, "genre_books": books}), nil
}

// GenreDelete removes the genre unless books are still tagged with it.
func (s *Service) GenreDelete(ctx context.Context, id string) (*Result, error) {
	genre, books, err := s.genreWithBooks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("genre delete %s: %w", id, err)
	}
	if genre == nil {
		return redirect(genreListURL), nil
	}
	if len(books) > 0 {
		return render("genre_delete", Data{"title": "Delete Genre", "genre": genre, "genre_books": books}), nil
	}

	if err := ignoreNotFound(s.repo.DeleteGenre(ctx, id)); err != nil {
		return nil, fmt.Errorf("delete genre %s: %w", id, err)
	}
	return redirect(genreListURL), nil
}

func (s *Service) genreByName(ctx context.Context, name string) (*book.Genre, error) {
	found, err := s.repo.FindGenres(ctx, repo.Query{Filter: repo.ByName(name)})
	if err != nil {
		return nil, fmt.Errorf("find genre by name %q: %w", name, err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (s *Service) genreWithBooks(ctx context.Context, id string) (*book.Genre, []book.Book, error) {
	var (
		genre *book.Genre
		books []book.Book
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		genre, err = optional(s.repo.GetGenre(ctx, id))
		return err
	})
	g.Go(func() error {
		var err error
		books, err = s.repo.FindBooks(ctx, repo.Query{
			Filter: repo.ByGenre(id),
			Fields: []string{"title", "summary"},
			Sort:   []string{"title ASC"},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return genre, books, nil
}

func genreFromForm(values url.Values) (*book.Genre, *validator.Form) {
	f := validator.NewForm(values)
	genre := &book.Genre{
		Name: f.Field("name").Trim().Required("Genre name required").Escape().String(),
	}
	return genre, f
}
