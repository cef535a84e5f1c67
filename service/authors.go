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

// AuthorList renders every author ordered by family name.
func (s *Service) AuthorList(ctx context.Context) (*Result, error) {
	authors, err := s.repo.FindAuthors(ctx, repo.Query{Sort: []string{"family_name ASC"}})
	if err != nil {
		return nil, fmt.Errorf("find authors: %w", err)
	}
	return render("author_list", Data{"title": "Author List", "author_list": authors}), nil
}

// AuthorDetail renders one author with the books they wrote.
func (s *Service) AuthorDetail(ctx context.Context, id string) (*Result, error) {
	author, books, err := s.authorWithBooks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("author detail %s: %w", id, err)
	}
	if author == nil {
		return nil, notFound("Author not found")
	}
	return render("author_detail", Data{"title": "Author Detail", "author": author, "author_books": books}), nil
}

func (s *Service) AuthorCreateForm(ctx context.Context) (*Result, error) {
	return render("author_form", Data{"title": "Create Author"}), nil
}

// AuthorCreate validates the submission and stores a new author.
func (s *Service) AuthorCreate(ctx context.Context, values url.Values) (*Result, error) {
	author, form := authorFromForm(values)
	if !form.Valid() {
		return render("author_form", Data{"title": "Create Author", "author": author, "errors": form.Errors()}), nil
	}

	if err := s.repo.InsertAuthor(ctx, author); err != nil {
		return nil, fmt.Errorf("insert author: %w", err)
	}
	return redirect(author.URL()), nil
}

func (s *Service) AuthorUpdateForm(ctx context.Context, id string) (*Result, error) {
	author, err := s.repo.GetAuthor(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Author not found", "get author "+id)
	}
	return render("author_form", Data{"title": "Update Author", "author": author}), nil
}

// AuthorUpdate replaces the whole author record at id.
func (s *Service) AuthorUpdate(ctx context.Context, id string, values url.Values) (*Result, error) {
	author, form := authorFromForm(values)
	author.ID = id
	if !form.Valid() {
		return render("author_form", Data{"title": "Update Author", "author": author, "errors": form.Errors()}), nil
	}

	if err := s.repo.ReplaceAuthor(ctx, author); err != nil {
		return nil, lookupErr(err, "Author not found", "replace author "+id)
	}
	return redirect(author.URL()), nil
}

// AuthorDeleteForm asks for confirmation, listing the books that block deletion.
func (s *Service) AuthorDeleteForm(ctx context.Context, id string) (*Result, error) {
	author, books, err := s.authorWithBooks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("author delete %s: %w", id, err)
	}
	if author == nil {
		return redirect(authorListURL), nil
	}
	return render("author_delete", Data{"title": "Delete Author", "author": author, "author_books": books}), nil
}

// AuthorDelete removes the author unless books still reference it.
func (s *Service) AuthorDelete(ctx context.Context, id string) (*Result, error) {
	author, books, err := s.authorWithBooks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("author delete %s: %w", id, err)
	}
	if author == nil {
		return redirect(authorListURL), nil
	}
	if len(books) > 0 {
		return render("author_delete", Data{"title": "Delete Author", "author": author, "author_books": books}), nil
	}

	if err := ignoreNotFound(s.repo.DeleteAuthor(ctx, id)); err != nil {
		return nil, fmt.Errorf("delete author %s: %w", id, err)
	}
	return redirect(authorListURL), nil
}

// authorWithBooks reads the author and its books concurrently. A missing
// author comes back as nil.
func (s *Service) authorWithBooks(ctx context.Context, id string) (*book.Author, []book.Book, error) {
	var (
		author *book.Author
		books  []book.Book
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		author, err = optional(s.repo.GetAuthor(ctx, id))
		return err
	})
	g.Go(func() error {
		var err error
		books, err = s.repo.FindBooks(ctx, repo.Query{
			Filter: repo.ByAuthor(id),
			Fields: []string{"title", "summary"},
			Sort:   []string{"title ASC"},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return author, books, nil
}

func authorFromForm(values url.Values) (*book.Author, *validator.Form) {
	f := validator.NewForm(values)
	author := &book.Author{
		FirstName: f.Field("first_name").Trim().
			Required("First name must be specified.").
			Alphanumeric("First name has non-alphanumeric characters.").
			Escape().String(),
		FamilyName: f.Field("family_name").Trim().
			Required("Family name must be specified.").
			Alphanumeric("Family name has non-alphanumeric characters.").
			Escape().String(),
		DateOfBirth: f.Field("date_of_birth").Trim().Date("Invalid date of birth"),
		DateOfDeath: f.Field("date_of_death").Trim().Date("Invalid date of death"),
	}
	return author, f
}
