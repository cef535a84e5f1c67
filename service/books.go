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

// BookList renders every book by title, with its author resolved.
func (s *Service) BookList(ctx context.Context) (*Result, error) {
	books, err := s.repo.FindBooks(ctx, repo.Query{
		Fields: []string{"title", "author_id"},
		Sort:   []string{"title ASC"},
	})
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	if err := s.repo.PopulateAuthors(ctx, books); err != nil {
		return nil, err
	}
	return render("book_list", Data{"title": "Book List", "book_list": books}), nil
}

// BookDetail renders one book with its author, genres and copies.
func (s *Service) BookDetail(ctx context.Context, id string) (*Result, error) {
	b, instances, err := s.bookWithInstances(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("book detail %s: %w", id, err)
	}
	if b == nil {
		return nil, notFound("Book not found")
	}
	if b.Author == nil {
		return nil, notFound("Author not found")
	}
	return render("book_detail", Data{"title": b.Title, "book": b, "book_instances": instances}), nil
}

// BookCreateForm renders an empty form with the author and genre choices.
func (s *Service) BookCreateForm(ctx context.Context) (*Result, error) {
	return s.bookForm(ctx, "Create Book", nil, nil)
}

// BookCreate validates the submission and stores a new book.
func (s *Service) BookCreate(ctx context.Context, values url.Values) (*Result, error) {
	b, form := bookFromForm(values)
	if !form.Valid() {
		return s.bookForm(ctx, "Create Book", b, form.Errors())
	}

	if err := s.repo.InsertBook(ctx, b); err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return redirect(b.URL()), nil
}

// BookUpdateForm renders the stored book with its author selected and its
// genres checked.
func (s *Service) BookUpdateForm(ctx context.Context, id string) (*Result, error) {
	var (
		b       *book.Book
		authors []book.Author
		genres  []book.Genre
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		b, err = s.repo.GetBook(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		authors, genres, err = s.bookChoices(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, lookupErr(err, "Book not found", "book update form "+id)
	}

	return render("book_form", Data{
		"title":   "Update Book",
		"book":    b,
		"authors": authorOptions(authors, b.AuthorID),
		"genres":  genreOptions(genres, b.GenreIDs),
	}), nil
}

// BookUpdate replaces the book at id, including its whole genre set.
func (s *Service) BookUpdate(ctx context.Context, id string, values url.Values) (*Result, error) {
	b, form := bookFromForm(values)
	b.ID = id
	if !form.Valid() {
		return s.bookForm(ctx, "Update Book", b, form.Errors())
	}

	if err := s.repo.ReplaceBook(ctx, b); err != nil {
		return nil, lookupErr(err, "Book not found", "replace book "+id)
	}
	return redirect(b.URL()), nil
}

// BookDeleteForm asks for confirmation, listing the copies that block deletion.
func (s *Service) BookDeleteForm(ctx context.Context, id string) (*Result, error) {
	b, instances, err := s.bookWithInstances(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("book delete %s: %w", id, err)
	}
	if b == nil {
		return redirect(bookListURL), nil
	}
	return bookDeleteView(b, instances), nil
}

// BookDelete removes the book unless copies of it still exist.
func (s *Service) BookDelete(ctx context.Context, id string) (*Result, error) {
	b, instances, err := s.bookWithInstances(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("book delete %s: %w", id, err)
	}
	if b == nil {
		return redirect(bookListURL), nil
	}
	if len(instances) > 0 {
		return bookDeleteView(b, instances), nil
	}

	if err := ignoreNotFound(s.repo.DeleteBook(ctx, id)); err != nil {
		return nil, fmt.Errorf("delete book %s: %w", id, err)
	}
	return redirect(bookListURL), nil
}

func bookDeleteView(b *book.Book, instances []book.BookInstance) *Result {
	return render("book_delete", Data{"title": "Delete Book", "book": b, "book_instances": instances})
}

// bookForm renders the book form around b (nil for an empty form). Genres in
// b.GenreIDs are checked and b.AuthorID is selected.
func (s *Service) bookForm(ctx context.Context, title string, b *book.Book, errs []validator.FieldError) (*Result, error) {
	authors, genres, err := s.bookChoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("book form: %w", err)
	}

	var authorID string
	var genreIDs []string
	if b != nil {
		authorID, genreIDs = b.AuthorID, b.GenreIDs
	}

	data := Data{
		"title":   title,
		"authors": authorOptions(authors, authorID),
		"genres":  genreOptions(genres, genreIDs),
	}
	if b != nil {
		data["book"] = b
	}
	if len(errs) > 0 {
		data["errors"] = errs
	}
	return render("book_form", data), nil
}

// bookChoices reads the author and genre lists for the book form concurrently.
func (s *Service) bookChoices(ctx context.Context) ([]book.Author, []book.Genre, error) {
	var (
		authors []book.Author
		genres  []book.Genre
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		authors, err = s.repo.FindAuthors(ctx, repo.Query{Sort: []string{"family_name ASC"}})
		return err
	})
	g.Go(func() error {
		var err error
		genres, err = s.repo.FindGenres(ctx, repo.Query{Sort: []string{"name ASC"}})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return authors, genres, nil
}

// bookWithInstances reads the book, resolved with its author and genres, and
// its copies concurrently. A missing book comes back as nil.
func (s *Service) bookWithInstances(ctx context.Context, id string) (*book.Book, []book.BookInstance, error) {
	var (
		b         *book.Book
		instances []book.BookInstance
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := optional(s.repo.GetBook(ctx, id))
		if err != nil || found == nil {
			return err
		}
		if err := s.resolveBook(ctx, found); err != nil {
			return err
		}
		b = found
		return nil
	})
	g.Go(func() error {
		var err error
		instances, err = s.repo.FindBookInstances(ctx, repo.Query{Filter: repo.ByBook(id)})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return b, instances, nil
}

// resolveBook fills in the author and genres of a single book.
func (s *Service) resolveBook(ctx context.Context, b *book.Book) error {
	books := []book.Book{*b}
	if err := s.repo.PopulateAuthors(ctx, books); err != nil {
		return err
	}
	if err := s.repo.PopulateGenres(ctx, books); err != nil {
		return err
	}
	*b = books[0]
	return nil
}

func bookFromForm(values url.Values) (*book.Book, *validator.Form) {
	f := validator.NewForm(values)
	b := &book.Book{
		Title:    f.Field("title").Trim().Required("Title must not be empty.").Escape().String(),
		AuthorID: f.Field("author").Trim().Required("Author must not be empty.").Escape().String(),
		Summary:  f.Field("summary").Trim().Required("Summary must not be empty.").Escape().String(),
		ISBN:     f.Field("isbn").Trim().Required("ISBN must not be empty.").Escape().String(),
		GenreIDs: f.Array("genre").Trim().Escape().Compact().Strings(),
	}
	return b, f
}
