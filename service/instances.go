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

// BookInstanceList renders every copy with its book resolved.
func (s *Service) BookInstanceList(ctx context.Context) (*Result, error) {
	instances, err := s.repo.FindBookInstances(ctx, repo.Query{})
	if err != nil {
		return nil, fmt.Errorf("find book instances: %w", err)
	}
	if err := s.repo.PopulateBooks(ctx, instances); err != nil {
		return nil, err
	}
	return render("bookinstance_list", Data{"title": "Book Instance List", "bookinstance_list": instances}), nil
}

// BookInstanceDetail renders one copy. A copy whose book is gone is reported
// as not found too.
func (s *Service) BookInstanceDetail(ctx context.Context, id string) (*Result, error) {
	bi, err := s.instanceWithBook(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Book copy not found", "get book instance "+id)
	}
	if bi.Book == nil {
		return nil, notFound("Book copy not found")
	}
	return render("bookinstance_detail", Data{"title": "Copy: " + bi.Book.Title, "bookinstance": bi}), nil
}

func (s *Service) BookInstanceCreateForm(ctx context.Context) (*Result, error) {
	return s.instanceForm(ctx, "Create Book Instance", nil, nil)
}

// BookInstanceCreate validates the submission and stores a new copy.
func (s *Service) BookInstanceCreate(ctx context.Context, values url.Values) (*Result, error) {
	bi, form := instanceFromForm(values)
	if !form.Valid() {
		return s.instanceForm(ctx, "Create Book Instance", bi, form.Errors())
	}

	if err := s.repo.InsertBookInstance(ctx, bi); err != nil {
		return nil, fmt.Errorf("insert book instance: %w", err)
	}
	return redirect(bi.URL()), nil
}

// BookInstanceUpdateForm renders the stored copy with its book selected.
func (s *Service) BookInstanceUpdateForm(ctx context.Context, id string) (*Result, error) {
	var (
		bi    *book.BookInstance
		books []book.Book
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bi, err = s.repo.GetBookInstance(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		books, err = s.bookChoicesForCopy(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, lookupErr(err, "Book Instance not found", "book instance update form "+id)
	}
	return render("bookinstance_form", instanceFormData("Update Book Instance", bi, books, nil)), nil
}

// BookInstanceUpdate replaces the copy at id.
func (s *Service) BookInstanceUpdate(ctx context.Context, id string, values url.Values) (*Result, error) {
	bi, form := instanceFromForm(values)
	bi.ID = id
	if !form.Valid() {
		return s.instanceForm(ctx, "Update Book Instance", bi, form.Errors())
	}

	if err := s.repo.ReplaceBookInstance(ctx, bi); err != nil {
		return nil, lookupErr(err, "Book Instance not found", "replace book instance "+id)
	}
	return redirect(bi.URL()), nil
}

func (s *Service) BookInstanceDeleteForm(ctx context.Context, id string) (*Result, error) {
	bi, err := optional(s.instanceWithBook(ctx, id))
	if err != nil {
		return nil, fmt.Errorf("book instance delete %s: %w", id, err)
	}
	if bi == nil {
		return redirect(bookInstanceListURL), nil
	}
	return render("bookinstance_delete", Data{"title": "Delete Book Instance", "bookinstance": bi}), nil
}

// BookInstanceDelete removes the copy. Copies have no dependents.
func (s *Service) BookInstanceDelete(ctx context.Context, id string) (*Result, error) {
	if err := ignoreNotFound(s.repo.DeleteBookInstance(ctx, id)); err != nil {
		return nil, fmt.Errorf("delete book instance %s: %w", id, err)
	}
	return redirect(bookInstanceListURL), nil
}

func (s *Service) instanceWithBook(ctx context.Context, id string) (*book.BookInstance, error) {
	bi, err := s.repo.GetBookInstance(ctx, id)
	if err != nil {
		return nil, err
	}
	instances := []book.BookInstance{*bi}
	if err := s.repo.PopulateBooks(ctx, instances); err != nil {
		return nil, err
	}
	return &instances[0], nil
}

func (s *Service) instanceForm(ctx context.Context, title string, bi *book.BookInstance, errs []validator.FieldError) (*Result, error) {
	books, err := s.bookChoicesForCopy(ctx)
	if err != nil {
		return nil, fmt.Errorf("book instance form: %w", err)
	}
	return render("bookinstance_form", instanceFormData(title, bi, books, errs)), nil
}

func (s *Service) bookChoicesForCopy(ctx context.Context) ([]book.Book, error) {
	return s.repo.FindBooks(ctx, repo.Query{Fields: []string{"title"}, Sort: []string{"title ASC"}})
}

func instanceFormData(title string, bi *book.BookInstance, books []book.Book, errs []validator.FieldError) Data {
	var selected string
	if bi != nil {
		selected = bi.BookID
	}
	data := Data{
		"title":         title,
		"book_list":     bookOptions(books, selected),
		"selected_book": selected,
		"statuses":      book.Statuses(),
	}
	if bi != nil {
		data["bookinstance"] = bi
	}
	if len(errs) > 0 {
		data["errors"] = errs
	}
	return data
}

func instanceFromForm(values url.Values) (*book.BookInstance, *validator.Form) {
	f := validator.NewForm(values)
	bi := &book.BookInstance{
		BookID:  f.Field("book").Trim().Required("Book must be specified.").Escape().String(),
		Imprint: f.Field("imprint").Trim().Required("Imprint must be specified.").Escape().String(),
		Status: book.Status(f.Field("status").Trim().Escape().
			Default(string(book.DefaultStatus)).
			OneOf("Invalid status.", book.StatusNames()...).
			String()),
		DueBack: f.Field("due_back").Trim().Date("Invalid date."),
	}
	return bi, f
}
