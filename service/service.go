// Package service provides business logic layer between HTTP handlers and repository
package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/htol/locallibrary/book"
	"github.com/htol/locallibrary/repo"
)

// Data is the view-model handed to a template.
type Data map[string]any

// Result is the outcome of one catalogue operation: either a view to render
// with its data, or a location to redirect to.
type Result struct {
	View     string
	Data     Data
	Redirect string
}

func render(view string, data Data) *Result {
	return &Result{View: view, Data: data}
}

func redirect(location string) *Result {
	return &Result{Redirect: location}
}

// NotFoundError reports an absent primary record. It matches repo.ErrNotFound
// with errors.Is.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Unwrap() error {
	return repo.ErrNotFound
}

func notFound(msg string) error {
	return &NotFoundError{Message: msg}
}

// lookupErr turns an absent record into a NotFoundError and wraps anything else.
func lookupErr(err error, msg, op string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFound(msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// optional treats an absent record as nil instead of an error.
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

// ignoreNotFound drops repo.ErrNotFound, for deletes racing another delete.
func ignoreNotFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	return err
}

// List pages; deletes and absent delete targets redirect here.
const (
	authorListURL       = book.CatalogPrefix + "/authors"
	bookListURL         = book.CatalogPrefix + "/books"
	genreListURL        = book.CatalogPrefix + "/genres"
	bookInstanceListURL = book.CatalogPrefix + "/bookinstances"
)

// Service provides business logic for the application
type Service struct {
	repo repo.Repository
}

// New creates a new Service with the given repository
func New(repo repo.Repository) *Service {
	return &Service{repo: repo}
}

// Ping checks the health of the service and its dependencies
func (s *Service) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository ping: %w", err)
	}
	return nil
}

// Counts returns the catalogue totals, read concurrently.
func (s *Service) Counts(ctx context.Context) (book.Counts, error) {
	var counts book.Counts
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int, c repo.Collection, filter repo.Filter) {
		g.Go(func() error {
			n, err := s.repo.Count(ctx, c, filter)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(&counts.Books, repo.Books, nil)
	count(&counts.BookInstances, repo.BookInstances, nil)
	count(&counts.AvailableInstances, repo.BookInstances, repo.ByStatus(book.StatusAvailable))
	count(&counts.Authors, repo.Authors, nil)
	count(&counts.Genres, repo.Genres, nil)

	if err := g.Wait(); err != nil {
		return book.Counts{}, fmt.Errorf("count catalogue: %w", err)
	}
	return counts, nil
}

// Index renders the home page with the catalogue totals.
func (s *Service) Index(ctx context.Context) (*Result, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return nil, err
	}
	return render("index", Data{"title": "Local Library Home", "data": counts}), nil
}

// Catalogue returns every book with its author and genres resolved, by title.
func (s *Service) Catalogue(ctx context.Context) ([]book.Book, error) {
	books, err := s.repo.FindBooks(ctx, repo.Query{Sort: []string{"title ASC"}})
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	if err := s.repo.PopulateAuthors(ctx, books); err != nil {
		return nil, err
	}
	if err := s.repo.PopulateGenres(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}
