package repo

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/htol/locallibrary/book"
	"github.com/htol/locallibrary/validator"
)

var (
	// ErrNotFound is returned when a record is not found in the repository
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned for identities the store could never have issued
	ErrInvalidID = validator.ErrInvalidID
)

// Filter restricts a find or count. It is any squirrel predicate.
type Filter = squirrel.Sqlizer

// Collection names a stored record set.
type Collection string

const (
	Authors       Collection = "authors"
	Books         Collection = "books"
	Genres        Collection = "genres"
	BookInstances Collection = "book_instances"
)

// Query describes a find over one collection. Filtering, sorting and
// projection are independent; reference resolution is a separate step
// (see the Populate methods).
type Query struct {
	// Filter restricts the result; nil selects every record.
	Filter Filter
	// Sort holds ORDER BY terms such as "family_name ASC".
	Sort []string
	// Fields limits the columns read. The id is always included.
	// Book genre references are only loaded when Fields is empty.
	Fields []string
}

// Repository defines the data access operations used by the catalogue service
type Repository interface {
	// Close closes the database connection
	Close() error

	// Health check
	Ping(ctx context.Context) error

	// Counts
	Count(ctx context.Context, c Collection, filter Filter) (int, error)

	// Authors
	FindAuthors(ctx context.Context, q Query) ([]book.Author, error)
	GetAuthor(ctx context.Context, id string) (*book.Author, error)
	InsertAuthor(ctx context.Context, a *book.Author) error
	ReplaceAuthor(ctx context.Context, a *book.Author) error
	DeleteAuthor(ctx context.Context, id string) error

	// Books
	FindBooks(ctx context.Context, q Query) ([]book.Book, error)
	GetBook(ctx context.Context, id string) (*book.Book, error)
	InsertBook(ctx context.Context, b *book.Book) error
	ReplaceBook(ctx context.Context, b *book.Book) error
	DeleteBook(ctx context.Context, id string) error

	// Genres
	FindGenres(ctx context.Context, q Query) ([]book.Genre, error)
	GetGenre(ctx context.Context, id string) (*book.Genre, error)
	InsertGenre(ctx context.Context, g *book.Genre) error
	ReplaceGenre(ctx context.Context, g *book.Genre) error
	DeleteGenre(ctx context.Context, id string) error

	// Book instances
	FindBookInstances(ctx context.Context, q Query) ([]book.BookInstance, error)
	GetBookInstance(ctx context.Context, id string) (*book.BookInstance, error)
	InsertBookInstance(ctx context.Context, bi *book.BookInstance) error
	ReplaceBookInstance(ctx context.Context, bi *book.BookInstance) error
	DeleteBookInstance(ctx context.Context, id string) error

	// Reference resolution
	PopulateAuthors(ctx context.Context, books []book.Book) error
	PopulateGenres(ctx context.Context, books []book.Book) error
	PopulateBooks(ctx context.Context, instances []book.BookInstance) error
}

// ByAuthor selects books written by the given author.
func ByAuthor(authorID string) Filter {
	return squirrel.Eq{"author_id": authorID}
}

// ByGenre selects books tagged with the given genre.
func ByGenre(genreID string) Filter {
	return squirrel.Expr("id IN (SELECT book_id FROM book_genres WHERE genre_id = ?)", genreID)
}

// ByBook selects copies of the given book.
func ByBook(bookID string) Filter {
	return squirrel.Eq{"book_id": bookID}
}

// ByStatus selects copies in the given circulation state.
func ByStatus(s book.Status) Filter {
	return squirrel.Eq{"status": string(s)}
}

// ByName selects genres with exactly this name.
func ByName(name string) Filter {
	return squirrel.Eq{"name": name}
}
