package repo

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htol/locallibrary/book"
	"github.com/htol/locallibrary/config"
	"github.com/htol/locallibrary/logger"
)

func init() {
	logger.InitWithFormat("error", "text", io.Discard)
}

func newTestRepo(t testing.TB) *Repo {
	t.Helper()
	storage := GetStorage(":memory:")
	t.Cleanup(func() {
		if err := storage.Close(); err != nil {
			t.Logf("Error closing storage: %v", err)
		}
	})
	return storage
}

func day(t testing.TB, s string) *time.Time {
	t.Helper()
	d, err := time.Parse(book.DateLayout, s)
	require.NoError(t, err)
	return &d
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestRepo_Ping(t *testing.T) {
	storage := newTestRepo(t)
	assert.NoError(t, storage.Ping(context.Background()))
	assert.Equal(t, DriverSQLite, storage.Driver())
}

func TestRepo_CreateSchemaIsIdempotent(t *testing.T) {
	storage := newTestRepo(t)
	assert.NoError(t, storage.CreateSchema(context.Background()))
}

func TestRepo_AuthorLifecycle(t *testing.T) {
	ctx := context.Background()
	storage := newTestRepo(t)

	a := &book.Author{FirstName: "Isaac", FamilyName: "Asimov", DateOfBirth: day(t, "1920-01-02"), DateOfDeath: day(t, "1992-04-06")}
	require.NoError(t, storage.InsertAuthor(ctx, a))
	require.NotEmpty(t, a.ID)

	got, err := storage.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asimov, Isaac", got.Name())
	assert.Equal(t, "1920-01-02 - 1992-04-06", got.Lifespan())

	// replace is a full overwrite: the dropped death date is gone afterwards
	got.FirstName = "Isaak"
	got.DateOfDeath = nil
	require.NoError(t, storage.ReplaceAuthor(ctx, got))

	again, err := storage.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Isaak", again.FirstName)
	assert.Nil(t, again.DateOfDeath)
	assert.Equal(t, "1920-01-02", again.DateOfBirthFormatted())

	require.NoError(t, storage.DeleteAuthor(ctx, a.ID))
	_, err = storage.GetAuthor(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepo_FindAuthorsSorted(t *testing.T) {
	ctx := context.Background()
	storage := newTestRepo(t)

	for _, name := range []string{"Rothfuss", "Asimov", "Jones"} {
		require.NoError(t, storage.InsertAuthor(ctx, &book.Author{FirstName: "X", FamilyName: name}))
	}

	authors, err := storage.FindAuthors(ctx, Query{Sort: []string{"family_name ASC"}})
	require.NoError(t, err)
	require.Len(t, authors, 3)
	assert.Equal(t, "Asimov", authors[0].FamilyName)
	assert.Equal(t, "Jones", authors[1].FamilyName)
	assert.Equal(t, "Rothfuss", authors[2].FamilyName)
}

func TestRepo_InvalidAndMissingIDs(t *testing.T) {
	ctx := context.Background()
	storage := newTestRepo(t)

	_, err := storage.GetBook(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = storage.GetBook(ctx, "6f1b2f0e-6a43-4c55-9a52-3d7f1a0c9b11")
	assert.ErrorIs(t, err, ErrNotFound)

	err = storage.ReplaceGenre(ctx, &book.Genre{ID: "6f1b2f0e-6a43-4c55-9a52-3d7f1a0c9b11", Name: "Poetry"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = storage.DeleteBookInstance(ctx, "6f1b2f0e-6a43-4c55-9a52-3d7f1a0c9b11")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepo_BookGenresAndPopulate(t *testing.T) {
	ctx := context.Background()
	storage := newTestRepo(t)

	author := &book.Author{FirstName: "Patrick", FamilyName: "Rothfuss"}
	require.NoError(t, storage.InsertAuthor(ctx, author))

	fantasy := &book.Genre{Name: "Fantasy"}
	poetry := &book.Genre{Name: "Poetry"}
	scifi := &book.Genre{Name: "Science Fiction"}
	for _, g := range []*book.Genre{fantasy, poetry, scifi} {
		require.NoError(t, storage.InsertGenre(ctx, g))
	}

	b := &book.Book{
		Title:    "The Name of the Wind",
		Summary:  "A hero tells his story.",
		ISBN:     "9781473211896",
		AuthorID: author.ID,
		GenreIDs: []string{scifi.ID, fantasy.ID, fantasy.ID},
	}
	require.NoError(t, storage.InsertBook(ctx, b))

	got, err := storage.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{scifi.ID, fantasy.ID}, got.GenreIDs)

	books := []book.Book{*got}
	require.NoError(t, storage.PopulateAuthors(ctx, books))
	require.NoError(t, storage.PopulateGenres(ctx, books))
	require.NotNil(t, books[0].Author)
	assert.Equal(t, "Rothfuss, Patrick", books[0].Author.Name())
	require.Len(t, books[0].Genres, 2)
	assert.Equal(t, "Science Fiction", books[0].Genres[0].Name)
	assert.Equal(t, "Fantasy", books[0].Genres[1].Name)

	byGenre, err := storage.FindBooks(ctx, Query{Filter: ByGenre(fantasy.ID)})
	require.NoError(t, err)
	assert.Len(t, byGenre, 1)

	byPoetry, err := storage.FindBooks(ctx, Query{Filter: ByGenre(poetry.ID)})
	require.NoError(t, err)
	assert.Empty(t, byPoetry)

	// replacing with no genres clears the set
	got.GenreIDs = nil
	require.NoError(t, storage.ReplaceBook(ctx, got))
	cleared, err := storage.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.GenreIDs)

	require.NoError(t, storage.DeleteBook(ctx, b.ID))
	n, err := storage.Count(ctx, Books, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepo_FindBooksProjection(t *testing.T) {
	ctx := context.Background()
	storage := newTestRepo(t)

	require.NoError(t, storage.InsertBook(ctx, &book.Book{Title: "B", Summary: "s", ISBN: "1", AuthorID: "a"}))
	require.NoError(t, storage.InsertBook(ctx, &book.Book{Title: "A", Summary: "s", ISBN: "2", AuthorID: "a"}))

	books, err := storage.FindBooks(ctx, Query{Fields: []string{"title"}, Sort: []string{"title ASC"}})
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "A", books[0].Title)
	assert.NotEmpty(t, books[0].ID)
	assert.Empty(t, books[0].Summary)
	assert.Empty(t, books[0].AuthorID)
}

func TestRepo_PopulateSkipsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	storage := newTestRepo(t)

	b := &book.Book{Title: "Orphan", Summary: "s", ISBN: "1", AuthorID: "6f1b2f0e-6a43-4c55-9a52-3d7f1a0c9b11"}
	require.NoError(t, storage.InsertBook(ctx, b))

	books, err := storage.FindBooks(ctx, Query{})
	require.NoError(t, err)
	require.NoError(t, storage.PopulateAuthors(ctx, books))
	assert.Nil(t, books[0].Author)

	instances := []book.BookInstance{{BookID: "6f1b2f0e-6a43-4c55-9a52-3d7f1a0c9b12"}}
	require.NoError(t, storage.PopulateBooks(ctx, instances))
	assert.Nil(t, instances[0].Book)
}

func TestRepo_BookInstances(t *testing.T) {
	ctx := context.Background()
	storage := newTestRepo(t)

	b := &book.Book{Title: "Dune", Summary: "s", ISBN: "1", AuthorID: "a"}
	require.NoError(t, storage.InsertBook(ctx, b))

	loaned := &book.BookInstance{BookID: b.ID, Imprint: "Ace, 1990", Status: book.StatusLoaned, DueBack: day(t, "2026-11-01")}
	available := &book.BookInstance{BookID: b.ID, Imprint: "Ace, 2005", Status: book.StatusAvailable}
	require.NoError(t, storage.InsertBookInstance(ctx, loaned))
	require.NoError(t, storage.InsertBookInstance(ctx, available))

	got, err := storage.GetBookInstance(ctx, loaned.ID)
	require.NoError(t, err)
	assert.Equal(t, book.StatusLoaned, got.Status)
	assert.Equal(t, "2026-11-01", got.DueBackFormatted())

	copies, err := storage.FindBookInstances(ctx, Query{Filter: ByBook(b.ID)})
	require.NoError(t, err)
	require.Len(t, copies, 2)
	require.NoError(t, storage.PopulateBooks(ctx, copies))
	assert.Equal(t, "Dune", copies[0].Book.Title)

	n, err := storage.Count(ctx, BookInstances, ByStatus(book.StatusAvailable))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got.Status = book.StatusAvailable
	got.DueBack = nil
	require.NoError(t, storage.ReplaceBookInstance(ctx, got))
	n, err = storage.Count(ctx, BookInstances, ByStatus(book.StatusAvailable))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRepo_GenreByNameAndDelete(t *testing.T) {
	ctx := context.Background()
	storage := newTestRepo(t)

	g := &book.Genre{Name: "Fantasy"}
	require.NoError(t, storage.InsertGenre(ctx, g))

	found, err := storage.FindGenres(ctx, Query{Filter: ByName("Fantasy")})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, g.ID, found[0].ID)

	none, err := storage.FindGenres(ctx, Query{Filter: ByName("fantasy")})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, storage.DeleteGenre(ctx, g.ID))
	assert.ErrorIs(t, storage.DeleteGenre(ctx, g.ID), ErrNotFound)
}

func TestSQLiteDSN_PrivateCache(t *testing.T) {
	dsn := SQLiteDSN("library.db")

	assert.NotContains(t, dsn, "cache=shared")
	assert.Contains(t, dsn, "_busy_timeout=5000")
	assert.Contains(t, dsn, "_txlock=immediate")
}

func TestGetStorage_FileConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	storage := GetStorage(filepath.Join(t.TempDir(), "library.db"))
	defer func() {
		if err := storage.Close(); err != nil {
			t.Logf("Error closing storage: %v", err)
		}
	}()

	author := &book.Author{FirstName: "Isaac", FamilyName: "Asimov"}
	require.NoError(t, storage.InsertAuthor(ctx, author))

	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	for i := range 16 {
		wg.Go(func() {
			b := &book.Book{Title: fmt.Sprintf("Foundation %d", i), Summary: "Psychohistory.", ISBN: "1", AuthorID: author.ID}
			if err := storage.InsertBook(ctx, b); err != nil {
				t.Logf("insert: %v", err)
				failed.Add(1)
				return
			}
			if _, err := storage.FindBooks(ctx, Query{Filter: ByAuthor(author.ID)}); err != nil {
				t.Logf("find: %v", err)
				failed.Add(1)
			}
		})
	}
	wg.Wait()

	assert.Zero(t, failed.Load())
	n, err := storage.Count(ctx, Books, nil)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
}
