package service

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htol/locallibrary/book"
	"github.com/htol/locallibrary/repo"
)

// newFileService opens a file database with an unbounded pool, so requests
// and errgroup fan-outs really run on separate connections.
func newFileService(t *testing.T) *Service {
	t.Helper()
	storage := repo.GetStorage(filepath.Join(t.TempDir(), "library.db"))
	t.Cleanup(func() {
		if err := storage.Close(); err != nil {
			t.Logf("Error closing storage: %v", err)
		}
	})
	return New(storage)
}

func TestService_ConcurrentWritesAndReads(t *testing.T) {
	ctx := context.Background()
	svc := newFileService(t)

	authorID := createAuthor(t, svc, "Patrick", "Rothfuss")
	genreID := createGenre(t, svc, "Fantasy")

	const workers, calls = 20, 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for w := range workers {
		wg.Go(func() {
			for i := range calls {
				res, err := svc.BookCreate(ctx, url.Values{
					"title":   {fmt.Sprintf("Book %d-%d", w, i)},
					"author":  {authorID},
					"summary": {"A summary."},
					"isbn":    {"9780000000000"},
					"genre":   {genreID},
				})
				if err != nil {
					record(err)
				} else if res.Redirect == "" {
					record(fmt.Errorf("book %d-%d rejected: %v", w, i, res.Data["errors"]))
				}
			}
		})
		wg.Go(func() {
			for range calls {
				if _, err := svc.AuthorDetail(ctx, authorID); err != nil {
					record(err)
				}
				if _, err := svc.Index(ctx); err != nil {
					record(err)
				}
			}
		})
	}
	wg.Wait()

	require.Empty(t, errs)

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*calls, counts.Books)

	res, err := svc.GenreDetail(ctx, genreID)
	require.NoError(t, err)
	assert.Len(t, res.Data["genre_books"], workers*calls)
}

func TestService_ConcurrentBookUpdates(t *testing.T) {
	ctx := context.Background()
	svc := newFileService(t)

	authorID := createAuthor(t, svc, "Ben", "Bova")
	genres := []string{createGenre(t, svc, "Science Fiction"), createGenre(t, svc, "Space Opera")}
	bookID := createBook(t, svc, "Death Wave", authorID)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := range 10 {
		wg.Go(func() {
			_, err := svc.BookUpdate(ctx, bookID, url.Values{
				"title":   {"Death Wave"},
				"author":  {authorID},
				"summary": {fmt.Sprintf("Revision %d.", i)},
				"isbn":    {"9780765379504"},
				"genre":   {genres[i%2]},
			})
			if err == nil {
				_, err = svc.BookDetail(ctx, bookID)
			}
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	require.Empty(t, errs)

	res, err := svc.BookUpdateForm(ctx, bookID)
	require.NoError(t, err)
	b, ok := res.Data["book"].(*book.Book)
	require.True(t, ok)
	assert.Len(t, b.GenreIDs, 1)
	assert.Contains(t, genres, b.GenreIDs[0])
}

func TestService_BookDetailResolvesWithinFanOut(t *testing.T) {
	ctx := context.Background()
	svc := newFileService(t)

	authorID := createAuthor(t, svc, "Isaac", "Asimov")
	genreID := createGenre(t, svc, "Science Fiction")
	bookID := createBook(t, svc, "Foundation", authorID, genreID)
	createInstance(t, svc, bookID, book.StatusAvailable)

	for _, op := range []func(context.Context, string) (*Result, error){svc.BookDetail, svc.BookDeleteForm} {
		res, err := op(ctx, bookID)
		require.NoError(t, err)

		b, ok := res.Data["book"].(*book.Book)
		require.True(t, ok)
		require.NotNil(t, b.Author)
		assert.Equal(t, "Asimov, Isaac", b.Author.Name())
		require.Len(t, b.Genres, 1)
		assert.Equal(t, "Science Fiction", b.Genres[0].Name)
		assert.Len(t, res.Data["book_instances"], 1)
	}
}
