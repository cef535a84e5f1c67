package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htol/locallibrary/config"
	"github.com/htol/locallibrary/logger"
	"github.com/htol/locallibrary/repo"
	"github.com/htol/locallibrary/service"
)

func init() {
	logger.InitWithFormat("error", "text", io.Discard)
}

func TestFromArgs_MissingCommand(t *testing.T) {
	var app appEnv
	var out bytes.Buffer

	err := app.fromArgs(nil, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "usage: locallibrary")
}

func TestFromArgs_Help(t *testing.T) {
	var app appEnv
	err := app.fromArgs([]string{"-h"}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestFromArgs_FlagsOverrideConfig(t *testing.T) {
	var app appEnv
	err := app.fromArgs([]string{"-p", "8081", "-driver", "pgx", "-db", "postgres://localhost/library", "-log-level", "debug", "serve"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "serve", app.cmd)
	assert.Equal(t, 8081, app.config.Server.Port)
	assert.Equal(t, "pgx", app.config.Database.Driver)
	assert.Equal(t, "postgres://localhost/library", app.config.Database.DSN)
	assert.Equal(t, "debug", app.config.LogLevel)
}

func TestRun_UnknownCommand(t *testing.T) {
	app := appEnv{config: config.Load(), cmd: "export"}
	app.config.LogLevel = "error"

	err := app.run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command export")
}

func TestRun_UnsupportedDriver(t *testing.T) {
	app := appEnv{config: config.Load(), cmd: "init"}
	app.config.LogLevel = "error"
	app.config.Database.Driver = "oracle"

	err := app.run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	storage := repo.GetStorage(":memory:")
	defer func() {
		if err := storage.Close(); err != nil {
			t.Logf("Error closing storage: %v", err)
		}
	}()
	svc := service.New(storage)

	require.NoError(t, Seed(ctx, svc))

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(seedAuthors), counts.Authors)
	assert.Equal(t, len(seedGenres), counts.Genres)
	assert.Equal(t, len(seedBooks), counts.Books)
	assert.Equal(t, len(seedCopies), counts.BookInstances)
	assert.Equal(t, 5, counts.AvailableInstances)

	books, err := svc.Catalogue(ctx)
	require.NoError(t, err)
	for _, b := range books {
		require.NotNil(t, b.Author, b.Title)
		if b.Title == "Test Book 1" {
			assert.Len(t, b.Genres, 2)
		}
	}

	assert.ErrorIs(t, Seed(ctx, svc), ErrNotEmpty)
}

func TestNewServer(t *testing.T) {
	storage := repo.GetStorage(":memory:")
	defer func() {
		if err := storage.Close(); err != nil {
			t.Logf("Error closing storage: %v", err)
		}
	}()

	cfg := config.Load()
	cfg.Server.Port = 8099
	cfg.RateLimit.Enabled = false

	srv, err := NewServer(storage, cfg)
	require.NoError(t, err)
	assert.Equal(t, ":8099", srv.Addr)
	assert.NotNil(t, srv.ErrorLog)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
