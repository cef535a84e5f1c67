// Package app is the main cmd app
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/htol/locallibrary/config"
	"github.com/htol/locallibrary/logger"
	"github.com/htol/locallibrary/repo"
	"github.com/htol/locallibrary/service"
)

const usage = `usage: locallibrary [flags] <command>

commands:
  serve   run the catalogue web server
  init    create the database schema
  seed    load a small sample catalogue

flags:
`

func CLI(args []string) int {
	var app appEnv
	if err := app.fromArgs(args, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := app.run(); err != nil {
		logger.Error("Runtime error", "error", err)
		return 1
	}
	return 0
}

type appEnv struct {
	config *config.Config
	cmd    string
}

func (app *appEnv) fromArgs(args []string, out io.Writer) error {
	fl := flag.NewFlagSet("locallibrary", flag.ContinueOnError)
	fl.SetOutput(out)
	fl.Usage = func() {
		fmt.Fprint(out, usage)
		fl.PrintDefaults()
	}

	// Load default config
	cfg := config.Load()

	// CLI flags override environment variables
	fl.IntVar(&cfg.Server.Port, "p", cfg.Server.Port, "Port number")
	fl.StringVar(&cfg.Database.Driver, "driver", cfg.Database.Driver, "Database driver (sqlite3 or pgx)")
	fl.StringVar(&cfg.Database.DSN, "db", cfg.Database.DSN, "Database connection string")
	fl.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := fl.Parse(args); err != nil {
		return err
	}

	if fl.NArg() < 1 {
		fl.Usage()
		return fmt.Errorf("please provide a command to run")
	}

	app.cmd = fl.Arg(0)
	app.config = cfg
	return nil
}

func (app *appEnv) run() error {
	// Initialize logger
	logger.InitWithFormat(app.config.LogLevel, app.config.LogFormat, os.Stderr)

	switch app.cmd {
	case "serve", "init", "seed":
	default:
		return fmt.Errorf("unknown command %s", app.cmd)
	}

	// Open creates the schema, which is all init has to do
	storage, err := repo.Open(app.config.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Error("Error closing storage", "error", err)
		}
	}()

	switch app.cmd {
	case "serve":
		srv, err := NewServer(storage, app.config)
		if err != nil {
			return err
		}
		return app.serve(srv)
	case "init":
		logger.Info("Database schema ready", "driver", storage.Driver())
	case "seed":
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := Seed(ctx, service.New(storage)); err != nil {
			return err
		}
		logger.Info("Sample catalogue loaded")
	}
	return nil
}

func (app *appEnv) serve(srv *Server) error {
	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", app.config.Server.Port, "url", fmt.Sprintf("http://localhost:%d/catalog", app.config.Server.Port))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownSignal)

	// Block until we receive a signal or server errors
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-shutdownSignal:
		logger.Info("Received shutdown signal", "signal", sig.String())
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
