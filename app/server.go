package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/htol/locallibrary/api"
	"github.com/htol/locallibrary/config"
	"github.com/htol/locallibrary/logger"
	"github.com/htol/locallibrary/repo"
	"github.com/htol/locallibrary/service"
	"github.com/htol/locallibrary/view"
)

// Server is the catalogue HTTP server over one store.
type Server struct {
	*http.Server
}

func NewServer(storage repo.Repository, cfg *config.Config) (*Server, error) {
	pages, err := view.NewHTMLRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	svc := service.New(storage)
	return &Server{
		Server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: api.NewHandler(svc, pages, cfg.RateLimit),

			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
			ErrorLog:     slog.NewLogLogger(logger.Logger().Handler(), slog.LevelError),
		},
	}, nil
}
