package api

import (
	"net/http"

	"github.com/htol/locallibrary/book"
	"github.com/htol/locallibrary/config"
	"github.com/htol/locallibrary/middleware"
	"github.com/htol/locallibrary/opds"
	"github.com/htol/locallibrary/service"
	"github.com/htol/locallibrary/view"
)

type handler struct {
	svc   *service.Service
	pages view.Renderer
	data  view.Renderer
}

// NewHandler creates and returns the main HTTP handler (router) for the application
func NewHandler(svc *service.Service, pages view.Renderer, rl config.RateLimitConfig) http.Handler {
	h := &handler{svc: svc, pages: pages, data: view.JSONRenderer{}}
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", http.RedirectHandler(book.CatalogPrefix, http.StatusFound))
	mux.Handle("GET /catalog", h.page(svc.Index))
	mux.Handle("GET /catalog/{$}", h.page(svc.Index))
	mux.Handle("GET "+opds.FeedPath, opdsFeedHandler(svc))
	mux.HandleFunc("GET /health", healthCheckHandler(svc))

	// Author routes
	mux.Handle("GET /catalog/authors", h.page(svc.AuthorList))
	mux.Handle("GET /catalog/author/create", h.page(svc.AuthorCreateForm))
	mux.Handle("POST /catalog/author/create", h.submit(svc.AuthorCreate))
	mux.Handle("GET /catalog/author/{id}", h.byID(svc.AuthorDetail))
	mux.Handle("GET /catalog/author/{id}/delete", h.byID(svc.AuthorDeleteForm))
	mux.Handle("POST /catalog/author/{id}/delete", h.byID(svc.AuthorDelete))
	mux.Handle("GET /catalog/author/{id}/update", h.byID(svc.AuthorUpdateForm))
	mux.Handle("POST /catalog/author/{id}/update", h.submitByID(svc.AuthorUpdate))

	// Book routes
	mux.Handle("GET /catalog/books", h.page(svc.BookList))
	mux.Handle("GET /catalog/book/create", h.page(svc.BookCreateForm))
	mux.Handle("POST /catalog/book/create", h.submit(svc.BookCreate))
	mux.Handle("GET /catalog/book/{id}", h.byID(svc.BookDetail))
	mux.Handle("GET /catalog/book/{id}/delete", h.byID(svc.BookDeleteForm))
	mux.Handle("POST /catalog/book/{id}/delete", h.byID(svc.BookDelete))
	mux.Handle("GET /catalog/book/{id}/update", h.byID(svc.BookUpdateForm))
	mux.Handle("POST /catalog/book/{id}/update", h.submitByID(svc.BookUpdate))

	// Genre routes
	mux.Handle("GET /catalog/genres", h.page(svc.GenreList))
	mux.Handle("GET /catalog/genre/create", h.page(svc.GenreCreateForm))
	mux.Handle("POST /catalog/genre/create", h.submit(svc.GenreCreate))
	mux.Handle("GET /catalog/genre/{id}", h.byID(svc.GenreDetail))
	mux.Handle("GET /catalog/genre/{id}/delete", h.byID(svc.GenreDeleteForm))
	mux.Handle("POST /catalog/genre/{id}/delete", h.byID(svc.GenreDelete))
	mux.Handle("GET /catalog/genre/{id}/update", h.byID(svc.GenreUpdateForm))
	mux.Handle("POST /catalog/genre/{id}/update", h.submitByID(svc.GenreUpdate))

	// Book instance routes
	mux.Handle("GET /catalog/bookinstances", h.page(svc.BookInstanceList))
	mux.Handle("GET /catalog/bookinstance/create", h.page(svc.BookInstanceCreateForm))
	mux.Handle("POST /catalog/bookinstance/create", h.submit(svc.BookInstanceCreate))
	mux.Handle("GET /catalog/bookinstance/{id}", h.byID(svc.BookInstanceDetail))
	mux.Handle("GET /catalog/bookinstance/{id}/delete", h.byID(svc.BookInstanceDeleteForm))
	mux.Handle("POST /catalog/bookinstance/{id}/delete", h.byID(svc.BookInstanceDelete))
	mux.Handle("GET /catalog/bookinstance/{id}/update", h.byID(svc.BookInstanceUpdateForm))
	mux.Handle("POST /catalog/bookinstance/{id}/update", h.submitByID(svc.BookInstanceUpdate))

	middlewares := []func(http.Handler) http.Handler{
		middleware.Recovery,
		middleware.RequestID,
		middleware.Logger,
	}
	if rl.Enabled {
		middlewares = append(middlewares, middleware.RateLimit(rl.RPS, rl.Burst))
	}

	// Apply middleware chain
	return middleware.Chain(middlewares...)(mux)
}
