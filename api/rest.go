package api

import (
	"net/http"
	"time"

	"github.com/htol/locallibrary/logger"
	"github.com/htol/locallibrary/opds"
	"github.com/htol/locallibrary/service"
)

func healthCheckHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check service health (database connection via service layer)
		if err := svc.Ping(r.Context()); err != nil {
			logger.Error("service unavailable", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

// opdsFeedHandler serves the whole catalogue as one acquisition feed.
func opdsFeedHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		books, err := svc.Catalogue(r.Context())
		if err != nil {
			logger.Error("Failed to load catalogue for feed", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		baseURL := getBaseURL(r)
		feed := opds.NewCatalogFeed(baseURL, time.Now())
		for _, b := range books {
			feed.AddBook(b, baseURL)
		}

		out, err := feed.Marshal()
		if err != nil {
			logger.Error("Failed to encode feed", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", opds.TypeAcquisition)
		if _, err := w.Write(out); err != nil {
			logger.Warn("Failed to write feed", "error", err)
		}
	})
}
