// Package api holds the chi routers and handlers of every service. Routes and
// status mapping live here; all behavior is in the service packages.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"socialnet/internal/apperr"

	"github.com/go-chi/chi/v5"
	ChiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(ChiMiddleware.Logger)
	r.Use(ChiMiddleware.Recoverer)
	r.Use(ChiMiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrValidationFailed):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrTransientDependency):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func queryID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
}

func writeIDs(w http.ResponseWriter, ids []int64) {
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"ids": ids})
}

func writeCount(w http.ResponseWriter, n int64) {
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func writeExists(w http.ResponseWriter, ok bool) {
	writeJSON(w, http.StatusOK, map[string]bool{"exists": ok})
}
