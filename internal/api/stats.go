package api

import (
	"net/http"
	"time"

	"socialnet/internal/service/stats"

	"github.com/go-chi/chi/v5"
)

type StatsHandlers struct {
	svc *stats.Service
}

func NewStatsRouter(svc *stats.Service) http.Handler {
	h := &StatsHandlers{svc: svc}

	r := newRouter()
	r.Get("/stats", h.GetAll)
	r.Get("/stats/{date}", h.GetByDate)
	r.Delete("/stats/{date}", h.DeleteByDate)

	return r
}

func (h *StatsHandlers) GetAll(w http.ResponseWriter, r *http.Request) {
	counters, err := h.svc.GetAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, counters)
}

func (h *StatsHandlers) GetByDate(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r)
	if err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	counters, err := h.svc.GetByDate(r.Context(), day)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, counters)
}

func (h *StatsHandlers) DeleteByDate(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r)
	if err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteByDate(r.Context(), day); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func dateParam(r *http.Request) (time.Time, error) {
	return time.Parse("2006-01-02", chi.URLParam(r, "date"))
}
