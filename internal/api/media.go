package api

import (
	"encoding/json"
	"net/http"

	"socialnet/internal/api/middleware"
	"socialnet/internal/service/media"

	"github.com/redis/go-redis/v9"
)

type MediaHandlers struct {
	svc *media.Service
}

func NewMediaRouter(svc *media.Service, redisClient *redis.Client) http.Handler {
	h := &MediaHandlers{svc: svc}

	r := newRouter()
	r.With(middleware.Idempotency(redisClient)).Post("/media", h.Upload)
	r.Get("/media", h.ListByUser)
	r.Get("/media/ids", h.ListIDsByUser)
	r.Get("/media/notifications", h.Notifications)
	r.Get("/media/{id}", h.Get)
	r.Delete("/media/{id}", h.Delete)

	return r
}

func (h *MediaHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	var params media.UploadParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m, err := h.svc.Upload(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (h *MediaHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid media id", http.StatusBadRequest)
		return
	}

	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *MediaHandlers) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r, "userId")
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}

	list, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *MediaHandlers) ListIDsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r, "userId")
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}

	ids, err := h.svc.ListIDsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeIDs(w, ids)
}

func (h *MediaHandlers) Notifications(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r, "userId")
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}

	list, err := h.svc.Notifications(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *MediaHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid media id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
