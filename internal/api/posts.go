package api

import (
	"encoding/json"
	"net/http"

	"socialnet/internal/api/middleware"
	"socialnet/internal/service/posts"

	"github.com/redis/go-redis/v9"
)

type PostsHandlers struct {
	svc *posts.Service
}

func NewPostsRouter(svc *posts.Service, redisClient *redis.Client) http.Handler {
	h := &PostsHandlers{svc: svc}

	r := newRouter()
	r.With(middleware.Idempotency(redisClient)).Post("/posts", h.Create)
	r.Get("/posts", h.ListByUser)
	r.Get("/posts/ids", h.ListIDsByUser)
	r.Get("/posts/count", h.CountByUser)
	r.Get("/posts/{id}", h.Get)
	r.Put("/posts/{id}", h.Update)
	r.Delete("/posts/{id}", h.Delete)
	r.Get("/posts/{id}/exists", h.Exists)

	return r
}

func (h *PostsHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var params posts.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (h *PostsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	view, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *PostsHandlers) ListByUser(w http.ResponseWriter, r *http.Request) {
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

func (h *PostsHandlers) ListIDsByUser(w http.ResponseWriter, r *http.Request) {
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

func (h *PostsHandlers) CountByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r, "userId")
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}

	n, err := h.svc.CountByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeCount(w, n)
}

func (h *PostsHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	var params posts.UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *PostsHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PostsHandlers) Exists(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ok, err := h.svc.Exists(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeExists(w, ok)
}
