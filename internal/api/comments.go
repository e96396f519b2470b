package api

import (
	"encoding/json"
	"net/http"

	"socialnet/internal/api/middleware"
	"socialnet/internal/service/comments"

	"github.com/redis/go-redis/v9"
)

type CommentsHandlers struct {
	svc *comments.Service
}

func NewCommentsRouter(svc *comments.Service, redisClient *redis.Client) http.Handler {
	h := &CommentsHandlers{svc: svc}

	r := newRouter()
	r.With(middleware.Idempotency(redisClient)).Post("/comments", h.Create)
	r.Get("/comments", h.ListByPost)
	r.Get("/comments/ids", h.ListIDsByPost)
	r.Get("/comments/count", h.CountByPost)
	r.Get("/comments/{id}", h.Get)
	r.Delete("/comments/{id}", h.Delete)
	r.Get("/comments/{id}/exists", h.Exists)

	return r
}

func (h *CommentsHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var params comments.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

func (h *CommentsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CommentsHandlers) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := queryID(r, "postId")
	if err != nil {
		http.Error(w, "invalid postId", http.StatusBadRequest)
		return
	}

	list, err := h.svc.ListByPost(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *CommentsHandlers) ListIDsByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := queryID(r, "postId")
	if err != nil {
		http.Error(w, "invalid postId", http.StatusBadRequest)
		return
	}

	ids, err := h.svc.ListIDsByPost(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeIDs(w, ids)
}

func (h *CommentsHandlers) CountByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := queryID(r, "postId")
	if err != nil {
		http.Error(w, "invalid postId", http.StatusBadRequest)
		return
	}

	n, err := h.svc.CountByPost(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeCount(w, n)
}

func (h *CommentsHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CommentsHandlers) Exists(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	ok, err := h.svc.Exists(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeExists(w, ok)
}
