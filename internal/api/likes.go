package api

import (
	"encoding/json"
	"net/http"

	"socialnet/internal/api/middleware"
	"socialnet/internal/service/likes"

	"github.com/redis/go-redis/v9"
)

type LikesHandlers struct {
	svc *likes.Service
}

func NewLikesRouter(svc *likes.Service, redisClient *redis.Client) http.Handler {
	h := &LikesHandlers{svc: svc}

	r := newRouter()
	r.With(middleware.Idempotency(redisClient)).Post("/likes", h.Create)
	r.Get("/likes/ids", h.ListIDs)
	r.Get("/likes/count", h.Count)
	r.Get("/likes/{id}", h.Get)
	r.Delete("/likes/{id}", h.Delete)

	return r
}

func (h *LikesHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var params likes.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	l, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, l)
}

func (h *LikesHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid like id", http.StatusBadRequest)
		return
	}

	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, l)
}

// ListIDs serves both targets: exactly one of postId and commentId selects
// which likes come back.
func (h *LikesHandlers) ListIDs(w http.ResponseWriter, r *http.Request) {
	if postID, err := queryID(r, "postId"); err == nil {
		ids, err := h.svc.ListIDsByPost(r.Context(), postID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeIDs(w, ids)
		return
	}

	commentID, err := queryID(r, "commentId")
	if err != nil {
		http.Error(w, "postId or commentId is required", http.StatusBadRequest)
		return
	}

	ids, err := h.svc.ListIDsByComment(r.Context(), commentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeIDs(w, ids)
}

func (h *LikesHandlers) Count(w http.ResponseWriter, r *http.Request) {
	if postID, err := queryID(r, "postId"); err == nil {
		n, err := h.svc.CountByPost(r.Context(), postID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeCount(w, n)
		return
	}

	commentID, err := queryID(r, "commentId")
	if err != nil {
		http.Error(w, "postId or commentId is required", http.StatusBadRequest)
		return
	}

	n, err := h.svc.CountByComment(r.Context(), commentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCount(w, n)
}

func (h *LikesHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid like id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
