package api

import (
	"encoding/json"
	"net/http"

	"socialnet/internal/api/middleware"
	"socialnet/internal/service/subscriptions"

	"github.com/redis/go-redis/v9"
)

type SubscriptionsHandlers struct {
	svc *subscriptions.Service
}

func NewSubscriptionsRouter(svc *subscriptions.Service, redisClient *redis.Client) http.Handler {
	h := &SubscriptionsHandlers{svc: svc}

	r := newRouter()
	r.With(middleware.Idempotency(redisClient)).Post("/subscriptions", h.Create)
	r.Get("/subscriptions", h.List)
	r.Get("/subscriptions/ids", h.ListIDsByUser)
	r.Get("/subscriptions/count", h.CountByTarget)
	r.Get("/subscriptions/subscribers", h.SubscriberIDs)
	r.Delete("/subscriptions/{id}", h.Delete)

	return r
}

func (h *SubscriptionsHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var params subscriptions.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubscriptionsHandlers) List(w http.ResponseWriter, r *http.Request) {
	if subscriberID, err := queryID(r, "subscriberId"); err == nil {
		list, err := h.svc.ListBySubscriber(r.Context(), subscriberID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	targetID, err := queryID(r, "targetId")
	if err != nil {
		http.Error(w, "subscriberId or targetId is required", http.StatusBadRequest)
		return
	}

	list, err := h.svc.ListByTarget(r.Context(), targetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListIDsByUser returns ids of subscriptions touching the user on either side.
// The users service walks these during account deletion.
func (h *SubscriptionsHandlers) ListIDsByUser(w http.ResponseWriter, r *http.Request) {
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

func (h *SubscriptionsHandlers) CountByTarget(w http.ResponseWriter, r *http.Request) {
	targetID, err := queryID(r, "targetId")
	if err != nil {
		http.Error(w, "invalid targetId", http.StatusBadRequest)
		return
	}

	n, err := h.svc.CountByTarget(r.Context(), targetID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeCount(w, n)
}

func (h *SubscriptionsHandlers) SubscriberIDs(w http.ResponseWriter, r *http.Request) {
	targetID, err := queryID(r, "targetId")
	if err != nil {
		http.Error(w, "invalid targetId", http.StatusBadRequest)
		return
	}

	ids, err := h.svc.SubscriberIDs(r.Context(), targetID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeIDs(w, ids)
}

func (h *SubscriptionsHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid subscription id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
