package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/personalizeai/engine/internal/domain"
	"github.com/personalizeai/engine/internal/pkg/httputil"
)

// ListSubscribers returns all subscriber snapshots.
func (h *Handlers) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.ListSubscribers(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"subscribers": subs,
		"total":       len(subs),
	})
}

// GetSubscriber returns one subscriber snapshot.
func (h *Handlers) GetSubscriber(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.GetSubscriber(r.Context(), chi.URLParam(r, "subscriberID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, sub)
}

// CreateSubscriber registers a new subscriber.
func (h *Handlers) CreateSubscriber(w http.ResponseWriter, r *http.Request) {
	var sub domain.Subscriber
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.CreateSubscriber(r.Context(), &sub); err != nil {
		serviceError(w, err)
		return
	}
	httputil.Created(w, sub)
}

// RecordEvent appends one engagement event to a subscriber's log.
func (h *Handlers) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.EngagementEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ev.SubscriberID = chi.URLParam(r, "subscriberID")

	if err := h.svc.RecordEvent(r.Context(), &ev); err != nil {
		serviceError(w, err)
		return
	}
	httputil.Created(w, ev)
}

// GetEngagement returns a subscriber's aggregated engagement metrics.
func (h *Handlers) GetEngagement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "subscriberID")
	m, err := h.svc.AggregateEngagement(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"subscriber_id": id,
		"metrics":       m,
	})
}

// RefreshProfile recomputes and persists segment, churn risk, and engagement
// score, returning the updated snapshot.
func (h *Handlers) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.RefreshProfile(r.Context(), chi.URLParam(r, "subscriberID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, sub)
}

// GetSegment classifies the subscriber and returns the assigned segment.
func (h *Handlers) GetSegment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "subscriberID")
	seg, err := h.svc.ClassifySegment(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"subscriber_id": id,
		"segment":       seg,
	})
}

// GetChurnRisk estimates the subscriber's churn probability.
func (h *Handlers) GetChurnRisk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "subscriberID")
	risk, err := h.svc.EstimateChurn(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"subscriber_id": id,
		"churn_risk":    risk,
		"risk_level":    riskLevel(risk),
	})
}

func riskLevel(risk float64) string {
	switch {
	case risk >= 0.70:
		return "high"
	case risk >= 0.40:
		return "medium"
	default:
		return "low"
	}
}

// GetSendTime recommends the optimal send hour for a subscriber.
func (h *Handlers) GetSendTime(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.OptimizeSendTime(r.Context(), chi.URLParam(r, "subscriberID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, rec)
}
