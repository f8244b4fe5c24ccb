package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetRevenueImpact projects the personalization revenue impact for one
// subscriber.
func (h *Handlers) GetRevenueImpact(w http.ResponseWriter, r *http.Request) {
	impact, err := h.svc.ComputeRevenueImpact(r.Context(), chi.URLParam(r, "subscriberID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, impact)
}

// AggregateRequest selects the subscribers to include in an aggregate
// revenue projection. An empty list means everyone.
type AggregateRequest struct {
	SubscriberIDs []string `json:"subscriber_ids"`
}

// AggregateRevenueImpact projects revenue impact across many subscribers.
func (h *Handlers) AggregateRevenueImpact(w http.ResponseWriter, r *http.Request) {
	var req AggregateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	agg, err := h.svc.ComputeAggregateRevenueImpact(r.Context(), req.SubscriberIDs)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, agg)
}
