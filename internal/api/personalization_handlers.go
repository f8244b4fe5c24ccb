package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/personalizeai/engine/internal/domain"
)

// SubjectRequest carries the base subject line to personalize.
type SubjectRequest struct {
	Subject string `json:"subject"`
}

// PersonalizeSubject returns a segment-tailored subject line for one
// subscriber.
func (h *Handlers) PersonalizeSubject(w http.ResponseWriter, r *http.Request) {
	var req SubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "subscriberID")
	subject, err := h.svc.PersonalizeSubject(r.Context(), id, req.Subject)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"subscriber_id":        id,
		"original_subject":     req.Subject,
		"personalized_subject": subject,
	})
}

// ContentOrderRequest carries the candidate items to reorder.
type ContentOrderRequest struct {
	Items []domain.ContentItem `json:"items"`
}

// PersonalizeContentOrder reorders candidate content items by one
// subscriber's observed preferences.
func (h *Handlers) PersonalizeContentOrder(w http.ResponseWriter, r *http.Request) {
	var req ContentOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "subscriberID")
	ordered, err := h.svc.PersonalizeContentOrder(r.Context(), id, req.Items)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"subscriber_id": id,
		"items":         ordered,
	})
}

// VariantsRequest asks for A/B subject variants across segments.
type VariantsRequest struct {
	Subject  string           `json:"subject"`
	Segments []domain.Segment `json:"segments"`
}

// GenerateVariants produces labeled A/B subject variants. An empty segment
// list means every segment.
func (h *Handlers) GenerateVariants(w http.ResponseWriter, r *http.Request) {
	var req VariantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Segments) == 0 {
		req.Segments = domain.AllSegments
	}

	set, err := h.svc.GenerateSubjectVariants(req.Subject, req.Segments)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, set)
}
