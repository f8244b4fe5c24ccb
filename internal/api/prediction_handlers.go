package api

import (
	"encoding/json"
	"net/http"

	"github.com/personalizeai/engine/internal/domain"
)

// PredictRequest asks for per-segment performance scores for one item.
type PredictRequest struct {
	Title       string             `json:"title"`
	ContentType domain.ContentType `json:"content_type"`
	Tags        []string           `json:"tags"`
	Segments    []domain.Segment   `json:"segments"`
}

// PredictContent scores a content item for the requested segments. An empty
// segment list means every segment.
func (h *Handlers) PredictContent(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Segments) == 0 {
		req.Segments = domain.AllSegments
	}

	item := domain.ContentItem{
		Title:       req.Title,
		ContentType: req.ContentType,
		Tags:        req.Tags,
	}
	preds, err := h.svc.PredictContentPerformance(item, req.Segments)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"item":        item,
		"predictions": preds,
	})
}

// PredictFeed pulls the configured publisher feed and scores each fresh
// entry for every segment.
func (h *Handlers) PredictFeed(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		jsonError(w, "no feed configured", http.StatusServiceUnavailable)
		return
	}

	items, err := h.importer.Fetch(r.Context())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	type scoredItem struct {
		Item        domain.ContentItem     `json:"item"`
		Predictions map[string]interface{} `json:"predictions"`
	}

	out := make([]scoredItem, 0, len(items))
	for _, item := range items {
		preds, err := h.svc.PredictContentPerformance(item, domain.AllSegments)
		if err != nil {
			continue // untitled feed entries are not scoreable
		}
		byName := make(map[string]interface{}, len(preds))
		for seg, p := range preds {
			byName[string(seg)] = p
		}
		out = append(out, scoredItem{Item: item, Predictions: byName})
	}

	jsonResponse(w, map[string]interface{}{
		"items": out,
		"total": len(out),
	})
}
