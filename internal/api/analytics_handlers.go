package api

import (
	"net/http"
	"strconv"
)

// GetDashboard returns publisher-wide engagement analytics. The optional
// ?days query bounds the window, defaulting to 30.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.svc.Dashboard(r.Context(), queryDays(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, dash)
}

// GetInsights returns actionable publisher recommendations.
func (h *Handlers) GetInsights(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Insights(r.Context(), queryDays(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, out)
}

func queryDays(r *http.Request) int {
	if raw := r.URL.Query().Get("days"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			return days
		}
	}
	return 30
}
