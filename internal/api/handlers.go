// Package api exposes the personalization engine over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/personalizeai/engine/internal/content"
	"github.com/personalizeai/engine/internal/pkg/httputil"
	"github.com/personalizeai/engine/internal/personalization"
	"github.com/personalizeai/engine/internal/prediction"
	"github.com/personalizeai/engine/internal/service/insights"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	svc      *insights.Service
	importer *content.Importer
}

// NewHandlers creates the handler set. The importer may be nil when no feed
// is configured; feed routes then return 503.
func NewHandlers(svc *insights.Service, importer *content.Importer) *Handlers {
	return &Handlers{svc: svc, importer: importer}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"status":    "healthy",
		"service":   "personalizeai-engine",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// jsonResponse writes a 200 response with a JSON body.
func jsonResponse(w http.ResponseWriter, data interface{}) {
	httputil.OK(w, data)
}

// jsonError writes a JSON error envelope with the given status.
func jsonError(w http.ResponseWriter, message string, statusCode int) {
	httputil.JSON(w, statusCode, httputil.ErrorResponse{Error: message})
}

// serviceError maps service-layer failures onto HTTP status codes.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, insights.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, insights.ErrValidation),
		errors.Is(err, personalization.ErrEmptySubject),
		errors.Is(err, personalization.ErrUnknownSegment),
		errors.Is(err, personalization.ErrNoSegments),
		errors.Is(err, prediction.ErrNoSegments),
		errors.Is(err, prediction.ErrMissingTitle):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}
