package httputil

import (
	"context"
	"net/http"

	models "agentdeck/internal/domain/models/organization"
)

// Context key type to avoid collisions
type contextKey string

const (
	viewerKey    contextKey = "viewer"
	requestIDKey contextKey = "requestID"
)

// WithViewer adds the current viewer to the request context
func WithViewer(r *http.Request, viewer models.Viewer) *http.Request {
	ctx := context.WithValue(r.Context(), viewerKey, viewer)
	return r.WithContext(ctx)
}

// GetViewer retrieves the viewer from context, anonymous if not set
func GetViewer(r *http.Request) models.Viewer {
	viewer, ok := r.Context().Value(viewerKey).(models.Viewer)
	if !ok {
		return models.Anonymous
	}
	return viewer
}

// WithRequestID adds a request id to the request context
func WithRequestID(r *http.Request, requestID string) *http.Request {
	ctx := context.WithValue(r.Context(), requestIDKey, requestID)
	return r.WithContext(ctx)
}

// GetRequestID retrieves the request id from context, returns empty string if not found
func GetRequestID(r *http.Request) string {
	requestID, _ := r.Context().Value(requestIDKey).(string)
	return requestID
}
