package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"agentdeck/internal/domain"
	"agentdeck/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var conflictErr *domain.ConflictError
	var partialErr *domain.PartialWriteError
	var httpErr domain.HTTPError

	switch {
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.As(err, &partialErr):
		// Checked before the generic case: it wraps the failing row's error
		logger.Error("partial write", "error", err, "failed", partialErr.Failed, "total", partialErr.Total,
			"request_id", httputil.GetRequestID(r))
		httputil.RespondError(w, http.StatusInternalServerError, partialErr.Error())
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		logger.Error("unexpected error",
			"error", err,
			"path", r.URL.Path,
			"method", r.Method,
			"request_id", httputil.GetRequestID(r),
		)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathFolderID parses the {id} path value
func pathFolderID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Message: "folder id must be a positive integer"}
	}
	return id, nil
}
