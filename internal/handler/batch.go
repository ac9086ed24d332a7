package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
	orgSvc "agentdeck/internal/domain/services/organization"
	"agentdeck/internal/httputil"
)

// BatchResponse is the fixed wire shape of the batch endpoint
type BatchResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// batchRequest mirrors models.UpdateSet but requires the parent keys to be
// present: an omitted parentId must not silently move a row to the root.
type batchRequest struct {
	Folders []folderUpdateDTO `json:"folders"`
	Agents  []agentUpdateDTO  `json:"agents"`
}

type folderUpdateDTO struct {
	ID        int64                  `json:"id"`
	ParentID  httputil.OptionalInt64 `json:"parentId"`
	SortOrder *int                   `json:"sortOrder"`
}

type agentUpdateDTO struct {
	Identifier string                 `json:"identifier"`
	FolderID   httputil.OptionalInt64 `json:"folderId"`
	SortOrder  *int                   `json:"sortOrder"`
}

func (req *batchRequest) toUpdateSet() (*models.UpdateSet, error) {
	set := &models.UpdateSet{}
	for i, f := range req.Folders {
		if !f.ParentID.Present || f.SortOrder == nil {
			return nil, fmt.Errorf("folders[%d]: parentId and sortOrder are required", i)
		}
		set.Folders = append(set.Folders, models.FolderUpdate{
			ID:        f.ID,
			ParentID:  f.ParentID.Value,
			SortOrder: *f.SortOrder,
		})
	}
	for i, a := range req.Agents {
		if !a.FolderID.Present || a.SortOrder == nil {
			return nil, fmt.Errorf("agents[%d]: folderId and sortOrder are required", i)
		}
		set.Agents = append(set.Agents, models.AgentUpdate{
			Identifier: a.Identifier,
			FolderID:   a.FolderID.Value,
			SortOrder:  *a.SortOrder,
		})
	}
	return set, nil
}

// BatchHandler persists update sets produced by clients
type BatchHandler struct {
	batchService orgSvc.BatchService
	logger       *slog.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batchService orgSvc.BatchService, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
		logger:       logger,
	}
}

// Apply persists a batch of placement updates
// POST /api/organization/batch
// Responds {success:true}, or {success:false,error} with 400, 401 or 500
func (h *BatchHandler) Apply(w http.ResponseWriter, r *http.Request) {
	viewer := httputil.GetViewer(r)
	if !viewer.IsAuthenticated {
		respondBatch(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req batchRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondBatch(w, http.StatusBadRequest, err.Error())
		return
	}
	set, err := req.toUpdateSet()
	if err != nil {
		respondBatch(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.batchService.Apply(r.Context(), viewer, set); err != nil {
		var partialErr *domain.PartialWriteError
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			respondBatch(w, http.StatusUnauthorized, err.Error())
		case errors.As(err, &partialErr):
			h.logger.Error("batch partially applied",
				"failed", partialErr.Failed,
				"total", partialErr.Total,
				"error", err,
				"request_id", httputil.GetRequestID(r),
			)
			respondBatch(w, http.StatusInternalServerError, err.Error())
		case errors.Is(err, domain.ErrValidation):
			respondBatch(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("batch failed", "error", err, "request_id", httputil.GetRequestID(r))
			respondBatch(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, BatchResponse{Success: true})
}

func respondBatch(w http.ResponseWriter, status int, message string) {
	httputil.RespondJSON(w, status, BatchResponse{Success: false, Error: message})
}
