package handler

import (
	"context"
	"log/slog"
	"net/http"

	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
	orgSvc "agentdeck/internal/domain/services/organization"
	"agentdeck/internal/httputil"
)

// OrganizationHandler handles organization tree HTTP requests
type OrganizationHandler struct {
	treeService       orgSvc.TreeService
	moveService       orgSvc.MoveService
	folderService     orgSvc.FolderService
	recycleBinService orgSvc.RecycleBinService
	logger            *slog.Logger
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(
	treeService orgSvc.TreeService,
	moveService orgSvc.MoveService,
	folderService orgSvc.FolderService,
	recycleBinService orgSvc.RecycleBinService,
	logger *slog.Logger,
) *OrganizationHandler {
	return &OrganizationHandler{
		treeService:       treeService,
		moveService:       moveService,
		folderService:     folderService,
		recycleBinService: recycleBinService,
		logger:            logger,
	}
}

// GetTree returns the nested tree visible to the viewer
// GET /api/organization/tree?view=active|recycle_bin&folder=<address>
func (h *OrganizationHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	lifecycle, err := models.ParseLifecycle(r.URL.Query().Get("view"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.treeService.GetTree(r.Context(), httputil.GetViewer(r), lifecycle, r.URL.Query().Get("folder"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// GetItems returns the flat folder and agent rows visible to the viewer
// GET /api/organization/items?view=active|recycle_bin
func (h *OrganizationHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	lifecycle, err := models.ParseLifecycle(r.URL.Query().Get("view"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.treeService.GetItems(r.Context(), httputil.GetViewer(r), lifecycle)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}

// Move plans a drag-and-drop gesture server-side and persists it
// POST /api/organization/move
func (h *OrganizationHandler) Move(w http.ResponseWriter, r *http.Request) {
	viewer := httputil.GetViewer(r)
	if !viewer.IsAuthenticated {
		handleError(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	var req models.DropRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	set, err := h.moveService.Drop(r.Context(), viewer, req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, set)
}

// CreateFolder creates a new folder
// POST /api/organization/folders
// Returns 201 if created, 409 if a sibling already has the name
func (h *OrganizationHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	viewer := httputil.GetViewer(r)
	if !viewer.IsAuthenticated {
		handleError(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	var req orgSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), viewer, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// RenameFolder renames a folder
// PATCH /api/organization/folders/{id}
func (h *OrganizationHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	viewer := httputil.GetViewer(r)
	if !viewer.IsAuthenticated {
		handleError(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	id, err := pathFolderID(r)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	var req orgSvc.RenameFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.RenameFolder(r.Context(), viewer, id, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// TrashFolder moves a folder subtree to the recycle bin
// POST /api/organization/folders/{id}/trash
func (h *OrganizationHandler) TrashFolder(w http.ResponseWriter, r *http.Request) {
	h.folderLifecycle(w, r, h.recycleBinService.TrashFolder)
}

// RestoreFolder restores a folder subtree from the recycle bin
// POST /api/organization/folders/{id}/restore
func (h *OrganizationHandler) RestoreFolder(w http.ResponseWriter, r *http.Request) {
	h.folderLifecycle(w, r, h.recycleBinService.RestoreFolder)
}

// TrashAgent moves an agent to the recycle bin
// POST /api/organization/agents/{identifier}/trash
func (h *OrganizationHandler) TrashAgent(w http.ResponseWriter, r *http.Request) {
	h.agentLifecycle(w, r, h.recycleBinService.TrashAgent)
}

// RestoreAgent restores an agent from the recycle bin
// POST /api/organization/agents/{identifier}/restore
func (h *OrganizationHandler) RestoreAgent(w http.ResponseWriter, r *http.Request) {
	h.agentLifecycle(w, r, h.recycleBinService.RestoreAgent)
}

type folderAction func(ctx context.Context, viewer models.Viewer, id int64) error

type agentAction func(ctx context.Context, viewer models.Viewer, identifier string) error

func (h *OrganizationHandler) folderLifecycle(w http.ResponseWriter, r *http.Request, action folderAction) {
	id, err := pathFolderID(r)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	if err := action(r.Context(), httputil.GetViewer(r), id); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrganizationHandler) agentLifecycle(w http.ResponseWriter, r *http.Request, action agentAction) {
	identifier := r.PathValue("identifier")
	if identifier == "" {
		httputil.RespondError(w, http.StatusBadRequest, "agent identifier is required")
		return
	}

	if err := action(r.Context(), httputil.GetViewer(r), identifier); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
