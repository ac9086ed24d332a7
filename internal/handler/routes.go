package handler

import (
	"net/http"
	"time"

	"agentdeck/internal/httputil"
)

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// RegisterRoutes mounts the organization API on mux (Go 1.22+ patterns)
func RegisterRoutes(mux *http.ServeMux, org *OrganizationHandler, batch *BatchHandler) {
	mux.HandleFunc("GET /health", HealthCheck)

	// Tree reads
	mux.HandleFunc("GET /api/organization/tree", org.GetTree)
	mux.HandleFunc("GET /api/organization/items", org.GetItems)

	// Placement writes
	mux.HandleFunc("POST /api/organization/batch", batch.Apply)
	mux.HandleFunc("POST /api/organization/move", org.Move)

	// Folder routes
	mux.HandleFunc("POST /api/organization/folders", org.CreateFolder)
	mux.HandleFunc("PATCH /api/organization/folders/{id}", org.RenameFolder)
	mux.HandleFunc("POST /api/organization/folders/{id}/trash", org.TrashFolder)
	mux.HandleFunc("POST /api/organization/folders/{id}/restore", org.RestoreFolder)

	// Agent routes
	mux.HandleFunc("POST /api/organization/agents/{identifier}/trash", org.TrashAgent)
	mux.HandleFunc("POST /api/organization/agents/{identifier}/restore", org.RestoreAgent)
}
