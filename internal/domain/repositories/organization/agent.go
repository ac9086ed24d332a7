package organization

import (
	"context"
	"time"

	models "agentdeck/internal/domain/models/organization"
)

// AgentRepository defines data access operations for agents
type AgentRepository interface {
	// Create inserts an agent and fills in its timestamps
	Create(ctx context.Context, agent *models.Agent) error

	// GetByIdentifier retrieves an agent by permanent id or name, regardless of lifecycle
	GetByIdentifier(ctx context.Context, identifier string) (*models.Agent, error)

	// List returns every agent in the given lifecycle state (flat list)
	List(ctx context.Context, lifecycle models.Lifecycle) ([]models.Agent, error)

	// UpdatePlacement sets folder and sort order of an active agent matched by
	// permanent id or name. Returns domain.ErrNotFound when no active row matched.
	UpdatePlacement(ctx context.Context, identifier string, folderID *int64, sortOrder int) error

	// SetDeletedAtByIdentifier stamps (or clears) deleted_at on a single agent
	SetDeletedAtByIdentifier(ctx context.Context, identifier string, deletedAt *time.Time) error

	// TrashInFolders stamps deleted_at on active agents in the given folders
	TrashInFolders(ctx context.Context, folderIDs []int64, deletedAt time.Time) error

	// RestoreInFolders clears deleted_at on agents in the given folders that
	// carry exactly the given deletion timestamp
	RestoreInFolders(ctx context.Context, folderIDs []int64, deletedAt time.Time) error
}
