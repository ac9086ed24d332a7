package organization

import (
	"context"
	"time"

	models "agentdeck/internal/domain/models/organization"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create inserts a folder and fills in its id and timestamps
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by id regardless of lifecycle
	GetByID(ctx context.Context, id int64) (*models.Folder, error)

	// List returns every folder in the given lifecycle state (flat list)
	List(ctx context.Context, lifecycle models.Lifecycle) ([]models.Folder, error)

	// ListChildren lists immediate active child folders (nil parent = root)
	ListChildren(ctx context.Context, parentID *int64) ([]models.Folder, error)

	// Rename changes the display name of an active folder
	Rename(ctx context.Context, id int64, name string) error

	// UpdatePlacement sets parent and sort order of an active folder.
	// Returns domain.ErrNotFound when no active row matched.
	UpdatePlacement(ctx context.Context, id int64, parentID *int64, sortOrder int) error

	// SetDeletedAt stamps (or clears, with nil) deleted_at on the given folders
	SetDeletedAt(ctx context.Context, ids []int64, deletedAt *time.Time) error

	// Reparent moves folders to a new parent without touching sort order
	Reparent(ctx context.Context, ids []int64, parentID *int64) error
}
