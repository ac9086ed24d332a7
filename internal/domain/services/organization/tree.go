package organization

import (
	"context"

	models "agentdeck/internal/domain/models/organization"
)

// TreeService reads the organization tree for a viewer
type TreeService interface {
	// GetTree builds the nested tree for one lifecycle view. A non-empty
	// address also resolves that folder and its breadcrumbs.
	GetTree(ctx context.Context, viewer models.Viewer, lifecycle models.Lifecycle, address string) (*TreeView, error)

	// GetItems returns the flat rows the viewer may see
	GetItems(ctx context.Context, viewer models.Viewer, lifecycle models.Lifecycle) (*models.Items, error)
}

// TreeView is a tree plus the optionally addressed folder
type TreeView struct {
	Tree   *models.Tree    `json:"tree"`
	Folder *FolderLocation `json:"folder,omitempty"`
}

// FolderLocation identifies an addressed folder
type FolderLocation struct {
	ID          int64               `json:"id"`
	Path        string              `json:"path"`
	Breadcrumbs []models.Breadcrumb `json:"breadcrumbs"`
}
