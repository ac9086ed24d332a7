package organization

import (
	"context"

	models "agentdeck/internal/domain/models/organization"
)

// FolderService handles folder creation and renaming
type FolderService interface {
	CreateFolder(ctx context.Context, viewer models.Viewer, req *CreateFolderRequest) (*models.Folder, error)
	RenameFolder(ctx context.Context, viewer models.Viewer, id int64, req *RenameFolderRequest) (*models.Folder, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name       string  `json:"name"`
	ParentID   *int64  `json:"parentId,omitempty"`
	ParentPath *string `json:"parentPath,omitempty"` // alternative: encoded address of the parent
	Icon       *string `json:"icon,omitempty"`
	Color      *string `json:"color,omitempty"`
}

// RenameFolderRequest represents a folder rename request
type RenameFolderRequest struct {
	Name string `json:"name"`
}

// RecycleBinService soft-deletes and restores folders and agents
type RecycleBinService interface {
	// TrashFolder stamps the folder, its descendant folders and their agents
	TrashFolder(ctx context.Context, viewer models.Viewer, id int64) error

	// RestoreFolder restores everything trashed together with the folder
	RestoreFolder(ctx context.Context, viewer models.Viewer, id int64) error

	TrashAgent(ctx context.Context, viewer models.Viewer, identifier string) error
	RestoreAgent(ctx context.Context, viewer models.Viewer, identifier string) error
}
