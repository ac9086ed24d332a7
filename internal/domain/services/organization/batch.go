package organization

import (
	"context"

	models "agentdeck/internal/domain/models/organization"
)

// BatchService persists update sets produced by the move engine
type BatchService interface {
	// Apply writes every update in set. Without a transaction (the default
	// mode) rows written before a failing row stay written; the first failure
	// is returned as a *domain.PartialWriteError.
	Apply(ctx context.Context, viewer models.Viewer, set *models.UpdateSet) error
}

// MoveService plans drag-and-drop gestures against stored state and persists them
type MoveService interface {
	Drop(ctx context.Context, viewer models.Viewer, req models.DropRequest) (*models.UpdateSet, error)
}
