package orgclient

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	models "agentdeck/internal/domain/models/organization"
	"agentdeck/internal/service/organization"
)

// Backend is the part of Client a Workspace needs
type Backend interface {
	ApplyBatch(ctx context.Context, set *models.UpdateSet) error
	FetchItems(ctx context.Context, lifecycle models.Lifecycle) (*models.Items, error)
}

// Workspace holds a local copy of the active tree. Moves are applied locally
// first and persisted afterwards; a failed write is reconciled by re-fetching
// server state. Nothing is retried automatically.
type Workspace struct {
	backend Backend

	mu      sync.RWMutex
	folders []models.Folder
	agents  []models.Agent
}

// NewWorkspace creates an empty workspace; call Refresh to load it
func NewWorkspace(backend Backend) *Workspace {
	return &Workspace{backend: backend}
}

// Refresh replaces local state with the server's active rows
func (w *Workspace) Refresh(ctx context.Context) error {
	items, err := w.backend.FetchItems(ctx, models.LifecycleActive)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.folders, w.agents = items.Folders, items.Agents
	w.mu.Unlock()
	return nil
}

// Items returns a copy of the local rows
func (w *Workspace) Items() models.Items {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return models.Items{Folders: slices.Clone(w.folders), Agents: slices.Clone(w.agents)}
}

// Tree renders the local rows as a nested tree
func (w *Workspace) Tree() *models.Tree {
	items := w.Items()
	return organization.BuildTree(organization.BuildIndex(items.Folders, items.Agents))
}

// Drop plans a gesture against local state, applies it optimistically and
// persists it. When persisting fails the local state is re-fetched and the
// write error is returned.
func (w *Workspace) Drop(ctx context.Context, req models.DropRequest) (*models.UpdateSet, error) {
	w.mu.Lock()
	set, err := organization.PlanDrop(organization.BuildIndex(w.folders, w.agents), req)
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.folders, w.agents = organization.ApplyUpdateSet(w.folders, w.agents, set)
	w.mu.Unlock()

	if err := w.backend.ApplyBatch(ctx, set); err != nil {
		if refreshErr := w.Refresh(ctx); refreshErr != nil {
			return nil, errors.Join(err, fmt.Errorf("refresh after failed write: %w", refreshErr))
		}
		return nil, err
	}

	return set, nil
}

// Flush persists an accumulated batch and resets it on success
func (w *Workspace) Flush(ctx context.Context, batch *Batch) error {
	if batch.Len() == 0 {
		return nil
	}

	set := batch.UpdateSet()
	w.mu.Lock()
	w.folders, w.agents = organization.ApplyUpdateSet(w.folders, w.agents, set)
	w.mu.Unlock()

	if err := w.backend.ApplyBatch(ctx, set); err != nil {
		if refreshErr := w.Refresh(ctx); refreshErr != nil {
			return errors.Join(err, fmt.Errorf("refresh after failed write: %w", refreshErr))
		}
		return err
	}

	batch.Reset()
	return nil
}
