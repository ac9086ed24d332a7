package organization

import (
	"context"
	"fmt"
	"log/slog"

	models "agentdeck/internal/domain/models/organization"
	orgRepo "agentdeck/internal/domain/repositories/organization"
	orgSvc "agentdeck/internal/domain/services/organization"
)

type moveService struct {
	folderRepo orgRepo.FolderRepository
	agentRepo  orgRepo.AgentRepository
	batch      orgSvc.BatchService
	logger     *slog.Logger
}

// NewMoveService creates a service that plans drops against stored state
func NewMoveService(
	folderRepo orgRepo.FolderRepository,
	agentRepo orgRepo.AgentRepository,
	batch orgSvc.BatchService,
	logger *slog.Logger,
) orgSvc.MoveService {
	return &moveService{
		folderRepo: folderRepo,
		agentRepo:  agentRepo,
		batch:      batch,
		logger:     logger,
	}
}

// Drop plans req against the unfiltered active tree and persists the result.
// The returned set is what was written.
func (s *moveService) Drop(ctx context.Context, viewer models.Viewer, req models.DropRequest) (*models.UpdateSet, error) {
	if err := requireAuthenticated(viewer); err != nil {
		return nil, err
	}

	folders, err := s.folderRepo.List(ctx, models.LifecycleActive)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	agents, err := s.agentRepo.List(ctx, models.LifecycleActive)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	set, err := PlanDrop(BuildIndex(folders, agents), req)
	if err != nil {
		return nil, err
	}

	if err := s.batch.Apply(ctx, viewer, set); err != nil {
		return nil, err
	}

	s.logger.Info("drop applied",
		"dragged_kind", req.Dragged.Kind,
		"target_kind", req.Target.Kind,
		"intent", req.Intent,
		"updates", set.Len(),
	)
	return set, nil
}
