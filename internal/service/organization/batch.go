package organization

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"agentdeck/internal/config"
	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
	"agentdeck/internal/domain/repositories"
	orgRepo "agentdeck/internal/domain/repositories/organization"
	orgSvc "agentdeck/internal/domain/services/organization"
	"agentdeck/internal/events"
)

type batchService struct {
	folderRepo  orgRepo.FolderRepository
	agentRepo   orgRepo.AgentRepository
	txManager   repositories.TransactionManager
	publisher   events.Publisher
	mode        string
	concurrency int
	logger      *slog.Logger
}

// NewBatchService creates a new batch persistence service
func NewBatchService(
	folderRepo orgRepo.FolderRepository,
	agentRepo orgRepo.AgentRepository,
	txManager repositories.TransactionManager,
	publisher events.Publisher,
	mode string,
	concurrency int,
	logger *slog.Logger,
) orgSvc.BatchService {
	if concurrency <= 0 {
		concurrency = config.DefaultBatchConcurrency
	}
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &batchService{
		folderRepo:  folderRepo,
		agentRepo:   agentRepo,
		txManager:   txManager,
		publisher:   publisher,
		mode:        mode,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Apply persists the update set. Folders are written first, then agents.
func (s *batchService) Apply(ctx context.Context, viewer models.Viewer, set *models.UpdateSet) error {
	if err := requireAuthenticated(viewer); err != nil {
		return err
	}
	if err := validateUpdateSet(set); err != nil {
		return err
	}
	if set.Empty() {
		return nil
	}
	if err := s.checkForest(ctx, set); err != nil {
		return err
	}

	var err error
	if s.mode == config.BatchModeAtomic {
		err = s.applyAtomic(ctx, set)
	} else {
		err = s.applyBestEffort(ctx, set)
	}
	if err != nil {
		return err
	}

	s.logger.Info("batch applied",
		"user_id", viewer.UserID,
		"folders", len(set.Folders),
		"agents", len(set.Agents),
		"mode", s.mode,
	)
	announce(ctx, s.publisher, s.logger, events.Change{
		Type:    events.ChangeReordered,
		Actor:   viewer.UserID,
		Folders: len(set.Folders),
		Agents:  len(set.Agents),
	})
	return nil
}

// checkForest rejects a set whose folder placements, overlaid on the active
// rows, would leave an updated folder without a path to the root.
func (s *batchService) checkForest(ctx context.Context, set *models.UpdateSet) error {
	if len(set.Folders) == 0 {
		return nil
	}

	active, err := s.folderRepo.List(ctx, models.LifecycleActive)
	if err != nil {
		return fmt.Errorf("load folders: %w", err)
	}
	planned, _ := ApplyUpdateSet(active, nil, set)

	folderByID := make(map[int64]*models.Folder, len(planned))
	for i := range planned {
		folderByID[planned[i].ID] = &planned[i]
	}

	for _, u := range set.Folders {
		chain := AncestorChain(u.ID, folderByID)
		if len(chain) == 0 {
			continue
		}
		top := folderByID[chain[0]]
		if top.ParentID == nil {
			continue
		}
		if _, known := folderByID[*top.ParentID]; known {
			return &domain.ValidationError{
				Message: fmt.Sprintf("invalid batch: folder %d would be placed inside its own subtree", u.ID),
			}
		}
	}

	return nil
}

// applyBestEffort writes each group concurrently. Rows written before a
// failure stay written.
func (s *batchService) applyBestEffort(ctx context.Context, set *models.UpdateSet) error {
	// The batch is committed to once validated; a dropped client must not stop it halfway.
	ctx = context.WithoutCancel(ctx)

	folderErrs := s.runConcurrently(len(set.Folders), func(i int) error {
		u := set.Folders[i]
		if err := s.folderRepo.UpdatePlacement(ctx, u.ID, u.ParentID, u.SortOrder); err != nil {
			s.logger.Error("folder placement update failed",
				"folder_id", u.ID,
				"parent_id", u.ParentID,
				"sort_order", u.SortOrder,
				"error", err,
			)
			return fmt.Errorf("update folder %d: %w", u.ID, err)
		}
		return nil
	})

	agentErrs := s.runConcurrently(len(set.Agents), func(i int) error {
		u := set.Agents[i]
		if err := s.agentRepo.UpdatePlacement(ctx, u.Identifier, u.FolderID, u.SortOrder); err != nil {
			s.logger.Error("agent placement update failed",
				"identifier", u.Identifier,
				"folder_id", u.FolderID,
				"sort_order", u.SortOrder,
				"error", err,
			)
			return fmt.Errorf("update agent %s: %w", u.Identifier, err)
		}
		return nil
	})

	var first error
	failed := 0
	for _, err := range append(folderErrs, agentErrs...) {
		if err == nil {
			continue
		}
		failed++
		if first == nil {
			first = err
		}
	}
	if first == nil {
		return nil
	}
	return &domain.PartialWriteError{Failed: failed, Total: set.Len(), Err: first}
}

// runConcurrently calls fn for 0..n-1 with bounded parallelism and returns
// the per-index errors in input order.
func (s *batchService) runConcurrently(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			errs[i] = fn(i)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// applyAtomic writes the whole set in one transaction. Statements on a pgx
// transaction cannot run concurrently, so rows are written in order.
func (s *batchService) applyAtomic(ctx context.Context, set *models.UpdateSet) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, u := range set.Folders {
			if err := s.folderRepo.UpdatePlacement(txCtx, u.ID, u.ParentID, u.SortOrder); err != nil {
				return fmt.Errorf("update folder %d: %w", u.ID, err)
			}
		}
		for _, u := range set.Agents {
			if err := s.agentRepo.UpdatePlacement(txCtx, u.Identifier, u.FolderID, u.SortOrder); err != nil {
				return fmt.Errorf("update agent %s: %w", u.Identifier, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("atomic batch rolled back", "updates", set.Len(), "error", err)
		return err
	}
	return nil
}

// announce publishes a committed change. Failures are logged, never returned:
// the write has already succeeded.
func announce(ctx context.Context, publisher events.Publisher, logger *slog.Logger, change events.Change) {
	if err := publisher.Publish(context.WithoutCancel(ctx), change); err != nil {
		logger.Warn("failed to publish organization change", "type", change.Type, "error", err)
	}
}
