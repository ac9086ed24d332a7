package organization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
	"agentdeck/internal/domain/repositories"
	orgRepo "agentdeck/internal/domain/repositories/organization"
	orgSvc "agentdeck/internal/domain/services/organization"
	"agentdeck/internal/events"
)

type recycleBinService struct {
	folderRepo orgRepo.FolderRepository
	agentRepo  orgRepo.AgentRepository
	txManager  repositories.TransactionManager
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewRecycleBinService creates a new soft-delete service
func NewRecycleBinService(
	folderRepo orgRepo.FolderRepository,
	agentRepo orgRepo.AgentRepository,
	txManager repositories.TransactionManager,
	publisher events.Publisher,
	logger *slog.Logger,
) orgSvc.RecycleBinService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &recycleBinService{
		folderRepo: folderRepo,
		agentRepo:  agentRepo,
		txManager:  txManager,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// deletionStamp is stored in a timestamptz column, which keeps microseconds.
// Truncating up front keeps the in-memory value equal to the stored one.
func (s *recycleBinService) deletionStamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// TrashFolder moves a folder and its whole subtree to the recycle bin
func (s *recycleBinService) TrashFolder(ctx context.Context, viewer models.Viewer, id int64) error {
	if err := requireAuthenticated(viewer); err != nil {
		return err
	}

	stamp := s.deletionStamp()
	var trashed []int64

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folders, err := s.folderRepo.List(txCtx, models.LifecycleActive)
		if err != nil {
			return fmt.Errorf("list folders: %w", err)
		}
		idx := BuildIndex(folders, nil)
		if _, ok := idx.FolderByID[id]; !ok {
			return &domain.NotFoundError{Message: fmt.Sprintf("folder %d: not found", id)}
		}

		for folderID := range DescendantIDs(id, idx.ChildFolderIDs) {
			trashed = append(trashed, folderID)
		}
		if err := s.folderRepo.SetDeletedAt(txCtx, trashed, &stamp); err != nil {
			return err
		}
		return s.agentRepo.TrashInFolders(txCtx, trashed, stamp)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder trashed", "id", id, "folders", len(trashed), "deleted_at", stamp)
	announce(ctx, s.publisher, s.logger, events.Change{Type: events.ChangeTrashed, Actor: viewer.UserID, Folders: len(trashed)})
	return nil
}

// RestoreFolder brings back every folder and agent trashed together with id.
// When the folder's parent is still trashed it is restored at the root. An
// active sibling with the same name is a conflict.
func (s *recycleBinService) RestoreFolder(ctx context.Context, viewer models.Viewer, id int64) error {
	if err := requireAuthenticated(viewer); err != nil {
		return err
	}

	var restored []int64
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folder, err := s.folderRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if folder.DeletedAt == nil {
			return &domain.ValidationError{Message: fmt.Sprintf("folder %d is not in the recycle bin", id)}
		}
		stamp := *folder.DeletedAt

		// A folder whose parent is still trashed comes back at the root
		destination := folder.ParentID
		if destination != nil {
			active, err := s.isActiveFolder(txCtx, *destination)
			if err != nil {
				return err
			}
			if !active {
				destination = nil
			}
		}

		siblings, err := s.folderRepo.ListChildren(txCtx, destination)
		if err != nil {
			return fmt.Errorf("list sibling folders: %w", err)
		}
		for _, sibling := range siblings {
			if sibling.Name == folder.Name {
				return duplicateNameError(folder.Name, sibling.ID)
			}
		}

		trashedFolders, err := s.folderRepo.List(txCtx, models.LifecycleRecycleBin)
		if err != nil {
			return fmt.Errorf("list trashed folders: %w", err)
		}
		idx := BuildIndex(trashedFolders, nil)
		for folderID := range DescendantIDs(id, idx.ChildFolderIDs) {
			f, ok := idx.FolderByID[folderID]
			if ok && f.DeletedAt != nil && f.DeletedAt.Equal(stamp) {
				restored = append(restored, folderID)
			}
		}

		if err := s.folderRepo.SetDeletedAt(txCtx, restored, nil); err != nil {
			return err
		}
		if err := s.agentRepo.RestoreInFolders(txCtx, restored, stamp); err != nil {
			return err
		}

		if destination == nil && folder.ParentID != nil {
			return s.folderRepo.Reparent(txCtx, []int64{id}, nil)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder restored", "id", id, "folders", len(restored))
	announce(ctx, s.publisher, s.logger, events.Change{Type: events.ChangeRestored, Actor: viewer.UserID, Folders: len(restored)})
	return nil
}

// TrashAgent moves one agent to the recycle bin
func (s *recycleBinService) TrashAgent(ctx context.Context, viewer models.Viewer, identifier string) error {
	if err := requireAuthenticated(viewer); err != nil {
		return err
	}

	agent, err := s.agentRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if agent.DeletedAt != nil {
		return &domain.NotFoundError{Message: fmt.Sprintf("agent %s: not found", identifier)}
	}

	stamp := s.deletionStamp()
	if err := s.agentRepo.SetDeletedAtByIdentifier(ctx, identifier, &stamp); err != nil {
		return err
	}

	s.logger.Info("agent trashed", "identifier", identifier)
	announce(ctx, s.publisher, s.logger, events.Change{Type: events.ChangeTrashed, Actor: viewer.UserID, Agents: 1})
	return nil
}

// RestoreAgent brings an agent back. An agent whose folder is still trashed
// lands at the end of the root level.
func (s *recycleBinService) RestoreAgent(ctx context.Context, viewer models.Viewer, identifier string) error {
	if err := requireAuthenticated(viewer); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		agent, err := s.agentRepo.GetByIdentifier(txCtx, identifier)
		if err != nil {
			return err
		}
		if agent.DeletedAt == nil {
			return &domain.ValidationError{Message: fmt.Sprintf("agent %s is not in the recycle bin", identifier)}
		}
		if err := s.agentRepo.SetDeletedAtByIdentifier(txCtx, identifier, nil); err != nil {
			return err
		}

		if agent.FolderID == nil {
			return nil
		}
		active, err := s.isActiveFolder(txCtx, *agent.FolderID)
		if err != nil || active {
			return err
		}

		agents, err := s.agentRepo.List(txCtx, models.LifecycleActive)
		if err != nil {
			return fmt.Errorf("list agents: %w", err)
		}
		next := 0
		for _, a := range agents {
			if a.FolderID == nil && a.Identifier() != agent.Identifier() {
				next = max(next, a.SortOrder+1)
			}
		}
		return s.agentRepo.UpdatePlacement(txCtx, identifier, nil, next)
	})
	if err != nil {
		return err
	}

	s.logger.Info("agent restored", "identifier", identifier)
	announce(ctx, s.publisher, s.logger, events.Change{Type: events.ChangeRestored, Actor: viewer.UserID, Agents: 1})
	return nil
}

// isActiveFolder reports whether id names a folder outside the recycle bin.
// A missing folder counts as inactive.
func (s *recycleBinService) isActiveFolder(ctx context.Context, id int64) (bool, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return folder.DeletedAt == nil, nil
}

