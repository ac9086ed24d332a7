package organization

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
	"agentdeck/internal/domain/repositories"
	orgRepo "agentdeck/internal/domain/repositories/organization"
	orgSvc "agentdeck/internal/domain/services/organization"
	"agentdeck/internal/events"
)

type folderService struct {
	folderRepo orgRepo.FolderRepository
	txManager  repositories.TransactionManager
	publisher  events.Publisher
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo orgRepo.FolderRepository,
	txManager repositories.TransactionManager,
	publisher events.Publisher,
	logger *slog.Logger,
) orgSvc.FolderService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &folderService{
		folderRepo: folderRepo,
		txManager:  txManager,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateFolder creates a folder under a parent given by id or by address,
// appended after its new siblings
func (s *folderService) CreateFolder(ctx context.Context, viewer models.Viewer, req *orgSvc.CreateFolderRequest) (*models.Folder, error) {
	if err := requireAuthenticated(viewer); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &domain.ValidationError{Message: "request body is required"}
	}

	name, err := normalizeFolderName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := validateStyle(req.Icon, req.Color); err != nil {
		return nil, err
	}
	if req.ParentID != nil && req.ParentPath != nil {
		return nil, &domain.ValidationError{Message: "specify parentId or parentPath, not both"}
	}

	folder := &models.Folder{
		Name:  name,
		Icon:  req.Icon,
		Color: req.Color,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		parentID, err := s.resolveParent(txCtx, req)
		if err != nil {
			return err
		}

		siblings, err := s.folderRepo.ListChildren(txCtx, parentID)
		if err != nil {
			return fmt.Errorf("list sibling folders: %w", err)
		}
		next := 0
		for _, sibling := range siblings {
			if sibling.Name == name {
				return duplicateNameError(name, sibling.ID)
			}
			next = max(next, sibling.SortOrder+1)
		}

		now := time.Now().UTC()
		folder.ParentID = parentID
		folder.SortOrder = next
		folder.CreatedAt = now
		folder.UpdatedAt = now
		return s.folderRepo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"sort_order", folder.SortOrder,
	)
	announce(ctx, s.publisher, s.logger, events.Change{Type: events.ChangeCreated, Actor: viewer.UserID, Folders: 1})

	return folder, nil
}

// RenameFolder changes a folder's display name. Position is unchanged.
func (s *folderService) RenameFolder(ctx context.Context, viewer models.Viewer, id int64, req *orgSvc.RenameFolderRequest) (*models.Folder, error) {
	if err := requireAuthenticated(viewer); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &domain.ValidationError{Message: "request body is required"}
	}

	name, err := normalizeFolderName(req.Name)
	if err != nil {
		return nil, err
	}

	var renamed *models.Folder
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folder, err := s.activeFolder(txCtx, id)
		if err != nil {
			return err
		}
		if folder.Name == name {
			renamed = folder
			return nil
		}

		siblings, err := s.folderRepo.ListChildren(txCtx, folder.ParentID)
		if err != nil {
			return fmt.Errorf("list sibling folders: %w", err)
		}
		for _, sibling := range siblings {
			if sibling.ID != id && sibling.Name == name {
				return duplicateNameError(name, sibling.ID)
			}
		}

		if err := s.folderRepo.Rename(txCtx, id, name); err != nil {
			return err
		}
		renamed, err = s.folderRepo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", id, "name", name)
	announce(ctx, s.publisher, s.logger, events.Change{Type: events.ChangeRenamed, Actor: viewer.UserID, Folders: 1})

	return renamed, nil
}

// resolveParent returns the parent reference for a new folder (nil = root)
func (s *folderService) resolveParent(ctx context.Context, req *orgSvc.CreateFolderRequest) (*int64, error) {
	if req.ParentID != nil {
		if *req.ParentID == models.RootID {
			return nil, nil
		}
		parent, err := s.activeFolder(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		return models.RefOf(parent.ID), nil
	}

	if req.ParentPath == nil || *req.ParentPath == "" {
		return nil, nil
	}

	segments, err := DecodePath(*req.ParentPath)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	folders, err := s.folderRepo.List(ctx, models.LifecycleActive)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	parentID, ok := FolderFromPath(segments, BuildIndex(folders, nil))
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("parent folder not found: %s", *req.ParentPath)}
	}
	return models.RefOf(parentID), nil
}

// activeFolder loads a folder and rejects trashed ones
func (s *folderService) activeFolder(ctx context.Context, id int64) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder.DeletedAt != nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %d: not found", id)}
	}
	return folder, nil
}

func duplicateNameError(name string, existingID int64) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
		ResourceType: "folder",
		ResourceID:   strconv.FormatInt(existingID, 10),
	}
}

func validateStyle(icon, color *string) error {
	err := validation.Errors{
		"icon":  validation.Validate(icon, validation.NilOrNotEmpty, validation.RuneLength(1, 64)),
		"color": validation.Validate(color, validation.NilOrNotEmpty, validation.RuneLength(1, 32)),
	}.Filter()
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}
