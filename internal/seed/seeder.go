package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	models "agentdeck/internal/domain/models/organization"
	"agentdeck/internal/domain/repositories"
	orgRepo "agentdeck/internal/domain/repositories/organization"
	"agentdeck/internal/service/organization"
)

// Seeder writes a fixture through the organization repositories
type Seeder struct {
	folderRepo orgRepo.FolderRepository
	agentRepo  orgRepo.AgentRepository
	txManager  repositories.TransactionManager
	logger     *slog.Logger
	now        func() time.Time
}

// Stats counts the rows a seed run created
type Stats struct {
	Folders int
	Agents  int
	Trashed int
}

// NewSeeder creates a new seeder
func NewSeeder(
	folderRepo orgRepo.FolderRepository,
	agentRepo orgRepo.AgentRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		folderRepo: folderRepo,
		agentRepo:  agentRepo,
		txManager:  txManager,
		logger:     logger,
		now:        time.Now,
	}
}

// Seed creates every folder and agent of the fixture in one transaction.
// Trashed entries are created and then stamped with a shared deletion time,
// so a trashed folder restores together with its contents.
func (s *Seeder) Seed(ctx context.Context, fixture *Fixture) (Stats, error) {
	var stats Stats
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		stats = Stats{}
		stamp := s.now().UTC().Truncate(time.Microsecond)
		return s.seedLevel(txCtx, nil, fixture.Folders, fixture.Agents, stamp, &stats)
	})
	if err != nil {
		return Stats{}, err
	}

	s.logger.Info("fixture seeded",
		"folders", stats.Folders,
		"agents", stats.Agents,
		"trashed", stats.Trashed,
	)
	return stats, nil
}

func (s *Seeder) seedLevel(
	ctx context.Context,
	parentID *int64,
	folders []FolderFixture,
	agents []AgentFixture,
	stamp time.Time,
	stats *Stats,
) error {
	for i, f := range folders {
		folder := &models.Folder{
			Name:      f.Name,
			ParentID:  parentID,
			SortOrder: i,
			Icon:      f.Icon,
			Color:     f.Color,
			CreatedAt: stamp,
			UpdatedAt: stamp,
		}
		if err := s.folderRepo.Create(ctx, folder); err != nil {
			return fmt.Errorf("seed folder %q: %w", f.Name, err)
		}
		stats.Folders++

		if err := s.seedLevel(ctx, models.RefOf(folder.ID), f.Folders, f.Agents, stamp, stats); err != nil {
			return err
		}

		if f.Trashed {
			// Descendants are already present, stamp the whole subtree
			if err := s.trashSubtree(ctx, folder.ID, stamp); err != nil {
				return fmt.Errorf("trash folder %q: %w", f.Name, err)
			}
			stats.Trashed++
		}
	}

	for i, a := range agents {
		agent := &models.Agent{
			ID:         a.permanentID(),
			Name:       a.Name,
			FolderID:   parentID,
			SortOrder:  i,
			Visibility: a.visibility(),
			CreatedAt:  stamp,
			UpdatedAt:  stamp,
		}
		if err := s.agentRepo.Create(ctx, agent); err != nil {
			return fmt.Errorf("seed agent %q: %w", a.Name, err)
		}
		stats.Agents++

		if a.Trashed {
			if err := s.agentRepo.SetDeletedAtByIdentifier(ctx, agent.Identifier(), &stamp); err != nil {
				return fmt.Errorf("trash agent %q: %w", a.Name, err)
			}
			stats.Trashed++
		}
	}

	return nil
}

func (s *Seeder) trashSubtree(ctx context.Context, folderID int64, stamp time.Time) error {
	active, err := s.folderRepo.List(ctx, models.LifecycleActive)
	if err != nil {
		return err
	}

	var ids []int64
	for id := range organization.DescendantIDs(folderID, organization.BuildIndex(active, nil).ChildFolderIDs) {
		ids = append(ids, id)
	}

	if err := s.folderRepo.SetDeletedAt(ctx, ids, &stamp); err != nil {
		return err
	}
	return s.agentRepo.TrashInFolders(ctx, ids, stamp)
}
