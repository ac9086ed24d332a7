package organization

import (
	"context"
	"fmt"
	"log/slog"

	"agentdeck/internal/config"
	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
	orgRepo "agentdeck/internal/domain/repositories/organization"
	orgSvc "agentdeck/internal/domain/services/organization"
)

type treeService struct {
	folderRepo orgRepo.FolderRepository
	agentRepo  orgRepo.AgentRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo orgRepo.FolderRepository,
	agentRepo orgRepo.AgentRepository,
	logger *slog.Logger,
) orgSvc.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		agentRepo:  agentRepo,
		logger:     logger,
	}
}

// GetItems loads the flat rows of one lifecycle and prunes them for viewer
func (s *treeService) GetItems(ctx context.Context, viewer models.Viewer, lifecycle models.Lifecycle) (*models.Items, error) {
	if lifecycle == models.LifecycleRecycleBin {
		if err := requireAuthenticated(viewer); err != nil {
			return nil, err
		}
	}

	folders, err := s.folderRepo.List(ctx, lifecycle)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	agents, err := s.agentRepo.List(ctx, lifecycle)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	folders, agents = Prune(folders, agents, viewer)
	return &models.Items{Folders: folders, Agents: agents}, nil
}

// GetTree builds the nested tree and optionally resolves a folder address
func (s *treeService) GetTree(ctx context.Context, viewer models.Viewer, lifecycle models.Lifecycle, address string) (*orgSvc.TreeView, error) {
	items, err := s.GetItems(ctx, viewer, lifecycle)
	if err != nil {
		return nil, err
	}

	idx := BuildIndex(items.Folders, items.Agents)
	view := &orgSvc.TreeView{Tree: BuildTree(idx)}

	if address != "" {
		if len(address) > config.MaxFolderAddressLength {
			return nil, &domain.ValidationError{Message: "folder address is too long"}
		}
		segments, err := DecodePath(address)
		if err != nil {
			return nil, &domain.ValidationError{Message: err.Error()}
		}
		folderID, ok := FolderFromPath(segments, idx)
		if !ok {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder not found: %s", address)}
		}
		if folderID != models.RootID {
			view.Folder = locate(folderID, idx)
		}
	}

	s.logger.Debug("tree built",
		"lifecycle", lifecycle,
		"folders", len(items.Folders),
		"agents", len(items.Agents),
		"authenticated", viewer.IsAuthenticated,
	)
	return view, nil
}

// BuildTree nests the indexed rows in sibling order
func BuildTree(idx *Index) *models.Tree {
	return &models.Tree{
		Folders: buildFolderNodes(idx, models.RootID, nil),
		Agents:  buildAgentNodes(idx, models.RootID),
	}
}

func buildFolderNodes(idx *Index, parent int64, parentPath []string) []*models.FolderNode {
	children := idx.ChildFolderIDs[parent]
	nodes := make([]*models.FolderNode, 0, len(children))
	for _, id := range children {
		f := idx.FolderByID[id]
		path := append(append(make([]string, 0, len(parentPath)+1), parentPath...), f.Name)
		nodes = append(nodes, &models.FolderNode{
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  models.RefOf(parent),
			SortOrder: f.SortOrder,
			Icon:      f.Icon,
			Color:     f.Color,
			Path:      EncodePath(path),
			Folders:   buildFolderNodes(idx, id, path),
			Agents:    buildAgentNodes(idx, id),
		})
	}
	return nodes
}

func buildAgentNodes(idx *Index, folder int64) []models.AgentNode {
	agents := idx.AgentsByFolderID[folder]
	nodes := make([]models.AgentNode, 0, len(agents))
	for _, a := range agents {
		nodes = append(nodes, models.AgentNode{
			Identifier: a.Identifier(),
			Name:       a.Name,
			FolderID:   models.RefOf(folder),
			SortOrder:  a.SortOrder,
			Visibility: a.Visibility,
		})
	}
	return nodes
}

// locate returns the folder's canonical address and root-to-folder breadcrumbs
func locate(folderID int64, idx *Index) *orgSvc.FolderLocation {
	chain := AncestorChain(folderID, idx.FolderByID)
	crumbs := make([]models.Breadcrumb, 0, len(chain))
	names := make([]string, 0, len(chain))
	for _, id := range chain {
		f := idx.FolderByID[id]
		names = append(names, f.Name)
		crumbs = append(crumbs, models.Breadcrumb{
			ID:   id,
			Name: f.Name,
			Path: EncodePath(names),
		})
	}
	return &orgSvc.FolderLocation{
		ID:          folderID,
		Path:        EncodePath(names),
		Breadcrumbs: crumbs,
	}
}
