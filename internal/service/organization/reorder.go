package organization

import (
	"fmt"
	"slices"

	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
)

// appendPosition places a moved item after every existing sibling.
const appendPosition = -1

// ReorderFolder moves draggedID before or after targetID. Within one parent
// the whole sibling group is renumbered 0..n-1. When the target lives under
// another parent the dragged folder moves into that parent at the target's
// position, both groups are renumbered and the move is cycle-checked.
func ReorderFolder(idx *Index, draggedID, targetID int64, intent models.DropIntent) (*models.UpdateSet, error) {
	if intent != models.DropBefore && intent != models.DropAfter {
		return nil, invalidf("folder reorder needs a before or after intent, got %q", intent)
	}
	if draggedID == targetID {
		return nil, invalidf("cannot place folder %d relative to itself", draggedID)
	}
	if _, ok := idx.FolderByID[draggedID]; !ok {
		return nil, invalidf("folder %d not found", draggedID)
	}
	targetParent, ok := idx.ParentOf(targetID)
	if !ok {
		return nil, invalidf("target folder %d not found", targetID)
	}
	if err := checkNoCycle(idx, draggedID, targetParent); err != nil {
		return nil, err
	}

	siblings := idx.siblingFolderIDs(targetParent)
	siblings = slices.DeleteFunc(siblings, func(id int64) bool { return id == draggedID })
	position := slices.Index(siblings, targetID)
	if intent == models.DropAfter {
		position++
	}

	return relocateFolder(idx, draggedID, targetParent, position), nil
}

// MoveFolder re-parents draggedID under parentID (nil for the root). The folder
// is appended after its new siblings and its old sibling group is compacted.
// Moving a folder into itself or into one of its descendants is rejected.
func MoveFolder(idx *Index, draggedID int64, parentID *int64) (*models.UpdateSet, error) {
	if _, ok := idx.FolderByID[draggedID]; !ok {
		return nil, invalidf("folder %d not found", draggedID)
	}
	parent := models.KeyOf(parentID)
	if !idx.HasFolder(parent) {
		return nil, invalidf("target folder %d not found", parent)
	}
	if err := checkNoCycle(idx, draggedID, parent); err != nil {
		return nil, err
	}

	return relocateFolder(idx, draggedID, parent, appendPosition), nil
}

// ReorderAgent moves an agent before or after a target agent, following the
// same rules as ReorderFolder without the cycle check.
func ReorderAgent(idx *Index, identifier, targetIdentifier string, intent models.DropIntent) (*models.UpdateSet, error) {
	if intent != models.DropBefore && intent != models.DropAfter {
		return nil, invalidf("agent reorder needs a before or after intent, got %q", intent)
	}
	if identifier == targetIdentifier {
		return nil, invalidf("cannot place agent %s relative to itself", identifier)
	}
	if _, ok := idx.Agent(identifier); !ok {
		return nil, invalidf("agent %s not found", identifier)
	}
	targetFolder, ok := idx.AgentFolder(targetIdentifier)
	if !ok {
		return nil, invalidf("target agent %s not found", targetIdentifier)
	}

	siblings := idx.siblingAgentIdentifiers(targetFolder)
	siblings = slices.DeleteFunc(siblings, func(id string) bool { return id == identifier })
	position := slices.Index(siblings, targetIdentifier)
	if intent == models.DropAfter {
		position++
	}

	return relocateAgent(idx, identifier, targetFolder, position), nil
}

// MoveAgent places an agent in folderID (nil for the root), appended after the
// agents already there. Agents contain nothing, so no cycle check applies.
func MoveAgent(idx *Index, identifier string, folderID *int64) (*models.UpdateSet, error) {
	if _, ok := idx.Agent(identifier); !ok {
		return nil, invalidf("agent %s not found", identifier)
	}
	folder := models.KeyOf(folderID)
	if !idx.HasFolder(folder) {
		return nil, invalidf("target folder %d not found", folder)
	}

	return relocateAgent(idx, identifier, folder, appendPosition), nil
}

// PlanDrop turns a drag-and-drop gesture into an update set.
func PlanDrop(idx *Index, req models.DropRequest) (*models.UpdateSet, error) {
	target := req.Target

	switch req.Dragged.Kind {
	case models.KindFolder:
		dragged := req.Dragged.FolderID
		switch {
		case target.Kind == models.KindRoot:
			return MoveFolder(idx, dragged, nil)
		case target.Kind == models.KindFolder && req.Intent == models.DropInside:
			return MoveFolder(idx, dragged, models.RefOf(target.FolderID))
		case target.Kind == models.KindFolder:
			return ReorderFolder(idx, dragged, target.FolderID, req.Intent)
		case target.Kind == models.KindAgent:
			// Folders and agents are ordered independently: land in the agent's container
			container, ok := idx.AgentFolder(target.Identifier)
			if !ok {
				return nil, invalidf("target agent %s not found", target.Identifier)
			}
			return MoveFolder(idx, dragged, models.RefOf(container))
		}

	case models.KindAgent:
		dragged := req.Dragged.Identifier
		switch {
		case target.Kind == models.KindRoot:
			return MoveAgent(idx, dragged, nil)
		case target.Kind == models.KindFolder && req.Intent == models.DropInside:
			return MoveAgent(idx, dragged, models.RefOf(target.FolderID))
		case target.Kind == models.KindFolder:
			container, ok := idx.ParentOf(target.FolderID)
			if !ok {
				return nil, invalidf("target folder %d not found", target.FolderID)
			}
			return MoveAgent(idx, dragged, models.RefOf(container))
		case target.Kind == models.KindAgent:
			if req.Intent == models.DropInside {
				return nil, invalidf("cannot drop inside agent %s", target.Identifier)
			}
			return ReorderAgent(idx, dragged, target.Identifier, req.Intent)
		}

	default:
		return nil, invalidf("cannot drag item of kind %q", req.Dragged.Kind)
	}

	return nil, invalidf("unsupported drop target kind %q", target.Kind)
}

// checkNoCycle rejects placing draggedID under parent when parent is the
// folder itself or one of its descendants.
func checkNoCycle(idx *Index, draggedID, parent int64) error {
	if parent == models.RootID {
		return nil
	}
	if parent == draggedID {
		return invalidf("cannot move folder %d into itself", draggedID)
	}
	if _, inside := DescendantIDs(draggedID, idx.ChildFolderIDs)[parent]; inside {
		return invalidf("cannot move folder %d into its descendant %d", draggedID, parent)
	}
	return nil
}

// relocateFolder computes the updates for placing draggedID under parent at
// position (appendPosition appends at max sortOrder + 1).
func relocateFolder(idx *Index, draggedID, parent int64, position int) *models.UpdateSet {
	set := &models.UpdateSet{}
	source, _ := idx.ParentOf(draggedID)
	update := func(id int64, parentKey int64, sortOrder int) {
		set.Folders = append(set.Folders, models.FolderUpdate{
			ID:        id,
			ParentID:  models.RefOf(parentKey),
			SortOrder: sortOrder,
		})
	}

	if source == parent {
		siblings := idx.siblingFolderIDs(parent)
		siblings = slices.DeleteFunc(siblings, func(id int64) bool { return id == draggedID })
		for i, id := range insertAt(siblings, draggedID, position) {
			update(id, parent, i)
		}
		return set
	}

	// Close the gap in the source group
	remaining := idx.siblingFolderIDs(source)
	remaining = slices.DeleteFunc(remaining, func(id int64) bool { return id == draggedID })
	for i, id := range remaining {
		update(id, source, i)
	}

	if position == appendPosition {
		next := 0
		for _, id := range idx.ChildFolderIDs[parent] {
			next = max(next, idx.FolderByID[id].SortOrder+1)
		}
		update(draggedID, parent, next)
		return set
	}

	for i, id := range insertAt(idx.siblingFolderIDs(parent), draggedID, position) {
		update(id, parent, i)
	}
	return set
}

// relocateAgent is relocateFolder for agents.
func relocateAgent(idx *Index, identifier string, folder int64, position int) *models.UpdateSet {
	set := &models.UpdateSet{}
	source, _ := idx.AgentFolder(identifier)
	update := func(id string, folderKey int64, sortOrder int) {
		set.Agents = append(set.Agents, models.AgentUpdate{
			Identifier: id,
			FolderID:   models.RefOf(folderKey),
			SortOrder:  sortOrder,
		})
	}

	if source == folder {
		siblings := idx.siblingAgentIdentifiers(folder)
		siblings = slices.DeleteFunc(siblings, func(id string) bool { return id == identifier })
		for i, id := range insertAt(siblings, identifier, position) {
			update(id, folder, i)
		}
		return set
	}

	remaining := idx.siblingAgentIdentifiers(source)
	remaining = slices.DeleteFunc(remaining, func(id string) bool { return id == identifier })
	for i, id := range remaining {
		update(id, source, i)
	}

	if position == appendPosition {
		next := 0
		for _, a := range idx.AgentsByFolderID[folder] {
			next = max(next, a.SortOrder+1)
		}
		update(identifier, folder, next)
		return set
	}

	for i, id := range insertAt(idx.siblingAgentIdentifiers(folder), identifier, position) {
		update(id, folder, i)
	}
	return set
}

// insertAt splices item into list at position clamped to [0, len(list)];
// appendPosition appends.
func insertAt[T any](list []T, item T, position int) []T {
	if position == appendPosition || position > len(list) {
		position = len(list)
	}
	if position < 0 {
		position = 0
	}
	return slices.Insert(list, position, item)
}

func invalidf(format string, args ...any) error {
	return &domain.ValidationError{Message: fmt.Sprintf(format, args...)}
}
