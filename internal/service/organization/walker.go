package organization

import (
	"slices"

	models "agentdeck/internal/domain/models/organization"
)

// AncestorIDs returns the ids from folderID's parent up to the root.
// The walk stops at a missing lookup and is bounded by the folder count, so a
// corrupted (cyclic) parent chain terminates.
func AncestorIDs(folderID int64, folderByID map[int64]*models.Folder) map[int64]struct{} {
	ancestors := make(map[int64]struct{})
	f, ok := folderByID[folderID]
	if !ok {
		return ancestors
	}

	for steps := 0; f.ParentID != nil && steps < len(folderByID); steps++ {
		parentID := *f.ParentID
		parent, ok := folderByID[parentID]
		if !ok || parentID == folderID {
			break
		}
		if _, seen := ancestors[parentID]; seen {
			break
		}
		ancestors[parentID] = struct{}{}
		f = parent
	}

	return ancestors
}

// AncestorChain returns the ids from the root down to folderID inclusive,
// the order breadcrumbs are rendered in. Empty when folderID is unknown.
func AncestorChain(folderID int64, folderByID map[int64]*models.Folder) []int64 {
	f, ok := folderByID[folderID]
	if !ok {
		return nil
	}

	chain := []int64{folderID}
	seen := map[int64]struct{}{folderID: {}}
	for f.ParentID != nil && len(chain) <= len(folderByID) {
		parent, ok := folderByID[*f.ParentID]
		if !ok {
			break
		}
		if _, dup := seen[parent.ID]; dup {
			break
		}
		seen[parent.ID] = struct{}{}
		chain = append(chain, parent.ID)
		f = parent
	}

	slices.Reverse(chain)
	return chain
}

// DescendantIDs returns rootID and every folder reachable through child links.
// Iterative so arbitrarily deep trees cannot exhaust the stack.
func DescendantIDs(rootID int64, childrenByParent map[int64][]int64) map[int64]struct{} {
	descendants := map[int64]struct{}{rootID: {}}
	stack := []int64{rootID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range childrenByParent[current] {
			if _, seen := descendants[child]; seen {
				continue
			}
			descendants[child] = struct{}{}
			stack = append(stack, child)
		}
	}

	return descendants
}
