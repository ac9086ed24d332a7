package organization

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	models "agentdeck/internal/domain/models/organization"
)

// Index holds O(1) lookups over one lifecycle's flat folder and agent lists.
// Child lists are in sibling order.
type Index struct {
	FolderByID       map[int64]*models.Folder
	ChildFolderIDs   map[int64][]int64         // keyed by parent id, RootID for root
	AgentsByFolderID map[int64][]*models.Agent // keyed by folder id, RootID for root

	parentOf          map[int64]int64
	agentFolder       map[string]int64
	agentByIdentifier map[string]*models.Agent
}

// BuildIndex indexes the given rows. References to folders that are not in
// the list (missing, other lifecycle, or self) are treated as root.
// The input slices are copied and never modified.
func BuildIndex(folders []models.Folder, agents []models.Agent) *Index {
	idx := &Index{
		FolderByID:        make(map[int64]*models.Folder, len(folders)),
		ChildFolderIDs:    make(map[int64][]int64),
		AgentsByFolderID:  make(map[int64][]*models.Agent),
		parentOf:          make(map[int64]int64, len(folders)),
		agentFolder:       make(map[string]int64, len(agents)),
		agentByIdentifier: make(map[string]*models.Agent, len(agents)),
	}

	for i := range folders {
		f := folders[i]
		idx.FolderByID[f.ID] = &f
	}

	for _, f := range idx.FolderByID {
		parent := f.ParentKey()
		if _, ok := idx.FolderByID[parent]; !ok || parent == f.ID {
			parent = models.RootID
		}
		idx.parentOf[f.ID] = parent
		idx.ChildFolderIDs[parent] = append(idx.ChildFolderIDs[parent], f.ID)
	}

	for i := range agents {
		a := agents[i]
		folder := a.FolderKey()
		if _, ok := idx.FolderByID[folder]; !ok {
			folder = models.RootID
		}
		idx.agentFolder[a.Identifier()] = folder
		idx.agentByIdentifier[a.Identifier()] = &a
		idx.AgentsByFolderID[folder] = append(idx.AgentsByFolderID[folder], &a)
	}

	sorter := newSiblingSorter()
	for parent := range idx.ChildFolderIDs {
		sorter.sortFolderIDs(idx.ChildFolderIDs[parent], idx.FolderByID)
	}
	for folder := range idx.AgentsByFolderID {
		sorter.sortAgents(idx.AgentsByFolderID[folder])
	}

	return idx
}

// ParentOf returns the normalized parent key of a folder.
func (idx *Index) ParentOf(folderID int64) (int64, bool) {
	parent, ok := idx.parentOf[folderID]
	return parent, ok
}

// Agent looks an agent up by identifier.
func (idx *Index) Agent(identifier string) (*models.Agent, bool) {
	a, ok := idx.agentByIdentifier[identifier]
	return a, ok
}

// AgentFolder returns the normalized folder key of an agent.
func (idx *Index) AgentFolder(identifier string) (int64, bool) {
	folder, ok := idx.agentFolder[identifier]
	return folder, ok
}

// HasFolder reports whether key is the root or an indexed folder.
func (idx *Index) HasFolder(key int64) bool {
	if key == models.RootID {
		return true
	}
	_, ok := idx.FolderByID[key]
	return ok
}

// siblingFolderIDs returns a copy of the ordered child list of parent.
func (idx *Index) siblingFolderIDs(parent int64) []int64 {
	return slices.Clone(idx.ChildFolderIDs[parent])
}

// siblingAgentIdentifiers returns the ordered identifiers of agents in folder.
func (idx *Index) siblingAgentIdentifiers(folder int64) []string {
	agents := idx.AgentsByFolderID[folder]
	ids := make([]string, len(agents))
	for i, a := range agents {
		ids[i] = a.Identifier()
	}
	return ids
}

// siblingSorter orders siblings by sortOrder, then by case-insensitive
// locale collation of the label, then by id so the order is total.
// A collate.Collator is not safe for concurrent use; create one per goroutine.
type siblingSorter struct {
	collator *collate.Collator
}

func newSiblingSorter() *siblingSorter {
	return &siblingSorter{collator: collate.New(language.Und, collate.IgnoreCase)}
}

func (s *siblingSorter) sortFolderIDs(ids []int64, folderByID map[int64]*models.Folder) {
	slices.SortStableFunc(ids, func(a, b int64) int {
		fa, fb := folderByID[a], folderByID[b]
		if c := cmp.Compare(fa.SortOrder, fb.SortOrder); c != 0 {
			return c
		}
		if c := s.collator.CompareString(fa.Label(), fb.Label()); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}

func (s *siblingSorter) sortAgents(agents []*models.Agent) {
	slices.SortStableFunc(agents, func(a, b *models.Agent) int {
		if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
			return c
		}
		if c := s.collator.CompareString(a.Label(), b.Label()); c != 0 {
			return c
		}
		return cmp.Compare(a.Identifier(), b.Identifier())
	})
}

// SortFolders orders a sibling list of folders in place using the sibling rule.
func SortFolders(folders []models.Folder) {
	s := newSiblingSorter()
	slices.SortStableFunc(folders, func(a, b models.Folder) int {
		if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
			return c
		}
		if c := s.collator.CompareString(a.Label(), b.Label()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
