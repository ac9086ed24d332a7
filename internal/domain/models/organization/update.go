package organization

// FolderUpdate is the placement of one folder after a move.
type FolderUpdate struct {
	ID        int64  `json:"id"`
	ParentID  *int64 `json:"parentId"`
	SortOrder int    `json:"sortOrder"`
}

// AgentUpdate is the placement of one agent after a move.
type AgentUpdate struct {
	Identifier string `json:"identifier"`
	FolderID   *int64 `json:"folderId"`
	SortOrder  int    `json:"sortOrder"`
}

// UpdateSet is the output of the move engine and the body of a batch request.
type UpdateSet struct {
	Folders []FolderUpdate `json:"folders,omitempty"`
	Agents  []AgentUpdate  `json:"agents,omitempty"`
}

// Len returns the total number of row updates.
func (s *UpdateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Folders) + len(s.Agents)
}

// Empty reports whether the set carries no updates.
func (s *UpdateSet) Empty() bool { return s.Len() == 0 }
