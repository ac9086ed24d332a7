package organization

// DropIntent classifies a drag-and-drop gesture relative to its target.
type DropIntent string

const (
	DropBefore DropIntent = "before"
	DropInside DropIntent = "inside"
	DropAfter  DropIntent = "after"
)

// ItemKind distinguishes folders from agents in drop requests.
type ItemKind string

const (
	KindFolder ItemKind = "folder"
	KindAgent  ItemKind = "agent"
	KindRoot   ItemKind = "root" // drop target only
)

// ItemRef addresses a folder (by id), an agent (by identifier) or the root.
type ItemRef struct {
	Kind       ItemKind `json:"kind"`
	FolderID   int64    `json:"folderId,omitempty"`
	Identifier string   `json:"identifier,omitempty"`
}

// DropRequest moves Dragged relative to Target with Intent.
type DropRequest struct {
	Dragged ItemRef    `json:"dragged"`
	Target  ItemRef    `json:"target"`
	Intent  DropIntent `json:"intent"`
}
