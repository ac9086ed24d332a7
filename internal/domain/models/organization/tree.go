package organization

// Tree is the nested, presentation-ready organization tree
type Tree struct {
	Folders []*FolderNode `json:"folders"`
	Agents  []AgentNode   `json:"agents"`
}

// FolderNode represents a folder with nested children
type FolderNode struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	ParentID  *int64        `json:"parentId"`
	SortOrder int           `json:"sortOrder"`
	Icon      *string       `json:"icon,omitempty"`
	Color     *string       `json:"color,omitempty"`
	Path      string        `json:"path"` // encoded folder address
	Folders   []*FolderNode `json:"folders"`
	Agents    []AgentNode   `json:"agents"`
}

// AgentNode represents an agent leaf in the tree
type AgentNode struct {
	Identifier string     `json:"identifier"`
	Name       string     `json:"name"`
	FolderID   *int64     `json:"folderId"`
	SortOrder  int        `json:"sortOrder"`
	Visibility Visibility `json:"visibility"`
}

// Breadcrumb is one step of the root-to-folder trail
type Breadcrumb struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Items is the flat lifecycle-filtered state a client holds locally
type Items struct {
	Folders []Folder `json:"folders"`
	Agents  []Agent  `json:"agents"`
}
