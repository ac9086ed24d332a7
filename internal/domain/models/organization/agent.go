package organization

import (
	"time"

	"github.com/google/uuid"
)

// Visibility controls who can see an agent.
type Visibility string

const (
	VisibilityPublic   Visibility = "PUBLIC"
	VisibilityPrivate  Visibility = "PRIVATE"
	VisibilityUnlisted Visibility = "UNLISTED"
)

// Visibilities lists every valid visibility value.
var Visibilities = []interface{}{VisibilityPublic, VisibilityPrivate, VisibilityUnlisted}

type Agent struct {
	ID         *uuid.UUID `json:"id,omitempty" db:"id"` // permanent id; nil for name-addressed agents
	Name       string     `json:"name" db:"name"`
	FolderID   *int64     `json:"folderId" db:"folder_id"` // NULL = root level
	SortOrder  int        `json:"sortOrder" db:"sort_order"`
	Visibility Visibility `json:"visibility" db:"visibility"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}

// Identifier is the stable external key: the permanent id when present,
// otherwise the human-chosen name.
func (a *Agent) Identifier() string {
	if a.ID != nil {
		return a.ID.String()
	}
	return a.Name
}

// Label is the display label used to break sortOrder ties.
func (a *Agent) Label() string { return a.Name }

// FolderKey returns the folder id, or RootID for root-level agents.
func (a *Agent) FolderKey() int64 {
	return KeyOf(a.FolderID)
}
