package organization

import (
	"time"
)

// RootID is the key used for the root level in parent-indexed lookups.
// Storage identity columns start at 1, so no folder ever carries it.
const RootID int64 = 0

type Folder struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	ParentID  *int64     `json:"parentId" db:"parent_id"` // NULL = root level
	SortOrder int        `json:"sortOrder" db:"sort_order"`
	Icon      *string    `json:"icon,omitempty" db:"icon"`
	Color     *string    `json:"color,omitempty" db:"color"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}

// Label is the display label used to break sortOrder ties.
func (f *Folder) Label() string { return f.Name }

// ParentKey returns the parent id, or RootID for root-level folders.
func (f *Folder) ParentKey() int64 {
	return KeyOf(f.ParentID)
}

// KeyOf maps a nullable parent reference to its lookup key.
func KeyOf(id *int64) int64 {
	if id == nil {
		return RootID
	}
	return *id
}

// RefOf is the inverse of KeyOf.
func RefOf(key int64) *int64 {
	if key == RootID {
		return nil
	}
	id := key
	return &id
}
