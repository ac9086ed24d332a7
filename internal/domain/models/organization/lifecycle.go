package organization

import (
	"fmt"
	"strings"
)

// Lifecycle selects active rows or recycle-bin rows.
type Lifecycle string

const (
	LifecycleActive     Lifecycle = "ACTIVE"
	LifecycleRecycleBin Lifecycle = "RECYCLE_BIN"
)

// ParseLifecycle accepts the query-parameter spelling ("active", "recycle_bin")
// as well as the canonical one. Empty means active.
func ParseLifecycle(s string) (Lifecycle, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(LifecycleActive):
		return LifecycleActive, nil
	case string(LifecycleRecycleBin):
		return LifecycleRecycleBin, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// Viewer is the current-viewer context supplied by the auth layer.
type Viewer struct {
	UserID          string
	IsAuthenticated bool
	CanSeePrivate   bool
}

// Anonymous is the viewer used when no valid session is present.
var Anonymous = Viewer{}
