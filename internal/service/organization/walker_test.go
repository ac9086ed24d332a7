package organization

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	models "agentdeck/internal/domain/models/organization"
)

func uuidFor(s string) uuid.UUID { return uuid.MustParse(s) }

func chainIndex() *Index {
	// 1 > 2 > 3, and 4 at root
	return BuildIndex([]models.Folder{
		folder(1, "a", nil, 0),
		folder(2, "b", ref(1), 0),
		folder(3, "c", ref(2), 0),
		folder(4, "d", nil, 1),
	}, nil)
}

func TestAncestorIDs(t *testing.T) {
	idx := chainIndex()

	tests := []struct {
		name string
		id   int64
		want map[int64]struct{}
	}{
		{"deep", 3, map[int64]struct{}{2: {}, 1: {}}},
		{"root level", 1, map[int64]struct{}{}},
		{"unknown", 99, map[int64]struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AncestorIDs(tt.id, idx.FolderByID))
		})
	}
}

func TestAncestorIDs_TerminatesOnCycle(t *testing.T) {
	byID := map[int64]*models.Folder{
		1: {ID: 1, Name: "a", ParentID: ref(2)},
		2: {ID: 2, Name: "b", ParentID: ref(1)},
	}

	assert.Equal(t, map[int64]struct{}{2: {}}, AncestorIDs(1, byID))
	assert.Equal(t, []int64{2, 1}, AncestorChain(1, byID))
}

func TestAncestorChain(t *testing.T) {
	idx := chainIndex()

	assert.Equal(t, []int64{1, 2, 3}, AncestorChain(3, idx.FolderByID))
	assert.Equal(t, []int64{4}, AncestorChain(4, idx.FolderByID))
	assert.Nil(t, AncestorChain(99, idx.FolderByID))
}

func TestDescendantIDs(t *testing.T) {
	idx := chainIndex()

	assert.Equal(t, map[int64]struct{}{1: {}, 2: {}, 3: {}}, DescendantIDs(1, idx.ChildFolderIDs))
	assert.Equal(t, map[int64]struct{}{4: {}}, DescendantIDs(4, idx.ChildFolderIDs))
}

func TestDescendantIDs_Deep(t *testing.T) {
	const depth = 10000
	children := make(map[int64][]int64, depth)
	for i := int64(1); i < depth; i++ {
		children[i] = []int64{i + 1}
	}

	assert.Len(t, DescendantIDs(1, children), depth)
}
