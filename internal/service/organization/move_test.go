package organization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentdeck/internal/config"
	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
)

func newMove(f *fixture) *moveService {
	batch := NewBatchService(f.folders, f.agents, f.tx, f.publisher, config.BatchModeBestEffort, 2, testLogger())
	return NewMoveService(f.folders, f.agents, batch, testLogger()).(*moveService)
}

func TestDrop_PersistsPlannedSet(t *testing.T) {
	f := newFixture(
		[]models.Folder{folder(1, "A", nil, 0), folder(2, "B", ref(1), 0)},
		nil,
	)
	svc := newMove(f)

	set, err := svc.Drop(context.Background(), editor, models.DropRequest{
		Dragged: models.ItemRef{Kind: models.KindFolder, FolderID: 2},
		Target:  models.ItemRef{Kind: models.KindRoot},
		Intent:  models.DropInside,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, set.Len())
	assert.Nil(t, f.store.folder(2).ParentID)
	assert.Equal(t, 1, f.store.folder(2).SortOrder)
	assert.Nil(t, f.store.folder(1).ParentID)
}

func TestDrop_CycleIssuesNoWrites(t *testing.T) {
	f := newFixture(
		[]models.Folder{folder(1, "P", nil, 0), folder(2, "Q", ref(1), 0)},
		nil,
	)
	svc := newMove(f)

	_, err := svc.Drop(context.Background(), editor, models.DropRequest{
		Dragged: models.ItemRef{Kind: models.KindFolder, FolderID: 1},
		Target:  models.ItemRef{Kind: models.KindFolder, FolderID: 2},
		Intent:  models.DropInside,
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, f.store.writes)
}

func TestDrop_RequiresAuthentication(t *testing.T) {
	f := newFixture([]models.Folder{folder(1, "A", nil, 0)}, nil)
	svc := newMove(f)

	_, err := svc.Drop(context.Background(), models.Anonymous, models.DropRequest{
		Dragged: models.ItemRef{Kind: models.KindFolder, FolderID: 1},
		Target:  models.ItemRef{Kind: models.KindRoot},
	})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
