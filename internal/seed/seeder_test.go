package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "agentdeck/internal/domain/models/organization"
	"agentdeck/internal/domain/repositories"
)

// store is a minimal in-memory backing for both repositories
type store struct {
	folders []models.Folder
	agents  []models.Agent
	nextID  int64
}

type folderRepo struct{ s *store }

func (r folderRepo) Create(_ context.Context, f *models.Folder) error {
	r.s.nextID++
	f.ID = r.s.nextID
	r.s.folders = append(r.s.folders, *f)
	return nil
}

func (r folderRepo) GetByID(_ context.Context, id int64) (*models.Folder, error) {
	for i := range r.s.folders {
		if r.s.folders[i].ID == id {
			f := r.s.folders[i]
			return &f, nil
		}
	}
	return nil, errors.New("not found")
}

func (r folderRepo) List(_ context.Context, lifecycle models.Lifecycle) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.s.folders {
		if (f.DeletedAt == nil) == (lifecycle == models.LifecycleActive) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r folderRepo) ListChildren(context.Context, *int64) ([]models.Folder, error) { return nil, nil }
func (r folderRepo) Rename(context.Context, int64, string) error                   { return nil }
func (r folderRepo) UpdatePlacement(context.Context, int64, *int64, int) error     { return nil }
func (r folderRepo) Reparent(context.Context, []int64, *int64) error               { return nil }

func (r folderRepo) SetDeletedAt(_ context.Context, ids []int64, deletedAt *time.Time) error {
	for _, id := range ids {
		for i := range r.s.folders {
			if r.s.folders[i].ID == id {
				r.s.folders[i].DeletedAt = deletedAt
			}
		}
	}
	return nil
}

type agentRepo struct{ s *store }

func (r agentRepo) Create(_ context.Context, a *models.Agent) error {
	for _, existing := range r.s.agents {
		if existing.Name == a.Name {
			return errors.New("duplicate agent")
		}
	}
	r.s.agents = append(r.s.agents, *a)
	return nil
}

func (r agentRepo) GetByIdentifier(context.Context, string) (*models.Agent, error) { return nil, nil }
func (r agentRepo) List(context.Context, models.Lifecycle) ([]models.Agent, error) { return nil, nil }
func (r agentRepo) UpdatePlacement(context.Context, string, *int64, int) error    { return nil }
func (r agentRepo) RestoreInFolders(context.Context, []int64, time.Time) error    { return nil }

func (r agentRepo) SetDeletedAtByIdentifier(_ context.Context, identifier string, deletedAt *time.Time) error {
	for i := range r.s.agents {
		if r.s.agents[i].Identifier() == identifier {
			r.s.agents[i].DeletedAt = deletedAt
		}
	}
	return nil
}

func (r agentRepo) TrashInFolders(_ context.Context, folderIDs []int64, deletedAt time.Time) error {
	for _, id := range folderIDs {
		for i := range r.s.agents {
			if r.s.agents[i].FolderKey() == id && r.s.agents[i].DeletedAt == nil {
				stamp := deletedAt
				r.s.agents[i].DeletedAt = &stamp
			}
		}
	}
	return nil
}

type directTx struct{}

func (directTx) ExecTx(ctx context.Context, fn repositories.TxFn) error { return fn(ctx) }

func newSeeder(s *store) *Seeder {
	seeder := NewSeeder(folderRepo{s}, agentRepo{s}, directTx{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	seeder.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6789, time.UTC) }
	return seeder
}

func TestSeed_DefaultFixture(t *testing.T) {
	fixture, err := DefaultFixture()
	require.NoError(t, err)
	s := &store{}

	stats, err := newSeeder(s).Seed(context.Background(), fixture)
	require.NoError(t, err)

	assert.Equal(t, len(s.folders), stats.Folders)
	assert.Equal(t, len(s.agents), stats.Agents)
	assert.Equal(t, 2, stats.Trashed)

	byName := map[string]models.Folder{}
	for _, f := range s.folders {
		byName[f.Name] = f
	}
	assert.Nil(t, byName["Sales & Ops"].ParentID)
	assert.Equal(t, 1, byName["Engineering"].SortOrder)
	assert.Equal(t, byName["Engineering"].ID, models.KeyOf(byName["Old Experiments"].ParentID))
	require.NotNil(t, byName["Old Experiments"].DeletedAt)
	assert.Nil(t, byName["On-call"].DeletedAt)

	for _, a := range s.agents {
		switch a.Name {
		case "flaky-test-hunter":
			require.NotNil(t, a.DeletedAt)
			assert.True(t, a.DeletedAt.Equal(*byName["Old Experiments"].DeletedAt))
		case "scratchpad":
			assert.NotNil(t, a.DeletedAt)
		case "legacy-helper":
			assert.Nil(t, a.ID)
			assert.Nil(t, a.DeletedAt)
		default:
			assert.NotNil(t, a.ID, a.Name)
			assert.Nil(t, a.DeletedAt, a.Name)
		}
	}
}

func TestSeed_TrashedFolderStampsSubtree(t *testing.T) {
	fixture, err := Parse(strings.NewReader(`
folders:
  - name: old
    trashed: true
    folders:
      - name: inner
        agents:
          - name: deep
`))
	require.NoError(t, err)
	s := &store{}

	_, err = newSeeder(s).Seed(context.Background(), fixture)
	require.NoError(t, err)

	require.Len(t, s.folders, 2)
	for _, f := range s.folders {
		require.NotNil(t, f.DeletedAt, f.Name)
		assert.Equal(t, 6000, f.DeletedAt.Nanosecond()%1_000_000)
	}
	require.NotNil(t, s.agents[0].DeletedAt)
}

func TestSeed_PropagatesErrors(t *testing.T) {
	fixture, err := Parse(strings.NewReader("agents:\n  - name: dup\n  - name: dup\n"))
	require.NoError(t, err)

	_, err = newSeeder(&store{}).Seed(context.Background(), fixture)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `seed agent "dup"`)
}
