package organization

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
	"agentdeck/internal/domain/repositories"
	"agentdeck/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var editor = models.Viewer{UserID: "user-1", IsAuthenticated: true, CanSeePrivate: true}

func ref(id int64) *int64 { return &id }

// memStore is an in-memory stand-in for the two tables
type memStore struct {
	mu      sync.Mutex
	folders map[int64]models.Folder
	agents  []models.Agent
	nextID  int64

	failFolders map[int64]error  // UpdatePlacement failures by folder id
	failAgents  map[string]error // UpdatePlacement failures by identifier
	writes      int
}

func newMemStore(folders []models.Folder, agents []models.Agent) *memStore {
	s := &memStore{
		folders:     make(map[int64]models.Folder),
		agents:      slices.Clone(agents),
		failFolders: make(map[int64]error),
		failAgents:  make(map[string]error),
	}
	for _, f := range folders {
		s.folders[f.ID] = f
		s.nextID = max(s.nextID, f.ID)
	}
	return s
}

func (s *memStore) folder(id int64) models.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folders[id]
}

func (s *memStore) agent(identifier string) models.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.agentIndex(identifier)
	if i < 0 {
		return models.Agent{}
	}
	return s.agents[i]
}

func (s *memStore) agentIndex(identifier string) int {
	return slices.IndexFunc(s.agents, func(a models.Agent) bool {
		return a.Identifier() == identifier || a.Name == identifier
	})
}

func matchesLifecycle(deletedAt *time.Time, lifecycle models.Lifecycle) bool {
	if lifecycle == models.LifecycleRecycleBin {
		return deletedAt != nil
	}
	return deletedAt == nil
}

func notFound(kind string, key any) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("%s %v: not found", kind, key)}
}

type memFolderRepo struct{ s *memStore }

func (r memFolderRepo) Create(_ context.Context, folder *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	folder.ID = r.s.nextID
	r.s.folders[folder.ID] = *folder
	r.s.writes++
	return nil
}

func (r memFolderRepo) GetByID(_ context.Context, id int64) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.folders[id]
	if !ok {
		return nil, notFound("folder", id)
	}
	return &f, nil
}

func (r memFolderRepo) List(_ context.Context, lifecycle models.Lifecycle) ([]models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Folder
	for _, f := range r.s.folders {
		if matchesLifecycle(f.DeletedAt, lifecycle) {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b models.Folder) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r memFolderRepo) ListChildren(_ context.Context, parentID *int64) ([]models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Folder
	for _, f := range r.s.folders {
		if f.DeletedAt == nil && models.KeyOf(f.ParentID) == models.KeyOf(parentID) {
			out = append(out, f)
		}
	}
	SortFolders(out)
	return out, nil
}

func (r memFolderRepo) Rename(_ context.Context, id int64, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.folders[id]
	if !ok || f.DeletedAt != nil {
		return notFound("folder", id)
	}
	f.Name = name
	r.s.folders[id] = f
	r.s.writes++
	return nil
}

func (r memFolderRepo) UpdatePlacement(_ context.Context, id int64, parentID *int64, sortOrder int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failFolders[id]; err != nil {
		return err
	}
	f, ok := r.s.folders[id]
	if !ok || f.DeletedAt != nil {
		return notFound("folder", id)
	}
	f.ParentID = cloneRef(parentID)
	f.SortOrder = sortOrder
	r.s.folders[id] = f
	r.s.writes++
	return nil
}

func (r memFolderRepo) SetDeletedAt(_ context.Context, ids []int64, deletedAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		f := r.s.folders[id]
		f.DeletedAt = deletedAt
		r.s.folders[id] = f
	}
	return nil
}

func (r memFolderRepo) Reparent(_ context.Context, ids []int64, parentID *int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		f := r.s.folders[id]
		f.ParentID = cloneRef(parentID)
		r.s.folders[id] = f
	}
	return nil
}

type memAgentRepo struct{ s *memStore }

func (r memAgentRepo) Create(_ context.Context, agent *models.Agent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.agents = append(r.s.agents, *agent)
	return nil
}

func (r memAgentRepo) GetByIdentifier(_ context.Context, identifier string) (*models.Agent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.agentIndex(identifier)
	if i < 0 {
		return nil, notFound("agent", identifier)
	}
	a := r.s.agents[i]
	return &a, nil
}

func (r memAgentRepo) List(_ context.Context, lifecycle models.Lifecycle) ([]models.Agent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Agent
	for _, a := range r.s.agents {
		if matchesLifecycle(a.DeletedAt, lifecycle) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memAgentRepo) UpdatePlacement(_ context.Context, identifier string, folderID *int64, sortOrder int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failAgents[identifier]; err != nil {
		return err
	}
	i := r.s.agentIndex(identifier)
	if i < 0 || r.s.agents[i].DeletedAt != nil {
		return notFound("agent", identifier)
	}
	r.s.agents[i].FolderID = cloneRef(folderID)
	r.s.agents[i].SortOrder = sortOrder
	r.s.writes++
	return nil
}

func (r memAgentRepo) SetDeletedAtByIdentifier(_ context.Context, identifier string, deletedAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.agentIndex(identifier)
	if i < 0 {
		return notFound("agent", identifier)
	}
	r.s.agents[i].DeletedAt = deletedAt
	return nil
}

func (r memAgentRepo) TrashInFolders(_ context.Context, folderIDs []int64, deletedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, a := range r.s.agents {
		if a.DeletedAt == nil && a.FolderID != nil && slices.Contains(folderIDs, *a.FolderID) {
			stamp := deletedAt
			r.s.agents[i].DeletedAt = &stamp
		}
	}
	return nil
}

func (r memAgentRepo) RestoreInFolders(_ context.Context, folderIDs []int64, deletedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, a := range r.s.agents {
		if a.DeletedAt != nil && a.DeletedAt.Equal(deletedAt) && a.FolderID != nil && slices.Contains(folderIDs, *a.FolderID) {
			r.s.agents[i].DeletedAt = nil
		}
	}
	return nil
}

// memTxManager snapshots the store and restores it when fn fails
type memTxManager struct{ s *memStore }

func (m memTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.s.mu.Lock()
	folders := make(map[int64]models.Folder, len(m.s.folders))
	for id, f := range m.s.folders {
		folders[id] = f
	}
	agents := slices.Clone(m.s.agents)
	m.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.s.mu.Lock()
		m.s.folders = folders
		m.s.agents = agents
		m.s.mu.Unlock()
		return err
	}
	return nil
}

// recordingPublisher keeps every published change
type recordingPublisher struct {
	mu      sync.Mutex
	changes []events.Change
}

func (p *recordingPublisher) Publish(_ context.Context, change events.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, c := range p.changes {
		out = append(out, c.Type)
	}
	return out
}

type fixture struct {
	store     *memStore
	folders   memFolderRepo
	agents    memAgentRepo
	tx        memTxManager
	publisher *recordingPublisher
}

func newFixture(folders []models.Folder, agents []models.Agent) *fixture {
	s := newMemStore(folders, agents)
	return &fixture{
		store:     s,
		folders:   memFolderRepo{s},
		agents:    memAgentRepo{s},
		tx:        memTxManager{s},
		publisher: &recordingPublisher{},
	}
}

func folder(id int64, name string, parent *int64, sortOrder int) models.Folder {
	return models.Folder{ID: id, Name: name, ParentID: parent, SortOrder: sortOrder}
}

func agent(name string, folderID *int64, sortOrder int, visibility models.Visibility) models.Agent {
	return models.Agent{Name: name, FolderID: folderID, SortOrder: sortOrder, Visibility: visibility}
}
