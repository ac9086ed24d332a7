package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
	orgSvc "agentdeck/internal/domain/services/organization"
	"agentdeck/internal/httputil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var editor = models.Viewer{UserID: "user-1", IsAuthenticated: true, CanSeePrivate: true}

type stubBatch struct {
	calls int
	got   *models.UpdateSet
	err   error
}

func (s *stubBatch) Apply(_ context.Context, _ models.Viewer, set *models.UpdateSet) error {
	s.calls++
	s.got = set
	return s.err
}

type stubTree struct {
	viewer    models.Viewer
	lifecycle models.Lifecycle
	address   string
	err       error
}

func (s *stubTree) GetTree(_ context.Context, viewer models.Viewer, lifecycle models.Lifecycle, address string) (*orgSvc.TreeView, error) {
	s.viewer, s.lifecycle, s.address = viewer, lifecycle, address
	if s.err != nil {
		return nil, s.err
	}
	return &orgSvc.TreeView{Tree: &models.Tree{}}, nil
}

func (s *stubTree) GetItems(_ context.Context, viewer models.Viewer, lifecycle models.Lifecycle) (*models.Items, error) {
	s.viewer, s.lifecycle = viewer, lifecycle
	return &models.Items{}, s.err
}

type stubMove struct{ err error }

func (s *stubMove) Drop(context.Context, models.Viewer, models.DropRequest) (*models.UpdateSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.UpdateSet{Folders: []models.FolderUpdate{{ID: 1}}}, nil
}

type stubFolders struct{ err error }

func (s *stubFolders) CreateFolder(_ context.Context, _ models.Viewer, req *orgSvc.CreateFolderRequest) (*models.Folder, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Folder{ID: 9, Name: req.Name, ParentID: req.ParentID}, nil
}

func (s *stubFolders) RenameFolder(_ context.Context, _ models.Viewer, id int64, req *orgSvc.RenameFolderRequest) (*models.Folder, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Folder{ID: id, Name: req.Name}, nil
}

type stubRecycleBin struct {
	folderID   int64
	identifier string
	err        error
}

func (s *stubRecycleBin) TrashFolder(_ context.Context, _ models.Viewer, id int64) error {
	s.folderID = id
	return s.err
}

func (s *stubRecycleBin) RestoreFolder(_ context.Context, _ models.Viewer, id int64) error {
	s.folderID = id
	return s.err
}

func (s *stubRecycleBin) TrashAgent(_ context.Context, _ models.Viewer, identifier string) error {
	s.identifier = identifier
	return s.err
}

func (s *stubRecycleBin) RestoreAgent(_ context.Context, _ models.Viewer, identifier string) error {
	s.identifier = identifier
	return s.err
}

type server struct {
	mux     *http.ServeMux
	batch   *stubBatch
	tree    *stubTree
	move    *stubMove
	folders *stubFolders
	bin     *stubRecycleBin
}

func newServer() *server {
	s := &server{
		mux:     http.NewServeMux(),
		batch:   &stubBatch{},
		tree:    &stubTree{},
		move:    &stubMove{},
		folders: &stubFolders{},
		bin:     &stubRecycleBin{},
	}
	RegisterRoutes(s.mux,
		NewOrganizationHandler(s.tree, s.move, s.folders, s.bin, discard),
		NewBatchHandler(s.batch, discard),
	)
	return s
}

func (s *server) do(method, target, body string, viewer *models.Viewer) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, reader)
	if viewer != nil {
		r = httputil.WithViewer(r, *viewer)
	}
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, r)
	return w
}

func decodeBatch(t *testing.T, w *httptest.ResponseRecorder) BatchResponse {
	t.Helper()
	var resp BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBatch_Success(t *testing.T) {
	s := newServer()

	w := s.do(http.MethodPost, "/api/organization/batch",
		`{"folders":[{"id":2,"parentId":null,"sortOrder":0}],"agents":[{"identifier":"bot","folderId":2,"sortOrder":1}]}`, &editor)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	require.NotNil(t, s.batch.got)
	assert.Nil(t, s.batch.got.Folders[0].ParentID)
	assert.Equal(t, int64(2), *s.batch.got.Agents[0].FolderID)
	assert.Equal(t, 1, s.batch.got.Agents[0].SortOrder)
}

func TestBatch_UnauthorizedBeforeBodyIsRead(t *testing.T) {
	s := newServer()

	w := s.do(http.MethodPost, "/api/organization/batch", `not even json`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decodeBatch(t, w).Success)
	assert.Zero(t, s.batch.calls)
}

func TestBatch_MalformedPayloads(t *testing.T) {
	bodies := map[string]string{
		"not json":          `{"folders":`,
		"array":             `[{"id":1}]`,
		"unknown field":     `{"folders":[],"widgets":[]}`,
		"wrong type":        `{"folders":[{"id":"one","parentId":null,"sortOrder":0}]}`,
		"missing parentId":  `{"folders":[{"id":1,"sortOrder":0}]}`,
		"missing sortOrder": `{"agents":[{"identifier":"a","folderId":null}]}`,
		"folders not array": `{"folders":{"id":1}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			s := newServer()

			w := s.do(http.MethodPost, "/api/organization/batch", body, &editor)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeBatch(t, w)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
			assert.Zero(t, s.batch.calls)
		})
	}
}

func TestBatch_CycleIsBadRequest(t *testing.T) {
	s := newServer()
	s.batch.err = &domain.ValidationError{Message: "invalid batch: folder 1 would be placed inside its own subtree"}

	w := s.do(http.MethodPost, "/api/organization/batch", `{"folders":[{"id":1,"parentId":2,"sortOrder":0}]}`, &editor)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, BatchResponse{Success: false, Error: "invalid batch: folder 1 would be placed inside its own subtree"}, decodeBatch(t, w))
	require.NotNil(t, s.batch.got)
	assert.Equal(t, int64(2), *s.batch.got.Folders[0].ParentID)
}

func TestBatch_ReplayForwardsSameSet(t *testing.T) {
	s := newServer()
	body := `{"folders":[{"id":2,"parentId":null,"sortOrder":0},{"id":1,"parentId":null,"sortOrder":1}]}`

	first := s.do(http.MethodPost, "/api/organization/batch", body, &editor)
	firstSet := s.batch.got
	second := s.do(http.MethodPost, "/api/organization/batch", body, &editor)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 2, s.batch.calls)
	assert.Equal(t, firstSet, s.batch.got)
}

func TestBatch_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &domain.ValidationError{Message: "bad"}, http.StatusBadRequest},
		{"partial write", &domain.PartialWriteError{Failed: 1, Total: 2, Err: &domain.NotFoundError{Message: "agent ghost: not found"}}, http.StatusInternalServerError},
		{"storage", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer()
			s.batch.err = tt.err

			w := s.do(http.MethodPost, "/api/organization/batch", `{"folders":[{"id":1,"parentId":null,"sortOrder":0}]}`, &editor)

			assert.Equal(t, tt.want, w.Code)
			resp := decodeBatch(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.err.Error(), resp.Error)
		})
	}
}

func TestGetTree(t *testing.T) {
	s := newServer()

	w := s.do(http.MethodGet, "/api/organization/tree?view=recycle_bin&folder=Sales%2520Team%2FEMEA", "", &editor)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.LifecycleRecycleBin, s.tree.lifecycle)
	assert.Equal(t, "Sales%20Team/EMEA", s.tree.address)
	assert.Equal(t, editor, s.tree.viewer)
}

func TestGetTree_Errors(t *testing.T) {
	s := newServer()

	w := s.do(http.MethodGet, "/api/organization/tree?view=archive", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.tree.err = &domain.NotFoundError{Message: "folder not found: x"}
	w = s.do(http.MethodGet, "/api/organization/tree?folder=x", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	s.tree.err = &domain.UnauthorizedError{Message: "authentication required"}
	w = s.do(http.MethodGet, "/api/organization/items?view=recycle_bin", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, models.Anonymous, s.tree.viewer)
}

func TestMove(t *testing.T) {
	s := newServer()
	body := `{"dragged":{"kind":"folder","folderId":2},"target":{"kind":"root"},"intent":"inside"}`

	w := s.do(http.MethodPost, "/api/organization/move", body, &editor)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"folders":[{"id":1,"parentId":null,"sortOrder":0}]}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/organization/move", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.move.err = &domain.ValidationError{Message: "cannot move folder 1 into its descendant 2"}
	w = s.do(http.MethodPost, "/api/organization/move", body, &editor)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateFolder(t *testing.T) {
	s := newServer()

	w := s.do(http.MethodPost, "/api/organization/folders", `{"name":"Ops","parentId":3}`, &editor)
	assert.Equal(t, http.StatusCreated, w.Code)

	var folder models.Folder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &folder))
	assert.Equal(t, "Ops", folder.Name)

	s.folders.err = &domain.ConflictError{Message: "exists", ResourceType: "folder", ResourceID: "4"}
	w = s.do(http.MethodPost, "/api/organization/folders", `{"name":"Ops"}`, &editor)
	assert.Equal(t, http.StatusConflict, w.Code)
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, "4", problem["resource_id"])
}

func TestRenameFolder(t *testing.T) {
	s := newServer()

	w := s.do(http.MethodPatch, "/api/organization/folders/12", `{"name":"New"}`, &editor)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPatch, "/api/organization/folders/abc", `{"name":"New"}`, &editor)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecycleBinRoutes(t *testing.T) {
	s := newServer()

	w := s.do(http.MethodPost, "/api/organization/folders/7/trash", "", &editor)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(7), s.bin.folderID)

	w = s.do(http.MethodPost, "/api/organization/agents/my-bot/restore", "", &editor)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "my-bot", s.bin.identifier)

	s.bin.err = &domain.NotFoundError{Message: "folder 8: not found"}
	w = s.do(http.MethodPost, "/api/organization/folders/8/restore", "", &editor)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthCheck(t *testing.T) {
	s := newServer()

	w := s.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
