package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiridharSalana/ShreeAdvaya/internal/accounts"
	"github.com/GiridharSalana/ShreeAdvaya/internal/auth/vault"
	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

// gitFake — git-провайдер в памяти: файлы на вершине ветки плюс
// blob/tree/commit-примитивы с собственными sha.
type gitFake struct {
	mu sync.Mutex

	branch string
	files  map[string][]byte

	blobs  map[string][]byte
	trees  map[string][]domain.TreeEntry
	seq    int
	head   string
	treeOf map[string]string // commit sha -> tree sha

	commits       int
	blobsCreated  []string
	failUpdateRef bool
	noDefault     bool
}

func newGitFake(files map[string][]byte) *gitFake {
	if files == nil {
		files = make(map[string][]byte)
	}
	return &gitFake{
		branch: "main",
		files:  files,
		blobs:  make(map[string][]byte),
		trees:  make(map[string][]domain.TreeEntry),
		head:   "commit-0",
		treeOf: map[string]string{"commit-0": "tree-0"},
	}
}

func (g *gitFake) sha(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s-%d", prefix, g.seq)
}

func (g *gitFake) ReadFile(_ context.Context, path string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	return b, nil
}

func (g *gitFake) WriteFile(_ context.Context, path string, content []byte, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.files[path] = content
	g.commits++
	return nil
}

func (g *gitFake) DefaultBranch(_ context.Context) (string, error) {
	if g.noDefault {
		return "", domain.ErrUpstream
	}
	return g.branch, nil
}

func (g *gitFake) GetBranchTip(_ context.Context, branch string) (domain.BranchTip, error) {
	if branch != g.branch {
		return domain.BranchTip{}, domain.ErrNotFound
	}
	return domain.BranchTip{CommitSHA: g.head, TreeSHA: g.treeOf[g.head]}, nil
}

func (g *gitFake) ListTree(_ context.Context, _ string, _ bool) ([]domain.TreeEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entries := []domain.TreeEntry{{Path: "data", Mode: "040000", Type: "tree", SHA: "dir-sha"}}
	for path, content := range g.files {
		sha := g.sha("blob")
		g.blobs[sha] = content
		entries = append(entries, domain.TreeEntry{Path: path, Mode: "100644", Type: "blob", SHA: sha})
	}
	return entries, nil
}

func (g *gitFake) CreateBlob(_ context.Context, content []byte) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sha := g.sha("blob")
	g.blobs[sha] = content
	g.blobsCreated = append(g.blobsCreated, sha)
	return sha, nil
}

func (g *gitFake) CreateTree(_ context.Context, entries []domain.TreeEntry) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range entries {
		if e.Type == "tree" {
			return "", fmt.Errorf("tree entries must be leaves: %w", domain.ErrBadParams)
		}
	}
	sha := g.sha("tree")
	g.trees[sha] = entries
	return sha, nil
}

func (g *gitFake) CreateCommit(_ context.Context, _ string, treeSHA, parentSHA string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if parentSHA != g.head {
		return "", fmt.Errorf("stale parent %s: %w", parentSHA, domain.ErrUpstream)
	}
	sha := g.sha("commit")
	g.treeOf[sha] = treeSHA
	return sha, nil
}

func (g *gitFake) UpdateRef(_ context.Context, branch, commitSHA string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failUpdateRef {
		return fmt.Errorf("ref moved: %w", domain.ErrUpstream)
	}
	if branch != g.branch {
		return domain.ErrNotFound
	}
	// материализуем дерево как новое состояние файлов
	next := make(map[string][]byte)
	for _, e := range g.trees[g.treeOf[commitSHA]] {
		next[e.Path] = g.blobs[e.SHA]
	}
	g.files = next
	g.head = commitSHA
	g.commits++
	return nil
}

func (g *gitFake) Ping(_ context.Context) error { return nil }

var _ domain.Provider = (*gitFake)(nil)

func newTestOrchestrator(t *testing.T, g *gitFake) *Orchestrator {
	t.Helper()
	cv, err := vault.New("test-master-secret", log.New(io.Discard, "", 0))
	require.NoError(t, err)
	store, err := accounts.New(g, cv, log.New(io.Discard, "", 0), "", "bootstrap-pass")
	require.NoError(t, err)
	return New(g, store, cv, log.New(io.Discard, "", 0), "")
}

var actor = domain.AuthUser{Username: "priya", Role: domain.RoleEditor}

func TestCommit_UnknownCollection(t *testing.T) {
	g := newGitFake(nil)
	o := newTestOrchestrator(t, g)

	_, err := o.Commit(context.Background(), map[string]domain.ChangeSet{
		"secrets": {Delete: []string{"x"}},
	}, actor)
	assert.ErrorIs(t, err, domain.ErrBadParams)
	assert.Zero(t, g.commits)
}

func TestCommit_EmptyBatch(t *testing.T) {
	g := newGitFake(nil)
	o := newTestOrchestrator(t, g)

	res, err := o.Commit(context.Background(), map[string]domain.ChangeSet{
		"products": {},
	}, actor)
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.Zero(t, g.commits)
}

func TestCommit_NothingToCommit(t *testing.T) {
	raw, _ := json.Marshal([]domain.Item{{"id": "p1"}})
	g := newGitFake(map[string][]byte{"data/products.json": raw})
	o := newTestOrchestrator(t, g)

	// все операции выпали в skip — записей у провайдера ноль
	res, err := o.Commit(context.Background(), map[string]domain.ChangeSet{
		"products": {Delete: []string{"missing", "temp_draft"}},
	}, actor)
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.Empty(t, res.CommitID)
	assert.Equal(t, 2, res.Results["products"].Skipped)
	assert.Zero(t, g.commits)
}

func TestCommit_MultiCollectionSingleCommit(t *testing.T) {
	productsRaw, _ := json.Marshal([]domain.Item{{"id": "p1", "name": "old"}})
	contentRaw := []byte(`{"aboutText":"keep me"}`)
	g := newGitFake(map[string][]byte{
		"data/products.json": productsRaw,
		"data/content.json":  contentRaw,
		"index.html":         []byte("<html></html>"),
	})
	o := newTestOrchestrator(t, g)

	res, err := o.Commit(context.Background(), map[string]domain.ChangeSet{
		"products": {Update: []domain.Patch{{ID: "p1", Fields: map[string]any{"name": "new"}}}},
		"gallery":  {Create: []domain.Item{{"image": "saree.jpg"}}},
	}, actor)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.NotEmpty(t, res.CommitID)
	assert.Equal(t, 1, res.Results["products"].Updated)
	assert.Equal(t, 1, res.Results["gallery"].Created)

	// ровно один коммит, ровно два новых blob (изменённые файлы)
	assert.Equal(t, 1, g.commits)
	assert.Len(t, g.blobsCreated, 2)

	// оба файла в новой вершине, незатронутые не потеряны
	var products []domain.Item
	require.NoError(t, json.Unmarshal(g.files["data/products.json"], &products))
	assert.Equal(t, "new", products[0]["name"])

	var gallery []domain.Item
	require.NoError(t, json.Unmarshal(g.files["data/gallery.json"], &gallery))
	require.Len(t, gallery, 1)

	assert.Equal(t, contentRaw, g.files["data/content.json"])
	assert.Equal(t, []byte("<html></html>"), g.files["index.html"])
}

func TestCommit_ReplayDuplicatesCreates(t *testing.T) {
	productsRaw, _ := json.Marshal([]domain.Item{{"id": "p1", "name": "old"}, {"id": "p2"}})
	g := newGitFake(map[string][]byte{"data/products.json": productsRaw})
	o := newTestOrchestrator(t, g)

	payload := map[string]domain.ChangeSet{
		"products": {
			Update: []domain.Patch{{ID: "p1", Fields: map[string]any{"name": "new"}}},
			Delete: []string{"p2"},
		},
		"gallery": {Create: []domain.Item{{"image": "saree.jpg"}}},
	}

	first, err := o.Commit(context.Background(), payload, actor)
	require.NoError(t, err)
	require.True(t, first.Committed)

	// повтор того же батча: апдейты по id идемпотентны,
	// повторный delete выпадает в skip
	second, err := o.Commit(context.Background(), payload, actor)
	require.NoError(t, err)
	require.True(t, second.Committed)
	assert.NotEqual(t, first.CommitID, second.CommitID)
	assert.Equal(t, 1, second.Results["products"].Updated)
	assert.Equal(t, 1, second.Results["products"].Skipped)

	var products []domain.Item
	require.NoError(t, json.Unmarshal(g.files["data/products.json"], &products))
	require.Len(t, products, 1)
	assert.Equal(t, "new", products[0]["name"])

	// create не идемпотентен: сервер выдаёт свежий id, элемент дублируется
	var gallery []domain.Item
	require.NoError(t, json.Unmarshal(g.files["data/gallery.json"], &gallery))
	require.Len(t, gallery, 2)
	assert.NotEqual(t, gallery[0]["id"], gallery[1]["id"])
}

func TestCommit_PartiallyNoop(t *testing.T) {
	productsRaw, _ := json.Marshal([]domain.Item{{"id": "p1"}})
	g := newGitFake(map[string][]byte{"data/products.json": productsRaw})
	o := newTestOrchestrator(t, g)

	// products не меняется, gallery меняется: в коммит попадает один файл
	res, err := o.Commit(context.Background(), map[string]domain.ChangeSet{
		"products": {Delete: []string{"missing"}},
		"gallery":  {Create: []domain.Item{{"image": "saree.jpg"}}},
	}, actor)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Len(t, g.blobsCreated, 1)
}

func TestCommit_UpdateRefFailure(t *testing.T) {
	g := newGitFake(nil)
	g.failUpdateRef = true
	o := newTestOrchestrator(t, g)

	oldHead := g.head
	_, err := o.Commit(context.Background(), map[string]domain.ChangeSet{
		"gallery": {Create: []domain.Item{{"image": "saree.jpg"}}},
	}, actor)
	require.Error(t, err)
	// прежняя вершина остаётся авторитетной
	assert.Equal(t, oldHead, g.head)
	assert.Zero(t, g.commits)
}

func TestCommit_UsersCollection(t *testing.T) {
	g := newGitFake(nil)
	o := newTestOrchestrator(t, g)

	res, err := o.Commit(context.Background(), map[string]domain.ChangeSet{
		"users": {Create: []domain.Item{
			{"username": "meera", "password": "strongpass1", "role": "viewer"},
		}},
	}, domain.AuthUser{Username: "admin", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, 1, res.Results["users"].Created)

	var saved []domain.Account
	require.NoError(t, json.Unmarshal(g.files["data/users.json"], &saved))
	require.Len(t, saved, 2)
	// инвариант дефолтной учётки держится и через батч
	assert.Equal(t, domain.DefaultUsername, saved[0].Username)
	assert.True(t, saved[0].IsDefault)
	assert.Equal(t, "meera", saved[1].Username)
}

func TestResolveBranch_Probing(t *testing.T) {
	g := newGitFake(nil)
	g.noDefault = true
	g.branch = "master"
	o := newTestOrchestrator(t, g)

	res, err := o.Commit(context.Background(), map[string]domain.ChangeSet{
		"gallery": {Create: []domain.Item{{"image": "saree.jpg"}}},
	}, actor)
	require.NoError(t, err)
	assert.True(t, res.Committed)
}
