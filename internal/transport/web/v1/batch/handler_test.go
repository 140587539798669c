package batch

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

type fakeCommitter struct {
	got   map[string]domain.ChangeSet
	actor domain.AuthUser
	res   domain.BatchResult
	err   error
}

func (f *fakeCommitter) Commit(_ context.Context, batch map[string]domain.ChangeSet, actor domain.AuthUser) (domain.BatchResult, error) {
	f.got = batch
	f.actor = actor
	return f.res, f.err
}

type fakeCache struct {
	domain.Cache
	deleted []string
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func newHandler(c *fakeCommitter, cache domain.Cache) *Handler {
	return &Handler{Log: log.New(io.Discard, "", 0), Committer: c, Cache: cache}
}

func submit(h *Handler, body string, user *domain.AuthUser) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch", strings.NewReader(body))
	if user != nil {
		req = req.WithContext(domain.WithUser(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	return rec
}

var editor = domain.AuthUser{Username: "priya", Role: domain.RoleEditor}

func TestSubmit_RequiresUser(t *testing.T) {
	h := newHandler(&fakeCommitter{}, nil)
	rec := submit(h, `{"products":{"delete":["p1"]}}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmit_BadJSON(t *testing.T) {
	h := newHandler(&fakeCommitter{}, nil)
	rec := submit(h, `{oops`, &editor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_EmptyBody(t *testing.T) {
	h := newHandler(&fakeCommitter{}, nil)
	rec := submit(h, `{}`, &editor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_OK(t *testing.T) {
	fc := &fakeCommitter{res: domain.BatchResult{
		Committed: true,
		CommitID:  "abc123",
		Results: map[string]domain.OpResult{
			"products": {Updated: 1},
			"gallery":  {Created: 2},
		},
	}}
	cache := &fakeCache{}
	h := newHandler(fc, cache)

	rec := submit(h, `{"products":{"update":[{"id":"p1","fields":{"name":"x"}}]}}`, &editor)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, editor, fc.actor)
	require.Contains(t, fc.got, "products")

	var env domain.APIEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	resp := env.Response.(map[string]any)
	assert.Equal(t, true, resp["committed"])
	assert.Equal(t, "abc123", resp["commitId"])

	// кеш затронутых коллекций сброшен
	assert.ElementsMatch(t, []string{
		domain.CacheKeyCollection("products"),
		domain.CacheKeyCollection("gallery"),
	}, cache.deleted)
}

func TestSubmit_NothingCommittedKeepsCache(t *testing.T) {
	fc := &fakeCommitter{res: domain.BatchResult{Committed: false}}
	cache := &fakeCache{}
	h := newHandler(fc, cache)

	rec := submit(h, `{"products":{"delete":["missing"]}}`, &editor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, cache.deleted)
}

func TestSubmit_CommitterError(t *testing.T) {
	fc := &fakeCommitter{err: domain.ErrBadParams}
	h := newHandler(fc, nil)

	rec := submit(h, `{"ghosts":{"delete":["x"]}}`, &editor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
