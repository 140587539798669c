package collections

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

type fakeProvider struct {
	domain.Provider
	files map[string][]byte
	reads int
}

func (f *fakeProvider) ReadFile(_ context.Context, path string) ([]byte, error) {
	f.reads++
	b, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	return b, nil
}

type fakeCache struct {
	domain.Cache
	data map[string][]byte
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) { return f.data[key], nil }

func (f *fakeCache) Set(_ context.Context, key string, val []byte, _ int) error {
	f.data[key] = val
	return nil
}

func get(h *Handler, name string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/"+name, nil)
	req.SetPathValue("name", name)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	return rec
}

func TestList_Passthrough(t *testing.T) {
	raw := []byte(`[{"id":"p1","name":"Banarasi"}]`)
	fp := &fakeProvider{files: map[string][]byte{"data/products.json": raw}}
	h := &Handler{Log: log.New(io.Discard, "", 0), Provider: fp}

	rec := get(h, "products")
	require.Equal(t, http.StatusOK, rec.Code)
	// байты снапшота отдаются как есть, без конверта
	assert.Equal(t, raw, rec.Body.Bytes())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestList_MissingFileIsEmptyArray(t *testing.T) {
	fp := &fakeProvider{files: map[string][]byte{}}
	h := &Handler{Log: log.New(io.Discard, "", 0), Provider: fp}

	rec := get(h, "gallery")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestList_UnknownCollection(t *testing.T) {
	h := &Handler{Log: log.New(io.Discard, "", 0), Provider: &fakeProvider{}}

	for _, name := range []string{"users", "content", "ghosts"} {
		rec := get(h, name)
		assert.Equal(t, http.StatusNotFound, rec.Code, "collection %s", name)
	}
}

func TestList_CacheHitSkipsProvider(t *testing.T) {
	raw := []byte(`[{"id":"p1"}]`)
	fp := &fakeProvider{files: map[string][]byte{"data/products.json": raw}}
	cache := &fakeCache{data: make(map[string][]byte)}
	h := &Handler{Log: log.New(io.Discard, "", 0), Provider: fp, Cache: cache, CacheTTL: 60}

	rec := get(h, "products")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, fp.reads)

	rec = get(h, "products")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, raw, rec.Body.Bytes())
	// второй запрос обслужен из кеша
	assert.Equal(t, 1, fp.reads)
}
