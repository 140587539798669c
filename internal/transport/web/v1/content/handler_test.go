package content

import (
	"context"
	"encoding/json"
	"fmt"
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

type fakeProvider struct {
	domain.Provider
	files    map[string][]byte
	messages []string
}

func (f *fakeProvider) ReadFile(_ context.Context, path string) ([]byte, error) {
	b, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	return b, nil
}

func (f *fakeProvider) WriteFile(_ context.Context, path string, content []byte, message string) error {
	f.files[path] = content
	f.messages = append(f.messages, message)
	return nil
}

func newHandler(files map[string][]byte) (*Handler, *fakeProvider) {
	if files == nil {
		files = make(map[string][]byte)
	}
	fp := &fakeProvider{files: files}
	return &Handler{Log: log.New(io.Discard, "", 0), Provider: fp}, fp
}

func TestGet_MissingDocIsEmpty(t *testing.T) {
	h, _ := newHandler(nil)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/content", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env domain.APIEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, map[string]any{}, env.Data)
}

func TestPut_OverlayAndCommit(t *testing.T) {
	h, fp := newHandler(map[string][]byte{
		"data/content.json": []byte(`{"aboutText":"old","phone":"111"}`),
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/content",
		strings.NewReader(`{"aboutText":"new","instagram":"@shreeadvaya"}`))
	req = req.WithContext(domain.WithUser(req.Context(), domain.AuthUser{Username: "priya", Role: domain.RoleEditor}))
	rec := httptest.NewRecorder()
	h.Put(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var saved map[string]any
	require.NoError(t, json.Unmarshal(fp.files["data/content.json"], &saved))
	assert.Equal(t, "new", saved["aboutText"])
	assert.Equal(t, "111", saved["phone"]) // незатронутое поле сохранено
	assert.Equal(t, "@shreeadvaya", saved["instagram"])

	require.Len(t, fp.messages, 1)
	assert.Contains(t, fp.messages[0], "priya")
}

func TestPut_RequiresUser(t *testing.T) {
	h, _ := newHandler(nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/content", strings.NewReader(`{"a":1}`))
	rec := httptest.NewRecorder()
	h.Put(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPut_EmptyPatch(t *testing.T) {
	h, _ := newHandler(nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/content", strings.NewReader(`{}`))
	req = req.WithContext(domain.WithUser(req.Context(), domain.AuthUser{Username: "priya", Role: domain.RoleEditor}))
	rec := httptest.NewRecorder()
	h.Put(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
