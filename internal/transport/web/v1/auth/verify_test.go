package auth

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

func doVerify(t *testing.T, target string, header string) (*httptest.ResponseRecorder, domain.APIEnvelope) {
	t.Helper()
	h := &HandlerVerify{Log: log.New(io.Discard, "", 0), Tokens: fakeTokens{}}

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	var env domain.APIEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestVerify_ValidToken(t *testing.T) {
	rec, env := doVerify(t, "/api/v1/auth/verify", "Bearer issued-token")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := env.Response.(map[string]any)
	assert.Equal(t, true, resp["valid"])
	assert.Equal(t, "admin", resp["user"].(map[string]any)["username"])
}

func TestVerify_InvalidTokenStill200(t *testing.T) {
	rec, env := doVerify(t, "/api/v1/auth/verify", "Bearer garbage")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := env.Response.(map[string]any)
	assert.Equal(t, false, resp["valid"])
	assert.Equal(t, string(domain.TokenReasonMalformed), resp["reason"])
}

func TestVerify_TokenInQuery(t *testing.T) {
	rec, env := doVerify(t, "/api/v1/auth/verify?token=issued-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, env.Response.(map[string]any)["valid"])
}

func TestVerify_MissingToken(t *testing.T) {
	rec, _ := doVerify(t, "/api/v1/auth/verify", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
