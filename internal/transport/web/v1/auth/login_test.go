package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

type fakeAccounts struct {
	domain.AccountStore
	password string
}

func (f *fakeAccounts) Authenticate(_ context.Context, username, password string) (domain.AuthUser, bool, error) {
	if username == "admin" && password == f.password {
		return domain.AuthUser{Username: "admin", Role: domain.RoleAdmin}, true, nil
	}
	return domain.AuthUser{}, false, nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(_ context.Context, u domain.AuthUser) (domain.Token, domain.TokenClaims, error) {
	return "issued-token", domain.TokenClaims{Username: u.Username, Role: u.Role}, nil
}

func (fakeTokens) Verify(_ context.Context, raw domain.Token) (domain.TokenClaims, domain.TokenReason, error) {
	if raw != "issued-token" {
		return domain.TokenClaims{}, domain.TokenReasonMalformed, fmt.Errorf("bad token")
	}
	return domain.TokenClaims{Username: "admin", Role: domain.RoleAdmin}, "", nil
}

// fakeCache — счётчики в памяти, достаточно для rate limit
type fakeCache struct {
	domain.Cache
	counters map[string]int64
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	n, ok := f.counters[key]
	if !ok {
		return nil, nil
	}
	return []byte(strconv.FormatInt(n, 10)), nil
}

func (f *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeCache) Expire(_ context.Context, _ string, _ int) error { return nil }

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.counters, k)
	}
	return nil
}

func newLoginHandler(cache domain.Cache) *HandlerLogin {
	return &HandlerLogin{
		Log:      log.New(io.Discard, "", 0),
		Accounts: &fakeAccounts{password: "correct-pass"},
		Tokens:   fakeTokens{},
		Cache:    cache,
	}
}

func doLogin(t *testing.T, h *HandlerLogin, body string) (*httptest.ResponseRecorder, domain.APIEnvelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	var env domain.APIEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestLogin_OK(t *testing.T) {
	h := newLoginHandler(nil)

	rec, env := doLogin(t, h, `{"username":"admin","password":"correct-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, env.Error)

	resp := env.Response.(map[string]any)
	assert.Equal(t, "issued-token", resp["token"])
}

func TestLogin_LegacyEmptyUsername(t *testing.T) {
	h := newLoginHandler(nil)

	// без username логинимся в дефолтную учётку
	rec, _ := doLogin(t, h, `{"password":"correct-pass"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_BadCredentialsUniform(t *testing.T) {
	h := newLoginHandler(nil)

	recWrongPass, envA := doLogin(t, h, `{"username":"admin","password":"nope"}`)
	recNoUser, envB := doLogin(t, h, `{"username":"ghost","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, recWrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, recNoUser.Code)
	// тело ответа одинаковое — оракула существования логина нет
	assert.Equal(t, envA.Error, envB.Error)
}

func TestLogin_EmptyPassword(t *testing.T) {
	h := newLoginHandler(nil)
	rec, _ := doLogin(t, h, `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_RateLimit(t *testing.T) {
	cache := &fakeCache{counters: make(map[string]int64)}
	h := newLoginHandler(cache)

	for i := 0; i < 10; i++ {
		rec, _ := doLogin(t, h, `{"username":"admin","password":"nope"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	// одиннадцатая попытка режется лимитом даже с верным паролем
	rec, _ := doLogin(t, h, `{"username":"admin","password":"correct-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	cache := &fakeCache{counters: make(map[string]int64)}
	h := newLoginHandler(cache)

	for i := 0; i < 5; i++ {
		doLogin(t, h, `{"username":"admin","password":"nope"}`)
	}
	rec, _ := doLogin(t, h, `{"username":"admin","password":"correct-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, cache.counters)
}
