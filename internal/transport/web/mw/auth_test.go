package mw

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

// fakeTokens принимает единственный токен "good" от editor-а
type fakeTokens struct{}

func (fakeTokens) Issue(_ context.Context, u domain.AuthUser) (domain.Token, domain.TokenClaims, error) {
	return "good", domain.TokenClaims{Username: u.Username, Role: u.Role}, nil
}

func (fakeTokens) Verify(_ context.Context, raw domain.Token) (domain.TokenClaims, domain.TokenReason, error) {
	if raw != "good" {
		return domain.TokenClaims{}, domain.TokenReasonMalformed, fmt.Errorf("bad token")
	}
	return domain.TokenClaims{Username: "priya", Role: domain.RoleEditor}, "", nil
}

func protected(t *testing.T, roles ...domain.Role) (http.Handler, *bool) {
	t.Helper()
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		u, ok := domain.UserFromCtx(r.Context())
		require.True(t, ok)
		assert.Equal(t, "priya", u.Username)
	})
	return RequireRole(fakeTokens{}, next, roles...), &reached
}

func TestRequireRole_NoToken(t *testing.T) {
	h, reached := protected(t, domain.RoleEditor)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestRequireRole_BadToken(t *testing.T) {
	h, reached := protected(t, domain.RoleEditor)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired-or-garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestRequireRole_InsufficientRole(t *testing.T) {
	h, reached := protected(t, domain.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, *reached)
}

func TestRequireRole_Allowed(t *testing.T) {
	h, reached := protected(t, domain.RoleAdmin, domain.RoleEditor)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestOptionalAuth(t *testing.T) {
	var got *domain.AuthUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := domain.UserFromCtx(r.Context()); ok {
			got = &u
		}
	})
	h := OptionalAuth(fakeTokens{}, next)

	// без токена — аноним
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Nil(t, got)

	// с валидным токеном — оператор в контексте
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, "priya", got.Username)
}
