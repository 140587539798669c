package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/logx"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/mw"
	v1 "github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1"
)

// Порог и окно rate limit по неудачным логинам (работает при наличии Redis)
const (
	loginFailLimit     = 10
	loginFailWindowSec = 300
)

type HandlerLogin struct {
	Log      *log.Logger
	Accounts domain.AccountStore
	Tokens   domain.TokenManager
	Cache    domain.Cache // nil — без rate limit
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	User      domain.AuthUser `json:"user"`
	ExpiresIn int             `json:"expires_in"`
}

// Login godoc
// @Summary     Authenticate operator
// @Description Возвращает JWT при валидных логине и пароле. Пустой username — legacy-режим единственного оператора (дефолтная учётка).
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body loginRequest true "username?, password"
// @Success     200 {object} domain.APIEnvelope{response=loginResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/auth/login [post]
func (h *HandlerLogin) Login(w http.ResponseWriter, r *http.Request) {
	const op = "auth.login"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	if r.Method != http.MethodPost {
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.Password == "" {
		logx.Error(h.Log, reqID, op, "empty password", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	// legacy-режим единственного оператора: логин не передаётся
	if req.Username == "" {
		req.Username = domain.DefaultUsername
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	if h.tooManyFailures(r, req.Username) {
		// ответ неотличим от неверного пароля
		logx.Error(h.Log, reqID, op, "rate limited", domain.ErrUnauth, "username", req.Username)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	user, ok, err := h.Accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		logx.Error(h.Log, reqID, op, "authenticate failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	if !ok {
		// «нет такого» и «не тот пароль» — один и тот же ответ
		h.noteFailure(r, req.Username)
		logx.Error(h.Log, reqID, op, "bad credentials", domain.ErrUnauth, "username", req.Username)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	tok, claims, err := h.Tokens.Issue(r.Context(), user)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue token failed", err, "username", user.Username)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	h.resetFailures(r, req.Username)

	logx.Info(h.Log, reqID, op, "ok", "username", user.Username, "role", user.Role)
	v1.WriteOKResponse(w, r, loginResponse{
		Token:     tok,
		User:      user,
		ExpiresIn: int(claims.ExpiresAt.Sub(claims.IssuedAt) / time.Second),
	})
}

func (h *HandlerLogin) tooManyFailures(r *http.Request, username string) bool {
	if h.Cache == nil {
		return false
	}
	b, err := h.Cache.Get(r.Context(), domain.CacheKeyLoginAttempts(username))
	if err != nil || len(b) == 0 {
		return false
	}
	n, err := strconv.Atoi(string(b))
	return err == nil && n >= loginFailLimit
}

func (h *HandlerLogin) noteFailure(r *http.Request, username string) {
	if h.Cache == nil {
		return
	}
	key := domain.CacheKeyLoginAttempts(username)
	if n, err := h.Cache.Incr(r.Context(), key); err == nil && n == 1 {
		_ = h.Cache.Expire(r.Context(), key, loginFailWindowSec)
	}
}

func (h *HandlerLogin) resetFailures(r *http.Request, username string) {
	if h.Cache == nil {
		return
	}
	_ = h.Cache.Del(r.Context(), domain.CacheKeyLoginAttempts(username))
}
