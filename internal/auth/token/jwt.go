package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

// Срок жизни сессии фиксированный: ревокации нет, истечение —
// единственный способ завершить сессию на сервере.
const TTL = time.Hour

type Manager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func New(secret []byte, issuer string) *Manager {
	return &Manager{secret: secret, issuer: issuer, now: time.Now}
}

// внутренний тип для подписи/парсинга с jwt.RegisteredClaims
type jwtClaims struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Ensure: Manager implements domain.TokenManager
var _ domain.TokenManager = (*Manager)(nil)

// Issue выпускает JWT с identity+role и фиксированным TTL
func (m *Manager) Issue(_ context.Context, u domain.AuthUser) (domain.Token, domain.TokenClaims, error) {
	now := m.now().UTC()

	cl := jwtClaims{
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   u.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	tokenStr, err := t.SignedString(m.secret)
	if err != nil {
		return "", domain.TokenClaims{}, err
	}

	return tokenStr, domain.TokenClaims{
		Username:  cl.Username,
		Role:      cl.Role,
		IssuedAt:  cl.IssuedAt.Time,
		ExpiresAt: cl.ExpiresAt.Time,
	}, nil
}

// Verify валидирует подпись/сроки. Причина отказа различается для
// диагностики (expired/malformed/signature-invalid), но любой отказ
// для вызывающего кода одинаков — reject.
func (m *Manager) Verify(_ context.Context, raw domain.Token) (domain.TokenClaims, domain.TokenReason, error) {
	var out jwtClaims
	tkn, err := jwt.ParseWithClaims(string(raw), &out, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return domain.TokenClaims{}, classify(err), err
	}
	if !tkn.Valid {
		return domain.TokenClaims{}, domain.TokenReasonMalformed, jwt.ErrTokenInvalidClaims
	}

	return domain.TokenClaims{
		Username:  out.Username,
		Role:      out.Role,
		IssuedAt:  out.IssuedAt.Time,
		ExpiresAt: out.ExpiresAt.Time,
	}, "", nil
}

func classify(err error) domain.TokenReason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.TokenReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.TokenReasonBadSig
	default:
		return domain.TokenReasonMalformed
	}
}
