package domain

import (
	"context"
	"time"
)

type Token = string

type TokenClaims struct {
	Username  string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (c TokenClaims) User() AuthUser {
	return AuthUser{Username: c.Username, Role: c.Role}
}

// Причина отказа при верификации токена. Для вызывающего кода все три
// эквивалентны (reject), различаем для диагностики и ответа /auth/verify.
type TokenReason string

const (
	TokenReasonExpired   TokenReason = "expired"
	TokenReasonMalformed TokenReason = "malformed"
	TokenReasonBadSig    TokenReason = "signature-invalid"
)

// Управление сессионными токенами (JWT, см. internal/auth/token)
type TokenManager interface {
	Issue(ctx context.Context, u AuthUser) (Token, TokenClaims, error)
	// Verify возвращает клеймы либо (TokenReason, err). Токены stateless:
	// ревокации нет, единственный конец жизни — истечение срока.
	Verify(ctx context.Context, t Token) (TokenClaims, TokenReason, error)
}

// Операции над списком операторов (реализация — internal/accounts).
// Authenticate отвечает (zero, false) одинаково для неизвестного логина
// и неверного пароля — оракула существования нет.
type AccountStore interface {
	Authenticate(ctx context.Context, username, password string) (AuthUser, bool, error)
	List(ctx context.Context) ([]AccountView, error)
	// Register: actor == nil допустим только для первой учётки (bootstrap)
	Register(ctx context.Context, actor *AuthUser, username, password string, role Role, email string) (AccountView, error)
	Update(ctx context.Context, actor AuthUser, username string, patch AccountPatch) (AccountView, error)
	Delete(ctx context.Context, actor AuthUser, username string) error
}

// Свод учётных данных: шифрование хранимых паролей ключом,
// детерминированно выведенным из мастер-секрета оператора.
type CredentialVault interface {
	Encrypt(plaintext string) (string, error)
	// Decrypt fail-closed: (="", false) на битой записи, чужом ключе,
	// несошедшемся теге. Причина логируется, наружу не уходит.
	Decrypt(record string) (string, bool)
	// LooksEncrypted отличает запись свода от legacy-пароля открытым текстом
	LooksEncrypted(record string) bool
}
