package domain

import "context"

// Ключ для хранения аутентифицированного оператора в контексте HTTP-запроса
type ctxKey int

const userCtxKey ctxKey = 1

func WithUser(ctx context.Context, u AuthUser) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

func UserFromCtx(ctx context.Context) (AuthUser, bool) {
	u, ok := ctx.Value(userCtxKey).(AuthUser)
	return u, ok
}
