package v1

import (
	"net/http"
	"strings"
)

// TokenFromRequest достаёт сырой токен: Authorization: Bearer ..., либо
// query-параметр token (ручные проверки /auth/verify).
func TokenFromRequest(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	return ""
}
