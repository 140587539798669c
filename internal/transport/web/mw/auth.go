package mw

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

// RequireRole гейтит каждую мутирующую ручку ДО любого похода к провайдеру:
// bearer-токен → верификация → достаточность роли. 401 — нет/битый/истёкший
// токен, 403 — роль недостаточна.
func RequireRole(tokens domain.TokenManager, next http.Handler, roles ...domain.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r.Header.Get("Authorization"))
		if raw == "" {
			writeAuthFail(w, http.StatusUnauthorized, domain.ErrCodeUnauth, "unauthorized")
			return
		}
		claims, _, err := tokens.Verify(r.Context(), raw)
		if err != nil {
			// expired/malformed/bad-signature — для вызывающего одно и то же
			writeAuthFail(w, http.StatusUnauthorized, domain.ErrCodeUnauth, "unauthorized")
			return
		}
		if !roleAllowed(claims.Role, roles) {
			writeAuthFail(w, http.StatusForbidden, domain.ErrCodeForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithUser(r.Context(), claims.User())))
	})
}

// OptionalAuth кладёт оператора в контекст, если токен есть и валиден;
// иначе пропускает запрос как анонимный.
func OptionalAuth(tokens domain.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r.Header.Get("Authorization"))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, _, err := tokens.Verify(r.Context(), raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithUser(r.Context(), claims.User())))
	})
}

func roleAllowed(have domain.Role, want []domain.Role) bool {
	for _, r := range want {
		if have == r {
			return true
		}
	}
	return false
}

func writeAuthFail(w http.ResponseWriter, status, code int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"code":` + strconv.Itoa(code) + `,"text":"` + text + `"}}`))
}

func extractBearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
