package web

import (
	"log"
	"net/http"

	_ "github.com/GiridharSalana/ShreeAdvaya/internal/docs"
	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/mw"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/accounts"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/auth"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/batch"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/collections"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/content"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/health"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/media"
	httpSwagger "github.com/swaggo/http-swagger"
)

type routes struct {
	login       *auth.HandlerLogin
	verify      *auth.HandlerVerify
	register    *auth.HandlerRegister
	accounts    *accounts.Handler
	content     *content.Handler
	collections *collections.Handler
	batch       *batch.Handler
	media       *media.Handler
	health      *health.Handler
	tokens      domain.TokenManager
}

func newRouter(rt routes, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	admin := func(h http.HandlerFunc) http.Handler {
		return mw.RequireRole(rt.tokens, h, domain.RoleAdmin)
	}
	editor := func(h http.HandlerFunc) http.Handler {
		return mw.RequireRole(rt.tokens, h, domain.RoleAdmin, domain.RoleEditor)
	}

	// auth
	mux.HandleFunc("POST /api/v1/auth/login", rt.login.Login)
	mux.HandleFunc("GET /api/v1/auth/verify", rt.verify.Verify)
	// регистрация без токена работает только для bootstrap первой учётки
	mux.Handle("POST /api/v1/auth/register", mw.OptionalAuth(rt.tokens, http.HandlerFunc(rt.register.Register)))

	// accounts: список и удаление — только админ; PATCH пускает любого
	// оператора, стор сам режет всё кроме смены собственного пароля
	anyOperator := func(h http.HandlerFunc) http.Handler {
		return mw.RequireRole(rt.tokens, h, domain.RoleAdmin, domain.RoleEditor, domain.RoleViewer)
	}
	mux.Handle("GET /api/v1/accounts", admin(rt.accounts.List))
	mux.Handle("PATCH /api/v1/accounts/{username}", anyOperator(rt.accounts.Update))
	mux.Handle("DELETE /api/v1/accounts/{username}", admin(rt.accounts.Delete))

	// публичные чтения; литеральные маршруты точнее и выигрывают у {name}
	mux.HandleFunc("GET /api/v1/content", rt.content.Get)
	mux.HandleFunc("GET /api/v1/{name}", rt.collections.List)

	// мутации контента
	mux.Handle("PUT /api/v1/content", editor(rt.content.Put))
	mux.Handle("POST /api/v1/batch", editor(limitBody(4<<20, rt.batch.Submit)))

	// media
	mux.Handle("POST /api/v1/media", editor(limitBody(16<<20, rt.media.Upload)))
	mux.Handle("DELETE /api/v1/media", editor(rt.media.Remove))

	// health
	mux.HandleFunc("GET /api/v1/healthz", rt.health.Liveness)
	mux.HandleFunc("GET /api/v1/readyz", rt.health.Readiness)

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger)(mux))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
