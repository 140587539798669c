package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/GiridharSalana/ShreeAdvaya/internal/config"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/accounts"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/auth"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/batch"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/collections"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/content"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/health"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1/media"
)

// TTL публичного кеша коллекций; инвалидация после коммита всё равно
// сбрасывает ключи, TTL — страховка на случай правок мимо сервиса.
const publicCacheTTL = 300

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, deps Deps) *Server {
	sub := func(name string) *log.Logger {
		return log.New(logger.Writer(), logger.Prefix()+"["+name+"] ", logger.Flags())
	}

	loginHandler := &auth.HandlerLogin{Log: sub("auth"), Accounts: deps.Accounts, Tokens: deps.Tokens, Cache: deps.Cache}
	verifyHandler := &auth.HandlerVerify{Log: sub("auth"), Tokens: deps.Tokens}
	registerHandler := &auth.HandlerRegister{Log: sub("auth"), Accounts: deps.Accounts}
	accountsHandler := &accounts.Handler{Log: sub("accounts"), Accounts: deps.Accounts}
	contentHandler := &content.Handler{Log: sub("content"), Provider: deps.Provider, Cache: deps.Cache, CacheTTL: publicCacheTTL}
	collectionsHandler := &collections.Handler{Log: sub("collections"), Provider: deps.Provider, Cache: deps.Cache, CacheTTL: publicCacheTTL}
	batchHandler := &batch.Handler{Log: sub("batch"), Committer: deps.Committer, Cache: deps.Cache}
	mediaHandler := &media.Handler{Log: sub("media"), Storage: deps.Storage}
	healthHandler := &health.Handler{Log: sub("health"), Provider: deps.Provider, Cache: deps.Cache, Storage: deps.Storage}

	srv := &http.Server{
		Addr: cfg.AppPort,
		Handler: newRouter(routes{
			login:       loginHandler,
			verify:      verifyHandler,
			register:    registerHandler,
			accounts:    accountsHandler,
			content:     contentHandler,
			collections: collectionsHandler,
			batch:       batchHandler,
			media:       mediaHandler,
			health:      healthHandler,
			tokens:      deps.Tokens,
		}, logger),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
