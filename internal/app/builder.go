package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/GiridharSalana/ShreeAdvaya/internal/accounts"
	"github.com/GiridharSalana/ShreeAdvaya/internal/auth/token"
	"github.com/GiridharSalana/ShreeAdvaya/internal/auth/vault"
	"github.com/GiridharSalana/ShreeAdvaya/internal/batch"
	"github.com/GiridharSalana/ShreeAdvaya/internal/config"
	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
	redisx "github.com/GiridharSalana/ShreeAdvaya/internal/infra/cache/redis"
	"github.com/GiridharSalana/ShreeAdvaya/internal/infra/git"
	s3storage "github.com/GiridharSalana/ShreeAdvaya/internal/infra/storage/s3"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web"
)

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	cache  domain.Cache // nil, если Redis не настроен
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	gitLog := log.New(base.Writer(), base.Prefix()+"[github] ", base.Flags())
	vaultLog := log.New(base.Writer(), base.Prefix()+"[vault] ", base.Flags())
	accountsLog := log.New(base.Writer(), base.Prefix()+"[accounts] ", base.Flags())
	batchLog := log.New(base.Writer(), base.Prefix()+"[batch] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	s3Log := log.New(base.Writer(), base.Prefix()+"[s3] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init credential vault")
	cv, err := vault.New(cfg.AdminSecret, vaultLog)
	if err != nil {
		return nil, fmt.Errorf("failed init vault: %w", err)
	}
	tm := token.New(vault.DeriveSigningSecret(cfg.AdminSecret), cfg.AuthIssuer)

	base.Println("init GitHub provider")
	provider, err := git.New(ctx, git.Config{
		Token:  cfg.GitHubToken,
		Owner:  cfg.GitHubOwner,
		Repo:   cfg.GitHubRepo,
		Branch: cfg.GitHubBranch,
	}, gitLog)
	if err != nil {
		return nil, fmt.Errorf("failed init github: %w", err)
	}
	base.Println("GitHub provider is initialized")

	base.Println("init accounts store")
	store, err := accounts.New(provider, cv, accountsLog, cfg.AdminUsersSeed, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed init accounts: %w", err)
	}

	orchestrator := batch.New(provider, store, cv, batchLog, cfg.GitHubBranch)

	// Redis и S3 опциональны: без них сервис работает,
	// просто без rate limit/кеша и без загрузки медиа.
	var cache domain.Cache
	if cfg.HasRedis() {
		base.Println("init Redis")
		rc := redisx.New(redisx.Config{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		}, redisLog)
		if err := rc.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed init redis: %w", err)
		}
		cache = rc
		base.Println("Redis is initialized")
	}

	var storage domain.MediaStorage
	if cfg.HasS3() {
		base.Println("init S3 storage")
		s3, err := s3storage.New(ctx, s3storage.Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			UseSSL:        cfg.S3UseSSL,
			PathStyle:     cfg.S3PathStyle,
			PublicBaseURL: cfg.MediaURL,
		}, s3Log)
		if err != nil {
			return nil, fmt.Errorf("failed init s3: %w", err)
		}
		storage = s3
	}

	base.Println("init Server")
	server := web.New(serverLog, cfg, web.Deps{
		Provider:  provider,
		Accounts:  store,
		Tokens:    tm,
		Committer: orchestrator,
		Cache:     cache,
		Storage:   storage,
	})
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		cache:  cache,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	if a.cache != nil {
		a.cache.Close()
	}

	return nil
}
