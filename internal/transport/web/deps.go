package web

import (
	"context"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

// Committer — батч-оркестратор (internal/batch), сюда он приходит портом,
// чтобы транспорт не тянул пакет напрямую.
type Committer interface {
	Commit(ctx context.Context, batch map[string]domain.ChangeSet, actor domain.AuthUser) (domain.BatchResult, error)
}

// Deps — всё, что нужно серверу. Cache и Storage могут быть nil.
type Deps struct {
	Provider  domain.Provider
	Accounts  domain.AccountStore
	Tokens    domain.TokenManager
	Committer Committer
	Cache     domain.Cache
	Storage   domain.MediaStorage
}
