package domain

import "context"

// Вершина ветки на момент начала батча
type BranchTip struct {
	CommitSHA string
	TreeSHA   string
}

// Лист дерева провайдера: {path, mode, type, sha}
type TreeEntry struct {
	Path string
	Mode string
	Type string // "blob" | "tree" | "commit" (сабмодуль)
	SHA  string
}

// Provider — контент/git-data API Git-хостинга (система записи).
// Реализация — internal/infra/git (GitHub). Отсутствие файла — ErrNotFound,
// остальные сбои оборачиваются в ErrUpstream.
type Provider interface {
	// Однофайловые операции (вне батч-оркестратора)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, content []byte, message string) error

	// Примитивы батч-коммита
	DefaultBranch(ctx context.Context) (string, error)
	GetBranchTip(ctx context.Context, branch string) (BranchTip, error)
	ListTree(ctx context.Context, treeSHA string, recursive bool) ([]TreeEntry, error)
	CreateBlob(ctx context.Context, content []byte) (string, error)
	CreateTree(ctx context.Context, entries []TreeEntry) (string, error)
	CreateCommit(ctx context.Context, message, treeSHA, parentSHA string) (string, error)
	// UpdateRef без force: провайдер отвергает обновление от протухшего
	// родителя — это единственная защита от гонки двух батчей.
	UpdateRef(ctx context.Context, branch, commitSHA string) error

	Ping(ctx context.Context) error
}
