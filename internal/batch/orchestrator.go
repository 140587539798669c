package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/GiridharSalana/ShreeAdvaya/internal/accounts"
	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

// Orchestrator собирает разнородные правки нескольких коллекций в один
// атомарный коммит. Логическая атомарность: либо ref ветки переводится на
// коммит со ВСЕМИ файлами батча, либо ref не трогается вовсе. Частичное
// применение на уровне примитивов провайдера (blob создан, ref не обновлён)
// — принятый риск его нетранзакционного API: мусорные blob недостижимы.
type Orchestrator struct {
	provider domain.Provider
	log      *log.Logger
	branch   string // из конфига; пусто — определяем у провайдера
	mutators map[string]Mutator
}

func New(provider domain.Provider, store *accounts.Store, vault domain.CredentialVault, logger *log.Logger, branch string) *Orchestrator {
	im := NewItemMutator()
	return &Orchestrator{
		provider: provider,
		log:      logger,
		branch:   branch,
		mutators: map[string]Mutator{
			domain.ColProducts: im,
			domain.ColGallery:  im,
			domain.ColHero:     im,
			domain.ColContent:  ContentMutator{},
			domain.ColUsers:    &UsersMutator{Store: store, Vault: vault, Now: im.Now},
		},
	}
}

// Commit применяет батч. Пустой итог («нечего коммитить») — успех без
// единой записи у провайдера: пустые коммиты не создаются.
func (o *Orchestrator) Commit(ctx context.Context, batch map[string]domain.ChangeSet, actor domain.AuthUser) (domain.BatchResult, error) {
	names := make([]string, 0, len(batch))
	for name, cs := range batch {
		if cs.Empty() {
			continue
		}
		if !domain.ValidCollection(name) {
			return domain.BatchResult{}, fmt.Errorf("unknown collection %q: %w", name, domain.ErrBadParams)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	res := domain.BatchResult{Results: make(map[string]domain.OpResult, len(names))}
	if len(names) == 0 {
		return res, nil
	}

	// снапшоты затронутых коллекций независимы — грузим параллельно;
	// отсутствующий файл означает пустую коллекцию, не ошибку
	raws := make(map[string][]byte, len(names))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			b, err := o.provider.ReadFile(gctx, domain.CollectionPaths[name])
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("load %s: %w", name, err)
			}
			mu.Lock()
			raws[name] = b
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.BatchResult{}, err
	}

	// применяем правки; неизменившиеся файлы из набора записи выпадают
	writeSet := make(map[string][]byte, len(names))
	for _, name := range names {
		applied, err := o.mutators[name].Apply(raws[name], batch[name], actor)
		if err != nil {
			return domain.BatchResult{}, fmt.Errorf("apply %s: %w", name, err)
		}
		res.Results[name] = applied.Result
		if applied.Changed {
			writeSet[domain.CollectionPaths[name]] = applied.Content
		}
	}

	if len(writeSet) == 0 {
		o.log.Printf("batch by %s: nothing to commit", actor.Username)
		return res, nil
	}

	commitID, err := o.commitTree(ctx, writeSet, commitMessage(names, actor))
	if err != nil {
		// с этого места не ретраим: прежняя вершина остаётся авторитетной
		return domain.BatchResult{}, err
	}

	res.Committed = true
	res.CommitID = commitID
	o.log.Printf("batch by %s: commit %s (%d files)", actor.Username, commitID, len(writeSet))
	return res, nil
}

// commitTree — шаги 7–8: tip → дерево без заменяемых путей + новые blob →
// commit с единственным родителем → атомарный перевод ref.
func (o *Orchestrator) commitTree(ctx context.Context, writeSet map[string][]byte, message string) (string, error) {
	branch, err := o.resolveBranch(ctx)
	if err != nil {
		return "", err
	}

	tip, err := o.provider.GetBranchTip(ctx, branch)
	if err != nil {
		return "", fmt.Errorf("branch tip %s: %w", branch, err)
	}

	base, err := o.provider.ListTree(ctx, tip.TreeSHA, true)
	if err != nil {
		return "", fmt.Errorf("list tree: %w", err)
	}

	entries := make([]domain.TreeEntry, 0, len(base)+len(writeSet))
	for _, e := range base {
		if e.Type == "tree" {
			continue // дерево строим из листьев, каталоги провайдер соберёт сам
		}
		if _, replaced := writeSet[e.Path]; replaced {
			continue
		}
		entries = append(entries, e)
	}

	paths := make([]string, 0, len(writeSet))
	for p := range writeSet {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		sha, err := o.provider.CreateBlob(ctx, writeSet[p])
		if err != nil {
			return "", fmt.Errorf("create blob %s: %w", p, err)
		}
		entries = append(entries, domain.TreeEntry{Path: p, Mode: "100644", Type: "blob", SHA: sha})
	}

	treeSHA, err := o.provider.CreateTree(ctx, entries)
	if err != nil {
		return "", fmt.Errorf("create tree: %w", err)
	}

	commitSHA, err := o.provider.CreateCommit(ctx, message, treeSHA, tip.CommitSHA)
	if err != nil {
		return "", fmt.Errorf("create commit: %w", err)
	}

	// отказ провайдера (например, ref ушёл вперёд) отдаём как есть
	if err := o.provider.UpdateRef(ctx, branch, commitSHA); err != nil {
		return "", fmt.Errorf("update ref %s: %w", branch, err)
	}
	return commitSHA, nil
}

// Политика выбора ветки: конфиг → дефолтная ветка провайдера →
// main → master, в этом порядке.
func (o *Orchestrator) resolveBranch(ctx context.Context) (string, error) {
	if o.branch != "" {
		return o.branch, nil
	}
	if b, err := o.provider.DefaultBranch(ctx); err == nil && b != "" {
		return b, nil
	}
	for _, b := range []string{"main", "master"} {
		if _, err := o.provider.GetBranchTip(ctx, b); err == nil {
			return b, nil
		}
	}
	return "", fmt.Errorf("cannot resolve branch: %w", domain.ErrUpstream)
}

func commitMessage(names []string, actor domain.AuthUser) string {
	return fmt.Sprintf("admin: batch update %s (by %s)", strings.Join(names, ", "), actor.Username)
}
