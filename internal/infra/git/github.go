package git

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

type Config struct {
	Token  string
	Owner  string
	Repo   string
	Branch string // пусто — дефолтная ветка репозитория
}

// Provider — адаптер контент/git-data API GitHub. Единственное хранилище
// системы: каждое изменение сайта — коммит в его репозитории.
type Provider struct {
	cl     *github.Client
	owner  string
	repo   string
	branch string
	logger *log.Logger
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Provider, error) {
	if cfg.Token == "" || cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github: token/owner/repo are required: %w", domain.ErrConfig)
	}
	tc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	return &Provider{
		cl:     github.NewClient(tc),
		owner:  cfg.Owner,
		repo:   cfg.Repo,
		branch: cfg.Branch,
		logger: logger,
	}, nil
}

var _ domain.Provider = (*Provider)(nil)

func (p *Provider) Ping(ctx context.Context) error {
	_, _, err := p.cl.Repositories.Get(ctx, p.owner, p.repo)
	if err != nil {
		p.logger.Printf("ping failed: %v", err)
		return p.wrap("ping", err, nil)
	}
	return nil
}

// ReadFile читает файл по пути на рабочей ветке. Отсутствие — ErrNotFound.
func (p *Provider) ReadFile(ctx context.Context, path string) ([]byte, error) {
	opts := &github.RepositoryContentGetOptions{Ref: p.branch}
	file, _, resp, err := p.cl.Repositories.GetContents(ctx, p.owner, p.repo, path, opts)
	if err != nil {
		return nil, p.wrap("read "+path, err, resp)
	}
	if file == nil {
		// путь оказался каталогом
		return nil, fmt.Errorf("read %s: not a file: %w", path, domain.ErrNotFound)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("read %s: decode: %w", path, domain.ErrUpstream)
	}
	p.logger.Printf("read %s: %d bytes", path, len(content))
	return []byte(content), nil
}

// WriteFile — однофайловый путь записи (вне батч-оркестратора):
// contents API сам делает blob+tree+commit+ref за один вызов.
func (p *Provider) WriteFile(ctx context.Context, path string, content []byte, message string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
	}
	if p.branch != "" {
		opts.Branch = github.String(p.branch)
	}

	// для обновления существующего файла contents API требует его SHA
	existing, _, resp, err := p.cl.Repositories.GetContents(ctx, p.owner, p.repo, path,
		&github.RepositoryContentGetOptions{Ref: p.branch})
	switch {
	case err == nil && existing != nil:
		opts.SHA = existing.SHA
		_, resp, err = p.cl.Repositories.UpdateFile(ctx, p.owner, p.repo, path, opts)
		if err != nil {
			return p.wrap("write "+path, err, resp)
		}
	case isNotFound(resp, err):
		_, resp, err = p.cl.Repositories.CreateFile(ctx, p.owner, p.repo, path, opts)
		if err != nil {
			return p.wrap("write "+path, err, resp)
		}
	default:
		return p.wrap("write "+path, err, resp)
	}
	p.logger.Printf("write %s: %d bytes (%s)", path, len(content), message)
	return nil
}

func (p *Provider) DefaultBranch(ctx context.Context) (string, error) {
	repo, resp, err := p.cl.Repositories.Get(ctx, p.owner, p.repo)
	if err != nil {
		return "", p.wrap("default branch", err, resp)
	}
	return repo.GetDefaultBranch(), nil
}

func (p *Provider) GetBranchTip(ctx context.Context, branch string) (domain.BranchTip, error) {
	ref, resp, err := p.cl.Git.GetRef(ctx, p.owner, p.repo, "heads/"+branch)
	if err != nil {
		return domain.BranchTip{}, p.wrap("ref heads/"+branch, err, resp)
	}
	commitSHA := ref.GetObject().GetSHA()
	commit, resp, err := p.cl.Git.GetCommit(ctx, p.owner, p.repo, commitSHA)
	if err != nil {
		return domain.BranchTip{}, p.wrap("commit "+commitSHA, err, resp)
	}
	return domain.BranchTip{CommitSHA: commitSHA, TreeSHA: commit.GetTree().GetSHA()}, nil
}

func (p *Provider) ListTree(ctx context.Context, treeSHA string, recursive bool) ([]domain.TreeEntry, error) {
	tree, resp, err := p.cl.Git.GetTree(ctx, p.owner, p.repo, treeSHA, recursive)
	if err != nil {
		return nil, p.wrap("tree "+treeSHA, err, resp)
	}
	if tree.GetTruncated() {
		// репозиторий статического сайта в лимиты git-data API укладывается;
		// усечённое дерево означало бы потерю файлов в новом коммите
		return nil, fmt.Errorf("tree %s is truncated: %w", treeSHA, domain.ErrUpstream)
	}
	out := make([]domain.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		out = append(out, domain.TreeEntry{
			Path: e.GetPath(),
			Mode: e.GetMode(),
			Type: e.GetType(),
			SHA:  e.GetSHA(),
		})
	}
	return out, nil
}

func (p *Provider) CreateBlob(ctx context.Context, content []byte) (string, error) {
	blob, resp, err := p.cl.Git.CreateBlob(ctx, p.owner, p.repo, &github.Blob{
		Content:  github.String(base64.StdEncoding.EncodeToString(content)),
		Encoding: github.String("base64"),
	})
	if err != nil {
		return "", p.wrap("create blob", err, resp)
	}
	return blob.GetSHA(), nil
}

func (p *Provider) CreateTree(ctx context.Context, entries []domain.TreeEntry) (string, error) {
	ghEntries := make([]github.TreeEntry, 0, len(entries))
	for _, e := range entries {
		ghEntries = append(ghEntries, github.TreeEntry{
			Path: github.String(e.Path),
			Mode: github.String(e.Mode),
			Type: github.String(e.Type),
			SHA:  github.String(e.SHA),
		})
	}
	tree, resp, err := p.cl.Git.CreateTree(ctx, p.owner, p.repo, "", ghEntries)
	if err != nil {
		return "", p.wrap("create tree", err, resp)
	}
	return tree.GetSHA(), nil
}

func (p *Provider) CreateCommit(ctx context.Context, message, treeSHA, parentSHA string) (string, error) {
	commit, resp, err := p.cl.Git.CreateCommit(ctx, p.owner, p.repo, &github.Commit{
		Message: github.String(message),
		Tree:    &github.Tree{SHA: github.String(treeSHA)},
		Parents: []github.Commit{{SHA: github.String(parentSHA)}},
	})
	if err != nil {
		return "", p.wrap("create commit", err, resp)
	}
	return commit.GetSHA(), nil
}

// UpdateRef без force: от протухшего родителя провайдер обновление отвергнет,
// это единственная защита от гонки двух батчей.
func (p *Provider) UpdateRef(ctx context.Context, branch, commitSHA string) error {
	_, resp, err := p.cl.Git.UpdateRef(ctx, p.owner, p.repo, &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(commitSHA)},
	}, false)
	if err != nil {
		return p.wrap("update ref "+branch, err, resp)
	}
	return nil
}

func (p *Provider) wrap(op string, err error, resp *github.Response) error {
	if isNotFound(resp, err) {
		return fmt.Errorf("github: %s: %w", op, domain.ErrNotFound)
	}
	// тело ответа провайдера остаётся в логе, клиенту уходит только класс
	p.logger.Printf("%s failed: %v", op, err)
	return fmt.Errorf("github: %s: %v: %w", op, err, domain.ErrUpstream)
}

func isNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	if er, ok := err.(*github.ErrorResponse); ok && er.Response != nil {
		return er.Response.StatusCode == http.StatusNotFound
	}
	return false
}
