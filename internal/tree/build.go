package tree

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hayeah/repocat/internal/remote"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Builder walks a remote repository one directory listing at a time.
type Builder struct {
	Client remote.Client
	// Concurrency caps in-flight listing calls. Zero means unbounded.
	Concurrency int
	Exclude     *Excluder
	Logger      *slog.Logger
}

// NewBuilder creates a Builder with the given listing concurrency.
func NewBuilder(client remote.Client, concurrency int, exclude *Excluder, log *slog.Logger) *Builder {
	return &Builder{
		Client:      client,
		Concurrency: concurrency,
		Exclude:     exclude,
		Logger:      log,
	}
}

// Build fetches the whole tree of repo. Subdirectories are listed
// concurrently, but every node's children keep the order of its listing. The
// first listing error aborts the build; no partial tree is returned.
func (b *Builder) Build(ctx context.Context, repo Repo) (*Node, error) {
	start := time.Now()

	entries, err := b.Client.ListDirectory(ctx, repo.Owner, repo.Name, "")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", repo, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	var sem *semaphore.Weighted
	if b.Concurrency > 0 {
		sem = semaphore.NewWeighted(int64(b.Concurrency))
	}

	w := &walker{b: b, repo: repo, g: g, sem: sem}
	root := &Node{Name: repo.Name, Kind: Dir}
	w.fill(gctx, root, entries)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if b.Logger != nil {
		dirs, files := Count(root)
		b.Logger.Info("built tree", "repo", repo.String(), "dirs", dirs, "files", files, "took", time.Since(start))
	}
	return root, nil
}

type walker struct {
	b    *Builder
	repo Repo
	g    *errgroup.Group
	sem  *semaphore.Weighted
}

// fill appends a child per entry to parent and schedules a listing for every
// subdirectory. Each goroutine only writes to its own child node.
func (w *walker) fill(ctx context.Context, parent *Node, entries []remote.Entry) {
	parent.Children = make([]*Node, 0, len(entries))
	for _, e := range entries {
		isDir := e.Kind == remote.KindDir
		if w.b.Exclude.Match(e.Path, isDir) {
			continue
		}

		child := &Node{Name: e.Name, Path: e.Path, Kind: File}
		parent.Children = append(parent.Children, child)
		if !isDir {
			continue
		}

		child.Kind = Dir
		w.g.Go(func() error {
			sub, err := w.list(ctx, child.Path)
			if err != nil {
				return fmt.Errorf("list %s/%s: %w", w.repo, child.Path, err)
			}
			w.fill(ctx, child, sub)
			return nil
		})
	}
}

// list holds a semaphore slot only for the duration of the network call, so
// nested directories can never starve their parents of slots.
func (w *walker) list(ctx context.Context, path string) ([]remote.Entry, error) {
	if w.sem != nil {
		if err := w.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer w.sem.Release(1)
	}
	return w.b.Client.ListDirectory(ctx, w.repo.Owner, w.repo.Name, path)
}
