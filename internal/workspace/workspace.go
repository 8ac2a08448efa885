// Package workspace owns one user's browsing session: the loaded tree, the
// selection, the expanded directories and the last output.
//
// Network work never runs under the workspace lock. Each load or process
// request takes a ticket stamped with a generation; its result is applied
// only if no newer request was made meanwhile, otherwise it is dropped with
// ErrSuperseded.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hayeah/repocat/internal/aggregate"
	"github.com/hayeah/repocat/internal/render"
	"github.com/hayeah/repocat/internal/selection"
	"github.com/hayeah/repocat/internal/tree"
)

var (
	ErrSuperseded    = errors.New("superseded by a newer request")
	ErrNoRepository  = errors.New("no repository loaded")
	ErrNoOutput      = errors.New("nothing to copy yet")
	ErrUnknownPath   = errors.New("no such file in tree")
	ErrNotSelectable = errors.New("file is hidden by the extension filter")
)

type TreeBuilder interface {
	Build(ctx context.Context, repo tree.Repo) (*tree.Node, error)
}

type Aggregator interface {
	Aggregate(ctx context.Context, repo tree.Repo, paths []string) (*aggregate.Result, error)
}

// Factory creates a fresh workspace, one per user session.
type Factory func() *Workspace

type Workspace struct {
	builder TreeBuilder
	agg     Aggregator
	clip    aggregate.Clipboard
	log     *slog.Logger

	mu      sync.Mutex
	gen     uint64 // bumped by every load
	procGen uint64 // bumped by every load and process

	input      string
	repo       tree.Repo
	root       *tree.Node
	exts       []string
	state      selection.State
	exp        render.Expansion
	result     *aggregate.Result
	err        error
	notice     string
	loading    bool
	processing bool
}

func New(builder TreeBuilder, agg Aggregator, clip aggregate.Clipboard, log *slog.Logger) *Workspace {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Workspace{builder: builder, agg: agg, clip: clip, log: log}
}

// fail records err for display and returns it.
func (w *Workspace) fail(err error) error {
	w.err = err
	w.notice = ""
	return err
}

// LoadTicket is a pending tree fetch.
type LoadTicket struct {
	gen     uint64
	repo    tree.Repo
	builder TreeBuilder
}

func (t *LoadTicket) Repo() tree.Repo { return t.repo }

// LoadResult is what a LoadTicket fetched.
type LoadResult struct {
	gen  uint64
	Repo tree.Repo
	Root *tree.Node
	Err  error
}

// Run fetches the tree. It touches no workspace state.
func (t *LoadTicket) Run(ctx context.Context) LoadResult {
	root, err := t.builder.Build(ctx, t.repo)
	return LoadResult{gen: t.gen, Repo: t.repo, Root: root, Err: err}
}

// BeginLoad starts loading the repository named by input. The previous
// tree, selection and output are cleared at once and any in-flight load or
// process is superseded. Invalid input is recorded and leaves the current
// tree untouched.
func (w *Workspace) BeginLoad(input string) (*LoadTicket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.input = input
	repo, err := tree.ParseRepo(input)
	if err != nil {
		return nil, w.fail(err)
	}

	w.gen++
	w.procGen++
	w.repo = repo
	w.root = nil
	w.exts = nil
	w.state = selection.State{}
	w.exp = render.Expansion{}
	w.result = nil
	w.err = nil
	w.notice = ""
	w.loading = true
	w.processing = false

	w.log.Info("load repository", "repo", repo.String(), "gen", w.gen)
	return &LoadTicket{gen: w.gen, repo: repo, builder: w.builder}, nil
}

// ApplyLoad installs res if it belongs to the latest load.
func (w *Workspace) ApplyLoad(res LoadResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if res.gen != w.gen {
		w.log.Debug("drop stale tree", "repo", res.Repo.String(), "gen", res.gen, "current", w.gen)
		return ErrSuperseded
	}
	w.loading = false
	if res.Err != nil {
		w.log.Warn("load failed", "repo", res.Repo.String(), "err", res.Err)
		return w.fail(res.Err)
	}
	w.root = res.Root
	w.exts = tree.Extensions(res.Root)
	return nil
}

// Load runs BeginLoad, the fetch and ApplyLoad in sequence.
func (w *Workspace) Load(ctx context.Context, input string) error {
	t, err := w.BeginLoad(input)
	if err != nil {
		return err
	}
	return w.ApplyLoad(t.Run(ctx))
}

// ProcessTicket is a pending aggregation of the selected files.
type ProcessTicket struct {
	gen, procGen uint64
	repo         tree.Repo
	paths        []string
	agg          Aggregator
}

func (t *ProcessTicket) Paths() []string { return t.paths }

type ProcessResult struct {
	gen, procGen uint64
	Result       *aggregate.Result
	Err          error
}

func (t *ProcessTicket) Run(ctx context.Context) ProcessResult {
	res, err := t.agg.Aggregate(ctx, t.repo, t.paths)
	return ProcessResult{gen: t.gen, procGen: t.procGen, Result: res, Err: err}
}

// BeginProcess snapshots the selection for aggregation.
func (w *Workspace) BeginProcess() (*ProcessTicket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.root == nil {
		return nil, w.fail(ErrNoRepository)
	}
	paths := w.state.Selected.Values()
	if len(paths) == 0 {
		return nil, w.fail(aggregate.ErrEmptySelection)
	}

	w.procGen++
	w.processing = true
	w.result = nil
	w.err = nil
	w.notice = ""
	w.log.Info("process selection", "repo", w.repo.String(), "files", len(paths), "gen", w.procGen)
	return &ProcessTicket{gen: w.gen, procGen: w.procGen, repo: w.repo, paths: paths, agg: w.agg}, nil
}

// ApplyProcess installs res if no newer load or process request was made.
func (w *Workspace) ApplyProcess(res ProcessResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if res.gen != w.gen || res.procGen != w.procGen {
		w.log.Debug("drop stale output", "gen", res.procGen, "current", w.procGen)
		return ErrSuperseded
	}
	w.processing = false
	if res.Err != nil {
		w.log.Warn("process failed", "err", res.Err)
		return w.fail(res.Err)
	}
	w.result = res.Result
	return nil
}

func (w *Workspace) Process(ctx context.Context) error {
	t, err := w.BeginProcess()
	if err != nil {
		return err
	}
	return w.ApplyProcess(t.Run(ctx))
}

// ToggleFile checks or unchecks one selectable file.
func (w *Workspace) ToggleFile(path string, on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := tree.Find(w.root, path)
	if n == nil || n.IsDir() || path == "" {
		return w.fail(fmt.Errorf("%w: %q", ErrUnknownPath, path))
	}
	if !w.state.Selectable(n.Name) {
		return w.fail(fmt.Errorf("%w: %q", ErrNotSelectable, path))
	}
	w.state = w.state.ToggleFile(path, on)
	return nil
}

// CheckExtension ticks or unticks an extension: the filter follows and every
// matching file in the tree is selected or deselected.
func (w *Workspace) CheckExtension(ext string, on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.root == nil {
		return w.fail(ErrNoRepository)
	}
	w.state = w.state.CheckExtension(w.root, ext, on)
	return nil
}

func (w *Workspace) ToggleExpanded(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.exp = w.exp.Toggle(path)
}

// Copy writes the last output to the clipboard.
func (w *Workspace) Copy() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.result == nil {
		return w.fail(ErrNoOutput)
	}
	if err := w.clip.WriteAll(w.result.Text); err != nil {
		return w.fail(err)
	}
	w.err = nil
	w.notice = "Copied to clipboard"
	return nil
}

// Snapshot is a consistent, read-only view of the workspace.
type Snapshot struct {
	Input      string
	Repo       tree.Repo
	Root       *tree.Node
	Extensions []string
	State      selection.State
	Expansion  render.Expansion
	Result     *aggregate.Result
	Err        error
	Notice     string
	Loading    bool
	Processing bool
}

func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		Input:      w.input,
		Repo:       w.repo,
		Root:       w.root,
		Extensions: w.exts,
		State:      w.state,
		Expansion:  w.exp,
		Result:     w.result,
		Err:        w.err,
		Notice:     w.notice,
		Loading:    w.loading,
		Processing: w.processing,
	}
}

func (s Snapshot) Rows() []render.Row {
	return render.Rows(s.Root, s.State, s.Expansion)
}

func (s Snapshot) Output() string {
	if s.Result == nil {
		return ""
	}
	return s.Result.Text
}

// Message is the banner text for the recorded error, or "".
func (s Snapshot) Message() string {
	return Message(s.Err)
}
