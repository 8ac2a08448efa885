package repocat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/google/wire"
	"github.com/hayeah/goo"
	"golang.org/x/term"

	"github.com/hayeah/repocat/internal/aggregate"
	"github.com/hayeah/repocat/internal/config"
	"github.com/hayeah/repocat/internal/logging"
	"github.com/hayeah/repocat/internal/metrics"
	"github.com/hayeah/repocat/internal/metrics/chart"
	"github.com/hayeah/repocat/internal/remote"
	"github.com/hayeah/repocat/internal/render"
	"github.com/hayeah/repocat/internal/selection"
	"github.com/hayeah/repocat/internal/tree"
	"github.com/hayeah/repocat/internal/tui"
	"github.com/hayeah/repocat/internal/web"
	"github.com/hayeah/repocat/internal/workspace"
)

type ServeCmd struct {
	Addr string `arg:"--addr" help:"Listen address (default from config, 127.0.0.1:8080)"`
}

type PickCmd struct {
	Repo string `arg:"positional" help:"Repository URL or owner/repo; prompted for when empty"`
}

type LsCmd struct {
	Repo string `arg:"positional,required" help:"Repository URL or owner/repo"`
}

type OutCmd struct {
	Repo string   `arg:"positional,required" help:"Repository URL or owner/repo"`
	Ext  []string `arg:"-e,--ext,separate" help:"Select every file with this extension (repeatable)"`
	Path []string `arg:"-p,--path,separate" help:"Select this file (repeatable)"`
	All  bool     `arg:"-a,--all" help:"Select every file"`
	// Output is '-' for stdout, a file path, or empty to copy to the clipboard.
	Output  string `arg:"-o,--output" help:"Output destination: '-' for stdout; file path to write; if not set, copy to clipboard"`
	Metrics bool   `arg:"-m,--metrics" help:"Print a token breakdown to stderr"`
}

// Args defines the command-line arguments with subcommands
type Args struct {
	Config string    `arg:"-c,--config" help:"Config file (default ~/.config/repocat/config.toml)"`
	Serve  *ServeCmd `arg:"subcommand:serve" help:"Serve the web page"`
	Pick   *PickCmd  `arg:"subcommand:pick" help:"Browse and select files in the terminal"`
	Ls     *LsCmd    `arg:"subcommand:ls" help:"Print the repository tree"`
	Out    *OutCmd   `arg:"subcommand:out" help:"Aggregate selected files"`
}

// ProvideArgs parses os.Args. --help exits the process.
func ProvideArgs() (*Args, error) {
	var args Args
	p, err := arg.NewParser(arg.Config{Program: "repocat"}, &args)
	if err != nil {
		return nil, err
	}
	err = p.Parse(os.Args[1:])
	switch {
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(os.Stdout)
		os.Exit(0)
	case err != nil:
		p.Fail(err.Error())
	}
	if p.Subcommand() == nil {
		p.WriteHelp(os.Stderr)
		return nil, errors.New("no subcommand specified, use 'serve', 'pick', 'ls', or 'out'")
	}
	return &args, nil
}

func ProvideConfig(args *Args) (*config.Config, error) {
	cfg, err := config.NewLoader().Load(args.Config)
	if err != nil {
		return nil, err
	}
	if args.Serve != nil && args.Serve.Addr != "" {
		cfg.Server.Addr = args.Serve.Addr
	}
	return &cfg, nil
}

// ProvideLogger logs to cfg.Log.File when set, otherwise to stderr. The
// terminal UI owns the screen, so without a file it logs nowhere. The log
// file stays open until the process exits.
func ProvideLogger(args *Args, cfg *config.Config) (*slog.Logger, error) {
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		return logging.New(cfg.Log, f), nil
	}
	if args.Pick != nil {
		return logging.New(cfg.Log, nil), nil
	}
	return logging.New(cfg.Log, os.Stderr), nil
}

func ProvideGitHub(cfg *config.Config, log *slog.Logger) (*remote.GitHub, error) {
	return remote.NewGitHub(remote.Options{
		Token:   cfg.GitHub.Token,
		BaseURL: cfg.GitHub.BaseURL,
		Logger:  goo.TypedLogger(log, (*remote.GitHub)(nil)),
	})
}

func ProvideExcluder(cfg *config.Config) *tree.Excluder {
	return tree.NewExcluder(cfg.Tree.Exclude)
}

func ProvideBuilder(client remote.Client, cfg *config.Config, ex *tree.Excluder, log *slog.Logger) *tree.Builder {
	return tree.NewBuilder(client, cfg.Tree.Concurrency, ex, goo.TypedLogger(log, (*tree.Builder)(nil)))
}

// ProvideCounter falls back to the simple estimator when the tokenizer
// cannot be loaded.
func ProvideCounter(cfg *config.Config, log *slog.Logger) metrics.Counter {
	c, err := metrics.NewCounter(cfg.Metrics.Estimator)
	if err != nil {
		log.Warn("token estimator unavailable, using simple", "estimator", cfg.Metrics.Estimator, "err", err)
		return metrics.SimpleCounter{}
	}
	return c
}

func ProvideAggregator(client remote.Client, cfg *config.Config, counter metrics.Counter, log *slog.Logger) *aggregate.Aggregator {
	agg := aggregate.NewAggregator(client, counter, goo.TypedLogger(log, (*aggregate.Aggregator)(nil)))
	agg.Concurrency = cfg.Aggregate.Concurrency
	return agg
}

func ProvideClipboard() aggregate.Clipboard {
	return aggregate.SystemClipboard{}
}

func ProvideWorkspaceFactory(b *tree.Builder, agg *aggregate.Aggregator, clip aggregate.Clipboard, log *slog.Logger) workspace.Factory {
	log = goo.TypedLogger(log, (*workspace.Workspace)(nil))
	return func() *workspace.Workspace {
		return workspace.New(b, agg, clip, log)
	}
}

func ProvideWebServer(cfg *config.Config, factory workspace.Factory, log *slog.Logger) (*web.Server, error) {
	return web.New(factory, goo.TypedLogger(log, (*web.Server)(nil)), web.Options{
		SessionTTL:  cfg.Server.SessionTTL,
		MaxSessions: cfg.Server.MaxSessions,
	})
}

// collect all the necessary providers
var Wires = wire.NewSet(
	goo.ProvideShutdownContext,
	goo.ProvideMain,
	wire.Bind(new(goo.Runner), new(*App)),

	ProvideArgs,
	ProvideConfig,
	ProvideLogger,
	ProvideGitHub,
	wire.Bind(new(remote.Client), new(*remote.GitHub)),
	ProvideExcluder,
	ProvideBuilder,
	ProvideCounter,
	ProvideAggregator,
	ProvideClipboard,
	ProvideWorkspaceFactory,
	ProvideWebServer,

	wire.Struct(new(App), "*"),
)

type App struct {
	Args       *Args
	Config     *config.Config
	Logger     *slog.Logger
	Builder    *tree.Builder
	Aggregator *aggregate.Aggregator
	Clipboard  aggregate.Clipboard
	Workspaces workspace.Factory
	Web        *web.Server
	Shutdown   *goo.ShutdownContext

	Stdout io.Writer `wire:"-"`
	Stderr io.Writer `wire:"-"`
}

// Run implements goo.Runner. An interrupt cancels the shutdown context, and
// the process exits only after Exec has returned, so the web server drains
// and the TUI restores the terminal.
func (app *App) Run() error {
	return app.Shutdown.BlockExit(func() error {
		err := app.Exec(app.Shutdown)
		if err != nil && app.Args.Pick != nil {
			// the TUI logger discards, so the failure would be lost
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	})
}

// Exec dispatches to the selected subcommand.
func (app *App) Exec(ctx context.Context) error {
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}

	args := app.Args
	switch {
	case args.Serve != nil:
		return app.Web.Run(ctx, app.Config.Server.Addr)
	case args.Pick != nil:
		return tui.Run(ctx, app.Workspaces(), args.Pick.Repo)
	case args.Ls != nil:
		return app.ls(ctx, args.Ls)
	case args.Out != nil:
		return app.out(ctx, args.Out)
	default:
		return fmt.Errorf("no subcommand specified, use 'serve', 'pick', 'ls', or 'out'")
	}
}

func (app *App) ls(ctx context.Context, cmd *LsCmd) error {
	repo, err := tree.ParseRepo(cmd.Repo)
	if err != nil {
		return err
	}
	root, err := app.Builder.Build(ctx, repo)
	if err != nil {
		return err
	}
	if err := render.WriteDiagram(app.Stdout, root); err != nil {
		return err
	}
	dirs, files := tree.Count(root)
	_, err = fmt.Fprintf(app.Stdout, "\n%d directories, %d files\n", dirs, files)
	return err
}

func (app *App) out(ctx context.Context, cmd *OutCmd) error {
	repo, err := tree.ParseRepo(cmd.Repo)
	if err != nil {
		return err
	}

	var root *tree.Node
	if cmd.All || len(cmd.Ext) > 0 {
		if root, err = app.Builder.Build(ctx, repo); err != nil {
			return err
		}
	}

	state := cmd.selection(root)
	res, err := app.Aggregator.Aggregate(ctx, repo, state.Selected.Values())
	if err != nil {
		return err
	}

	switch cmd.Output {
	case "-":
		if _, err := io.WriteString(app.Stdout, res.Text); err != nil {
			return err
		}
	case "":
		if err := app.Clipboard.WriteAll(res.Text); err != nil {
			return err
		}
		fmt.Fprintf(app.Stderr, "Copied %d files (%d tokens) to clipboard\n", len(res.Files), res.Tokens)
	default:
		if err := os.WriteFile(cmd.Output, []byte(res.Text), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(app.Stderr, "Wrote %d files (%d tokens) to %s\n", len(res.Files), res.Tokens, cmd.Output)
	}

	if cmd.Metrics && res.Tally != nil {
		return chart.Print(res.Tally, chart.DefaultOptions(termWidth, app.Stderr))
	}
	return nil
}

// selection applies --all, then --ext, then --path, in that order.
func (cmd *OutCmd) selection(root *tree.Node) selection.State {
	var st selection.State
	if cmd.All {
		for _, f := range tree.Files(root) {
			st = st.ToggleFile(f.Path, true)
		}
	}
	for _, ext := range cmd.Ext {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		st = st.ToggleExtension(root, ext, true)
	}
	for _, p := range cmd.Path {
		st = st.ToggleFile(strings.Trim(p, "/"), true)
	}
	return st
}

// termWidth returns the width of the terminal, or 80 as a fallback.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
