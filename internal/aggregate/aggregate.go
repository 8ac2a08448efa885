// Package aggregate fetches selected files and joins them into one
// prompt-ready blob.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hayeah/repocat/internal/metrics"
	"github.com/hayeah/repocat/internal/remote"
	"github.com/hayeah/repocat/internal/tree"
	"golang.org/x/sync/errgroup"
)

// ErrEmptySelection is returned when there is nothing to aggregate.
var ErrEmptySelection = errors.New("no files selected")

// Separator closes every file block.
var Separator = strings.Repeat("=", 40)

// Header opens the block for path.
func Header(path string) string {
	return "File: " + path + "\n\n"
}

// FormatFile renders one file block.
func FormatFile(path, text string) string {
	return Header(path) + text + "\n\n" + Separator + "\n\n"
}

// Result is the outcome of one aggregation.
type Result struct {
	Text string
	// Files lists the aggregated paths in output order.
	Files []string
	// Tokens is the estimated token count of Text.
	Tokens int
	// Tally holds per-file measurements for breakdown charts.
	Tally *metrics.Tally
}

type Aggregator struct {
	Client remote.Client
	// Counter measures the output. Nil skips measurement.
	Counter metrics.Counter
	// Concurrency caps in-flight fetches. Zero means one goroutine per file.
	Concurrency int
	Logger      *slog.Logger
}

func NewAggregator(client remote.Client, counter metrics.Counter, log *slog.Logger) *Aggregator {
	return &Aggregator{Client: client, Counter: counter, Logger: log}
}

// Aggregate fetches every path concurrently and joins the blocks in the
// order of paths. Any fetch error fails the whole call with no output.
func (a *Aggregator) Aggregate(ctx context.Context, repo tree.Repo, paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, ErrEmptySelection
	}
	start := time.Now()

	texts := make([]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if a.Concurrency > 0 {
		g.SetLimit(a.Concurrency)
	}
	for i, p := range paths {
		g.Go(func() error {
			text, err := a.Client.GetFileContent(gctx, repo.Owner, repo.Name, p)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", p, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tally *metrics.Tally
	if a.Counter != nil {
		tally = metrics.NewTally(a.Counter, 4)
	}

	var b strings.Builder
	for i, p := range paths {
		b.WriteString(FormatFile(p, texts[i]))
		if tally != nil {
			tally.Add(metrics.KindFile, p, texts[i])
			tally.Add(metrics.KindFrame, "headers", Header(p)+"\n\n"+Separator+"\n\n")
		}
	}

	res := &Result{Text: b.String(), Files: append([]string(nil), paths...), Tally: tally}
	if tally != nil {
		tally.Wait()
		res.Tokens = tally.Total().Tokens
	}

	if a.Logger != nil {
		a.Logger.Info("aggregated files", "repo", repo.String(), "files", len(paths), "bytes", len(res.Text), "tokens", res.Tokens, "took", time.Since(start))
	}
	return res, nil
}
