// Package chart draws a Tally as an ASCII bar chart of tokens per file,
// folding directories that hold only a sliver of the total into "dir/**".
// Terminal width and output are injected.
package chart

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/hayeah/repocat/internal/metrics"
)

type Options struct {
	BarWidth     int // 0 picks 35% of the terminal, at most 30
	FillRune     rune
	ThresholdPct float64 // directories below this share collapse into dir/**
	TermWidth    func() int
	Writer       io.Writer
}

func DefaultOptions(termWidth func() int, w io.Writer) Options {
	return Options{
		FillRune:     '█',
		ThresholdPct: 1,
		TermWidth:    termWidth,
		Writer:       w,
	}
}

// Print writes the chart for t. It waits for t's workers first.
func Print(t *metrics.Tally, opt Options) error {
	t.Wait()
	items := t.Items()

	files, total, fileCount := fileTokens(items)
	root := buildDirTree(files)
	buckets := collapseSmall(root, total, opt.ThresholdPct)
	entries := withOtherKinds(buckets, items, total)

	for _, ln := range layout(entries, total, fileCount, opt) {
		if _, err := fmt.Fprintln(opt.Writer, ln); err != nil {
			return err
		}
	}
	return nil
}

type fileToken struct {
	Path   string
	Tokens int
}

// fileTokens returns per-file tokens and the total over every kind.
func fileTokens(items map[metrics.Key]metrics.Stat) ([]fileToken, int, int) {
	var (
		out   []fileToken
		total int
	)
	for k, s := range items {
		total += s.Tokens
		if k.Kind == metrics.KindFile {
			out = append(out, fileToken{Path: k.Name, Tokens: s.Tokens})
		}
	}
	return out, total, len(out)
}

type dirNode struct {
	Name     string
	IsFile   bool
	Tokens   int
	Children map[string]*dirNode
}

func buildDirTree(files []fileToken) *dirNode {
	root := &dirNode{Children: map[string]*dirNode{}}
	for _, f := range files {
		parts := strings.Split(f.Path, "/")
		cur := root
		for i, part := range parts {
			next, ok := cur.Children[part]
			if !ok {
				next = &dirNode{Name: part, IsFile: i == len(parts)-1, Children: map[string]*dirNode{}}
				cur.Children[part] = next
			}
			cur = next
		}
		cur.Tokens = f.Tokens
	}
	rollUp(root)
	return root
}

func rollUp(n *dirNode) int {
	if n.IsFile {
		return n.Tokens
	}
	sum := 0
	for _, c := range n.Children {
		sum += rollUp(c)
	}
	n.Tokens = sum
	return sum
}

type bucket struct {
	Label  string
	Tokens int
}

func collapseSmall(root *dirNode, total int, thresholdPct float64) []bucket {
	thresh := float64(total) * thresholdPct / 100

	var out []bucket
	var walk func(n *dirNode, dir string)
	walk = func(n *dirNode, dir string) {
		cur := dir
		if n != root {
			cur = path.Join(dir, n.Name)
		}
		if n.IsFile {
			out = append(out, bucket{Label: cur, Tokens: n.Tokens})
			return
		}

		small := 0
		for _, c := range n.Children {
			if float64(c.Tokens) < thresh {
				small += c.Tokens
				continue
			}
			walk(c, cur)
		}
		if small > 0 {
			out = append(out, bucket{Label: path.Join(cur, "**"), Tokens: small})
		}
	}
	walk(root, "")
	return out
}

type entry struct {
	Label  string
	Tokens int
	Pct    float64
}

// withOtherKinds appends one entry per non-file item, such as headers.
func withOtherKinds(buckets []bucket, items map[metrics.Key]metrics.Stat, total int) []entry {
	out := make([]entry, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, entry{Label: b.Label, Tokens: b.Tokens, Pct: pct(b.Tokens, total)})
	}
	for k, s := range items {
		if k.Kind == metrics.KindFile {
			continue
		}
		out = append(out, entry{Label: k.String(), Tokens: s.Tokens, Pct: pct(s.Tokens, total)})
	}
	return out
}

func layout(entries []entry, total, fileCount int, opt Options) []string {
	if len(entries) == 0 || total == 0 {
		return []string{"No tokens recorded"}
	}
	const pctW, tokensW, gapW = 6, 6, 2

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Tokens != entries[j].Tokens {
			return entries[i].Tokens < entries[j].Tokens
		}
		return entries[i].Label < entries[j].Label
	})

	width := 80
	if opt.TermWidth != nil {
		width = opt.TermWidth()
	}
	barW := opt.BarWidth
	if barW <= 0 {
		barW = min(int(float64(width)*0.35), 30)
	}
	keyW := max(width-(barW+pctW+tokensW+gapW*3), 8)

	maxTokens := 0
	for _, e := range entries {
		maxTokens = max(maxTokens, e.Tokens)
	}

	fill := opt.FillRune
	if fill == 0 {
		fill = '#'
	}

	var lines []string
	for _, e := range entries {
		barLen := 0
		if maxTokens > 0 {
			barLen = int(float64(e.Tokens)/float64(maxTokens)*float64(barW) + 0.5)
		}
		if barLen == 0 && e.Tokens > 0 {
			barLen = 1
		}
		bar := strings.Repeat(string(fill), barLen)
		lines = append(lines, fmt.Sprintf("%-*s  %5.1f%%  %*d  %s",
			barW, bar, e.Pct, tokensW, e.Tokens, trimLeft(e.Label, keyW)))
	}

	lines = append(lines, fmt.Sprintf("%-*s  %5.1f%%  %*d  %s",
		barW, strings.Repeat("─", barW), 100.0, tokensW, total, "TOTAL"))
	lines = append(lines, fmt.Sprintf("\nSummary: %d files, %d tokens", fileCount, total))
	return lines
}

func trimLeft(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
