package tree

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Excluder prunes paths matching gitignore-style patterns before they are
// fetched. A nil Excluder matches nothing.
type Excluder struct {
	matcher gitignore.Matcher
}

// NewExcluder compiles patterns such as "node_modules/" or "*.lock". Blank
// lines and "#" comments are skipped. It returns nil when nothing remains.
func NewExcluder(patterns []string) *Excluder {
	var ps []gitignore.Pattern
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(p, nil))
	}
	if len(ps) == 0 {
		return nil
	}
	return &Excluder{matcher: gitignore.NewMatcher(ps)}
}

// Match reports whether the root-relative path is excluded.
func (e *Excluder) Match(path string, isDir bool) bool {
	if e == nil || path == "" {
		return false
	}
	return e.matcher.Match(strings.Split(path, "/"), isDir)
}
