// Package render projects a tree and a selection onto what a surface draws:
// the visible rows of the file browser, or a plain ASCII diagram.
package render

import (
	"github.com/hayeah/repocat/internal/selection"
	"github.com/hayeah/repocat/internal/tree"
)

// Expansion tracks which directories are collapsed. Directories are expanded
// unless recorded otherwise. The zero value expands everything.
type Expansion struct {
	collapsed map[string]bool
}

// Expanded reports whether the directory at path shows its children.
func (e Expansion) Expanded(path string) bool {
	return !e.collapsed[path]
}

// Toggle returns a copy of e with the directory at path flipped.
func (e Expansion) Toggle(path string) Expansion {
	out := Expansion{collapsed: make(map[string]bool, len(e.collapsed)+1)}
	for p, c := range e.collapsed {
		out.collapsed[p] = c
	}
	if out.collapsed[path] {
		delete(out.collapsed, path)
	} else {
		out.collapsed[path] = true
	}
	return out
}

// Row is one visible line of the browser.
type Row struct {
	Node  *tree.Node
	Depth int
	// Expanded is meaningful only for directories.
	Expanded bool
	// Selectable is false for directories and for files the filter hides;
	// such rows are drawn without a checkbox.
	Selectable bool
	Checked    bool
}

// Rows flattens root into visible rows in pre-order, root first at depth 0.
// Children of collapsed directories are skipped entirely.
func Rows(root *tree.Node, state selection.State, exp Expansion) []Row {
	if root == nil {
		return nil
	}
	var rows []Row
	var visit func(n *tree.Node, depth int)
	visit = func(n *tree.Node, depth int) {
		row := Row{Node: n, Depth: depth}
		if n.IsDir() {
			row.Expanded = exp.Expanded(n.Path)
		} else {
			row.Selectable = state.Selectable(n.Name)
			row.Checked = state.Selected.Contains(n.Path)
		}
		rows = append(rows, row)

		if !row.Expanded {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(root, 0)
	return rows
}
