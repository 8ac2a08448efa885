// Package tree mirrors a remote repository's file hierarchy in memory.
//
// A tree is built once per fetch and never mutated afterwards; a new fetch
// produces a new tree.
package tree

import "strings"

// Kind is either Dir or File.
type Kind string

const (
	Dir  Kind = "dir"
	File Kind = "file"
)

// Node is a directory or a file. Path is slash-separated and relative to the
// repository root; only the root has an empty Path.
type Node struct {
	Name     string
	Kind     Kind
	Path     string
	Children []*Node // nil for files
}

func (n *Node) IsDir() bool { return n.Kind == Dir }

// Walk calls fn for n and every descendant in pre-order.
func Walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Files returns every file node under root in pre-order.
func Files(root *Node) []*Node {
	var files []*Node
	Walk(root, func(n *Node) {
		if !n.IsDir() {
			files = append(files, n)
		}
	})
	return files
}

// Find returns the node at path, or nil.
func Find(root *Node, path string) *Node {
	if root == nil {
		return nil
	}
	if path == "" {
		return root
	}

	cur := root
	for _, name := range strings.Split(path, "/") {
		var next *Node
		for _, c := range cur.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Count returns the number of directories (excluding root) and files under root.
func Count(root *Node) (dirs, files int) {
	Walk(root, func(n *Node) {
		switch {
		case n == root:
		case n.IsDir():
			dirs++
		default:
			files++
		}
	})
	return dirs, files
}
