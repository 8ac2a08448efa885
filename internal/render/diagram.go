package render

import (
	"fmt"
	"io"

	"github.com/hayeah/repocat/internal/tree"
)

// WriteDiagram writes root as an indented ASCII tree:
//
//	demo/
//	├── cmd/
//	│   └── main.go
//	└── README.md
func WriteDiagram(w io.Writer, root *tree.Node) error {
	if root == nil {
		return nil
	}
	if _, err := fmt.Fprintln(w, root.Name+"/"); err != nil {
		return err
	}
	return writeChildren(w, root, "")
}

func writeChildren(w io.Writer, node *tree.Node, prefix string) error {
	for i, child := range node.Children {
		last := i == len(node.Children)-1

		connector := "├── "
		if last {
			connector = "└── "
		}
		name := child.Name
		if child.IsDir() {
			name += "/"
		}
		if _, err := fmt.Fprintln(w, prefix+connector+name); err != nil {
			return err
		}

		if child.IsDir() {
			next := prefix + "│   "
			if last {
				next = prefix + "    "
			}
			if err := writeChildren(w, child, next); err != nil {
				return err
			}
		}
	}
	return nil
}
