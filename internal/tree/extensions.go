package tree

import (
	"sort"
	"strings"
)

// Extension returns everything from the last "." in name, e.g. ".go".
// Names without a dot, or ending in one, have no extension.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

// Extensions returns the distinct file extensions under root, sorted
// lexicographically with case preserved.
func Extensions(root *Node) []string {
	seen := make(map[string]bool)
	for _, f := range Files(root) {
		if ext := Extension(f.Name); ext != "" {
			seen[ext] = true
		}
	}

	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
