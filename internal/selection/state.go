// Package selection holds which files the user picked and which extensions
// they filter by. Every operation is a pure reducer: it returns a new State
// and never mutates the receiver.
package selection

import (
	"slices"
	"strings"

	"github.com/hayeah/repocat/internal/tree"
)

// State is the user's selection over one tree.
type State struct {
	Selected Set
	// Filter holds extension suffixes such as ".go". Empty means every file
	// is selectable.
	Filter []string
}

// ToggleFile adds or removes one path. Paths are not checked against any
// tree; stale paths are tolerated.
func (s State) ToggleFile(path string, on bool) State {
	if on {
		s.Selected = s.Selected.With(path)
	} else {
		s.Selected = s.Selected.Without(path)
	}
	return s
}

// ToggleExtension adds or removes every file in root whose name ends with
// ext. It scans the whole tree regardless of the current filter and never
// selects directories.
func (s State) ToggleExtension(root *tree.Node, ext string, on bool) State {
	if ext == "" || root == nil {
		return s
	}
	sel := s.Selected
	for _, f := range tree.Files(root) {
		if !strings.HasSuffix(f.Name, ext) {
			continue
		}
		if on {
			sel = sel.With(f.Path)
		} else {
			sel = sel.Without(f.Path)
		}
	}
	s.Selected = sel
	return s
}

// SetExtensionFilter replaces the filter. Duplicates and empty entries are
// dropped; the selection is untouched.
func (s State) SetExtensionFilter(exts []string) State {
	var filter []string
	for _, e := range exts {
		if e == "" || slices.Contains(filter, e) {
			continue
		}
		filter = append(filter, e)
	}
	s.Filter = filter
	return s
}

// CheckExtension mirrors ticking an extension checkbox: ext joins or leaves
// the filter and every matching file is selected or deselected.
func (s State) CheckExtension(root *tree.Node, ext string, on bool) State {
	filter := slices.DeleteFunc(slices.Clone(s.Filter), func(e string) bool { return e == ext })
	if on {
		filter = append(filter, ext)
	}
	return s.SetExtensionFilter(filter).ToggleExtension(root, ext, on)
}

// FilterHas reports whether ext is in the filter.
func (s State) FilterHas(ext string) bool {
	return slices.Contains(s.Filter, ext)
}

// Selectable reports whether a file with this name may be checked.
func (s State) Selectable(name string) bool {
	if len(s.Filter) == 0 {
		return true
	}
	for _, e := range s.Filter {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}
