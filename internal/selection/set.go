package selection

// Set is an insertion-ordered set of file paths. The zero value is an empty
// set. With and Without return modified copies and leave the receiver intact,
// so a Set can be shared between snapshots.
type Set struct {
	order []string
	index map[string]struct{}
}

// NewSet returns a set holding paths in first-seen order.
func NewSet(paths ...string) Set {
	var s Set
	for _, p := range paths {
		s = s.With(p)
	}
	return s
}

// With returns a copy of s that also contains path. Adding a present path
// keeps its original position.
func (s Set) With(path string) Set {
	if s.Contains(path) {
		return s
	}
	out := s.clone(1)
	out.order = append(out.order, path)
	out.index[path] = struct{}{}
	return out
}

// Without returns a copy of s with path removed.
func (s Set) Without(path string) Set {
	if !s.Contains(path) {
		return s
	}
	out := Set{
		order: make([]string, 0, len(s.order)-1),
		index: make(map[string]struct{}, len(s.order)-1),
	}
	for _, p := range s.order {
		if p == path {
			continue
		}
		out.order = append(out.order, p)
		out.index[p] = struct{}{}
	}
	return out
}

func (s Set) Contains(path string) bool {
	_, ok := s.index[path]
	return ok
}

func (s Set) Len() int { return len(s.order) }

// Values returns the paths in insertion order. The slice is a copy.
func (s Set) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s Set) clone(extra int) Set {
	out := Set{
		order: make([]string, len(s.order), len(s.order)+extra),
		index: make(map[string]struct{}, len(s.order)+extra),
	}
	copy(out.order, s.order)
	for _, p := range s.order {
		out.index[p] = struct{}{}
	}
	return out
}
