package selection

import (
	"testing"

	"github.com/hayeah/repocat/internal/tree"
	"github.com/stretchr/testify/assert"
)

func file(path string) *tree.Node {
	name := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			name = path[i+1:]
			break
		}
	}
	return &tree.Node{Name: name, Path: path, Kind: tree.File}
}

func sampleTree() *tree.Node {
	return &tree.Node{Name: "demo", Kind: tree.Dir, Children: []*tree.Node{
		file("a.ts"),
		{Name: "src", Path: "src", Kind: tree.Dir, Children: []*tree.Node{
			file("src/b.ts"),
			file("src/c.ts"),
			file("src/d.go"),
		}},
		file("README.md"),
	}}
}

func TestSet(t *testing.T) {
	assert := assert.New(t)

	s := NewSet("b", "a", "b")
	assert.Equal([]string{"b", "a"}, s.Values())
	assert.Equal(2, s.Len())

	s2 := s.With("c").With("a")
	assert.Equal([]string{"b", "a", "c"}, s2.Values())
	assert.Equal([]string{"b", "a"}, s.Values(), "receiver untouched")

	s3 := s2.Without("a")
	assert.Equal([]string{"b", "c"}, s3.Values())
	assert.True(s2.Contains("a"))
	assert.False(s3.Contains("a"))

	var zero Set
	assert.Equal(0, zero.Len())
	assert.False(zero.Contains("x"))
	assert.Equal(zero, zero.Without("x"))
	assert.Equal([]string{"x"}, zero.With("x").Values())
}

func TestToggleFile(t *testing.T) {
	assert := assert.New(t)

	var s State
	s1 := s.ToggleFile("a.ts", true).ToggleFile("src/d.go", true)
	assert.Equal([]string{"a.ts", "src/d.go"}, s1.Selected.Values())
	assert.Equal(0, s.Selected.Len())

	s2 := s1.ToggleFile("a.ts", false)
	assert.Equal([]string{"src/d.go"}, s2.Selected.Values())

	// Toggling twice restores the original selection.
	assert.Equal(s1.Selected.Values(), s1.ToggleFile("x", true).ToggleFile("x", false).Selected.Values())

	// Unknown paths are tolerated.
	assert.True(s.ToggleFile("gone/away.txt", true).Selected.Contains("gone/away.txt"))
}

func TestToggleExtension(t *testing.T) {
	assert := assert.New(t)
	root := sampleTree()

	s := State{}.ToggleFile("README.md", true).ToggleExtension(root, ".ts", true)
	assert.Equal([]string{"README.md", "a.ts", "src/b.ts", "src/c.ts"}, s.Selected.Values())

	off := s.ToggleExtension(root, ".ts", false)
	assert.Equal([]string{"README.md"}, off.Selected.Values())

	assert.Equal(s, s.ToggleExtension(root, "", true), "empty extension is a no-op")
	assert.Equal(s, s.ToggleExtension(nil, ".ts", true))

	// Directories are never selected, even when their name matches.
	withDir := &tree.Node{Name: "demo", Kind: tree.Dir, Children: []*tree.Node{
		{Name: "pkg.go", Path: "pkg.go", Kind: tree.Dir, Children: []*tree.Node{file("pkg.go/x.go")}},
	}}
	assert.Equal([]string{"pkg.go/x.go"}, State{}.ToggleExtension(withDir, ".go", true).Selected.Values())
}

func TestToggleExtension_IgnoresFilter(t *testing.T) {
	s := State{}.SetExtensionFilter([]string{".md"}).ToggleExtension(sampleTree(), ".go", true)
	assert.Equal(t, []string{"src/d.go"}, s.Selected.Values())
}

func TestSelectable(t *testing.T) {
	assert := assert.New(t)

	var s State
	assert.True(s.Selectable("anything"))

	s = s.SetExtensionFilter([]string{".ts", ".md", ".ts", ""})
	assert.Equal([]string{".ts", ".md"}, s.Filter)
	assert.True(s.Selectable("a.ts"))
	assert.True(s.Selectable("README.md"))
	assert.False(s.Selectable("d.go"))
	assert.True(s.FilterHas(".md"))
	assert.False(s.FilterHas(".go"))
}

func TestCheckExtension(t *testing.T) {
	assert := assert.New(t)
	root := sampleTree()

	s := State{}.CheckExtension(root, ".ts", true)
	assert.Equal([]string{".ts"}, s.Filter)
	assert.Equal(3, s.Selected.Len())
	assert.False(s.Selectable("d.go"))

	s = s.CheckExtension(root, ".go", true)
	assert.Equal([]string{".ts", ".go"}, s.Filter)
	assert.Equal(4, s.Selected.Len())

	s = s.CheckExtension(root, ".ts", false)
	assert.Equal([]string{".go"}, s.Filter)
	assert.Equal([]string{"src/d.go"}, s.Selected.Values())
}
