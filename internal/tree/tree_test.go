package tree

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/hayeah/repocat/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(files ...string) *remote.InMem {
	m := remote.NewInMem()
	for _, f := range files {
		m.SetFile("octo", "demo", f, "content of "+f)
	}
	return m
}

func paths(root *Node) []string {
	var out []string
	Walk(root, func(n *Node) {
		if n != root {
			out = append(out, n.Path)
		}
	})
	return out
}

func TestParseRepo(t *testing.T) {
	valid := map[string]Repo{
		"https://github.com/octo/demo":      {Owner: "octo", Name: "demo"},
		"https://github.com/octo/demo/":     {Owner: "octo", Name: "demo"},
		"https://github.com/octo/demo.git":  {Owner: "octo", Name: "demo"},
		"http://ghe.example.com/team/tools": {Owner: "team", Name: "tools"},
		"octo/demo":                         {Owner: "octo", Name: "demo"},
		"  octo/demo  ":                     {Owner: "octo", Name: "demo"},
		"octo/demo.git":                     {Owner: "octo", Name: "demo"},

		"https://github.com/octo/demo/tree/main":                 {Owner: "octo", Name: "demo"},
		"https://github.com/octo/demo/blob/main/src/app.go":      {Owner: "octo", Name: "demo"},
		"https://github.com/octo/demo.git/tree/feature/x":        {Owner: "octo", Name: "demo"},
		"https://github.com/octo/demo/pulls?q=is%3Aopen#results": {Owner: "octo", Name: "demo"},
	}
	for input, want := range valid {
		got, err := ParseRepo(input)
		assert.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	invalid := []string{
		"",
		"octo",
		"https://github.com/octo",
		"https://github.com/",
		"octo/demo/tree/main",
		"octo//demo",
		"https://github.com/octo/.git",
		"/demo",
		"https://github.com//demo",
	}
	for _, input := range invalid {
		_, err := ParseRepo(input)
		assert.ErrorIs(t, err, ErrInvalidInput, input)
	}
}

func TestBuilder_Build(t *testing.T) {
	assert := assert.New(t)

	client := seed(
		"README.md",
		"cmd/app/main.go",
		"internal/a.go",
		"internal/b.go",
		"internal/deep/x/y/z.txt",
	)
	b := NewBuilder(client, 2, nil, nil)

	root, err := b.Build(context.Background(), Repo{Owner: "octo", Name: "demo"})
	require.NoError(t, err)

	assert.Equal("demo", root.Name)
	assert.Equal("", root.Path)
	assert.True(root.IsDir())

	// Every node exactly once, children in listing order, root-relative paths.
	assert.Equal([]string{
		"README.md",
		"cmd",
		"cmd/app",
		"cmd/app/main.go",
		"internal",
		"internal/a.go",
		"internal/b.go",
		"internal/deep",
		"internal/deep/x",
		"internal/deep/x/y",
		"internal/deep/x/y/z.txt",
	}, paths(root))

	z := Find(root, "internal/deep/x/y/z.txt")
	require.NotNil(t, z)
	assert.Equal("z.txt", z.Name)
	assert.Equal(File, z.Kind)
	assert.Nil(z.Children)

	dirs, files := Count(root)
	assert.Equal(6, dirs)
	assert.Equal(5, files)

	// One listing per directory, including the root.
	var lists []string
	for _, c := range client.Calls() {
		lists = append(lists, c)
	}
	sort.Strings(lists)
	assert.Equal([]string{
		"list:octo/demo/",
		"list:octo/demo/cmd",
		"list:octo/demo/cmd/app",
		"list:octo/demo/internal",
		"list:octo/demo/internal/deep",
		"list:octo/demo/internal/deep/x",
		"list:octo/demo/internal/deep/x/y",
	}, lists)
}

func TestBuilder_OrderIndependentOfCompletion(t *testing.T) {
	assert := assert.New(t)

	client := seed("a/1.txt", "b/2.txt", "c/3.txt")
	release := client.Hold("octo", "demo", "a")

	// Let b and c finish first, then release a.
	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	root, err := NewBuilder(client, 0, nil, nil).Build(context.Background(), Repo{Owner: "octo", Name: "demo"})
	require.NoError(t, err)
	assert.Equal([]string{"a", "a/1.txt", "b", "b/2.txt", "c", "c/3.txt"}, paths(root))
}

func TestBuilder_PropagatesFirstError(t *testing.T) {
	assert := assert.New(t)

	client := seed("ok/a.txt", "broken/b.txt")
	client.SetError("octo", "demo", "broken", remote.ErrRateLimited)

	root, err := NewBuilder(client, 0, nil, nil).Build(context.Background(), Repo{Owner: "octo", Name: "demo"})
	assert.Nil(root)
	assert.ErrorIs(err, remote.ErrRateLimited)

	_, err = NewBuilder(client, 0, nil, nil).Build(context.Background(), Repo{Owner: "octo", Name: "missing"})
	assert.ErrorIs(err, remote.ErrNotFound)
}

func TestBuilder_Exclude(t *testing.T) {
	assert := assert.New(t)

	client := seed("src/a.go", "node_modules/pkg/index.js", "go.sum", "docs/x.md")
	b := NewBuilder(client, 0, NewExcluder([]string{"# deps", "node_modules/", "*.sum", ""}), nil)

	root, err := b.Build(context.Background(), Repo{Owner: "octo", Name: "demo"})
	require.NoError(t, err)
	assert.Equal([]string{"docs", "docs/x.md", "src", "src/a.go"}, paths(root))

	for _, c := range client.Calls() {
		assert.NotContains(c, "node_modules", "excluded directories are never listed")
	}
}

func TestNewExcluder_Empty(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(NewExcluder(nil))
	assert.Nil(NewExcluder([]string{" ", "# only a comment"}))

	var e *Excluder
	assert.False(e.Match("anything", false))
}

func TestExtensions(t *testing.T) {
	assert := assert.New(t)

	root := &Node{Name: "demo", Kind: Dir, Children: []*Node{
		{Name: "a.ts", Path: "a.ts", Kind: File},
		{Name: "b.ts", Path: "b.ts", Kind: File},
		{Name: "c", Path: "c", Kind: File},
		{Name: "readme.MD", Path: "readme.MD", Kind: File},
		{Name: "lib.d", Path: "lib.d", Kind: Dir, Children: []*Node{
			{Name: "archive.tar.gz", Path: "lib.d/archive.tar.gz", Kind: File},
			{Name: "Makefile.", Path: "lib.d/Makefile.", Kind: File},
			{Name: ".gitignore", Path: "lib.d/.gitignore", Kind: File},
		}},
	}}

	assert.Equal([]string{".MD", ".gitignore", ".gz", ".ts"}, Extensions(root))
	assert.Equal(Extensions(root), Extensions(root), "idempotent")
	assert.Empty(Extensions(nil))
}

func TestFind(t *testing.T) {
	assert := assert.New(t)

	client := seed("a/b/c.txt")
	root, err := NewBuilder(client, 0, nil, nil).Build(context.Background(), Repo{Owner: "octo", Name: "demo"})
	assert.NoError(err)

	assert.Same(root, Find(root, ""))
	assert.Equal("a/b", Find(root, "a/b").Path)
	assert.Nil(Find(root, "a/x"))
	assert.Nil(Find(nil, "a"))
}

func TestBuilder_ContextCanceled(t *testing.T) {
	client := seed("a/1.txt")
	client.Hold("octo", "demo", "a")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewBuilder(client, 1, nil, nil).Build(ctx, Repo{Owner: "octo", Name: "demo"})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
