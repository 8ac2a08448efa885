// Package remote talks to a hosted-repository content API: one call lists a
// directory, one call fetches a file. Nothing is cached between calls.
package remote

import "context"

// Kind distinguishes directory entries from file entries.
type Kind string

const (
	KindDir  Kind = "dir"
	KindFile Kind = "file"
)

// Entry is one immediate child of a listed directory.
type Entry struct {
	Name string
	Path string
	Kind Kind
}

// Client is the content API consumed by the tree builder and the aggregator.
type Client interface {
	// ListDirectory returns the immediate entries of path ("" is the repository root).
	ListDirectory(ctx context.Context, owner, repo, path string) ([]Entry, error)
	// GetFileContent returns the decoded text of the file at path.
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
}
