package remote

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// InMem is an in-memory Client for tests and offline demos.
type InMem struct {
	mu    sync.Mutex
	files map[string]map[string]string // "owner/repo" -> path -> content
	errs  map[string]error             // "owner/repo/path" -> injected error
	holds map[string]chan struct{}     // "owner/repo/path" -> gate
	calls []string
}

// NewInMem creates an empty InMem client.
func NewInMem() *InMem {
	return &InMem{
		files: make(map[string]map[string]string),
		errs:  make(map[string]error),
		holds: make(map[string]chan struct{}),
	}
}

// SetFile seeds a file. Parent directories exist implicitly.
func (m *InMem) SetFile(owner, repo, path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := owner + "/" + repo
	if m.files[key] == nil {
		m.files[key] = make(map[string]string)
	}
	m.files[key][path] = content
}

// SetError makes every call for owner/repo/path fail with err.
func (m *InMem) SetError(owner, repo, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[owner+"/"+repo+"/"+path] = err
}

// Hold blocks calls for owner/repo/path until the returned release func is
// called or the call's context is done.
func (m *InMem) Hold(owner, repo, path string) (release func()) {
	ch := make(chan struct{})
	m.mu.Lock()
	m.holds[owner+"/"+repo+"/"+path] = ch
	m.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Calls returns every call made so far as "list:owner/repo/path" or "get:owner/repo/path".
func (m *InMem) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *InMem) enter(ctx context.Context, op, owner, repo, path string) error {
	key := owner + "/" + repo + "/" + path

	m.mu.Lock()
	m.calls = append(m.calls, op+":"+key)
	gate := m.holds[key]
	err := m.errs[key]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// ListDirectory returns the immediate children of path, sorted by name.
func (m *InMem) ListDirectory(ctx context.Context, owner, repo, path string) ([]Entry, error) {
	if err := m.enter(ctx, "list", owner, repo, path); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	files, ok := m.files[owner+"/"+repo]
	if !ok {
		return nil, fmt.Errorf("list %s/%s: %w", owner, repo, ErrNotFound)
	}
	if _, isFile := files[path]; isFile {
		return []Entry{{Name: baseName(path), Path: path, Kind: KindFile}}, nil
	}

	prefix := ""
	if path != "" {
		prefix = path + "/"
	}

	seen := make(map[string]bool)
	var entries []Entry
	for filePath := range files {
		if !strings.HasPrefix(filePath, prefix) {
			continue
		}
		name, rest, nested := strings.Cut(filePath[len(prefix):], "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		kind := KindFile
		if nested && rest != "" {
			kind = KindDir
		}
		entries = append(entries, Entry{Name: name, Path: prefix + name, Kind: kind})
	}

	if path != "" && len(entries) == 0 {
		return nil, fmt.Errorf("list %s/%s/%s: %w", owner, repo, path, ErrNotFound)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// GetFileContent returns the seeded content of path.
func (m *InMem) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	if err := m.enter(ctx, "get", owner, repo, path); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	content, ok := m.files[owner+"/"+repo][path]
	if !ok {
		return "", fmt.Errorf("get %s/%s/%s: %w", owner, repo, path, ErrNotFound)
	}
	return decodeText(path, content)
}

func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
