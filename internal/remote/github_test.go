package remote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContent struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Encoding string `json:"encoding,omitempty"`
	Content  string `json:"content,omitempty"`
}

// newFakeAPI serves GET /repos/octo/demo/contents/<path> from routes.
func newFakeAPI(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	const prefix = "/repos/octo/demo/contents/"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
		h, ok := routes[strings.TrimPrefix(r.URL.Path, prefix)]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func fileBody(path, text string) fakeContent {
	// GitHub wraps base64 at 60 columns; keep a newline in the payload.
	enc := base64.StdEncoding.EncodeToString([]byte(text))
	if len(enc) > 8 {
		enc = enc[:8] + "\n" + enc[8:]
	}
	return fakeContent{Type: "file", Name: baseName(path), Path: path, Encoding: "base64", Content: enc}
}

func newTestGitHub(t *testing.T, srv *httptest.Server, token string) *GitHub {
	t.Helper()
	gh, err := NewGitHub(Options{BaseURL: srv.URL, Token: token})
	require.NoError(t, err)
	return gh
}

func TestGitHub_ListDirectory(t *testing.T) {
	assert := assert.New(t)

	srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, []fakeContent{
				{Type: "file", Name: "README.md", Path: "README.md"},
				{Type: "dir", Name: "src", Path: "src"},
				{Type: "symlink", Name: "link", Path: "link"},
			})
		},
	})

	entries, err := newTestGitHub(t, srv, "").ListDirectory(context.Background(), "octo", "demo", "")
	assert.NoError(err)
	assert.Equal([]Entry{
		{Name: "README.md", Path: "README.md", Kind: KindFile},
		{Name: "src", Path: "src", Kind: KindDir},
		{Name: "link", Path: "link", Kind: KindFile},
	}, entries)
}

func TestGitHub_SendsBearerToken(t *testing.T) {
	assert := assert.New(t)

	var auth string
	srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"": func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			writeJSON(w, []fakeContent{})
		},
	})

	_, err := newTestGitHub(t, srv, "s3cret").ListDirectory(context.Background(), "octo", "demo", "")
	assert.NoError(err)
	assert.Equal("Bearer s3cret", auth)
}

func TestGitHub_GetFileContent(t *testing.T) {
	assert := assert.New(t)

	srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"src/main.go": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, fileBody("src/main.go", "package main\n\nfunc main() {}\n"))
		},
	})

	text, err := newTestGitHub(t, srv, "").GetFileContent(context.Background(), "octo", "demo", "src/main.go")
	assert.NoError(err)
	assert.Equal("package main\n\nfunc main() {}\n", text)
}

func TestGitHub_ErrorTaxonomy(t *testing.T) {
	status := func(code int, header map[string]string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			for k, v := range header {
				w.Header().Set(k, v)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
		}
	}

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{"not found", status(http.StatusNotFound, nil), ErrNotFound},
		{"unauthorized", status(http.StatusUnauthorized, nil), ErrAuth},
		{"forbidden", status(http.StatusForbidden, nil), ErrAuth},
		{"rate limited", status(http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0"}), ErrRateLimited},
		{"too many requests", status(http.StatusTooManyRequests, nil), ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeAPI(t, map[string]http.HandlerFunc{"": tt.handler})
			_, err := newTestGitHub(t, srv, "").ListDirectory(context.Background(), "octo", "demo", "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGitHub_DecodeErrors(t *testing.T) {
	srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"bad.txt": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, fakeContent{Type: "file", Name: "bad.txt", Path: "bad.txt", Encoding: "base64", Content: "!!not base64!!"})
		},
		"big.bin": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, fakeContent{Type: "file", Name: "big.bin", Path: "big.bin", Encoding: "none"})
		},
		"logo.png": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, fileBody("logo.png", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x10\x00\x00\x00\x10\x08\x06\x00\x00\x00"))
		},
		"src": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, []fakeContent{{Type: "file", Name: "a.go", Path: "src/a.go"}})
		},
	})
	gh := newTestGitHub(t, srv, "")

	for _, path := range []string{"bad.txt", "big.bin", "logo.png", "src"} {
		t.Run(path, func(t *testing.T) {
			_, err := gh.GetFileContent(context.Background(), "octo", "demo", path)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDecodeText(t *testing.T) {
	assert := assert.New(t)

	text, err := decodeText("empty", "")
	assert.NoError(err)
	assert.Equal("", text)

	text, err = decodeText("hello.txt", "hello, 世界\n\ttabs too")
	assert.NoError(err)
	assert.Equal("hello, 世界\n\ttabs too", text)

	text, err = decodeText("latin1.txt", "caf\xe9")
	assert.NoError(err)
	assert.Equal("caf\uFFFD", text)

	_, err = decodeText("blob", "ab\x00cd")
	assert.ErrorIs(err, ErrDecode)
	assert.ErrorContains(err, "blob")

	// Only the head is sniffed.
	late := strings.Repeat("a", sniffLen) + "\x00"
	_, err = decodeText("late.txt", late)
	assert.NoError(err)
}
