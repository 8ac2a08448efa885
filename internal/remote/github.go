package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gogithub "github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"
)

const defaultAPIURL = "https://api.github.com"

// Options configures a GitHub client. Everything the client needs is passed
// in here; the process environment is never consulted.
type Options struct {
	// Token is an optional bearer token for private repositories and higher rate limits.
	Token string
	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise or a mock server.
	BaseURL string
	// HTTPClient is the transport used for requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// GitHub implements Client on top of the GitHub contents API.
type GitHub struct {
	gh  *gogithub.Client
	log *slog.Logger
}

// NewGitHub creates a GitHub client from opts.
func NewGitHub(opts Options) (*GitHub, error) {
	httpClient := opts.HTTPClient
	if opts.Token != "" {
		ctx := context.Background()
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	c := gogithub.NewClient(httpClient)
	if opts.BaseURL != "" && opts.BaseURL != defaultAPIURL {
		u, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse github base url %q: %w", opts.BaseURL, err)
		}
		c.BaseURL = u
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &GitHub{gh: c, log: log}, nil
}

// ListDirectory returns the immediate children of path.
func (g *GitHub) ListDirectory(ctx context.Context, owner, repo, path string) ([]Entry, error) {
	g.log.Debug("list directory", "owner", owner, "repo", repo, "path", path)

	file, dir, _, err := g.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, classify(fmt.Sprintf("list %s/%s/%s", owner, repo, path), err)
	}

	// A file path lists as itself.
	if file != nil {
		return []Entry{toEntry(file)}, nil
	}

	entries := make([]Entry, 0, len(dir))
	for _, rc := range dir {
		entries = append(entries, toEntry(rc))
	}
	return entries, nil
}

// GetFileContent fetches one file and decodes its base64 payload.
func (g *GitHub) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	g.log.Debug("get file content", "owner", owner, "repo", repo, "path", path)

	file, _, _, err := g.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return "", classify(fmt.Sprintf("get %s/%s/%s", owner, repo, path), err)
	}
	if file == nil {
		return "", fmt.Errorf("get %s: %w: path is a directory", path, ErrDecode)
	}

	text, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode %s: %w: %w", path, ErrDecode, err)
	}
	return decodeText(path, text)
}

func toEntry(rc *gogithub.RepositoryContent) Entry {
	kind := KindFile
	if rc.GetType() == "dir" {
		kind = KindDir
	}
	return Entry{Name: rc.GetName(), Path: rc.GetPath(), Kind: kind}
}

// classify maps go-github errors onto the package's error taxonomy.
func classify(op string, err error) error {
	var rateErr *gogithub.RateLimitError
	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w: %w", op, ErrRateLimited, err)
	}

	var respErr *gogithub.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		resp := respErr.Response
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case resp.StatusCode == http.StatusTooManyRequests,
			resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
			return fmt.Errorf("%s: %w: %w", op, ErrRateLimited, err)
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%s: %w: %w", op, ErrAuth, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
