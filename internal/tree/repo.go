package tree

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidInput is returned when a repository reference cannot be parsed.
var ErrInvalidInput = errors.New("invalid repository: expected https://<host>/<owner>/<repo>")

// Repo identifies a repository on the hosting service.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string { return r.Owner + "/" + r.Name }

// IsZero reports whether r is unset.
func (r Repo) IsZero() bool { return r.Owner == "" && r.Name == "" }

// ParseRepo accepts a repository URL such as https://github.com/owner/repo or
// a bare "owner/repo" reference. A URL names the repository by its first two
// path segments, so links like .../owner/repo/tree/main or
// .../owner/repo/blob/main/README.md work too. A bare reference must hold
// exactly two segments. A trailing ".git" or "/" is ignored.
func ParseRepo(input string) (Repo, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Repo{}, ErrInvalidInput
	}

	path := s
	isURL := strings.Contains(s, "://")
	if isURL {
		u, err := url.Parse(s)
		if err != nil {
			return Repo{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		path = u.Path
	}

	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")

	parts := strings.Split(path, "/")
	if isURL && len(parts) > 2 {
		parts = parts[:2]
	}
	if len(parts) != 2 {
		return Repo{}, fmt.Errorf("%w: %q", ErrInvalidInput, input)
	}
	owner, name := parts[0], strings.TrimSuffix(parts[1], ".git")
	if owner == "" || name == "" {
		return Repo{}, fmt.Errorf("%w: %q", ErrInvalidInput, input)
	}
	return Repo{Owner: owner, Name: name}, nil
}
