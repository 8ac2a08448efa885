package workspace

import (
	"context"
	"errors"

	"github.com/hayeah/repocat/internal/aggregate"
	"github.com/hayeah/repocat/internal/remote"
	"github.com/hayeah/repocat/internal/tree"
)

// Message maps err to the text shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, tree.ErrInvalidInput):
		return "Invalid repository URL. Use https://github.com/owner/repo or owner/repo."
	case errors.Is(err, remote.ErrNotFound):
		return "Repository or file not found."
	case errors.Is(err, remote.ErrRateLimited):
		return "GitHub rate limit exceeded. Set GITHUB_TOKEN or try again later."
	case errors.Is(err, remote.ErrAuth):
		return "GitHub refused the request. Check your token."
	case errors.Is(err, remote.ErrDecode):
		return "Could not decode a file: " + err.Error()
	case errors.Is(err, aggregate.ErrClipboard):
		return "Could not copy to the clipboard."
	case errors.Is(err, aggregate.ErrEmptySelection):
		return "Select at least one file first."
	case errors.Is(err, ErrNoRepository):
		return "Load a repository first."
	case errors.Is(err, ErrNoOutput):
		return "Process the selection before copying."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Request canceled."
	default:
		return err.Error()
	}
}
