package remote

import "errors"

var (
	// ErrNotFound is returned when the repository or path does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited is returned when the hosting API throttles the caller.
	ErrRateLimited = errors.New("rate limited by the hosting API")
	// ErrAuth is returned when credentials are missing or rejected.
	ErrAuth = errors.New("authentication required or rejected")
	// ErrDecode is returned when a file payload cannot be decoded as text.
	ErrDecode = errors.New("content is not decodable as text")
)
