package feed

import "errors"

var (
	ErrNotFound    = errors.New("no data for this symbol")
	ErrRateLimited = errors.New("rate limited by feed")
	ErrAuthFailed  = errors.New("feed authentication failed")
)
