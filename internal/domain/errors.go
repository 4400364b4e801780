package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrFetchFailed  = errors.New("upstream fetch failed")
	ErrStaleEpoch   = errors.New("stale polling epoch")
)
