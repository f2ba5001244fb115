package workspacecache

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the retrieval and registration paths. Callers
// match them with errors.Is; wrapped transport causes stay reachable through
// errors.Unwrap.
var (
	// ErrNotFound reports a fetch that nominally succeeded but resolved no
	// entity.
	ErrNotFound = errors.New("workspacecache: entity not found")

	// ErrViewNotFound reports publish metadata requested for a view that is
	// not published. It wraps ErrNotFound.
	ErrViewNotFound = fmt.Errorf("%w: view not published", ErrNotFound)

	// ErrUserNotFound reports a user-scoped operation attempted without a
	// signed-in identity.
	ErrUserNotFound = errors.New("workspacecache: user not found")

	// ErrFetchFailed wraps a network fetch failure surfaced by a retrieval.
	ErrFetchFailed = errors.New("workspacecache: fetch failed")

	// ErrEmptyKey reports a retrieval attempted with an empty entity key.
	ErrEmptyKey = errors.New("workspacecache: empty entity key")

	// ErrRegistrarClosed reports a registration attempted after Close.
	ErrRegistrarClosed = errors.New("workspacecache: registrar closed")
)
