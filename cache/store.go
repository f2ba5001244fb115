package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidResultType is returned by Fetch when a stored value cannot be
// asserted to the requested type.
var ErrInvalidResultType = errors.New("cache: result type does not match requested type")

// Strategy selects how Store.Fetch consults the stored value for a key.
type Strategy uint8

const (
	// CacheFirst serves the stored value when one exists and only invokes
	// the fetch function on a miss, storing its result.
	CacheFirst Strategy = iota

	// CacheAndNetwork always invokes the fetch function and stores its
	// result, regardless of any stored value.
	CacheAndNetwork
)

// String returns the strategy name used in logs and error messages.
func (s Strategy) String() string {
	switch s {
	case CacheFirst:
		return "cache_first"
	case CacheAndNetwork:
		return "cache_and_network"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// KeySerializer builds a cache key from an entity class + identifying args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(class string, args ...any) string
}

// FetchFn is the function signature Store expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Store exposes the keyed storage operations the retrieval layer depends on.
// It is exported so that other packages can provide alternate cache backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Fetch resolves the value for key according to strategy, invoking
	// fetchFn whenever the strategy requires the source of truth.
	Fetch(ctx context.Context, key string, strategy Strategy, fetchFn FetchFn[any]) (any, error)

	// Delete removes the stored record for key, if any.
	Delete(ctx context.Context, key string) error

	// Has reports whether a record is currently stored for key.
	Has(key string) bool
}

// Fetch is a type-safe wrapper function that provides generic support for Store.
func Fetch[T any](ctx context.Context, store Store, key string, strategy Strategy, fetchFn FetchFn[T]) (T, error) {
	result, err := store.Fetch(ctx, key, strategy, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if result == nil {
		// A nil interface cannot be asserted; return the zero value so
		// callers with interface or pointer types get their nil back.
		var zero T
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: got %T", ErrInvalidResultType, result)
	}
	return typed, nil
}
