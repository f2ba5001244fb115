// Package cache provides the storage contracts and key serialization the
// workspace retrieval layer is built on.
//
// # Overview
//
// This package exports two main interfaces and their supporting pieces:
//
//   - Store: keyed storage with strategy-controlled fetching
//   - KeySerializer: builds stable cache keys from an entity class and args
//
// The package is designed to work with retrieval orchestrators that decide a
// fetch strategy per key while remaining agnostic of the storage backend.
//
// # Fetch Strategies
//
// Store.Fetch takes an explicit Strategy so the caller owns the policy and
// the store owns the mechanics:
//
//   - CacheFirst serves a stored value when present and only invokes the
//     fetch function on a miss, storing its result.
//   - CacheAndNetwork always invokes the fetch function and stores the
//     result, regardless of any stored value.
//
// # Basic Usage
//
// The Store interface operates on untyped values; the package-level Fetch
// function restores type safety through generics:
//
//	view, err := cache.Fetch(ctx, store, "published_view::ns1_note", cache.CacheFirst,
//		func(ctx context.Context) (PublishedView, error) {
//			return client.FetchPublishedView(ctx, "ns1", "note")
//		})
//
// A nil interface result maps to the zero value of the requested type; a
// stored value of the wrong type surfaces as ErrInvalidResultType rather
// than a panic.
//
// # Key Serialization
//
// The default key serializer joins the entity class and its identifying
// arguments with "::". Strings pass through untouched so domain-composed
// keys stay readable; other argument kinds get deterministic textual forms.
// Equal inputs always produce equal keys, which the retrieval layer relies
// on when it re-derives a key for invalidation.
//
// Custom serializers can be provided for alternate layouts or namespacing:
//
//	type versionedKeys struct{ version string }
//
//	func (s *versionedKeys) SerializeKey(class string, args ...any) string {
//		// prepend s.version, then serialize as usual
//	}
//
// # Configuration
//
// Config carries the tuning surface of the default store backend: capacity,
// sharding, TTL, eviction, early refresh, and missing-record storage.
// DefaultConfig returns working defaults, FromEnv overlays WORKSPACE_CACHE_*
// environment variables on top of them, and Validate rejects invalid
// combinations with a ConfigError naming the offending field.
//
// # See Also
//
// For the retrieval orchestration built on these contracts, see the
// workspacecache package. For the sturdyc-backed Store, see
// internal/cacheinfra.
package cache
