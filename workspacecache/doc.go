// Package workspacecache provides load-state-aware retrieval caching for
// collaborative workspace entities, with self-healing invalidation when
// fetches fail.
//
// # Overview
//
// The package centers on two session-scoped components:
//
//   - Service: orchestrates entity retrieval through a cache.Store, tracks
//     which keys resolved successfully this session, and keeps publish
//     metadata coherent across mutations.
//   - Registrar: attaches live collaborative documents to a sync channel
//     and tracks the bindings so re-registration replaces instead of
//     duplicating.
//
// Both consume collaborator contracts (Transport, SyncTransport,
// IdentityProvider) rather than implementing any network behaviour
// themselves. All state is in-memory and dies with the session.
//
// # Retrieval Policy
//
// The first retrieval of a key in a session uses CacheAndNetwork: any cached
// copy may predate the session, so a fresh copy is always fetched. Once a
// key has resolved successfully, later retrievals use CacheFirst and accept
// staleness within the session in exchange for latency. The policy is
// per-key and per-class; it is not persisted.
//
// # Self-Healing Invalidation
//
// When a fetch fails, the failure is returned to the caller immediately. If
// a stored record exists for the key, a background task drops the key from
// the loaded registry and deletes the record, so the next retrieval goes
// back to the network instead of serving a suspect copy. Cleanups are
// bounded and joined by Close.
//
// # Publish Metadata
//
// PublishInfo records are cached per view and never expire by time. Any
// mutation that could change a record (publish, unpublish, config change,
// namespace rename, homepage change) drops the affected records before the
// mutation is sent, so concurrent readers cannot re-validate a record that
// is about to change.
//
// # Basic Usage
//
//	container, err := di.NewContainerWithDefaults()
//	if err != nil { ... }
//
//	svc := container.NewService(transport,
//		workspacecache.WithIdentityProvider(auth))
//	defer svc.Close()
//
//	view, err := svc.PublishedView(ctx, "ns1", "note")
//
// Typed retrieval for other entity kinds goes through the package-level
// Retrieve function, which decides the strategy and registers the key:
//
//	doc, err := workspacecache.Retrieve(ctx, svc, workspacecache.ClassView, key,
//		func(ctx context.Context) (workspacecache.PageDocument, error) {
//			return transport.FetchPageDocument(ctx, workspaceID, viewID)
//		})
//
// # Error Handling
//
// Sentinel errors classify failures: ErrNotFound for fetches that resolved
// no entity, ErrFetchFailed for network failures (the transport cause stays
// wrapped), ErrUserNotFound for missing identity preconditions. Background
// cleanup failures are logged, never returned.
package workspacecache
