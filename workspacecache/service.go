package workspacecache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-workspace-cache/cache"
)

const (
	defaultCleanupLimit   = 16
	defaultCleanupTimeout = 5 * time.Second
)

// Service orchestrates entity retrieval for one client session. It decides
// the fetch strategy per key from the loaded-key registry, repairs cache
// state when fetches fail, and keeps publish metadata coherent across
// mutations. All state is in-memory and dies with the service: construct one
// per session and Close it when the session ends.
type Service struct {
	store     cache.Store
	keys      cache.KeySerializer
	transport Transport
	identity  IdentityProvider
	log       logrus.FieldLogger

	loaded      *loadedKeys
	publishInfo *publishInfoCache

	cleanupWG      sync.WaitGroup
	cleanupSlots   chan struct{}
	cleanupTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for fetch failures and cleanup outcomes.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithIdentityProvider sets the identity source guarding user-scoped
// retrievals. Without one, guarded operations fail with ErrUserNotFound.
func WithIdentityProvider(provider IdentityProvider) Option {
	return func(s *Service) {
		s.identity = provider
	}
}

// WithCleanupLimit caps how many failure cleanups may run concurrently.
func WithCleanupLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cleanupSlots = make(chan struct{}, n)
		}
	}
}

// WithCleanupTimeout bounds how long one failure cleanup may run.
func WithCleanupTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cleanupTimeout = d
		}
	}
}

// New creates a retrieval service wired to the given collaborators.
func New(transport Transport, store cache.Store, serializer cache.KeySerializer, opts ...Option) *Service {
	s := &Service{
		store:          store,
		keys:           serializer,
		transport:      transport,
		log:            logrus.StandardLogger(),
		loaded:         newLoadedKeys(),
		publishInfo:    newPublishInfoCache(),
		cleanupSlots:   make(chan struct{}, defaultCleanupLimit),
		cleanupTimeout: defaultCleanupTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Close waits for in-flight failure cleanups to finish. It is safe to call
// more than once. Retrievals issued after Close still resolve; only their
// failure cleanups are skipped.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cleanupWG.Wait()
}

// Loaded reports whether key resolved successfully at least once this
// session.
func (s *Service) Loaded(class EntityClass, key string) bool {
	return s.loaded.has(class, key)
}

// Retrieve resolves one entity through the session cache policy. Keys seen
// for the first time this session fetch with CacheAndNetwork so a fresh copy
// always lands; keys that already resolved once use CacheFirst and accept
// session-scoped staleness. A successful resolve registers the key; a
// resolve that carries no entity surfaces as ErrNotFound and registers
// nothing. A failed fetch is returned to the caller immediately while the
// possibly poisoned cache entry is repaired in the background. No retries
// happen at this layer.
//
// Methods cannot have type parameters, so generic support is provided as a
// package-level function.
func Retrieve[T Entity](ctx context.Context, s *Service, class EntityClass, key string, fetchFn cache.FetchFn[T]) (T, error) {
	var zero T

	if key == "" {
		return zero, ErrEmptyKey
	}

	strategy := cache.CacheAndNetwork
	if s.loaded.has(class, key) {
		strategy = cache.CacheFirst
	}

	cacheKey := s.keys.SerializeKey(string(class), key)

	result, err := cache.Fetch(ctx, s.store, cacheKey, strategy, fetchFn)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"class":    class,
			"key":      key,
			"strategy": strategy.String(),
		}).WithError(err).Warn("entity fetch failed")

		s.scheduleCleanup(class, key, cacheKey)

		return zero, fmt.Errorf("%w: %s %s: %w", ErrFetchFailed, class, key, err)
	}

	if result.Empty() {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, class, key)
	}

	s.loaded.add(class, key)
	return result, nil
}

// scheduleCleanup repairs cache state after a failed fetch without blocking
// the caller: when a stored record exists for the key, the key is dropped
// from the loaded registry and the record deleted so the next retrieval goes
// back to the network. The work runs on its own bounded context; the
// caller's context is already being rejected. Cleanup failures are logged,
// never escalated.
func (s *Service) scheduleCleanup(class EntityClass, key, cacheKey string) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		s.log.WithFields(logrus.Fields{"class": class, "key": key}).
			Debug("service closed, skipping cleanup")
		return
	}
	s.cleanupWG.Add(1)
	s.mu.RUnlock()

	go func() {
		defer s.cleanupWG.Done()

		s.cleanupSlots <- struct{}{}
		defer func() { <-s.cleanupSlots }()

		ctx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
		defer cancel()

		if !s.store.Has(cacheKey) {
			return
		}

		s.loaded.remove(class, key)

		if err := s.store.Delete(ctx, cacheKey); err != nil {
			s.log.WithFields(logrus.Fields{"class": class, "key": key}).
				WithError(err).Warn("failed to delete record after fetch failure")
			return
		}

		s.log.WithFields(logrus.Fields{"class": class, "key": key}).
			Debug("record invalidated after fetch failure")
	}()
}

// PublishedView resolves a publicly shared view by namespace and publish
// name.
func (s *Service) PublishedView(ctx context.Context, namespace, publishName string) (PublishedView, error) {
	return Retrieve(ctx, s, ClassPublishedView, PublishedViewKey(namespace, publishName), func(ctx context.Context) (PublishedView, error) {
		return s.transport.FetchPublishedView(ctx, namespace, publishName)
	})
}

// PageDocument resolves the collaborative payload of a workspace page for
// the current user. It requires a signed-in identity; the entity key is
// scoped per user so cached pages never leak across accounts.
func (s *Service) PageDocument(ctx context.Context, workspaceID, viewID string) (PageDocument, error) {
	return requireIdentity(ctx, s, func(ctx context.Context, id Identity) (PageDocument, error) {
		return Retrieve(ctx, s, ClassView, PageKey(id.UserID, workspaceID, viewID), func(ctx context.Context) (PageDocument, error) {
			return s.transport.FetchPageDocument(ctx, workspaceID, viewID)
		})
	})
}

// UserProfile resolves the profile of the current user.
func (s *Service) UserProfile(ctx context.Context) (UserProfile, error) {
	return requireIdentity(ctx, s, func(ctx context.Context, id Identity) (UserProfile, error) {
		return Retrieve(ctx, s, ClassUserProfile, ProfileKey(id.UserID), func(ctx context.Context) (UserProfile, error) {
			return s.transport.FetchUserProfile(ctx)
		})
	})
}

// requireIdentity runs op only when a signed-in identity is available,
// failing fast with ErrUserNotFound otherwise. Guarded operations never
// touch the cache or the network without an identity.
func requireIdentity[T any](ctx context.Context, s *Service, op func(context.Context, Identity) (T, error)) (T, error) {
	var zero T

	if s.identity == nil {
		return zero, ErrUserNotFound
	}

	id, err := s.identity.Identity(ctx)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrUserNotFound, err)
	}
	if id.UserID == "" {
		return zero, ErrUserNotFound
	}

	return op(ctx, id)
}
