package workspacecache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/singleflight"
)

// publishInfoCache holds publish metadata per view id. Records never expire
// by time; they are dropped only when a mutation makes them unverifiable.
// Concurrent misses for the same view share one network call through the
// singleflight group. Every invalidation bumps an epoch: readers arriving
// later never join a flight keyed under the old epoch, and a fetch that
// started under it is returned to its waiters but never cached.
type publishInfoCache struct {
	// mu serializes stores against invalidations, so a store racing a
	// mutation can never land after the mutation's delete.
	mu      sync.Mutex
	epoch   atomic.Uint64
	records *xsync.MapOf[string, PublishInfo]
	group   singleflight.Group
}

func newPublishInfoCache() *publishInfoCache {
	return &publishInfoCache{records: xsync.NewMapOf[string, PublishInfo]()}
}

func (p *publishInfoCache) get(viewID string) (PublishInfo, bool) {
	return p.records.Load(viewID)
}

// putFresh stores info unless an invalidation ran after epoch was captured.
// The record a late fetch carries may predate that invalidation's mutation,
// so it must not outlive it in the cache.
func (p *publishInfoCache) putFresh(info PublishInfo, epoch uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.epoch.Load() != epoch {
		return
	}
	p.records.Store(info.ViewID, info)
}

func (p *publishInfoCache) invalidate(viewID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.epoch.Add(1)
	p.records.Delete(viewID)
}

func (p *publishInfoCache) invalidateAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.epoch.Add(1)
	p.records.Clear()
}

// PublishInfo returns the publish metadata for a view, serving the session
// record when one exists and fetching through the transport otherwise. A
// transport response without a namespace means the view is not published and
// surfaces as ErrViewNotFound.
func (s *Service) PublishInfo(ctx context.Context, viewID string) (PublishInfo, error) {
	if info, ok := s.publishInfo.get(viewID); ok {
		return info, nil
	}

	// The flight key carries the invalidation epoch: a reader that arrives
	// after a mutation starts a fresh fetch instead of joining one that began
	// before it.
	epoch := s.publishInfo.epoch.Load()
	flight := strconv.FormatUint(epoch, 10) + ":" + viewID

	v, err, _ := s.publishInfo.group.Do(flight, func() (any, error) {
		if info, ok := s.publishInfo.get(viewID); ok {
			return info, nil
		}

		info, err := s.transport.FetchPublishInfo(ctx, viewID)
		if err != nil {
			return PublishInfo{}, fmt.Errorf("%w: publish info for view %s: %w", ErrFetchFailed, viewID, err)
		}
		if info.Namespace == "" {
			return PublishInfo{}, fmt.Errorf("%w: %s", ErrViewNotFound, viewID)
		}
		if info.ViewID == "" {
			info.ViewID = viewID
		}

		s.publishInfo.putFresh(info, epoch)
		return info, nil
	})
	if err != nil {
		return PublishInfo{}, err
	}
	return v.(PublishInfo), nil
}

// InvalidatePublishInfo drops the cached publish record for a view, forcing
// the next PublishInfo call back to the transport. Dropping an absent record
// is a no-op; calling twice equals calling once.
func (s *Service) InvalidatePublishInfo(viewID string) {
	s.publishInfo.invalidate(viewID)
}

// InvalidateAllPublishInfo drops every cached publish record.
func (s *Service) InvalidateAllPublishInfo() {
	s.publishInfo.invalidateAll()
}

// Publish makes the given views publicly available. Publish records for the
// affected views are invalidated before the transport call so a concurrent
// reader can never re-validate a record the mutation is about to change.
func (s *Service) Publish(ctx context.Context, workspaceID string, reqs ...PublishRequest) error {
	for _, req := range reqs {
		s.publishInfo.invalidate(req.ViewID)
	}
	return s.transport.PublishViews(ctx, workspaceID, reqs)
}

// Unpublish withdraws the given views from public access.
func (s *Service) Unpublish(ctx context.Context, workspaceID string, viewIDs ...string) error {
	for _, id := range viewIDs {
		s.publishInfo.invalidate(id)
	}
	return s.transport.UnpublishViews(ctx, workspaceID, viewIDs)
}

// UpdatePublishNamespace renames the workspace's publish namespace. Every
// cached record embeds the namespace, so the whole cache is dropped.
func (s *Service) UpdatePublishNamespace(ctx context.Context, workspaceID, namespace string) error {
	s.publishInfo.invalidateAll()
	return s.transport.UpdatePublishNamespace(ctx, workspaceID, namespace)
}

// UpdatePublishConfig changes the publish settings of a published view.
func (s *Service) UpdatePublishConfig(ctx context.Context, workspaceID string, cfg PublishConfig) error {
	s.publishInfo.invalidate(cfg.ViewID)
	return s.transport.UpdatePublishConfig(ctx, workspaceID, cfg)
}

// UpdateHomepage sets the view served at the namespace root.
func (s *Service) UpdateHomepage(ctx context.Context, workspaceID, viewID string) error {
	s.publishInfo.invalidate(viewID)
	return s.transport.UpdateHomepage(ctx, workspaceID, viewID)
}

// RemoveHomepage clears the view served at the namespace root. The previous
// homepage is unknown at this layer, so the whole publish cache is dropped.
func (s *Service) RemoveHomepage(ctx context.Context, workspaceID string) error {
	s.publishInfo.invalidateAll()
	return s.transport.RemoveHomepage(ctx, workspaceID)
}

// PublishNamespace returns the workspace's current publish namespace.
func (s *Service) PublishNamespace(ctx context.Context, workspaceID string) (string, error) {
	return s.transport.PublishNamespace(ctx, workspaceID)
}
