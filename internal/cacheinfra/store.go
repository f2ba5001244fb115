// Package cacheinfra implements the cache.Store contract on top of sturdyc.
package cacheinfra

import (
	"context"
	"errors"
	"fmt"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-workspace-cache/cache"
)

var errNilFetchFn = errors.New("cacheinfra: nil fetch function")

// sturdycStore wraps a sturdyc client providing keyed storage behaviour.
type sturdycStore struct {
	client *sturdyc.Client[any]
}

// NewSturdycStore creates the sturdyc-backed cache store.
// It validates the configuration and initializes a sturdyc client with the
// provided settings.
//
// The constructor translates cache.Config parameters to sturdyc initialization:
// Capacity, NumShards, TTL, and EvictionPercentage are passed to sturdyc.New();
// the remaining options are applied via toSturdycOptions.
//
// Version compatibility note: this implementation assumes the sturdyc v1.x API.
// Monitor sturdyc version upgrades for potential option mapping changes.
func NewSturdycStore(cfg cache.Config) (*sturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		toSturdycOptions(cfg)...,
	)

	return &sturdycStore{client: client}, nil
}

// toSturdycOptions maps the optional Config parameters to sturdyc options.
func toSturdycOptions(cfg cache.Config) []sturdyc.Option {
	var options []sturdyc.Option

	if cfg.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			cfg.EarlyRefresh.MinAsyncRefreshTime,
			cfg.EarlyRefresh.MaxAsyncRefreshTime,
			cfg.EarlyRefresh.SyncRefreshTime,
			cfg.EarlyRefresh.RetryBaseDelay,
		))
	}

	if cfg.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}

	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	return options
}

// Fetch implements cache.Store.Fetch.
//
// CacheFirst delegates to the client's read-through path: a stored value is
// served as-is and the fetch function only runs on a miss, with in-flight
// calls for the same key coalesced by the client. CacheAndNetwork always runs
// the fetch function and overwrites the stored value on success; a fetch
// error leaves any stored value untouched.
func (s *sturdycStore) Fetch(ctx context.Context, key string, strategy cache.Strategy, fetchFn cache.FetchFn[any]) (any, error) {
	if fetchFn == nil {
		return nil, errNilFetchFn
	}

	switch strategy {
	case cache.CacheFirst:
		return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
			return fetchFn(ctx)
		})
	case cache.CacheAndNetwork:
		value, err := fetchFn(ctx)
		if err != nil {
			return nil, err
		}
		s.client.Set(key, value)
		return value, nil
	default:
		return nil, fmt.Errorf("cacheinfra: unknown strategy %s", strategy)
	}
}

// Delete implements cache.Store.Delete.
// Removing a record ensures subsequent CacheFirst fetches go back to the
// source of truth.
func (s *sturdycStore) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Has implements cache.Store.Has.
func (s *sturdycStore) Has(key string) bool {
	_, ok := s.client.Get(key)
	return ok
}
