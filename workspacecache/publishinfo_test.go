package workspacecache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-workspace-cache/pkg/testsupport"
)

func seedPublishInfo(transport *mockTransport, viewID, namespace, publishName string) {
	transport.publishInfos[viewID] = PublishInfo{
		ViewID:      viewID,
		Namespace:   namespace,
		PublishName: publishName,
	}
}

func TestPublishInfo_ServesCachedRecord(t *testing.T) {
	svc, transport, _ := newTestService(t)
	seedPublishInfo(transport, "view-1", "ns1", "note")

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		info, err := svc.PublishInfo(ctx, "view-1")
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if info.Namespace != "ns1" || info.PublishName != "note" {
			t.Fatalf("call %d: unexpected record: %+v", i, info)
		}
	}

	if got := transport.countCalls("FetchPublishInfo:view-1"); got != 1 {
		t.Errorf("expected one transport fetch, got %d", got)
	}
}

func TestPublishInfo_FillsViewID(t *testing.T) {
	svc, transport, _ := newTestService(t)
	transport.publishInfos["view-9"] = PublishInfo{Namespace: "ns1", PublishName: "bare"}

	info, err := svc.PublishInfo(context.Background(), "view-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.ViewID != "view-9" {
		t.Errorf("expected view id backfilled, got %q", info.ViewID)
	}
}

func TestPublishInfo_UnpublishedView(t *testing.T) {
	svc, transport, _ := newTestService(t)
	// No record seeded: the transport answers with an empty namespace.

	ctx := context.Background()

	_, err := svc.PublishInfo(ctx, "view-1")
	if !errors.Is(err, ErrViewNotFound) {
		t.Fatalf("expected ErrViewNotFound, got: %v", err)
	}

	// The miss must not be cached: the next call asks the transport again.
	if _, err := svc.PublishInfo(ctx, "view-1"); !errors.Is(err, ErrViewNotFound) {
		t.Fatalf("expected ErrViewNotFound, got: %v", err)
	}

	if got := transport.countCalls("FetchPublishInfo:view-1"); got != 2 {
		t.Errorf("expected two transport fetches, got %d", got)
	}
}

func TestPublishInfo_FetchFailureKeepsCause(t *testing.T) {
	svc, transport, _ := newTestService(t)
	seedPublishInfo(transport, "view-1", "ns1", "note")

	cause := errors.New("gateway timeout")
	transport.setFetchErr(cause)

	ctx := context.Background()

	_, err := svc.PublishInfo(ctx, "view-1")
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected original cause to stay wrapped, got: %v", err)
	}

	// Failures are never cached.
	transport.setFetchErr(nil)

	if _, err := svc.PublishInfo(ctx, "view-1"); err != nil {
		t.Fatalf("expected recovery after transport recovered, got: %v", err)
	}

	if got := transport.countCalls("FetchPublishInfo:view-1"); got != 2 {
		t.Errorf("expected two transport fetches, got %d", got)
	}
}

func TestPublishInfo_InvalidateIsIdempotent(t *testing.T) {
	svc, transport, _ := newTestService(t)
	seedPublishInfo(transport, "view-1", "ns1", "note")

	ctx := context.Background()

	if _, err := svc.PublishInfo(ctx, "view-1"); err != nil {
		t.Fatalf("priming fetch failed: %v", err)
	}

	svc.InvalidatePublishInfo("view-1")
	svc.InvalidatePublishInfo("view-1")
	// Dropping a view that was never cached is a no-op too.
	svc.InvalidatePublishInfo("view-404")

	if _, err := svc.PublishInfo(ctx, "view-1"); err != nil {
		t.Fatalf("refetch failed: %v", err)
	}

	if got := transport.countCalls("FetchPublishInfo:view-1"); got != 2 {
		t.Errorf("expected two transport fetches, got %d", got)
	}
}

func TestPublishMutations_InvalidateRecords(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(ctx context.Context, svc *Service) error
		dropsOther bool
	}{
		{
			name: "publish views",
			mutate: func(ctx context.Context, svc *Service) error {
				return svc.Publish(ctx, "ws1", PublishRequest{ViewID: "view-1", PublishName: "note"})
			},
		},
		{
			name: "unpublish views",
			mutate: func(ctx context.Context, svc *Service) error {
				return svc.Unpublish(ctx, "ws1", "view-1")
			},
		},
		{
			name: "update publish config",
			mutate: func(ctx context.Context, svc *Service) error {
				return svc.UpdatePublishConfig(ctx, "ws1", PublishConfig{ViewID: "view-1", CommentsEnabled: true})
			},
		},
		{
			name: "update homepage",
			mutate: func(ctx context.Context, svc *Service) error {
				return svc.UpdateHomepage(ctx, "ws1", "view-1")
			},
		},
		{
			name: "update publish namespace",
			mutate: func(ctx context.Context, svc *Service) error {
				return svc.UpdatePublishNamespace(ctx, "ws1", "fresh-ns")
			},
			dropsOther: true,
		},
		{
			name: "remove homepage",
			mutate: func(ctx context.Context, svc *Service) error {
				return svc.RemoveHomepage(ctx, "ws1")
			},
			dropsOther: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, transport, _ := newTestService(t)
			seedPublishInfo(transport, "view-1", "ns1", "note")
			seedPublishInfo(transport, "view-2", "ns1", "other")

			ctx := context.Background()

			if _, err := svc.PublishInfo(ctx, "view-1"); err != nil {
				t.Fatalf("priming fetch failed: %v", err)
			}
			if _, err := svc.PublishInfo(ctx, "view-2"); err != nil {
				t.Fatalf("priming fetch failed: %v", err)
			}

			if err := tt.mutate(ctx, svc); err != nil {
				t.Fatalf("mutation failed: %v", err)
			}

			// The mutated view's record is gone: reading it goes back to the
			// transport.
			if _, err := svc.PublishInfo(ctx, "view-1"); err != nil {
				t.Fatalf("refetch failed: %v", err)
			}
			if got := transport.countCalls("FetchPublishInfo:view-1"); got != 2 {
				t.Errorf("expected mutated view refetched, got %d fetches", got)
			}

			if _, err := svc.PublishInfo(ctx, "view-2"); err != nil {
				t.Fatalf("refetch failed: %v", err)
			}

			wantOther := 1
			if tt.dropsOther {
				wantOther = 2
			}
			if got := transport.countCalls("FetchPublishInfo:view-2"); got != wantOther {
				t.Errorf("expected %d fetches for the unrelated view, got %d", wantOther, got)
			}
		})
	}
}

func TestPublish_TransportErrorStillInvalidates(t *testing.T) {
	svc, transport, _ := newTestService(t)
	seedPublishInfo(transport, "view-1", "ns1", "note")

	ctx := context.Background()

	if _, err := svc.PublishInfo(ctx, "view-1"); err != nil {
		t.Fatalf("priming fetch failed: %v", err)
	}

	mutationErr := errors.New("server rejected publish")
	transport.setMutationErr(mutationErr)

	err := svc.Publish(ctx, "ws1", PublishRequest{ViewID: "view-1", PublishName: "note"})
	if !errors.Is(err, mutationErr) {
		t.Fatalf("expected mutation error surfaced, got: %v", err)
	}

	// The record was dropped before the transport call, so the failed
	// mutation still forces the next read back to the source of truth.
	if _, err := svc.PublishInfo(ctx, "view-1"); err != nil {
		t.Fatalf("refetch failed: %v", err)
	}

	if got := transport.countCalls("FetchPublishInfo:view-1"); got != 2 {
		t.Errorf("expected refetch after failed mutation, got %d fetches", got)
	}
}

func TestPublishInfo_ConcurrentMissesShareFetch(t *testing.T) {
	svc, transport, _ := newTestService(t)
	seedPublishInfo(transport, "view-1", "ns1", "note")

	ctx := context.Background()

	const readers = 10

	var wg sync.WaitGroup
	results := make([]PublishInfo, readers)
	errs := make([]error, readers)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.PublishInfo(ctx, "view-1")
		}(i)
	}

	wg.Wait()

	for i := 0; i < readers; i++ {
		if errs[i] != nil {
			t.Fatalf("reader %d failed: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Errorf("reader %d got a different record: %+v", i, results[i])
		}
	}

	if got := transport.countCalls("FetchPublishInfo:view-1"); got != 1 {
		t.Errorf("expected concurrent misses to share one fetch, got %d", got)
	}
}

func TestPublishInfo_MutationCutsOffInFlightFetch(t *testing.T) {
	pre := PublishInfo{ViewID: "view-1", Namespace: "ns1", PublishName: "note"}

	tests := []struct {
		name   string
		mutate func(ctx context.Context, svc *Service) error
		post   PublishInfo
	}{
		{
			name: "targeted invalidation",
			mutate: func(ctx context.Context, svc *Service) error {
				return svc.UpdatePublishConfig(ctx, "ws1", PublishConfig{ViewID: "view-1", CommentsEnabled: true})
			},
			post: PublishInfo{ViewID: "view-1", Namespace: "ns1", PublishName: "note", CommentsEnabled: true},
		},
		{
			name: "namespace-wide invalidation",
			mutate: func(ctx context.Context, svc *Service) error {
				return svc.UpdatePublishNamespace(ctx, "ws1", "fresh-ns")
			},
			post: PublishInfo{ViewID: "view-1", Namespace: "fresh-ns", PublishName: "note"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, transport, _ := newTestService(t)
			transport.setPublishInfo(pre)

			ctx := context.Background()

			entered, release := transport.gatePublishInfoFetch()

			// A reader that starts before the mutation: its fetch is held
			// inside the transport with the pre-mutation record already read.
			var (
				held     PublishInfo
				heldErr  error
				heldDone = make(chan struct{})
			)
			go func() {
				defer close(heldDone)
				held, heldErr = svc.PublishInfo(ctx, "view-1")
			}()
			<-entered

			// The mutation invalidates and returns while that fetch is still
			// in flight. The transport serves the new record from here on.
			if err := tt.mutate(ctx, svc); err != nil {
				t.Fatalf("mutation failed: %v", err)
			}
			transport.setPublishInfo(tt.post)

			// A read issued after the mutation must not wait on the held
			// fetch and must see the post-mutation record.
			var (
				fresh     PublishInfo
				freshErr  error
				freshDone = make(chan struct{})
			)
			go func() {
				defer close(freshDone)
				fresh, freshErr = svc.PublishInfo(ctx, "view-1")
			}()

			release()
			<-freshDone
			<-heldDone

			if freshErr != nil {
				t.Fatalf("post-mutation read failed: %v", freshErr)
			}
			if fresh != tt.post {
				t.Fatalf("post-mutation read returned the pre-mutation record: %+v", fresh)
			}

			// The held reader itself started before the mutation, so the old
			// record is a legal result for it - but only for it.
			if heldErr != nil {
				t.Fatalf("held reader failed: %v", heldErr)
			}
			if held != pre {
				t.Errorf("held reader got %+v, want the record its fetch read", held)
			}

			// The held fetch's record must not displace the current one.
			again, err := svc.PublishInfo(ctx, "view-1")
			if err != nil {
				t.Fatalf("read after held fetch completed failed: %v", err)
			}
			if again != tt.post {
				t.Errorf("held fetch result was cached over the current record: %+v", again)
			}

			// Two real fetches: the held one and the post-mutation one; the
			// final read is served from the session record.
			if got := transport.countCalls("FetchPublishInfo:view-1"); got != 2 {
				t.Errorf("expected two transport fetches, got %d", got)
			}
		})
	}
}

func TestPublishInfo_Fixture(t *testing.T) {
	var seeded PublishInfo
	testsupport.LoadFixtureJSON(t, testsupport.FixturePath("publish_info.json"), &seeded)

	svc, transport, _ := newTestService(t)
	transport.publishInfos[seeded.ViewID] = seeded

	info, err := svc.PublishInfo(context.Background(), seeded.ViewID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.Namespace != seeded.Namespace {
		t.Errorf("expected namespace %q, got %q", seeded.Namespace, info.Namespace)
	}
	if info.PublishName != seeded.PublishName {
		t.Errorf("expected publish name %q, got %q", seeded.PublishName, info.PublishName)
	}
	if info.PublisherEmail != seeded.PublisherEmail {
		t.Errorf("expected publisher email %q, got %q", seeded.PublisherEmail, info.PublisherEmail)
	}
	if info.PublishedAt.IsZero() {
		t.Error("expected publish timestamp populated from fixture")
	}
	if !info.CommentsEnabled {
		t.Error("expected comments enabled per fixture")
	}
}

func TestPublishNamespace_Delegates(t *testing.T) {
	svc, transport, _ := newTestService(t)
	transport.namespace = "ns1"

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ns, err := svc.PublishNamespace(ctx, "ws1")
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if ns != "ns1" {
			t.Fatalf("call %d: expected namespace %q, got %q", i, "ns1", ns)
		}
	}

	// Namespace lookups are not cached at this layer.
	if got := transport.countCalls("PublishNamespace:ws1"); got != 2 {
		t.Errorf("expected two transport calls, got %d", got)
	}
}
