package workspacecache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"
)

// bindingKey identifies the workspace object a document is bound for.
type bindingKey struct {
	workspaceID string
	objectID    string
}

// Registrar attaches live collaborative documents to the sync channel for
// one session. Bindings are tracked in memory so registering an object twice
// replaces the previous binding instead of duplicating it, and Close can
// detach everything the session attached.
type Registrar struct {
	transport SyncTransport
	identity  IdentityProvider
	log       logrus.FieldLogger

	bindings *xsync.MapOf[bindingKey, SyncBinding]

	startWG sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithRegistrarLogger sets the logger used for sync channel outcomes.
func WithRegistrarLogger(log logrus.FieldLogger) RegistrarOption {
	return func(r *Registrar) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistrar creates a sync registrar for the current session.
func NewRegistrar(transport SyncTransport, identity IdentityProvider, opts ...RegistrarOption) *Registrar {
	r := &Registrar{
		transport: transport,
		identity:  identity,
		log:       logrus.StandardLogger(),
		bindings:  xsync.NewMapOf[bindingKey, SyncBinding](),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register binds doc to the sync channel on behalf of the current user. It
// requires a signed-in identity and fails fast with ErrUserNotFound
// otherwise; nothing else is validated here.
//
// Registering an object that is already bound replaces the previous binding:
// the old one is stopped before the new one starts. The channel start itself
// is fire-and-forget; Register returns without waiting for it, and start
// failures are logged rather than returned since delivery and reconnects are
// the channel's own concern.
func (r *Registrar) Register(ctx context.Context, doc Document, workspaceID string, collabType CollabType) error {
	if doc == nil {
		return fmt.Errorf("workspacecache: nil document")
	}

	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return ErrRegistrarClosed
	}
	r.mu.RUnlock()

	id, err := r.currentIdentity(ctx)
	if err != nil {
		return err
	}

	binding := SyncBinding{
		ID:          uuid.NewString(),
		UserID:      id.UserID,
		WorkspaceID: workspaceID,
		ObjectID:    doc.ObjectID(),
		CollabType:  collabType,
		Document:    doc,
	}

	key := bindingKey{workspaceID: workspaceID, objectID: binding.ObjectID}
	if prev, replaced := r.bindings.LoadAndStore(key, binding); replaced {
		r.stopBinding(ctx, prev)
	}

	r.mu.RLock()
	if r.closed {
		// Close won the race; detach what we just stored instead of leaking it.
		r.mu.RUnlock()
		if b, ok := r.bindings.LoadAndDelete(key); ok {
			r.stopBinding(ctx, b)
		}
		return ErrRegistrarClosed
	}
	r.startWG.Add(1)
	r.mu.RUnlock()

	go func() {
		defer r.startWG.Done()

		if err := r.transport.Start(context.Background(), binding); err != nil {
			r.log.WithFields(logrus.Fields{
				"binding_id":   binding.ID,
				"workspace_id": binding.WorkspaceID,
				"object_id":    binding.ObjectID,
				"collab_type":  binding.CollabType.String(),
			}).WithError(err).Warn("sync channel start failed")
		}
	}()

	return nil
}

// Unregister detaches doc from the sync channel. Detaching an object that
// was never bound is a no-op.
func (r *Registrar) Unregister(ctx context.Context, doc Document, workspaceID string) error {
	if doc == nil {
		return nil
	}

	binding, ok := r.bindings.LoadAndDelete(bindingKey{workspaceID: workspaceID, objectID: doc.ObjectID()})
	if !ok {
		return nil
	}

	return r.transport.Stop(ctx, binding)
}

// Bindings reports how many documents are currently bound.
func (r *Registrar) Bindings() int {
	return r.bindings.Size()
}

// Close waits for pending channel starts and detaches every binding. After
// Close, Register fails with ErrRegistrarClosed.
func (r *Registrar) Close(ctx context.Context) error {
	r.mu.Lock()
	alreadyClosed := r.closed
	r.closed = true
	r.mu.Unlock()

	if !alreadyClosed {
		r.startWG.Wait()
	}

	var errs []error
	r.bindings.Range(func(key bindingKey, binding SyncBinding) bool {
		if err := r.transport.Stop(ctx, binding); err != nil {
			errs = append(errs, err)
		}
		r.bindings.Delete(key)
		return true
	})

	return errors.Join(errs...)
}

// stopBinding detaches a binding and logs failures; replacement and cleanup
// paths must not fail because the old channel refused to stop.
func (r *Registrar) stopBinding(ctx context.Context, binding SyncBinding) {
	if err := r.transport.Stop(ctx, binding); err != nil {
		r.log.WithFields(logrus.Fields{
			"binding_id":   binding.ID,
			"workspace_id": binding.WorkspaceID,
			"object_id":    binding.ObjectID,
		}).WithError(err).Warn("sync channel stop failed")
	}
}

func (r *Registrar) currentIdentity(ctx context.Context) (Identity, error) {
	if r.identity == nil {
		return Identity{}, ErrUserNotFound
	}

	id, err := r.identity.Identity(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUserNotFound, err)
	}
	if id.UserID == "" {
		return Identity{}, ErrUserNotFound
	}

	return id, nil
}
