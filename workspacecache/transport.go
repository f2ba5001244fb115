package workspacecache

import (
	"context"
	"fmt"
)

// Identity describes the user a session runs on behalf of.
type Identity struct {
	UserID string
	Email  string
}

// IdentityProvider resolves the current session identity. An empty UserID is
// treated the same as an error: no identity.
type IdentityProvider interface {
	Identity(ctx context.Context) (Identity, error)
}

// Transport is the network collaborator retrievals and publish mutations go
// through. Implementations own endpoints, wire formats, auth, and retries;
// this layer only decides when a call happens.
type Transport interface {
	// FetchPublishedView resolves a publicly shared view by namespace and
	// publish name.
	FetchPublishedView(ctx context.Context, namespace, publishName string) (PublishedView, error)

	// FetchPageDocument resolves the collaborative payload of a workspace
	// page.
	FetchPageDocument(ctx context.Context, workspaceID, viewID string) (PageDocument, error)

	// FetchUserProfile resolves the profile of the authenticated user.
	FetchUserProfile(ctx context.Context) (UserProfile, error)

	// FetchPublishInfo resolves the publish metadata of a view. A response
	// without a namespace means the view is not published.
	FetchPublishInfo(ctx context.Context, viewID string) (PublishInfo, error)

	// PublishNamespace returns the workspace's publish namespace.
	PublishNamespace(ctx context.Context, workspaceID string) (string, error)

	// PublishViews makes the given views publicly available.
	PublishViews(ctx context.Context, workspaceID string, reqs []PublishRequest) error

	// UnpublishViews withdraws the given views from public access.
	UnpublishViews(ctx context.Context, workspaceID string, viewIDs []string) error

	// UpdatePublishNamespace renames the workspace's publish namespace.
	UpdatePublishNamespace(ctx context.Context, workspaceID, namespace string) error

	// UpdatePublishConfig changes the publish settings of a published view.
	UpdatePublishConfig(ctx context.Context, workspaceID string, cfg PublishConfig) error

	// UpdateHomepage sets the view served at the namespace root.
	UpdateHomepage(ctx context.Context, workspaceID, viewID string) error

	// RemoveHomepage clears the view served at the namespace root.
	RemoveHomepage(ctx context.Context, workspaceID string) error
}

// CollabType identifies the collaborative payload kind behind a document.
type CollabType uint8

const (
	CollabTypeDocument CollabType = iota
	CollabTypeFolder
	CollabTypeDatabase
	CollabTypeUserAwareness
)

// String returns the collab type name used in logs.
func (t CollabType) String() string {
	switch t {
	case CollabTypeDocument:
		return "document"
	case CollabTypeFolder:
		return "folder"
	case CollabTypeDatabase:
		return "database"
	case CollabTypeUserAwareness:
		return "user_awareness"
	default:
		return fmt.Sprintf("collab_type(%d)", uint8(t))
	}
}

// Document is a live collaborative document handle a caller registers for
// sync. The registrar treats it as opaque beyond its object identifier.
type Document interface {
	ObjectID() string
}

// SyncBinding is one live document-to-sync-channel attachment.
type SyncBinding struct {
	ID          string
	UserID      string
	WorkspaceID string
	ObjectID    string
	CollabType  CollabType
	Document    Document
}

// SyncTransport is the sync channel collaborator. Start attaches a binding
// and Stop detaches it; reconnects and delivery retries are the channel's
// concern.
type SyncTransport interface {
	Start(ctx context.Context, binding SyncBinding) error
	Stop(ctx context.Context, binding SyncBinding) error
}
