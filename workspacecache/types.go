package workspacecache

import "time"

// EntityClass partitions the loaded-key registry by entity kind. Keys are
// only comparable within their class.
type EntityClass string

const (
	// ClassView covers per-user workspace page documents.
	ClassView EntityClass = "view"

	// ClassPublishedView covers publicly shared views resolved by namespace
	// and publish name.
	ClassPublishedView EntityClass = "published_view"

	// ClassUserProfile covers the signed-in user's profile.
	ClassUserProfile EntityClass = "user_profile"
)

// Entity is implemented by the payload types the retrieval path resolves.
// Empty reports whether a nominally successful fetch actually carried no
// entity, which Retrieve surfaces as ErrNotFound.
type Entity interface {
	Empty() bool
}

// PublishedView is the publicly shared rendition of a view: the encoded
// collaborative payload plus the descriptive metadata published with it.
type PublishedView struct {
	ViewID string `json:"view_id"`
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Data   []byte `json:"data"`
}

// Empty implements Entity.
func (v PublishedView) Empty() bool { return len(v.Data) == 0 }

// PageDocument is the encoded collaborative payload of one workspace page.
type PageDocument struct {
	ViewID string `json:"view_id"`
	Name   string `json:"name"`
	Data   []byte `json:"data"`
}

// Empty implements Entity.
func (d PageDocument) Empty() bool { return len(d.Data) == 0 }

// UserProfile describes the authenticated workspace user.
type UserProfile struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IconURL string `json:"icon_url,omitempty"`
}

// Empty implements Entity.
func (p UserProfile) Empty() bool { return p.UserID == "" }

// PublishInfo is the publish metadata tracked per view. Records carry no
// expiry; they stay valid until a mutation invalidates them.
type PublishInfo struct {
	ViewID           string    `json:"view_id"`
	Namespace        string    `json:"namespace"`
	PublishName      string    `json:"publish_name"`
	PublisherEmail   string    `json:"publisher_email,omitempty"`
	PublishedAt      time.Time `json:"publish_timestamp,omitempty"`
	CommentsEnabled  bool      `json:"comments_enabled"`
	DuplicateEnabled bool      `json:"duplicate_enabled"`
}

// PublishRequest describes one view to publish.
type PublishRequest struct {
	ViewID      string `json:"view_id"`
	PublishName string `json:"publish_name"`
}

// PublishConfig carries the per-view publish settings that can be changed
// after publishing.
type PublishConfig struct {
	ViewID           string `json:"view_id"`
	PublishName      string `json:"publish_name,omitempty"`
	CommentsEnabled  bool   `json:"comments_enabled"`
	DuplicateEnabled bool   `json:"duplicate_enabled"`
}

// PublishedViewKey builds the entity key for a published view. The shape is
// "<namespace>_<publishName>", stable across sessions.
func PublishedViewKey(namespace, publishName string) string {
	return namespace + "_" + publishName
}

// PageKey builds the entity key for a page document. Keys are scoped per
// user so cached pages never leak across identities.
func PageKey(userID, workspaceID, viewID string) string {
	return userID + "_" + workspaceID + "_" + viewID
}

// ProfileKey builds the entity key for a user profile.
func ProfileKey(userID string) string {
	return userID
}
