package ports

import (
	"context"
	"time"
)

// ManifestWatcher reports edits to a slide manifest on disk
type ManifestWatcher interface {
	// Watch emits a change each time the manifest at path is written, created or removed
	Watch(ctx context.Context, path string) (<-chan ManifestChange, error)
	// Stop releases the watch; the channel returned by Watch is closed
	Stop() error
}

// ManifestChange is one observed edit of a manifest
type ManifestChange struct {
	Path      string
	Kind      ChangeKind
	Timestamp time.Time
}

// ChangeKind classifies a manifest edit
type ChangeKind int

// Manifest change kinds
const (
	ManifestModified ChangeKind = iota
	ManifestCreated
	// ManifestDeleted leaves the feed as last loaded
	ManifestDeleted
	// ManifestRenamed is reported by editors that save through a temp file
	ManifestRenamed
)

func (k ChangeKind) String() string {
	switch k {
	case ManifestModified:
		return "modified"
	case ManifestCreated:
		return "created"
	case ManifestDeleted:
		return "deleted"
	case ManifestRenamed:
		return "renamed"
	}
	return "unknown"
}

// SlideSource is a reloadable origin of slides, such as a manifest file
type SlideSource interface {
	// Reload re-reads the source and publishes a structural change when it differs
	Reload(ctx context.Context) error
	// Path returns the location being watched
	Path() string
}
