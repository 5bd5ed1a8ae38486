package cyre

import "cyre.run/cyre/internal/store"

// SnapshotStore persists and restores the opaque {channels, payloads,
// metrics} blob. NewFileSnapshotStore returns the on-disk implementation;
// the zero value for a Cyre instance uses a no-op store, so persistence
// stays opt-in.
type SnapshotStore = store.Store

// Snapshot is the persisted {channels, payloads, metrics} blob a
// SnapshotStore saves and loads.
type Snapshot = store.Snapshot

// ErrNoSnapshot is returned by a SnapshotStore's Load when nothing has ever
// been saved.
var ErrNoSnapshot = store.ErrNoSnapshot

// NewFileSnapshotStore returns a SnapshotStore that persists to a single
// JSON file at path, via a temp-file-then-rename write so a crash mid-save
// never corrupts the previous snapshot.
func NewFileSnapshotStore(path string) (SnapshotStore, error) { return store.NewFileStore(path) }

// WithSnapshotStore installs the collaborator Shutdown saves a final
// snapshot to, and RestoreSnapshot loads one back from.
func WithSnapshotStore(s SnapshotStore) Option {
	return func(o *options) { o.snapshotStore = s }
}

// SaveSnapshot persists the current {channels, payloads, metrics} state to
// the configured snapshot store immediately, without waiting for Shutdown.
func (c *Cyre) SaveSnapshot() error { return c.eng.SaveSnapshot() }

// RestoreSnapshot loads the last saved snapshot and restores channels and
// payloads from it. Subscribers must be re-registered separately.
func (c *Cyre) RestoreSnapshot() error { return c.eng.RestoreSnapshot() }
