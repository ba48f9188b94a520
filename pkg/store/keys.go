package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer builds store keys.
type Keyer interface {
	// SnapshotKey is the key of a project's latest snapshot.
	SnapshotKey(project string) string

	// RevisionKey is the key of one saved revision of a project's snapshot.
	RevisionKey(project, revision string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey returns "snapshot:<project>".
func (DefaultKeyer) SnapshotKey(project string) string {
	return "snapshot:" + project
}

// RevisionKey returns "snapshot:<project>:<revision>".
func (DefaultKeyer) RevisionKey(project, revision string) string {
	return "snapshot:" + project + ":" + revision
}

// ScopedKeyer wraps a Keyer with a prefix, so that several workspaces can
// share one backend without seeing each other's snapshots.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "team:infra:")
//	k.SnapshotKey("migration") // "team:infra:snapshot:migration"
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SnapshotKey returns the prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(project string) string {
	return k.prefix + k.inner.SnapshotKey(project)
}

// RevisionKey returns the prefixed revision key.
func (k *ScopedKeyer) RevisionKey(project, revision string) string {
	return k.prefix + k.inner.RevisionKey(project, revision)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
