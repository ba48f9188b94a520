// Package store persists computed schedule snapshots.
//
// The scheduling engine keeps all state in memory; the CLI uses a [Store]
// to save a project's latest snapshot and reload it later without recomputing.
// Backends:
//
//   - [NullStore]: stores nothing, used when persistence is disabled
//   - [FileStore]: JSON envelopes under a local directory
//   - [RedisStore]: keys in a Redis database
//   - [MongoStore]: documents in a MongoDB collection
//
// Values are opaque bytes; encoding lives in package io. Keys come from a
// [Keyer], optionally scoped with [ScopedKeyer] so several workspaces can
// share one backend.
//
// Every backend reports hits, misses and writes to the store hooks of
// package observability.
package store
