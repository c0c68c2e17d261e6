// Package model defines the keyset data model shared by every layer of
// the library: key entries, keyset snapshots, their lifecycle enums, and
// snapshot validation.
//
// A Keyset is the persisted/transmitted unit. It is treated as an
// immutable snapshot everywhere outside keyset.Manager: consumers clone
// rather than mutate, so a built primitive set can be shared across
// goroutines without synchronization.
//
// Key material (Entry.Key) is opaque bytes owned by the registered key
// manager for Entry.TypeID. Nothing in this package inspects, logs, or
// echoes those bytes.
package model
