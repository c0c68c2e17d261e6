// Package testkit runs the Archive contract against any backend.
package testkit

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/keyring/store"
)

// NewArchive constructs a fresh, empty Archive for a test. The returned
// archive must be isolated from other tests.
type NewArchive func(t *testing.T) store.Archive

// RunArchiveConformance exercises the Archive contract: id derivation,
// round trips, idempotent puts, immutability, and not-found behavior.
func RunArchiveConformance(t *testing.T, newArchive NewArchive) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		a := newArchive(t)
		want := []byte("sealed keyset bytes")

		id, err := a.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := store.ID(want)
		if err != nil {
			t.Fatalf("ID failed: %v", err)
		}
		if id != wantID {
			t.Fatalf("Put id mismatch: got %s want %s", id, wantID)
		}

		got, err := a.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		a := newArchive(t)
		blob := []byte("same blob twice")

		id1, err := a.Put(blob)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := a.Put(blob)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("idempotent Put returned different ids: %s vs %s", id1, id2)
		}
	})

	t.Run("GetAbsentReturnsNotFound", func(t *testing.T) {
		a := newArchive(t)
		absent, err := store.ID([]byte("never stored"))
		if err != nil {
			t.Fatalf("ID failed: %v", err)
		}
		if a.Has(absent) {
			t.Fatalf("Has reported an absent id")
		}
		if _, err := a.Get(absent); !store.IsNotFound(err) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetUndefinedIDRejected", func(t *testing.T) {
		a := newArchive(t)
		if _, err := a.Get(cid.Undef); err == nil {
			t.Fatalf("expected error for undefined id")
		}
		if a.Has(cid.Undef) {
			t.Fatalf("Has accepted undefined id")
		}
	})
}
