package store_test

import (
	"testing"

	"xdao.co/keyring/store"
	"xdao.co/keyring/store/testkit"
)

func TestMemory_Conformance(t *testing.T) {
	testkit.RunArchiveConformance(t, func(t *testing.T) store.Archive {
		return store.NewMemory()
	})
}

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunArchiveConformance(t, func(t *testing.T) store.Archive {
		fs, err := store.NewLocalFS(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalFS: %v", err)
		}
		return fs
	})
}

func TestFallback_Conformance(t *testing.T) {
	testkit.RunArchiveConformance(t, func(t *testing.T) store.Archive {
		return store.Fallback{Archives: []store.Archive{store.NewMemory(), store.NewMemory()}}
	})
}

func TestReplicating_Conformance(t *testing.T) {
	testkit.RunArchiveConformance(t, func(t *testing.T) store.Archive {
		return store.Replicating{Archives: []store.Archive{store.NewMemory(), store.NewMemory()}}
	})
}

func TestFallback_ReadsFromLaterArchives(t *testing.T) {
	primary := store.NewMemory()
	secondary := store.NewMemory()
	blob := []byte("only in secondary")
	id, err := secondary.Put(blob)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	f := store.Fallback{Archives: []store.Archive{primary, secondary}}
	got, err := f.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(blob) {
		t.Fatalf("Get returned %q", got)
	}
	if !f.Has(id) {
		t.Fatalf("Has missed the secondary archive")
	}
	// Writes land in the first archive only.
	id2, err := f.Put([]byte("written via fallback"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !primary.Has(id2) || secondary.Has(id2) {
		t.Fatalf("Fallback.Put did not write to the first archive only")
	}
}

func TestReplicating_WritesEverywhere(t *testing.T) {
	a := store.NewMemory()
	b := store.NewMemory()
	r := store.Replicating{Archives: []store.Archive{a, b}}

	blob := []byte("replicated blob")
	id, err := r.Put(blob)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !a.Has(id) || !b.Has(id) {
		t.Fatalf("blob not replicated to every archive")
	}
}
