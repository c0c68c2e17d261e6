package store

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
)

// Fallback reads from an ordered list of archives and writes to the
// first. Read order is the slice order; callers supply a fixed order so
// retrieval stays deterministic.
type Fallback struct {
	Archives []Archive
}

var _ Archive = Fallback{}

func (f Fallback) Put(blob []byte) (cid.Cid, error) {
	if len(f.Archives) == 0 {
		return cid.Undef, errors.New("store: Fallback has no archives")
	}
	return f.Archives[0].Put(blob)
}

func (f Fallback) Get(id cid.Cid) ([]byte, error) {
	for _, a := range f.Archives {
		blob, err := a.Get(id)
		if err == nil {
			return blob, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (f Fallback) Has(id cid.Cid) bool {
	for _, a := range f.Archives {
		if a.Has(id) {
			return true
		}
	}
	return false
}

// Replicating writes every blob to all archives and reads with ordered
// fallback. A keyset archive is small and precious; writing it to more
// than one place is the normal deployment.
//
// Put requires every backend to return the canonical id, otherwise
// ErrIDMismatch.
type Replicating struct {
	Archives []Archive
}

var _ Archive = Replicating{}

func (r Replicating) Put(blob []byte) (cid.Cid, error) {
	if len(r.Archives) == 0 {
		return cid.Undef, errors.New("store: Replicating has no archives")
	}
	want, err := ID(blob)
	if err != nil {
		return cid.Undef, ErrInvalidID
	}
	for i, a := range r.Archives {
		got, err := a.Put(blob)
		if err != nil {
			return cid.Undef, fmt.Errorf("store: archive %d: %w", i, err)
		}
		if got != want {
			return cid.Undef, ErrIDMismatch
		}
	}
	return want, nil
}

func (r Replicating) Get(id cid.Cid) ([]byte, error) {
	return Fallback{Archives: r.Archives}.Get(id)
}

func (r Replicating) Has(id cid.Cid) bool {
	return Fallback{Archives: r.Archives}.Has(id)
}
