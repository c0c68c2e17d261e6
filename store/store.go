// Package store persists keysets at rest.
//
// The unit of storage is an immutable, content-addressed archive blob:
// normally a keyset sealed under a master AEAD (see EncryptedStore).
// Content addressing gives integrity for free (a blob that does not
// hash to its id is rejected) and makes replication across backends
// trivially safe.
//
// Contract for every Archive implementation:
//   - Put MUST be idempotent.
//   - Stored blobs MUST be immutable.
//   - Ids MUST be derived from the bytes written.
//   - Get MUST return ErrNotFound when the id is absent.
package store

import (
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Archive is a content-addressed blob store for keyset archives.
type Archive interface {
	Put(blob []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

var (
	ErrNotFound   = errors.New("store: not found")
	ErrInvalidID  = errors.New("store: invalid archive id")
	ErrIDMismatch = errors.New("store: archive id mismatch")
	ErrImmutable  = errors.New("store: immutable archive mismatch")
)

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// ID returns the archive id for a blob: a CIDv1 with the raw multicodec
// over a sha2-256 multihash. Every backend uses exactly this derivation
// so ids are portable between them.
func ID(blob []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(blob, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}
