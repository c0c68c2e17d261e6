package store

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/keyring/keyset"
	"xdao.co/keyring/model"
	"xdao.co/keyring/primitive"
)

// archiveContext binds archive ciphertexts to their purpose so a blob
// sealed here cannot be replayed as some other AEAD payload.
var archiveContext = []byte("xdao.co/keyring/keyset-archive/v1")

// EncryptedStore persists keysets sealed under a master AEAD, usually
// a KMS-backed remote key, so cleartext key material never reaches the
// archive backend.
type EncryptedStore struct {
	Archive Archive
	Master  primitive.AEAD
}

// Save validates, serializes, and seals ks, then writes the blob. The
// returned id is the handle for Load.
func (s *EncryptedStore) Save(ks *model.Keyset) (cid.Cid, error) {
	if s.Archive == nil || s.Master == nil {
		return cid.Undef, fmt.Errorf("store: EncryptedStore needs an archive and a master AEAD")
	}
	if err := ks.Validate(); err != nil {
		return cid.Undef, err
	}
	blob, err := s.Master.Seal(keyset.Marshal(ks), archiveContext)
	if err != nil {
		return cid.Undef, fmt.Errorf("store: sealing keyset: %w", err)
	}
	return s.Archive.Put(blob)
}

// Load fetches, opens, and validates the keyset stored under id.
func (s *EncryptedStore) Load(id cid.Cid) (*model.Keyset, error) {
	if s.Archive == nil || s.Master == nil {
		return nil, fmt.Errorf("store: EncryptedStore needs an archive and a master AEAD")
	}
	blob, err := s.Archive.Get(id)
	if err != nil {
		return nil, err
	}
	plain, err := s.Master.Open(blob, archiveContext)
	if err != nil {
		// The master AEAD's consume path is already undifferentiated.
		return nil, err
	}
	ks, err := keyset.Unmarshal(plain)
	if err != nil {
		return nil, err
	}
	if err := ks.Validate(); err != nil {
		return nil, err
	}
	return ks, nil
}
