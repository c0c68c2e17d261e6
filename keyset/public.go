package keyset

import (
	"fmt"

	"xdao.co/keyring/model"
	"xdao.co/keyring/registry"
)

// Public derives the public keyset from a private one: each entry's
// private key material is replaced by the corresponding public key
// data, preserving key ids, statuses, prefix kinds, and the primary.
//
// Every non-destroyed entry must carry asymmetric private material
// whose key manager can derive public key data. Destroyed entries are
// dropped: their material is gone and a public keyset has nothing to
// retain an id for.
func Public(ks *model.Keyset) (*model.Keyset, error) {
	if err := ks.Validate(); err != nil {
		return nil, err
	}
	out := &model.Keyset{PrimaryKeyID: ks.PrimaryKeyID}
	for _, e := range ks.Entries {
		if e.Status == model.StatusDestroyed {
			continue
		}
		if e.Class != model.MaterialAsymmetricPrivate {
			return nil, fmt.Errorf("keyset: key %d is %v: %w",
				e.KeyID, e.Class, registry.ErrNotPrivateKey)
		}
		kd, err := registry.PublicKeyData(e.TypeID, e.Key)
		if err != nil {
			return nil, fmt.Errorf("keyset: key %d: %w", e.KeyID, err)
		}
		out.Entries = append(out.Entries, model.Entry{
			KeyID:  e.KeyID,
			TypeID: kd.TypeID,
			Key:    kd.Value,
			Class:  kd.Class,
			Status: e.Status,
			Prefix: e.Prefix,
		})
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
