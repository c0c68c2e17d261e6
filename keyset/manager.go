// Package keyset builds, mutates, serializes, and derives keysets.
//
// Manager is the only sanctioned way to change key membership or
// status; everything else in the module treats keysets as immutable
// snapshots.
package keyset

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"xdao.co/keyring/model"
	"xdao.co/keyring/registry"
)

// Manager mutates a working copy of a keyset, one operation at a time.
// Every operation either succeeds completely or leaves the working copy
// untouched.
//
// A Manager is not safe for concurrent use; callers that share one
// across goroutines must serialize access themselves.
type Manager struct {
	ks *model.Keyset
}

// NewManager returns a manager over an empty working copy. The keyset
// only becomes exportable once a Rotate or SetPrimary call has
// established an enabled primary.
func NewManager() *Manager {
	return &Manager{ks: &model.Keyset{}}
}

// ManagerFor returns a manager seeded with a clone of an existing,
// valid keyset.
func ManagerFor(ks *model.Keyset) (*Manager, error) {
	if err := ks.Validate(); err != nil {
		return nil, err
	}
	return &Manager{ks: ks.Clone()}, nil
}

// Add generates fresh key material of the given type, assigns it an
// unused random key id, and appends it as an enabled, non-primary
// entry. It returns the new key id.
func (m *Manager) Add(typeID string, serializedFormat []byte, kind model.PrefixKind) (uint32, error) {
	if kind != model.PrefixTink && kind != model.PrefixLegacy &&
		kind != model.PrefixCrunchy && kind != model.PrefixRaw {
		return 0, fmt.Errorf("keyset: %w", model.ErrUnknownPrefix)
	}
	km, err := registry.Lookup(typeID)
	if err != nil {
		return 0, err
	}
	key, err := registry.NewKey(typeID, serializedFormat)
	if err != nil {
		return 0, err
	}
	id := m.newKeyID()
	m.ks.Entries = append(m.ks.Entries, model.Entry{
		KeyID:  id,
		TypeID: typeID,
		Key:    key,
		Class:  km.MaterialClass(),
		Status: model.StatusEnabled,
		Prefix: kind,
	})
	return id, nil
}

// Rotate is Add followed by making the new key primary. Data produced
// before the rotation stays consumable as long as the old keys remain
// enabled.
func (m *Manager) Rotate(typeID string, serializedFormat []byte, kind model.PrefixKind) (uint32, error) {
	id, err := m.Add(typeID, serializedFormat, kind)
	if err != nil {
		return 0, err
	}
	m.ks.PrimaryKeyID = id
	return id, nil
}

// SetPrimary makes an existing enabled key the primary.
func (m *Manager) SetPrimary(keyID uint32) error {
	e := m.ks.Entry(keyID)
	if e == nil {
		return fmt.Errorf("keyset: key %d: %w", keyID, model.ErrKeyNotFound)
	}
	if e.Status != model.StatusEnabled {
		return fmt.Errorf("keyset: key %d is %v: %w", keyID, e.Status, model.ErrInvalidState)
	}
	m.ks.PrimaryKeyID = keyID
	return nil
}

// Enable re-enables a disabled key. Destroyed keys cannot come back.
func (m *Manager) Enable(keyID uint32) error {
	e := m.ks.Entry(keyID)
	if e == nil {
		return fmt.Errorf("keyset: key %d: %w", keyID, model.ErrKeyNotFound)
	}
	if e.Status == model.StatusDestroyed {
		return fmt.Errorf("keyset: key %d is destroyed: %w", keyID, model.ErrInvalidState)
	}
	e.Status = model.StatusEnabled
	return nil
}

// Disable takes a key out of service. Disabling the primary is rejected
// so the keyset never loses its produce-side key.
func (m *Manager) Disable(keyID uint32) error {
	e := m.ks.Entry(keyID)
	if e == nil {
		return fmt.Errorf("keyset: key %d: %w", keyID, model.ErrKeyNotFound)
	}
	if keyID == m.ks.PrimaryKeyID {
		return fmt.Errorf("keyset: key %d is primary: %w", keyID, model.ErrInvalidState)
	}
	if e.Status == model.StatusDestroyed {
		return fmt.Errorf("keyset: key %d is destroyed: %w", keyID, model.ErrInvalidState)
	}
	e.Status = model.StatusDisabled
	return nil
}

// Destroy wipes a key's material and marks it destroyed. The entry's id
// and metadata remain so the id is never reused. Destroying the primary
// is rejected.
func (m *Manager) Destroy(keyID uint32) error {
	e := m.ks.Entry(keyID)
	if e == nil {
		return fmt.Errorf("keyset: key %d: %w", keyID, model.ErrKeyNotFound)
	}
	if keyID == m.ks.PrimaryKeyID {
		return fmt.Errorf("keyset: key %d is primary: %w", keyID, model.ErrInvalidState)
	}
	e.Wipe()
	e.Status = model.StatusDestroyed
	return nil
}

// Keyset exports a validated, immutable snapshot of the working copy.
func (m *Manager) Keyset() (*model.Keyset, error) {
	if err := m.ks.Validate(); err != nil {
		return nil, err
	}
	return m.ks.Clone(), nil
}

// Info returns the redacted view of the working copy, valid or not.
func (m *Manager) Info() model.Info {
	return m.ks.Info()
}

// newKeyID draws random ids until one is unused and nonzero. With
// 32-bit ids and realistic keyset sizes a retry is already rare.
func (m *Manager) newKeyID() uint32 {
	var buf [4]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand never fails on supported platforms.
			panic(fmt.Sprintf("keyset: reading randomness: %v", err))
		}
		id := binary.BigEndian.Uint32(buf[:])
		if id != 0 && m.ks.Entry(id) == nil {
			return id
		}
	}
}
