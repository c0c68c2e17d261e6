package model

import "fmt"

// Status is a key's lifecycle state.
//
// Numeric values match the keyset wire format and MUST NOT change.
type Status int32

const (
	StatusUnknown   Status = 0
	StatusEnabled   Status = 1
	StatusDisabled  Status = 2
	StatusDestroyed Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusEnabled:
		return "ENABLED"
	case StatusDisabled:
		return "DISABLED"
	case StatusDestroyed:
		return "DESTROYED"
	default:
		return "UNKNOWN_STATUS"
	}
}

func (s Status) valid() bool {
	return s == StatusEnabled || s == StatusDisabled || s == StatusDestroyed
}

// MaterialClass says what kind of key material an entry carries.
//
// Numeric values match the keyset wire format and MUST NOT change.
type MaterialClass int32

const (
	MaterialUnknown           MaterialClass = 0
	MaterialSymmetric         MaterialClass = 1
	MaterialAsymmetricPrivate MaterialClass = 2
	MaterialAsymmetricPublic  MaterialClass = 3

	// MaterialRemote marks key material that is only a reference (a key
	// URI) to a key held by an external KMS.
	MaterialRemote MaterialClass = 4
)

func (c MaterialClass) String() string {
	switch c {
	case MaterialSymmetric:
		return "SYMMETRIC"
	case MaterialAsymmetricPrivate:
		return "ASYMMETRIC_PRIVATE"
	case MaterialAsymmetricPublic:
		return "ASYMMETRIC_PUBLIC"
	case MaterialRemote:
		return "REMOTE"
	default:
		return "UNKNOWN_KEYMATERIAL"
	}
}

func (c MaterialClass) valid() bool {
	return c >= MaterialSymmetric && c <= MaterialRemote
}

// PrefixKind selects the output-prefix framing for data produced by a
// key (see package prefix).
//
// Numeric values match the keyset wire format and MUST NOT change.
type PrefixKind int32

const (
	PrefixUnknown PrefixKind = 0
	PrefixTink    PrefixKind = 1
	PrefixLegacy  PrefixKind = 2
	PrefixRaw     PrefixKind = 3
	PrefixCrunchy PrefixKind = 4
)

func (k PrefixKind) String() string {
	switch k {
	case PrefixTink:
		return "TINK"
	case PrefixLegacy:
		return "LEGACY"
	case PrefixRaw:
		return "RAW"
	case PrefixCrunchy:
		return "CRUNCHY"
	default:
		return "UNKNOWN_PREFIX"
	}
}

func (k PrefixKind) valid() bool {
	return k >= PrefixTink && k <= PrefixCrunchy
}

// Entry is one key inside a Keyset.
type Entry struct {
	// KeyID is unique within a keyset. For TINK/LEGACY/CRUNCHY prefixed
	// keys it is baked into every output's prefix bytes.
	KeyID uint32

	// TypeID names the algorithm family; the registry maps it to the key
	// manager that owns the interpretation of Key.
	TypeID string

	// Key is the opaque serialized key material. Empty for destroyed
	// entries.
	Key []byte

	Class  MaterialClass
	Status Status
	Prefix PrefixKind
}

// Clone returns a deep copy; key material bytes are not shared.
func (e Entry) Clone() Entry {
	out := e
	if e.Key != nil {
		out.Key = make([]byte, len(e.Key))
		copy(out.Key, e.Key)
	}
	return out
}

// Wipe zeroizes the entry's key material in place.
func (e *Entry) Wipe() {
	for i := range e.Key {
		e.Key[i] = 0
	}
	e.Key = nil
}

// Keyset is an ordered set of key entries plus the id of the primary
// entry. Entry order is significant: it fixes the candidate order used
// by consume-side dispatch.
type Keyset struct {
	PrimaryKeyID uint32
	Entries      []Entry
}

// Clone returns a deep copy; no key material bytes are shared.
func (ks *Keyset) Clone() *Keyset {
	out := &Keyset{PrimaryKeyID: ks.PrimaryKeyID}
	if ks.Entries != nil {
		out.Entries = make([]Entry, len(ks.Entries))
		for i, e := range ks.Entries {
			out.Entries[i] = e.Clone()
		}
	}
	return out
}

// Entry returns a pointer to the entry with the given key id, or nil.
func (ks *Keyset) Entry(keyID uint32) *Entry {
	for i := range ks.Entries {
		if ks.Entries[i].KeyID == keyID {
			return &ks.Entries[i]
		}
	}
	return nil
}

// Primary returns the primary entry, or nil if PrimaryKeyID dangles.
func (ks *Keyset) Primary() *Entry {
	return ks.Entry(ks.PrimaryKeyID)
}

// Validate checks the keyset invariants:
//
//   - at least one entry
//   - key ids unique
//   - every enum field holds a known value
//   - PrimaryKeyID references an existing, enabled entry
//   - destroyed entries carry no key material
//
// Error messages identify keys by id only; key bytes never appear.
func (ks *Keyset) Validate() error {
	if ks == nil || len(ks.Entries) == 0 {
		return ErrEmptyKeyset
	}
	seen := make(map[uint32]struct{}, len(ks.Entries))
	for i := range ks.Entries {
		e := &ks.Entries[i]
		if _, dup := seen[e.KeyID]; dup {
			return fmt.Errorf("key %d: %w", e.KeyID, ErrDuplicateKeyID)
		}
		seen[e.KeyID] = struct{}{}
		if !e.Status.valid() {
			return fmt.Errorf("key %d: %w", e.KeyID, ErrUnknownStatus)
		}
		if !e.Prefix.valid() {
			return fmt.Errorf("key %d: %w", e.KeyID, ErrUnknownPrefix)
		}
		if !e.Class.valid() {
			return fmt.Errorf("key %d: %w", e.KeyID, ErrUnknownClass)
		}
		if e.TypeID == "" {
			return fmt.Errorf("key %d: empty type id", e.KeyID)
		}
		if e.Status == StatusDestroyed && len(e.Key) != 0 {
			return fmt.Errorf("key %d: %w", e.KeyID, ErrDestroyedHasKey)
		}
	}
	primary := ks.Primary()
	if primary == nil {
		return fmt.Errorf("key %d: %w", ks.PrimaryKeyID, ErrNoPrimary)
	}
	if primary.Status != StatusEnabled {
		return fmt.Errorf("key %d: %w", ks.PrimaryKeyID, ErrPrimaryNotEnabled)
	}
	return nil
}
