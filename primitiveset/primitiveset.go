// Package primitiveset resolves a validated keyset into ready-to-use
// primitives, indexed by output prefix for consume-side candidate
// lookup.
//
// A Set is built once and read-only afterwards, so it can be shared
// freely across goroutines. If the source keyset changes, build a new
// Set.
package primitiveset

import (
	"fmt"

	"xdao.co/keyring/model"
	"xdao.co/keyring/prefix"
	"xdao.co/keyring/registry"
)

// Entry is one resolved key: its instantiated primitive plus the
// framing metadata dispatch needs.
type Entry struct {
	KeyID     uint32
	Primitive any

	// Prefix is the entry's computed output prefix ("" for RAW).
	Prefix string
	Kind   model.PrefixKind
	Status model.Status
}

// Set holds the resolved primitives of one keyset snapshot.
type Set struct {
	// Primary is the entry data produced by this keyset routes through.
	Primary *Entry

	byPrefix map[string][]*Entry
	ordered  []*Entry
}

// Options controls which entries are resolved into the set.
type Options struct {
	// IncludeDisabled admits DISABLED entries alongside ENABLED ones.
	// The default (false) is what consume-side dispatch wants: a
	// disabled key must stop opening old data. Destroyed entries are
	// never included.
	IncludeDisabled bool
}

// New resolves every enabled entry of ks through the registry.
func New(ks *model.Keyset) (*Set, error) {
	return NewWithOptions(ks, Options{})
}

// NewWithOptions is New with control over entry selection.
func NewWithOptions(ks *model.Keyset, opts Options) (*Set, error) {
	if err := ks.Validate(); err != nil {
		return nil, err
	}
	set := &Set{byPrefix: make(map[string][]*Entry)}
	for i := range ks.Entries {
		ke := &ks.Entries[i]
		switch ke.Status {
		case model.StatusDestroyed:
			continue
		case model.StatusDisabled:
			if !opts.IncludeDisabled {
				continue
			}
		}

		// Instantiation failures happen at setup time, not on the
		// consume path, so naming the offending key is safe and useful.
		p, err := registry.Primitive(ke.TypeID, ke.Key)
		if err != nil {
			return nil, fmt.Errorf("primitiveset: key %d: %w", ke.KeyID, err)
		}
		pfx, err := prefix.Compute(ke.Prefix, ke.KeyID)
		if err != nil {
			return nil, fmt.Errorf("primitiveset: key %d: %w", ke.KeyID, err)
		}
		entry := &Entry{
			KeyID:     ke.KeyID,
			Primitive: p,
			Prefix:    string(pfx),
			Kind:      ke.Prefix,
			Status:    ke.Status,
		}
		set.ordered = append(set.ordered, entry)
		set.byPrefix[entry.Prefix] = append(set.byPrefix[entry.Prefix], entry)
		if ke.KeyID == ks.PrimaryKeyID {
			set.Primary = entry
		}
	}
	if set.Primary == nil {
		// Validate guarantees an enabled primary, so it is always
		// resolved above; this guards future selection changes.
		return nil, fmt.Errorf("primitiveset: %w", model.ErrNoPrimary)
	}
	return set, nil
}

// ForPrefix returns the entries whose computed prefix equals candidate,
// in keyset order. Candidate order across calls is deterministic.
func (s *Set) ForPrefix(candidate []byte) []*Entry {
	return s.byPrefix[string(candidate)]
}

// Raw returns the RAW-prefixed entries in keyset order. Raw entries
// match any input and are always tried after prefixed candidates.
func (s *Set) Raw() []*Entry {
	return s.byPrefix[""]
}

// Entries returns every resolved entry in keyset order.
func (s *Set) Entries() []*Entry {
	return s.ordered
}
