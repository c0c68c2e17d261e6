// Package mac provides the keyset-dispatching MAC plus the HMAC key
// manager.
//
// Tag always uses the primary key and stamps its output prefix; Check
// routes the tag to candidate keys by that prefix. LEGACY-prefixed keys
// authenticate data plus a trailing zero byte, on both sides, matching
// the historical framing.
package mac

import (
	"fmt"

	"xdao.co/keyring/model"
	"xdao.co/keyring/prefix"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/primitiveset"
)

type wrapped struct {
	set *primitiveset.Set
}

var _ primitive.MAC = (*wrapped)(nil)

// New builds the dispatching MAC for a keyset. Every enabled entry must
// resolve to a MAC primitive.
func New(ks *model.Keyset) (primitive.MAC, error) {
	set, err := primitiveset.New(ks)
	if err != nil {
		return nil, err
	}
	for _, e := range set.Entries() {
		if _, ok := e.Primitive.(primitive.MAC); !ok {
			return nil, fmt.Errorf("mac: key %d: primitive is not a MAC", e.KeyID)
		}
	}
	return &wrapped{set: set}, nil
}

// Tag computes the authentication code under the primary key, prefixed.
func (w *wrapped) Tag(data []byte) ([]byte, error) {
	p := w.set.Primary
	tag, err := p.Primitive.(primitive.MAC).Tag(legacyData(p.Kind, data))
	if err != nil {
		return nil, err
	}
	if p.Prefix == "" {
		return tag, nil
	}
	out := make([]byte, 0, len(p.Prefix)+len(tag))
	out = append(out, p.Prefix...)
	return append(out, tag...), nil
}

// Check verifies a tag produced by any key in the set: prefixed
// candidates in keyset order first, then RAW keys against the whole
// tag. Failure is always the bare primitive.ErrAuthentication.
func (w *wrapped) Check(tag, data []byte) error {
	if candidate, ok := prefix.Candidate(tag); ok {
		payload := tag[prefix.Size:]
		for _, e := range w.set.ForPrefix(candidate) {
			if e.Primitive.(primitive.MAC).Check(payload, legacyData(e.Kind, data)) == nil {
				return nil
			}
		}
	}
	for _, e := range w.set.Raw() {
		if e.Primitive.(primitive.MAC).Check(tag, data) == nil {
			return nil
		}
	}
	return primitive.ErrAuthentication
}

// legacyData appends the LEGACY trailing zero when the key calls for
// it. The copy never aliases data.
func legacyData(kind model.PrefixKind, data []byte) []byte {
	if kind != model.PrefixLegacy {
		return data
	}
	out := make([]byte, 0, len(data)+len(prefix.LegacySuffix))
	out = append(out, data...)
	return append(out, prefix.LegacySuffix...)
}
