// Package aead provides the keyset-dispatching AEAD plus the symmetric
// cipher key managers (AES-GCM, XChaCha20-Poly1305, and KMS-backed
// remote keys).
//
// New wraps a whole keyset as a single primitive.AEAD: Seal always uses
// the primary key and stamps its output prefix; Open routes the
// ciphertext to candidate keys by that prefix and returns the first
// success. Key rotation therefore never breaks decryption of old
// ciphertexts while their keys stay enabled.
package aead

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

var _ primitive.AEAD = (*wrapped)(nil)

// New builds the dispatching AEAD for a keyset. Every enabled entry
// must resolve to an AEAD primitive; construction fails otherwise,
// naming the offending key id.
func New(ks *model.Keyset) (primitive.AEAD, error) {
	set, err := primitiveset.New(ks)
	if err != nil {
		return nil, err
	}
	for _, e := range set.Entries() {
		if _, ok := e.Primitive.(primitive.AEAD); !ok {
			return nil, fmt.Errorf("aead: key %d: primitive is not an AEAD", e.KeyID)
		}
	}
	return &wrapped{set: set}, nil
}

// Seal encrypts plaintext under the primary key and prepends the
// primary's output prefix.
func (w *wrapped) Seal(plaintext, associatedData []byte) ([]byte, error) {
	p := w.set.Primary
	ct, err := p.Primitive.(primitive.AEAD).Seal(plaintext, associatedData)
	if err != nil {
		return nil, err
	}
	if p.Prefix == "" {
		return ct, nil
	}
	out := make([]byte, 0, len(p.Prefix)+len(ct))
	out = append(out, p.Prefix...)
	return append(out, ct...), nil
}

// Open decrypts a ciphertext produced by any key in the set.
//
// Prefixed candidates are tried first in keyset order, then every RAW
// key against the whole input. Any overall failure is reported as the
// bare primitive.ErrAuthentication, regardless of how many candidates
// were tried or why they failed.
func (w *wrapped) Open(ciphertext, associatedData []byte) ([]byte, error) {
	if candidate, ok := prefix.Candidate(ciphertext); ok {
		payload := ciphertext[prefix.Size:]
		for _, e := range w.set.ForPrefix(candidate) {
			pt, err := e.Primitive.(primitive.AEAD).Open(payload, associatedData)
			if err == nil {
				return pt, nil
			}
		}
	}
	for _, e := range w.set.Raw() {
		pt, err := e.Primitive.(primitive.AEAD).Open(ciphertext, associatedData)
		if err == nil {
			return pt, nil
		}
	}
	return nil, primitive.ErrAuthentication
}
