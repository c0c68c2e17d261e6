// Package signature provides the keyset-dispatching Signer and
// Verifier plus the signing key managers (Ed25519, ECDSA P-256,
// Dilithium3).
//
// Signing keysets hold private key material only; verification keysets
// hold public material only, typically derived via keyset.Public.
// LEGACY-prefixed keys sign data plus a trailing zero byte, on both
// sides, matching the historical framing.
package signature

import (
	"fmt"

	"xdao.co/keyring/model"
	"xdao.co/keyring/prefix"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/primitiveset"
)

type signerWrapped struct {
	set *primitiveset.Set
}

type verifierWrapped struct {
	set *primitiveset.Set
}

var (
	_ primitive.Signer   = (*signerWrapped)(nil)
	_ primitive.Verifier = (*verifierWrapped)(nil)
)

// NewSigner builds the dispatching Signer for a private keyset. Every
// enabled entry must resolve to a Signer primitive.
func NewSigner(ks *model.Keyset) (primitive.Signer, error) {
	set, err := primitiveset.New(ks)
	if err != nil {
		return nil, err
	}
	for _, e := range set.Entries() {
		if _, ok := e.Primitive.(primitive.Signer); !ok {
			return nil, fmt.Errorf("signature: key %d: primitive is not a signer", e.KeyID)
		}
	}
	return &signerWrapped{set: set}, nil
}

// NewVerifier builds the dispatching Verifier for a public keyset.
// Every enabled entry must resolve to a Verifier primitive.
func NewVerifier(ks *model.Keyset) (primitive.Verifier, error) {
	set, err := primitiveset.New(ks)
	if err != nil {
		return nil, err
	}
	for _, e := range set.Entries() {
		if _, ok := e.Primitive.(primitive.Verifier); !ok {
			return nil, fmt.Errorf("signature: key %d: primitive is not a verifier", e.KeyID)
		}
	}
	return &verifierWrapped{set: set}, nil
}

// Sign signs data under the primary key and prepends its output prefix.
func (w *signerWrapped) Sign(data []byte) ([]byte, error) {
	p := w.set.Primary
	sig, err := p.Primitive.(primitive.Signer).Sign(legacyData(p.Kind, data))
	if err != nil {
		return nil, err
	}
	if p.Prefix == "" {
		return sig, nil
	}
	out := make([]byte, 0, len(p.Prefix)+len(sig))
	out = append(out, p.Prefix...)
	return append(out, sig...), nil
}

// Verify accepts a signature produced by any key in the set: prefixed
// candidates in keyset order first, then RAW keys against the whole
// signature. Failure is always the bare primitive.ErrAuthentication.
func (w *verifierWrapped) Verify(sig, data []byte) error {
	if candidate, ok := prefix.Candidate(sig); ok {
		payload := sig[prefix.Size:]
		for _, e := range w.set.ForPrefix(candidate) {
			if e.Primitive.(primitive.Verifier).Verify(payload, legacyData(e.Kind, data)) == nil {
				return nil
			}
		}
	}
	for _, e := range w.set.Raw() {
		if e.Primitive.(primitive.Verifier).Verify(sig, data) == nil {
			return nil
		}
	}
	return primitive.ErrAuthentication
}

func legacyData(kind model.PrefixKind, data []byte) []byte {
	if kind != model.PrefixLegacy {
		return data
	}
	out := make([]byte, 0, len(data)+len(prefix.LegacySuffix))
	out = append(out, data...)
	return append(out, prefix.LegacySuffix...)
}
