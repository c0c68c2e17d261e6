// Package testkit provides deterministic dummy primitives, key
// managers, and keyset builders for tests across the module.
//
// Dummies are reversible and dependency-free so dispatch behavior can
// be asserted without real cryptography. Nothing here registers itself:
// tests call registry.Register explicitly, keeping global-registry
// state an explicit part of each test.
package testkit

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"xdao.co/keyring/internal/wire"
	"xdao.co/keyring/model"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/registry"
)

// DummyAEAD frames plaintext and associated data under its name;
// Open succeeds only against the same name and associated data.
type DummyAEAD struct {
	Name string
}

var _ primitive.AEAD = DummyAEAD{}

func (d DummyAEAD) Seal(plaintext, associatedData []byte) ([]byte, error) {
	var out []byte
	out = wire.AppendBytes(out, 1, []byte(d.Name))
	out = wire.AppendBytes(out, 2, associatedData)
	out = wire.AppendBytes(out, 3, plaintext)
	return out, nil
}

func (d DummyAEAD) Open(ciphertext, associatedData []byte) ([]byte, error) {
	fields, err := wire.Parse(ciphertext)
	if err != nil {
		return nil, primitive.ErrAuthentication
	}
	var name, ad, pt []byte
	var sawPT bool
	for _, f := range fields {
		switch f.Num {
		case 1:
			name = f.Bytes
		case 2:
			ad = f.Bytes
		case 3:
			pt = append([]byte(nil), f.Bytes...)
			sawPT = true
		default:
			return nil, primitive.ErrAuthentication
		}
	}
	if !sawPT || string(name) != d.Name || !bytes.Equal(ad, associatedData) {
		return nil, primitive.ErrAuthentication
	}
	return pt, nil
}

// DummyMAC tags data with a name-keyed digest.
type DummyMAC struct {
	Name string
}

var _ primitive.MAC = DummyMAC{}

func (d DummyMAC) Tag(data []byte) ([]byte, error) {
	sum := sha256.Sum256(append([]byte(d.Name), data...))
	return sum[:16], nil
}

func (d DummyMAC) Check(tag, data []byte) error {
	want, _ := d.Tag(data)
	if !bytes.Equal(tag, want) {
		return primitive.ErrAuthentication
	}
	return nil
}

// DummySigner and DummyVerifier implement a shared-secret "signature":
// the signature is a name-keyed digest, so a verifier with the same
// name accepts exactly what the signer produced.
type DummySigner struct {
	Name string
}

type DummyVerifier struct {
	Name string
}

var (
	_ primitive.Signer   = DummySigner{}
	_ primitive.Verifier = DummyVerifier{}
)

func (d DummySigner) Sign(data []byte) ([]byte, error) {
	sum := sha256.Sum256(append([]byte("sig/"+d.Name), data...))
	return sum[:], nil
}

func (d DummyVerifier) Verify(sig, data []byte) error {
	want, _ := DummySigner{Name: d.Name}.Sign(data)
	if !bytes.Equal(sig, want) {
		return primitive.ErrAuthentication
	}
	return nil
}

// KeyManager serves any of the dummy primitives: the serialized key
// bytes become the dummy's name. Kind selects the primitive built.
type KeyManager struct {
	ID    string
	Kind  Kind
	Class model.MaterialClass
}

// Kind selects which dummy primitive a KeyManager instantiates.
type Kind int

const (
	KindAEAD Kind = iota
	KindMAC
	KindSigner
	KindVerifier
)

var _ registry.KeyManager = KeyManager{}

func (m KeyManager) TypeID() string { return m.ID }

func (m KeyManager) MaterialClass() model.MaterialClass {
	if m.Class != 0 {
		return m.Class
	}
	return model.MaterialSymmetric
}

func (m KeyManager) Primitive(serializedKey []byte) (any, error) {
	if len(serializedKey) == 0 {
		return nil, fmt.Errorf("testkit: %w", registry.ErrInvalidKey)
	}
	name := string(serializedKey)
	switch m.Kind {
	case KindAEAD:
		return DummyAEAD{Name: name}, nil
	case KindMAC:
		return DummyMAC{Name: name}, nil
	case KindSigner:
		return DummySigner{Name: name}, nil
	case KindVerifier:
		return DummyVerifier{Name: name}, nil
	default:
		return nil, fmt.Errorf("testkit: unknown dummy kind %d", m.Kind)
	}
}

func (m KeyManager) NewKey(serializedFormat []byte) ([]byte, error) {
	if len(serializedFormat) == 0 {
		return []byte("generated"), nil
	}
	return append([]byte(nil), serializedFormat...), nil
}

// KMSClient resolves every uri under its prefix to a DummyAEAD named by
// the full uri.
type KMSClient struct {
	Prefix string
}

var _ registry.KMSClient = KMSClient{}

func (c KMSClient) Supports(keyURI string) bool {
	return len(keyURI) >= len(c.Prefix) && keyURI[:len(c.Prefix)] == c.Prefix
}

func (c KMSClient) AEAD(keyURI string) (primitive.AEAD, error) {
	if !c.Supports(keyURI) {
		return nil, fmt.Errorf("testkit: unsupported key uri")
	}
	return DummyAEAD{Name: keyURI}, nil
}

// NewKeyset builds the canonical test keyset: a primary with the given
// prefix kind (key id 42), then one enabled key per prefix kind with
// fixed ids, all of the given type. Key material is the key's name.
func NewKeyset(typeID string, primaryKind model.PrefixKind) *model.Keyset {
	entry := func(id uint32, kind model.PrefixKind, name string) model.Entry {
		return model.Entry{
			KeyID:  id,
			TypeID: typeID,
			Key:    []byte(name),
			Class:  model.MaterialSymmetric,
			Status: model.StatusEnabled,
			Prefix: kind,
		}
	}
	return &model.Keyset{
		PrimaryKeyID: 42,
		Entries: []model.Entry{
			entry(42, primaryKind, "primary"),
			entry(43, model.PrefixRaw, "raw"),
			entry(44, model.PrefixLegacy, "legacy"),
			entry(45, model.PrefixTink, "tink"),
			entry(46, model.PrefixCrunchy, "crunchy"),
		},
	}
}

// SingleKeyset builds a one-key keyset around existing key material.
func SingleKeyset(typeID string, keyID uint32, kind model.PrefixKind, class model.MaterialClass, key []byte) *model.Keyset {
	return &model.Keyset{
		PrimaryKeyID: keyID,
		Entries: []model.Entry{{
			KeyID:  keyID,
			TypeID: typeID,
			Key:    key,
			Class:  class,
			Status: model.StatusEnabled,
			Prefix: kind,
		}},
	}
}
