package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"xdao.co/keyring/internal/wire"
	"xdao.co/keyring/model"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/registry"
)

// Ed25519TypeID identifies Ed25519 private keys (material: 32-byte
// seed); Ed25519PublicTypeID the corresponding public keys (material:
// 32-byte public key).
const (
	Ed25519TypeID       = "xdao.co/keyring/signature/ed25519"
	Ed25519PublicTypeID = "xdao.co/keyring/signature/ed25519-public"
)

const ed25519KeyVersion = 0

func init() {
	registry.MustRegister(ed25519PrivateKeyManager{})
	registry.MustRegister(ed25519PublicKeyManager{})
}

type ed25519PrivateKeyManager struct{}

func (ed25519PrivateKeyManager) TypeID() string { return Ed25519TypeID }

func (ed25519PrivateKeyManager) MaterialClass() model.MaterialClass {
	return model.MaterialAsymmetricPrivate
}

func (ed25519PrivateKeyManager) Primitive(serializedKey []byte) (any, error) {
	seed, err := ed25519Seed(serializedKey)
	if err != nil {
		return nil, err
	}
	return &ed25519Signer{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

func (ed25519PrivateKeyManager) NewKey(serializedFormat []byte) ([]byte, error) {
	if len(serializedFormat) > 0 {
		if _, err := wire.Parse(serializedFormat); err != nil {
			return nil, fmt.Errorf("ed25519: %w", registry.ErrInvalidFormat)
		}
	}
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("ed25519: reading randomness: %w", err)
	}
	return marshalKeyBlob(ed25519KeyVersion, seed), nil
}

func (ed25519PrivateKeyManager) PublicKeyData(serializedKey []byte) (registry.KeyData, error) {
	seed, err := ed25519Seed(serializedKey)
	if err != nil {
		return registry.KeyData{}, err
	}
	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	return registry.KeyData{
		TypeID: Ed25519PublicTypeID,
		Value:  marshalKeyBlob(ed25519KeyVersion, pub),
		Class:  model.MaterialAsymmetricPublic,
	}, nil
}

func ed25519Seed(serializedKey []byte) ([]byte, error) {
	version, seed, err := parseKeyBlob(serializedKey)
	if err != nil {
		return nil, fmt.Errorf("ed25519: %w", registry.ErrInvalidKey)
	}
	if version > ed25519KeyVersion {
		return nil, fmt.Errorf("ed25519: unsupported key version %d: %w", version, registry.ErrInvalidKey)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519: seed size %d bytes: %w", len(seed), registry.ErrInvalidKey)
	}
	return seed, nil
}

type ed25519PublicKeyManager struct{}

func (ed25519PublicKeyManager) TypeID() string { return Ed25519PublicTypeID }

func (ed25519PublicKeyManager) MaterialClass() model.MaterialClass {
	return model.MaterialAsymmetricPublic
}

func (ed25519PublicKeyManager) Primitive(serializedKey []byte) (any, error) {
	version, pub, err := parseKeyBlob(serializedKey)
	if err != nil {
		return nil, fmt.Errorf("ed25519: %w", registry.ErrInvalidKey)
	}
	if version > ed25519KeyVersion {
		return nil, fmt.Errorf("ed25519: unsupported key version %d: %w", version, registry.ErrInvalidKey)
	}
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("ed25519: public key size %d bytes: %w", len(pub), registry.ErrInvalidKey)
	}
	return &ed25519Verifier{pub: ed25519.PublicKey(pub)}, nil
}

// NewKey is rejected: public keys are derived from private ones, never
// generated.
func (ed25519PublicKeyManager) NewKey(serializedFormat []byte) ([]byte, error) {
	return nil, fmt.Errorf("ed25519: cannot generate a public key: %w", registry.ErrInvalidFormat)
}

type ed25519Signer struct {
	priv ed25519.PrivateKey
}

func (s *ed25519Signer) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, data), nil
}

type ed25519Verifier struct {
	pub ed25519.PublicKey
}

func (v *ed25519Verifier) Verify(sig, data []byte) error {
	if !ed25519.Verify(v.pub, data, sig) {
		return primitive.ErrAuthentication
	}
	return nil
}
