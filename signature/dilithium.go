package signature

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"

	"xdao.co/keyring/internal/wire"
	"xdao.co/keyring/model"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/registry"
)

// Dilithium3TypeID identifies Dilithium3 private keys (material: 32-byte
// seed); Dilithium3PublicTypeID the corresponding public keys (material:
// packed public key). Signatures are over the SHA3-256 digest of the
// data.
const (
	Dilithium3TypeID       = "xdao.co/keyring/signature/dilithium3"
	Dilithium3PublicTypeID = "xdao.co/keyring/signature/dilithium3-public"
)

const dilithiumKeyVersion = 0

func init() {
	registry.MustRegister(dilithiumPrivateKeyManager{})
	registry.MustRegister(dilithiumPublicKeyManager{})
}

type dilithiumPrivateKeyManager struct{}

func (dilithiumPrivateKeyManager) TypeID() string { return Dilithium3TypeID }

func (dilithiumPrivateKeyManager) MaterialClass() model.MaterialClass {
	return model.MaterialAsymmetricPrivate
}

func (dilithiumPrivateKeyManager) Primitive(serializedKey []byte) (any, error) {
	_, priv, err := dilithiumKeyPair(serializedKey)
	if err != nil {
		return nil, err
	}
	return &dilithiumSigner{priv: priv}, nil
}

func (dilithiumPrivateKeyManager) NewKey(serializedFormat []byte) ([]byte, error) {
	if len(serializedFormat) > 0 {
		if _, err := wire.Parse(serializedFormat); err != nil {
			return nil, fmt.Errorf("dilithium3: %w", registry.ErrInvalidFormat)
		}
	}
	var seed [mode3.SeedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("dilithium3: reading randomness: %w", err)
	}
	return marshalKeyBlob(dilithiumKeyVersion, seed[:]), nil
}

func (dilithiumPrivateKeyManager) PublicKeyData(serializedKey []byte) (registry.KeyData, error) {
	pub, _, err := dilithiumKeyPair(serializedKey)
	if err != nil {
		return registry.KeyData{}, err
	}
	packed, err := pub.MarshalBinary()
	if err != nil {
		return registry.KeyData{}, fmt.Errorf("dilithium3: encoding public key: %w", err)
	}
	return registry.KeyData{
		TypeID: Dilithium3PublicTypeID,
		Value:  marshalKeyBlob(dilithiumKeyVersion, packed),
		Class:  model.MaterialAsymmetricPublic,
	}, nil
}

func dilithiumKeyPair(serializedKey []byte) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	version, seed, err := parseKeyBlob(serializedKey)
	if err != nil {
		return nil, nil, fmt.Errorf("dilithium3: %w", registry.ErrInvalidKey)
	}
	if version > dilithiumKeyVersion {
		return nil, nil, fmt.Errorf("dilithium3: unsupported key version %d: %w", version, registry.ErrInvalidKey)
	}
	if len(seed) != mode3.SeedSize {
		return nil, nil, fmt.Errorf("dilithium3: seed size %d bytes: %w", len(seed), registry.ErrInvalidKey)
	}
	var s [mode3.SeedSize]byte
	copy(s[:], seed)
	pub, priv := mode3.NewKeyFromSeed(&s)
	return pub, priv, nil
}

type dilithiumPublicKeyManager struct{}

func (dilithiumPublicKeyManager) TypeID() string { return Dilithium3PublicTypeID }

func (dilithiumPublicKeyManager) MaterialClass() model.MaterialClass {
	return model.MaterialAsymmetricPublic
}

func (dilithiumPublicKeyManager) Primitive(serializedKey []byte) (any, error) {
	version, packed, err := parseKeyBlob(serializedKey)
	if err != nil {
		return nil, fmt.Errorf("dilithium3: %w", registry.ErrInvalidKey)
	}
	if version > dilithiumKeyVersion {
		return nil, fmt.Errorf("dilithium3: unsupported key version %d: %w", version, registry.ErrInvalidKey)
	}
	if len(packed) != mode3.PublicKeySize {
		return nil, fmt.Errorf("dilithium3: public key size %d bytes: %w", len(packed), registry.ErrInvalidKey)
	}
	var pub mode3.PublicKey
	if err := pub.UnmarshalBinary(packed); err != nil {
		return nil, fmt.Errorf("dilithium3: %w", registry.ErrInvalidKey)
	}
	return &dilithiumVerifier{pub: &pub}, nil
}

func (dilithiumPublicKeyManager) NewKey(serializedFormat []byte) ([]byte, error) {
	return nil, fmt.Errorf("dilithium3: cannot generate a public key: %w", registry.ErrInvalidFormat)
}

type dilithiumSigner struct {
	priv *mode3.PrivateKey
}

func (s *dilithiumSigner) Sign(data []byte) ([]byte, error) {
	digest := sha3.Sum256(data)
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.priv, digest[:], sig)
	return sig, nil
}

type dilithiumVerifier struct {
	pub *mode3.PublicKey
}

func (v *dilithiumVerifier) Verify(sig, data []byte) error {
	digest := sha3.Sum256(data)
	if !mode3.Verify(v.pub, digest[:], sig) {
		return primitive.ErrAuthentication
	}
	return nil
}
