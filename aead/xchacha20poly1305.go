package aead

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"xdao.co/keyring/internal/wire"
	"xdao.co/keyring/model"
	"xdao.co/keyring/registry"
)

// XChaCha20Poly1305TypeID identifies XChaCha20-Poly1305 keys. The
// 24-byte nonce makes random nonces safe at any volume.
const XChaCha20Poly1305TypeID = "xdao.co/keyring/aead/xchacha20-poly1305"

const xChaChaKeyVersion = 0

func init() {
	registry.MustRegister(xChaChaKeyManager{})
}

type xChaChaKeyManager struct{}

func (xChaChaKeyManager) TypeID() string { return XChaCha20Poly1305TypeID }

func (xChaChaKeyManager) MaterialClass() model.MaterialClass { return model.MaterialSymmetric }

func (xChaChaKeyManager) Primitive(serializedKey []byte) (any, error) {
	version, key, err := parseKeyBlob(serializedKey)
	if err != nil {
		return nil, fmt.Errorf("xchacha20-poly1305: %w", registry.ErrInvalidKey)
	}
	if version > xChaChaKeyVersion {
		return nil, fmt.Errorf("xchacha20-poly1305: unsupported key version %d: %w", version, registry.ErrInvalidKey)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("xchacha20-poly1305: key size %d bytes: %w", len(key), registry.ErrInvalidKey)
	}
	a, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("xchacha20-poly1305: %w", registry.ErrInvalidKey)
	}
	return &nonceprefixedAEAD{aead: a}, nil
}

// NewKey generates a fresh 256-bit key. The type has no parameters: any
// format blob content beyond a version field is ignored.
func (xChaChaKeyManager) NewKey(serializedFormat []byte) ([]byte, error) {
	if len(serializedFormat) > 0 {
		if _, err := wire.Parse(serializedFormat); err != nil {
			return nil, fmt.Errorf("xchacha20-poly1305: %w", registry.ErrInvalidFormat)
		}
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("xchacha20-poly1305: reading randomness: %w", err)
	}
	return marshalKeyBlob(xChaChaKeyVersion, key), nil
}
