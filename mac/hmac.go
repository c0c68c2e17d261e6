package mac

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"xdao.co/keyring/internal/wire"
	"xdao.co/keyring/model"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/registry"
)

// HMACTypeID identifies HMAC keys (SHA-256 or SHA-512, truncatable tag).
const HMACTypeID = "xdao.co/keyring/mac/hmac"

const hmacKeyVersion = 0

// Hash selects the HMAC hash function. Numeric values are part of the
// key blob format.
type Hash uint64

const (
	SHA256 Hash = 1
	SHA512 Hash = 2
)

func (h Hash) new() (func() hash.Hash, int) {
	switch h {
	case SHA256:
		return sha256.New, sha256.Size
	case SHA512:
		return sha512.New, sha512.Size
	default:
		return nil, 0
	}
}

// Key blob and format blob fields: 1 version (varint), 2 key bytes
// (blob only), 3 hash (varint), 4 tag size in bytes (varint), 5 key
// size in bytes (format only).
const (
	fVersion = 1
	fKey     = 2
	fHash    = 3
	fTagSize = 4
	fKeySize = 5
)

const minTagSize = 10
const minKeySize = 16

func init() {
	registry.MustRegister(hmacKeyManager{})
}

// HMACKeyFormat builds the key-generation format blob.
func HMACKeyFormat(h Hash, keySize, tagSize uint32) []byte {
	var out []byte
	out = wire.AppendVarint(out, fVersion, hmacKeyVersion)
	out = wire.AppendVarint(out, fHash, uint64(h))
	out = wire.AppendVarint(out, fTagSize, uint64(tagSize))
	out = wire.AppendVarint(out, fKeySize, uint64(keySize))
	return out
}

type hmacKeyManager struct{}

func (hmacKeyManager) TypeID() string { return HMACTypeID }

func (hmacKeyManager) MaterialClass() model.MaterialClass { return model.MaterialSymmetric }

func (hmacKeyManager) Primitive(serializedKey []byte) (any, error) {
	fields, err := wire.Parse(serializedKey)
	if err != nil {
		return nil, fmt.Errorf("hmac: %w", registry.ErrInvalidKey)
	}
	var version uint64
	var key []byte
	var h Hash
	var tagSize uint64
	for _, f := range fields {
		switch f.Num {
		case fVersion:
			version = f.Varint
		case fKey:
			key = append([]byte(nil), f.Bytes...)
		case fHash:
			h = Hash(f.Varint)
		case fTagSize:
			tagSize = f.Varint
		}
	}
	if version > hmacKeyVersion {
		return nil, fmt.Errorf("hmac: unsupported key version %d: %w", version, registry.ErrInvalidKey)
	}
	newHash, hashSize := h.new()
	if newHash == nil {
		return nil, fmt.Errorf("hmac: unsupported hash %d: %w", h, registry.ErrInvalidKey)
	}
	if len(key) < minKeySize {
		return nil, fmt.Errorf("hmac: key size %d bytes: %w", len(key), registry.ErrInvalidKey)
	}
	if tagSize < minTagSize || tagSize > uint64(hashSize) {
		return nil, fmt.Errorf("hmac: tag size %d bytes: %w", tagSize, registry.ErrInvalidKey)
	}
	return &hmacMAC{newHash: newHash, key: key, tagSize: int(tagSize)}, nil
}

func (hmacKeyManager) NewKey(serializedFormat []byte) ([]byte, error) {
	// Defaults: HMAC-SHA256, 32-byte key, full-length tag.
	h, keySize, tagSize := SHA256, uint64(32), uint64(sha256.Size)
	if len(serializedFormat) > 0 {
		fields, err := wire.Parse(serializedFormat)
		if err != nil {
			return nil, fmt.Errorf("hmac: %w", registry.ErrInvalidFormat)
		}
		for _, f := range fields {
			switch f.Num {
			case fHash:
				h = Hash(f.Varint)
			case fTagSize:
				tagSize = f.Varint
			case fKeySize:
				keySize = f.Varint
			}
		}
	}
	newHash, hashSize := h.new()
	if newHash == nil {
		return nil, fmt.Errorf("hmac: unsupported hash %d: %w", h, registry.ErrInvalidFormat)
	}
	if keySize < minKeySize {
		return nil, fmt.Errorf("hmac: key size %d bytes: %w", keySize, registry.ErrInvalidFormat)
	}
	if tagSize < minTagSize || tagSize > uint64(hashSize) {
		return nil, fmt.Errorf("hmac: tag size %d bytes: %w", tagSize, registry.ErrInvalidFormat)
	}
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("hmac: reading randomness: %w", err)
	}
	var out []byte
	out = wire.AppendBytes(out, fKey, key)
	out = wire.AppendVarint(out, fHash, uint64(h))
	out = wire.AppendVarint(out, fTagSize, tagSize)
	return out, nil
}

type hmacMAC struct {
	newHash func() hash.Hash
	key     []byte
	tagSize int
}

func (m *hmacMAC) Tag(data []byte) ([]byte, error) {
	mac := hmac.New(m.newHash, m.key)
	mac.Write(data)
	return mac.Sum(nil)[:m.tagSize], nil
}

func (m *hmacMAC) Check(tag, data []byte) error {
	want, err := m.Tag(data)
	if err != nil {
		return primitive.ErrAuthentication
	}
	if !hmac.Equal(tag, want) {
		return primitive.ErrAuthentication
	}
	return nil
}
