package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"xdao.co/keyring/internal/wire"
	"xdao.co/keyring/model"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/registry"
)

// AESGCMTypeID identifies AES-GCM keys (128- or 256-bit).
const AESGCMTypeID = "xdao.co/keyring/aead/aes-gcm"

const aesGCMKeyVersion = 0

// Key blob: 1 version (varint), 2 key bytes.
// Format blob: 1 version (varint), 2 key size in bytes (varint).
const (
	fBlobVersion = 1
	fBlobValue   = 2
)

func init() {
	registry.MustRegister(aesGCMKeyManager{})
}

// AESGCMKeyFormat builds the key-generation format blob for an AES-GCM
// key of the given size in bytes (16 or 32).
func AESGCMKeyFormat(keySize uint32) []byte {
	var out []byte
	out = wire.AppendVarint(out, fBlobVersion, aesGCMKeyVersion)
	out = wire.AppendVarint(out, fBlobValue, uint64(keySize))
	return out
}

type aesGCMKeyManager struct{}

func (aesGCMKeyManager) TypeID() string { return AESGCMTypeID }

func (aesGCMKeyManager) MaterialClass() model.MaterialClass { return model.MaterialSymmetric }

func (aesGCMKeyManager) Primitive(serializedKey []byte) (any, error) {
	version, key, err := parseKeyBlob(serializedKey)
	if err != nil {
		return nil, fmt.Errorf("aes-gcm: %w", registry.ErrInvalidKey)
	}
	if version > aesGCMKeyVersion {
		return nil, fmt.Errorf("aes-gcm: unsupported key version %d: %w", version, registry.ErrInvalidKey)
	}
	if err := validAESKeySize(len(key)); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes-gcm: %w", registry.ErrInvalidKey)
	}
	g, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("aes-gcm: %w", registry.ErrInvalidKey)
	}
	return &nonceprefixedAEAD{aead: g}, nil
}

func (aesGCMKeyManager) NewKey(serializedFormat []byte) ([]byte, error) {
	size := uint64(32)
	if len(serializedFormat) > 0 {
		fields, err := wire.Parse(serializedFormat)
		if err != nil {
			return nil, fmt.Errorf("aes-gcm: %w", registry.ErrInvalidFormat)
		}
		for _, f := range fields {
			if f.Num == fBlobValue {
				size = f.Varint
			}
		}
	}
	if err := validAESKeySize(int(size)); err != nil {
		return nil, err
	}
	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("aes-gcm: reading randomness: %w", err)
	}
	return marshalKeyBlob(aesGCMKeyVersion, key), nil
}

func validAESKeySize(n int) error {
	if n != 16 && n != 32 {
		return fmt.Errorf("aes-gcm: key size %d bytes: %w", n, registry.ErrInvalidFormat)
	}
	return nil
}

// nonceprefixedAEAD runs a cipher.AEAD with a fresh random nonce
// prepended to each ciphertext.
type nonceprefixedAEAD struct {
	aead cipher.AEAD
}

func (a *nonceprefixedAEAD) Seal(plaintext, associatedData []byte) ([]byte, error) {
	nonce := make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("aead: reading randomness: %w", err)
	}
	return a.aead.Seal(nonce, nonce, plaintext, associatedData), nil
}

func (a *nonceprefixedAEAD) Open(ciphertext, associatedData []byte) ([]byte, error) {
	ns := a.aead.NonceSize()
	if len(ciphertext) < ns {
		return nil, primitive.ErrAuthentication
	}
	pt, err := a.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], associatedData)
	if err != nil {
		// Collapse the cipher's reason; this is the adversarial path.
		return nil, primitive.ErrAuthentication
	}
	return pt, nil
}

func marshalKeyBlob(version uint64, material []byte) []byte {
	var out []byte
	if version != 0 {
		out = wire.AppendVarint(out, fBlobVersion, version)
	}
	out = wire.AppendBytes(out, fBlobValue, material)
	return out
}

func parseKeyBlob(data []byte) (version uint64, material []byte, err error) {
	fields, err := wire.Parse(data)
	if err != nil {
		return 0, nil, err
	}
	for _, f := range fields {
		switch f.Num {
		case fBlobVersion:
			version = f.Varint
		case fBlobValue:
			material = append([]byte(nil), f.Bytes...)
		}
	}
	return version, material, nil
}
