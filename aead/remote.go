package aead

import (
	"fmt"

	"xdao.co/keyring/internal/wire"
	"xdao.co/keyring/model"
	"xdao.co/keyring/registry"
)

// RemoteTypeID identifies keys whose material is only a key URI; the
// actual cryptography happens in an external KMS resolved through the
// registry's KMS clients.
const RemoteTypeID = "xdao.co/keyring/aead/remote"

const remoteKeyVersion = 0

func init() {
	registry.MustRegister(remoteKeyManager{})
}

// RemoteKeyFormat builds the key-generation format blob referencing the
// KMS key at keyURI.
func RemoteKeyFormat(keyURI string) []byte {
	var out []byte
	out = wire.AppendBytes(out, fBlobValue, []byte(keyURI))
	return out
}

type remoteKeyManager struct{}

func (remoteKeyManager) TypeID() string { return RemoteTypeID }

func (remoteKeyManager) MaterialClass() model.MaterialClass { return model.MaterialRemote }

func (remoteKeyManager) Primitive(serializedKey []byte) (any, error) {
	version, uri, err := parseKeyBlob(serializedKey)
	if err != nil {
		return nil, fmt.Errorf("remote: %w", registry.ErrInvalidKey)
	}
	if version > remoteKeyVersion {
		return nil, fmt.Errorf("remote: unsupported key version %d: %w", version, registry.ErrInvalidKey)
	}
	if len(uri) == 0 {
		return nil, fmt.Errorf("remote: empty key uri: %w", registry.ErrInvalidKey)
	}
	client, err := registry.KMSClientFor(string(uri))
	if err != nil {
		return nil, err
	}
	a, err := client.AEAD(string(uri))
	if err != nil {
		return nil, fmt.Errorf("remote: resolving key uri: %w", err)
	}
	return a, nil
}

// NewKey mints no material: a remote key is just its URI, carried over
// from the format blob.
func (remoteKeyManager) NewKey(serializedFormat []byte) ([]byte, error) {
	_, uri, err := parseKeyBlob(serializedFormat)
	if err != nil {
		return nil, fmt.Errorf("remote: %w", registry.ErrInvalidFormat)
	}
	if len(uri) == 0 {
		return nil, fmt.Errorf("remote: empty key uri: %w", registry.ErrInvalidFormat)
	}
	return marshalKeyBlob(remoteKeyVersion, uri), nil
}
