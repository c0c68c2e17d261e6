// Package registry is the process-wide mapping from a key type id to
// the key manager that can instantiate primitives from, and generate,
// key material of that type.
//
// Key managers register themselves in init():
//
//	registry.MustRegister(&aesGCMKeyManager{})
//
// The binary must import the algorithm package for registration to
// occur (often as a blank import).
//
// Registration is the only write path and is mutex-serialized; lookups
// may run concurrently once the process has finished registering.
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"xdao.co/keyring/model"
	"xdao.co/keyring/primitive"
)

// KeyManager owns one key type: it knows how to turn serialized key
// material of that type into a usable primitive, and how to mint fresh
// key material from a serialized format/parameters blob.
//
// The serialized key and format bytes are opaque to everything outside
// the manager. Managers must never include key bytes in error messages.
type KeyManager interface {
	// TypeID returns the key type this manager owns.
	TypeID() string

	// Primitive constructs a primitive from serialized key material.
	// The result is one of the package primitive interfaces.
	Primitive(serializedKey []byte) (any, error)

	// NewKey generates fresh serialized key material. The format blob's
	// schema is owned by the manager; nil selects its defaults.
	NewKey(serializedFormat []byte) ([]byte, error)

	// MaterialClass reports what kind of material this type carries.
	MaterialClass() model.MaterialClass
}

// KeyData is serialized key material together with its routing
// metadata, as handed between key managers (e.g. private to public key
// derivation).
type KeyData struct {
	TypeID string
	Value  []byte
	Class  model.MaterialClass
}

// PrivateKeyManager is implemented by managers of asymmetric private
// key types that can derive the corresponding public key material.
type PrivateKeyManager interface {
	KeyManager

	// PublicKeyData returns the public key data for the given private
	// key material.
	PublicKeyData(serializedKey []byte) (KeyData, error)
}

var (
	mu       sync.RWMutex
	managers = map[string]KeyManager{}
	clients  []KMSClient
)

// Register adds a key manager under its type id.
//
// Re-registering the same type id is a no-op when the new manager is
// behaviorally identical (same concrete type and material class);
// otherwise it fails with ErrAlreadyRegistered. Registered managers
// live for the rest of the process.
func Register(km KeyManager) error {
	if km == nil {
		return fmt.Errorf("registry: nil key manager")
	}
	typeID := km.TypeID()
	if typeID == "" {
		return fmt.Errorf("registry: key manager has empty type id")
	}

	mu.Lock()
	defer mu.Unlock()
	existing, ok := managers[typeID]
	if ok {
		if reflect.TypeOf(existing) == reflect.TypeOf(km) &&
			existing.MaterialClass() == km.MaterialClass() {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, typeID)
	}
	managers[typeID] = km
	return nil
}

// MustRegister is like Register but panics on error. Intended for
// init()-time registration where a conflict is a programming error.
func MustRegister(km KeyManager) {
	if err := Register(km); err != nil {
		panic(err)
	}
}

// Lookup returns the key manager registered for typeID.
func Lookup(typeID string) (KeyManager, error) {
	mu.RLock()
	km, ok := managers[typeID]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, typeID)
	}
	return km, nil
}

// Primitive instantiates a primitive for serialized key material of the
// given type.
func Primitive(typeID string, serializedKey []byte) (any, error) {
	km, err := Lookup(typeID)
	if err != nil {
		return nil, err
	}
	p, err := km.Primitive(serializedKey)
	if err != nil {
		return nil, fmt.Errorf("registry: %q: %w", typeID, err)
	}
	return p, nil
}

// NewKey generates fresh serialized key material of the given type.
func NewKey(typeID string, serializedFormat []byte) ([]byte, error) {
	km, err := Lookup(typeID)
	if err != nil {
		return nil, err
	}
	key, err := km.NewKey(serializedFormat)
	if err != nil {
		return nil, fmt.Errorf("registry: %q: %w", typeID, err)
	}
	return key, nil
}

// PublicKeyData derives public key data from private key material of
// the given type. Fails unless the type's manager is a
// PrivateKeyManager.
func PublicKeyData(typeID string, serializedKey []byte) (KeyData, error) {
	km, err := Lookup(typeID)
	if err != nil {
		return KeyData{}, err
	}
	pkm, ok := km.(PrivateKeyManager)
	if !ok {
		return KeyData{}, fmt.Errorf("%w: %q", ErrNotPrivateKey, typeID)
	}
	kd, err := pkm.PublicKeyData(serializedKey)
	if err != nil {
		return KeyData{}, fmt.Errorf("registry: %q: %w", typeID, err)
	}
	return kd, nil
}

// KMSClient resolves key URIs to remote AEADs. Implementations wrap an
// external key-management service; transport failures surface as
// ordinary instantiation errors.
type KMSClient interface {
	// Supports reports whether this client can serve keyURI.
	Supports(keyURI string) bool

	// AEAD returns a primitive backed by the remote key at keyURI.
	AEAD(keyURI string) (primitive.AEAD, error)
}

// RegisterKMSClient makes a KMS client available to Remote key types.
// Clients are consulted in registration order.
func RegisterKMSClient(c KMSClient) {
	mu.Lock()
	defer mu.Unlock()
	clients = append(clients, c)
}

// KMSClientFor returns the first registered client supporting keyURI.
func KMSClientFor(keyURI string) (KMSClient, error) {
	mu.RLock()
	defer mu.RUnlock()
	for _, c := range clients {
		if c.Supports(keyURI) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: no KMS client for key uri", ErrNotRegistered)
}

// Reset drops every registered key manager and KMS client.
//
// FOR TESTS ONLY: production code relies on init()-time registration
// and must never reset the registry.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	managers = map[string]KeyManager{}
	clients = nil
}
