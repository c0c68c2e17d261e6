package registry

import "errors"

var (
	// ErrAlreadyRegistered reports a type id registered with a
	// behaviorally different key manager.
	ErrAlreadyRegistered = errors.New("keyring: type id already registered with different behavior")

	// ErrNotRegistered reports an unknown type id or key uri.
	ErrNotRegistered = errors.New("keyring: not registered")

	// ErrNotPrivateKey reports a public-key derivation attempt on a type
	// whose manager holds no private keys.
	ErrNotPrivateKey = errors.New("keyring: type does not manage private keys")

	// ErrInvalidKey reports serialized key material a key manager
	// rejected (bad length, version, or parameters). Raised on
	// administrative paths only; diagnostic detail is permitted but key
	// bytes are not.
	ErrInvalidKey = errors.New("keyring: invalid key material")

	// ErrInvalidFormat reports a rejected key-generation format blob.
	ErrInvalidFormat = errors.New("keyring: invalid key format")
)
