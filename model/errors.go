package model

import "errors"

var (
	ErrEmptyKeyset       = errors.New("keyring: keyset has no keys")
	ErrDuplicateKeyID    = errors.New("keyring: duplicate key id")
	ErrKeyNotFound       = errors.New("keyring: key not found")
	ErrNoPrimary         = errors.New("keyring: primary key id not present in keyset")
	ErrPrimaryNotEnabled = errors.New("keyring: primary key is not enabled")
	ErrInvalidState      = errors.New("keyring: invalid key state transition")
	ErrDestroyedHasKey   = errors.New("keyring: destroyed key still carries key material")
	ErrUnknownStatus     = errors.New("keyring: unknown key status")
	ErrUnknownPrefix     = errors.New("keyring: unknown output prefix kind")
	ErrUnknownClass      = errors.New("keyring: unknown key material class")
)
