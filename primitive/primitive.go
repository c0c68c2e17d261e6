// Package primitive declares the closed set of capability interfaces a
// key can implement, plus the single error the consume side of every
// capability is allowed to return.
//
// Concrete algorithms live elsewhere (package aead, mac, signature);
// this package only fixes the contracts the dispatch wrappers compose.
package primitive

import "errors"

// ErrAuthentication is the only error a decrypt/verify path may surface.
//
// It is deliberately undifferentiated: callers cannot learn which key
// was tried, how many candidates failed, or why. Consume paths return
// this sentinel bare, never wrapped around a cause.
var ErrAuthentication = errors.New("keyring: authentication failure")

// AEAD provides authenticated encryption with associated data.
//
// The associated data binds context to a ciphertext: Open succeeds only
// when called with the same associated data that was passed to Seal.
// Associated data may be nil and is not part of the output.
type AEAD interface {
	Seal(plaintext, associatedData []byte) ([]byte, error)
	Open(ciphertext, associatedData []byte) ([]byte, error)
}

// MAC computes and checks message authentication codes.
type MAC interface {
	Tag(data []byte) ([]byte, error)
	Check(tag, data []byte) error
}

// Signer produces digital signatures. Implementations hold private key
// material.
type Signer interface {
	Sign(data []byte) ([]byte, error)
}

// Verifier checks digital signatures. Implementations hold public key
// material only.
type Verifier interface {
	Verify(signature, data []byte) error
}
