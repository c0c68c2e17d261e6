// Package prefix implements the output-prefix framing that lets a
// consumer find the producing key among many without trial decryption
// of everything.
//
// Every produced ciphertext/tag/signature is prefix || payload. The
// prefix is fixed per key:
//
//	RAW               (no prefix)
//	TINK              0x01 || big-endian key id
//	LEGACY, CRUNCHY   0x00 || big-endian key id
//
// LEGACY additionally appends a single 0x00 byte to the data being
// MACed or signed (never to AEAD plaintext); see LegacySuffix.
//
// Key ids are always caller/rotation-assigned, for CRUNCHY and LEGACY
// alike; no id is ever re-derived from key material.
package prefix

import (
	"encoding/binary"
	"fmt"

	"xdao.co/keyring/model"
)

const (
	// Size is the byte length of every non-RAW prefix.
	Size = 5

	// TinkStart and LegacyStart are the leading byte of TINK and of
	// LEGACY/CRUNCHY prefixes respectively.
	TinkStart   byte = 0x01
	LegacyStart byte = 0x00
)

// LegacySuffix is appended to the data being MACed/signed under a
// LEGACY-prefixed key, on both the produce and the consume side.
var LegacySuffix = []byte{0}

// Compute returns the output prefix for a key, empty for RAW.
func Compute(kind model.PrefixKind, keyID uint32) ([]byte, error) {
	switch kind {
	case model.PrefixRaw:
		return nil, nil
	case model.PrefixTink:
		return frame(TinkStart, keyID), nil
	case model.PrefixLegacy, model.PrefixCrunchy:
		return frame(LegacyStart, keyID), nil
	default:
		return nil, fmt.Errorf("prefix: %w", model.ErrUnknownPrefix)
	}
}

func frame(start byte, keyID uint32) []byte {
	out := make([]byte, Size)
	out[0] = start
	binary.BigEndian.PutUint32(out[1:], keyID)
	return out
}

// Candidate reports whether data is long enough to start with a non-RAW
// prefix, and returns that candidate prefix. RAW entries match any
// input and are not covered here.
func Candidate(data []byte) (candidate []byte, ok bool) {
	if len(data) < Size {
		return nil, false
	}
	if data[0] != TinkStart && data[0] != LegacyStart {
		return nil, false
	}
	return data[:Size], true
}
