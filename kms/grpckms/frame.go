package grpckms

import (
	"errors"

	"xdao.co/keyring/internal/wire"
)

// Encrypt/Decrypt request frame, carried inside a BytesValue:
//
//	1 key uri (string), 2 payload (bytes), 3 associated data (bytes)
//
// The payload is plaintext for Encrypt and ciphertext for Decrypt.
const (
	fFrameURI     = 1
	fFramePayload = 2
	fFrameAD      = 3
)

var errMalformedFrame = errors.New("grpckms: malformed request frame")

func marshalFrame(uri string, payload, associatedData []byte) []byte {
	var out []byte
	out = wire.AppendBytes(out, fFrameURI, []byte(uri))
	out = wire.AppendBytes(out, fFramePayload, payload)
	out = wire.AppendBytes(out, fFrameAD, associatedData)
	return out
}

func parseFrame(data []byte) (uri string, payload, associatedData []byte, err error) {
	fields, err := wire.Parse(data)
	if err != nil {
		return "", nil, nil, errMalformedFrame
	}
	for _, f := range fields {
		switch f.Num {
		case fFrameURI:
			uri = string(f.Bytes)
		case fFramePayload:
			payload = append([]byte(nil), f.Bytes...)
		case fFrameAD:
			associatedData = append([]byte(nil), f.Bytes...)
		}
	}
	if uri == "" {
		return "", nil, nil, errMalformedFrame
	}
	return uri, payload, associatedData, nil
}
