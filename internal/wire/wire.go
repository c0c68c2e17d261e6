// Package wire provides minimal protobuf wire-format helpers shared by
// the keyset codec and the per-algorithm key blobs.
//
// We intentionally build on encoding/protowire instead of generated
// message types so the module does not require a protoc/codegen
// toolchain; the handful of messages involved are small and their field
// numbers are frozen.
package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field is one decoded wire-format field. Exactly one of Varint/Bytes
// is meaningful, according to Type.
type Field struct {
	Num    protowire.Number
	Type   protowire.Type
	Varint uint64
	Bytes  []byte
}

var errMalformed = errors.New("wire: malformed message")

// AppendVarint appends a varint field.
func AppendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// AppendBytes appends a length-delimited field. Zero-length values are
// skipped, matching proto3 default-value omission.
func AppendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// Parse decodes every field of a wire-format message. Unknown field
// numbers are returned as-is for the caller to skip; unsupported wire
// types (groups, fixed32/64) are rejected since none of our messages
// use them.
//
// Bytes fields alias the input; callers that retain them must copy.
func Parse(data []byte) ([]Field, error) {
	var out []Field
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, errMalformed
		}
		data = data[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, errMalformed
			}
			data = data[n:]
			out = append(out, Field{Num: num, Type: typ, Varint: v})
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, errMalformed
			}
			data = data[n:]
			out = append(out, Field{Num: num, Type: typ, Bytes: v})
		default:
			return nil, fmt.Errorf("wire: field %d: unsupported wire type %d", num, typ)
		}
	}
	return out, nil
}
