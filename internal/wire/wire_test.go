package wire

import (
	"bytes"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestAppendParse_RoundTrip(t *testing.T) {
	var b []byte
	b = AppendVarint(b, 1, 300)
	b = AppendBytes(b, 2, []byte("hello"))
	b = AppendVarint(b, 7, 0)

	fields, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[0].Num != 1 || fields[0].Varint != 300 {
		t.Fatalf("field 1: %+v", fields[0])
	}
	if fields[1].Num != 2 || !bytes.Equal(fields[1].Bytes, []byte("hello")) {
		t.Fatalf("field 2: %+v", fields[1])
	}
	if fields[2].Num != 7 || fields[2].Varint != 0 {
		t.Fatalf("field 7: %+v", fields[2])
	}
}

func TestAppendBytes_SkipsEmpty(t *testing.T) {
	if got := AppendBytes(nil, 3, nil); len(got) != 0 {
		t.Fatalf("empty bytes field was encoded: %x", got)
	}
	if got := AppendBytes(nil, 3, []byte{}); len(got) != 0 {
		t.Fatalf("zero-length bytes field was encoded: %x", got)
	}
}

func TestParse_TruncatedInput(t *testing.T) {
	b := AppendBytes(nil, 2, []byte("hello"))
	if _, err := Parse(b[:len(b)-2]); err == nil {
		t.Fatalf("expected error for truncated message")
	}
}

func TestParse_RejectsUnsupportedWireTypes(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 99)
	if _, err := Parse(b); err == nil {
		t.Fatalf("expected error for fixed32 field")
	}

	b = protowire.AppendTag(nil, 1, protowire.StartGroupType)
	if _, err := Parse(b); err == nil {
		t.Fatalf("expected error for group field")
	}
}

func TestParse_KeepsUnknownFieldNumbers(t *testing.T) {
	b := AppendVarint(nil, 1000, 5)
	fields, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(fields) != 1 || fields[0].Num != 1000 {
		t.Fatalf("unknown field not surfaced: %+v", fields)
	}
}
