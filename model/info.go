package model

import (
	"fmt"
	"strings"
)

// EntryInfo is the redacted view of one key entry: everything except the
// key material.
type EntryInfo struct {
	KeyID  uint32        `json:"keyID"`
	TypeID string        `json:"typeID"`
	Class  MaterialClass `json:"class"`
	Status Status        `json:"status"`
	Prefix PrefixKind    `json:"prefix"`
}

// Info is the redacted view of a keyset. It is safe to log, print, and
// serialize: it can never contain key bytes.
type Info struct {
	PrimaryKeyID uint32      `json:"primaryKeyID"`
	Entries      []EntryInfo `json:"entries"`
}

// Info returns the redacted view of the keyset.
func (ks *Keyset) Info() Info {
	out := Info{PrimaryKeyID: ks.PrimaryKeyID}
	out.Entries = make([]EntryInfo, 0, len(ks.Entries))
	for _, e := range ks.Entries {
		out.Entries = append(out.Entries, EntryInfo{
			KeyID:  e.KeyID,
			TypeID: e.TypeID,
			Class:  e.Class,
			Status: e.Status,
			Prefix: e.Prefix,
		})
	}
	return out
}

// String renders one line per entry, the primary marked with '*'.
func (in Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "primary: %d\n", in.PrimaryKeyID)
	for _, e := range in.Entries {
		marker := " "
		if e.KeyID == in.PrimaryKeyID {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %10d  %-10s %-8s %s\n", marker, e.KeyID, e.Status, e.Prefix, e.TypeID)
	}
	return b.String()
}
