package keyset

import (
	"errors"

	"xdao.co/keyring/internal/wire"
	"xdao.co/keyring/model"
)

// Binary wire format, frozen. Field numbers follow the long-standing
// keyset interchange schema so serialized keysets round-trip with other
// implementations of it:
//
//	Keyset:  1 primary_key_id (varint), 2 key (message, repeated)
//	Key:     1 key_data (message), 2 status (varint),
//	         3 key_id (varint), 4 output_prefix_type (varint)
//	KeyData: 1 type_url (string), 2 value (bytes),
//	         3 key_material_type (varint)
const (
	fKeysetPrimary = 1
	fKeysetKey     = 2

	fKeyData   = 1
	fKeyStatus = 2
	fKeyID     = 3
	fKeyPrefix = 4

	fDataTypeID = 1
	fDataValue  = 2
	fDataClass  = 3
)

var errMalformedKeyset = errors.New("keyring: malformed serialized keyset")

// Marshal encodes a keyset in the binary wire format. It does not
// validate; Unmarshal(Marshal(ks)) reproduces ks field for field.
func Marshal(ks *model.Keyset) []byte {
	var out []byte
	if ks.PrimaryKeyID != 0 {
		out = wire.AppendVarint(out, fKeysetPrimary, uint64(ks.PrimaryKeyID))
	}
	for i := range ks.Entries {
		out = wire.AppendBytes(out, fKeysetKey, marshalEntry(&ks.Entries[i]))
	}
	return out
}

func marshalEntry(e *model.Entry) []byte {
	var kd []byte
	kd = wire.AppendBytes(kd, fDataTypeID, []byte(e.TypeID))
	kd = wire.AppendBytes(kd, fDataValue, e.Key)
	if e.Class != 0 {
		kd = wire.AppendVarint(kd, fDataClass, uint64(e.Class))
	}

	var out []byte
	out = wire.AppendBytes(out, fKeyData, kd)
	if e.Status != 0 {
		out = wire.AppendVarint(out, fKeyStatus, uint64(e.Status))
	}
	if e.KeyID != 0 {
		out = wire.AppendVarint(out, fKeyID, uint64(e.KeyID))
	}
	if e.Prefix != 0 {
		out = wire.AppendVarint(out, fKeyPrefix, uint64(e.Prefix))
	}
	return out
}

// Unmarshal decodes a binary keyset. It checks structure only; callers
// that need the §keyset invariants enforced validate the result.
func Unmarshal(data []byte) (*model.Keyset, error) {
	fields, err := wire.Parse(data)
	if err != nil {
		return nil, errMalformedKeyset
	}
	ks := &model.Keyset{}
	for _, f := range fields {
		switch f.Num {
		case fKeysetPrimary:
			ks.PrimaryKeyID = uint32(f.Varint)
		case fKeysetKey:
			e, err := unmarshalEntry(f.Bytes)
			if err != nil {
				return nil, err
			}
			ks.Entries = append(ks.Entries, e)
		}
	}
	return ks, nil
}

func unmarshalEntry(data []byte) (model.Entry, error) {
	fields, err := wire.Parse(data)
	if err != nil {
		return model.Entry{}, errMalformedKeyset
	}
	var e model.Entry
	for _, f := range fields {
		switch f.Num {
		case fKeyData:
			if err := unmarshalKeyData(&e, f.Bytes); err != nil {
				return model.Entry{}, err
			}
		case fKeyStatus:
			e.Status = model.Status(f.Varint)
		case fKeyID:
			e.KeyID = uint32(f.Varint)
		case fKeyPrefix:
			e.Prefix = model.PrefixKind(f.Varint)
		}
	}
	return e, nil
}

func unmarshalKeyData(e *model.Entry, data []byte) error {
	fields, err := wire.Parse(data)
	if err != nil {
		return errMalformedKeyset
	}
	for _, f := range fields {
		switch f.Num {
		case fDataTypeID:
			e.TypeID = string(f.Bytes)
		case fDataValue:
			e.Key = append([]byte(nil), f.Bytes...)
		case fDataClass:
			e.Class = model.MaterialClass(f.Varint)
		}
	}
	return nil
}
