package keyset

import (
	"encoding/json"
	"fmt"

	"xdao.co/keyring/model"
)

// JSON encoding of a keyset. Enums are spelled as their wire-format
// names; key material is base64 (encoding/json's []byte default).
//
// The JSON form exists for tooling and fixtures. It carries the exact
// same fields as the binary form and round-trips against it.
type jsonKeyset struct {
	PrimaryKeyID uint32      `json:"primaryKeyID"`
	Key          []jsonEntry `json:"key"`
}

type jsonEntry struct {
	KeyData jsonKeyData `json:"keyData"`
	Status  string      `json:"status"`
	KeyID   uint32      `json:"keyID"`
	Prefix  string      `json:"outputPrefixType"`
}

type jsonKeyData struct {
	TypeID string `json:"typeID"`
	Value  []byte `json:"value,omitempty"`
	Class  string `json:"keyMaterialClass"`
}

// MarshalJSON encodes a keyset as JSON.
func MarshalJSON(ks *model.Keyset) ([]byte, error) {
	out := jsonKeyset{PrimaryKeyID: ks.PrimaryKeyID}
	for _, e := range ks.Entries {
		out.Key = append(out.Key, jsonEntry{
			KeyData: jsonKeyData{
				TypeID: e.TypeID,
				Value:  e.Key,
				Class:  e.Class.String(),
			},
			Status: e.Status.String(),
			KeyID:  e.KeyID,
			Prefix: e.Prefix.String(),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// UnmarshalJSON decodes a JSON keyset. Like Unmarshal it checks
// structure only.
func UnmarshalJSON(data []byte) (*model.Keyset, error) {
	var in jsonKeyset
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedKeyset, err)
	}
	ks := &model.Keyset{PrimaryKeyID: in.PrimaryKeyID}
	for _, je := range in.Key {
		status, err := statusFromName(je.Status)
		if err != nil {
			return nil, err
		}
		kind, err := prefixFromName(je.Prefix)
		if err != nil {
			return nil, err
		}
		class, err := classFromName(je.KeyData.Class)
		if err != nil {
			return nil, err
		}
		ks.Entries = append(ks.Entries, model.Entry{
			KeyID:  je.KeyID,
			TypeID: je.KeyData.TypeID,
			Key:    je.KeyData.Value,
			Class:  class,
			Status: status,
			Prefix: kind,
		})
	}
	return ks, nil
}

func statusFromName(name string) (model.Status, error) {
	for _, s := range []model.Status{model.StatusEnabled, model.StatusDisabled, model.StatusDestroyed} {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: status %q", errMalformedKeyset, name)
}

func prefixFromName(name string) (model.PrefixKind, error) {
	for _, k := range []model.PrefixKind{model.PrefixTink, model.PrefixLegacy, model.PrefixRaw, model.PrefixCrunchy} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: output prefix %q", errMalformedKeyset, name)
}

func classFromName(name string) (model.MaterialClass, error) {
	for _, c := range []model.MaterialClass{
		model.MaterialSymmetric, model.MaterialAsymmetricPrivate,
		model.MaterialAsymmetricPublic, model.MaterialRemote,
	} {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: material class %q", errMalformedKeyset, name)
}
