package signature

import "xdao.co/keyring/internal/wire"

// Every signing key blob is: 1 version (varint), 2 material bytes. The
// encoding of the material field is algorithm-specific (raw seed, DER,
// packed key) and documented per key manager.
const (
	fBlobVersion = 1
	fBlobValue   = 2
)

func marshalKeyBlob(version uint64, material []byte) []byte {
	var out []byte
	if version != 0 {
		out = wire.AppendVarint(out, fBlobVersion, version)
	}
	out = wire.AppendBytes(out, fBlobValue, material)
	return out
}

func parseKeyBlob(data []byte) (version uint64, material []byte, err error) {
	fields, err := wire.Parse(data)
	if err != nil {
		return 0, nil, err
	}
	for _, f := range fields {
		switch f.Num {
		case fBlobVersion:
			version = f.Varint
		case fBlobValue:
			material = append([]byte(nil), f.Bytes...)
		}
	}
	return version, material, nil
}
