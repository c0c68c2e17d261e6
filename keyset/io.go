package keyset

import (
	"fmt"
	"io"

	"xdao.co/keyring/model"
)

// Reader reads one keyset from some medium.
type Reader interface {
	Read() (*model.Keyset, error)
}

// Writer writes one keyset to some medium.
//
// Writer implementations emit cleartext key material; callers are
// responsible for where those bytes land. Encrypted-at-rest persistence
// lives in package store.
type Writer interface {
	Write(ks *model.Keyset) error
}

type binaryReader struct{ r io.Reader }
type binaryWriter struct{ w io.Writer }
type jsonReader struct{ r io.Reader }
type jsonWriter struct{ w io.Writer }

// NewBinaryReader reads the binary wire format from r.
func NewBinaryReader(r io.Reader) Reader { return &binaryReader{r: r} }

// NewBinaryWriter writes the binary wire format to w.
func NewBinaryWriter(w io.Writer) Writer { return &binaryWriter{w: w} }

// NewJSONReader reads the JSON encoding from r.
func NewJSONReader(r io.Reader) Reader { return &jsonReader{r: r} }

// NewJSONWriter writes the JSON encoding to w.
func NewJSONWriter(w io.Writer) Writer { return &jsonWriter{w: w} }

func (br *binaryReader) Read() (*model.Keyset, error) {
	data, err := io.ReadAll(br.r)
	if err != nil {
		return nil, fmt.Errorf("keyset: reading: %w", err)
	}
	return Unmarshal(data)
}

func (bw *binaryWriter) Write(ks *model.Keyset) error {
	if _, err := bw.w.Write(Marshal(ks)); err != nil {
		return fmt.Errorf("keyset: writing: %w", err)
	}
	return nil
}

func (jr *jsonReader) Read() (*model.Keyset, error) {
	data, err := io.ReadAll(jr.r)
	if err != nil {
		return nil, fmt.Errorf("keyset: reading: %w", err)
	}
	return UnmarshalJSON(data)
}

func (jw *jsonWriter) Write(ks *model.Keyset) error {
	data, err := MarshalJSON(ks)
	if err != nil {
		return err
	}
	if _, err := jw.w.Write(data); err != nil {
		return fmt.Errorf("keyset: writing: %w", err)
	}
	return nil
}
