package store

import (
	"bytes"
	"sync"

	"github.com/ipfs/go-cid"
)

// Memory is an in-process Archive. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ Archive = (*Memory)(nil)

// NewMemory returns an empty in-memory archive.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Put(blob []byte) (cid.Cid, error) {
	id, err := ID(blob)
	if err != nil {
		return cid.Undef, ErrInvalidID
	}
	key := id.String()

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.blobs[key]; ok {
		if !bytes.Equal(existing, blob) {
			return cid.Undef, ErrImmutable
		}
		return id, nil
	}
	m.blobs[key] = append([]byte(nil), blob...)
	return id, nil
}

func (m *Memory) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	blob, ok := m.blobs[id.String()]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), blob...), nil
}

func (m *Memory) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	_, ok := m.blobs[id.String()]
	m.mu.RUnlock()
	return ok
}
