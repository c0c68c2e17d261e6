package store_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/keyring/aead"
	"xdao.co/keyring/keyset"
	"xdao.co/keyring/model"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/store"
)

func newMasterAEAD(t *testing.T) (*model.Keyset, primitive.AEAD) {
	t.Helper()
	m := keyset.NewManager()
	if _, err := m.Rotate(aead.AESGCMTypeID, nil, model.PrefixTink); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	ks, err := m.Keyset()
	if err != nil {
		t.Fatalf("Keyset: %v", err)
	}
	a, err := aead.New(ks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ks, a
}

func TestEncryptedStore_SaveLoadRoundTrip(t *testing.T) {
	toStore, master := newMasterAEAD(t)
	es := &store.EncryptedStore{Archive: store.NewMemory(), Master: master}

	id, err := es.Save(toStore)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := es.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, toStore) {
		t.Fatalf("round trip changed keyset:\n got %+v\nwant %+v", got, toStore)
	}
}

func TestEncryptedStore_ArchiveHoldsNoCleartext(t *testing.T) {
	toStore, master := newMasterAEAD(t)
	mem := store.NewMemory()
	es := &store.EncryptedStore{Archive: mem, Master: master}

	id, err := es.Save(toStore)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	blob, err := mem.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	serialized := keyset.Marshal(toStore)
	if len(blob) <= len(serialized) {
		t.Fatalf("archive blob is not larger than the cleartext keyset")
	}
	// The cleartext serialization must not appear inside the blob.
	for i := 0; i+len(serialized) <= len(blob); i++ {
		if string(blob[i:i+len(serialized)]) == string(serialized) {
			t.Fatalf("archive blob contains the cleartext keyset")
		}
	}
}

func TestEncryptedStore_WrongMasterFailsClosed(t *testing.T) {
	toStore, master := newMasterAEAD(t)
	mem := store.NewMemory()
	id, err := (&store.EncryptedStore{Archive: mem, Master: master}).Save(toStore)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, otherMaster := newMasterAEAD(t)
	if _, err := (&store.EncryptedStore{Archive: mem, Master: otherMaster}).Load(id); err == nil {
		t.Fatalf("Load under the wrong master succeeded")
	}
}

func TestEncryptedStore_SaveRejectsInvalidKeyset(t *testing.T) {
	_, master := newMasterAEAD(t)
	es := &store.EncryptedStore{Archive: store.NewMemory(), Master: master}
	if _, err := es.Save(&model.Keyset{}); !errors.Is(err, model.ErrEmptyKeyset) {
		t.Fatalf("expected ErrEmptyKeyset, got %v", err)
	}
}

func TestEncryptedStore_LoadAbsentID(t *testing.T) {
	_, master := newMasterAEAD(t)
	es := &store.EncryptedStore{Archive: store.NewMemory(), Master: master}
	absent, err := store.ID([]byte("never stored"))
	if err != nil {
		t.Fatalf("ID: %v", err)
	}
	if _, err := es.Load(absent); !store.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := es.Load(cid.Undef); err == nil {
		t.Fatalf("expected error for undefined id")
	}
}
