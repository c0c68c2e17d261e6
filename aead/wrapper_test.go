package aead_test

import (
	"bytes"
	"errors"
	"testing"

	"xdao.co/keyring/aead"
	"xdao.co/keyring/keyset"
	"xdao.co/keyring/mac"
	"xdao.co/keyring/model"
	"xdao.co/keyring/prefix"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/registry"
	"xdao.co/keyring/testkit"
)

func newAESKeyset(t *testing.T, kind model.PrefixKind) (*model.Keyset, uint32) {
	t.Helper()
	m := keyset.NewManager()
	id, err := m.Rotate(aead.AESGCMTypeID, nil, kind)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	ks, err := m.Keyset()
	if err != nil {
		t.Fatalf("Keyset: %v", err)
	}
	return ks, id
}

func TestSealOpen_RoundTripAllPrefixKinds(t *testing.T) {
	for _, kind := range []model.PrefixKind{
		model.PrefixTink, model.PrefixLegacy, model.PrefixRaw, model.PrefixCrunchy,
	} {
		t.Run(kind.String(), func(t *testing.T) {
			ks, _ := newAESKeyset(t, kind)
			a, err := aead.New(ks)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			pt := []byte("attack at dawn")
			ad := []byte("context")
			ct, err := a.Seal(pt, ad)
			if err != nil {
				t.Fatalf("Seal: %v", err)
			}
			got, err := a.Open(ct, ad)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if !bytes.Equal(got, pt) {
				t.Fatalf("round trip changed plaintext: %q", got)
			}
		})
	}
}

func TestSeal_StampsPrimaryPrefix(t *testing.T) {
	ks, id := newAESKeyset(t, model.PrefixTink)
	a, err := aead.New(ks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ct, err := a.Seal([]byte("pt"), nil)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	want, err := prefix.Compute(model.PrefixTink, id)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(ct) < prefix.Size || !bytes.Equal(ct[:prefix.Size], want) {
		t.Fatalf("ciphertext prefix: got %x want %x", ct[:prefix.Size], want)
	}
}

func TestSeal_RawHasNoPrefix(t *testing.T) {
	ks, _ := newAESKeyset(t, model.PrefixRaw)
	a, err := aead.New(ks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pt := []byte("pt")
	ct, err := a.Seal(pt, nil)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	// nonce + plaintext + GCM tag, nothing in front.
	if len(ct) != 12+len(pt)+16 {
		t.Fatalf("raw ciphertext length %d", len(ct))
	}
}

func TestOpen_AfterRotation(t *testing.T) {
	m := keyset.NewManager()
	if _, err := m.Rotate(aead.AESGCMTypeID, nil, model.PrefixTink); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	ks1, err := m.Keyset()
	if err != nil {
		t.Fatalf("Keyset: %v", err)
	}
	a1, err := aead.New(ks1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ct, err := a1.Seal([]byte("old data"), nil)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if _, err := m.Rotate(aead.AESGCMTypeID, aead.AESGCMKeyFormat(16), model.PrefixTink); err != nil {
		t.Fatalf("Rotate(2): %v", err)
	}
	ks2, err := m.Keyset()
	if err != nil {
		t.Fatalf("Keyset(2): %v", err)
	}
	a2, err := aead.New(ks2)
	if err != nil {
		t.Fatalf("New(2): %v", err)
	}

	got, err := a2.Open(ct, nil)
	if err != nil {
		t.Fatalf("Open after rotation: %v", err)
	}
	if !bytes.Equal(got, []byte("old data")) {
		t.Fatalf("wrong plaintext: %q", got)
	}

	// New ciphertexts use the new primary; the pre-rotation view cannot
	// open them.
	ct2, err := a2.Seal([]byte("new data"), nil)
	if err != nil {
		t.Fatalf("Seal(2): %v", err)
	}
	if _, err := a1.Open(ct2, nil); err != primitive.ErrAuthentication {
		t.Fatalf("expected bare ErrAuthentication, got %v", err)
	}
}

func TestOpen_DisabledKeyStopsOpening(t *testing.T) {
	m := keyset.NewManager()
	old, err := m.Rotate(aead.AESGCMTypeID, nil, model.PrefixTink)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	ks1, _ := m.Keyset()
	a1, err := aead.New(ks1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ct, err := a1.Seal([]byte("pt"), nil)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if _, err := m.Rotate(aead.AESGCMTypeID, nil, model.PrefixTink); err != nil {
		t.Fatalf("Rotate(2): %v", err)
	}
	if err := m.Disable(old); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	ks2, err := m.Keyset()
	if err != nil {
		t.Fatalf("Keyset: %v", err)
	}
	a2, err := aead.New(ks2)
	if err != nil {
		t.Fatalf("New(2): %v", err)
	}
	if _, err := a2.Open(ct, nil); err != primitive.ErrAuthentication {
		t.Fatalf("expected bare ErrAuthentication for disabled key, got %v", err)
	}
}

func TestOpen_CorruptionAlwaysErrAuthentication(t *testing.T) {
	ks, _ := newAESKeyset(t, model.PrefixTink)
	a, err := aead.New(ks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ct, err := a.Seal([]byte("plaintext under test"), []byte("ad"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	check := func(name string, mutated []byte) {
		_, err := a.Open(mutated, []byte("ad"))
		if err == nil {
			t.Fatalf("%s: corrupted ciphertext opened", name)
		}
		// The consume path carries exactly one error value.
		if err != primitive.ErrAuthentication {
			t.Fatalf("%s: got %v, want bare ErrAuthentication", name, err)
		}
	}

	for i := range ct {
		mutated := append([]byte(nil), ct...)
		mutated[i] ^= 0x01
		check("bit flip", mutated)
	}
	check("truncated", ct[:len(ct)-1])
	check("emptied", nil)
	check("extended", append(append([]byte(nil), ct...), 0x00))

	if _, err := a.Open(ct, []byte("other ad")); err != primitive.ErrAuthentication {
		t.Fatalf("wrong associated data: got %v", err)
	}
}

func TestNew_RejectsNonAEADKeyset(t *testing.T) {
	m := keyset.NewManager()
	if _, err := m.Rotate(mac.HMACTypeID, nil, model.PrefixTink); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	ks, err := m.Keyset()
	if err != nil {
		t.Fatalf("Keyset: %v", err)
	}
	if _, err := aead.New(ks); err == nil {
		t.Fatalf("expected error wrapping a MAC keyset as AEAD")
	}
}

func TestXChaCha20Poly1305_RoundTrip(t *testing.T) {
	m := keyset.NewManager()
	if _, err := m.Rotate(aead.XChaCha20Poly1305TypeID, nil, model.PrefixTink); err != nil {
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
	pt := []byte("xchacha payload")
	ct, err := a.Seal(pt, []byte("ad"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	got, err := a.Open(ct, []byte("ad"))
	if err != nil || !bytes.Equal(got, pt) {
		t.Fatalf("Open: %v %q", err, got)
	}
	mutated := append([]byte(nil), ct...)
	mutated[len(mutated)-1] ^= 0x80
	if _, err := a.Open(mutated, []byte("ad")); err != primitive.ErrAuthentication {
		t.Fatalf("expected bare ErrAuthentication, got %v", err)
	}
}

func TestAESGCMKeyFormat_BadSizeRejected(t *testing.T) {
	m := keyset.NewManager()
	_, err := m.Rotate(aead.AESGCMTypeID, aead.AESGCMKeyFormat(17), model.PrefixTink)
	if !errors.Is(err, registry.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestRemote_RoundTripThroughKMSClient(t *testing.T) {
	registry.RegisterKMSClient(testkit.KMSClient{Prefix: "test-kms://"})

	m := keyset.NewManager()
	if _, err := m.Rotate(aead.RemoteTypeID, aead.RemoteKeyFormat("test-kms://k1"), model.PrefixTink); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	ks, err := m.Keyset()
	if err != nil {
		t.Fatalf("Keyset: %v", err)
	}
	if ks.Entries[0].Class != model.MaterialRemote {
		t.Fatalf("remote key class: %v", ks.Entries[0].Class)
	}

	a, err := aead.New(ks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pt := []byte("remote payload")
	ct, err := a.Seal(pt, []byte("ad"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	got, err := a.Open(ct, []byte("ad"))
	if err != nil || !bytes.Equal(got, pt) {
		t.Fatalf("Open: %v %q", err, got)
	}
}

func TestRemote_NoClientFails(t *testing.T) {
	m := keyset.NewManager()
	if _, err := m.Rotate(aead.RemoteTypeID, aead.RemoteKeyFormat("nobody://k1"), model.PrefixTink); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	ks, err := m.Keyset()
	if err != nil {
		t.Fatalf("Keyset: %v", err)
	}
	if _, err := aead.New(ks); !errors.Is(err, registry.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}
