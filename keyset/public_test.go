package keyset_test

import (
	"errors"
	"testing"

	"xdao.co/keyring/keyset"
	"xdao.co/keyring/model"
	"xdao.co/keyring/registry"
	"xdao.co/keyring/signature"
)

func newSigningKeyset(t *testing.T) (*model.Keyset, uint32, uint32) {
	t.Helper()
	m := keyset.NewManager()
	primary, err := m.Rotate(signature.Ed25519TypeID, nil, model.PrefixTink)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	other, err := m.Add(signature.Ed25519TypeID, nil, model.PrefixRaw)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	ks, err := m.Keyset()
	if err != nil {
		t.Fatalf("Keyset: %v", err)
	}
	return ks, primary, other
}

func TestPublic_PreservesStructure(t *testing.T) {
	ks, primary, other := newSigningKeyset(t)

	pub, err := keyset.Public(ks)
	if err != nil {
		t.Fatalf("Public: %v", err)
	}
	if pub.PrimaryKeyID != primary || len(pub.Entries) != 2 {
		t.Fatalf("public keyset structure: primary %d, %d entries", pub.PrimaryKeyID, len(pub.Entries))
	}
	for _, id := range []uint32{primary, other} {
		e := pub.Entry(id)
		if e == nil {
			t.Fatalf("key %d missing from public keyset", id)
		}
		if e.Class != model.MaterialAsymmetricPublic {
			t.Fatalf("key %d class: %v", id, e.Class)
		}
		if e.TypeID != signature.Ed25519PublicTypeID {
			t.Fatalf("key %d type: %q", id, e.TypeID)
		}
		if e.Prefix != ks.Entry(id).Prefix {
			t.Fatalf("key %d prefix changed", id)
		}
	}
}

func TestPublic_VerifiesPrivateSignatures(t *testing.T) {
	ks, _, _ := newSigningKeyset(t)

	signer, err := signature.NewSigner(ks)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	pub, err := keyset.Public(ks)
	if err != nil {
		t.Fatalf("Public: %v", err)
	}
	verifier, err := signature.NewVerifier(pub)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	data := []byte("payload to sign")
	sig, err := signer.Sign(data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := verifier.Verify(sig, data); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestPublic_DropsDestroyedEntries(t *testing.T) {
	ks, _, other := newSigningKeyset(t)
	m, err := keyset.ManagerFor(ks)
	if err != nil {
		t.Fatalf("ManagerFor: %v", err)
	}
	if err := m.Destroy(other); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	ks, err = m.Keyset()
	if err != nil {
		t.Fatalf("Keyset: %v", err)
	}

	pub, err := keyset.Public(ks)
	if err != nil {
		t.Fatalf("Public: %v", err)
	}
	if len(pub.Entries) != 1 {
		t.Fatalf("expected destroyed entry dropped, got %d entries", len(pub.Entries))
	}
	if pub.Entry(other) != nil {
		t.Fatalf("destroyed key %d survived into public keyset", other)
	}
}

func TestPublic_RejectsSymmetricMaterial(t *testing.T) {
	registerDummy(t)
	m := keyset.NewManager()
	if _, err := m.Rotate(testTypeID, nil, model.PrefixTink); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	ks, err := m.Keyset()
	if err != nil {
		t.Fatalf("Keyset: %v", err)
	}
	if _, err := keyset.Public(ks); !errors.Is(err, registry.ErrNotPrivateKey) {
		t.Fatalf("expected ErrNotPrivateKey, got %v", err)
	}
}
