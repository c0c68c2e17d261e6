package signature_test

import (
	"bytes"
	"errors"
	"testing"

	"xdao.co/keyring/keyset"
	"xdao.co/keyring/model"
	"xdao.co/keyring/prefix"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/registry"
	"xdao.co/keyring/signature"
)

var signingTypes = []struct {
	name   string
	typeID string
}{
	{"Ed25519", signature.Ed25519TypeID},
	{"ECDSAP256", signature.ECDSAP256TypeID},
	{"Dilithium3", signature.Dilithium3TypeID},
}

func newKeyPair(t *testing.T, typeID string, kind model.PrefixKind) (priv, pub *model.Keyset) {
	t.Helper()
	m := keyset.NewManager()
	if _, err := m.Rotate(typeID, nil, kind); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	priv, err := m.Keyset()
	if err != nil {
		t.Fatalf("Keyset: %v", err)
	}
	pub, err = keyset.Public(priv)
	if err != nil {
		t.Fatalf("Public: %v", err)
	}
	return priv, pub
}

func TestSignVerify_RoundTripAllAlgorithms(t *testing.T) {
	for _, tc := range signingTypes {
		t.Run(tc.name, func(t *testing.T) {
			priv, pub := newKeyPair(t, tc.typeID, model.PrefixTink)
			signer, err := signature.NewSigner(priv)
			if err != nil {
				t.Fatalf("NewSigner: %v", err)
			}
			verifier, err := signature.NewVerifier(pub)
			if err != nil {
				t.Fatalf("NewVerifier: %v", err)
			}

			data := []byte("signed payload")
			sig, err := signer.Sign(data)
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}
			if err := verifier.Verify(sig, data); err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if err := verifier.Verify(sig, []byte("other payload")); err != primitive.ErrAuthentication {
				t.Fatalf("wrong data: got %v, want bare ErrAuthentication", err)
			}
		})
	}
}

func TestSignVerify_AllPrefixKinds(t *testing.T) {
	for _, kind := range []model.PrefixKind{
		model.PrefixTink, model.PrefixLegacy, model.PrefixRaw, model.PrefixCrunchy,
	} {
		t.Run(kind.String(), func(t *testing.T) {
			priv, pub := newKeyPair(t, signature.Ed25519TypeID, kind)
			signer, err := signature.NewSigner(priv)
			if err != nil {
				t.Fatalf("NewSigner: %v", err)
			}
			verifier, err := signature.NewVerifier(pub)
			if err != nil {
				t.Fatalf("NewVerifier: %v", err)
			}
			data := []byte("payload")
			sig, err := signer.Sign(data)
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}
			if err := verifier.Verify(sig, data); err != nil {
				t.Fatalf("Verify: %v", err)
			}
		})
	}
}

func TestSign_StampsPrimaryPrefix(t *testing.T) {
	priv, _ := newKeyPair(t, signature.Ed25519TypeID, model.PrefixTink)
	signer, err := signature.NewSigner(priv)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	sig, err := signer.Sign([]byte("data"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	want, err := prefix.Compute(model.PrefixTink, priv.PrimaryKeyID)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !bytes.Equal(sig[:prefix.Size], want) {
		t.Fatalf("signature prefix: got %x want %x", sig[:prefix.Size], want)
	}
}

func TestVerify_LegacySuffixCoversBothSides(t *testing.T) {
	priv, pub := newKeyPair(t, signature.Ed25519TypeID, model.PrefixLegacy)
	signer, err := signature.NewSigner(priv)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	verifier, err := signature.NewVerifier(pub)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	data := []byte("data")
	sig, err := signer.Sign(data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := verifier.Verify(sig, data); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	// The signed message is data || 0x00. The raw primitive accepts the
	// suffixed form and rejects the bare one.
	p, err := registry.Primitive(pub.Entries[0].TypeID, pub.Entries[0].Key)
	if err != nil {
		t.Fatalf("Primitive: %v", err)
	}
	raw := p.(primitive.Verifier)
	payload := sig[prefix.Size:]
	if err := raw.Verify(payload, append(data, 0x00)); err != nil {
		t.Fatalf("raw verify with suffix: %v", err)
	}
	if err := raw.Verify(payload, data); err == nil {
		t.Fatalf("raw verify accepted the unsuffixed message")
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	for _, tc := range signingTypes {
		t.Run(tc.name, func(t *testing.T) {
			priv, pub := newKeyPair(t, tc.typeID, model.PrefixTink)
			signer, err := signature.NewSigner(priv)
			if err != nil {
				t.Fatalf("NewSigner: %v", err)
			}
			verifier, err := signature.NewVerifier(pub)
			if err != nil {
				t.Fatalf("NewVerifier: %v", err)
			}
			data := []byte("data")
			sig, err := signer.Sign(data)
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}

			mutated := append([]byte(nil), sig...)
			mutated[len(mutated)-1] ^= 0x01
			if err := verifier.Verify(mutated, data); err != primitive.ErrAuthentication {
				t.Fatalf("flipped byte: got %v, want bare ErrAuthentication", err)
			}
			if err := verifier.Verify(sig[:len(sig)/2], data); err != primitive.ErrAuthentication {
				t.Fatalf("truncated: got %v", err)
			}
			if err := verifier.Verify(nil, data); err != primitive.ErrAuthentication {
				t.Fatalf("empty: got %v", err)
			}
		})
	}
}

func TestVerify_CrossAlgorithmRejected(t *testing.T) {
	privEd, _ := newKeyPair(t, signature.Ed25519TypeID, model.PrefixRaw)
	_, pubECDSA := newKeyPair(t, signature.ECDSAP256TypeID, model.PrefixRaw)

	signer, err := signature.NewSigner(privEd)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	verifier, err := signature.NewVerifier(pubECDSA)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	sig, err := signer.Sign([]byte("data"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := verifier.Verify(sig, []byte("data")); err != primitive.ErrAuthentication {
		t.Fatalf("cross-algorithm verify: got %v", err)
	}
}

func TestNewSigner_RejectsPublicKeyset(t *testing.T) {
	_, pub := newKeyPair(t, signature.Ed25519TypeID, model.PrefixTink)
	if _, err := signature.NewSigner(pub); err == nil {
		t.Fatalf("expected error building a signer over public keys")
	}
}

func TestPublicKeyGeneration_Rejected(t *testing.T) {
	m := keyset.NewManager()
	_, err := m.Rotate(signature.Ed25519PublicTypeID, nil, model.PrefixTink)
	if !errors.Is(err, registry.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}
