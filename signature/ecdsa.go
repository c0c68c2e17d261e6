package signature

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"xdao.co/keyring/internal/wire"
	"xdao.co/keyring/model"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/registry"
)

// ECDSAP256TypeID identifies ECDSA P-256 private keys (material: SEC1
// DER); ECDSAP256PublicTypeID the corresponding public keys (material:
// PKIX DER). Signatures are ASN.1 DER over SHA-256 digests.
const (
	ECDSAP256TypeID       = "xdao.co/keyring/signature/ecdsa-p256"
	ECDSAP256PublicTypeID = "xdao.co/keyring/signature/ecdsa-p256-public"
)

const ecdsaKeyVersion = 0

func init() {
	registry.MustRegister(ecdsaPrivateKeyManager{})
	registry.MustRegister(ecdsaPublicKeyManager{})
}

type ecdsaPrivateKeyManager struct{}

func (ecdsaPrivateKeyManager) TypeID() string { return ECDSAP256TypeID }

func (ecdsaPrivateKeyManager) MaterialClass() model.MaterialClass {
	return model.MaterialAsymmetricPrivate
}

func (ecdsaPrivateKeyManager) Primitive(serializedKey []byte) (any, error) {
	priv, err := ecdsaPrivateKey(serializedKey)
	if err != nil {
		return nil, err
	}
	return &ecdsaSigner{priv: priv}, nil
}

func (ecdsaPrivateKeyManager) NewKey(serializedFormat []byte) ([]byte, error) {
	if len(serializedFormat) > 0 {
		if _, err := wire.Parse(serializedFormat); err != nil {
			return nil, fmt.Errorf("ecdsa-p256: %w", registry.ErrInvalidFormat)
		}
	}
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("ecdsa-p256: generating key: %w", err)
	}
	der, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("ecdsa-p256: encoding key: %w", err)
	}
	return marshalKeyBlob(ecdsaKeyVersion, der), nil
}

func (ecdsaPrivateKeyManager) PublicKeyData(serializedKey []byte) (registry.KeyData, error) {
	priv, err := ecdsaPrivateKey(serializedKey)
	if err != nil {
		return registry.KeyData{}, err
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return registry.KeyData{}, fmt.Errorf("ecdsa-p256: encoding public key: %w", err)
	}
	return registry.KeyData{
		TypeID: ECDSAP256PublicTypeID,
		Value:  marshalKeyBlob(ecdsaKeyVersion, der),
		Class:  model.MaterialAsymmetricPublic,
	}, nil
}

func ecdsaPrivateKey(serializedKey []byte) (*ecdsa.PrivateKey, error) {
	version, der, err := parseKeyBlob(serializedKey)
	if err != nil {
		return nil, fmt.Errorf("ecdsa-p256: %w", registry.ErrInvalidKey)
	}
	if version > ecdsaKeyVersion {
		return nil, fmt.Errorf("ecdsa-p256: unsupported key version %d: %w", version, registry.ErrInvalidKey)
	}
	priv, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("ecdsa-p256: %w", registry.ErrInvalidKey)
	}
	if priv.Curve != elliptic.P256() {
		return nil, fmt.Errorf("ecdsa-p256: unsupported curve: %w", registry.ErrInvalidKey)
	}
	return priv, nil
}

type ecdsaPublicKeyManager struct{}

func (ecdsaPublicKeyManager) TypeID() string { return ECDSAP256PublicTypeID }

func (ecdsaPublicKeyManager) MaterialClass() model.MaterialClass {
	return model.MaterialAsymmetricPublic
}

func (ecdsaPublicKeyManager) Primitive(serializedKey []byte) (any, error) {
	version, der, err := parseKeyBlob(serializedKey)
	if err != nil {
		return nil, fmt.Errorf("ecdsa-p256: %w", registry.ErrInvalidKey)
	}
	if version > ecdsaKeyVersion {
		return nil, fmt.Errorf("ecdsa-p256: unsupported key version %d: %w", version, registry.ErrInvalidKey)
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("ecdsa-p256: %w", registry.ErrInvalidKey)
	}
	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok || ecPub.Curve != elliptic.P256() {
		return nil, fmt.Errorf("ecdsa-p256: unsupported public key: %w", registry.ErrInvalidKey)
	}
	return &ecdsaVerifier{pub: ecPub}, nil
}

func (ecdsaPublicKeyManager) NewKey(serializedFormat []byte) ([]byte, error) {
	return nil, fmt.Errorf("ecdsa-p256: cannot generate a public key: %w", registry.ErrInvalidFormat)
}

type ecdsaSigner struct {
	priv *ecdsa.PrivateKey
}

func (s *ecdsaSigner) Sign(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	sig, err := ecdsa.SignASN1(rand.Reader, s.priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("ecdsa-p256: signing: %w", err)
	}
	return sig, nil
}

type ecdsaVerifier struct {
	pub *ecdsa.PublicKey
}

func (v *ecdsaVerifier) Verify(sig, data []byte) error {
	digest := sha256.Sum256(data)
	if !ecdsa.VerifyASN1(v.pub, digest[:], sig) {
		return primitive.ErrAuthentication
	}
	return nil
}
