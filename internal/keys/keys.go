// Package keys provides the signing keys that back DID document proofs.
//
// Three verification method types are supported:
//
//	Secp256k1VerificationKey2018  ES256K-R   ethereumAddress
//	Ed25519VerificationKey2018    EdDSA      publicKeyBase58
//	Bls12381G1Key2020             BLS12381   publicKeyBase58
package keys

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mr-tron/base58"

	"Veritas/internal/document"
	"Veritas/internal/fault"
)

const (
	// TypeSecp256k1 is an account key identified by its Ethereum address.
	TypeSecp256k1 document.KeyType = "Secp256k1VerificationKey2018"

	// TypeSecp256k1Legacy is the type written by older documents.
	TypeSecp256k1Legacy document.KeyType = "Secp256k1SignatureVerificationKey2018"

	// TypeEd25519 is an Ed25519 key.
	TypeEd25519 document.KeyType = "Ed25519VerificationKey2018"

	// TypeBLS is a BLS12-381 G1 key.
	TypeBLS document.KeyType = "Bls12381G1Key2020"
)

// ProofType returns the proof type recorded for signatures made with a key type.
func ProofType(t document.KeyType) string {
	switch t {
	case TypeSecp256k1, TypeSecp256k1Legacy:
		return "EcdsaPublicKeySecp256k1"
	case TypeEd25519:
		return "Ed25519Signature2018"
	case TypeBLS:
		return "Bls12381Signature2020"
	default:
		return string(t)
	}
}

// Signer is a private key able to produce JWS signatures.
type Signer interface {
	// KeyType returns the verification method type of the key.
	KeyType() document.KeyType

	// Method returns the JWS signing method.
	Method() jwt.SigningMethod

	// SigningKey returns the key value passed to Method().Sign.
	SigningKey() any

	// PublicKey describes the key as a document verification method.
	PublicKey(id, controller string) document.PublicKey
}

// Secp256k1Signer signs with an account key.
type Secp256k1Signer struct {
	priv *ecdsa.PrivateKey
}

// NewSecp256k1 wraps a secp256k1 private key.
func NewSecp256k1(priv *ecdsa.PrivateKey) *Secp256k1Signer {
	return &Secp256k1Signer{priv: priv}
}

// GenerateSecp256k1 creates a random account key.
func GenerateSecp256k1() (*Secp256k1Signer, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate secp256k1 key:\n%w", err)
	}
	return NewSecp256k1(priv), nil
}

// Address returns the account address of the key.
func (s *Secp256k1Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.priv.PublicKey)
}

func (s *Secp256k1Signer) KeyType() document.KeyType { return TypeSecp256k1 }
func (s *Secp256k1Signer) Method() jwt.SigningMethod { return SigningMethodES256KR }
func (s *Secp256k1Signer) SigningKey() any           { return s.priv }

func (s *Secp256k1Signer) PublicKey(id, controller string) document.PublicKey {
	return document.PublicKey{
		ID:              id,
		Type:            TypeSecp256k1,
		Controller:      controller,
		EthereumAddress: s.Address().Hex(),
	}
}

// Ed25519Signer signs with an Ed25519 key.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
}

// NewEd25519 wraps an Ed25519 private key.
func NewEd25519(priv ed25519.PrivateKey) *Ed25519Signer {
	return &Ed25519Signer{priv: priv}
}

// GenerateEd25519 creates a random Ed25519 key.
func GenerateEd25519() (*Ed25519Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key:\n%w", err)
	}
	return NewEd25519(priv), nil
}

func (s *Ed25519Signer) KeyType() document.KeyType { return TypeEd25519 }
func (s *Ed25519Signer) Method() jwt.SigningMethod { return jwt.SigningMethodEdDSA }
func (s *Ed25519Signer) SigningKey() any           { return s.priv }

func (s *Ed25519Signer) PublicKey(id, controller string) document.PublicKey {
	return document.PublicKey{
		ID:              id,
		Type:            TypeEd25519,
		Controller:      controller,
		PublicKeyBase58: base58.Encode(s.priv.Public().(ed25519.PublicKey)),
	}
}

// BLSSigner signs with a BLS12-381 key.
type BLSSigner struct {
	pair *BLSKeyPair
}

// NewBLS wraps a BLS key pair.
func NewBLS(pair *BLSKeyPair) *BLSSigner {
	return &BLSSigner{pair: pair}
}

// GenerateBLS creates a random BLS key.
func GenerateBLS() (*BLSSigner, error) {
	pair, err := GenerateBLSKey()
	if err != nil {
		return nil, err
	}
	return NewBLS(pair), nil
}

func (s *BLSSigner) KeyType() document.KeyType { return TypeBLS }
func (s *BLSSigner) Method() jwt.SigningMethod { return SigningMethodBLS }
func (s *BLSSigner) SigningKey() any           { return s.pair }

func (s *BLSSigner) PublicKey(id, controller string) document.PublicKey {
	return document.PublicKey{
		ID:              id,
		Type:            TypeBLS,
		Controller:      controller,
		PublicKeyBase58: base58.Encode(s.pair.PublicKeyBytes()),
	}
}

// VerifierFor returns the signing method and verification key for a
// document public key.
func VerifierFor(pk document.PublicKey) (jwt.SigningMethod, any, error) {
	switch pk.Type {
	case TypeSecp256k1, TypeSecp256k1Legacy:
		if !common.IsHexAddress(pk.EthereumAddress) {
			return nil, nil, fmt.Errorf("%w: key %s has no valid ethereumAddress", fault.ErrValidation, pk.ID)
		}
		return SigningMethodES256KR, common.HexToAddress(pk.EthereumAddress), nil

	case TypeEd25519:
		raw, err := base58.Decode(pk.PublicKeyBase58)
		if err != nil || len(raw) != ed25519.PublicKeySize {
			return nil, nil, fmt.Errorf("%w: key %s has invalid publicKeyBase58", fault.ErrValidation, pk.ID)
		}
		return jwt.SigningMethodEdDSA, ed25519.PublicKey(raw), nil

	case TypeBLS:
		raw, err := base58.Decode(pk.PublicKeyBase58)
		if err != nil || len(raw) != BLSPublicKeySize {
			return nil, nil, fmt.Errorf("%w: key %s has invalid publicKeyBase58", fault.ErrValidation, pk.ID)
		}
		return SigningMethodBLS, raw, nil

	default:
		return nil, nil, fmt.Errorf("%w: unsupported key type %q", fault.ErrValidation, pk.Type)
	}
}
