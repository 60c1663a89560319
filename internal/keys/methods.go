package keys

import (
	"crypto/ecdsa"
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// AlgES256KR is the JWS algorithm for recoverable secp256k1 signatures.
	AlgES256KR = "ES256K-R"

	// AlgBLS is the JWS algorithm for BLS12-381 min-pk signatures.
	AlgBLS = "BLS12381"

	// secp256k1SigSize is the size of an [R || S || V] signature.
	secp256k1SigSize = 65
)

var (
	// SigningMethodES256KR signs with a *ecdsa.PrivateKey and verifies against
	// the common.Address recovered from the signature.
	SigningMethodES256KR jwt.SigningMethod = &signingMethodES256KR{}

	// SigningMethodBLS signs with a *BLSKeyPair and verifies against compressed public key bytes.
	SigningMethodBLS jwt.SigningMethod = &signingMethodBLS{}
)

func init() {
	jwt.RegisterSigningMethod(AlgES256KR, func() jwt.SigningMethod { return SigningMethodES256KR })
	jwt.RegisterSigningMethod(AlgBLS, func() jwt.SigningMethod { return SigningMethodBLS })
}

type signingMethodES256KR struct{}

func (m *signingMethodES256KR) Alg() string {
	return AlgES256KR
}

// Sign signs sha256(signingString) with a recoverable secp256k1 signature.
func (m *signingMethodES256KR) Sign(signingString string, key any) ([]byte, error) {
	priv, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}

	digest := sha256.Sum256([]byte(signingString))

	return crypto.Sign(digest[:], priv)
}

// Verify recovers the signer and compares its address with key.
func (m *signingMethodES256KR) Verify(signingString string, sig []byte, key any) error {
	addr, ok := key.(common.Address)
	if !ok {
		return jwt.ErrInvalidKeyType
	}

	if len(sig) != secp256k1SigSize {
		return jwt.ErrSignatureInvalid
	}

	digest := sha256.Sum256([]byte(signingString))

	pub, err := crypto.SigToPub(digest[:], sig)
	if err != nil {
		return jwt.ErrSignatureInvalid
	}

	if crypto.PubkeyToAddress(*pub) != addr {
		return jwt.ErrSignatureInvalid
	}

	return nil
}

type signingMethodBLS struct{}

func (m *signingMethodBLS) Alg() string {
	return AlgBLS
}

func (m *signingMethodBLS) Sign(signingString string, key any) ([]byte, error) {
	pair, ok := key.(*BLSKeyPair)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}

	return pair.Sign([]byte(signingString)), nil
}

func (m *signingMethodBLS) Verify(signingString string, sig []byte, key any) error {
	pub, ok := key.([]byte)
	if !ok {
		return jwt.ErrInvalidKeyType
	}

	if !verifyBLS(sig, []byte(signingString), pub) {
		return jwt.ErrSignatureInvalid
	}

	return nil
}
