package identity

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"Veritas/internal/fault"
)

const (
	// AccountSize is the byte length of an account identity.
	AccountSize = 20

	// ContractSize is the byte length of a contract identity.
	ContractSize = 32

	// KeySize is the length of the fixed-width storage key of an identity.
	KeySize = 1 + ContractSize
)

// Kind distinguishes account and contract identities.
type Kind uint8

const (
	// KindAccount is an identity derived from a 20-byte account address.
	KindAccount Kind = iota + 1

	// KindContract is an identity derived from a 32-byte hash.
	KindContract
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindContract:
		return "contract"
	default:
		return "unknown"
	}
}

// Identity is an immutable handle for an account or contract.
// The zero value is the empty identity. Identities are comparable and
// can be used as map keys.
type Identity struct {
	kind Kind
	raw  [ContractSize]byte // raw holds the address in its first 20 bytes for accounts
}

// Account returns the identity of an account address.
func Account(addr common.Address) Identity {
	id := Identity{kind: KindAccount}
	copy(id.raw[:], addr[:])
	return id
}

// Contract returns the identity of a contract hash.
func Contract(h [ContractSize]byte) Identity {
	return Identity{kind: KindContract, raw: h}
}

// FromBytes builds an identity from 20 (account) or 32 (contract) raw bytes.
func FromBytes(b []byte) (Identity, error) {
	switch len(b) {
	case AccountSize:
		return Account(common.BytesToAddress(b)), nil
	case ContractSize:
		var h [ContractSize]byte
		copy(h[:], b)
		return Contract(h), nil
	default:
		return Identity{}, fmt.Errorf("%w: identity must be %d or %d bytes, got %d",
			fault.ErrValidation, AccountSize, ContractSize, len(b))
	}
}

// FromKey decodes an identity from its storage key form.
func FromKey(key []byte) (Identity, error) {
	if len(key) != KeySize {
		return Identity{}, fmt.Errorf("%w: identity key must be %d bytes", fault.ErrValidation, KeySize)
	}

	id := Identity{kind: Kind(key[0])}
	if id.kind != KindAccount && id.kind != KindContract {
		return Identity{}, fmt.Errorf("%w: unknown identity kind %d", fault.ErrValidation, key[0])
	}

	copy(id.raw[:], key[1:])

	return id, nil
}

// Parse parses a 0x-prefixed hex identity.
// 40 hex digits yield an account, 64 a contract. Mixed-case account
// addresses must carry a valid EIP-55 checksum.
func Parse(s string) (Identity, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return Identity{}, fmt.Errorf("%w: identity %q lacks 0x prefix", fault.ErrValidation, s)
	}

	body := s[2:]

	raw, err := hex.DecodeString(body)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: identity %q is not hex", fault.ErrValidation, s)
	}

	id, err := FromBytes(raw)
	if err != nil {
		return Identity{}, err
	}

	if id.kind == KindAccount && isMixedCase(body) && id.Hex() != "0x"+body {
		return Identity{}, fmt.Errorf("%w: bad address checksum %q", fault.ErrValidation, s)
	}

	return id, nil
}

// isMixedCase reports whether s contains both upper and lower case hex letters.
func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}

// Kind returns the identity kind.
func (id Identity) Kind() Kind {
	return id.kind
}

// IsZero reports whether id is the empty identity.
func (id Identity) IsZero() bool {
	return id.kind == 0
}

// IsContract reports whether id is a contract identity.
func (id Identity) IsContract() bool {
	return id.kind == KindContract
}

// Bytes returns the 20 or 32 identity bytes.
func (id Identity) Bytes() []byte {
	switch id.kind {
	case KindAccount:
		return append([]byte(nil), id.raw[:AccountSize]...)
	case KindContract:
		return append([]byte(nil), id.raw[:]...)
	default:
		return nil
	}
}

// Key returns the fixed-width storage key: kind byte followed by 32 bytes.
func (id Identity) Key() []byte {
	key := make([]byte, KeySize)
	key[0] = byte(id.kind)
	copy(key[1:], id.raw[:])
	return key
}

// Address returns the account address. It is the zero address for contracts.
func (id Identity) Address() common.Address {
	if id.kind != KindAccount {
		return common.Address{}
	}
	return common.BytesToAddress(id.raw[:AccountSize])
}

// Hex returns the 0x-prefixed hex form, checksum-cased for accounts.
func (id Identity) Hex() string {
	switch id.kind {
	case KindAccount:
		return id.Address().Hex()
	case KindContract:
		return "0x" + hex.EncodeToString(id.raw[:])
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (id Identity) String() string {
	if id.IsZero() {
		return "<none>"
	}
	return id.Hex()
}

// MarshalText encodes the identity as hex.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText decodes a hex identity. An empty string yields the zero identity.
func (id *Identity) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*id = Identity{}
		return nil
	}

	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}
