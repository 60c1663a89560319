package identity

import (
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"Veritas/internal/fault"
)

const checksummed = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestParse_Account(t *testing.T) {
	id, err := Parse(strings.ToLower(checksummed))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if id.Kind() != KindAccount {
		t.Fatalf("expected account, got %s", id.Kind())
	}

	if id.Hex() != checksummed {
		t.Errorf("Hex = %s, want %s", id.Hex(), checksummed)
	}

	if len(id.Bytes()) != AccountSize {
		t.Errorf("Bytes length = %d, want %d", len(id.Bytes()), AccountSize)
	}
}

func TestParse_BadChecksum(t *testing.T) {
	bad := "0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

	_, err := Parse(bad)
	if !errors.Is(err, fault.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestParse_Contract(t *testing.T) {
	hexID := "0x" + strings.Repeat("ab", 32)

	id, err := Parse(hexID)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !id.IsContract() {
		t.Fatal("expected contract identity")
	}

	if id.Hex() != hexID {
		t.Errorf("Hex = %s, want %s", id.Hex(), hexID)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "abcd", "0xzz", "0x1234", "0x" + strings.Repeat("a", 50)} {
		if _, err := Parse(in); !errors.Is(err, fault.ErrValidation) {
			t.Errorf("Parse(%q): expected validation error, got %v", in, err)
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	id := Account(common.HexToAddress(checksummed))

	back, err := FromKey(id.Key())
	if err != nil {
		t.Fatalf("FromKey failed: %v", err)
	}

	if back != id {
		t.Errorf("FromKey = %s, want %s", back, id)
	}
}

func TestAccountAndContractNeverEqual(t *testing.T) {
	var h [32]byte
	copy(h[:], common.HexToAddress(checksummed).Bytes())

	if Account(common.HexToAddress(checksummed)) == Contract(h) {
		t.Error("account and contract with same leading bytes compared equal")
	}
}

func TestCodec_Core(t *testing.T) {
	c := NewCodec("")
	id := Account(common.HexToAddress(checksummed))

	did := c.FormatDID(id)
	if did != "did:evan:"+checksummed {
		t.Fatalf("FormatDID = %s", did)
	}

	back, err := c.ParseDID(did)
	if err != nil {
		t.Fatalf("ParseDID failed: %v", err)
	}

	if back != id {
		t.Errorf("ParseDID = %s, want %s", back, id)
	}
}

func TestCodec_NetworkMismatch(t *testing.T) {
	test := NewCodec("testcore")
	core := NewCodec(CoreNetwork)
	id := Account(common.HexToAddress(checksummed))

	did := test.FormatDID(id)
	if did != "did:evan:testcore:"+checksummed {
		t.Fatalf("FormatDID = %s", did)
	}

	if _, err := core.ParseDID(did); !errors.Is(err, fault.ErrValidation) {
		t.Errorf("core codec accepted testcore did: %v", err)
	}

	if _, err := test.ParseDID(core.FormatDID(id)); !errors.Is(err, fault.ErrValidation) {
		t.Errorf("testcore codec accepted core did: %v", err)
	}
}

func TestCodec_RejectsForeignMethod(t *testing.T) {
	if _, err := NewCodec("").ParseDID("did:web:example.com"); !errors.Is(err, fault.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSplitKeyID(t *testing.T) {
	did, frag, err := SplitKeyID("did:evan:" + checksummed + "#key-1")
	if err != nil {
		t.Fatalf("SplitKeyID failed: %v", err)
	}

	if did != "did:evan:"+checksummed || frag != "key-1" {
		t.Errorf("SplitKeyID = %q %q", did, frag)
	}

	if _, _, err := SplitKeyID("did:evan:" + checksummed); err == nil {
		t.Error("expected error for missing fragment")
	}
}
