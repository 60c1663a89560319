// Package claims holds verification entries and the ledger that stores them.
package claims

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"Veritas/internal/dfs"
	"Veritas/internal/fault"
	"Veritas/internal/identity"
	"Veritas/internal/topic"
)

// Status is the state of a verification entry.
type Status int8

const (
	// StatusMissing marks a computed result for which no entry exists. It is never stored.
	StatusMissing Status = -1

	// StatusIssued is the initial state set by the issuer.
	StatusIssued Status = 0

	// StatusConfirmed means the subject accepted the claim.
	StatusConfirmed Status = 1

	// StatusRejected means the subject refused the claim. It is terminal.
	StatusRejected Status = 2
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusMissing:
		return "missing"
	case StatusIssued:
		return "issued"
	case StatusConfirmed:
		return "confirmed"
	case StatusRejected:
		return "rejected"
	default:
		return fmt.Sprintf("status(%d)", int8(s))
	}
}

// ID identifies an entry. It is derived from issuer and topic hash.
type ID [32]byte

// NewID returns the entry id for an issuer and topic.
func NewID(issuer identity.Identity, t topic.Topic) ID {
	h := blake3.New()
	h.Write(issuer.Key())
	th := t.Hash()
	h.Write(th[:])

	var id ID
	h.Sum(id[:0])

	return id
}

// ParseID decodes a 0x-prefixed hex id.
func ParseID(s string) (ID, error) {
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}

	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(ID{}) {
		return ID{}, fmt.Errorf("%w: invalid verification id %q", fault.ErrValidation, s)
	}

	var id ID
	copy(id[:], raw)

	return id, nil
}

// String returns the 0x-prefixed hex form.
func (id ID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// MarshalText encodes the id as hex.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex id.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}

// Entry is one verification claim made by an issuer about a subject.
type Entry struct {
	ID                      ID                `json:"id"`
	Issuer                  identity.Identity `json:"issuer"`
	Subject                 identity.Identity `json:"subject"`
	Topic                   topic.Topic       `json:"topic"`
	Status                  Status            `json:"status"`
	CreationDate            int64             `json:"creationDate"`   // unix seconds
	CreationBlock           uint64            `json:"creationBlock"`  // ledger height at write
	ExpirationDate          int64             `json:"expirationDate"` // unix seconds, 0 = never
	RejectReason            dfs.Ref           `json:"rejectReason"`
	DisableSubVerifications bool              `json:"disableSubVerifications"`
	Description             dfs.Ref           `json:"description"`
	Data                    dfs.Ref           `json:"data"`
}

// Expired reports whether the entry has an expiration date at or before now.
func (e *Entry) Expired(now time.Time) bool {
	return e.ExpirationDate != 0 && now.Unix() >= e.ExpirationDate
}

// SetOptions are the optional fields of a new entry.
type SetOptions struct {
	ExpirationDate          int64   // ExpirationDate is a unix timestamp, 0 = never
	Data                    dfs.Ref // Data references the claim payload
	Description             dfs.Ref // Description references off-chain metadata
	DisableSubVerifications bool    // DisableSubVerifications blocks delegation below this entry
}

// Ledger is the claim ledger collaborator.
// Get must return entries in creation order.
type Ledger interface {
	Get(ctx context.Context, subject identity.Identity, t topic.Topic) ([]Entry, error)
	Set(ctx context.Context, issuer, subject identity.Identity, t topic.Topic, opts SetOptions) (ID, error)
	Confirm(ctx context.Context, actor, subject identity.Identity, id ID) error
	Reject(ctx context.Context, actor, subject identity.Identity, id ID, reason dfs.Ref) error
	Delete(ctx context.Context, actor, subject identity.Identity, id ID) error
}
