package trust

import (
	"context"

	"Veritas/internal/claims"
	"Veritas/internal/identity"
	"Veritas/internal/topic"
)

// memoKey identifies one ledger lookup.
type memoKey struct {
	subject identity.Identity
	topic   topic.Hash
}

// memo caches ledger lookups for a single Evaluate or EvaluateAll call.
// It is never shared between calls.
type memo struct {
	entries map[memoKey][]claims.Entry
}

// newMemo creates an empty per-call cache.
func newMemo() *memo {
	return &memo{entries: make(map[memoKey][]claims.Entry)}
}

// get returns the ledger entries for subject and topic, querying the ledger once.
func (m *memo) get(ctx context.Context, ledger claims.Ledger, subject identity.Identity, t topic.Topic) ([]claims.Entry, error) {
	key := memoKey{subject: subject, topic: t.Hash()}

	if entries, ok := m.entries[key]; ok {
		return entries, nil
	}

	entries, err := ledger.Get(ctx, subject, t)
	if err != nil {
		return nil, err
	}

	m.entries[key] = entries

	return entries, nil
}
