package keys

import (
	"fmt"
	"sort"
	"sync"

	"Veritas/internal/fault"
)

// Ring holds private keys by verification method id (did#fragment).
// It is safe for concurrent use.
type Ring struct {
	mu      sync.RWMutex
	signers map[string]Signer
}

// NewRing creates an empty keyring.
func NewRing() *Ring {
	return &Ring{signers: make(map[string]Signer)}
}

// Add registers signer under keyID, replacing any previous key.
func (r *Ring) Add(keyID string, signer Signer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.signers[keyID] = signer
}

// Get returns the signer for keyID.
func (r *Ring) Get(keyID string) (Signer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.signers[keyID]
	if !ok {
		return nil, fmt.Errorf("%w: no private key for %s", fault.ErrNotFound, keyID)
	}

	return s, nil
}

// IDs returns the registered key ids in sorted order.
func (r *Ring) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.signers))
	for id := range r.signers {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
