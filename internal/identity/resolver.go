package identity

import (
	"context"
	"fmt"
	"sync"

	"Veritas/internal/fault"
	"Veritas/internal/storage"
)

// controllerKeyPrefix is the Pebble key prefix for contract -> controller entries.
var controllerKeyPrefix = []byte("o:")

// Resolver maps references to identities and contracts to their controllers.
type Resolver interface {
	// IdentityFor returns the identity for a hex reference or a DID.
	IdentityFor(ctx context.Context, ref string) (Identity, error)

	// ControllerOf returns the controlling identity of a contract identity.
	ControllerOf(ctx context.Context, contract Identity) (Identity, error)
}

// ControllerEntry is one contract -> controller mapping.
type ControllerEntry struct {
	Contract   Identity // Contract is the controlled contract identity
	Controller Identity // Controller is the owning identity
}

// Registry is a Resolver that keeps contract controllers in Pebble.
// Mappings are write-once.
type Registry struct {
	db    *storage.Storage // db is the underlying Pebble storage
	codec Codec            // codec parses DID references
	mu    sync.Mutex       // mu serialises registrations
}

// NewRegistry creates a registry backed by the given storage.
func NewRegistry(db *storage.Storage, codec Codec) *Registry {
	return &Registry{db: db, codec: codec}
}

// IdentityFor parses ref as a DID when it starts with "did:", otherwise as hex.
func (r *Registry) IdentityFor(ctx context.Context, ref string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	if IsDID(ref) {
		return r.codec.ParseDID(ref)
	}

	return Parse(ref)
}

// ControllerOf returns the registered controller of a contract.
func (r *Registry) ControllerOf(ctx context.Context, contract Identity) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	if !contract.IsContract() {
		return Identity{}, fmt.Errorf("%w: %s is not a contract identity", fault.ErrValidation, contract)
	}

	value, err := r.db.Get(r.makeKey(contract))
	if err != nil {
		return Identity{}, fmt.Errorf("read controller of %s:\n%w", contract, err)
	}

	if value == nil {
		return Identity{}, fmt.Errorf("%w: no controller for %s", fault.ErrNotFound, contract)
	}

	return FromKey(value)
}

// RegisterContract records the controller of a contract identity.
// Registering a different controller for an existing contract fails.
func (r *Registry) RegisterContract(ctx context.Context, contract, controller Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !contract.IsContract() {
		return fmt.Errorf("%w: %s is not a contract identity", fault.ErrValidation, contract)
	}

	if controller.IsZero() || controller == contract {
		return fmt.Errorf("%w: invalid controller for %s", fault.ErrValidation, contract)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.db.Get(r.makeKey(contract))
	if err != nil {
		return fmt.Errorf("read controller of %s:\n%w", contract, err)
	}

	if existing != nil {
		current, err := FromKey(existing)
		if err == nil && current == controller {
			return nil
		}
		return fmt.Errorf("%w: %s already has a controller", fault.ErrForbidden, contract)
	}

	return r.db.Set(r.makeKey(contract), controller.Key())
}

// Export returns all registered contract -> controller mappings.
func (r *Registry) Export() ([]ControllerEntry, error) {
	var entries []ControllerEntry

	err := r.db.IteratePrefix(controllerKeyPrefix, func(key, value []byte) error {
		contract, err := FromKey(key[len(controllerKeyPrefix):])
		if err != nil {
			return nil
		}

		controller, err := FromKey(value)
		if err != nil {
			return nil
		}

		entries = append(entries, ControllerEntry{Contract: contract, Controller: controller})

		return nil
	})

	return entries, err
}

// makeKey builds the Pebble key for a contract: "o:" + identity key.
func (r *Registry) makeKey(contract Identity) []byte {
	return storage.Key(controllerKeyPrefix, contract.Key())
}
