// Package did manages the lifecycle of DID documents: default documents,
// signed publication, verified resolution and one-way deactivation.
//
// Document bodies live in the blob store; the registry only keeps a pointer
// (content reference and timestamps) per identity plus a deactivation marker.
package did

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Veritas/internal/dfs"
	"Veritas/internal/document"
	"Veritas/internal/fault"
	"Veritas/internal/identity"
	"Veritas/internal/keys"
	"Veritas/internal/logger"
	"Veritas/internal/proof"
)

// DefaultKeyFragment is the fragment of the key in a default account document.
const DefaultKeyFragment = "key-1"

// Manager publishes, resolves and deactivates DID documents.
// Concurrent calls share no mutable state besides the registry.
type Manager struct {
	identities identity.Resolver // identities resolves contract controllers
	registry   *Registry         // registry holds pointers and deactivation markers
	blobs      dfs.Store         // blobs holds signed document bodies
	engine     *proof.Engine     // engine signs and verifies proofs
	codec      identity.Codec    // codec formats and parses DIDs
	now        func() time.Time  // now stamps created/updated
}

// NewManager creates a document manager.
func NewManager(identities identity.Resolver, registry *Registry, blobs dfs.Store, engine *proof.Engine) *Manager {
	return &Manager{
		identities: identities,
		registry:   registry,
		blobs:      blobs,
		engine:     engine,
		codec:      engine.Codec(),
		now:        time.Now,
	}
}

// DefaultDocument synthesizes the unsigned document of an identity that never published one.
func (m *Manager) DefaultDocument(ctx context.Context, id identity.Identity) (*document.Document, error) {
	v, err := m.newSession().defaultVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	return v.Document(), nil
}

// Resolve returns the current document of did, verifying its proof.
// A deactivated DID resolves to a keyless placeholder.
func (m *Manager) Resolve(ctx context.Context, did string) (*document.Document, error) {
	v, err := m.ResolveVariant(ctx, did)
	if err != nil {
		return nil, err
	}
	return v.Document(), nil
}

// ResolveDocument implements proof.DocumentResolver.
func (m *Manager) ResolveDocument(ctx context.Context, did string) (*document.Document, error) {
	return m.Resolve(ctx, did)
}

// ResolveVariant is Resolve returning the typed document shape.
func (m *Manager) ResolveVariant(ctx context.Context, did string) (Variant, error) {
	id, err := m.codec.ParseDID(did)
	if err != nil {
		return nil, err
	}

	return m.newSession().resolve(ctx, id)
}

// Verify checks the proof of an arbitrary document against current DID documents.
func (m *Manager) Verify(ctx context.Context, raw []byte) error {
	return m.engine.Verify(ctx, raw, m.newSession())
}

// Publish signs raw as signer with keyID and stores it as the document of did.
// created is kept from raw when present, updated is always reset, and any
// proof in raw is replaced.
func (m *Manager) Publish(ctx context.Context, signer identity.Identity, did string, raw []byte, keyID string) (*document.Document, error) {
	start := time.Now()

	id, err := m.codec.ParseDID(did)
	if err != nil {
		return nil, err
	}

	did = m.codec.FormatDID(id)

	deactivated, err := m.registry.IsDeactivated(ctx, id)
	if err != nil {
		return nil, err
	}

	if deactivated {
		return nil, fmt.Errorf("%w: %s", fault.ErrDeactivatedDid, did)
	}

	doc, err := document.Parse(raw)
	if err != nil {
		return nil, err
	}

	docDID, err := m.codec.Normalize(doc.ID)
	if err != nil {
		return nil, err
	}

	if docDID != did {
		return nil, fmt.Errorf("%w: document id %s does not match %s", fault.ErrValidation, doc.ID, did)
	}

	if err := m.engine.Authorize(ctx, doc, signer); err != nil {
		return nil, err
	}

	now := m.now().UTC()

	stamped, err := document.Stamp(raw, now.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	signed, err := m.engine.SignDocument(ctx, stamped, signer, keyID, m.newSession())
	if err != nil {
		return nil, fmt.Errorf("sign document %s:\n%w", did, err)
	}

	// The stored body must verify against its own keys, as load does.
	if err := m.newSession().verifyStored(ctx, id, signed); err != nil {
		return nil, fmt.Errorf("check document %s:\n%w", did, err)
	}

	rec := Record{Created: now.Unix(), Updated: now.Unix()}

	prev, ok, err := m.registry.Pointer(ctx, id)
	if err != nil {
		return nil, err
	}

	if ok {
		rec.Created = prev.Created
	}

	// A failed SetPointer leaves the body unreferenced in the blob store.
	// Blobs are content addressed, so a retry reuses it.
	rec.Hash, err = m.blobs.Add(ctx, did, signed)
	if err != nil {
		return nil, fmt.Errorf("store document %s:\n%w", did, err)
	}

	if err := m.registry.SetPointer(ctx, id, rec); err != nil {
		return nil, err
	}

	logger.Info("did document published",
		"did", did,
		"key", keyID,
		"ref", rec.Hash.String(),
		logger.Timed(start),
	)

	return document.Parse(signed)
}

// Deactivate permanently deactivates did on behalf of actor.
// actor must be the DID's identity or its registered controller.
func (m *Manager) Deactivate(ctx context.Context, actor identity.Identity, did string) error {
	id, err := m.codec.ParseDID(did)
	if err != nil {
		return err
	}

	if err := m.authorizeActor(ctx, id, actor); err != nil {
		return err
	}

	if err := m.registry.Deactivate(ctx, id); err != nil {
		return err
	}

	logger.Info("did deactivated", "did", m.codec.FormatDID(id), "by", m.codec.FormatDID(actor))

	return nil
}

// IsDeactivated reports whether did has been deactivated.
func (m *Manager) IsDeactivated(ctx context.Context, did string) (bool, error) {
	id, err := m.codec.ParseDID(did)
	if err != nil {
		return false, err
	}

	return m.registry.IsDeactivated(ctx, id)
}

// authorizeActor checks actor against id and the controller of id.
func (m *Manager) authorizeActor(ctx context.Context, id, actor identity.Identity) error {
	if actor == id {
		return nil
	}

	if id.IsContract() {
		controller, err := m.identities.ControllerOf(ctx, id)
		if err != nil && !errors.Is(err, fault.ErrNotFound) {
			return err
		}

		if err == nil && controller == actor {
			return nil
		}
	}

	return fmt.Errorf("%w: %s may not deactivate %s",
		fault.ErrDeactivationFailed, m.codec.FormatDID(actor), m.codec.FormatDID(id))
}

// accountDocument builds the default single-key document of an account.
func (m *Manager) accountDocument(id identity.Identity) *document.Document {
	did := m.codec.FormatDID(id)
	keyID := did + "#" + DefaultKeyFragment

	return &document.Document{
		Context: document.Context,
		ID:      did,
		PublicKey: []document.PublicKey{{
			ID:              keyID,
			Type:            keys.TypeSecp256k1,
			Controller:      did,
			EthereumAddress: id.Address().Hex(),
		}},
		Authentication: []string{keyID},
	}
}
