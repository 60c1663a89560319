package did

import (
	"context"
	"fmt"

	"Veritas/internal/document"
	"Veritas/internal/fault"
	"Veritas/internal/identity"
	"Veritas/internal/logger"
)

// session memoizes resolutions for one top-level call.
// A document whose proof is being checked is served from pending so that a
// self-signed document can be verified against its own keys.
type session struct {
	m        *Manager
	resolved map[identity.Identity]Variant
	pending  map[identity.Identity]*document.Document
	inflight map[identity.Identity]bool
}

func (m *Manager) newSession() *session {
	return &session{
		m:        m,
		resolved: make(map[identity.Identity]Variant),
		pending:  make(map[identity.Identity]*document.Document),
		inflight: make(map[identity.Identity]bool),
	}
}

// ResolveDocument implements proof.DocumentResolver.
func (s *session) ResolveDocument(ctx context.Context, did string) (*document.Document, error) {
	id, err := s.m.codec.ParseDID(did)
	if err != nil {
		return nil, err
	}

	if doc, ok := s.pending[id]; ok {
		return doc, nil
	}

	v, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	return v.Document(), nil
}

// resolve returns the current document variant of id.
func (s *session) resolve(ctx context.Context, id identity.Identity) (Variant, error) {
	if v, ok := s.resolved[id]; ok {
		return v, nil
	}

	if s.inflight[id] {
		return nil, fmt.Errorf("%w: controller cycle at %s", fault.ErrValidation, id)
	}

	s.inflight[id] = true
	defer delete(s.inflight, id)

	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.resolved[id] = v

	return v, nil
}

// load reads, verifies and wraps the document of id.
func (s *session) load(ctx context.Context, id identity.Identity) (Variant, error) {
	did := s.m.codec.FormatDID(id)

	deactivated, err := s.m.registry.IsDeactivated(ctx, id)
	if err != nil {
		return nil, err
	}

	if deactivated {
		return DeactivatedDocument{Subject: id, ID: did}, nil
	}

	rec, ok, err := s.m.registry.Pointer(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ok {
		return s.defaultVariant(ctx, id)
	}

	body, err := s.m.blobs.Get(ctx, rec.Hash)
	if err != nil {
		return nil, fmt.Errorf("fetch document %s:\n%w", did, err)
	}

	doc, err := document.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse document %s:\n%w", did, err)
	}

	if err := s.check(ctx, id, doc, body); err != nil {
		return nil, err
	}

	return s.wrap(id, doc)
}

// verifyStored checks body the way load will once it is the stored document of id.
func (s *session) verifyStored(ctx context.Context, id identity.Identity, body []byte) error {
	doc, err := document.Parse(body)
	if err != nil {
		return err
	}

	return s.check(ctx, id, doc, body)
}

// check verifies the proof of a stored body. While it runs, doc stands in
// for the current document of id.
func (s *session) check(ctx context.Context, id identity.Identity, doc *document.Document, body []byte) error {
	did := s.m.codec.FormatDID(id)

	stored, err := s.m.codec.Normalize(doc.ID)
	if err != nil || stored != did {
		return fmt.Errorf("%w: stored document %s has id %s", fault.ErrValidation, did, doc.ID)
	}

	if doc.Proof == nil {
		return nil
	}

	s.pending[id] = doc
	err = s.m.engine.Verify(ctx, body, s)
	delete(s.pending, id)

	if err != nil {
		logger.Warn("did document proof verification failed", "did", did, "error", err)
		return fmt.Errorf("verify document %s:\n%w", did, err)
	}

	return nil
}

// defaultVariant synthesizes the document of an identity without a publication.
func (s *session) defaultVariant(ctx context.Context, id identity.Identity) (Variant, error) {
	if !id.IsContract() {
		return AccountDocument{Subject: id, Doc: s.m.accountDocument(id), Default: true}, nil
	}

	controller, err := s.m.identities.ControllerOf(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve controller of %s:\n%w", id, err)
	}

	ctrlDID := s.m.codec.FormatDID(controller)

	ctrlDoc, err := s.ResolveDocument(ctx, ctrlDID)
	if err != nil {
		return nil, fmt.Errorf("resolve controller document %s:\n%w", ctrlDID, err)
	}

	doc := &document.Document{
		Context:        document.Context,
		ID:             s.m.codec.FormatDID(id),
		Controller:     ctrlDID,
		Authentication: ctrlDoc.KeyIDs(),
	}

	return ContractDocument{Subject: id, Controller: controller, Doc: doc, Default: true}, nil
}

// wrap classifies a stored document.
func (s *session) wrap(id identity.Identity, doc *document.Document) (Variant, error) {
	if doc.Controller == "" {
		if id.IsContract() {
			return ContractDocument{Subject: id, Doc: doc}, nil
		}
		return AccountDocument{Subject: id, Doc: doc}, nil
	}

	controller, err := s.m.codec.ParseDID(doc.Controller)
	if err != nil {
		return nil, err
	}

	return ContractDocument{Subject: id, Controller: controller, Doc: doc}, nil
}
