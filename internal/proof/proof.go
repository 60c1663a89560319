// Package proof signs DID documents with detached JWS proofs and verifies them.
//
// A proof's jws is a compact JWS whose payload carries the signer DID (iss),
// the signing time (iat) and the canonical proof-less document (didDocument).
// Verification resolves the document owning the verification method, checks
// the signature with that key and compares the embedded document with the
// document under test.
package proof

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"Veritas/internal/document"
	"Veritas/internal/fault"
	"Veritas/internal/identity"
	"Veritas/internal/keys"
	"Veritas/internal/logger"
)

// PurposeAssertion is the proof purpose written by Sign.
const PurposeAssertion = "assertionMethod"

// DocumentResolver returns the current document of a DID.
type DocumentResolver interface {
	ResolveDocument(ctx context.Context, did string) (*document.Document, error)
}

// ControllerLookup returns the registered controller of a contract identity.
// identity.Resolver satisfies it.
type ControllerLookup interface {
	ControllerOf(ctx context.Context, contract identity.Identity) (identity.Identity, error)
}

// claims is the JWS payload of a document proof.
type claims struct {
	jwt.RegisteredClaims
	DidDocument json.RawMessage `json:"didDocument"`
}

// Engine creates and checks document proofs.
type Engine struct {
	keys        *keys.Ring       // keys holds the private keys the engine may sign with
	codec       identity.Codec   // codec parses DIDs of the configured network
	controllers ControllerLookup // controllers decides who may act for a contract
	now         func() time.Time // now is the clock used for iat and proof.created
}

// NewEngine creates an engine signing with keys from ring. A document's
// controller is taken from controllers, never from the document itself.
func NewEngine(ring *keys.Ring, codec identity.Codec, controllers ControllerLookup) *Engine {
	return &Engine{keys: ring, codec: codec, controllers: controllers, now: time.Now}
}

// Codec returns the DID codec of the engine.
func (e *Engine) Codec() identity.Codec {
	return e.codec
}

// Sign creates a proof over raw on behalf of signer using the key keyID.
// Any proof already present in raw is ignored.
func (e *Engine) Sign(ctx context.Context, raw []byte, signer identity.Identity, keyID string, r DocumentResolver) (*document.Proof, error) {
	doc, err := document.Parse(raw)
	if err != nil {
		return nil, err
	}

	if err := e.Authorize(ctx, doc, signer); err != nil {
		return nil, err
	}

	signerDID := e.codec.FormatDID(signer)

	owner, err := e.codec.Normalize(document.KeyOwner(keyID))
	if err != nil {
		return nil, err
	}

	if owner != signerDID {
		return nil, fmt.Errorf("%w: key %s does not belong to %s", fault.ErrUnauthorizedSigner, keyID, signerDID)
	}

	signerDoc, err := r.ResolveDocument(ctx, signerDID)
	if err != nil {
		return nil, fmt.Errorf("resolve signer document %s:\n%w", signerDID, err)
	}

	if !signerDoc.HasKey(keyID) {
		return nil, fmt.Errorf("%w: key %s is not listed in %s", fault.ErrUnauthorizedSigner, keyID, signerDID)
	}

	key, err := e.keys.Get(keyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fault.ErrUnauthorizedSigner, err)
	}

	stripped, err := document.StripProof(raw)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()

	token := jwt.NewWithClaims(key.Method(), claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   signerDID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		DidDocument: stripped,
	})
	token.Header["kid"] = keyID

	jws, err := token.SignedString(key.SigningKey())
	if err != nil {
		return nil, fmt.Errorf("sign jws:\n%w", err)
	}

	logger.Debug("document signed", "did", doc.ID, "key", keyID)

	return &document.Proof{
		Type:               keys.ProofType(key.KeyType()),
		Created:            now.Format(time.RFC3339),
		ProofPurpose:       PurposeAssertion,
		VerificationMethod: keyID,
		JWS:                jws,
	}, nil
}

// SignDocument signs raw and returns the canonical document with the proof attached.
func (e *Engine) SignDocument(ctx context.Context, raw []byte, signer identity.Identity, keyID string, r DocumentResolver) ([]byte, error) {
	p, err := e.Sign(ctx, raw, signer, keyID, r)
	if err != nil {
		return nil, err
	}

	return Attach(raw, p)
}

// Attach returns the canonical form of raw with proof set.
func Attach(raw []byte, p *document.Proof) ([]byte, error) {
	return document.AttachProof(raw, p)
}

// Authorize checks that signer is the document's subject or the registered
// controller of a contract subject.
func (e *Engine) Authorize(ctx context.Context, doc *document.Document, signer identity.Identity) error {
	subject, controller, err := e.authority(ctx, doc)
	if err != nil {
		return err
	}

	if signer == subject || (!controller.IsZero() && signer == controller) {
		return nil
	}

	return fmt.Errorf("%w: %s may not sign for %s", fault.ErrNotAuthorizedToIssue, e.codec.FormatDID(signer), doc.ID)
}

// authority returns the subject of doc and its registered controller, which
// is zero for accounts and unregistered contracts. A controller named by the
// document must match the registered one; accounts may not name any.
func (e *Engine) authority(ctx context.Context, doc *document.Document) (subject, controller identity.Identity, err error) {
	subject, err = e.codec.ParseDID(doc.ID)
	if err != nil {
		return identity.Identity{}, identity.Identity{}, err
	}

	if subject.IsContract() {
		controller, err = e.controllers.ControllerOf(ctx, subject)
		if errors.Is(err, fault.ErrNotFound) {
			controller, err = identity.Identity{}, nil
		}
		if err != nil {
			return identity.Identity{}, identity.Identity{}, fmt.Errorf("resolve controller of %s:\n%w", doc.ID, err)
		}
	}

	if doc.Controller == "" {
		return subject, controller, nil
	}

	named, err := e.codec.ParseDID(doc.Controller)
	if err != nil {
		return identity.Identity{}, identity.Identity{}, err
	}

	if !subject.IsContract() {
		return identity.Identity{}, identity.Identity{}, fmt.Errorf("%w: account %s cannot name a controller",
			fault.ErrNotAuthorizedToIssue, doc.ID)
	}

	if controller.IsZero() || named != controller {
		return identity.Identity{}, identity.Identity{}, fmt.Errorf("%w: %s is not the controller of %s",
			fault.ErrNotAuthorizedToIssue, doc.Controller, doc.ID)
	}

	return subject, controller, nil
}

// Verify checks the proof attached to raw.
func (e *Engine) Verify(ctx context.Context, raw []byte, r DocumentResolver) error {
	doc, err := document.Parse(raw)
	if err != nil {
		return err
	}

	if doc.Proof == nil || doc.Proof.JWS == "" {
		return fmt.Errorf("%w: %s carries no proof", fault.ErrInvalidSignature, doc.ID)
	}

	vm := doc.Proof.VerificationMethod

	owner, err := e.keyOwner(ctx, doc, vm)
	if err != nil {
		return err
	}

	ownerDoc, err := r.ResolveDocument(ctx, owner)
	if err != nil {
		return fmt.Errorf("resolve signer document %s:\n%w", owner, err)
	}

	if !ownerDoc.HasKey(vm) {
		return fmt.Errorf("%w: key %s is not listed in %s", fault.ErrUnauthorizedSigner, vm, owner)
	}

	pk, ok := ownerDoc.FindKey(vm)
	if !ok {
		return fmt.Errorf("%w: %s has no key material for %s", fault.ErrUnauthorizedSigner, owner, vm)
	}

	method, verifyKey, err := keys.VerifierFor(pk)
	if err != nil {
		return err
	}

	payload, err := e.parse(doc.Proof.JWS, method, verifyKey)
	if err != nil {
		return err
	}

	if payload.Issuer != owner {
		return fmt.Errorf("%w: jws issuer %s does not own %s", fault.ErrInvalidSignature, payload.Issuer, vm)
	}

	want, err := document.ContentHash(raw)
	if err != nil {
		return err
	}

	got, err := document.ContentHash(payload.DidDocument)
	if err != nil {
		return fmt.Errorf("%w: embedded document: %v", fault.ErrPayloadMismatch, err)
	}

	if want != got {
		return fmt.Errorf("%w: %s differs from the signed document", fault.ErrPayloadMismatch, doc.ID)
	}

	logger.Debug("proof verified", "did", doc.ID, "key", vm)

	return nil
}

// keyOwner returns the normalized DID owning vm and checks that it is the
// document's subject or its registered controller.
func (e *Engine) keyOwner(ctx context.Context, doc *document.Document, vm string) (string, error) {
	subject, controller, err := e.authority(ctx, doc)
	if err != nil {
		return "", err
	}

	ownerRef, _, err := identity.SplitKeyID(vm)
	if err != nil {
		return "", fmt.Errorf("%w: %v", fault.ErrUnauthorizedSigner, err)
	}

	owner, err := e.codec.ParseDID(ownerRef)
	if err != nil {
		return "", fmt.Errorf("%w: %v", fault.ErrUnauthorizedSigner, err)
	}

	if owner != subject && (controller.IsZero() || owner != controller) {
		return "", fmt.Errorf("%w: %s is neither %s nor its controller",
			fault.ErrUnauthorizedSigner, e.codec.FormatDID(owner), doc.ID)
	}

	return e.codec.FormatDID(owner), nil
}

// parse verifies the compact JWS and returns its payload.
func (e *Engine) parse(jws string, method jwt.SigningMethod, key any) (*claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var c claims

	_, err := parser.ParseWithClaims(jws, &c, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fault.ErrInvalidSignature, err)
	}

	if len(c.DidDocument) == 0 {
		return nil, fmt.Errorf("%w: jws carries no document", fault.ErrInvalidSignature)
	}

	return &c, nil
}
