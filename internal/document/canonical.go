package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"github.com/zeebo/blake3"

	"Veritas/internal/fault"
)

// ProofField is the JSON member holding a document's proof.
const ProofField = "proof"

// Canonical returns the RFC 8785 (JCS) form of a JSON document.
func Canonical(raw []byte) ([]byte, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return encode(v)
}

// StripProof returns the canonical form of a JSON object without its proof member.
func StripProof(raw []byte) ([]byte, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document is not a JSON object", fault.ErrValidation)
	}

	delete(obj, ProofField)

	return encode(obj)
}

// ContentHash is the blake3 hash of the canonical proof-less document.
func ContentHash(raw []byte) ([32]byte, error) {
	stripped, err := StripProof(raw)
	if err != nil {
		return [32]byte{}, err
	}
	return blake3.Sum256(stripped), nil
}

// AttachProof returns the canonical document with proof set.
func AttachProof(raw []byte, proof *Proof) ([]byte, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document is not a JSON object", fault.ErrValidation)
	}

	obj[ProofField] = proof

	return encode(obj)
}

// Stamp returns the canonical document without its proof, with updated set
// to ts and created set to ts unless already present.
func Stamp(raw []byte, ts string) ([]byte, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document is not a JSON object", fault.ErrValidation)
	}

	delete(obj, ProofField)

	if created, _ := obj["created"].(string); created == "" {
		obj["created"] = ts
	}
	obj["updated"] = ts

	return encode(obj)
}

// decode parses JSON keeping numbers as json.Number.
func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", fault.ErrValidation, err)
	}

	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON value", fault.ErrValidation)
	}

	return v, nil
}

// encode marshals v and canonicalizes the result with JCS.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	out, err := jcs.Transform(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: canonicalize: %v", fault.ErrValidation, err)
	}

	return out, nil
}
