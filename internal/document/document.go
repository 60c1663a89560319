// Package document models DID documents and their canonical content hash.
package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"Veritas/internal/fault"
)

// Context is the JSON-LD context written into every document.
const Context = "https://w3id.org/did/v1"

// Document is the JSON form of a DID document.
type Document struct {
	Context        string      `json:"@context,omitempty"`
	ID             string      `json:"id"`
	Controller     string      `json:"controller,omitempty"`
	PublicKey      []PublicKey `json:"publicKey,omitempty"`
	Authentication []string    `json:"authentication,omitempty"`
	Service        []Service   `json:"service,omitempty"`
	Created        string      `json:"created,omitempty"`
	Updated        string      `json:"updated,omitempty"`
	Proof          *Proof      `json:"proof,omitempty"`
}

// PublicKey is a verification method listed in a document.
type PublicKey struct {
	ID              string  `json:"id"`
	Type            KeyType `json:"type"`
	Controller      string  `json:"controller,omitempty"`
	EthereumAddress string  `json:"ethereumAddress,omitempty"`
	PublicKeyBase58 string  `json:"publicKeyBase58,omitempty"`
}

// Service is a service endpoint listed in a document.
type Service struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	ServiceEndpoint string `json:"serviceEndpoint"`
}

// Proof is the signature envelope attached to a published document.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	ProofPurpose       string `json:"proofPurpose"`
	VerificationMethod string `json:"verificationMethod"`
	JWS                string `json:"jws"`
}

// KeyType is a verification method type. Older documents store it as an
// array such as ["Secp256k1SignatureVerificationKey2018", "ERC725ManagementKey"];
// the first entry is the cryptographic type.
type KeyType string

// UnmarshalJSON accepts a string or the legacy array form.
func (k *KeyType) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*k = KeyType(single)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("%w: key type must be a string or array", fault.ErrValidation)
	}

	if len(list) == 0 {
		return fmt.Errorf("%w: empty key type array", fault.ErrValidation)
	}

	*k = KeyType(list[0])

	return nil
}

// Parse decodes a document from JSON.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid did document: %v", fault.ErrValidation, err)
	}

	if doc.ID == "" {
		return nil, fmt.Errorf("%w: did document has no id", fault.ErrValidation)
	}

	return &doc, nil
}

// Marshal encodes the document as JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := *d
	c.PublicKey = append([]PublicKey(nil), d.PublicKey...)
	c.Authentication = append([]string(nil), d.Authentication...)
	c.Service = append([]Service(nil), d.Service...)

	if d.Proof != nil {
		p := *d.Proof
		c.Proof = &p
	}

	return &c
}

// FindKey returns the public key with the given id.
func (d *Document) FindKey(id string) (PublicKey, bool) {
	for _, pk := range d.PublicKey {
		if pk.ID == id {
			return pk, true
		}
	}
	return PublicKey{}, false
}

// HasKey reports whether id is listed in publicKey or authentication.
func (d *Document) HasKey(id string) bool {
	if _, ok := d.FindKey(id); ok {
		return true
	}

	for _, a := range d.Authentication {
		if a == id {
			return true
		}
	}

	return false
}

// KeyIDs returns the ids of all verification methods, authentication first.
func (d *Document) KeyIDs() []string {
	seen := make(map[string]bool)
	var ids []string

	for _, a := range d.Authentication {
		if !seen[a] {
			seen[a] = true
			ids = append(ids, a)
		}
	}

	for _, pk := range d.PublicKey {
		if !seen[pk.ID] {
			seen[pk.ID] = true
			ids = append(ids, pk.ID)
		}
	}

	return ids
}

// IsEmpty reports whether the document lists no keys and no services.
func (d *Document) IsEmpty() bool {
	return len(d.PublicKey) == 0 && len(d.Authentication) == 0 && len(d.Service) == 0
}

// KeyOwner returns the DID part of a key reference, or the reference itself
// when it has no fragment.
func KeyOwner(keyID string) string {
	did, _, _ := strings.Cut(keyID, "#")
	return did
}
