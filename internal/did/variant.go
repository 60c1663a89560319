package did

import (
	"Veritas/internal/document"
	"Veritas/internal/identity"
)

// Variant is a resolved DID document in one of its three shapes:
// AccountDocument, ContractDocument or DeactivatedDocument.
type Variant interface {
	// Document returns the JSON form of the variant.
	Document() *document.Document

	variant()
}

// AccountDocument is the self-sovereign document of an account.
type AccountDocument struct {
	Subject identity.Identity
	Doc     *document.Document
	Default bool // Default is true when nothing was ever published
}

// ContractDocument is a contract document delegated to a controller.
type ContractDocument struct {
	Subject    identity.Identity
	Controller identity.Identity
	Doc        *document.Document
	Default    bool
}

// DeactivatedDocument is the placeholder returned for a deactivated DID.
type DeactivatedDocument struct {
	Subject identity.Identity
	ID      string
}

func (v AccountDocument) Document() *document.Document  { return v.Doc }
func (v ContractDocument) Document() *document.Document { return v.Doc }

func (v DeactivatedDocument) Document() *document.Document {
	return placeholder(v.ID)
}

func (AccountDocument) variant()     {}
func (ContractDocument) variant()    {}
func (DeactivatedDocument) variant() {}

// placeholder builds the keyless document returned for deactivated DIDs.
func placeholder(did string) *document.Document {
	return &document.Document{Context: document.Context, ID: did}
}
