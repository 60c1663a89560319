package trust

import "encoding/json"

// Warning is a soft-failure tag attached to a computed verification.
type Warning string

const (
	// WarnMissing means no entry exists for the subject and topic.
	WarnMissing Warning = "missing"

	// WarnIssued means the entry was not confirmed by its subject.
	WarnIssued Warning = "issued"

	// WarnExpired means the entry's expiration date has passed.
	WarnExpired Warning = "expired"

	// WarnSelfIssued means issuer and subject are the same identity.
	WarnSelfIssued Warning = "selfIssued"

	// WarnNotEnsRootOwner means a root topic was not issued by the trust anchor.
	WarnNotEnsRootOwner Warning = "notEnsRootOwner"

	// WarnParentMissing means the issuer holds no entry for the parent topic.
	WarnParentMissing Warning = "parentMissing"

	// WarnParentUntrusted means the issuer's parent entry is itself not trustworthy.
	WarnParentUntrusted Warning = "parentUntrusted"

	// WarnDisableSubVerifications means an ancestor forbids delegation below it.
	WarnDisableSubVerifications Warning = "disableSubVerifications"
)

// untrustedParent lists the parent warnings that make a child parentUntrusted.
var untrustedParent = []Warning{
	WarnMissing,
	WarnParentMissing,
	WarnParentUntrusted,
	WarnNotEnsRootOwner,
}

// Warnings is an insertion-ordered set of warnings.
type Warnings []Warning

// Add appends w unless already present.
func (ws *Warnings) Add(w Warning) {
	if !ws.Has(w) {
		*ws = append(*ws, w)
	}
}

// Has reports whether w is in the set.
func (ws Warnings) Has(w Warning) bool {
	for _, x := range ws {
		if x == w {
			return true
		}
	}
	return false
}

// HasAny reports whether any of the given warnings is in the set.
func (ws Warnings) HasAny(list ...Warning) bool {
	for _, w := range list {
		if ws.Has(w) {
			return true
		}
	}
	return false
}

// MarshalJSON encodes an empty set as [] rather than null.
func (ws Warnings) MarshalJSON() ([]byte, error) {
	if ws == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Warning(ws))
}
