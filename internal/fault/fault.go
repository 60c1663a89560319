// Package fault defines the error kinds shared by the trust evaluator,
// proof engine and DID document manager.
//
// Errors are created at their origin by wrapping one of the sentinels
// below, e.g. fmt.Errorf("%w: bad topic %q", fault.ErrValidation, s),
// and checked by callers with errors.Is.
package fault

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation marks malformed DID, topic or identity input.
	ErrValidation = errors.New("validation error")

	// ErrUnauthorizedSigner is returned when a verification method is not
	// part of the signer's document.
	ErrUnauthorizedSigner = errors.New("unauthorized signer")

	// ErrNotAuthorizedToIssue is returned when the signer is neither the
	// document's subject nor its controller.
	ErrNotAuthorizedToIssue = errors.New("not authorized to issue")

	// ErrDeactivationFailed is returned when a DID cannot be deactivated.
	ErrDeactivationFailed = errors.New("deactivation failed")

	// ErrInvalidSignature is returned when a proof signature does not verify.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrPayloadMismatch is returned when a verified proof covers a different document body.
	ErrPayloadMismatch = errors.New("payload mismatch")

	// ErrDeactivatedDid is returned when writing to a deactivated DID.
	ErrDeactivatedDid = errors.New("did is deactivated")

	// ErrNotFound is returned when a ledger record or blob does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when an actor may not perform a ledger transition.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition is returned for status changes the ledger does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// HTTPStatus maps an error to the HTTP status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorizedSigner),
		errors.Is(err, ErrNotAuthorizedToIssue),
		errors.Is(err, ErrDeactivationFailed),
		errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrDeactivatedDid),
		errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrPayloadMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
