package api

import "Veritas/internal/claims"

// IssueRequest is the body of POST /verifications.
type IssueRequest struct {
	Subject                 string `json:"subject"`                 // Subject is a hex identity or DID
	Topic                   string `json:"topic"`                   // Topic is the claim path
	ExpirationDate          int64  `json:"expirationDate"`          // ExpirationDate is a unix timestamp, 0 = never
	DisableSubVerifications bool   `json:"disableSubVerifications"` // DisableSubVerifications blocks delegation
	Description             string `json:"description"`             // Description is stored in the blob store
	Data                    string `json:"data"`                    // Data is stored in the blob store
}

// IssueResponse is the result of POST /verifications.
type IssueResponse struct {
	ID claims.ID `json:"id"`
}

// TransitionRequest is the body of the confirm, reject and delete endpoints.
type TransitionRequest struct {
	Subject string `json:"subject"` // Subject owns the entry
	Reason  string `json:"reason"`  // Reason is stored in the blob store on reject
}

// StatusResponse is a plain acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries the error message of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
