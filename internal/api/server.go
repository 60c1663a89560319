package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"Veritas/internal/claims"
	"Veritas/internal/dfs"
	"Veritas/internal/document"
	"Veritas/internal/fault"
	"Veritas/internal/identity"
	"Veritas/internal/logger"
	"Veritas/internal/topic"
	"Veritas/internal/trust"
)

const (
	// maxBodySize is the maximum request body size in bytes.
	maxBodySize = 1 << 20 // 1 MB
)

// Evaluator computes trust chains.
type Evaluator interface {
	Evaluate(ctx context.Context, subject identity.Identity, t topic.Topic) (*trust.Computed, error)
}

// Documents manages DID documents.
type Documents interface {
	Resolve(ctx context.Context, did string) (*document.Document, error)
	Publish(ctx context.Context, signer identity.Identity, did string, raw []byte, keyID string) (*document.Document, error)
	Deactivate(ctx context.Context, actor identity.Identity, did string) error
	Verify(ctx context.Context, raw []byte) error
}

// Actor is the identity the node acts as, with its default signing key.
type Actor struct {
	Identity identity.Identity // Identity is the node's account
	KeyID    string            // KeyID is the verification method used to sign
}

// Server is the HTTP API server.
type Server struct {
	addr       string            // addr is the HTTP listen address
	self       Actor             // self is the identity writes are made as
	identities identity.Resolver // identities parses subject references
	ledger     claims.Ledger     // ledger stores verification entries
	evaluator  Evaluator         // evaluator computes trust chains
	docs       Documents         // docs manages DID documents
	blobs      dfs.Store         // blobs stores descriptions, payloads and reasons
	server     *http.Server      // server is the underlying HTTP server
}

// New creates a new HTTP API server.
func New(addr string, self Actor, identities identity.Resolver, ledger claims.Ledger, evaluator Evaluator, docs Documents, blobs dfs.Store) *Server {
	return &Server{
		addr:       addr,
		self:       self,
		identities: identities,
		ledger:     ledger,
		evaluator:  evaluator,
		docs:       docs,
		blobs:      blobs,
	}
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /verifications", s.handleEvaluate)
	mux.HandleFunc("GET /verifications/entries", s.handleEntries)
	mux.HandleFunc("POST /verifications", s.handleIssue)
	mux.HandleFunc("POST /verifications/{id}/confirm", s.handleConfirm)
	mux.HandleFunc("POST /verifications/{id}/reject", s.handleReject)
	mux.HandleFunc("POST /verifications/{id}/delete", s.handleDelete)

	mux.HandleFunc("GET /did/{did}", s.handleResolve)
	mux.HandleFunc("POST /did", s.handlePublish)
	mux.HandleFunc("POST /did/verify", s.handleVerify)
	mux.HandleFunc("POST /did/{did}/deactivate", s.handleDeactivate)

	mux.HandleFunc("GET /blobs/{ref}", s.handleBlob)

	return mux
}

// Start starts the HTTP server in a goroutine.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http api started", "addr", s.addr)

		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleEvaluate handles GET /verifications?subject=&topic= requests.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	subject, t, err := s.subjectTopic(r)
	if err != nil {
		writeFault(w, err)
		return
	}

	computed, err := s.evaluator.Evaluate(r.Context(), subject, t)
	if err != nil {
		writeFault(w, err)
		return
	}

	writeJSON(w, http.StatusOK, computed)
}

// handleEntries handles GET /verifications/entries?subject=&topic= requests.
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	subject, t, err := s.subjectTopic(r)
	if err != nil {
		writeFault(w, err)
		return
	}

	entries, err := s.ledger.Get(r.Context(), subject, t)
	if err != nil {
		writeFault(w, err)
		return
	}

	if entries == nil {
		entries = []claims.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleIssue handles POST /verifications requests.
func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req IssueRequest
	if err := readJSON(r, &req); err != nil {
		writeFault(w, err)
		return
	}

	ctx := r.Context()

	subject, err := s.identities.IdentityFor(ctx, req.Subject)
	if err != nil {
		writeFault(w, err)
		return
	}

	t, err := topic.Parse(req.Topic)
	if err != nil {
		writeFault(w, err)
		return
	}

	opts := claims.SetOptions{
		ExpirationDate:          req.ExpirationDate,
		DisableSubVerifications: req.DisableSubVerifications,
	}

	if opts.Description, err = s.storeBlob(ctx, "description", req.Description); err != nil {
		writeFault(w, err)
		return
	}

	if opts.Data, err = s.storeBlob(ctx, "data", req.Data); err != nil {
		writeFault(w, err)
		return
	}

	id, err := s.ledger.Set(ctx, s.self.Identity, subject, t, opts)
	if err != nil {
		writeFault(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, IssueResponse{ID: id})
}

// handleConfirm handles POST /verifications/{id}/confirm requests.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(ctx context.Context, subject identity.Identity, id claims.ID, _ string) error {
		return s.ledger.Confirm(ctx, s.self.Identity, subject, id)
	})
}

// handleReject handles POST /verifications/{id}/reject requests.
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(ctx context.Context, subject identity.Identity, id claims.ID, reason string) error {
		ref, err := s.storeBlob(ctx, "reject reason", reason)
		if err != nil {
			return err
		}
		return s.ledger.Reject(ctx, s.self.Identity, subject, id, ref)
	})
}

// handleDelete handles POST /verifications/{id}/delete requests.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(ctx context.Context, subject identity.Identity, id claims.ID, _ string) error {
		return s.ledger.Delete(ctx, s.self.Identity, subject, id)
	})
}

// transition decodes a status change request and applies fn as the node identity.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, identity.Identity, claims.ID, string) error) {
	id, err := claims.ParseID(r.PathValue("id"))
	if err != nil {
		writeFault(w, err)
		return
	}

	var req TransitionRequest
	if err := readJSON(r, &req); err != nil {
		writeFault(w, err)
		return
	}

	subject, err := s.identities.IdentityFor(r.Context(), req.Subject)
	if err != nil {
		writeFault(w, err)
		return
	}

	if err := fn(r.Context(), subject, id, req.Reason); err != nil {
		writeFault(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleResolve handles GET /did/{did} requests.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Resolve(r.Context(), r.PathValue("did"))
	if err != nil {
		writeFault(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// handlePublish handles POST /did requests. The body is the document;
// ?key= selects the verification method, defaulting to the node key.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeFault(w, err)
		return
	}

	doc, err := document.Parse(raw)
	if err != nil {
		writeFault(w, err)
		return
	}

	keyID := r.URL.Query().Get("key")
	if keyID == "" {
		keyID = s.self.KeyID
	}

	published, err := s.docs.Publish(r.Context(), s.self.Identity, doc.ID, raw, keyID)
	if err != nil {
		writeFault(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, published)
}

// handleVerify handles POST /did/verify requests.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeFault(w, err)
		return
	}

	if err := s.docs.Verify(r.Context(), raw); err != nil {
		writeFault(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "valid"})
}

// handleDeactivate handles POST /did/{did}/deactivate requests.
func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := s.docs.Deactivate(r.Context(), s.self.Identity, r.PathValue("did")); err != nil {
		writeFault(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "deactivated"})
}

// handleBlob handles GET /blobs/{ref} requests.
func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	ref, err := dfs.ParseRef(r.PathValue("ref"))
	if err != nil {
		writeFault(w, err)
		return
	}

	data, err := s.blobs.Get(r.Context(), ref)
	if err != nil {
		writeFault(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// subjectTopic reads the subject and topic query parameters.
func (s *Server) subjectTopic(r *http.Request) (identity.Identity, topic.Topic, error) {
	q := r.URL.Query()

	subject, err := s.identities.IdentityFor(r.Context(), q.Get("subject"))
	if err != nil {
		return identity.Identity{}, topic.Topic{}, err
	}

	t, err := topic.Parse(q.Get("topic"))
	if err != nil {
		return identity.Identity{}, topic.Topic{}, err
	}

	return subject, t, nil
}

// storeBlob adds a non-empty text to the blob store.
func (s *Server) storeBlob(ctx context.Context, label, text string) (dfs.Ref, error) {
	if text == "" {
		return dfs.Ref{}, nil
	}

	ref, err := s.blobs.Add(ctx, label, []byte(text))
	if err != nil {
		return dfs.Ref{}, fmt.Errorf("store %s:\n%w", label, err)
	}

	return ref, nil
}

// readBody reads a request body up to maxBodySize.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body", fault.ErrValidation)
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", fault.ErrValidation)
	}

	return body, nil
}

// readJSON decodes a JSON request body into v.
func readJSON(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: invalid request: %v", fault.ErrValidation, err)
	}

	return nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeFault writes err with the status code of its kind.
func writeFault(w http.ResponseWriter, err error) {
	status := fault.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}

	writeError(w, status, err.Error())
}
