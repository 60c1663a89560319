// Package client talks to a node over its HTTP API.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"Veritas/internal/api"
	"Veritas/internal/claims"
	"Veritas/internal/dfs"
	"Veritas/internal/document"
	"Veritas/internal/trust"
)

// Client connects to a node via HTTP.
type Client struct {
	nodeAddr string       // nodeAddr is the HTTP address (e.g. "127.0.0.1:8080")
	http     *http.Client // http sends the requests
}

// NewClient creates a client for the node at nodeAddr.
func NewClient(nodeAddr string) *Client {
	return &Client{
		nodeAddr: nodeAddr,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Health checks that the node answers.
func (c *Client) Health() error {
	var resp api.StatusResponse
	if err := c.httpGet("/health", &resp); err != nil {
		return fmt.Errorf("health:\n%w", err)
	}

	if resp.Status != "ok" {
		return fmt.Errorf("node status %q", resp.Status)
	}

	return nil
}

// Evaluate computes the trust chain of subject along topic.
func (c *Client) Evaluate(subject, topic string) (*trust.Computed, error) {
	var computed trust.Computed
	if err := c.httpGet("/verifications?"+subjectTopic(subject, topic), &computed); err != nil {
		return nil, fmt.Errorf("evaluate:\n%w", err)
	}

	return &computed, nil
}

// Entries returns the raw ledger entries of subject for topic.
func (c *Client) Entries(subject, topic string) ([]claims.Entry, error) {
	var entries []claims.Entry
	if err := c.httpGet("/verifications/entries?"+subjectTopic(subject, topic), &entries); err != nil {
		return nil, fmt.Errorf("entries:\n%w", err)
	}

	return entries, nil
}

// Issue creates a verification issued by the node identity.
func (c *Client) Issue(req api.IssueRequest) (claims.ID, error) {
	var resp api.IssueResponse
	if err := c.httpPostJSON("/verifications", req, &resp); err != nil {
		return claims.ID{}, fmt.Errorf("issue:\n%w", err)
	}

	return resp.ID, nil
}

// Confirm confirms entry id of subject as the node identity.
func (c *Client) Confirm(id claims.ID, subject string) error {
	return c.transition(id, "confirm", api.TransitionRequest{Subject: subject})
}

// Reject rejects entry id of subject as the node identity.
func (c *Client) Reject(id claims.ID, subject, reason string) error {
	return c.transition(id, "reject", api.TransitionRequest{Subject: subject, Reason: reason})
}

// Delete removes entry id of subject as the node identity.
func (c *Client) Delete(id claims.ID, subject string) error {
	return c.transition(id, "delete", api.TransitionRequest{Subject: subject})
}

func (c *Client) transition(id claims.ID, action string, req api.TransitionRequest) error {
	if err := c.httpPostJSON("/verifications/"+id.String()+"/"+action, req, nil); err != nil {
		return fmt.Errorf("%s %s:\n%w", action, id, err)
	}
	return nil
}

// ResolveDID returns the current document of did.
func (c *Client) ResolveDID(did string) (*document.Document, error) {
	var doc document.Document
	if err := c.httpGet("/did/"+url.PathEscape(did), &doc); err != nil {
		return nil, fmt.Errorf("resolve %s:\n%w", did, err)
	}

	return &doc, nil
}

// Publish signs and stores doc as the node identity. An empty keyID uses the node key.
func (c *Client) Publish(doc *document.Document, keyID string) (*document.Document, error) {
	raw, err := doc.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal document:\n%w", err)
	}

	path := "/did"
	if keyID != "" {
		path += "?key=" + url.QueryEscape(keyID)
	}

	var published document.Document
	if err := c.do(http.MethodPost, path, "application/json", raw, &published); err != nil {
		return nil, fmt.Errorf("publish %s:\n%w", doc.ID, err)
	}

	return &published, nil
}

// Verify asks the node to check the proof of a signed document.
func (c *Client) Verify(raw []byte) error {
	if err := c.do(http.MethodPost, "/did/verify", "application/json", raw, nil); err != nil {
		return fmt.Errorf("verify:\n%w", err)
	}
	return nil
}

// Deactivate permanently deactivates did as the node identity.
func (c *Client) Deactivate(did string) error {
	if err := c.do(http.MethodPost, "/did/"+url.PathEscape(did)+"/deactivate", "", nil, nil); err != nil {
		return fmt.Errorf("deactivate %s:\n%w", did, err)
	}
	return nil
}

// Blob fetches a payload from the node's blob store.
func (c *Client) Blob(ref dfs.Ref) ([]byte, error) {
	data, err := c.doRaw(http.MethodGet, "/blobs/"+ref.String(), "", nil)
	if err != nil {
		return nil, fmt.Errorf("blob %s:\n%w", ref, err)
	}
	return data, nil
}

// subjectTopic encodes the evaluation query.
func subjectTopic(subject, topic string) string {
	q := url.Values{}
	q.Set("subject", subject)
	q.Set("topic", topic)
	return q.Encode()
}
