package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is a non-2xx response from the node.
type APIError struct {
	StatusCode int    // StatusCode is the HTTP status
	Message    string // Message is the node's error text
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// httpGet performs a GET request and decodes the JSON response.
func (c *Client) httpGet(path string, result any) error {
	return c.do(http.MethodGet, path, "", nil, result)
}

// httpPostJSON performs a POST request with JSON body and decodes the JSON response.
func (c *Client) httpPostJSON(path string, body any, result any) error {
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body:\n%w", err)
	}

	return c.do(http.MethodPost, path, "application/json", jsonBytes, result)
}

// do sends a request and decodes a JSON response into result when non-nil.
func (c *Client) do(method, path, contentType string, body []byte, result any) error {
	raw, err := c.doRaw(method, path, contentType, body)
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}

	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("%s %s: decode response:\n%w", method, path, err)
	}

	return nil
}

// doRaw sends a request and returns the response body of a 2xx reply.
func (c *Client) doRaw(method, path, contentType string, body []byte) ([]byte, error) {
	url := "http://" + c.nodeAddr + path

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s %s:\n%w", method, url, err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s:\n%w", method, url, err)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body:\n%w", method, url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = string(raw)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	return raw, nil
}
