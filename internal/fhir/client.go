package fhir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fhirmcp/pkg/logging"
)

const fhirJSONMediaType = "application/fhir+json"

// Client is a minimal FHIR R4 REST client bound to one base URL.
//
// Every request carries the fhir+json content negotiation headers and the
// configured timeout. Requests are made exactly once: FHIR writes are not
// idempotent-safe to blindly retry, so failures surface immediately.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given FHIR base URL, e.g.
// "http://localhost:8080/fhir". A trailing slash is trimmed so relative
// paths join cleanly.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs one HTTP exchange against the FHIR server and decodes the
// JSON response body.
//
// path is relative to the base URL ("Patient/123",
// "PlanDefinition/abc/$apply"). query may be nil. body, when non-nil, is
// JSON-serialized and sent with a fhir+json content type.
//
// A 204 response yields a synthetic success marker object since there is no
// body to decode. Any non-2xx status returns a *ResponseError carrying the
// status code and raw body; transport-level failures return a
// *TransportError naming the base URL.
//
// The raw body bytes are returned alongside the decoded map so JSON
// pass-through output can preserve the server's key order, which a decode
// into map[string]any would lose.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body any) (map[string]any, []byte, error) {
	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("could not serialize request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("could not build request for %s: %w", fullURL, err)
	}
	req.Header.Set("Accept", fhirJSONMediaType)
	if body != nil {
		req.Header.Set("Content-Type", fhirJSONMediaType)
	}

	logging.Debug("fhir-client", "%s %s", method, fullURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{BaseURL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{BaseURL: c.baseURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			URL:        fullURL,
		}
	}

	if resp.StatusCode == http.StatusNoContent {
		raw := []byte(`{"status":"success","message":"Resource deleted"}`)
		return map[string]any{"status": "success", "message": "Resource deleted"}, raw, nil
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, nil, fmt.Errorf("could not decode response from %s: %w", fullURL, err)
	}
	return result, respBody, nil
}

// Get performs a GET request against a relative path.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (map[string]any, []byte, error) {
	return c.Request(ctx, http.MethodGet, path, query, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body any) (map[string]any, []byte, error) {
	return c.Request(ctx, http.MethodPost, path, query, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (map[string]any, []byte, error) {
	return c.Request(ctx, http.MethodPut, path, nil, body)
}

// Delete performs a DELETE request. A 204 response is reported as success.
func (c *Client) Delete(ctx context.Context, path string) (map[string]any, []byte, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, nil)
}
