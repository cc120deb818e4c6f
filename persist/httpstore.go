package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPStore is a Store talking to the journal backend over HTTP.
// Authentication rides on the supplied http.Client (session cookie jar);
// the store itself is auth-agnostic.
type HTTPStore struct {
	// URL is the base URL of the backend, without a trailing slash.
	URL string

	// Client is the HTTP client to use. Nil means http.DefaultClient.
	Client *http.Client
}

// NewHTTPStore creates a store for the backend at baseURL.
func NewHTTPStore(baseURL string, client *http.Client) *HTTPStore {
	return &HTTPStore{URL: baseURL, Client: client}
}

// payloadEnvelope is the JSON body for payload uploads. Binary fields
// ride as base64 via encoding/json's []byte handling.
type payloadEnvelope struct {
	Payload   []byte `json:"payload"`
	Thumbnail []byte `json:"thumbnail,omitempty"`
}

// refEnvelope is the JSON response to a payload upload.
type refEnvelope struct {
	ID string `json:"id"`
}

// Document implements Store.
func (s *HTTPStore) Document(ctx context.Context) ([]byte, error) {
	body, status, err := s.do(ctx, http.MethodGet, "/api/document", nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound || status == http.StatusNoContent:
		return nil, nil
	case status != http.StatusOK:
		return nil, statusError("get document", status)
	}
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

// PutDocument implements Store.
func (s *HTTPStore) PutDocument(ctx context.Context, blob []byte) error {
	_, status, err := s.do(ctx, http.MethodPut, "/api/document", blob)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return statusError("put document", status)
	}
	return nil
}

// PutImage implements Store.
func (s *HTTPStore) PutImage(ctx context.Context, payload, thumbnail []byte) (PayloadRef, error) {
	return s.putPayload(ctx, "/api/images", payload, thumbnail)
}

// GetImage implements Store.
func (s *HTTPStore) GetImage(ctx context.Context, ref PayloadRef) ([]byte, error) {
	return s.getPayload(ctx, "/api/images/", ref)
}

// DeleteImage implements Store.
func (s *HTTPStore) DeleteImage(ctx context.Context, ref PayloadRef) error {
	return s.deletePayload(ctx, "/api/images/", ref)
}

// PutAudio implements Store.
func (s *HTTPStore) PutAudio(ctx context.Context, payload []byte) (PayloadRef, error) {
	return s.putPayload(ctx, "/api/audio", payload, nil)
}

// GetAudio implements Store.
func (s *HTTPStore) GetAudio(ctx context.Context, ref PayloadRef) ([]byte, error) {
	return s.getPayload(ctx, "/api/audio/", ref)
}

// DeleteAudio implements Store.
func (s *HTTPStore) DeleteAudio(ctx context.Context, ref PayloadRef) error {
	return s.deletePayload(ctx, "/api/audio/", ref)
}

func (s *HTTPStore) putPayload(ctx context.Context, path string, payload, thumbnail []byte) (PayloadRef, error) {
	if len(payload) == 0 {
		return "", ErrEmptyPayload
	}
	body, err := json.Marshal(payloadEnvelope{Payload: payload, Thumbnail: thumbnail})
	if err != nil {
		return "", fmt.Errorf("persist: encode payload: %w", err)
	}
	resp, status, err := s.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", statusError("post payload", status)
	}
	var ref refEnvelope
	if err := json.Unmarshal(resp, &ref); err != nil {
		return "", fmt.Errorf("persist: decode payload reference: %w", err)
	}
	return PayloadRef(ref.ID), nil
}

func (s *HTTPStore) getPayload(ctx context.Context, prefix string, ref PayloadRef) ([]byte, error) {
	body, status, err := s.do(ctx, http.MethodGet, prefix+string(ref), nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status != http.StatusOK:
		return nil, statusError("get payload", status)
	}
	return body, nil
}

func (s *HTTPStore) deletePayload(ctx context.Context, prefix string, ref PayloadRef) error {
	_, status, err := s.do(ctx, http.MethodDelete, prefix+string(ref), nil)
	if err != nil {
		return err
	}
	// Deleting an absent reference is a no-op, not an error.
	if status == http.StatusNotFound {
		return nil
	}
	if status < 200 || status > 299 {
		return statusError("delete payload", status)
	}
	return nil
}

// do performs one request and returns the response body and status code.
// Transport-level failures are returned as errors; non-2xx statuses are
// left to the caller, which knows which ones are expected.
func (s *HTTPStore) do(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.URL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("persist: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("persist: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("persist: read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

func statusError(op string, status int) error {
	return fmt.Errorf("persist: %s: unexpected status %d", op, status)
}
