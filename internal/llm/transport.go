package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const maxResponseBytes = 4 << 20

// APIError is a non-200 answer from a provider.
type APIError struct {
	Provider   string
	HTTPStatus int
	// Code is the provider's error type or status, if it sent one.
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.HTTPStatus, e.Message)
}

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	return e.HTTPStatus == http.StatusTooManyRequests || e.HTTPStatus >= 500
}

// call describes one JSON POST to a provider.
type call struct {
	provider string
	url      string
	header   map[string]string
	body     any
}

// do sends c and decodes the reply into out. A reply that is not JSON, or
// a non-200 status, is an *APIError; errOf may fill Code and Message from
// the decoded body.
func (c call) do(ctx context.Context, out any, errOf func() (code, msg string)) error {
	payload, err := json.Marshal(c.body)
	if err != nil {
		return fmt.Errorf("%s: marshaling request: %w", c.provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.header {
		req.Header.Set(k, v)
	}

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", c.provider, err)
	}

	apiErr := &APIError{Provider: c.provider, HTTPStatus: resp.StatusCode, Message: truncate(string(raw), 200)}
	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return apiErr
		}
		return fmt.Errorf("%s: parsing response (body: %s): %w", c.provider, truncate(string(raw), 200), err)
	}
	if resp.StatusCode != http.StatusOK {
		if code, msg := errOf(); msg != "" {
			apiErr.Code, apiErr.Message = code, msg
		}
		return apiErr
	}
	return nil
}
