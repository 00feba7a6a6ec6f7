package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APIError represents an error response from the Account Service.
type APIError struct {
	StatusCode int
	Detail     string // Server-provided "detail" message, empty if absent
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("account api error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("account api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Message returns the server-provided detail, or fallback when the
// response carried none.
func (e *APIError) Message(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// ErrorMessage normalizes any outbound-call failure into a single
// human-readable message: the server's detail when available, the
// fixed fallback otherwise.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message(fallback)
	}
	return fallback
}

// errorBody is the Account Service's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// doRequest performs an HTTP request. A non-empty token is sent as a
// bearer credential. Status >= 400 decodes into *APIError; a malformed
// error body yields an APIError with an empty Detail, never a decode
// failure.
func (c *Client) doRequest(ctx context.Context, method, path, token string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		json.Unmarshal(respBody, &eb)
		c.logger.Debug("account api rejection",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"detail", eb.Detail,
		)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Detail:     eb.Detail,
			Body:       respBody,
		}
	}

	return respBody, nil
}

// getJSON performs a GET request and decodes the response.
func (c *Client) getJSON(ctx context.Context, path, token string, result any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, token, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// postJSON performs a POST request with a JSON body and decodes the response.
func (c *Client) postJSON(ctx context.Context, path, token string, payload, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	body, err := c.doRequest(ctx, http.MethodPost, path, token, bytes.NewReader(data), "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// putJSON performs a PUT request with a JSON body and decodes the response.
func (c *Client) putJSON(ctx context.Context, path, token string, payload, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	body, err := c.doRequest(ctx, http.MethodPut, path, token, bytes.NewReader(data), "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// postForm performs a POST request with a form-encoded body and decodes
// the response.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, result any) error {
	body, err := c.doRequest(ctx, http.MethodPost, path, "",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// delete performs a DELETE request, discarding any response body.
func (c *Client) delete(ctx context.Context, path, token string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, path, token, nil, "")
	return err
}
