// Package client provides an HTTP client for the userdesk API together with
// a state controller that keeps a local view of the user list consistent
// with server state after each mutation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/userdesk/userdesk/internal/users"
)

// APIError represents a structured error response from the userdesk API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("client: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client is an HTTP/JSON client for the userdesk API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a new userdesk API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListUsers fetches all users, ordered by ascending id.
func (c *Client) ListUsers(ctx context.Context) ([]users.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, err
	}

	var list []users.User
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("client: decode user list: %w", err)
	}
	return list, nil
}

// GetUser fetches a single user by id.
func (c *Client) GetUser(ctx context.Context, id int64) (*users.User, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil)
	if err != nil {
		return nil, err
	}

	// The server responds with a single-element array.
	var list []users.User
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("client: decode user: %w", err)
	}
	if len(list) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "User not found"}
	}
	return &list[0], nil
}

// CreateUser creates a new user and returns the server's confirmation text.
func (c *Client) CreateUser(ctx context.Context, name, email string) (string, error) {
	req := users.CreateUserRequest{Name: name, Email: email}
	body, err := c.do(ctx, http.MethodPost, "/users", req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// UpdateUser updates a user's name and email and returns the confirmation text.
func (c *Client) UpdateUser(ctx context.Context, id int64, name, email string) (string, error) {
	req := users.UpdateUserRequest{Name: name, Email: email}
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DeleteUser deletes a user by id and returns the confirmation text.
func (c *Client) DeleteUser(ctx context.Context, id int64) (string, error) {
	body, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// do performs an HTTP request against the API and returns the raw response
// body. Non-2xx responses are decoded into an *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("client: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("client: create request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// decodeError turns an error response into an *APIError, falling back to the
// raw body when the payload is not the expected {"error": ...} shape.
func decodeError(statusCode int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &APIError{StatusCode: statusCode, Message: payload.Error}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}
