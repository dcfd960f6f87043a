// Package backend talks to the platform REST API on behalf of the console.
package backend

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
	"time"
)

// CredentialSource supplies the bearer token for the current call. It is
// consulted on every request so a rotated token takes effect immediately.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
}

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func(ctx context.Context) (string, error)

// Credential implements CredentialSource.
func (f CredentialFunc) Credential(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken is a fixed credential, used by the worker and the realtime channel.
type StaticToken string

// Credential implements CredentialSource.
func (t StaticToken) Credential(context.Context) (string, error) {
	if t == "" {
		return "", ErrNoCredential
	}
	return string(t), nil
}

// Observer receives timing for every backend call.
type Observer interface {
	ObserveBackendCall(method, path string, status int, elapsed time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials CredentialSource
	HTTPClient  *http.Client
	Observer    Observer
}

// Client performs JSON requests against the backend.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	creds    CredentialSource
	observer Observer
}

const maxErrorBody = 64 << 10

// NewClient validates opts and returns a Client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("backend: base url required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, http: httpClient, creds: opts.Credentials, observer: opts.Observer}, nil
}

// WithCredentials returns a copy of c that authenticates with src. A nil src
// yields an anonymous client.
func (c *Client) WithCredentials(src CredentialSource) *Client {
	clone := *c
	clone.creds = src
	return &clone
}

// Get issues a GET and decodes the JSON body into dest.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) error {
	raw, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decodeInto(path, raw, dest)
}

// Post issues a POST with a JSON body and decodes the reply into dest when non-nil.
func (c *Client) Post(ctx context.Context, path string, body, dest any) error {
	raw, err := c.Do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return decodeInto(path, raw, dest)
}

// Patch issues a PATCH with a JSON body and decodes the reply into dest when non-nil.
func (c *Client) Patch(ctx context.Context, path string, body, dest any) error {
	raw, err := c.Do(ctx, http.MethodPatch, path, nil, body)
	if err != nil {
		return err
	}
	return decodeInto(path, raw, dest)
}

// Do performs the request and returns the raw body of a 2xx response.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	target := c.resolve(path, query)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		token, err := c.creds.Credential(ctx)
		if err != nil {
			return nil, err
		}
		if token == "" {
			return nil, ErrNoCredential
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, path, 0, start)
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.observe(method, path, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, parseAPIError(resp.StatusCode, raw)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read " + path, Err: err}
	}
	return raw, nil
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) observe(method, path string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(method, path, status, time.Since(start))
}

func decodeInto(path string, raw []byte, dest any) error {
	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &DecodeError{Path: path, Reason: "invalid json", Err: err}
	}
	return nil
}
