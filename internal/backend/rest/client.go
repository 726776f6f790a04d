// Package rest is the remote backend: a Supabase-style stack with GoTrue
// for authentication and PostgREST for row access. The client is a thin
// HTTP wrapper; it performs no retries and surfaces the backend's error
// text verbatim.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"fintrack/internal/backend"
)

type Client struct {
	baseURL string
	apiKey  string
	siteURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

var (
	_ backend.Auth        = (*Client)(nil)
	_ backend.Store       = (*Client)(nil)
	_ backend.TokenBearer = (*Client)(nil)
)

// New builds a client for the API at baseURL. siteURL is the address of
// this deployment, sent as the redirect target on password recovery.
func New(baseURL, apiKey, siteURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		siteURL: siteURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the access token used as bearer on subsequent
// requests. An empty token reverts to anonymous (api key only) access.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token != "" {
		return c.token
	}
	return c.apiKey
}

func (c *Client) Close() error { return nil }

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes the request and decodes a 2xx response into out (which may
// be nil). Any other status is turned into a *backend.Error carrying the
// remote error text.
func (c *Client) do(op string, req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return &backend.Error{Op: op, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return apiError(op, res)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &backend.Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// apiError extracts the error text from a failed response. GoTrue and
// PostgREST use different body shapes, so every known field is tried.
func apiError(op string, res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	var body struct {
		Message   string `json:"message"`
		Msg       string `json:"msg"`
		ErrorDesc string `json:"error_description"`
		ErrorText string `json:"error"`
		Code      string `json:"code"`
	}
	_ = json.Unmarshal(raw, &body)

	msg := body.Message
	for _, alt := range []string{body.Msg, body.ErrorDesc, body.ErrorText} {
		if msg == "" {
			msg = alt
		}
	}
	if msg == "" {
		msg = res.Status
	}

	e := &backend.Error{Op: op, Message: msg}
	// 23503 is the Postgres foreign key violation class, raised when a
	// delete would orphan dependent rows.
	if body.Code == "23503" {
		e.Err = backend.ErrRestricted
	}
	if res.StatusCode == http.StatusUnauthorized {
		e.Err = backend.ErrNoSession
	}
	return e
}
