// Package client is a typed HTTP client for the todo API.
package client

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

var (
	ErrNotFound   = errors.New("todo not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("todo already exists")
	ErrServer     = errors.New("server error")
)

// Todo mirrors the API representation.
type Todo struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// APIError is returned for any non-2xx response. It unwraps to one of the
// package sentinel errors.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("todo api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("todo api: %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusConflict:
		return ErrConflict
	case e.Status >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}

type Client struct {
	base   string
	http   *http.Client
	apiKey string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAPIKey sends key in X-Api-Key on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 35 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) List(ctx context.Context) ([]Todo, error) {
	var out []Todo
	if err := c.do(ctx, http.MethodGet, "/todos", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Todo{}
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (Todo, error) {
	var out Todo
	err := c.do(ctx, http.MethodGet, todoPath(id), nil, &out)
	return out, err
}

// Create posts a new todo. Only Description (and optionally ID, IsCompleted)
// are sent; the server assigns the rest.
func (c *Client) Create(ctx context.Context, description string) (Todo, error) {
	var out Todo
	body := map[string]any{"description": description}
	err := c.do(ctx, http.MethodPost, "/todos", body, &out)
	return out, err
}

// Update replaces the todo stored under t.ID.
func (c *Client) Update(ctx context.Context, t Todo) error {
	body := map[string]any{
		"id":          t.ID,
		"description": t.Description,
		"isCompleted": t.IsCompleted,
	}
	if !t.CreatedAt.IsZero() {
		body["createdAt"] = t.CreatedAt
	}
	return c.do(ctx, http.MethodPut, todoPath(t.ID), body, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, todoPath(id), nil, nil)
}

func (c *Client) Toggle(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, todoPath(id)+"/toggle", nil, nil)
}

func todoPath(id string) string {
	return "/todos/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&eb) == nil {
			apiErr.Message = eb.Error
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
