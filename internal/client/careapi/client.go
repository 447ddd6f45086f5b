// Package careapi is the client side of the CareConnect REST API.
package careapi

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

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/eldercare/careconnect/internal/core/domain"
)

const maxBodyBytes = 1 << 20

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
	log     zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each call. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Transport: c.http.Transport, Timeout: d}
		}
	}
}

// WithTokenSource supplies the bearer token sent on authenticated routes.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		token:   func() string { return "" },
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignupRequest is the registration payload.
type SignupRequest struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	DateOfBirth string      `json:"dateOfBirth"`
	Role        domain.Role `json:"role"`
}

// LoginResult is the identity and token returned by /login.
type LoginResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// NewRequest is the body of POST /service-request.
type NewRequest struct {
	UserID       string             `json:"userId"`
	UserName     string             `json:"userName"`
	UserEmail    string             `json:"userEmail"`
	ServiceType  domain.ServiceType `json:"serviceType"`
	Requirements string             `json:"requirements"`
	Cost         float64            `json:"cost"`
	Status       string             `json:"status"`
	CreatedAt    string             `json:"createdAt"`
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/signup", req, nil, &out); err != nil {
		var ce *ConflictError
		if errors.As(err, &ce) {
			ce.Hint = SignInHint
		}
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/login", body, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRequest submits a new service request. A non-empty idempotencyKey
// makes a resubmission return the original record.
func (c *Client) CreateRequest(ctx context.Context, req NewRequest, idempotencyKey string) (*domain.ServiceRequest, error) {
	var hdr http.Header
	if idempotencyKey != "" {
		hdr = http.Header{"Idempotency-Key": []string{idempotencyKey}}
	}
	var out domain.ServiceRequest
	if err := c.do(ctx, http.MethodPost, "/service-request", req, hdr, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPending(ctx context.Context) ([]domain.ServiceRequest, error) {
	var out struct {
		Requests []domain.ServiceRequest `json:"requests"`
	}
	if err := c.do(ctx, http.MethodGet, "/service-requests/pending", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

// Decide approves or rejects a pending request on behalf of caregiver.
func (c *Client) Decide(ctx context.Context, requestID string, decision domain.Decision, caregiver domain.Caregiver) (*domain.ServiceRequest, error) {
	path := fmt.Sprintf("/service-request/%s/%s", url.PathEscape(requestID), decision)
	var out struct {
		Request domain.ServiceRequest `json:"request"`
	}
	if err := c.do(ctx, http.MethodPatch, path, caregiver, nil, &out); err != nil {
		return nil, err
	}
	return &out.Request, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, hdr http.Header, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, v := range hdr {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("api call")

	if resp.StatusCode >= http.StatusBadRequest {
		detail := parseDetail(raw)
		if resp.StatusCode == http.StatusConflict {
			return &ConflictError{Detail: detail}
		}
		return &APIError{Status: resp.StatusCode, Detail: detail}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// parseDetail reads the "detail" field of an error body. The server sends
// either a string or a list of {field, msg} objects; a list is flattened to
// its messages joined with ", ".
func parseDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	d := gjson.GetBytes(body, "detail")
	switch {
	case d.Type == gjson.String:
		return d.String()
	case d.IsArray():
		var msgs []string
		for _, m := range d.Get("#.msg").Array() {
			if s := m.String(); s != "" {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, ", ")
	}
	return ""
}
