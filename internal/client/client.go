// Package client talks to the apiary GraphQL endpoint: it executes operations,
// normalises the response envelope and maps reported errors back to apperr kinds.
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

	"apiary-api-server/internal/apperr"

	"github.com/rs/zerolog"
)

const maxErrorBody = 4 << 10

// TokenSource yields the bearer token for a call. An empty token means
// "call anonymously" and is not an error.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token; the zero value is anonymous.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

type Client struct {
	endpoint string
	http     *http.Client
	tokens   TokenSource
	log      zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client for the GraphQL endpoint, e.g. http://localhost:8080/graphql.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		tokens:   StaticToken(""),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

type payload struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// envelope accepts both {data, errors} and {kind: "single", singleResult: {data, errors}}.
type envelope struct {
	payload
	Kind         string   `json:"kind"`
	SingleResult *payload `json:"singleResult"`
}

func (e *envelope) normalise() payload {
	if e.SingleResult != nil {
		return *e.SingleResult
	}
	return e.payload
}

// Execute runs one operation and decodes its data object into out (which may be nil).
func (c *Client) Execute(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("obtaining token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Status: resp.StatusCode, Err: err}
	}
	c.log.Debug().Int("status", resp.StatusCode).Dur("latency", time.Since(start)).Msg("graphql call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Status: resp.StatusCode, Body: truncate(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &TransportError{Status: resp.StatusCode, Body: truncate(raw), Err: fmt.Errorf("decoding response: %w", err)}
	}
	p := env.normalise()
	if len(p.Errors) > 0 {
		return newServerError(p.Errors)
	}
	if out == nil || len(p.Data) == 0 || string(p.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(p.Data, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}
	return nil
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

// TransportError is a failed HTTP exchange: a network error or a non-2xx status.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("graphql transport: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("graphql transport: status %d: %v", e.Status, e.Err)
	default:
		return fmt.Sprintf("graphql transport: status %d: %s", e.Status, e.Body)
	}
}

// Unwrap exposes an apperr kind so callers can use apperr.IsUnavailable and friends.
func (e *TransportError) Unwrap() []error {
	errs := []error{&apperr.Error{Kind: e.kind(), Message: "transport failure"}}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *TransportError) kind() apperr.Kind {
	switch {
	case e.Status == 0, e.Status == http.StatusBadGateway, e.Status == http.StatusServiceUnavailable, e.Status == http.StatusGatewayTimeout:
		return apperr.KindUnavailable
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return apperr.KindUnauthorized
	case e.Status == http.StatusNotFound:
		return apperr.KindNotFound
	case e.Status == http.StatusBadRequest:
		return apperr.KindInvalidInput
	default:
		return apperr.KindInternal
	}
}

// ServerError is a GraphQL response carrying an errors list.
type ServerError struct {
	Messages []string
	// First is the first reported error, with its extensions mapped to apperr.
	First *apperr.Error
}

func newServerError(errs []gqlError) *ServerError {
	se := &ServerError{Messages: make([]string, 0, len(errs))}
	for _, e := range errs {
		se.Messages = append(se.Messages, e.Message)
	}
	first := errs[0]
	ae := &apperr.Error{Kind: apperr.KindInternal, Message: first.Message}
	if code, ok := first.Extensions["code"].(string); ok {
		ae.Kind = apperr.KindFromCode(code)
	}
	ae.Entity, _ = first.Extensions["entity"].(string)
	ae.ID, _ = first.Extensions["id"].(string)
	ae.Field, _ = first.Extensions["field"].(string)
	se.First = ae
	return se
}

func (e *ServerError) Error() string { return strings.Join(e.Messages, "; ") }

func (e *ServerError) Unwrap() error { return e.First }
