// Package airtable provides a minimal Airtable REST client.
//
// It covers what the relay needs: a partial update of one record and a
// cheap read used by the health check. Calls carry the caller's context
// and go through New Relic's round tripper, so they show up as external
// segments when a transaction is active.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/deppfellow/tat-relay/internal/config"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrMalformedResponse is returned when Airtable answers 2xx with a body
// that is not JSON.
var ErrMalformedResponse = errors.New("airtable: malformed response body")

// APIError is a non-2xx answer from Airtable. Body is the raw response text.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable: status %d: %s", e.StatusCode, e.Body)
}

// RequestError is a failure to complete the HTTP exchange (DNS, dial,
// TLS, reset, cancelled context...).
type RequestError struct {
	Method string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("airtable: %s request failed: %v", e.Method, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Fields is the "fields" object of an Airtable record.
type Fields map[string]any

// Client wraps an *http.Client bound to one base and table.
//
// It is safe for concurrent use; nothing on it changes after New.
type Client struct {
	httpClient *http.Client
	baseURL    string
	baseID     string
	tableID    string
	apiKey     string
	logger     *zerolog.Logger
}

// New creates a Client from the Airtable config.
//
// No timeout is set on the HTTP client: the request context and the
// server's write timeout bound each call.
func New(cfg config.AirtableConfig, logger *zerolog.Logger) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: newrelic.NewRoundTripper(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		baseID:  cfg.BaseID,
		tableID: cfg.TableID,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}

	if c.logger == nil {
		nop := zerolog.Nop()
		c.logger = &nop
	}

	return c
}

// RecordURL returns the URL of one record: {baseURL}/{baseID}/{tableID}/{recordID}.
func (c *Client) RecordURL(recordID string) string {
	return c.tableURL() + "/" + url.PathEscape(recordID)
}

func (c *Client) tableURL() string {
	return c.baseURL + "/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(c.tableID)
}

// UpdateRecord PATCHes the given fields onto one record and returns the
// updated record as raw JSON.
//
// Only the listed fields change; Airtable keeps the others.
func (c *Client) UpdateRecord(ctx context.Context, recordID string, fields Fields) (json.RawMessage, error) {
	payload, err := json.Marshal(struct {
		Fields Fields `json:"fields"`
	}{Fields: fields})
	if err != nil {
		return nil, errors.Wrap(err, "airtable: encode update body")
	}

	return c.do(ctx, http.MethodPatch, c.RecordURL(recordID), bytes.NewReader(payload))
}

// Ping lists at most one record of the table. It checks the credential,
// the base and the table in one call.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, c.tableURL()+"?maxRecords=1", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrapf(err, "airtable: build %s request", method)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := c.loggerFor(ctx)
	logger.Debug().
		Str("method", method).
		Str("url", target).
		Msg("calling airtable")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Method: method, Err: err}
	}

	logger.Debug().
		Str("method", method).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Msg("airtable responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if !json.Valid(raw) {
		return nil, ErrMalformedResponse
	}

	return json.RawMessage(raw), nil
}

// loggerFor prefers the request-scoped logger stored in ctx, which carries
// request_id and trace fields, over the client's own.
func (c *Client) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return c.logger
}
