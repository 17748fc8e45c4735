// Package gviz reads spreadsheet tabs through Google's public visualization
// (gviz) endpoint. It needs no credentials; the spreadsheet must be shared
// as "anyone with the link can view".
package gviz

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"donasi/internal/core"
	"donasi/internal/log"
	ports "donasi/internal/sheets"
)

// DefaultBaseURL is the spreadsheet root the endpoint hangs off.
const DefaultBaseURL = "https://docs.google.com/spreadsheets/d"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 16 << 20

type Client struct {
	httpClient    *http.Client
	baseURL       string
	spreadsheetID string
	parser        Parser
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.TableReader = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithParser sets the vocabulary and header detector used for responses.
func WithParser(p Parser) Option {
	return func(c *Client) { c.parser = p }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentSheets) }
}

// New creates a client for one spreadsheet.
func New(spreadsheetID string, opts ...Option) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		spreadsheetID: spreadsheetID,
		parser:        DefaultParser(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(60 * time.Second)
	}
	if c.logger == nil {
		c.logger = log.FromContext(context.Background()).WithComponent(log.ComponentSheets)
	}
	return c
}

// URL returns the endpoint address for a sheet.
func (c *Client) URL(sheet string) string {
	// encodeURIComponent style: spaces as %20 rather than '+'.
	name := strings.ReplaceAll(url.QueryEscape(sheet), "+", "%20")
	return fmt.Sprintf("%s/%s/gviz/tq?tqx=out:json&sheet=%s", c.baseURL, url.PathEscape(c.spreadsheetID), name)
}

// ReadTable fetches one sheet and parses it. A non-2xx status yields a
// *ports.FetchError, a malformed body a *ports.ParseError with an empty table.
func (c *Client) ReadTable(ctx context.Context, sheet string) (core.Table, error) {
	start := time.Now()
	empty := core.Table{Sheet: sheet}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(sheet), nil)
	if err != nil {
		return empty, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("fetch sheet %q: %w", sheet, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		c.logger.WarnContext(ctx, "Sheet fetch failed",
			log.FieldSheet, sheet,
			log.FieldStatusCode, resp.StatusCode,
			log.FieldErrorType, log.ErrorTypeUpstream)
		return empty, &ports.FetchError{Sheet: sheet, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return empty, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	t, err := c.parser.Parse(sheet, body)
	if err != nil {
		c.logger.WarnContext(ctx, "Sheet response not understood",
			log.FieldSheet, sheet,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeFormat)
		return empty, err
	}

	log.NewStructuredLogger(c.logger).LogSheetRead(ctx, sheet, len(t.Rows), len(t.Headers), time.Since(start).Milliseconds())
	return t, nil
}

// NewHTTPClient creates an HTTP client with connection pooling, proper
// timeouts and keep-alive settings for talking to Google.
func NewHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
