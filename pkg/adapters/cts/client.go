package cts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/concierge/pkg/domain"
)

// DefaultCityURL is the town directory used by the hotel tools.
const DefaultCityURL = "https://apibooking.ctsturismo.com/api/city/dtt/?q="

// DefaultTimeout bounds every API round trip.
const DefaultTimeout = 30 * time.Second

const maxResponseBytes = 8 << 20

// maxErrorBody bounds the response text kept in a StatusError.
const maxErrorBody = 512

// Currency codes understood by the API.
const (
	CurrencyCLP = 1
	CurrencyUSD = 2
)

// ErrMissingCredential is returned when a tool runs without a user token.
var ErrMissingCredential = errors.New("missing API credential")

// StatusError reports a non-2xx answer from the API.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Client talks to both API generations.
type Client struct {
	apiV1     string
	apiV2     string
	cityURL   string
	frontHost string
	http      *http.Client
	logger    *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithCityURL overrides DefaultCityURL.
func WithCityURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.cityURL = url
		}
	}
}

// WithFrontHost sets the public site used to build detail and booking links.
func WithFrontHost(host string) Option {
	return func(c *Client) {
		c.frontHost = strings.TrimRight(host, "/")
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the given API base URLs.
func NewClient(apiV1, apiV2 string, opts ...Option) *Client {
	c := &Client{
		apiV1:   strings.TrimRight(apiV1, "/"),
		apiV2:   strings.TrimRight(apiV2, "/"),
		cityURL: DefaultCityURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrencyID maps the session currency to the API code. Anything but CLP is priced in USD.
func CurrencyID(l domain.Locale) int {
	if l.Currency == "" || strings.EqualFold(l.Currency, "CLP") {
		return CurrencyCLP
	}
	return CurrencyUSD
}

func currencyName(id int) string {
	if id == CurrencyCLP {
		return "CLP"
	}
	return "USD"
}

func (c *Client) link(path string) string {
	return c.frontHost + path
}

func (c *Client) get(ctx context.Context, rc domain.RequestContext, url string, out any) error {
	return c.do(ctx, rc, http.MethodGet, url, nil, out)
}

func (c *Client) post(ctx context.Context, rc domain.RequestContext, url string, body, out any) error {
	return c.do(ctx, rc, http.MethodPost, url, body, out)
}

func (c *Client) do(ctx context.Context, rc domain.RequestContext, method, url string, body, out any) error {
	if rc.Credential == "" {
		return ErrMissingCredential
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+rc.Credential)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("cts request", "method", method, "url", url, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: method, URL: url, Code: resp.StatusCode, Body: truncate(data, maxErrorBody)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// truncate cuts b to at most n bytes without splitting a UTF-8 sequence.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return string(b[:n])
}
