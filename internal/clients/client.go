// Package clients implements the HTTP clients for the threat intelligence,
// WHOIS and geolocation providers queried during a lookup.
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// APIError is returned when a provider answers with a non-2xx status.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Option configures a provider client.
type Option func(*base)

// WithBaseURL overrides the provider endpoint. Used to point clients at test servers.
func WithBaseURL(u string) Option {
	return func(b *base) {
		if u != "" {
			b.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *base) {
		if c != nil {
			b.httpClient = c
		}
	}
}

// WithRateLimit caps outgoing requests to perSecond with a burst of one.
func WithRateLimit(perSecond float64) Option {
	return func(b *base) {
		if perSecond > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// base holds the plumbing shared by every provider client.
type base struct {
	name       string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func newBase(name, defaultURL string, opts []Option) base {
	b := base{
		name:       name,
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Name returns the provider's display name.
func (b *base) Name() string { return b.name }

func (b *base) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	reqURL := b.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", b.name, err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a successful JSON response into out.
func (b *base) do(req *http.Request, out any) error {
	if b.limiter != nil {
		if err := b.limiter.Wait(req.Context()); err != nil {
			return err
		}
	}

	start := time.Now()
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("querying %s: %w", b.name, redactQuery(err))
	}
	defer resp.Body.Close()

	b.logger.Debug("provider request",
		"provider", b.name,
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Provider:   b.name,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", b.name, err)
	}
	return nil
}

// redactQuery drops the query string from the URL carried by a transport
// error. Some providers authenticate with a query parameter.
func redactQuery(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	if u, perr := url.Parse(uerr.URL); perr == nil && u.RawQuery != "" {
		u.RawQuery = ""
		uerr.URL = u.String()
	}
	return err
}

// errorMessage extracts a human readable message from common error body shapes.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Errors  []struct {
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return strings.TrimSpace(string(raw))
	}

	switch {
	case len(body.Errors) > 0 && body.Errors[0].Detail != "":
		return body.Errors[0].Detail
	case body.Message != "":
		return body.Message
	case len(body.Error) > 0:
		var s string
		if json.Unmarshal(body.Error, &s) == nil {
			return s
		}
		var obj struct {
			Message string `json:"message"`
			ErrMsg  string `json:"error_message"`
		}
		if json.Unmarshal(body.Error, &obj) == nil {
			if obj.Message != "" {
				return obj.Message
			}
			return obj.ErrMsg
		}
	}
	return ""
}
