// Package plex talks to a Plex Media Server and to plex.tv on behalf of one
// account.
package plex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ademuri/plex-recommend/internal/logging"
)

const (
	Product        = "plex-recommend"
	DefaultTimeout = 30 * time.Second
)

// ClientID identifies this process to Plex. It is shared by every client so
// that the server sees one device.
var ClientID = uuid.NewString()

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Status)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code/100 == 5
}

type Options struct {
	HTTPClient *http.Client

	// Limiter paces requests. Clients created from the same Options share it.
	Limiter *rate.Limiter

	// Attempts is the number of tries for idempotent requests.
	Attempts uint

	// RetryDelay is the base delay between attempts.
	RetryDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Limiter:    rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		Attempts:   3,
		RetryDelay: 500 * time.Millisecond,
	}
}

// Client is one account's connection to a Plex Media Server. It implements
// catalog.Library.
type Client struct {
	baseURL string
	token   string
	opts    Options

	machineID string
}

func New(baseURL string, token string, opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		opts:    opts,
	}
}

// WithToken returns a client for the same server acting as another account.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a request and decodes the JSON response into result, if given.
// GET and DELETE requests are retried on transport errors, 429 and 5xx.
func (c *Client) do(ctx context.Context, method string, path string, query url.Values, result interface{}) error {
	idempotent := method == http.MethodGet || method == http.MethodDelete
	attempts := c.opts.Attempts
	if !idempotent {
		attempts = 1
	}

	return retry.Do(
		func() error {
			return c.once(ctx, method, path, query, result)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.opts.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if ctx.Err() != nil {
				return false
			}
			var serr *StatusError
			if errors.As(err, &serr) {
				return serr.Temporary()
			}
			var derr *decodeError
			return !errors.As(err, &derr)
		}),
		retry.OnRetry(func(n uint, err error) {
			logging.Warn().Err(err).Uint("attempt", n+1).Str("path", path).Msg("plex request failed, retrying")
		}),
	)
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decoding response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func (c *Client) once(ctx context.Context, method string, path string, query url.Values, result interface{}) error {
	if err := c.opts.Limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	setHeaders(req, c.token)

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Status: resp.Status}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &decodeError{err}
	}
	return nil
}

func setHeaders(req *http.Request, token string) {
	req.Header.Set("X-Plex-Token", token)
	req.Header.Set("X-Plex-Client-Identifier", ClientID)
	req.Header.Set("X-Plex-Product", Product)
	req.Header.Set("Accept", "application/json")
}
