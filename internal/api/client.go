// Package api talks to the warehouse REST backend. Every call carries the
// session's bearer token, waits on a shared rate limiter and maps failures
// into NetworkError, AuthError, FormatError or ActionError.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/abelbrown/stockroom/internal/journal"
	"github.com/abelbrown/stockroom/internal/logging"
)

// DefaultBackoff is the pause before the single GET retry.
const DefaultBackoff = 250 * time.Millisecond

// TokenSource supplies the bearer token. session.Session satisfies it.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource for a fixed token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Options configures a Client.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64 // <= 0 disables limiting
	Retry         bool    // retry idempotent GETs once on transient failure
	Backoff       time.Duration
	Journal       journal.Recorder // optional; receives one event per request
}

// Client is safe for concurrent use.
type Client struct {
	http    *resty.Client
	tokens  TokenSource
	limiter *rate.Limiter
	retry   bool
	backoff time.Duration
	journal journal.Recorder
}

// New creates a client against opts.BaseURL.
func New(opts Options, tokens TokenSource) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if tokens == nil {
		tokens = StaticToken("")
	}

	hc := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    hc,
		tokens:  tokens,
		limiter: rate.NewLimiter(limit, 1),
		retry:   opts.Retry,
		backoff: opts.Backoff,
		journal: opts.Journal,
	}
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// request builds an authenticated request. Fails with AuthError when there is
// no token.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	token := c.tokens.Token()
	if token == "" {
		return nil, &AuthError{Err: ErrNoToken}
	}
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("X-Request-ID", uuid.NewString()), nil
}

// do sends one request and classifies the outcome. The body is returned only
// for 2xx responses.
func (c *Client) do(ctx context.Context, req *resty.Request, method, path string) ([]byte, error) {
	op := method + " " + path
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	start := time.Now()
	rid := req.Header.Get("X-Request-ID")
	resp, err := req.Execute(method, path)
	if err != nil {
		logging.Warn("api request failed", "op", op, "error", err)
		journal.Emit(c.journal, journal.Event{Kind: journal.KindRequestError, RequestID: rid,
			Method: method, Path: path, Dur: time.Since(start), Err: err.Error()})
		return nil, &NetworkError{Op: op, Err: err}
	}
	logging.Debug("api request", "op", op, "status", resp.StatusCode(),
		"duration", time.Since(start), "request_id", rid)

	ev := journal.Event{Kind: journal.KindRequest, RequestID: rid, Method: method, Path: path,
		Status: resp.StatusCode(), Dur: time.Since(start)}
	if !resp.IsSuccess() {
		err := statusError(op, resp.StatusCode())
		ev.Kind, ev.Err = journal.KindRequestError, err.Error()
		journal.Emit(c.journal, ev)
		return resp.Body(), err
	}
	journal.Emit(c.journal, ev)
	return resp.Body(), nil
}

// get performs an idempotent GET, retrying once on a transient failure when
// retries are enabled.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	var maxRetries uint64
	if c.retry {
		maxRetries = 1
	}
	backoff := retry.WithMaxRetries(maxRetries, retry.NewConstant(c.backoff))

	var body []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := c.request(ctx)
		if err != nil {
			return err
		}
		b, err := c.do(ctx, req, http.MethodGet, path)
		if err != nil {
			var netErr *NetworkError
			if errors.As(err, &netErr) && netErr.Transient() && ctx.Err() == nil {
				return retry.RetryableError(err)
			}
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// resourcePath joins an endpoint like "/inventory/" with extra segments and
// keeps the trailing slash the backend expects.
func resourcePath(endpoint string, parts ...string) string {
	segs := []string{strings.Trim(endpoint, "/")}
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return "/" + strings.Join(segs, "/") + "/"
}
