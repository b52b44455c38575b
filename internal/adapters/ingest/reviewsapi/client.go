// Package reviewsapi is a bearer-token client for the remote reviews endpoint
package reviewsapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reviewpipe/internal/core/records"
	perr "reviewpipe/internal/platform/errors"
	"reviewpipe/internal/platform/logger"
)

const (
	defaultPath      = "/reviews"
	defaultTimeout   = 30 * time.Second
	defaultUA        = "reviewpipe-extract"
	defaultRetryBase = 500 * time.Millisecond
	maxBodyExcerpt   = 2048
)

// Options configures the Client
type Options struct {
	BaseURL   string
	Path      string
	Token     string
	UserAgent string
	Timeout   time.Duration

	// Retries are opt in; zero means a single attempt
	MaxRetries int
	RetryBase  time.Duration

	// Log overrides the component logger
	Log *logger.Logger
}

// StatusError is returned for any response other than 200
type StatusError struct {
	Status int
	Body   string
}

// Error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("reviews api: unexpected status %d", e.Status)
}

// HTTPStatus interface
func (e *StatusError) HTTPStatus() int { return e.Status }

// Client fetches review rows over HTTP
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Client with defaults filled in
func New(o Options) *Client {
	if o.Path == "" {
		o.Path = defaultPath
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	log := o.Log
	if log == nil {
		log = logger.Named("reviewsapi")
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *log,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Endpoint is the fully-qualified URL hit by Fetch
func (c *Client) Endpoint() string { return c.opts.BaseURL + c.opts.Path }

// Fetch GETs the endpoint and decodes the JSON array body into a record set
func (c *Client) Fetch(ctx context.Context) (records.Set, error) {
	body, err := c.Get(ctx)
	if err != nil {
		return records.Set{}, err
	}
	set, err := Decode(body)
	if err != nil {
		return records.Set{}, perr.Wrap(err, perr.ErrorCodeJSON, "reviews api: decode body")
	}
	return set, nil
}

// Get issues the authenticated GET and returns the full body of a 200 response.
// Transport failures map to ErrorCodeUnavailable, non-200 responses to ErrorCodeUpstream wrapping *StatusError
func (c *Client) Get(ctx context.Context) ([]byte, error) {
	if c.opts.BaseURL == "" {
		return nil, perr.InvalidArgf("reviews api: base url is not configured")
	}
	url := c.Endpoint()
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "reviews api: canceled")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "reviews api: new request")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if c.opts.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.Token)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "reviews api: request failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Msg("reviews api transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("reviews api response")

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "reviews api: read body")
			}
			return body, nil
		}

		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))
		_ = resp.Body.Close()
		serr := &StatusError{Status: resp.StatusCode, Body: string(excerpt)}

		if retryableStatus(resp.StatusCode) && c.shouldRetry(attempts) {
			wait := retryAfter(resp.Header)
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			c.log.Warn().Int("status", resp.StatusCode).Dur("retry_in", wait).Int("attempt", attempts).Msg("reviews api transient status retrying")
			c.sleep(wait)
			attempts++
			continue
		}

		c.log.Error().Int("status", serr.Status).Str("body", serr.Body).Msg("reviews api non-200 response")
		return nil, perr.Wrap(serr, perr.ErrorCodeUpstream, "reviews api")
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	// simple exponential with cap
	ms := int64(c.opts.RetryBase/time.Millisecond) << uint(attempt)
	ceil := int64(30 * time.Second / time.Millisecond)
	if ms > ceil {
		ms = ceil
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool { return attempt < c.opts.MaxRetries }

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryAfter reads a delta-seconds Retry-After header; dates are ignored
func retryAfter(h http.Header) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
