package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jpillora/backoff"
)

const jsonMimeType = "application/json"

const (
	// DefaultTimeout bounds a single request including body read.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the tool to remote servers.
	DefaultUserAgent = "toolbelt/1.0"

	backOffMinDelay    = 100 * time.Millisecond
	backOffMaxDelay    = 5 * time.Second
	backOffDelayFactor = 2.0
)

// Record is one request remembered in the client history.
type Record struct {
	// Method is the HTTP method used.
	Method string `json:"method"`
	// URL is the full request URL.
	URL string `json:"url"`
	// Status is the response status code.
	Status int `json:"status"`
	// Elapsed is the request duration.
	Elapsed time.Duration `json:"elapsed"`
}

// Response is the outcome of a single request: status code, headers, body
// bytes and elapsed time.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
	Elapsed time.Duration
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(r.Headers.Get("Content-Type"))
	if err != nil {
		return false
	}

	return mediaType == jsonMimeType
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding JSON response: %w", err)
	}

	return nil
}

// Options configures a Client.
type Options struct {
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Retries is the number of additional attempts on transient failures.
	Retries int
}

// Client is a thin HTTP capability with request history. It retries transient
// failures (transport errors and 5xx responses) with exponential backoff.
type Client struct {
	http      *http.Client
	userAgent string
	retries   int

	mu      sync.Mutex
	history []Record
}

// New creates a Client from opts.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	return &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		retries:   opts.Retries,
	}
}

// Do performs one HTTP request, retrying transient failures. The final
// outcome is appended to the client history.
func (c *Client) Do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte) (*Response, error) {
	delay := &backoff.Backoff{
		Min:    backOffMinDelay,
		Max:    backOffMaxDelay,
		Factor: backOffDelayFactor,
		Jitter: true,
	}

	start := time.Now()

	var (
		resp    *Response
		lastErr error
	)

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay.Duration()):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, lastErr = c.do(ctx, method, rawURL, headers, body)
		if lastErr != nil {
			continue
		}

		if resp.Status < http.StatusInternalServerError {
			break
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, lastErr)
	}

	resp.Elapsed = time.Since(start)

	c.record(Record{Method: method, URL: rawURL, Status: resp.Status, Elapsed: resp.Elapsed})

	return resp, nil
}

// do performs a single attempt.
func (c *Client) do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		Status:  res.StatusCode,
		Headers: res.Header,
		Body:    data,
	}, nil
}

// Get performs a GET request without extra headers or body.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, rawURL, nil, nil)
}

// record appends to the request history.
func (c *Client) record(rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, rec)
}

// History returns a copy of the request history in request order.
func (c *Client) History() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Record, len(c.history))
	copy(out, c.history)

	return out
}

// Check is one API expectation: method and path against a base URL, with the
// status code the endpoint should answer.
type Check struct {
	// Method is the HTTP method, default GET.
	Method string
	// Path is resolved against the base URL.
	Path string
	// WantStatus is the expected status code, default 200.
	WantStatus int
}

// CheckResult is the outcome of one Check.
type CheckResult struct {
	Check
	// Status is the observed status code, zero when Err is set.
	Status int
	// Passed reports whether the observed status matched.
	Passed bool
	// Err holds the request error, if any.
	Err error
}

// RunChecks resolves each check against baseURL and performs it, returning
// one result per check in order. Request failures mark the check failed
// without aborting the remaining checks.
func (c *Client) RunChecks(ctx context.Context, baseURL string, checks []Check) ([]CheckResult, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", baseURL, err)
	}

	results := make([]CheckResult, 0, len(checks))

	for _, check := range checks {
		if check.Method == "" {
			check.Method = http.MethodGet
		}

		check.Method = strings.ToUpper(check.Method)

		if check.WantStatus == 0 {
			check.WantStatus = http.StatusOK
		}

		ref, err := url.Parse(check.Path)
		if err != nil {
			results = append(results, CheckResult{Check: check, Err: fmt.Errorf("parsing path %q: %w", check.Path, err)})

			continue
		}

		target := base.ResolveReference(ref).String()

		resp, err := c.Do(ctx, check.Method, target, nil, nil)
		if err != nil {
			results = append(results, CheckResult{Check: check, Err: err})

			continue
		}

		results = append(results, CheckResult{
			Check:  check,
			Status: resp.Status,
			Passed: resp.Status == check.WantStatus,
		})
	}

	return results, nil
}
