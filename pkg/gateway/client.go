package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by NewClient when the corresponding Config field is zero.
const (
	// DefaultTimeout bounds non-streaming calls end to end.
	DefaultTimeout = 2 * time.Minute

	// DefaultMaxIdleConns is the connection pool size across all hosts.
	DefaultMaxIdleConns = 100

	// DefaultMaxIdleConnsPerHost is the per-host idle connection limit.
	DefaultMaxIdleConnsPerHost = 10

	// DefaultIdleConnTimeout is how long idle connections are kept.
	DefaultIdleConnTimeout = 90 * time.Second
)

// streamBufferSize is the event channel capacity of a stream. A slow
// consumer stalls the SSE read loop once the buffer fills.
const streamBufferSize = 100

// retryBaseWait is the first backoff step. Package tests shorten it.
var retryBaseWait = time.Second

// Config configures a Client. BaseURL is required; every other field has a
// working default.
type Config struct {
	// BaseURL is the gateway root, for example "http://localhost:3000".
	BaseURL string

	// APIKey, when set, is sent as a bearer token. The gateway itself
	// does not authenticate; deployments that put an authenticating
	// proxy in front of it need this.
	APIKey string

	// Timeout bounds each non-streaming call end to end. Streaming calls
	// are bounded by their context instead.
	Timeout time.Duration

	// MaxRetries is how many additional attempts non-streaming calls get
	// after a transport failure, a 429, or a 5xx. Streams are never
	// retried. Zero disables retries.
	MaxRetries int

	// MaxIdleConns, MaxIdleConnsPerHost, and IdleConnTimeout tune the
	// default transport's connection pool.
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	// Transport, when set, replaces the default pooled transport. Use it
	// to chain tracing or test round-trippers.
	Transport http.RoundTripper

	// HTTPClient, when set, is used verbatim for non-streaming calls; a
	// copy with the timeout cleared serves streams. Overrides Transport
	// and the pool settings.
	HTTPClient *http.Client

	// Logger receives debug-level client events. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Client is a TensorZero gateway client. It is safe for concurrent use.
type Client struct {
	baseURL      string
	apiKey       string
	maxRetries   int
	httpClient   *http.Client
	streamClient *http.Client
	logger       *slog.Logger
}

// NewClient creates a gateway client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, NewValidationError("base_url", "base URL is required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, NewValidationError("base_url", fmt.Sprintf("invalid base URL: %v", err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, NewValidationError("base_url",
			fmt.Sprintf("base URL scheme must be http or https, got %q", parsed.Scheme))
	}
	if cfg.MaxRetries < 0 {
		return nil, NewValidationError("max_retries", "max retries must not be negative")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = DefaultMaxIdleConns
	}
	maxIdlePerHost := cfg.MaxIdleConnsPerHost
	if maxIdlePerHost == 0 {
		maxIdlePerHost = DefaultMaxIdleConnsPerHost
	}
	idleTimeout := cfg.IdleConnTimeout
	if idleTimeout == 0 {
		idleTimeout = DefaultIdleConnTimeout
	}

	var httpClient, streamClient *http.Client
	if cfg.HTTPClient != nil {
		httpClient = cfg.HTTPClient
		sc := *cfg.HTTPClient
		sc.Timeout = 0
		streamClient = &sc
	} else {
		transport := cfg.Transport
		if transport == nil {
			transport = &http.Transport{
				MaxIdleConns:        maxIdle,
				MaxIdleConnsPerHost: maxIdlePerHost,
				IdleConnTimeout:     idleTimeout,
				ForceAttemptHTTP2:   true,
			}
		}
		httpClient = &http.Client{Timeout: timeout, Transport: transport}
		streamClient = &http.Client{Transport: transport}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		maxRetries:   cfg.MaxRetries,
		httpClient:   httpClient,
		streamClient: streamClient,
		logger:       logger.With("component", "gateway"),
	}, nil
}

// Inference runs one blocking inference and decodes the response by the
// function type. A request with Stream set is rejected; use InferenceStream.
func (c *Client) Inference(ctx context.Context, req *InferenceRequest) (InferenceResponse, error) {
	if req == nil {
		return nil, NewValidationError("request", "request is required")
	}
	if req.Stream {
		return nil, NewValidationError("stream", "use InferenceStream for streaming inference")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, "/inference", req)
	if err != nil {
		return nil, err
	}
	return decodeInferenceResponse(body)
}

// StreamEvent is one delivery on a stream channel: a chunk, or the terminal
// error after which the channel closes.
type StreamEvent struct {
	Chunk InferenceChunk
	Err   error
}

// InferenceStream starts a streaming inference. The returned channel closes
// after the gateway's [DONE] sentinel, after an event with Err set, or when
// ctx ends. The error return covers call setup only: a non-2xx reply
// surfaces there as *Error before any event is delivered.
//
// The request is sent with stream forced on; the caller's Stream field is
// ignored. Streams are never retried.
func (c *Client) InferenceStream(ctx context.Context, req *InferenceRequest) (<-chan StreamEvent, error) {
	if req == nil {
		return nil, NewValidationError("request", "request is required")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	streamReq := *req
	streamReq.Stream = true
	payload, err := json.Marshal(&streamReq)
	if err != nil {
		return nil, NewInternalError("encoding request body", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/inference", payload)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, NewInternalError("sending request to gateway", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, c.responseError(resp)
	}

	events := make(chan StreamEvent, streamBufferSize)
	go c.readStream(ctx, resp.Body, events)
	return events, nil
}

// readStream drains the SSE body into the event channel until the stream
// ends, an error occurs, or the context is canceled.
func (c *Client) readStream(ctx context.Context, body io.ReadCloser, events chan<- StreamEvent) {
	defer close(events)
	defer body.Close()

	reader := newSSEReader(body)
	for {
		payload, err := reader.next(ctx)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.deliver(ctx, events, StreamEvent{Err: NewInternalError("reading event stream", err)})
			return
		}

		chunk, err := decodeInferenceChunk(payload)
		if err != nil {
			c.deliver(ctx, events, StreamEvent{Err: err})
			return
		}
		if !c.deliver(ctx, events, StreamEvent{Chunk: chunk}) {
			return
		}
	}
}

// deliver sends one event unless the context ends first.
func (c *Client) deliver(ctx context.Context, events chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// do sends one JSON request and returns the raw response body, retrying
// transport failures, 429s, and 5xx replies up to maxRetries times with
// exponential backoff. A Retry-After header overrides the computed wait.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, NewInternalError("encoding request body", err)
		}
		payload = b
	}

	for attempt := 0; ; attempt++ {
		respBody, err := c.send(ctx, method, path, payload)
		if err == nil {
			return respBody, nil
		}
		if attempt >= c.maxRetries || !c.shouldRetry(ctx, err) {
			return nil, err
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * retryBaseWait
		var gerr *Error
		if errors.As(err, &gerr) && gerr.RetryAfter > 0 {
			wait = gerr.RetryAfter
		}
		c.logger.DebugContext(ctx, "retrying gateway request",
			"method", method,
			"path", path,
			"attempt", attempt+1,
			"wait", wait,
			"error", err)

		select {
		case <-ctx.Done():
			return nil, NewInternalError("waiting to retry", ctx.Err())
		case <-time.After(wait):
		}
	}
}

// send performs a single HTTP exchange.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewInternalError("sending request to gateway", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewInternalError("reading gateway response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gerr := NewError(resp.StatusCode, string(respBody))
		if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
			gerr.RetryAfter = d
		}
		return nil, gerr
	}
	return respBody, nil
}

// responseError turns a non-2xx response into a *Error, consuming the body.
func (c *Client) responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	gerr := NewError(resp.StatusCode, string(body))
	if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
		gerr.RetryAfter = d
	}
	return gerr
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload []byte) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, NewInternalError("building gateway request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// shouldRetry reports whether err is worth another attempt. Transport and
// read failures are; gateway verdicts are only for 429 and 5xx. A finished
// context never is.
func (c *Client) shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.StatusCode == http.StatusTooManyRequests || gerr.StatusCode >= 500
	}
	var ierr *InternalError
	return errors.As(err, &ierr)
}

// parseRetryAfter interprets a Retry-After header, which carries either
// delay seconds or an HTTP date.
func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d, true
		}
	}
	return 0, false
}
