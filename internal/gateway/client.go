// Package gateway is the single choke point for calls to the REST backend. It
// attaches the bearer credential on the way out and classifies every response on
// the way in, invalidating the session on a 401.
package gateway

import (
	"bytes"
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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"foodreel/internal/platform/metrics"
	"foodreel/pkg/requestcontext"
)

const (
	// DefaultTimeout is the ceiling after which a call is abandoned and
	// classified as a network failure.
	DefaultTimeout = 15 * time.Second

	defaultMaxBody = 4 << 20
	tracerName     = "foodreel/internal/gateway"
)

// ErrResponseTooLarge is the cause of a network failure whose body overran the
// read limit.
var ErrResponseTooLarge = errors.New("response body too large")

// CredentialSource supplies the bearer credential for outbound calls.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
}

// SessionInvalidator clears the session after the backend rejects the credential.
type SessionInvalidator interface {
	Invalidate(ctx context.Context, reason string) error
}

// Client wraps http.Client with the credential and classification pipeline.
type Client struct {
	baseURL     string
	timeout     time.Duration
	http        *http.Client
	credentials CredentialSource
	invalidator SessionInvalidator
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	maxBody     int64
	subs        subscribers
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCredentials sets where the outbound phase reads the credential from.
func WithCredentials(src CredentialSource) Option {
	return func(c *Client) {
		c.credentials = src
	}
}

// WithInvalidator sets who clears the session on a 401.
func WithInvalidator(inv SessionInvalidator) Option {
	return func(c *Client) {
		c.invalidator = inv
	}
}

// WithLogger sets the logger; the default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records call outcomes and invalidations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracerProvider sets where call spans go; the default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithMaxBody caps how many response bytes a call reads; larger bodies fail.
func WithMaxBody(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// New builds a Client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		http:    &http.Client{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:  otel.Tracer(tracerName),
		maxBody: defaultMaxBody,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the normalized base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Subscribe registers fn for SessionInvalidated signals and returns a function
// that removes it.
func (c *Client) Subscribe(fn Subscriber) func() {
	return c.subs.add(fn)
}

// Get issues a GET to path.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Result, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Result, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Result, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete issues a DELETE to path.
func (c *Client) Delete(ctx context.Context, path string) (*Result, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

type call struct {
	method    string
	path      string
	requestID string
	start     time.Time
}

// Do sends req and settles it. Failed calls return an *Error after the
// failure's side effects (including session invalidation) have run. There is
// no retry.
func (c *Client) Do(ctx context.Context, req Request) (*Result, error) {
	cl := call{
		method:    req.Method,
		path:      req.Path,
		requestID: requestcontext.RequestID(ctx),
		start:     time.Now(),
	}
	if cl.method == "" {
		cl.method = http.MethodGet
	}
	if cl.requestID == "" {
		cl.requestID = uuid.NewString()
	}

	ctx, span := c.tracer.Start(ctx, "gateway "+cl.method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", cl.method),
			attribute.String("url.path", cl.path),
			attribute.String("request.id", cl.requestID),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := c.outbound(ctx, cl, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request setup failed")
		c.logger.ErrorContext(ctx, "backend request setup failed",
			"method", cl.method,
			"path", cl.path,
			"error", err,
			"request_id", cl.requestID,
		)
		return nil, fmt.Errorf("building %s %s: %w", cl.method, cl.path, err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.fail(ctx, span, cl, &Error{Outcome: OutcomeNetwork, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, c.fail(ctx, span, cl, &Error{Outcome: OutcomeNetwork, Status: resp.StatusCode, Err: err})
	}
	// An oversized error body is only cut short; the status still settles the
	// call, so a 401 keeps its side effects.
	if int64(len(body)) > c.maxBody {
		if Classify(resp.StatusCode) != OutcomeSuccess {
			return c.inbound(ctx, span, cl, resp, body[:c.maxBody])
		}
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		return nil, c.fail(ctx, span, cl, &Error{
			Outcome: OutcomeNetwork,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("response exceeds %d bytes", c.maxBody),
			Err:     ErrResponseTooLarge,
		})
	}

	return c.inbound(ctx, span, cl, resp, body)
}

// outbound builds the wire request: base address, JSON headers, request id and,
// when one is stored, the bearer credential.
func (c *Client) outbound(ctx context.Context, cl call, req Request) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(cl.path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, err
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", cl.requestID)
	httpReq.Header.Del("Authorization")

	c.attachCredential(ctx, cl, httpReq)
	return httpReq, nil
}

// attachCredential never blocks the request: a lookup failure sends it
// unauthenticated and leaves the verdict to the backend.
func (c *Client) attachCredential(ctx context.Context, cl call, httpReq *http.Request) {
	if c.credentials == nil {
		return
	}
	credential, err := c.credentials.Credential(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "credential lookup failed, sending request unauthenticated",
			"path", cl.path,
			"error", err,
			"request_id", cl.requestID,
		)
		return
	}
	if credential == "" {
		return
	}
	httpReq.Header.Set("Authorization", "Bearer "+credential)
}

func (c *Client) inbound(ctx context.Context, span trace.Span, cl call, resp *http.Response, body []byte) (*Result, error) {
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	outcome := Classify(resp.StatusCode)
	if outcome == OutcomeSuccess {
		elapsed := time.Since(cl.start)
		c.observe(cl, outcome, elapsed)
		c.logger.DebugContext(ctx, "backend call succeeded",
			"method", cl.method,
			"path", cl.path,
			"status", resp.StatusCode,
			"duration_ms", elapsed.Milliseconds(),
			"request_id", cl.requestID,
		)
		res := normalize(resp.StatusCode, resp.Header, body)
		res.RequestID = cl.requestID
		return res, nil
	}

	message, fields := parseErrorBody(body)
	return nil, c.fail(ctx, span, cl, &Error{
		Outcome:     outcome,
		Status:      resp.StatusCode,
		Message:     message,
		FieldErrors: fields,
		Body:        body,
	})
}

// fail completes e, applies the failure policy for its outcome and returns it.
func (c *Client) fail(ctx context.Context, span trace.Span, cl call, e *Error) error {
	e.Method = cl.method
	e.Path = cl.path
	e.RequestID = cl.requestID
	if e.Outcome == OutcomeNetwork && e.Message == "" {
		if errors.Is(e.Err, context.DeadlineExceeded) {
			e.Message = fmt.Sprintf("no response within %s", c.timeout)
		} else {
			e.Message = "no response received"
		}
	}

	span.SetStatus(codes.Error, e.Outcome.String())
	span.RecordError(e)
	c.observe(cl, e.Outcome, time.Since(cl.start))

	attrs := []any{
		"method", cl.method,
		"path", cl.path,
		"status", e.Status,
		"request_id", cl.requestID,
	}
	switch e.Outcome {
	case OutcomeUnauthorized:
		c.logger.WarnContext(ctx, "backend rejected credential, invalidating session", attrs...)
		c.invalidateSession(ctx, cl, e)
	case OutcomeForbidden:
		c.logger.WarnContext(ctx, "access forbidden", attrs...)
	case OutcomeNotFound:
		c.logger.WarnContext(ctx, "resource not found", attrs...)
	case OutcomeValidation:
		c.logger.WarnContext(ctx, "validation error", append(attrs, "fields", e.Fields())...)
	case OutcomeNetwork:
		c.logger.ErrorContext(ctx, "network error", append(attrs, "error", e.Err)...)
	default:
		if e.Status == http.StatusInternalServerError {
			c.logger.ErrorContext(ctx, "internal server error", attrs...)
		} else {
			c.logger.ErrorContext(ctx, "backend request failed", append(attrs, "message", e.Message)...)
		}
	}
	return e
}

// invalidateSession runs for every 401 regardless of call site: clear the
// session, then signal subscribers.
func (c *Client) invalidateSession(ctx context.Context, cl call, e *Error) {
	if c.invalidator != nil {
		reason := fmt.Sprintf("%s %s returned %d", cl.method, cl.path, e.Status)
		if err := c.invalidator.Invalidate(ctx, reason); err != nil {
			c.logger.ErrorContext(ctx, "failed to clear session after 401",
				"error", err,
				"request_id", cl.requestID,
			)
		}
	}
	if c.metrics != nil {
		c.metrics.IncSessionInvalidations()
	}
	c.subs.publish(ctx, SessionInvalidated{
		Method:    cl.method,
		Path:      cl.path,
		Status:    e.Status,
		RequestID: cl.requestID,
		At:        time.Now(),
	})
}

func (c *Client) observe(cl call, outcome Outcome, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveGatewayCall(cl.method, outcome.String(), elapsed)
}
