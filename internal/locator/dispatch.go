package locator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/voice-receptionist/internal/observability/metrics"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

// ErrDeliveryFailed matches every *DeliveryError.
var ErrDeliveryFailed = errors.New("locator: delivery failed")

const maxResponseBody = 64 << 10

// DeliveryError is returned once every trial base has failed.
type DeliveryError struct {
	Tried []string
	Cause error
}

func (e *DeliveryError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("locator: delivery failed after %d attempt(s)", len(e.Tried))
	}
	return fmt.Sprintf("locator: delivery failed after %d attempt(s): %v", len(e.Tried), e.Cause)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }

func (e *DeliveryError) Is(target error) bool { return target == ErrDeliveryFailed }

// StatusError is a non-2xx answer from a base.
type StatusError struct {
	Base       string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s answered %d: %s", e.Base, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s answered %d", e.Base, e.StatusCode)
}

// Response is a successful dispatch.
type Response struct {
	Base       string
	StatusCode int
	Body       []byte
}

// Dispatcher sends requests to the session's selected base first and then
// to every other candidate in order until one answers 2xx.
type Dispatcher struct {
	session *Session
	client  *http.Client
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.LocatorMetrics
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithAttemptTimeout bounds each attempt.
func WithAttemptTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithDispatchLogger sets the dispatcher's logger.
func WithDispatchLogger(logger *logging.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDispatchMetrics records attempt and delivery outcomes.
func WithDispatchMetrics(m *metrics.LocatorMetrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher builds a dispatcher over session. A nil client means
// http.DefaultClient.
func NewDispatcher(session *Session, client *http.Client, opts ...DispatcherOption) *Dispatcher {
	if session == nil {
		panic("locator: session required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	d := &Dispatcher{
		session: session,
		client:  client,
		timeout: DefaultTimeout,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// TrialOrder returns the selected base (when known) followed by the other
// candidates in their original order.
func (d *Dispatcher) TrialOrder() []string {
	candidates := d.session.Candidates()
	selected, ok := d.session.Selected()
	if !ok {
		return candidates
	}
	order := make([]string, 0, len(candidates)+1)
	order = append(order, selected)
	for _, c := range candidates {
		if c != selected {
			order = append(order, c)
		}
	}
	return order
}

// PostJSON encodes payload and posts it to path on the first base that
// accepts it. Every failure is reported as a *DeliveryError carrying the
// last cause.
func (d *Dispatcher) PostJSON(ctx context.Context, path string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("locator: encode payload: %w", err)
	}
	return d.Do(ctx, http.MethodPost, path, body)
}

// Do sends body to path with method, walking the trial order.
func (d *Dispatcher) Do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	start := time.Now()
	path = "/" + strings.TrimLeft(path, "/")

	var (
		tried   []string
		lastErr error
	)
	for _, base := range d.TrialOrder() {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		tried = append(tried, base)
		resp, err := d.attempt(ctx, method, base, path, body)
		d.metrics.ObserveAttempt(base, probeOutcome(err))
		if err == nil {
			d.metrics.ObserveDispatch(true, time.Since(start).Seconds())
			d.logger.Info("dispatch delivered", "base", base, "path", path, "attempts", len(tried))
			return resp, nil
		}
		d.logger.Warn("dispatch attempt failed", "base", base, "path", path, "error", err)
		lastErr = err
	}

	d.metrics.ObserveDispatch(false, time.Since(start).Seconds())
	d.logger.Error("dispatch failed", "path", path, "tried", tried, "error", lastErr)
	return nil, &DeliveryError{Tried: tried, Cause: lastErr}
}

func (d *Dispatcher) attempt(ctx context.Context, method, base, path string, body []byte) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "locator.dispatch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("locator.base", base),
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unreachable")
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if !isSuccess(resp.StatusCode) {
		statusErr := &StatusError{Base: base, StatusCode: resp.StatusCode, Detail: errorDetail(respBody)}
		span.SetStatus(codes.Error, statusErr.Error())
		return nil, statusErr
	}
	return &Response{Base: base, StatusCode: resp.StatusCode, Body: respBody}, nil
}

// errorDetail pulls the "detail" field out of a JSON error body. Non-string
// details (validation lists) are returned as compact JSON.
func errorDetail(body []byte) string {
	var parsed struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(body) == 0 || json.Unmarshal(body, &parsed) != nil || len(parsed.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(parsed.Detail, &text); err == nil {
		return text
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, parsed.Detail); err != nil {
		return ""
	}
	if compact.String() == "null" {
		return ""
	}
	return compact.String()
}
