package locator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/voice-receptionist/internal/observability/metrics"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

var tracer = otel.Tracer("receptionist.internal.locator")

const (
	// DefaultHealthPath is the endpoint every backend answers for probes.
	DefaultHealthPath = "/test"
	// DefaultTimeout bounds one probe or one dispatch attempt.
	DefaultTimeout = 3500 * time.Millisecond
)

// Prober checks candidates in order and adopts the first healthy one.
type Prober struct {
	client  *http.Client
	path    string
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.LocatorMetrics
}

// ProberOption customizes a Prober.
type ProberOption func(*Prober)

// WithProbePath overrides the health-check path.
func WithProbePath(path string) ProberOption {
	return func(p *Prober) {
		if path = strings.TrimSpace(path); path != "" {
			p.path = "/" + strings.TrimLeft(path, "/")
		}
	}
}

// WithProbeTimeout overrides the per-candidate timeout.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProbeLogger sets the logger used for probe outcomes.
func WithProbeLogger(logger *logging.Logger) ProberOption {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProbeMetrics records probe outcomes.
func WithProbeMetrics(m *metrics.LocatorMetrics) ProberOption {
	return func(p *Prober) { p.metrics = m }
}

// NewProber builds a prober. A nil client means http.DefaultClient.
func NewProber(client *http.Client, opts ...ProberOption) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	p := &Prober{
		client:  client,
		path:    DefaultHealthPath,
		timeout: DefaultTimeout,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe returns the first candidate whose health check answers 2xx within
// the timeout. Later candidates are not contacted once one succeeds.
func (p *Prober) Probe(ctx context.Context, candidates []string) (string, error) {
	for _, base := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		start := time.Now()
		err := p.check(ctx, base)
		outcome := probeOutcome(err)
		p.metrics.ObserveProbe(base, outcome)
		if err == nil {
			p.logger.Info("backend discovered", "base", base, "elapsed_ms", time.Since(start).Milliseconds())
			p.metrics.ObserveDiscovery(true)
			return base, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.logger.Debug("probe failed", "base", base, "outcome", outcome, "error", err)
	}
	p.logger.Warn("no backend answered health check", "candidates", candidates)
	p.metrics.ObserveDiscovery(false)
	return "", ErrNoReachableBase
}

func (p *Prober) check(ctx context.Context, base string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "locator.probe", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("locator.base", base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+p.path, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad request")
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unreachable")
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if !isSuccess(resp.StatusCode) {
		err := &StatusError{Base: base, StatusCode: resp.StatusCode}
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func probeOutcome(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("status_%d", statusErr.StatusCode)
	default:
		return "error"
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
