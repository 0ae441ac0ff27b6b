package locator

import (
	"net/http"
	"time"

	"github.com/wolfman30/voice-receptionist/internal/observability/metrics"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

// Options configures NewClient.
type Options struct {
	APIURL          string
	PageURL         string
	DevPorts        map[string]string
	ProbeTimeout    time.Duration
	DispatchTimeout time.Duration
	HTTPClient      *http.Client
	Logger          *logging.Logger
	Metrics         *metrics.LocatorMetrics
}

// Client bundles a session with its dispatcher.
type Client struct {
	Session    *Session
	Dispatcher *Dispatcher
}

// NewClient builds candidates from opts and wires prober, session and
// dispatcher together.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	candidates := BuildCandidates(opts.APIURL, ParsePageLocation(opts.PageURL), opts.DevPorts)
	prober := NewProber(opts.HTTPClient,
		WithProbeTimeout(opts.ProbeTimeout),
		WithProbeLogger(logger),
		WithProbeMetrics(opts.Metrics),
	)
	session := NewSession(candidates, prober)
	dispatcher := NewDispatcher(session, opts.HTTPClient,
		WithAttemptTimeout(opts.DispatchTimeout),
		WithDispatchLogger(logger),
		WithDispatchMetrics(opts.Metrics),
	)
	return &Client{Session: session, Dispatcher: dispatcher}
}
