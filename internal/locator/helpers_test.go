package locator

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

// fakeBackend is an httptest server answering /test and /contact/email with
// configurable statuses and counting hits per path.
type fakeBackend struct {
	*httptest.Server
	probeStatus   int
	contactStatus int
	contactBody   string
	delay         atomic.Int64
	probes        atomic.Int32
	contacts      atomic.Int32
}

func newFakeBackend(t *testing.T, probeStatus, contactStatus int) *fakeBackend {
	t.Helper()
	b := &fakeBackend{probeStatus: probeStatus, contactStatus: contactStatus}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay := time.Duration(b.delay.Load()); delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		switch r.URL.Path {
		case "/test":
			b.probes.Add(1)
			w.WriteHeader(b.probeStatus)
		case "/contact/email":
			b.contacts.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(b.contactStatus)
			if b.contactBody != "" {
				_, _ = w.Write([]byte(b.contactBody))
			}
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(b.Close)
	return b
}

// deadURL returns an origin nothing listens on.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

// orderRecorder wraps a transport and records the origins contacted.
type orderRecorder struct {
	mu    sync.Mutex
	hosts []string
	next  http.RoundTripper
}

func (o *orderRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	o.mu.Lock()
	o.hosts = append(o.hosts, req.URL.Scheme+"://"+req.URL.Host)
	o.mu.Unlock()
	return o.next.RoundTrip(req)
}

func (o *orderRecorder) seen() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.hosts...)
}

func newRecordingClient() (*http.Client, *orderRecorder) {
	rec := &orderRecorder{next: http.DefaultTransport}
	return &http.Client{Transport: rec}, rec
}

func quietProber(client *http.Client, timeout time.Duration) *Prober {
	return NewProber(client, WithProbeTimeout(timeout), WithProbeLogger(logging.Discard()))
}
