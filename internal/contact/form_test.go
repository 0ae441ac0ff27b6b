package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/voice-receptionist/internal/locator"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

// newBackend answers /test with 200 and /contact/email with status,
// recording the submissions it receives.
func newBackend(t *testing.T, status int) (*httptest.Server, *[]Submission) {
	t.Helper()
	var (
		mu       sync.Mutex
		received []Submission
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/test":
			w.WriteHeader(http.StatusOK)
		case EmailPath:
			var sub Submission
			_ = json.NewDecoder(r.Body).Decode(&sub)
			mu.Lock()
			received = append(received, sub)
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status >= 400 {
				_, _ = w.Write([]byte(`{"detail":"Failed to send email"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"sent","id":"lead-42"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &received
}

func newFormAgainst(t *testing.T, baseURL string, dismissAfter time.Duration) *Form {
	t.Helper()
	lc := locator.NewClient(locator.Options{
		APIURL:          baseURL,
		PageURL:         baseURL,
		ProbeTimeout:    time.Second,
		DispatchTimeout: time.Second,
		Logger:          logging.Discard(),
	})
	_, err := lc.Session.Discover(context.Background())
	require.NoError(t, err)
	return NewForm(NewClient(lc.Dispatcher, logging.Discard()), dismissAfter)
}

func TestFormDemoRequestSuccessClosesDialog(t *testing.T) {
	srv, received := newBackend(t, http.StatusOK)
	form := newFormAgainst(t, srv.URL, time.Minute)
	form.Open()

	receipt, err := form.Submit(context.Background(), Submission{Email: "a@b.com", Source: SourceRequestDemo})
	require.NoError(t, err)
	assert.Equal(t, "lead-42", receipt.ID)

	assert.False(t, form.DialogOpen(), "dialog closes on success")
	notice, ok := form.Notification()
	require.True(t, ok)
	assert.Equal(t, NotificationSuccess, notice.Kind)
	require.Len(t, *received, 1)
	assert.Equal(t, Submission{Email: "a@b.com", Source: SourceRequestDemo}, (*received)[0])
}

func TestFormDemoRequestFailureKeepsDialogOpen(t *testing.T) {
	srv, _ := newBackend(t, http.StatusInternalServerError)
	form := newFormAgainst(t, srv.URL, time.Minute)
	form.Open()

	_, err := form.Submit(context.Background(), Submission{Email: "a@b.com", Source: SourceRequestDemo})
	require.ErrorIs(t, err, locator.ErrDeliveryFailed)

	assert.True(t, form.DialogOpen(), "dialog stays open on failure")
	notice, ok := form.Notification()
	require.True(t, ok)
	assert.Equal(t, NotificationError, notice.Kind)
	assert.Equal(t, failureMessage, notice.Message)
	assert.False(t, form.Submitting())
}

func TestFormNotificationAutoDismisses(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK)
	form := newFormAgainst(t, srv.URL, 30*time.Millisecond)

	_, err := form.Submit(context.Background(), Submission{Source: SourceQuickEmail})
	require.NoError(t, err)
	_, ok := form.Notification()
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, visible := form.Notification()
		return !visible
	}, time.Second, 10*time.Millisecond)
}

// blockingSender holds Send until release is closed.
type blockingSender struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSender) Send(ctx context.Context, sub Submission) (*Receipt, error) {
	close(b.started)
	<-b.release
	return &Receipt{Status: "sent"}, nil
}

func TestFormRejectsConcurrentSubmit(t *testing.T) {
	sender := &blockingSender{started: make(chan struct{}), release: make(chan struct{})}
	form := NewForm(sender, time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background(), Submission{Source: SourceSendEmail})
		done <- err
	}()
	<-sender.started
	assert.True(t, form.Submitting())

	_, err := form.Submit(context.Background(), Submission{Source: SourceSendEmail})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(sender.release)
	require.NoError(t, <-done)
	assert.False(t, form.Submitting())
}

func TestNewFormDefaults(t *testing.T) {
	form := NewForm(&blockingSender{}, 0)
	assert.Equal(t, DefaultDismissAfter, form.dismissAfter)
	assert.False(t, form.DialogOpen())
	form.Open()
	assert.True(t, form.DialogOpen())
	form.Close()
	assert.False(t, form.DialogOpen())
}
