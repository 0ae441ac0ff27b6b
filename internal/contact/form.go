package contact

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSubmissionInFlight is returned when Submit is called while a previous
// submission has not finished.
var ErrSubmissionInFlight = errors.New("contact: submission already in flight")

// DefaultDismissAfter is how long a notification stays visible.
const DefaultDismissAfter = 3500 * time.Millisecond

const (
	successMessage = "Thanks! We'll be in touch shortly."
	failureMessage = "We couldn't send your request. Please try again."
)

// NotificationKind is success or error.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient message shown after a submission.
type Notification struct {
	Kind    NotificationKind
	Message string
	ShownAt time.Time
}

// Sender is implemented by *Client.
type Sender interface {
	Send(ctx context.Context, sub Submission) (*Receipt, error)
}

// Form tracks the submission dialog and its notification the way the site
// presents them: success closes the dialog, failure leaves it open, and the
// notification clears itself after a fixed delay.
type Form struct {
	sender       Sender
	dismissAfter time.Duration

	mu         sync.Mutex
	dialogOpen bool
	submitting bool
	notice     *Notification
	noticeSeq  uint64
	timer      *time.Timer
}

// NewForm creates a form controller. dismissAfter <= 0 uses the default.
func NewForm(sender Sender, dismissAfter time.Duration) *Form {
	if sender == nil {
		panic("contact: sender required")
	}
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismissAfter
	}
	return &Form{sender: sender, dismissAfter: dismissAfter}
}

// Open shows the submission dialog.
func (f *Form) Open() {
	f.mu.Lock()
	f.dialogOpen = true
	f.mu.Unlock()
}

// Close hides the submission dialog.
func (f *Form) Close() {
	f.mu.Lock()
	f.dialogOpen = false
	f.mu.Unlock()
}

// DialogOpen reports whether the dialog is visible.
func (f *Form) DialogOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dialogOpen
}

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Notification returns the visible notification, if any.
func (f *Form) Notification() (Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notice == nil {
		return Notification{}, false
	}
	return *f.notice, true
}

// Submit sends sub and updates the dialog and notification with the outcome.
// The sender's error is returned unchanged.
func (f *Form) Submit(ctx context.Context, sub Submission) (*Receipt, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	f.submitting = true
	f.mu.Unlock()

	receipt, err := f.sender.Send(ctx, sub)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.showLocked(NotificationError, failureMessage)
		return nil, err
	}
	f.dialogOpen = false
	f.showLocked(NotificationSuccess, successMessage)
	return receipt, nil
}

func (f *Form) showLocked(kind NotificationKind, msg string) {
	if f.timer != nil {
		f.timer.Stop()
	}
	f.noticeSeq++
	seq := f.noticeSeq
	f.notice = &Notification{Kind: kind, Message: msg, ShownAt: time.Now()}
	f.timer = time.AfterFunc(f.dismissAfter, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.noticeSeq == seq {
			f.notice = nil
		}
	})
}
