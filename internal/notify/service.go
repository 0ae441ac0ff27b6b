package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/voice-receptionist/internal/leads"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

// Preferences reports whether email alerts are switched on in settings.
type Preferences interface {
	NotificationsEnabled(ctx context.Context) (bool, error)
}

// Service emails the sales inbox about new leads.
type Service struct {
	email      EmailSender
	recipients []string
	prefs      Preferences
	logger     *logging.Logger
}

// NewService creates a notification service. recipients is a list of
// addresses; blanks are ignored. prefs may be nil.
func NewService(email EmailSender, recipients []string, prefs Preferences, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	var cleaned []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	return &Service{
		email:      email,
		recipients: cleaned,
		prefs:      prefs,
		logger:     logger,
	}
}

var _ leads.Notifier = (*Service)(nil)

// NotifyNewLead sends one email per recipient. Every failed recipient is
// reported in the returned error.
func (s *Service) NotifyNewLead(ctx context.Context, lead *leads.Lead) error {
	if lead == nil {
		return errors.New("notify: lead required")
	}
	if s.email == nil || len(s.recipients) == 0 {
		s.logger.Debug("notify: email not configured, skipping lead alert", "lead_id", lead.ID)
		return nil
	}
	if s.prefs != nil {
		enabled, err := s.prefs.NotificationsEnabled(ctx)
		if err != nil {
			s.logger.Warn("notify: could not read preferences, sending anyway", "error", err)
		} else if !enabled {
			s.logger.Debug("notify: lead alerts disabled", "lead_id", lead.ID)
			return nil
		}
	}

	subject, body, htmlBody := renderLeadEmail(lead)
	var errs []error
	for _, to := range s.recipients {
		msg := EmailMessage{
			To:      to,
			ReplyTo: lead.Email,
			Subject: subject,
			Body:    body,
			HTML:    htmlBody,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notify: email %s: %w", to, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.logger.Info("lead alert sent", "lead_id", lead.ID, "recipients", len(s.recipients))
	return nil
}

var sourceTitles = map[string]string{
	"request-demo": "Demo request",
	"send-email":   "Contact message",
	"quick-email":  "Quick email",
}

func renderLeadEmail(lead *leads.Lead) (subject, body, htmlBody string) {
	title, ok := sourceTitles[lead.Source]
	if !ok {
		title = "New lead"
	}
	who := firstNonEmpty(lead.Name, lead.Email, lead.Phone, "Anonymous visitor")
	subject = fmt.Sprintf("%s from %s", title, who)
	if lead.Company != "" {
		subject += " (" + lead.Company + ")"
	}

	rows := [][2]string{
		{"Name", lead.Name},
		{"Company", lead.Company},
		{"Email", lead.Email},
		{"Phone", lead.Phone},
		{"Source", lead.Source},
		{"Received", lead.CreatedAt.Format("January 2, 2006 at 3:04 PM MST")},
	}

	var text, markup strings.Builder
	fmt.Fprintf(&text, "%s\n\n", title)
	markup.WriteString(`<div style="font-family: sans-serif; max-width: 600px;">`)
	fmt.Fprintf(&markup, `<h2>%s</h2><table style="border-collapse: collapse; margin: 16px 0;">`, html.EscapeString(title))
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(&text, "%s: %s\n", row[0], row[1])
		fmt.Fprintf(&markup, `<tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">%s</td><td>%s</td></tr>`,
			html.EscapeString(row[0]), html.EscapeString(row[1]))
	}
	markup.WriteString(`</table>`)
	if lead.Message != "" {
		fmt.Fprintf(&text, "\nMessage:\n%s\n", lead.Message)
		fmt.Fprintf(&markup, `<p style="white-space: pre-wrap;">%s</p>`, html.EscapeString(lead.Message))
	}
	text.WriteString("\nLead ID: " + lead.ID + "\n")
	markup.WriteString(`<p style="color: #9ca3af; font-size: 12px;">Lead ID: ` + html.EscapeString(lead.ID) + `</p></div>`)

	return subject, text.String(), markup.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
