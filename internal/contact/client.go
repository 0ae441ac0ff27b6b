package contact

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wolfman30/voice-receptionist/internal/locator"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

// EmailPath is where the API accepts contact submissions.
const EmailPath = "/contact/email"

// Poster delivers JSON payloads; *locator.Dispatcher satisfies it.
type Poster interface {
	PostJSON(ctx context.Context, path string, payload any) (*locator.Response, error)
}

var _ Poster = (*locator.Dispatcher)(nil)

// Receipt is what the API answered for an accepted submission.
type Receipt struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Base   string `json:"-"`
}

// Client sends submissions to the API.
type Client struct {
	poster Poster
	logger *logging.Logger
}

// NewClient creates a contact client.
func NewClient(poster Poster, logger *logging.Logger) *Client {
	if poster == nil {
		panic("contact: poster required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{poster: poster, logger: logger}
}

// Send posts sub to the API. An unknown source is rejected before any
// request; every network or status failure comes back as
// locator.ErrDeliveryFailed.
func (c *Client) Send(ctx context.Context, sub Submission) (*Receipt, error) {
	sub = sub.Normalize()
	if !sub.Source.Valid() {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidSubmission, sub.Source)
	}

	resp, err := c.poster.PostJSON(ctx, EmailPath, sub)
	if err != nil {
		c.logger.Warn("contact submission not delivered", "source", sub.Source, "error", err)
		return nil, err
	}

	receipt := &Receipt{Base: resp.Base}
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, receipt); err != nil {
			c.logger.Debug("contact receipt not JSON", "base", resp.Base, "error", err)
		}
	}
	c.logger.Info("contact submission delivered", "source", sub.Source, "base", resp.Base, "id", receipt.ID)
	return receipt, nil
}
