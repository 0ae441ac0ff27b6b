package leads

import (
	"strings"
	"time"
)

// Lead is a contact or demo request captured from the marketing site
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateLeadRequest carries the fields of a new lead
type CreateLeadRequest struct {
	Name    string
	Company string
	Email   string
	Phone   string
	Message string
	Source  string
}

// Validate validates the create lead request. Field-level rules live with
// the contact submission; storage only insists on a source.
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.Source) == "" {
		return ErrInvalidSource
	}
	return nil
}

// ListFilter pages through leads, newest first.
type ListFilter struct {
	Source string
	Limit  int
	Offset int
}

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
