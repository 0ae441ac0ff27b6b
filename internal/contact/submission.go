// Package contact models the site's contact and demo-request forms and
// delivers them to the API through the backend locator.
package contact

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Source identifies the call-to-action a submission came from.
type Source string

const (
	SourceRequestDemo Source = "request-demo"
	SourceSendEmail   Source = "send-email"
	SourceQuickEmail  Source = "quick-email"
)

// Valid reports whether s is one of the known call-to-action sources.
func (s Source) Valid() bool {
	switch s {
	case SourceRequestDemo, SourceSendEmail, SourceQuickEmail:
		return true
	}
	return false
}

// ErrInvalidSubmission wraps every validation failure.
var ErrInvalidSubmission = errors.New("contact: invalid submission")

// Submission is the JSON body of POST /contact/email.
type Submission struct {
	Name    string `json:"name,omitempty" validate:"max=200"`
	Company string `json:"company,omitempty" validate:"max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Message string `json:"message,omitempty" validate:"max=5000"`
	Source  Source `json:"source" validate:"required,oneof=request-demo send-email quick-email"`
}

// Normalize trims whitespace from every field.
func (s Submission) Normalize() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Company: strings.TrimSpace(s.Company),
		Email:   strings.TrimSpace(s.Email),
		Phone:   strings.TrimSpace(s.Phone),
		Message: strings.TrimSpace(s.Message),
		Source:  Source(strings.TrimSpace(string(s.Source))),
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(demoNeedsContact, Submission{})
	})
	return validate
}

// demoNeedsContact requires a way to reach the prospect on demo requests.
func demoNeedsContact(sl validator.StructLevel) {
	sub := sl.Current().Interface().(Submission)
	if sub.Source == SourceRequestDemo && sub.Email == "" && sub.Phone == "" {
		sl.ReportError(sub.Email, "Email", "email", "email_or_phone", "")
	}
}

// Validate checks field formats and limits. The returned error wraps
// ErrInvalidSubmission and reads as a user-facing sentence.
func (s Submission) Validate() error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidSubmission, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return field + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return field + " must be a valid email address"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "email_or_phone":
		return "either email or phone is required"
	default:
		return field + " is invalid"
	}
}
