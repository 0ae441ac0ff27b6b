// Package settings stores the dashboard's receptionist settings.
package settings

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	// ErrInvalidSettings is returned when a settings update fails validation.
	ErrInvalidSettings = errors.New("settings: invalid settings")
)

// Settings is what the dashboard's settings page edits.
type Settings struct {
	BusinessName  string     `json:"business_name" validate:"notblank,max=2000"`
	Hours         string     `json:"hours" validate:"max=2000"`
	BookingRules  string     `json:"booking_rules" validate:"max=2000"`
	FAQ           string     `json:"faq" validate:"max=2000"`
	Instructions  string     `json:"instructions" validate:"max=2000"`
	Routing       string     `json:"routing" validate:"max=2000"`
	Notifications bool       `json:"notifications"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// Defaults returns the settings shown before anything is saved.
func Defaults() *Settings {
	return &Settings{
		BusinessName:  "Acme Clinic",
		Hours:         "Mon–Fri 9am–6pm",
		BookingRules:  "30 min slots, 24h notice",
		FAQ:           "Do you accept new patients? Yes.",
		Instructions:  "Be friendly, concise, always offer to book.",
		Routing:       "Sales -> John, Support -> Team",
		Notifications: true,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
	})
	return validate
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// Validate checks the fields a settings update must carry. Only the first
// failing field, in declaration order, is reported.
func (s *Settings) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: body required", ErrInvalidSettings)
	}
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return fmt.Errorf("%w: %s", ErrInvalidSettings, describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}

// Store persists a single settings document.
type Store interface {
	Get(ctx context.Context) (*Settings, error)
	Set(ctx context.Context, s *Settings) error
}

// MemoryStore keeps settings in process. Used when Redis is not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	current *Settings
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(ctx context.Context) (*Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Defaults(), nil
	}
	out := *m.current
	return &out, nil
}

func (m *MemoryStore) Set(ctx context.Context, s *Settings) error {
	if s == nil {
		return fmt.Errorf("%w: body required", ErrInvalidSettings)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *s
	m.current = &stored
	return nil
}

// Preferences adapts a Store to the notifier's preference lookup.
type Preferences struct {
	Store Store
}

// NotificationsEnabled reports the saved notifications toggle.
func (p Preferences) NotificationsEnabled(ctx context.Context) (bool, error) {
	if p.Store == nil {
		return true, nil
	}
	s, err := p.Store.Get(ctx)
	if err != nil {
		return false, err
	}
	return s.Notifications, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
