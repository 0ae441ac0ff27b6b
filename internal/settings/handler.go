package settings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Handler serves GET and PUT /api/settings.
type Handler struct {
	store  Store
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates a settings HTTP handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger, now: time.Now}
}

// Get returns the current settings.
// GET /api/settings
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	current, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		writeDetail(w, http.StatusInternalServerError, "could not load settings")
		return
	}
	writeJSON(w, http.StatusOK, current)
}

// Put replaces the settings and stamps updated_at.
// PUT /api/settings
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	var in Settings
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, strings.TrimPrefix(err.Error(), ErrInvalidSettings.Error()+": "))
		return
	}
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	stamped := h.now().UTC()
	in.UpdatedAt = &stamped

	if err := h.store.Set(r.Context(), &in); err != nil {
		if errors.Is(err, ErrInvalidSettings) {
			writeDetail(w, http.StatusUnprocessableEntity, "invalid settings")
			return
		}
		h.logger.Error("failed to save settings", "error", err)
		writeDetail(w, http.StatusInternalServerError, "could not save settings")
		return
	}
	h.logger.Info("settings updated", "business_name", in.BusinessName, "notifications", in.Notifications)
	writeJSON(w, http.StatusOK, &in)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
