package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

// Handler serves the dashboard and admin read endpoints.
type Handler struct {
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates a dashboard handler.
func NewHandler(logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{logger: logger, now: time.Now}
}

// Overview handles GET /api/dashboard/overview.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, demoOverview())
}

// Calls handles GET /api/dashboard/calls.
func (h *Handler) Calls(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"calls": demoCalls()})
}

// Calendar handles GET /api/dashboard/calendar?days=N.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	days := DefaultCalendarDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxCalendarDays {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"detail": "days must be between 1 and " + strconv.Itoa(MaxCalendarDays),
			})
			return
		}
		days = n
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"days": calendar(days, h.now().Day())})
}

// AdminOverview handles GET /api/admin/overview.
func (h *Handler) AdminOverview(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, demoAdminOverview())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode dashboard response", "error", err)
	}
}
