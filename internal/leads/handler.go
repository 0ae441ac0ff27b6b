package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/voice-receptionist/internal/contact"
	"github.com/wolfman30/voice-receptionist/internal/observability/metrics"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

var contactTracer = otel.Tracer("receptionist.internal.leads.contact")

const maxContactBody = 64 << 10

// Notifier tells the sales team about a new lead.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead *Lead) error
}

// Handler handles HTTP requests for leads
type Handler struct {
	repo     Repository
	notifier Notifier
	metrics  *metrics.ContactMetrics
	logger   *logging.Logger
}

// NewHandler creates a new leads handler. notifier and m may be nil.
func NewHandler(repo Repository, notifier Notifier, m *metrics.ContactMetrics, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// ContactResponse is returned for an accepted submission.
type ContactResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// SubmitContact handles POST /contact/email requests
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	ctx, span := contactTracer.Start(r.Context(), "contact.submit")
	defer span.End()

	var sub contact.Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sub); err != nil {
		h.logger.Warn("failed to decode contact submission", "error", err)
		h.metrics.ObserveSubmission("", "invalid")
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	sub = sub.Normalize()
	span.SetAttributes(attribute.String("contact.source", string(sub.Source)))

	if err := sub.Validate(); err != nil {
		h.metrics.ObserveSubmission(string(sub.Source), "invalid")
		writeDetail(w, http.StatusUnprocessableEntity, userMessage(err))
		return
	}

	lead, err := h.repo.Create(ctx, &CreateLeadRequest{
		Name:    sub.Name,
		Company: sub.Company,
		Email:   sub.Email,
		Phone:   sub.Phone,
		Message: sub.Message,
		Source:  string(sub.Source),
	})
	if err != nil {
		span.RecordError(err)
		h.logger.Error("failed to record lead", "error", err, "source", sub.Source)
		h.metrics.ObserveSubmission(string(sub.Source), "error")
		writeDetail(w, http.StatusInternalServerError, "could not record your request")
		return
	}
	span.SetAttributes(attribute.String("contact.lead_id", lead.ID))
	h.logger.Info("lead created", "id", lead.ID, "source", lead.Source)

	if h.notifier != nil {
		if err := h.notifier.NotifyNewLead(ctx, lead); err != nil {
			h.logger.Error("lead notification failed", "error", err, "id", lead.ID)
			h.metrics.ObserveNotification(false)
		} else {
			h.metrics.ObserveNotification(true)
		}
	}

	h.metrics.ObserveSubmission(lead.Source, "accepted")
	writeJSON(w, http.StatusOK, ContactResponse{Status: "sent", ID: lead.ID})
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// ListLeads handles GET /api/admin/leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: defaultListLimit}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = min(limit, maxListLimit)
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	filter.Source = strings.TrimSpace(r.URL.Query().Get("source"))

	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		writeDetail(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	writeJSON(w, http.StatusOK, ListLeadsResponse{
		Leads:  leads,
		Count:  len(leads),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}

// GetLead handles GET /api/admin/leads/{id} requests
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	lead, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrLeadNotFound) {
		writeDetail(w, http.StatusNotFound, "lead not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get lead", "error", err, "id", id)
		writeDetail(w, http.StatusInternalServerError, "failed to get lead")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func userMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, contact.ErrInvalidSubmission) {
		msg = strings.TrimPrefix(msg, contact.ErrInvalidSubmission.Error()+": ")
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
