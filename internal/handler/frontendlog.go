package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/crmlite/contact-api/internal/domain"
	"github.com/crmlite/contact-api/internal/logging"
)

type frontendLogStore interface {
	Create(ctx context.Context, entry *domain.FrontendLog) error
	Stats(ctx context.Context, periodHours int) (*domain.LogStats, error)
}

// FrontendLogHandler ingests diagnostic records pushed by the browser client.
// This is a write-only sink: entries never feed back into request handling.
type FrontendLogHandler struct {
	logs     frontendLogStore
	batchMax int
}

func NewFrontendLogHandler(logs frontendLogStore, batchMax int) *FrontendLogHandler {
	return &FrontendLogHandler{logs: logs, batchMax: batchMax}
}

type frontendLogPayload struct {
	Level        string          `json:"level"`
	Message      string          `json:"message"`
	ErrorType    *string         `json:"error_type"`
	ErrorMessage *string         `json:"error_message"`
	StackTrace   *string         `json:"stack_trace"`
	URL          *string         `json:"url"`
	UserAgent    *string         `json:"user_agent"`
	Context      json.RawMessage `json:"context"`
	UserID       *int64          `json:"user_id"`
	SessionID    *string         `json:"session_id"`
	Timestamp    *time.Time      `json:"timestamp"`
}

func (p frontendLogPayload) validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(p.Level) == "" {
		errs["level"] = "level is required"
	} else if !domain.LogLevel(p.Level).IsValid() {
		errs["level"] = "level must be one of: debug, info, warning, error, critical"
	}
	if strings.TrimSpace(p.Message) == "" {
		errs["message"] = "message is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (h *FrontendLogHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var payload frontendLogPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := payload.validate(); fields != nil {
		RespondValidationError(w, fields)
		return
	}

	entry := h.buildEntry(payload, r)
	if err := h.logs.Create(r.Context(), entry); err != nil {
		log.Error("failed to store frontend log", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	// Severe frontend failures also land in the backend log so alerting
	// picks them up without polling the table.
	if entry.Level.IsSevere() {
		log.Error("frontend "+string(entry.Level)+": "+entry.Message,
			"frontend_log_id", entry.ID,
			"url", deref(entry.URL),
			"error_type", deref(entry.ErrorType),
		)
	}

	RespondSuccess(w, http.StatusCreated, map[string]any{"log_id": entry.ID})
}

type frontendLogBatchRequest struct {
	Logs []frontendLogPayload `json:"logs"`
}

type batchEntryError struct {
	Index  int               `json:"index"`
	Fields map[string]string `json:"fields,omitempty"`
	Reason string            `json:"reason,omitempty"`
}

func (h *FrontendLogHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req frontendLogBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Logs == nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if len(req.Logs) > h.batchMax {
		RespondAppError(w, ErrBatchTooLarge, map[string]int{"max": h.batchMax})
		return
	}

	saved := 0
	var failures []batchEntryError
	for i, payload := range req.Logs {
		if fields := payload.validate(); fields != nil {
			failures = append(failures, batchEntryError{Index: i, Fields: fields})
			continue
		}
		entry := h.buildEntry(payload, r)
		if err := h.logs.Create(r.Context(), entry); err != nil {
			log.Error("failed to store frontend log", "error", err, "batch_index", i)
			failures = append(failures, batchEntryError{Index: i, Reason: "store failure"})
			continue
		}
		saved++
	}

	log.Info("frontend log batch processed",
		"saved", saved, "total", len(req.Logs), "failed", len(failures),
	)

	RespondSuccess(w, http.StatusCreated, map[string]any{
		"saved":  saved,
		"total":  len(req.Logs),
		"errors": failures,
	})
}

func (h *FrontendLogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			RespondAppError(w, ErrInvalidHours, nil)
			return
		}
		hours = parsed
	}

	stats, err := h.logs.Stats(r.Context(), hours)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get frontend log stats", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"period_hours":      stats.PeriodHours,
		"stats":             stats.CountsByLevel,
		"unresolved_errors": stats.UnresolvedErrors,
		"total":             stats.Total,
	})
}

func (h *FrontendLogHandler) buildEntry(p frontendLogPayload, r *http.Request) *domain.FrontendLog {
	entry := &domain.FrontendLog{
		Level:        domain.LogLevel(p.Level),
		Message:      p.Message,
		ErrorType:    truncate(p.ErrorType, 255),
		ErrorMessage: p.ErrorMessage,
		StackTrace:   p.StackTrace,
		URL:          truncate(p.URL, 500),
		UserAgent:    truncate(p.UserAgent, 500),
		Context:      p.Context,
		UserID:       p.UserID,
		SessionID:    truncate(p.SessionID, 255),
		LoggedAt:     time.Now().UTC(),
	}
	if p.Timestamp != nil {
		entry.LoggedAt = p.Timestamp.UTC()
	}

	if entry.UserAgent == nil {
		if ua := r.UserAgent(); ua != "" {
			entry.UserAgent = truncate(&ua, 500)
		}
	}
	if ip := clientIP(r); ip != "" {
		entry.IPAddress = &ip
	}
	if reqID := logging.RequestIDFromContext(r.Context()); reqID != "" {
		entry.RequestID = &reqID
	}
	return entry
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// truncate caps a value at max runes. Cutting by byte could split a
// multi-byte character and produce invalid UTF-8, which Postgres rejects.
func truncate(s *string, max int) *string {
	if s == nil || len(*s) <= max {
		return s
	}
	runes := []rune(*s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	return &cut
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
