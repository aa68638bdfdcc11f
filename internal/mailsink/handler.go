// Package mailsink accepts Brevo transactional email requests and logs them
// instead of delivering mail. It backs local development and tests.
package mailsink

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/joao-fontenele/download-delivery/internal/delivery"
)

// Received is one accepted email as the sink recorded it.
type Received struct {
	MessageID   string
	To          []string
	Subject     string
	Attachments []string
}

type Handler struct {
	logger *slog.Logger

	mu       sync.Mutex
	received []Received
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

type sendResponse struct {
	MessageID string `json:"messageId"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("api-key") == "" {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Key not found")
		return
	}

	var req delivery.BrevoEmail
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if len(req.To) == 0 || req.Subject == "" || (req.HTMLContent == "" && req.TextContent == "") {
		h.writeError(w, http.StatusBadRequest, "missing_parameter", "to, subject and content are required")
		return
	}

	msg := Received{
		MessageID: "<" + uuid.NewString() + "@mailsink>",
		Subject:   req.Subject,
	}
	for _, to := range req.To {
		msg.To = append(msg.To, to.Email)
	}
	for _, a := range req.Attachment {
		if _, err := base64.StdEncoding.DecodeString(a.Content); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_parameter", "attachment "+a.Name+" is not base64")
			return
		}
		msg.Attachments = append(msg.Attachments, a.Name)
	}

	h.mu.Lock()
	h.received = append(h.received, msg)
	h.mu.Unlock()

	h.logger.Info("email sent", "to", msg.To, "subject", msg.Subject, "attachments", msg.Attachments, "message_id", msg.MessageID)

	h.writeJSON(w, http.StatusCreated, sendResponse{MessageID: msg.MessageID})
}

// Received returns a copy of every accepted email, oldest first.
func (h *Handler) Received() []Received {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Received(nil), h.received...)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, errorResponse{Code: code, Message: message})
}
