package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/joao-fontenele/download-delivery/internal/domain"
)

type BrevoSender struct {
	baseURL    string
	apiKey     string
	identity   Identity
	httpClient *http.Client
}

func NewBrevoSender(baseURL, apiKey string, identity Identity, client *http.Client) *BrevoSender {
	return &BrevoSender{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		identity:   identity,
		httpClient: client,
	}
}

type BrevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type BrevoAttachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// BrevoEmail is the body of POST /v3/smtp/email.
type BrevoEmail struct {
	Sender      BrevoContact      `json:"sender"`
	To          []BrevoContact    `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	TextContent string            `json:"textContent"`
	Attachment  []BrevoAttachment `json:"attachment,omitempty"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *BrevoSender) Send(ctx context.Context, msg domain.DeliveryMessage) error {
	body := BrevoEmail{
		Sender:      BrevoContact{Name: s.identity.Name, Email: s.identity.Email},
		To:          []BrevoContact{{Name: msg.ToName, Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	}
	for _, a := range msg.Attachments {
		body.Attachment = append(body.Attachment, BrevoAttachment{
			Name:    a.Name,
			Content: base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal brevo email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/smtp/email", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create brevo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send brevo email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr brevoError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("brevo returned status %d: %s", resp.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("brevo returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
