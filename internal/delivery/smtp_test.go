package delivery

import (
	"bytes"
	"strings"
	"testing"

	"github.com/joao-fontenele/download-delivery/internal/domain"
)

func TestSMTPSender_BuildMessage(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587}, Identity{Name: "songkauf.de", Email: "info@songkauf.de"})

	t.Run("builds multipart message with attachment", func(t *testing.T) {
		m, err := sender.buildMessage(domain.DeliveryMessage{
			To:      "anna@example.com",
			ToName:  "Anna",
			Subject: "Dein Download von songkauf.de",
			HTML:    "<p>Hallo Anna</p>",
			Text:    "Hallo Anna",
			Attachments: []domain.Attachment{
				{Name: "Lizenz_Sommerlied.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.3")},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var buf bytes.Buffer
		if _, err := m.WriteTo(&buf); err != nil {
			t.Fatalf("failed to write message: %v", err)
		}
		raw := buf.String()

		for _, want := range []string{
			"Subject: Dein Download von songkauf.de",
			"anna@example.com",
			"info@songkauf.de",
			"text/plain",
			"text/html",
			"Lizenz_Sommerlied.pdf",
			"application/pdf",
		} {
			if !strings.Contains(raw, want) {
				t.Errorf("expected message to contain %q", want)
			}
		}
	})

	t.Run("rejects invalid recipient", func(t *testing.T) {
		if _, err := sender.buildMessage(domain.DeliveryMessage{To: "not an address"}); err == nil {
			t.Error("expected error for invalid recipient")
		}
	})
}
