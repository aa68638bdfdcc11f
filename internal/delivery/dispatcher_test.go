package delivery

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/joao-fontenele/download-delivery/internal/domain"
)

type recordingSender struct {
	sent []domain.DeliveryMessage
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg domain.DeliveryMessage) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func testOrder() *domain.OrderEvent {
	paid := "paid"
	return &domain.OrderEvent{
		Email:           "anna@example.com",
		Customer:        &domain.Person{FirstName: "Anna", LastName: "Berg"},
		FinancialStatus: &paid,
		Name:            "#1001",
		CreatedAt:       "2026-02-27T18:30:00+01:00",
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fixed := func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	assets := []domain.DownloadableAsset{
		{ProductTitle: "Sommerlied", VariantTitle: "Mit Beat", DownloadLink: "https://x/a.mp3"},
		{ProductTitle: "Winterlied", VariantTitle: "Ohne Beat", DownloadLink: "https://x/b.mp3"},
	}

	t.Run("sends one message without attachments by default", func(t *testing.T) {
		sender := &recordingSender{}
		d := NewDispatcher(sender, testRenderer(), logger)

		if err := d.Dispatch(context.Background(), testOrder(), assets); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sender.sent) != 1 {
			t.Fatalf("expected 1 message, got %d", len(sender.sent))
		}
		msg := sender.sent[0]
		if msg.To != "anna@example.com" || msg.ToName != "Anna" {
			t.Errorf("unexpected recipient: %s <%s>", msg.ToName, msg.To)
		}
		if msg.Subject != "Dein Download von songkauf.de" {
			t.Errorf("unexpected subject: %s", msg.Subject)
		}
		if strings.Count(msg.HTML, ">Download</a>") != 2 {
			t.Error("expected two download buttons")
		}
		if len(msg.Attachments) != 0 {
			t.Errorf("expected no attachments, got %d", len(msg.Attachments))
		}
	})

	t.Run("attaches one license per asset", func(t *testing.T) {
		sender := &recordingSender{}
		logoCalls := 0
		d := NewDispatcher(sender, testRenderer(), logger,
			WithLicenseDocuments(func(context.Context) *Logo {
				logoCalls++
				return nil
			}),
			WithClock(fixed),
		)

		if err := d.Dispatch(context.Background(), testOrder(), assets); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		attachments := sender.sent[0].Attachments
		if len(attachments) != 2 {
			t.Fatalf("expected 2 attachments, got %d", len(attachments))
		}
		if attachments[0].Name != "Lizenz_Sommerlied.pdf" || attachments[1].Name != "Lizenz_Winterlied.pdf" {
			t.Errorf("unexpected names: %s, %s", attachments[0].Name, attachments[1].Name)
		}
		for _, a := range attachments {
			if a.ContentType != "application/pdf" || !bytes.HasPrefix(a.Content, []byte("%PDF-")) {
				t.Errorf("unexpected attachment %s", a.Name)
			}
		}
		if logoCalls != 1 {
			t.Errorf("expected logo fetched once, got %d", logoCalls)
		}
	})

	t.Run("keeps license names distinct for one product", func(t *testing.T) {
		sender := &recordingSender{}
		d := NewDispatcher(sender, testRenderer(), logger, WithLicenseDocuments(nil), WithClock(fixed))
		both := []domain.DownloadableAsset{
			{ProductTitle: "Sommerlied", VariantTitle: "Mit Beat", DownloadLink: "https://x/a.mp3"},
			{ProductTitle: "Sommerlied", VariantTitle: "Ohne Beat", DownloadLink: "https://x/b.mp3"},
			{ProductTitle: "Sommerlied", VariantTitle: "Ohne Beat WAV", DownloadLink: "https://x/c.wav"},
		}

		if err := d.Dispatch(context.Background(), testOrder(), both); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"Lizenz_Sommerlied.pdf", "Lizenz_Sommerlied_2.pdf", "Lizenz_Sommerlied_3.pdf"}
		attachments := sender.sent[0].Attachments
		if len(attachments) != len(want) {
			t.Fatalf("expected %d attachments, got %d", len(want), len(attachments))
		}
		for i, a := range attachments {
			if a.Name != want[i] {
				t.Errorf("attachment %d: expected %s, got %s", i, want[i], a.Name)
			}
		}
	})

	t.Run("uses generic name without buyer name", func(t *testing.T) {
		sender := &recordingSender{}
		order := testOrder()
		order.Customer = nil

		if err := NewDispatcher(sender, testRenderer(), logger).Dispatch(context.Background(), order, assets); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sender.sent[0].ToName != "Kunde" {
			t.Errorf("expected Kunde, got %s", sender.sent[0].ToName)
		}
	})

	t.Run("refuses empty asset list", func(t *testing.T) {
		sender := &recordingSender{}
		err := NewDispatcher(sender, testRenderer(), logger).Dispatch(context.Background(), testOrder(), nil)
		if !errors.Is(err, ErrNoAssets) {
			t.Errorf("expected ErrNoAssets, got %v", err)
		}
		if len(sender.sent) != 0 {
			t.Error("expected nothing sent")
		}
	})

	t.Run("wraps sender errors", func(t *testing.T) {
		boom := errors.New("boom")
		sender := &recordingSender{err: boom}
		err := NewDispatcher(sender, testRenderer(), logger).Dispatch(context.Background(), testOrder(), assets)
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped sender error, got %v", err)
		}
	})
}
