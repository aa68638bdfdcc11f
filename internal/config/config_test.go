package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := LoadFrom("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != "3000" {
			t.Errorf("expected port 3000, got %s", cfg.Port)
		}
		if cfg.ShopName != "songkauf.de" {
			t.Errorf("expected default shop name, got %s", cfg.ShopName)
		}
		if cfg.SupportEmail != cfg.EmailFrom {
			t.Errorf("expected support email to default to sender, got %s", cfg.SupportEmail)
		}
		if !cfg.LicenseDocuments {
			t.Error("expected license documents enabled by default")
		}
		if cfg.ShutdownTimeout != 10*time.Second {
			t.Errorf("expected 10s shutdown timeout, got %s", cfg.ShutdownTimeout)
		}
		if cfg.StoreConfigured() || cfg.EmailConfigured() {
			t.Error("expected nothing configured without credentials")
		}
	})

	t.Run("reads environment", func(t *testing.T) {
		t.Setenv("PORT", "8090")
		t.Setenv("SHOPIFY_STORE", "demo.myshopify.com")
		t.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_x")
		t.Setenv("BREVO_API_KEY", "xkeysib")
		t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
		t.Setenv("LICENSE_DOCUMENTS", "false")

		cfg, err := LoadFrom("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != "8090" {
			t.Errorf("expected port 8090, got %s", cfg.Port)
		}
		if !cfg.StoreConfigured() {
			t.Error("expected store configured")
		}
		if cfg.Transport() != TransportBrevo || !cfg.EmailConfigured() {
			t.Errorf("expected brevo transport, got %q", cfg.Transport())
		}
		if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
			t.Errorf("unexpected brokers: %v", cfg.KafkaBrokers)
		}
		if cfg.LicenseDocuments {
			t.Error("expected license documents disabled")
		}
	})

	t.Run("loads env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("SMTP_HOST=smtp.example.com\nSMTP_PORT=2525\n"), 0o600); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		t.Cleanup(func() {
			_ = os.Unsetenv("SMTP_HOST")
			_ = os.Unsetenv("SMTP_PORT")
		})

		cfg, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Transport() != TransportSMTP {
			t.Errorf("expected smtp transport, got %q", cfg.Transport())
		}
		if cfg.SMTPPort != 2525 {
			t.Errorf("expected port 2525, got %d", cfg.SMTPPort)
		}
	})

	t.Run("missing env file is not an error", func(t *testing.T) {
		if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.env")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects unknown transport", func(t *testing.T) {
		t.Setenv("EMAIL_TRANSPORT", "pigeon")
		if _, err := LoadFrom(""); err == nil {
			t.Error("expected error for unknown transport")
		}
	})

	t.Run("rejects malformed numbers", func(t *testing.T) {
		t.Setenv("SMTP_PORT", "abc")
		if _, err := LoadFrom(""); err == nil {
			t.Error("expected error for malformed port")
		}
	})
}

func TestConfig_Transport(t *testing.T) {
	cfg := Config{EmailTransport: TransportSMTP, BrevoAPIKey: "key"}
	if cfg.Transport() != TransportSMTP {
		t.Errorf("expected explicit smtp to win, got %q", cfg.Transport())
	}
	if cfg.EmailConfigured() {
		t.Error("expected smtp without host to be unconfigured")
	}
}
