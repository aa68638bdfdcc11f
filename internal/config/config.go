package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Transport string

const (
	TransportNone  Transport = ""
	TransportBrevo Transport = "brevo"
	TransportSMTP  Transport = "smtp"
)

type Config struct {
	Port string

	ShopifyStore         string
	ShopifyAccessToken   string
	ShopifyAPIVersion    string
	ShopifyWebhookSecret string

	EmailTransport Transport
	BrevoAPIKey    string
	BrevoAPIURL    string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string

	EmailFrom        string
	ShopName         string
	ShopLogoURL      string
	SupportEmail     string
	LicenseDocuments bool

	KafkaBrokers  []string
	DeliveryTopic string

	OTLPEndpoint    string
	ShutdownTimeout time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("SHOPIFY_API_VERSION", "2024-01")
	v.SetDefault("BREVO_API_URL", "https://api.brevo.com")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("EMAIL_FROM", "info@songkauf.de")
	v.SetDefault("SHOP_NAME", "songkauf.de")
	v.SetDefault("LICENSE_DOCUMENTS", "true")
	v.SetDefault("DELIVERY_TOPIC", "download.delivery")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// Load reads an optional .env file from the working directory and then the
// process environment.
func Load() (Config, error) {
	return LoadFrom(".env")
}

func LoadFrom(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	cfg := Config{
		Port:                 v.GetString("PORT"),
		ShopifyStore:         strings.TrimSpace(v.GetString("SHOPIFY_STORE")),
		ShopifyAccessToken:   strings.TrimSpace(v.GetString("SHOPIFY_ACCESS_TOKEN")),
		ShopifyAPIVersion:    v.GetString("SHOPIFY_API_VERSION"),
		ShopifyWebhookSecret: strings.TrimSpace(v.GetString("SHOPIFY_WEBHOOK_SECRET")),
		BrevoAPIKey:          strings.TrimSpace(v.GetString("BREVO_API_KEY")),
		BrevoAPIURL:          strings.TrimRight(v.GetString("BREVO_API_URL"), "/"),
		SMTPHost:             strings.TrimSpace(v.GetString("SMTP_HOST")),
		SMTPUser:             v.GetString("SMTP_USER"),
		SMTPPassword:         v.GetString("SMTP_PASSWORD"),
		EmailFrom:            v.GetString("EMAIL_FROM"),
		ShopName:             v.GetString("SHOP_NAME"),
		ShopLogoURL:          strings.TrimSpace(v.GetString("SHOP_LOGO_URL")),
		SupportEmail:         v.GetString("SUPPORT_EMAIL"),
		DeliveryTopic:        v.GetString("DELIVERY_TOPIC"),
		OTLPEndpoint:         v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if cfg.SupportEmail == "" {
		cfg.SupportEmail = cfg.EmailFrom
	}

	switch t := Transport(strings.ToLower(strings.TrimSpace(v.GetString("EMAIL_TRANSPORT")))); t {
	case TransportNone, TransportBrevo, TransportSMTP:
		cfg.EmailTransport = t
	default:
		return Config{}, fmt.Errorf("unknown EMAIL_TRANSPORT %q", t)
	}

	port, err := strconv.Atoi(v.GetString("SMTP_PORT"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SMTP_PORT: %w", err)
	}
	cfg.SMTPPort = port

	licenses, err := strconv.ParseBool(v.GetString("LICENSE_DOCUMENTS"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LICENSE_DOCUMENTS: %w", err)
	}
	cfg.LicenseDocuments = licenses

	timeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = timeout

	for _, broker := range strings.Split(v.GetString("KAFKA_BROKERS"), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}

	return cfg, nil
}

// Transport resolves the delivery channel. An explicit EMAIL_TRANSPORT wins;
// otherwise the first channel with credentials present is used.
func (c Config) Transport() Transport {
	if c.EmailTransport != TransportNone {
		return c.EmailTransport
	}
	if c.BrevoAPIKey != "" {
		return TransportBrevo
	}
	if c.SMTPHost != "" {
		return TransportSMTP
	}
	return TransportNone
}

func (c Config) StoreConfigured() bool {
	return c.ShopifyStore != "" && c.ShopifyAccessToken != ""
}

func (c Config) EmailConfigured() bool {
	switch c.Transport() {
	case TransportBrevo:
		return c.BrevoAPIKey != ""
	case TransportSMTP:
		return c.SMTPHost != ""
	default:
		return false
	}
}
