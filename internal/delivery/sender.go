package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/joao-fontenele/download-delivery/internal/config"
	"github.com/joao-fontenele/download-delivery/internal/domain"
)

var ErrNoTransport = errors.New("no email transport configured")

type Sender interface {
	Send(ctx context.Context, msg domain.DeliveryMessage) error
}

// Identity is the sender shown to recipients on every transport.
type Identity struct {
	Name  string
	Email string
}

// NewSender returns the single transport selected by configuration.
func NewSender(cfg config.Config, client *http.Client) (Sender, error) {
	identity := Identity{Name: cfg.ShopName, Email: cfg.EmailFrom}

	switch t := cfg.Transport(); t {
	case config.TransportBrevo:
		return NewBrevoSender(cfg.BrevoAPIURL, cfg.BrevoAPIKey, identity, client), nil
	case config.TransportSMTP:
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
		}, identity), nil
	case config.TransportNone:
		return unconfiguredSender{}, nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", t)
	}
}

type unconfiguredSender struct{}

func (unconfiguredSender) Send(context.Context, domain.DeliveryMessage) error {
	return ErrNoTransport
}
