package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joao-fontenele/download-delivery/internal/domain"
)

var ErrNoAssets = errors.New("no downloadable assets")

// LogoSource returns the logo for license documents, or nil.
type LogoSource func(ctx context.Context) *Logo

type Dispatcher struct {
	sender   Sender
	renderer Renderer
	licenses bool
	logo     LogoSource
	shopName string
	now      func() time.Time
	logger   *slog.Logger
}

type DispatcherOption func(*Dispatcher)

// WithLicenseDocuments attaches one license PDF per asset.
func WithLicenseDocuments(logo LogoSource) DispatcherOption {
	return func(d *Dispatcher) {
		d.licenses = true
		d.logo = logo
	}
}

func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

func NewDispatcher(sender Sender, renderer Renderer, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender:   sender,
		renderer: renderer,
		shopName: renderer.ShopName,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BuildMessage renders the delivery email for an order.
func (d *Dispatcher) BuildMessage(ctx context.Context, order *domain.OrderEvent, assets []domain.DownloadableAsset) (domain.DeliveryMessage, error) {
	html, text, err := d.renderer.Render(order.BuyerFirstName(), assets)
	if err != nil {
		return domain.DeliveryMessage{}, err
	}

	msg := domain.DeliveryMessage{
		To:      order.Email,
		ToName:  salutation(order.BuyerFirstName()),
		Subject: d.renderer.Subject(),
		HTML:    html,
		Text:    text,
	}

	if d.licenses {
		msg.Attachments = d.licenseAttachments(ctx, order, assets)
	}

	return msg, nil
}

func (d *Dispatcher) licenseAttachments(ctx context.Context, order *domain.OrderEvent, assets []domain.DownloadableAsset) []domain.Attachment {
	var logo *Logo
	if d.logo != nil {
		logo = d.logo(ctx)
	}
	doc := LicenseDocument{ShopName: d.shopName, Logo: logo}
	now := d.now()

	var attachments []domain.Attachment
	taken := make(map[string]bool, len(assets))
	for _, asset := range assets {
		record := NewLicenseRecord(order, asset, now)
		content, err := doc.Render(record, now)
		if err != nil {
			d.logger.Error("failed to render license document", "error", err, "product", asset.ProductTitle)
			continue
		}
		attachments = append(attachments, domain.Attachment{
			Name:        uniqueName(AttachmentName(asset.ProductTitle), taken),
			ContentType: "application/pdf",
			Content:     content,
		})
	}
	return attachments
}

// Dispatch renders and sends one delivery email. The caller decides what to
// do with the error; there is no retry.
func (d *Dispatcher) Dispatch(ctx context.Context, order *domain.OrderEvent, assets []domain.DownloadableAsset) error {
	if len(assets) == 0 {
		return ErrNoAssets
	}

	msg, err := d.BuildMessage(ctx, order, assets)
	if err != nil {
		return fmt.Errorf("build delivery message: %w", err)
	}

	d.logger.Info("sending email", "to", msg.To, "downloads", len(assets), "attachments", len(msg.Attachments))

	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send delivery email: %w", err)
	}
	return nil
}
