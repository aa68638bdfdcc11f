package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/joao-fontenele/download-delivery/internal/delivery"
	"github.com/joao-fontenele/download-delivery/internal/domain"
)

const (
	TopicOrdersPaid   = "orders/paid"
	TopicOrdersCreate = "orders/create"

	maxBodyBytes = 1 << 20
)

var tracer = otel.Tracer("webhook")

type AssetResolver interface {
	Resolve(ctx context.Context, items []domain.LineItem) []domain.DownloadableAsset
}

type Dispatcher interface {
	Dispatch(ctx context.Context, order *domain.OrderEvent, assets []domain.DownloadableAsset) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Metrics interface {
	WebhookReceived(ctx context.Context, topic string)
	OrderSkipped(ctx context.Context, reason string)
	DeliveryAttempted(ctx context.Context, result string)
}

// Status is what the health endpoint reports. Credentials are checked for
// presence only.
type Status struct {
	StoreConfigured bool
	EmailConfigured bool
}

type Handler struct {
	resolver   AssetResolver
	dispatcher Dispatcher
	publisher  Publisher
	metrics    Metrics
	secret     string
	status     Status
	validate   *validator.Validate
	now        func() time.Time
	logger     *slog.Logger

	mu       sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

type Option func(*Handler)

func WithPublisher(p Publisher) Option {
	return func(h *Handler) {
		h.publisher = p
	}
}

func WithMetrics(m Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithSecret enables X-Shopify-Hmac-Sha256 verification.
func WithSecret(secret string) Option {
	return func(h *Handler) {
		h.secret = secret
	}
}

func NewHandler(resolver AssetResolver, dispatcher Dispatcher, status Status, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		resolver:   resolver,
		dispatcher: dispatcher,
		status:     status,
		validate:   validator.New(),
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) HandleOrdersPaid(w http.ResponseWriter, r *http.Request) {
	h.receive(w, r, TopicOrdersPaid, delivery.AcceptMissingStatus)
}

func (h *Handler) HandleOrdersCreate(w http.ResponseWriter, r *http.Request) {
	h.receive(w, r, TopicOrdersCreate, delivery.RequireExplicitPaid)
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Store   string `json:"store"`
	Email   string `json:"email"`
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(healthResponse{
		Status:  "running",
		Message: "Download Email App is active",
		Store:   configured(h.status.StoreConfigured),
		Email:   configured(h.status.EmailConfigured),
	})
	if err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// Wait stops accepting webhooks and blocks until every accepted one has
// finished processing. Webhooks arriving afterwards get 503 so the platform
// retries them elsewhere.
func (h *Handler) Wait() {
	h.mu.Lock()
	h.draining = true
	h.mu.Unlock()
	h.inflight.Wait()
}

// accept registers one pipeline run unless the handler is draining.
func (h *Handler) accept() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.draining {
		return false
	}
	h.inflight.Add(1)
	return true
}

// receive acknowledges the webhook and hands the body to a background
// pipeline. The platform never learns the pipeline's outcome.
func (h *Handler) receive(w http.ResponseWriter, r *http.Request, topic string, policy delivery.PaymentPolicy) {
	h.logger.Info("received webhook", "topic", topic)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err, "topic", topic)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if h.secret != "" && !VerifySignature(h.secret, body, r.Header.Get(HeaderHMAC)) {
		h.logger.Warn("rejected webhook with invalid signature", "topic", topic)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	if !h.accept() {
		h.logger.Warn("rejected webhook during shutdown", "topic", topic)
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	if h.metrics != nil {
		h.metrics.WebhookReceived(r.Context(), topic)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))

	ctx := context.WithoutCancel(r.Context())
	go func() {
		defer h.inflight.Done()
		h.process(ctx, topic, policy, body)
	}()
}

func (h *Handler) process(ctx context.Context, topic string, policy delivery.PaymentPolicy, body []byte) {
	ctx, span := tracer.Start(ctx, "process "+topic)
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook processing panicked", "topic", topic, "panic", fmt.Sprint(rec))
			span.SetStatus(codes.Error, "panic")
		}
	}()

	outcome := h.run(ctx, topic, policy, body)

	span.SetAttributes(
		attribute.String("order", outcome.Order),
		attribute.String("delivery.status", string(outcome.Status)),
		attribute.Int("delivery.assets", outcome.Assets),
	)
	if outcome.Status == domain.OutcomeFailed {
		span.SetStatus(codes.Error, outcome.Reason)
	}

	if h.publisher != nil {
		key := outcome.Order
		if key == "" {
			key = outcome.ID
		}
		if err := h.publisher.Publish(ctx, key, outcome); err != nil {
			h.logger.Error("failed to publish delivery outcome", "error", err, "order", outcome.Order)
		}
	}
}

func (h *Handler) run(ctx context.Context, topic string, policy delivery.PaymentPolicy, body []byte) domain.DeliveryOutcome {
	outcome := domain.DeliveryOutcome{
		ID:        uuid.NewString(),
		Topic:     topic,
		Timestamp: h.now().UTC(),
	}

	var order domain.OrderEvent
	if err := json.Unmarshal(body, &order); err != nil {
		h.logger.Error("failed to decode order payload", "error", err, "topic", topic)
		return h.skip(ctx, outcome, "invalid_payload")
	}
	outcome.Order = order.OrderRef()

	if !delivery.ShouldProcess(policy, &order) {
		h.logger.Info("order not paid yet, skipping", "order", outcome.Order, "status", order.Status(), "policy", policy.String())
		return h.skip(ctx, outcome, "not_paid")
	}

	order.Email = strings.TrimSpace(order.Email)
	if order.Email == "" {
		h.logger.Info("no customer email found", "order", outcome.Order)
		return h.skip(ctx, outcome, "no_email")
	}
	if err := h.validate.Struct(&order); err != nil {
		h.logger.Info("invalid customer email, skipping", "order", outcome.Order, "error", err)
		return h.skip(ctx, outcome, "invalid_email")
	}
	outcome.Email = order.Email

	h.logger.Info("processing order", "order", outcome.Order, "email", order.Email, "line_items", len(order.LineItems))

	assets := h.resolver.Resolve(ctx, order.LineItems)
	outcome.Assets = len(assets)
	if len(assets) == 0 {
		h.logger.Info("no downloads found in this order", "order", outcome.Order)
		return h.skip(ctx, outcome, "no_downloads")
	}

	if err := h.dispatcher.Dispatch(ctx, &order, assets); err != nil {
		h.logger.Error("failed to send email", "error", err, "order", outcome.Order, "email", order.Email)
		if h.metrics != nil {
			h.metrics.DeliveryAttempted(ctx, "failed")
		}
		outcome.Status = domain.OutcomeFailed
		outcome.Reason = err.Error()
		return outcome
	}

	h.logger.Info("email sent", "order", outcome.Order, "email", order.Email, "downloads", len(assets))
	if h.metrics != nil {
		h.metrics.DeliveryAttempted(ctx, "sent")
	}
	outcome.Status = domain.OutcomeSent
	return outcome
}

func (h *Handler) skip(ctx context.Context, outcome domain.DeliveryOutcome, reason string) domain.DeliveryOutcome {
	if h.metrics != nil {
		h.metrics.OrderSkipped(ctx, reason)
	}
	outcome.Status = domain.OutcomeSkipped
	outcome.Reason = reason
	return outcome
}
