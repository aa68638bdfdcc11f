package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/download-delivery/internal/catalog"
	"github.com/joao-fontenele/download-delivery/internal/config"
	"github.com/joao-fontenele/download-delivery/internal/delivery"
	"github.com/joao-fontenele/download-delivery/internal/messaging"
	"github.com/joao-fontenele/download-delivery/internal/telemetry"
	"github.com/joao-fontenele/download-delivery/internal/webhook"
)

const (
	serviceName    = "download-notifier"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	pipelineMetrics, err := telemetry.NewGlobalPipelineMetrics()
	if err != nil {
		logger.Error("failed to create pipeline metrics", "error", err)
		os.Exit(1)
	}

	if !cfg.StoreConfigured() {
		logger.Warn("SHOPIFY_STORE or SHOPIFY_ACCESS_TOKEN missing, catalog lookups will fail")
	}
	if !cfg.EmailConfigured() {
		logger.Warn("no email transport configured, deliveries will fail")
	}

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	lookup := catalog.NewClient(catalog.Endpoint(cfg.ShopifyStore, cfg.ShopifyAPIVersion), cfg.ShopifyAccessToken, httpClient)
	resolver := catalog.NewResolver(lookup, pipelineMetrics, logger)

	sender, err := delivery.NewSender(cfg, httpClient)
	if err != nil {
		logger.Error("failed to create email sender", "error", err)
		os.Exit(1)
	}

	renderer := delivery.Renderer{
		ShopName:     cfg.ShopName,
		LogoURL:      cfg.ShopLogoURL,
		SupportEmail: cfg.SupportEmail,
	}

	var dispatcherOpts []delivery.DispatcherOption
	if cfg.LicenseDocuments {
		logoURL := cfg.ShopLogoURL
		dispatcherOpts = append(dispatcherOpts, delivery.WithLicenseDocuments(func(ctx context.Context) *delivery.Logo {
			return delivery.FetchLogo(ctx, httpClient, logoURL)
		}))
	}
	dispatcher := delivery.NewDispatcher(sender, renderer, logger, dispatcherOpts...)

	handlerOpts := []webhook.Option{webhook.WithMetrics(pipelineMetrics)}
	if cfg.ShopifyWebhookSecret != "" {
		handlerOpts = append(handlerOpts, webhook.WithSecret(cfg.ShopifyWebhookSecret))
	} else {
		logger.Warn("SHOPIFY_WEBHOOK_SECRET not set, webhook signatures are not verified")
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.DeliveryTopic)
		defer func() { _ = producer.Close() }()
		handlerOpts = append(handlerOpts, webhook.WithPublisher(producer))
		logger.Info("publishing delivery outcomes", "brokers", cfg.KafkaBrokers, "topic", producer.Topic())
	}

	handler := webhook.NewHandler(resolver, dispatcher, webhook.Status{
		StoreConfigured: cfg.StoreConfigured(),
		EmailConfigured: cfg.EmailConfigured(),
	}, logger, handlerOpts...)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", telemetry.WithHTTPRoute(handler.HandleHealth))
	mux.HandleFunc("POST /webhooks/orders-paid", telemetry.WithHTTPRoute(handler.HandleOrdersPaid))
	mux.HandleFunc("POST /webhooks/orders-create", telemetry.WithHTTPRoute(handler.HandleOrdersCreate))
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting download notifier", "port", cfg.Port, "transport", string(cfg.Transport()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	drained := make(chan struct{})
	go func() {
		handler.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		logger.Info("in-flight deliveries finished")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout reached with deliveries still in flight")
	}
}
