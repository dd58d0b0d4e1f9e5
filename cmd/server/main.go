package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"bookshelfWs/internal/config"
	"bookshelfWs/internal/modules/listing/application/handler"
	"bookshelfWs/internal/modules/listing/application/usecase"
	"bookshelfWs/internal/modules/listing/infrastructure"
	transport "bookshelfWs/internal/modules/listing/interface"
	"bookshelfWs/internal/platform/broker"
	"bookshelfWs/internal/shared/auth"
	"bookshelfWs/internal/shared/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, _, err := logging.Setup(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Directory: cfg.Logging.Directory,
		AddSource: true,
	}, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID))

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", slog.Any("error", err))
		logFile.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	validator := auth.NewJWTValidator(cfg.Security.JWTSecret)
	if cfg.Security.JWTPublicKey != "" {
		validator = auth.NewJWTValidatorWithPublicKey(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey)
	}

	backend := infrastructure.NewBackendClient(cfg.REST.BaseURL, cfg.REST.Timeout)
	if cfg.Media.UploadURL == "" {
		slog.Warn("media uploads disabled: MEDIA_UPLOAD_URL is empty")
	}
	uploader := infrastructure.NewMediaUploader(cfg.Media.UploadURL, cfg.Media.Preset, cfg.Media.MaxBytes, cfg.Media.Timeout)
	metrics := infrastructure.NewMetrics()
	hub := infrastructure.NewHub()

	browseUC, err := usecase.NewBrowseUseCase(validator, backend, usecase.NewScreenRegistry(nil).WithImageBase(cfg.Media.ImageBase), hub, usecase.BrowseOptions{
		MaxSessions:        cfg.Listing.MaxSessions,
		RefreshConcurrency: cfg.Listing.RefreshConcurrency,
		Metrics:            metrics,
	})
	if err != nil {
		return fmt.Errorf("browse use case: %w", err)
	}
	mutateUC := usecase.NewMutateUseCase(browseUC, backend, metrics)
	cartUC := usecase.NewCartUseCase(browseUC, backend)
	publishUC := usecase.NewPublishBookUseCase(uploader, backend, metrics)
	accountUC := usecase.NewAccountUseCase(browseUC, backend)

	registry := infrastructure.NewHandlerRegistry()
	for entity, topics := range cfg.Kafka.Topics {
		for _, topic := range topics {
			registry.Register(handler.NewEntityStreamHandler(entity, topic, cfg.Listing.AllowedActions, hub, browseUC))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumers := broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID, registry.Topics())

	poller := infrastructure.NewPoller(browseUC, cfg.Listing.PollInterval)
	if err := poller.Watch(browseUC.Screens().Polled()...); err != nil {
		return fmt.Errorf("poller: %w", err)
	}
	poller.Start()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	transport.Routes{
		Screens: transport.NewScreenHandler(browseUC, mutateUC, cartUC, publishUC, cfg.Media.MaxBytes),
		Account: transport.NewAccountHandler(accountUC),
		Websocket: transport.NewScreenWebsocketHandler(hub, browseUC, mutateUC, transport.WebsocketOptions{
			DebounceWait:   cfg.Listing.DebounceWait,
			AllowedActions: cfg.Listing.AllowedActions,
		}),
		Metrics: metrics.Handler(),
	}.Register(e)

	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		slog.Info("shutting down", slog.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	poller.Stop(shutdownCtx)
	cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown error", slog.Any("error", err))
	}
	consumers.Wait()
	slog.Info("shutdown complete", slog.Int("clients", hub.Clients()))
	return nil
}
