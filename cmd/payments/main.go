package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/application/handlers"
	"github.com/clearbill/payments/internal/config"
	"github.com/clearbill/payments/internal/domain"
	"github.com/clearbill/payments/internal/infrastructure/credentials"
	"github.com/clearbill/payments/internal/infrastructure/events"
	"github.com/clearbill/payments/internal/infrastructure/gateway"
	"github.com/clearbill/payments/internal/infrastructure/persistence/postgres"
	"github.com/clearbill/payments/internal/infrastructure/queue"
	"github.com/clearbill/payments/internal/infrastructure/subscription"
	"github.com/clearbill/payments/internal/reporting"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting payments service",
		"env", cfg.Primary.Env,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db)
	uow := postgres.NewUnitOfWork(db)

	var creds application.CredentialsProvider
	if len(cfg.Credentials.EncryptedBlobs) > 0 {
		kmsProvider, err := credentials.NewKMSProvider(ctx, cfg.Credentials)
		if err != nil {
			logger.Error("failed to initialize credentials provider", "error", err)
			os.Exit(1)
		}
		creds = kmsProvider
	} else {
		logger.Warn("no encrypted credentials configured, using static development credentials")
		creds = credentials.NewStaticProvider(map[domain.GatewayID]application.Credentials{
			domain.GatewayCard:       {MerchantID: "dev"},
			domain.GatewayACH:        {MerchantID: "dev"},
			domain.GatewayTokenProxy: {MerchantID: "dev"},
		})
	}

	publisher, err := events.NewKafkaPublisher(cfg.Kafka, logger)
	if err != nil {
		logger.Error("failed to connect to kafka", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	cardClient := gateway.NewHTTPGatewayClient(domain.GatewayCard, cfg.Gateways.Cardworks)
	achClient := gateway.NewHTTPGatewayClient(domain.GatewayACH, cfg.Gateways.ACHDirect)
	proxyClient := gateway.NewTokenProxyGateway(
		gateway.NewHTTPGatewayClient(domain.GatewayTokenProxy, cfg.Gateways.Cardworks),
		cfg.Gateways.TokenProxy,
	)

	gateways := application.GatewayRegistry{
		domain.GatewayCard:       gateway.NewRetryGateway(cardClient, cfg.Retry),
		domain.GatewayACH:        gateway.NewRetryGateway(achClient, cfg.Retry),
		domain.GatewayTokenProxy: gateway.NewRetryGateway(proxyClient, cfg.Retry),
		domain.GatewayCheck:      gateway.NewManualGateway(),
	}

	subscriptions := subscription.NewHTTPClient(cfg.Subscription)

	handlerSet := handlers.NewSet(repos, uow, gateways, creds, subscriptions, publisher, logger)

	consumer, err := queue.NewConsumer(cfg.Kafka, queue.NewDispatcher(handlerSet, logger), logger)
	if err != nil {
		logger.Error("failed to join command consumer group", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	reportStore := reporting.NewRedisStore(cfg.Redis, cfg.Reporting.ReportTTL)
	defer reportStore.Close()

	reconciler := reporting.NewReconciler(repos, reportStore, cfg.Reporting, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go consumer.Start(workerCtx)
	go reconciler.Start(workerCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancelWorkers()
}
