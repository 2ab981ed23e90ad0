package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/retail-backoffice/internal/config"
	"github.com/example/retail-backoffice/internal/email"
	"github.com/example/retail-backoffice/internal/infrastructure/kafka"
	"github.com/example/retail-backoffice/internal/notification"
	"github.com/example/retail-backoffice/internal/observability"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadAlerter()
	if err != nil {
		os.Stderr.WriteString("[Alerter] " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("[Alerter] " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting stock alerter",
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group", cfg.KafkaGroupID),
		zap.String("alert_to", cfg.AlertMailTo),
	)

	emailSvc := email.NewService(cfg.MailFrom, logger)
	handler := notification.NewHandler(emailSvc, cfg.AlertMailTo, logger)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, logger)
	defer consumer.Close()

	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", zap.Error(err))
		return
	}
	logger.Info("shutting down")
}
