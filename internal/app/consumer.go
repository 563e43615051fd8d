package app

import (
	"context"
	"fmt"
	"go-crewpay/internal/events"
	"go-crewpay/internal/foreman"
	"go-crewpay/internal/messaging/kafka"
	"go-crewpay/internal/messaging/kafka/consumer"
	"go-crewpay/internal/project"
	"go-crewpay/internal/shared/connection"
	"go-crewpay/internal/shared/counter"
	"os"
	"os/signal"
	"syscall"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	foremanRepo := foreman.NewRepository(gormDB)
	costRepo := project.NewCostRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	counterRepo := counter.NewRepository(gormDB)
	foremanService := foreman.NewService(sqlDB, foremanRepo, costRepo, outboxRepo, counterRepo)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.ForemanInvoiceRecordedTopic,
		GroupID:        "go-crewpay-invoice-mirror",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeInvoiceMirror(ctx, reader, foremanService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
