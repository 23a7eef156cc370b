package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bingshan1999/TaskManager/internal/cfg"
	"github.com/bingshan1999/TaskManager/internal/logger"
	"github.com/bingshan1999/TaskManager/internal/notification"
)

func main() {
	conf, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("notification", conf.Env, conf.LogLevel)

	if !conf.Kafka.Enabled() {
		log.Fatal().Msg("KAFKA_BROKERS must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := notification.NewLogNotifier(log)
	handler := notification.NewEventHandler(notifier, log)
	consumer := notification.NewKafkaConsumer(conf.Kafka.Brokers, conf.Kafka.Topic, conf.Kafka.GroupID, handler, log)
	defer consumer.Close()

	log.Info().
		Str("topic", conf.Kafka.Topic).
		Str("group", conf.Kafka.GroupID).
		Msg("kafka consumer subscribing")

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("consumer error")
	}

	log.Info().Msg("notification service stopped")
}
