// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/northbound/inkstream/internal/config"
	"github.com/northbound/inkstream/internal/fulltext"
	"github.com/northbound/inkstream/internal/handler"
	"github.com/northbound/inkstream/internal/telemetry"
	"github.com/northbound/inkstream/internal/usecase"
)

var (
	configPath = flag.String("config", "", "path to config.yaml (default: search ./config.yaml)")
	logFile    = flag.String("log-file", "", "also append structured logs to this file")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("indexing-worker: no .env file found, continuing with process environment")
	}

	logger, err := telemetry.Init(*logFile)
	if err != nil {
		log.Fatalf("indexing-worker: initializing logger: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("indexing-worker: loading config: %v", err)
	}
	if err := cfg.EnsureDataDirs(); err != nil {
		logger.Fatalf("indexing-worker: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := amqp.Dial(cfg.Broker.URL)
	if err != nil {
		logger.Fatalf("indexing-worker: dialing broker: %v", err)
	}
	defer conn.Close()

	index, err := fulltext.Open(cfg.Index.BlevePath)
	if err != nil {
		logger.Fatalf("indexing-worker: opening full-text index: %v", err)
	}
	defer index.Close()

	indexing := &usecase.Indexing{Index: index}

	consumeChannel, err := conn.Channel()
	if err != nil {
		logger.Fatalf("indexing-worker: opening consumer channel: %v", err)
	}
	defer consumeChannel.Close()

	runtime := &handler.Runtime{
		Channel:      consumeChannel,
		ExchangeName: cfg.Broker.ExchangeName,
		QueuePrefix:  "indexing",
		RoutingKey:   usecase.ContentExtractedRoutingKey,
		Logger:       logger,
		Handle: func(ctx context.Context, delivery amqp.Delivery) error {
			content, err := handler.Decode[usecase.ExtractedContent](delivery)
			if err != nil {
				return err
			}
			return indexing.Run(ctx, usecase.IndexRequest{ExtractedContent: content})
		},
	}

	logger.Info("indexing-worker: bound, consuming extracted content")
	if err := runtime.Bind(ctx); err != nil {
		logger.Fatalf("indexing-worker: %v", err)
	}
	logger.Info("indexing-worker: shut down")
}
