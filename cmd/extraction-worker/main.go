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

	"github.com/northbound/inkstream/internal/blobstore"
	"github.com/northbound/inkstream/internal/broker"
	"github.com/northbound/inkstream/internal/config"
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
		log.Printf("extraction-worker: no .env file found, continuing with process environment")
	}

	logger, err := telemetry.Init(*logFile)
	if err != nil {
		log.Fatalf("extraction-worker: initializing logger: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("extraction-worker: loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := amqp.Dial(cfg.Broker.URL)
	if err != nil {
		logger.Fatalf("extraction-worker: dialing broker: %v", err)
	}
	defer conn.Close()

	repo := broker.New(conn, cfg.Broker.ExchangeName)
	if err := repo.TryInit(); err != nil {
		logger.Fatalf("extraction-worker: declaring exchange: %v", err)
	}

	blobs, err := blobstore.New(ctx, blobstore.Config{
		Region:    cfg.Blob.Region,
		Endpoint:  cfg.Blob.Endpoint,
		Bucket:    cfg.Blob.Bucket,
		AccessKey: cfg.Blob.AccessKey,
		SecretKey: cfg.Blob.SecretKey,
	})
	if err != nil {
		logger.Fatalf("extraction-worker: connecting to blob store: %v", err)
	}

	extraction := &usecase.Extraction{
		Blobs:           blobs,
		Publisher:       repo,
		WordsPerChunk:   cfg.Chunking.WordsPerChunk,
		MaxChunksPerJob: cfg.Chunking.MaxChunksPerJob,
	}

	consumeChannel, err := conn.Channel()
	if err != nil {
		logger.Fatalf("extraction-worker: opening consumer channel: %v", err)
	}
	defer consumeChannel.Close()

	runtime := &handler.Runtime{
		Channel:      consumeChannel,
		ExchangeName: cfg.Broker.ExchangeName,
		QueuePrefix:  "extraction",
		RoutingKey:   usecase.ExtractJobRoutingKey,
		Logger:       logger,
		Handle: func(ctx context.Context, delivery amqp.Delivery) error {
			job, err := handler.Decode[usecase.ExtractJob](delivery)
			if err != nil {
				return err
			}
			return extraction.Run(ctx, job)
		},
	}

	logger.Info("extraction-worker: bound, consuming extract jobs")
	if err := runtime.Bind(ctx); err != nil {
		logger.Fatalf("extraction-worker: %v", err)
	}
	logger.Info("extraction-worker: shut down")
}
