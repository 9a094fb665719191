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

	"github.com/northbound/inkstream/internal/broker"
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
		log.Printf("search-worker: no .env file found, continuing with process environment")
	}

	logger, err := telemetry.Init(*logFile)
	if err != nil {
		log.Fatalf("search-worker: initializing logger: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("search-worker: loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := amqp.Dial(cfg.Broker.URL)
	if err != nil {
		logger.Fatalf("search-worker: dialing broker: %v", err)
	}
	defer conn.Close()

	repo := broker.New(conn, cfg.Broker.ExchangeName)
	if err := repo.TryInit(); err != nil {
		logger.Fatalf("search-worker: declaring exchange: %v", err)
	}

	index, err := fulltext.Open(cfg.Index.BlevePath)
	if err != nil {
		logger.Fatalf("search-worker: opening full-text index: %v", err)
	}
	defer index.Close()

	search := &usecase.Search{Index: index, Responder: repo}

	consumeChannel, err := conn.Channel()
	if err != nil {
		logger.Fatalf("search-worker: opening consumer channel: %v", err)
	}
	defer consumeChannel.Close()

	runtime := &handler.Runtime{
		Channel:      consumeChannel,
		ExchangeName: cfg.Broker.ExchangeName,
		QueuePrefix:  "search",
		RoutingKey:   usecase.SearchRoutingKey,
		RequireReply: true,
		Logger:       logger,
		Handle: func(ctx context.Context, delivery amqp.Delivery) error {
			req, err := handler.Decode[usecase.SearchRequest](delivery)
			if err != nil {
				return err
			}
			return search.Run(ctx, delivery.ReplyTo, delivery.CorrelationId, req)
		},
	}

	logger.Info("search-worker: bound, serving search rpcs")
	if err := runtime.Bind(ctx); err != nil {
		logger.Fatalf("search-worker: %v", err)
	}
	logger.Info("search-worker: shut down")
}
