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
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/northbound/inkstream/internal/config"
	"github.com/northbound/inkstream/internal/embeddings"
	"github.com/northbound/inkstream/internal/handler"
	"github.com/northbound/inkstream/internal/telemetry"
	"github.com/northbound/inkstream/internal/usecase"
	"github.com/northbound/inkstream/internal/vectordb"
)

var (
	configPath = flag.String("config", "", "path to config.yaml (default: search ./config.yaml)")
	logFile    = flag.String("log-file", "", "also append structured logs to this file")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("embedding-worker: no .env file found, continuing with process environment")
	}

	logger, err := telemetry.Init(*logFile)
	if err != nil {
		log.Fatalf("embedding-worker: initializing logger: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("embedding-worker: loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := amqp.Dial(cfg.Broker.URL)
	if err != nil {
		logger.Fatalf("embedding-worker: dialing broker: %v", err)
	}
	defer conn.Close()

	embedder, err := embeddings.NewEmbedder(cfg.Embed.Provider, map[string]string{
		"api_key":  cfg.Embed.APIKey,
		"model":    cfg.Embed.Model,
		"base_url": cfg.Embed.BaseURL,
	})
	if err != nil {
		logger.Fatalf("embedding-worker: initializing embedder %q: %v", cfg.Embed.Provider, err)
	}
	generator := &embeddings.SentenceGenerator{Embedder: embedder}

	var vectors usecase.VectorStore
	qdrantConn, err := grpc.Dial(cfg.Vector.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Warnf("embedding-worker: dialing qdrant at %s: %v, falling back to a no-op vector store", cfg.Vector.Address, err)
		vectors = &vectordb.Mock{}
	} else {
		defer qdrantConn.Close()
		qdrantStore, err := vectordb.New(qdrantConn, cfg.Vector.Collection)
		if err != nil {
			logger.Warnf("embedding-worker: initializing qdrant collection %q: %v, falling back to a no-op vector store", cfg.Vector.Collection, err)
			vectors = &vectordb.Mock{}
		} else {
			vectors = qdrantStore
		}
	}

	embedding := &usecase.Embedding{Embedder: generator, Vectors: vectors}

	consumeChannel, err := conn.Channel()
	if err != nil {
		logger.Fatalf("embedding-worker: opening consumer channel: %v", err)
	}
	defer consumeChannel.Close()

	runtime := &handler.Runtime{
		Channel:      consumeChannel,
		ExchangeName: cfg.Broker.ExchangeName,
		QueuePrefix:  "embedding",
		RoutingKey:   usecase.ContentExtractedRoutingKey,
		Logger:       logger,
		Handle: func(ctx context.Context, delivery amqp.Delivery) error {
			content, err := handler.Decode[usecase.ExtractedContent](delivery)
			if err != nil {
				return err
			}
			return embedding.Run(ctx, usecase.EmbedRequest{ExtractedContent: content})
		},
	}

	logger.Info("embedding-worker: bound, consuming extracted content")
	if err := runtime.Bind(ctx); err != nil {
		logger.Fatalf("embedding-worker: %v", err)
	}
	logger.Info("embedding-worker: shut down")
}
