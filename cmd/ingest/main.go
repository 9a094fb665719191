// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Command ingest uploads a local EPUB or PDF to the blob store, records
// its source-meta row, and publishes an extract job — the entry point
// that starts a document moving through extraction, indexing, and
// embedding.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/northbound/inkstream/internal/blobstore"
	"github.com/northbound/inkstream/internal/broker"
	"github.com/northbound/inkstream/internal/config"
	"github.com/northbound/inkstream/internal/metarepo"
	"github.com/northbound/inkstream/internal/usecase"
)

var (
	configPath = flag.String("config", "", "path to config.yaml (default: search ./config.yaml)")
	sourceFile = flag.String("file", "", "path to the local EPUB or PDF to ingest (required)")
	blobPath   = flag.String("blob-path", "", "object key to store the upload under (default: the file's base name)")
	userID     = flag.String("user-id", "cli", "user-id to record on the source-meta row")
)

func main() {
	flag.Parse()

	if *sourceFile == "" {
		log.Fatal("ingest: -file is required")
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("ingest: no .env file found, continuing with process environment")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("ingest: loading config: %v", err)
	}
	if err := cfg.EnsureDataDirs(); err != nil {
		log.Fatalf("ingest: %v", err)
	}

	format, err := detectFormat(*sourceFile)
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}

	data, err := os.ReadFile(*sourceFile)
	if err != nil {
		log.Fatalf("ingest: reading %s: %v", *sourceFile, err)
	}

	path := *blobPath
	if path == "" {
		path = filepath.Base(*sourceFile)
	}

	ctx := context.Background()

	blobs, err := blobstore.New(ctx, blobstore.Config{
		Region:    cfg.Blob.Region,
		Endpoint:  cfg.Blob.Endpoint,
		Bucket:    cfg.Blob.Bucket,
		AccessKey: cfg.Blob.AccessKey,
		SecretKey: cfg.Blob.SecretKey,
	})
	if err != nil {
		log.Fatalf("ingest: connecting to blob store: %v", err)
	}
	if err := blobs.Put(ctx, path, data); err != nil {
		log.Fatalf("ingest: uploading %s: %v", path, err)
	}

	store, err := metarepo.Open(cfg.Index.MetaDBPath)
	if err != nil {
		log.Fatalf("ingest: opening source-meta store: %v", err)
	}
	defer store.Close()

	id := uuid.NewString()
	tx, err := store.BeginTx(ctx)
	if err != nil {
		log.Fatalf("ingest: beginning source-meta transaction: %v", err)
	}
	if err := store.Add(ctx, tx, usecase.SourceMeta{
		ID:              id,
		UserID:          *userID,
		InitialName:     filepath.Base(*sourceFile),
		ObjectStoreName: path,
		SourceType:      format,
		AddedAt:         time.Now(),
	}); err != nil {
		tx.Rollback()
		log.Fatalf("ingest: recording source-meta: %v", err)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("ingest: committing source-meta: %v", err)
	}

	conn, err := amqp.Dial(cfg.Broker.URL)
	if err != nil {
		log.Fatalf("ingest: dialing broker: %v", err)
	}
	defer conn.Close()

	repo := broker.New(conn, cfg.Broker.ExchangeName)
	if err := repo.TryInit(); err != nil {
		log.Fatalf("ingest: declaring exchange: %v", err)
	}

	job, err := json.Marshal(usecase.ExtractJob{
		SourceMetaID:        id,
		ObjectStorePathName: path,
		SourceType:          format,
		SourceInitialName:   filepath.Base(*sourceFile),
	})
	if err != nil {
		log.Fatalf("ingest: encoding job: %v", err)
	}
	if err := repo.Publish(ctx, usecase.ExtractJobRoutingKey, job); err != nil {
		log.Fatalf("ingest: publishing extract job: %v", err)
	}

	fmt.Printf("ingest: queued %s (id=%s, format=%s)\n", path, id, format)
}

func detectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".epub":
		return "epub", nil
	case ".pdf":
		return "pdf", nil
	default:
		return "", fmt.Errorf("unsupported file extension %q, expected .epub or .pdf", filepath.Ext(path))
	}
}
