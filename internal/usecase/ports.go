// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package usecase

import (
	"context"
	"io"
)

// BlobStore is the narrow interface the Extraction use-case needs from
// the blob collaborator: fetch a source document's bytes by path.
type BlobStore interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Publisher is the narrow interface the use-cases need from the message
// broker: fire-and-forget publish, keyed by routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
}

// Responder answers an inbound RPC request, copying its correlation id
// through to the reply.
type Responder interface {
	RPCRespond(ctx context.Context, replyTo, correlationID string, payload []byte) error
}

// FullTextIndex is the narrow interface the Indexing and Search use-cases
// need from the full-text collaborator.
type FullTextIndex interface {
	Save(ctx context.Context, doc ExtractedContent) error
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

// VectorStore is the narrow interface the Embedding use-case needs from
// the vector-store collaborator.
type VectorStore interface {
	BatchUpsert(ctx context.Context, id string, vectors [][]float32, payloads []map[string]any) error
}

// Embedder is the narrow interface the Embedding use-case needs from the
// embedding collaborator: turn text into one vector per sentence.
type Embedder interface {
	Generate(ctx context.Context, text string) ([][]float32, error)
}

// SeekerAt is the minimal capability an in-memory blob view needs to back
// EpubReader's zip.NewReader/PdfReader's in-memory document.
type SeekerAt interface {
	io.ReaderAt
	Size() int64
}
