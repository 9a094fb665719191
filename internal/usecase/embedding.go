// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package usecase

import (
	"context"
	"fmt"
)

// Embedding turns one ExtractedContent message into one vector per
// sentence and upserts them into the vector store, each payload carrying
// the chunk's structural metadata plus its sentence index.
type Embedding struct {
	Embedder Embedder
	Vectors  VectorStore
}

// Run embeds req.Content and upserts the resulting vectors.
func (u *Embedding) Run(ctx context.Context, req EmbedRequest) error {
	vectors, err := u.Embedder.Generate(ctx, req.Content)
	if err != nil {
		return Wrap(KindTransientUpstream, fmt.Errorf("embedding %s: %w", req.ID, err))
	}
	if len(vectors) == 0 {
		return nil
	}

	payloads := make([]map[string]any, len(vectors))
	for i := range vectors {
		payload := make(map[string]any, len(req.Metadata)+1)
		for k, v := range req.Metadata {
			payload[k] = v
		}
		payload["sentence_index"] = i
		payloads[i] = payload
	}

	if err := u.Vectors.BatchUpsert(ctx, req.ID, vectors, payloads); err != nil {
		return Wrap(KindTransientUpstream, fmt.Errorf("upserting vectors for %s: %w", req.ID, err))
	}
	return nil
}
