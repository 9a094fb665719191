// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package vectordb

import (
	"context"

	"github.com/northbound/inkstream/internal/usecase"
)

// Mock is a no-op usecase.VectorStore, used by embedding-worker as a
// fallback when Qdrant cannot be dialed or its collection initialized.
type Mock struct{}

func (m *Mock) BatchUpsert(ctx context.Context, sourceID string, vectors [][]float32, payloads []map[string]any) error {
	return nil
}

var _ usecase.VectorStore = (*Mock)(nil)
