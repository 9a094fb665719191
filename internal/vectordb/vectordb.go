// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package vectordb

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/northbound/inkstream/internal/usecase"
)

// QdrantVectorDB is a thin wrapper around the Qdrant service clients,
// satisfying usecase.VectorStore's BatchUpsert: one point per sentence
// vector, tagged with the source ExtractedContent id.
type QdrantVectorDB struct {
	collectionsSvc qdrant.CollectionsClient
	pointsSvc      qdrant.PointsClient
	collection     string
	dimension      int
}

// New constructs a wrapper over conn and ensures collection exists.
func New(conn *grpc.ClientConn, collection string) (*QdrantVectorDB, error) {
	if conn == nil {
		return nil, errors.New("vectordb: gRPC connection is required")
	}
	if collection == "" {
		collection = "inkstream_chunks"
	}

	vdb := &QdrantVectorDB{
		collectionsSvc: qdrant.NewCollectionsClient(conn),
		pointsSvc:      qdrant.NewPointsClient(conn),
		collection:     collection,
		dimension:      1536,
	}

	if err := vdb.ensureCollection(context.Background(), vdb.dimension); err != nil {
		return nil, fmt.Errorf("ensuring collection: %w", err)
	}
	return vdb, nil
}

// ensureCollection creates the collection if it doesn't exist.
func (q *QdrantVectorDB) ensureCollection(ctx context.Context, dim int) error {
	collections, err := q.collectionsSvc.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("listing collections: %w", err)
	}

	for _, coll := range collections.Collections {
		if coll.Name == q.collection {
			q.dimension = dim
			return nil
		}
	}

	_, err = q.collectionsSvc.Create(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dim),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", q.collection, err)
	}
	log.Printf("vectordb: created collection %s with dimension %d", q.collection, dim)
	q.dimension = dim
	return nil
}

// BatchUpsert implements usecase.VectorStore. vectors and payloads must
// be the same length (one entry per sentence); each point's id is
// derived deterministically from (sourceID, index) so re-embedding the
// same ExtractedContent overwrites rather than duplicates its points.
func (q *QdrantVectorDB) BatchUpsert(ctx context.Context, sourceID string, vectors [][]float32, payloads []map[string]any) error {
	if len(vectors) != len(payloads) {
		return fmt.Errorf("vectordb: %d vectors but %d payloads", len(vectors), len(payloads))
	}
	if len(vectors) == 0 {
		return nil
	}

	if dim := len(vectors[0]); dim != q.dimension {
		if err := q.ensureCollection(ctx, dim); err != nil {
			return err
		}
	}

	points := make([]*qdrant.PointStruct, len(vectors))
	for i, vector := range vectors {
		payload := toQdrantPayload(payloads[i])
		payload["source_id"] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: sourceID}}

		points[i] = &qdrant.PointStruct{
			Id: &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID(sourceID, i)}},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: vector}},
			},
			Payload: payload,
		}
	}

	_, err := q.pointsSvc.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("vectordb: upserting %d points for %s: %w", len(points), sourceID, err)
	}
	return nil
}

// toQdrantPayload converts the usecase-level metadata map (string,
// float64, int, and bool values — the shapes ExtractedContent.Metadata
// actually carries once JSON-decoded) into Qdrant's typed payload
// values, dropping anything else rather than erroring.
func toQdrantPayload(meta map[string]any) map[string]*qdrant.Value {
	payload := make(map[string]*qdrant.Value, len(meta))
	for k, v := range meta {
		switch val := v.(type) {
		case string:
			payload[k] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}
		case float64:
			payload[k] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
		case int:
			payload[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}
		case bool:
			payload[k] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
		}
	}
	return payload
}

// pointID derives a deterministic, valid UUID from (sourceID, index) so
// re-embedding the same sentence overwrites its point instead of
// accumulating duplicates.
func pointID(sourceID string, index int) string {
	return uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("%s-%d", sourceID, index))).String()
}

var _ usecase.VectorStore = (*QdrantVectorDB)(nil)
