// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package fulltext

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"

	"github.com/northbound/inkstream/internal/usecase"
)

// Index is an in-process bleve full-text index, one document per
// ExtractedContent.ID. Satisfies usecase.FullTextIndex.
type Index struct {
	bm25 bleve.Index
}

// Open opens the bleve index at path, creating it (with a default
// mapping) if it doesn't exist yet.
func Open(path string) (*Index, error) {
	var idx bleve.Index
	var err error

	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		mapping := bleve.NewIndexMapping()
		idx, err = bleve.New(path, mapping)
	} else {
		idx, err = bleve.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("fulltext: opening index at %s: %w", path, err)
	}
	return &Index{bm25: idx}, nil
}

// Close closes the underlying bleve index.
func (i *Index) Close() error { return i.bm25.Close() }

// indexedDoc is the document bleve actually indexes. Metadata is stored as
// a marshaled JSON string rather than a nested object: bleve's default
// mapping flattens a map[string]any field into dotted leaf subfields
// (metadata.xml.title, …) rather than keeping it queryable as one stored
// value, so a plain struct field round-trips through Search but a map one
// does not.
type indexedDoc struct {
	Content  string `json:"content"`
	Metadata string `json:"metadata"`
}

// Save indexes doc, replacing any prior document with the same ID.
func (i *Index) Save(ctx context.Context, doc usecase.ExtractedContent) error {
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("fulltext: marshaling metadata for %s: %w", doc.ID, err)
	}
	if err := i.bm25.Index(doc.ID, indexedDoc{Content: doc.Content, Metadata: string(metadata)}); err != nil {
		return fmt.Errorf("fulltext: indexing %s: %w", doc.ID, err)
	}
	return nil
}

// Search runs a bleve match query over the content field, returning up
// to limit hits ordered by descending score.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]usecase.Hit, error) {
	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("content")
	request := bleve.NewSearchRequest(matchQuery)
	request.Size = limit
	request.Fields = []string{"content", "metadata"}

	result, err := i.bm25.Search(request)
	if err != nil {
		return nil, fmt.Errorf("fulltext: searching %q: %w", query, err)
	}

	hits := make([]usecase.Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hit := usecase.Hit{ID: h.ID, Score: h.Score}
		if content, ok := h.Fields["content"].(string); ok {
			hit.Content = content
		}
		if metadata, ok := h.Fields["metadata"].(string); ok {
			var decoded map[string]any
			if err := json.Unmarshal([]byte(metadata), &decoded); err == nil {
				hit.Metadata = decoded
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
