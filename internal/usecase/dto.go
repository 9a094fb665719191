// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package usecase

import "time"

// ExtractJob is the inbound DTO for the Extraction use-case, produced
// once per upload and consumed once per successful extraction.
type ExtractJob struct {
	SourceMetaID        string `json:"source_meta_id"`
	ObjectStorePathName string `json:"object_store_path_name"`
	// SourceType disambiguates which reader opens the blob: "epub" or "pdf".
	SourceType        string `json:"source_type"`
	SourceInitialName string `json:"source_initial_name"`
}

// ExtractedContent is published once per chunk produced while extracting
// an ExtractJob, routed with key "content_extracted.v1".
type ExtractedContent struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata"`
	Content  string         `json:"content"`
}

// IndexRequest is the inbound DTO for the Indexing use-case: one
// ExtractedContent to add to the full-text index.
type IndexRequest struct {
	ExtractedContent
}

// EmbedRequest is the inbound DTO for the Embedding use-case: one
// ExtractedContent to vectorize and upsert into the vector store.
type EmbedRequest struct {
	ExtractedContent
}

// SearchRequest is the inbound RPC DTO for the Search use-case.
type SearchRequest struct {
	Query    string         `json:"query"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Limit    *int           `json:"limit,omitempty"`
}

// Hit is a single full-text search result.
type Hit struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score,omitempty"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// SearchResponse is the successful RPC reply body for the Search use-case.
type SearchResponse struct {
	Results []Hit `json:"results"`
}

// RPCStatus is the status literal carried in a failed RPC response.
type RPCStatus string

const (
	StatusBadRequest          RPCStatus = "BadRequest"
	StatusInternalServerError RPCStatus = "InternalServerError"
)

// RPCEnvelope is the wire shape of every RPC response: a tagged union,
// exactly one of Ok or Error populated.
type RPCEnvelope struct {
	Ok    *RPCOk    `json:"Ok,omitempty"`
	Error *RPCError `json:"Error,omitempty"`
}

// RPCOk wraps a successful RPC reply's payload.
type RPCOk struct {
	Data SearchResponse `json:"data"`
}

// RPCError wraps a failed RPC reply's status and message.
type RPCError struct {
	Status  RPCStatus `json:"status"`
	Message string    `json:"message"`
}

// SourceMeta is a row in the source-meta store: bookkeeping for a blob
// that has been (or is being) extracted. Immutable after insertion
// except ExtractedAt.
type SourceMeta struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	InitialName     string     `json:"initial_name"`
	ObjectStoreName string     `json:"object_store_name"`
	SourceType      string     `json:"source_type"`
	AddedAt         time.Time  `json:"added_at"`
	ExtractedAt     *time.Time `json:"extracted_at,omitempty"`
}
