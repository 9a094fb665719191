// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/northbound/inkstream/internal/chunker"
	"github.com/northbound/inkstream/internal/reader"
)

// ExtractJobRoutingKey is the routing key extraction-worker binds its
// queue to; ingest publishes one ExtractJob per uploaded source here.
const ExtractJobRoutingKey = "extract_content.text.v1"

// ContentExtractedRoutingKey is the routing key every chunk produced by
// Extraction is published under.
const ContentExtractedRoutingKey = "content_extracted.v1"

// DefaultMaxChunksPerJob bounds how many chunks a single Extraction job
// will publish before giving up, used when Extraction.MaxChunksPerJob is
// left at zero. Open question: whether this was meant as a permanent cap
// or a debug bound — resolved here as a permanent, operator-configurable
// safety valve against a runaway or adversarial document.
const DefaultMaxChunksPerJob = 1000

// Extraction reads a blob, streams it through the reader stack (EPUB →
// XML → chunker, or PDF → chunker), and publishes one ExtractedContent
// message per chunk in document order.
type Extraction struct {
	Blobs         BlobStore
	Publisher     Publisher
	WordsPerChunk int
	// MaxChunksPerJob overrides DefaultMaxChunksPerJob when non-zero.
	MaxChunksPerJob int
}

func (u *Extraction) maxChunksPerJob() int {
	if u.MaxChunksPerJob > 0 {
		return u.MaxChunksPerJob
	}
	return DefaultMaxChunksPerJob
}

// Run executes one ExtractJob. It only returns nil once every chunk has
// been published; HandlerRuntime acks on nil and nacks (with or without
// requeue depending on the wrapped ErrorKind) otherwise.
func (u *Extraction) Run(ctx context.Context, job ExtractJob) error {
	data, err := u.Blobs.Get(ctx, job.ObjectStorePathName)
	if err != nil {
		return Wrap(classifyBlobError(err), fmt.Errorf("fetching blob %q: %w", job.ObjectStorePathName, err))
	}

	src, err := u.openSource(job, data)
	if err != nil {
		return Wrap(KindExtractionFormat, err)
	}
	if closer, ok := src.(io.Closer); ok {
		defer closer.Close()
	}

	chunks := chunker.New(src, u.WordsPerChunk)

	count := 0
	limit := u.maxChunksPerJob()
	for {
		if count >= limit {
			return Wrap(KindExtractionFormat, fmt.Errorf("job %s exceeded the %d chunk limit", job.SourceMetaID, limit))
		}

		chunk, err := chunks.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return Wrap(KindExtractionFormat, fmt.Errorf("extracting job %s: %w", job.SourceMetaID, err))
		}

		meta := make(map[string]any, len(chunk.Metadata)+1)
		for k, v := range chunk.Metadata {
			meta[k] = v
		}
		meta["file"] = job.ObjectStorePathName

		payload, err := json.Marshal(ExtractedContent{
			ID:       uuid.NewString(),
			Metadata: meta,
			Content:  chunk.Content,
		})
		if err != nil {
			return Wrap(KindInternal, err)
		}

		if err := u.Publisher.Publish(ctx, ContentExtractedRoutingKey, payload); err != nil {
			return Wrap(KindTransientUpstream, err)
		}
		count++
	}
}

func (u *Extraction) openSource(job ExtractJob, data []byte) (reader.MetaReader, error) {
	view := bytes.NewReader(data)
	switch job.SourceType {
	case "epub":
		epub, err := reader.OpenEpub(view, view.Size())
		if err != nil {
			return nil, err
		}
		return reader.NewXMLReader(epub), nil
	case "pdf":
		return reader.OpenPdf(data)
	default:
		return nil, fmt.Errorf("unsupported source type %q", job.SourceType)
	}
}

// classifyBlobError maps a blob-store error to the upstream error kind
// HandlerRuntime uses to choose requeue-vs-poison. An error that itself
// implements NotFound() bool reporting true (as
// internal/blobstore.NotFoundError does) is permanent; any other error is
// transient.
func classifyBlobError(err error) ErrorKind {
	type notFound interface{ NotFound() bool }
	if nf, ok := err.(notFound); ok && nf.NotFound() {
		return KindPermanentUpstream
	}
	return KindTransientUpstream
}
