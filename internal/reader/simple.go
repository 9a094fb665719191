// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package reader

import "bytes"

// SimpleMetadataReaderKey is the top-level metadata key SimpleMetadataReader
// reports under.
const SimpleMetadataReaderKey = "simple"

// SimpleMetadataReader wraps a fixed byte slice and reports a fixed,
// caller-supplied metadata object under the "simple" key. It exists to let
// the layers above it (XMLReader, Chunker) be tested without a real EPUB or
// PDF source.
type SimpleMetadataReader struct {
	buf      *bytes.Reader
	metadata map[string]any
}

// NewSimpleMetadataReader builds a SimpleMetadataReader over content,
// reporting meta (or an empty object if meta is nil) as its metadata.
func NewSimpleMetadataReader(content []byte, meta map[string]any) *SimpleMetadataReader {
	if meta == nil {
		meta = map[string]any{}
	}
	return &SimpleMetadataReader{buf: bytes.NewReader(content), metadata: meta}
}

func (r *SimpleMetadataReader) Read(p []byte) (int, error) {
	return r.buf.Read(p)
}

// CurrentMetadata implements MetaRead.
func (r *SimpleMetadataReader) CurrentMetadata() map[string]any {
	return map[string]any{SimpleMetadataReaderKey: cloneMetadata(r.metadata)}
}
