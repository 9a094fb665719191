// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package reader

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
)

// PdfReader is the SourceReader variant for PDF documents. It walks pages
// 1..N, skipping pages whose extracted text is empty, and reports
// {pdf.page: N} as metadata.
type PdfReader struct {
	doc      *fitz.Document
	numPages int
	page     int // 1-indexed page of the text currently cached

	contentChars []rune
	charIndex    int
}

// OpenPdf parses data as a PDF document. Page text is extracted lazily, one
// page at a time, as Read drains it.
func OpenPdf(data []byte) (*PdfReader, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return &PdfReader{doc: doc, numPages: doc.NumPage(), page: 0}, nil
}

// Close releases the underlying document handle.
func (r *PdfReader) Close() error {
	return r.doc.Close()
}

func (r *PdfReader) advance() error {
	for {
		if r.page >= r.numPages {
			return io.EOF
		}
		text, err := r.doc.Text(r.page)
		r.page++
		if err != nil {
			// Skip unreadable pages, same as empty ones.
			continue
		}
		if text == "" {
			continue
		}
		r.contentChars = []rune(text)
		r.charIndex = 0
		return nil
	}
}

// Read implements io.Reader with the same one-char-at-a-time UTF-8
// discipline used by the other SourceReader variants.
func (r *PdfReader) Read(buf []byte) (int, error) {
	if r.charIndex >= len(r.contentChars) {
		r.contentChars = nil
		if err := r.advance(); err != nil {
			return 0, err
		}
	}

	i := 0
	var tmp [utf8.UTFMax]byte
	for i < len(buf) && r.charIndex < len(r.contentChars) {
		w := utf8.EncodeRune(tmp[:], r.contentChars[r.charIndex])
		if i+w > len(buf) {
			break
		}
		copy(buf[i:], tmp[:w])
		i += w
		r.charIndex++
	}

	return i, nil
}

// CurrentMetadata implements MetaRead.
func (r *PdfReader) CurrentMetadata() map[string]any {
	return map[string]any{
		"pdf": map[string]any{"page": r.page},
	}
}
