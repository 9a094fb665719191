package chunker

import (
	"errors"
	"io"
	"testing"

	"github.com/northbound/inkstream/internal/reader"
)

func drainChunks(t *testing.T, c *ContentChunker) ([]Chunk, error) {
	t.Helper()
	var out []Chunk
	for {
		chunk, err := c.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, chunk)
	}
}

func TestContentChunkerSimpleXMLBody(t *testing.T) {
	content := "<html><head><title>T</title></head><body><p>Test</p></body></html>"
	src := reader.NewSimpleMetadataReader([]byte(content), nil)
	xr := reader.NewXMLReader(src)
	c := New(xr, 100)

	chunks, err := drainChunks(t, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1: %#v", len(chunks), chunks)
	}
	if chunks[0].Content != "Test" {
		t.Fatalf("content = %q, want %q", chunks[0].Content, "Test")
	}
	xmlMeta, _ := chunks[0].Metadata["xml"].(map[string]any)
	if xmlMeta["title"] != "T" {
		t.Fatalf("title = %v, want %q", xmlMeta["title"], "T")
	}
}

func TestContentChunkerMultiParagraph(t *testing.T) {
	content := "<body><p>Test</p>Ok - how are you?</body>"
	src := reader.NewSimpleMetadataReader([]byte(content), nil)
	xr := reader.NewXMLReader(src)
	c := New(xr, 4)

	chunks, err := drainChunks(t, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %#v", len(chunks), chunks)
	}
	if chunks[0].Content != "Test Ok - how" {
		t.Fatalf("chunk1 = %q, want %q", chunks[0].Content, "Test Ok - how")
	}
	if chunks[1].Content != "are you?" {
		t.Fatalf("chunk2 = %q, want %q", chunks[1].Content, "are you?")
	}
}

func TestContentChunkerMetadataBoundary(t *testing.T) {
	content := "<head><title>A</title></head><body><p>s1</p></body>" +
		"<head><title>B</title></head><body><p>s2</p></body>"
	src := reader.NewSimpleMetadataReader([]byte(content), nil)
	xr := reader.NewXMLReader(src)
	c := New(xr, 1000)

	chunks, err := drainChunks(t, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %#v", len(chunks), chunks)
	}
	if chunks[0].Content != "s1" {
		t.Fatalf("chunk1 content = %q, want %q", chunks[0].Content, "s1")
	}
	if chunks[1].Content != "s2" {
		t.Fatalf("chunk2 content = %q, want %q", chunks[1].Content, "s2")
	}
	meta1, _ := chunks[0].Metadata["xml"].(map[string]any)
	meta2, _ := chunks[1].Metadata["xml"].(map[string]any)
	if meta1["title"] != "A" {
		t.Fatalf("chunk1 title = %v, want A", meta1["title"])
	}
	if meta2["title"] != "B" {
		t.Fatalf("chunk2 title = %v, want B", meta2["title"])
	}
}

func TestContentChunkerMalformedXMLPropagatesError(t *testing.T) {
	content := "<body><p>x</p></p></body>"
	src := reader.NewSimpleMetadataReader([]byte(content), nil)
	xr := reader.NewXMLReader(src)
	c := New(xr, 100)

	_, err := drainChunks(t, c)
	if err == nil {
		t.Fatal("expected an error on malformed input, got nil")
	}
}

func TestContentChunkerNoConsecutiveOrBoundarySpaces(t *testing.T) {
	content := "<body><p>Many   spaced    words   here</p></body>"
	src := reader.NewSimpleMetadataReader([]byte(content), nil)
	xr := reader.NewXMLReader(src)
	c := New(xr, 1000)

	chunks, err := drainChunks(t, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1: %#v", len(chunks), chunks)
	}
	got := chunks[0].Content
	if got[0] == ' ' || got[len(got)-1] == ' ' {
		t.Fatalf("content has a leading/trailing space: %q", got)
	}
	for i := 0; i+1 < len(got); i++ {
		if got[i] == ' ' && got[i+1] == ' ' {
			t.Fatalf("content has consecutive spaces: %q", got)
		}
	}
}

func TestContentChunkerDefaultWordsPerChunk(t *testing.T) {
	content := "<body><p>hi</p></body>"
	src := reader.NewSimpleMetadataReader([]byte(content), nil)
	xr := reader.NewXMLReader(src)
	c := New(xr, 0)
	if c.wordsPerChunk != DefaultWordsPerChunk {
		t.Fatalf("wordsPerChunk = %d, want default %d", c.wordsPerChunk, DefaultWordsPerChunk)
	}
}
