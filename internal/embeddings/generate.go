// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package embeddings

import (
	"context"
	"strings"

	"github.com/northbound/inkstream/internal/usecase"
)

// SentenceGenerator adapts an Embedder (EmbedBatch) to
// usecase.Embedder's Generate: split content into sentences, embed each
// one, return one vector per sentence.
type SentenceGenerator struct {
	Embedder Embedder
}

// Generate implements usecase.Embedder.
func (g *SentenceGenerator) Generate(ctx context.Context, content string) ([][]float32, error) {
	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return nil, nil
	}
	return g.Embedder.EmbedBatch(ctx, sentences)
}

var _ usecase.Embedder = (*SentenceGenerator)(nil)

// splitSentences splits on ". ", "! ", and "? " boundaries, keeping the
// terminating punctuation with the sentence it closes. A final sentence
// with no trailing boundary is still returned. Empty/whitespace-only
// sentences are dropped.
func splitSentences(content string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(content); i++ {
		if i+1 >= len(content) {
			continue
		}
		c := content[i]
		if (c == '.' || c == '!' || c == '?') && content[i+1] == ' ' {
			sentence := strings.TrimSpace(content[start : i+1])
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			start = i + 2
			i++
		}
	}
	if tail := strings.TrimSpace(content[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
