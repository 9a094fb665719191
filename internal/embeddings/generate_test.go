// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package embeddings

import (
	"context"
	"reflect"
	"testing"
)

func TestSplitSentencesOnTerminators(t *testing.T) {
	got := splitSentences("Hello world. How are you? Fine! Trailing clause")
	want := []string{"Hello world.", "How are you?", "Fine!", "Trailing clause"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitSentences() = %#v, want %#v", got, want)
	}
}

func TestSplitSentencesEmptyContent(t *testing.T) {
	if got := splitSentences(""); got != nil {
		t.Fatalf("splitSentences(\"\") = %#v, want nil", got)
	}
}

func TestSentenceGeneratorEmbedsEachSentence(t *testing.T) {
	gen := &SentenceGenerator{Embedder: NewMockEmbedder(4)}

	vectors, err := gen.Generate(context.Background(), "First sentence. Second sentence.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("len(vectors) = %d, want 2", len(vectors))
	}
	for _, v := range vectors {
		if len(v) != 4 {
			t.Fatalf("len(vector) = %d, want 4", len(v))
		}
	}
}

func TestSentenceGeneratorEmptyContentYieldsNoVectors(t *testing.T) {
	gen := &SentenceGenerator{Embedder: NewMockEmbedder(4)}

	vectors, err := gen.Generate(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vectors) != 0 {
		t.Fatalf("len(vectors) = %d, want 0", len(vectors))
	}
}
