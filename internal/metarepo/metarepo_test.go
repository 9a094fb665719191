// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package metarepo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/northbound/inkstream/internal/usecase"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metarepo_test.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddThenGetRoundTrips(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	meta := usecase.SourceMeta{
		ID:              "doc-1",
		UserID:          "user-1",
		InitialName:     "doc-1.epub",
		ObjectStoreName: "books/doc-1.epub",
		SourceType:      "epub",
		AddedAt:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if err := store.Add(ctx, tx, meta); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := store.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != meta {
		t.Fatalf("Get() = %+v, want %+v", got, meta)
	}
}

func TestMarkExtractedStampsTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	meta := usecase.SourceMeta{
		ID:              "doc-3",
		UserID:          "user-1",
		InitialName:     "doc-3.pdf",
		ObjectStoreName: "books/doc-3.pdf",
		SourceType:      "pdf",
		AddedAt:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if err := store.Add(ctx, tx, meta); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	extractedAt := time.Date(2026, 1, 2, 4, 0, 0, 0, time.UTC)
	if err := store.MarkExtracted(ctx, "doc-3", extractedAt); err != nil {
		t.Fatalf("MarkExtracted: %v", err)
	}

	got, err := store.Get(ctx, "doc-3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ExtractedAt == nil || !got.ExtractedAt.Equal(extractedAt) {
		t.Fatalf("ExtractedAt = %v, want %v", got.ExtractedAt, extractedAt)
	}
}

func TestAddRollsBackWithTransaction(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	meta := usecase.SourceMeta{ID: "doc-2", UserID: "user-1", InitialName: "x", ObjectStoreName: "x", SourceType: "pdf", AddedAt: time.Now()}
	if err := store.Add(ctx, tx, meta); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if _, err := store.Get(ctx, "doc-2"); err == nil {
		t.Fatal("expected Get to fail after rollback")
	}
}
