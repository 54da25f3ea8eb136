package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"giftfeed/internal/model"
)

func TestWriterClassifiesAndUpserts(t *testing.T) {
	store := newMemStore()
	w := NewWriter(store)
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	w.Now = func() time.Time { return fixed }

	out, err := w.Write(context.Background(), model.Candidate{
		Title:       "Rachmaninov: Sinfonía n. 2 (CD)",
		RawCategory: "Música y Ocio",
		Price:       14.95,
		Currency:    "EUR",
		SourceURL:   "https://x/1",
	})
	if err != nil || out != Written {
		t.Fatalf("outcome = %v, err = %v", out, err)
	}

	p, ok := store.products["https://x/1"]
	if !ok {
		t.Fatal("product not stored")
	}
	if p.Category != "music" {
		t.Errorf("category = %q, want music", p.Category)
	}
	if !p.UpdatedAt.Equal(fixed) {
		t.Errorf("updated_at = %v, want %v", p.UpdatedAt, fixed)
	}
}

func TestWriterSkipsUnclassified(t *testing.T) {
	store := newMemStore()
	w := NewWriter(store)

	out, err := w.Write(context.Background(), model.Candidate{
		Title:       "Widget 3000",
		RawCategory: "Unknown Zone",
		SourceURL:   "https://x/unknown",
	})
	if err != nil || out != SkippedUnclassified {
		t.Fatalf("outcome = %v, err = %v", out, err)
	}
	if store.upserts != 0 {
		t.Fatalf("unclassified candidate reached the store (%d upserts)", store.upserts)
	}
}

func TestWriterReportsStoreFailure(t *testing.T) {
	store := newMemStore()
	boom := errors.New("connection reset")
	store.failURLs["https://x/1"] = boom

	w := NewWriter(store)
	out, err := w.Write(context.Background(), model.Candidate{
		Title:       "Vinilo clásico",
		RawCategory: "Música",
		SourceURL:   "https://x/1",
	})
	if out != Failed || !errors.Is(err, boom) {
		t.Fatalf("outcome = %v, err = %v", out, err)
	}
}
