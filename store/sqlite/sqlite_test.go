package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/use-agent/webboost/models"
	"github.com/use-agent/webboost/store"
)

func TestSQLiteBackend(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "audits.db")
	b, err := New(dsn)
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	older := store.NewRecord("user_a", "https://example.com/old", models.PageMetrics{MobileAdDensity: 10})
	older.CreatedAt = base.Add(-time.Hour)

	newer := store.NewRecord("user_a", "https://example.com/new", models.PageMetrics{
		MobileAdDensity: 15,
		HasSchema:       true,
		WordCount:       321,
	})
	newer.CreatedAt = base

	other := store.NewRecord("user_b", "https://example.com/other", models.PageMetrics{})
	other.CreatedAt = base

	for _, r := range []*store.Record{older, newer, other} {
		if err := b.Save(ctx, r); err != nil {
			t.Fatalf("Failed to save result: %v", err)
		}
	}

	results, err := b.List(ctx, store.Filter{Subject: "user_a"})
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	got := results[0]
	if got.ID != newer.ID {
		t.Errorf("Expected newest first (%s), got %s", newer.ID, got.ID)
	}
	if got.URL != newer.URL {
		t.Errorf("Expected URL %s, got %s", newer.URL, got.URL)
	}
	if got.MobileAdDensity != 15 || !got.HasSchema || got.WordCount != 321 {
		t.Errorf("Unexpected metrics: %+v", got)
	}
	if got.Status != store.StatusSuccess {
		t.Errorf("Expected status %s, got %s", store.StatusSuccess, got.Status)
	}
	if got.CreatedAt.Unix() != newer.CreatedAt.Unix() {
		t.Errorf("Expected CreatedAt %v, got %v", newer.CreatedAt, got.CreatedAt)
	}

	limited, err := b.List(ctx, store.Filter{Subject: "user_a", Limit: 1})
	if err != nil {
		t.Fatalf("Failed to list with limit: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != newer.ID {
		t.Errorf("Limit 1 should return only the newest record, got %d", len(limited))
	}

	none, err := b.List(ctx, store.Filter{Subject: "nobody"})
	if err != nil {
		t.Fatalf("Failed to list unknown subject: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected 0 results for unknown subject, got %d", len(none))
	}
}

func TestSQLiteBackend_Reopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "audits.db")
	ctx := context.Background()

	b, err := New(dsn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.Save(ctx, store.NewRecord("u", "https://example.com", models.PageMetrics{})); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err = New(dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	results, err := b.List(ctx, store.Filter{Subject: "u"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 persisted result, got %d", len(results))
	}
}
