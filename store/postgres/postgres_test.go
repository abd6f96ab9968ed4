package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/use-agent/webboost/models"
	"github.com/use-agent/webboost/store"
)

func TestPostgresBackend(t *testing.T) {
	// Only run this test if WEBBOOST_TEST_PG_DSN is set
	dsn := os.Getenv("WEBBOOST_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("Skipping Postgres backend test: WEBBOOST_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	b, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create Postgres backend: %v", err)
	}
	defer b.Close()

	rec := store.NewRecord("pg-subject-"+t.Name(), "https://example.com/pg", models.PageMetrics{
		MobileAdDensity: 22,
		HasSchema:       true,
		WordCount:       900,
	})
	if err := b.Save(ctx, rec); err != nil {
		t.Fatalf("Failed to save result: %v", err)
	}

	results, err := b.List(ctx, store.Filter{Subject: rec.Subject, Limit: 20})
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected at least 1 result")
	}

	got := results[0]
	if got.ID != rec.ID {
		t.Errorf("Expected ID %s, got %s", rec.ID, got.ID)
	}
	if got.MobileAdDensity != 22 || !got.HasSchema || got.WordCount != 900 {
		t.Errorf("Unexpected metrics: %+v", got)
	}
}
