package handlers

import (
	"context"
	"testing"

	"github.com/hoanghai1803/casescout/internal/models"
	"github.com/hoanghai1803/casescout/internal/source"
	"github.com/hoanghai1803/casescout/internal/storage"
)

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

// seedCases archives cases into store and fails the test on error.
func seedCases(t *testing.T, store *storage.Store, cases ...models.Case) {
	t.Helper()
	if _, err := store.SaveCases(context.Background(), cases, "https://ads.vk.com/cases"); err != nil {
		t.Fatalf("seeding cases: %v", err)
	}
}

// staticLoader serves a fixed document, or err when set.
type staticLoader struct {
	body string
	err  error
}

func (l staticLoader) Load(_ context.Context, _, sourceURL string) (*source.Document, error) {
	if l.err != nil {
		return nil, l.err
	}
	return &source.Document{Body: l.body, SourceURL: sourceURL}, nil
}
