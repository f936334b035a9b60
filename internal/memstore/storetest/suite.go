// Package storetest provides a compliance suite run against every
// memstore.Store implementation.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/lucidia/lucid-server/internal/memstore"
	"github.com/lucidia/lucid-server/internal/model"
)

const category = "dreams"

// Run exercises the memstore.Store contract. Implementations should provide a
// clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) memstore.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Create assigns an id.
	meta := map[string]interface{}{
		"title":      "Flying over water",
		"date":       "2021-10-10",
		"entry":      "I was flying over a vast ocean",
		"ownerEmail": "a@example.com",
	}
	id, err := s.Create(ctx, category, "Flying over water\nI was flying over a vast ocean", meta)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("Create: empty id")
	}

	// Get round-trips document and metadata.
	rec, err := s.Get(ctx, category, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ID != id || rec.Metadata["title"] != "Flying over water" || rec.Metadata["ownerEmail"] != "a@example.com" {
		t.Fatalf("Get: unexpected record %+v", rec)
	}

	// Get on an unknown id reports model.ErrNotFound.
	if _, err := s.Get(ctx, category, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}

	// List returns the record.
	recs, err := s.List(ctx, category, 100)
	if err != nil || len(recs) != 1 {
		t.Fatalf("List: n=%d err=%v", len(recs), err)
	}

	// Search finds the record for a related query.
	hits, err := s.Search(ctx, category, "ocean flight", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("Search: no hits for matching query")
	}

	// UpdateMetadata replaces metadata and preserves the document.
	meta["analysis"] = "a water dream"
	if err := s.UpdateMetadata(ctx, category, id, meta); err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}
	rec, err = s.Get(ctx, category, id)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if rec.Metadata["analysis"] != "a water dream" {
		t.Fatalf("UpdateMetadata: analysis not persisted, got %+v", rec.Metadata)
	}
	if rec.Document == "" {
		t.Fatal("UpdateMetadata: document lost on metadata-only write")
	}

	// UpdateMetadata on an unknown id reports model.ErrNotFound.
	if err := s.UpdateMetadata(ctx, category, "00000000-0000-0000-0000-000000000000", meta); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateMetadata missing: want ErrNotFound, got %v", err)
	}

	// Delete reports true, then absence reports false without error.
	deleted, err := s.Delete(ctx, category, id)
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}
	if _, err := s.Get(ctx, category, id); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get after delete: want ErrNotFound, got %v", err)
	}
	deleted, err = s.Delete(ctx, category, id)
	if err != nil || deleted {
		t.Fatalf("Delete twice: deleted=%v err=%v", deleted, err)
	}
}
