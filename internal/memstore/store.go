// Package memstore defines the document/vector store contract the
// repositories are built on. Implementations live under
// internal/memstore/<driver>/ (chromem, weaviate, postgres).
package memstore

import "context"

// Record is a stored document with its metadata, as returned by the store.
// The ID is opaque and assigned by the store at creation.
type Record struct {
	ID       string
	Document string
	Metadata map[string]interface{}
}

// Store exposes the persistence primitives required by repositories.
// Records are grouped by category (e.g. "dreams").
type Store interface {
	// Create stores a document with its metadata and returns the assigned id.
	Create(ctx context.Context, category, document string, metadata map[string]interface{}) (string, error)

	// Get returns the record or model.ErrNotFound when it does not exist.
	Get(ctx context.Context, category, id string) (*Record, error)

	// List returns up to limit records in insertion order.
	List(ctx context.Context, category string, limit int) ([]Record, error)

	// Search returns up to limit records ranked by the store's similarity
	// function for the free-text query.
	Search(ctx context.Context, category, query string, limit int) ([]Record, error)

	// UpdateMetadata replaces the record's metadata, leaving the document
	// untouched.
	UpdateMetadata(ctx context.Context, category, id string, metadata map[string]interface{}) error

	// Delete reports (false, nil) when the record does not exist and
	// (false, err) when the store refused the delete.
	Delete(ctx context.Context, category, id string) (bool, error)

	HealthCheck(ctx context.Context) error
}

// Embeddings produces vector representations for text. Backends that rank by
// vector similarity take one at construction.
type Embeddings interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
