// Package chromem implements memstore.Store on top of chromem-go, an
// embedded pure-Go vector database. It is the default driver: no external
// service is needed, and similarity search runs in-process.
package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/google/uuid"

	"github.com/lucidia/lucid-server/internal/memstore"
	"github.com/lucidia/lucid-server/internal/model"
)

// Store wraps a chromem-go DB. Collections map 1:1 to categories.
type Store struct {
	db    *chromemgo.DB
	embed chromemgo.EmbeddingFunc

	mu    sync.RWMutex
	cols  map[string]*chromemgo.Collection
	order map[string][]string // per-category insertion order of ids
}

// New creates an in-memory store. Pass a path to persist between restarts.
func New(path string, emb memstore.Embeddings) (*Store, error) {
	var db *chromemgo.DB
	if path == "" {
		db = chromemgo.NewDB()
	} else {
		var err error
		db, err = chromemgo.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}
	return &Store{
		db:    db,
		embed: chromemgo.EmbeddingFunc(emb.Embed),
		cols:  make(map[string]*chromemgo.Collection),
		order: make(map[string][]string),
	}, nil
}

func (s *Store) collection(category string) (*chromemgo.Collection, error) {
	s.mu.RLock()
	col, ok := s.cols[category]
	s.mu.RUnlock()
	if ok {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, ok := s.cols[category]; ok {
		return col, nil
	}
	col, err := s.db.GetOrCreateCollection(category, nil, s.embed)
	if err != nil {
		return nil, fmt.Errorf("get collection %q: %w", category, err)
	}
	s.cols[category] = col
	return col, nil
}

func (s *Store) Create(ctx context.Context, category, document string, metadata map[string]interface{}) (string, error) {
	col, err := s.collection(category)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	doc := chromemgo.Document{
		ID:       id,
		Content:  document,
		Metadata: encodeMetadata(metadata),
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}
	s.mu.Lock()
	s.order[category] = append(s.order[category], id)
	s.mu.Unlock()
	return id, nil
}

func (s *Store) Get(ctx context.Context, category, id string) (*memstore.Record, error) {
	col, err := s.collection(category)
	if err != nil {
		return nil, err
	}
	doc, err := col.GetByID(ctx, id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	return &memstore.Record{
		ID:       doc.ID,
		Document: doc.Content,
		Metadata: decodeMetadata(doc.Metadata),
	}, nil
}

func (s *Store) List(ctx context.Context, category string, limit int) ([]memstore.Record, error) {
	col, err := s.collection(category)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	ids := append([]string(nil), s.order[category]...)
	s.mu.RUnlock()

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]memstore.Record, 0, len(ids))
	for _, id := range ids {
		doc, err := col.GetByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, memstore.Record{
			ID:       doc.ID,
			Document: doc.Content,
			Metadata: decodeMetadata(doc.Metadata),
		})
	}
	return out, nil
}

func (s *Store) Search(ctx context.Context, category, query string, limit int) ([]memstore.Record, error) {
	col, err := s.collection(category)
	if err != nil {
		return nil, err
	}
	// chromem rejects nResults larger than the collection size.
	n := limit
	if count := col.Count(); count < n {
		n = count
	}
	if n <= 0 {
		return []memstore.Record{}, nil
	}
	results, err := col.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}
	out := make([]memstore.Record, 0, len(results))
	for _, res := range results {
		out = append(out, memstore.Record{
			ID:       res.ID,
			Document: res.Content,
			Metadata: decodeMetadata(res.Metadata),
		})
	}
	return out, nil
}

func (s *Store) UpdateMetadata(ctx context.Context, category, id string, metadata map[string]interface{}) error {
	col, err := s.collection(category)
	if err != nil {
		return err
	}
	doc, err := col.GetByID(ctx, id)
	if err != nil {
		return model.ErrNotFound
	}
	// Re-add under the same id with the stored embedding so the document is
	// not re-embedded on a metadata-only write.
	updated := chromemgo.Document{
		ID:        doc.ID,
		Content:   doc.Content,
		Embedding: doc.Embedding,
		Metadata:  encodeMetadata(metadata),
	}
	if err := col.AddDocument(ctx, updated); err != nil {
		return fmt.Errorf("rewrite document: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, category, id string) (bool, error) {
	col, err := s.collection(category)
	if err != nil {
		return false, err
	}
	if _, err := col.GetByID(ctx, id); err != nil {
		return false, nil
	}
	if err := col.Delete(ctx, nil, nil, id); err != nil {
		return false, fmt.Errorf("chromem delete: %w", err)
	}
	s.mu.Lock()
	ids := s.order[category]
	for i, v := range ids {
		if v == id {
			s.order[category] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return true, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return nil
}

// encodeMetadata converts the store-level metadata map to chromem's
// string-valued form. Non-string values are JSON-encoded.
func encodeMetadata(metadata map[string]interface{}) map[string]string {
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		if b, err := json.Marshal(v); err == nil {
			out[k] = string(b)
		}
	}
	return out
}

func decodeMetadata(metadata map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
