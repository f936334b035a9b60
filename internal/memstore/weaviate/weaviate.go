// Package weaviate implements memstore.Store using the Weaviate Go client
// with bring-your-own vectors supplied by an Embeddings provider.
package weaviate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/lucidia/lucid-server/internal/memstore"
	"github.com/lucidia/lucid-server/internal/model"
)

// Store is a Weaviate-backed memstore.Store. Each category maps to a class
// whose schema is ensured on first use; records keep their document under the
// "document" property and metadata keys as sibling text properties.
type Store struct {
	client *weaviate.Client
	embed  memstore.Embeddings
}

// categoryFields lists the metadata properties declared per category. Fields
// must be known up front because GraphQL reads are by named property.
var categoryFields = map[string][]string{
	"dreams": {"title", "date", "entry", "ownerEmail", "analysis", "image"},
}

// New constructs a Store for a Weaviate instance at baseURL (host:port,
// without scheme).
func New(baseURL string, emb memstore.Embeddings) (*Store, error) {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{client: cl, embed: emb}, nil
}

func className(category string) string {
	return strings.ToUpper(category[:1]) + category[1:]
}

func (s *Store) ensureClass(ctx context.Context, category string) error {
	cls := className(category)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(cls).Do(ctx)
	if err == nil && exists {
		return nil
	}
	props := []*models.Property{{Name: "document", DataType: []string{"text"}}}
	for _, f := range categoryFields[category] {
		props = append(props, &models.Property{Name: f, DataType: []string{"text"}})
	}
	class := &models.Class{Class: cls, Vectorizer: "none", Properties: props}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		// Concurrent creation races surface as an already-exists error.
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("ensure class %s: %w", cls, err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, category, document string, metadata map[string]interface{}) (string, error) {
	if err := s.ensureClass(ctx, category); err != nil {
		return "", err
	}
	vec, err := s.embed.Embed(ctx, document)
	if err != nil {
		return "", fmt.Errorf("embed document: %w", err)
	}
	id := uuid.New().String()
	props := map[string]interface{}{"document": document}
	for k, v := range metadata {
		props[k] = v
	}
	_, err = s.client.Data().Creator().
		WithClassName(className(category)).
		WithID(id).
		WithProperties(props).
		WithVector(vec).
		Do(ctx)
	if err != nil {
		return "", fmt.Errorf("weaviate create: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, category, id string) (*memstore.Record, error) {
	objs, err := s.client.Data().ObjectsGetter().
		WithClassName(className(category)).
		WithID(id).
		Do(ctx)
	if err != nil || len(objs) == 0 {
		return nil, model.ErrNotFound
	}
	return recordFromProperties(id, category, objs[0].Properties), nil
}

func (s *Store) List(ctx context.Context, category string, limit int) ([]memstore.Record, error) {
	req := s.client.GraphQL().Get().
		WithClassName(className(category)).
		WithLimit(limit).
		WithFields(s.fields(category)...)
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}
	return recordsFromGraphQL(resp.Data, category)
}

func (s *Store) Search(ctx context.Context, category, query string, limit int) ([]memstore.Record, error) {
	vec, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hy := (&gql.HybridArgumentBuilder{}).
		WithQuery(query).
		WithVector(vec).
		WithAlpha(0.6).
		WithProperties([]string{"document"})
	req := s.client.GraphQL().Get().
		WithClassName(className(category)).
		WithHybrid(hy).
		WithLimit(limit).
		WithFields(s.fields(category)...)
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}
	return recordsFromGraphQL(resp.Data, category)
}

func (s *Store) UpdateMetadata(ctx context.Context, category, id string, metadata map[string]interface{}) error {
	rec, err := s.Get(ctx, category, id)
	if err != nil {
		return err
	}
	props := map[string]interface{}{"document": rec.Document}
	for k, v := range metadata {
		props[k] = v
	}
	err = s.client.Data().Updater().
		WithClassName(className(category)).
		WithID(id).
		WithProperties(props).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate update: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, category, id string) (bool, error) {
	if _, err := s.Get(ctx, category, id); err != nil {
		return false, nil
	}
	err := s.client.Data().Deleter().
		WithClassName(className(category)).
		WithID(id).
		Do(ctx)
	if err != nil {
		return false, fmt.Errorf("weaviate delete: %w", err)
	}
	return true, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	ready, err := s.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return fmt.Errorf("weaviate not ready")
	}
	return nil
}

func (s *Store) fields(category string) []gql.Field {
	fields := []gql.Field{
		{Name: "document"},
		{Name: "_additional", Fields: []gql.Field{{Name: "id"}}},
	}
	for _, f := range categoryFields[category] {
		fields = append(fields, gql.Field{Name: f})
	}
	return fields
}

func recordFromProperties(id, category string, props interface{}) *memstore.Record {
	rec := &memstore.Record{ID: id, Metadata: map[string]interface{}{}}
	m, ok := props.(map[string]interface{})
	if !ok {
		return rec
	}
	if doc, ok := m["document"].(string); ok {
		rec.Document = doc
	}
	for _, f := range categoryFields[category] {
		if v, ok := m[f].(string); ok && v != "" {
			rec.Metadata[f] = v
		}
	}
	return rec
}

func recordsFromGraphQL(data map[string]models.JSONObject, category string) ([]memstore.Record, error) {
	getData, ok := data["Get"].(map[string]interface{})
	if !ok {
		return []memstore.Record{}, nil
	}
	raw, ok := getData[className(category)].([]interface{})
	if !ok {
		return []memstore.Record{}, nil
	}
	out := make([]memstore.Record, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var id string
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			id, _ = add["id"].(string)
		}
		rec := recordFromProperties(id, category, m)
		out = append(out, *rec)
	}
	return out, nil
}

// formatGraphQLErrors returns a compact string with messages extracted for logging.
func formatGraphQLErrors(errs interface{}) string {
	if b, err := json.Marshal(errs); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", errs)
}
