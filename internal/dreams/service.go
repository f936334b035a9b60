// Package dreams implements the journal service: creating, reading,
// searching, updating, and deleting dream records over a memory store.
package dreams

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lucidia/lucid-server/internal/memstore"
	"github.com/lucidia/lucid-server/internal/model"
)

// Category is the memory-store category holding dream records.
const Category = "dreams"

// maxListResults bounds per-owner listing.
const maxListResults = 2222

// maxSearchResults bounds semantic search.
const maxSearchResults = 100

// Service provides dream journal operations backed by a memstore.Store.
type Service struct {
	store  memstore.Store
	logger zerolog.Logger
}

// NewService constructs a dream journal service.
func NewService(store memstore.Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger.With().Str("component", "dreams").Logger()}
}

// Create persists a new dream owned by ownerEmail and returns it with its
// assigned id. The stored document is the title and entry joined so both
// contribute to search relevance.
func (s *Service) Create(ctx context.Context, title, date, entry, ownerEmail string) (*model.Dream, error) {
	if title == "" || date == "" || entry == "" || ownerEmail == "" {
		return nil, fmt.Errorf("%w: title, date, entry, and owner are required", model.ErrValidation)
	}
	metadata := map[string]interface{}{
		"title":      title,
		"date":       date,
		"entry":      entry,
		"ownerEmail": ownerEmail,
	}
	id, err := s.store.Create(ctx, Category, title+"\n"+entry, metadata)
	if err != nil {
		return nil, fmt.Errorf("create dream: %w", err)
	}
	s.logger.Info().Str("dreamId", id).Msg("dream created")
	return &model.Dream{ID: id, Title: title, Date: date, Entry: entry, OwnerEmail: ownerEmail}, nil
}

// Get fetches a dream by id regardless of owner. Callers enforce ownership.
func (s *Service) Get(ctx context.Context, id string) (*model.Dream, error) {
	rec, err := s.store.Get(ctx, Category, id)
	if err != nil {
		return nil, err
	}
	return dreamFromRecord(rec), nil
}

// ListByOwner returns every dream owned by email, oldest first.
func (s *Service) ListByOwner(ctx context.Context, email string) ([]model.Dream, error) {
	recs, err := s.store.List(ctx, Category, maxListResults)
	if err != nil {
		return nil, fmt.Errorf("list dreams: %w", err)
	}
	out := []model.Dream{}
	for i := range recs {
		d := dreamFromRecord(&recs[i])
		if d.OwnerEmail == email {
			out = append(out, *d)
		}
	}
	return out, nil
}

// Search runs semantic search over the owner's dreams. Results from other
// owners are filtered out after retrieval.
func (s *Service) Search(ctx context.Context, email, query string) ([]model.Dream, error) {
	recs, err := s.store.Search(ctx, Category, query, maxSearchResults)
	if err != nil {
		return nil, fmt.Errorf("search dreams: %w", err)
	}
	out := []model.Dream{}
	for i := range recs {
		d := dreamFromRecord(&recs[i])
		if d.OwnerEmail == email {
			out = append(out, *d)
		}
	}
	return out, nil
}

// Update merges analysis and image into the dream's metadata. Either value
// may be nil to leave it unchanged; supplying both as nil is a no-op.
// Non-string values are rejected with model.ErrValidation.
func (s *Service) Update(ctx context.Context, id string, analysis, image interface{}) error {
	analysisStr, err := optionalString("analysis", analysis)
	if err != nil {
		return err
	}
	imageStr, err := optionalString("image", image)
	if err != nil {
		return err
	}
	if analysisStr == nil && imageStr == nil {
		return nil
	}

	rec, err := s.store.Get(ctx, Category, id)
	if err != nil {
		return err
	}
	metadata := rec.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	if analysisStr != nil {
		metadata["analysis"] = *analysisStr
	}
	if imageStr != nil {
		metadata["image"] = *imageStr
	}
	if err := s.store.UpdateMetadata(ctx, Category, id, metadata); err != nil {
		return fmt.Errorf("update dream %s: %w", id, err)
	}
	s.logger.Info().Str("dreamId", id).
		Bool("analysis", analysisStr != nil).
		Bool("image", imageStr != nil).
		Msg("dream updated")
	return nil
}

// Delete removes a dream. It reports whether a record was actually removed;
// a store-level refusal is logged and surfaced as not-deleted.
func (s *Service) Delete(ctx context.Context, id string) bool {
	deleted, err := s.store.Delete(ctx, Category, id)
	if err != nil {
		s.logger.Error().Err(err).Str("dreamId", id).Msg("delete refused by store")
		return false
	}
	if deleted {
		s.logger.Info().Str("dreamId", id).Msg("dream deleted")
	}
	return deleted
}

func optionalString(field string, v interface{}) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", model.ErrValidation, field)
	}
	return &s, nil
}

func dreamFromRecord(rec *memstore.Record) *model.Dream {
	d := &model.Dream{ID: rec.ID}
	if v, ok := rec.Metadata["title"].(string); ok {
		d.Title = v
	}
	if v, ok := rec.Metadata["date"].(string); ok {
		d.Date = v
	}
	if v, ok := rec.Metadata["entry"].(string); ok {
		d.Entry = v
	}
	if v, ok := rec.Metadata["ownerEmail"].(string); ok {
		d.OwnerEmail = v
	}
	if v, ok := rec.Metadata["analysis"].(string); ok {
		d.Analysis = v
	}
	if v, ok := rec.Metadata["image"].(string); ok {
		d.ImageURL = v
	}
	return d
}
