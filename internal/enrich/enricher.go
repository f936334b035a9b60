// Package enrich generates dream analyses and images through the completion
// provider and writes the results back onto the dream record.
package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lucidia/lucid-server/internal/completion"
	"github.com/lucidia/lucid-server/internal/dreams"
	"github.com/lucidia/lucid-server/internal/model"
)

// ErrGenerationFailed is returned when every generation attempt allowed by
// the retry policy came back empty or errored.
var ErrGenerationFailed = errors.New("generation failed")

// Enricher drives analysis and image generation for stored dreams.
type Enricher struct {
	provider completion.Provider
	journal  *dreams.Service
	policy   RetryPolicy
	logger   zerolog.Logger

	// IntelligenceLevel selects the analysis depth for every caller.
	IntelligenceLevel string
	// ForceRegenerate makes Ensure calls regenerate even when the dream
	// already carries the artifact.
	ForceRegenerate bool
}

// New constructs an Enricher with the given retry policy.
func New(provider completion.Provider, journal *dreams.Service, policy RetryPolicy, logger zerolog.Logger) *Enricher {
	return &Enricher{
		provider:          provider,
		journal:           journal,
		policy:            policy,
		logger:            logger.With().Str("component", "enrich").Logger(),
		IntelligenceLevel: "general",
	}
}

// EnsureAnalysis returns an analysis for the dream, generating one if needed.
// The result is not persisted; callers decide when to write it back.
func (e *Enricher) EnsureAnalysis(ctx context.Context, dreamID string) (string, error) {
	dream, err := e.journal.Get(ctx, dreamID)
	if err != nil {
		return "", err
	}
	if dream.Analysis != "" && !e.ForceRegenerate {
		return dream.Analysis, nil
	}

	prompt := analysisPrompt(dream.Entry, e.IntelligenceLevel)
	for attempt := 0; ; attempt++ {
		analysis, err := e.provider.TextCompletion(ctx, prompt)
		if err == nil && analysis != "" {
			return analysis, nil
		}
		if err != nil {
			e.logger.Warn().Err(err).Str("dreamId", dreamID).Int("attempt", attempt).Msg("analysis attempt failed")
		}
		delay, retry := e.policy.Next(attempt)
		if !retry {
			return "", fmt.Errorf("%w: analysis for dream %s", ErrGenerationFailed, dreamID)
		}
		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

// EnsureImage returns an image URL for the dream, generating one if needed.
// The dream must appear in its owner's journal; a dangling record fails
// without calling the provider.
func (e *Enricher) EnsureImage(ctx context.Context, dreamID, style, quality string) (string, error) {
	dream, err := e.journal.Get(ctx, dreamID)
	if err != nil {
		return "", err
	}
	if dream.ImageURL != "" && !e.ForceRegenerate {
		return dream.ImageURL, nil
	}

	owned, err := e.journal.ListByOwner(ctx, dream.OwnerEmail)
	if err != nil {
		return "", err
	}
	found := false
	for i := range owned {
		if owned[i].ID == dreamID {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("%w: dream %s not in owner's journal", ErrGenerationFailed, dreamID)
	}

	resolution := imageResolution(quality)
	for attempt := 0; ; attempt++ {
		url, err := e.generateImage(ctx, dream, style, resolution)
		if err == nil && url != "" {
			return url, nil
		}
		if err != nil {
			e.logger.Warn().Err(err).Str("dreamId", dreamID).Int("attempt", attempt).Msg("image attempt failed")
		}
		delay, retry := e.policy.Next(attempt)
		if !retry {
			return "", fmt.Errorf("%w: image for dream %s", ErrGenerationFailed, dreamID)
		}
		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

func (e *Enricher) generateImage(ctx context.Context, dream *model.Dream, style, resolution string) (string, error) {
	summary, err := e.provider.TextCompletion(ctx, imageSummaryPrompt(dream.Entry))
	if err != nil {
		return "", fmt.Errorf("summarize entry: %w", err)
	}
	return e.provider.GenerateImage(ctx, imagePrompt(style, summary), resolution)
}

// UpdateEnrichment writes analysis and image back onto the dream and returns
// the updated record. Journal failures surface as ErrGenerationFailed so
// enrichment callers deal with a single failure vocabulary.
func (e *Enricher) UpdateEnrichment(ctx context.Context, dreamID string, analysis, image interface{}) (*model.Dream, error) {
	if err := e.journal.Update(ctx, dreamID, analysis, image); err != nil {
		return nil, fmt.Errorf("%w: update dream %s: %v", ErrGenerationFailed, dreamID, err)
	}
	return e.journal.Get(ctx, dreamID)
}
