package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lucidia/lucid-server/internal/completion"
	"github.com/lucidia/lucid-server/internal/dreams"
	"github.com/lucidia/lucid-server/internal/memstore"
	"github.com/lucidia/lucid-server/internal/model"
)

type fakeStore struct {
	seq     int
	records map[string]memstore.Record
	order   []string

	listEmpty bool
}

func newFakeStore() *fakeStore { return &fakeStore{records: map[string]memstore.Record{}} }

func (f *fakeStore) Create(_ context.Context, _, document string, metadata map[string]interface{}) (string, error) {
	f.seq++
	id := fmt.Sprintf("dream-%d", f.seq)
	f.records[id] = memstore.Record{ID: id, Document: document, Metadata: metadata}
	f.order = append(f.order, id)
	return id, nil
}

func (f *fakeStore) Get(_ context.Context, _, id string) (*memstore.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &rec, nil
}

func (f *fakeStore) List(_ context.Context, _ string, _ int) ([]memstore.Record, error) {
	if f.listEmpty {
		return []memstore.Record{}, nil
	}
	out := []memstore.Record{}
	for _, id := range f.order {
		out = append(out, f.records[id])
	}
	return out, nil
}

func (f *fakeStore) Search(context.Context, string, string, int) ([]memstore.Record, error) {
	return []memstore.Record{}, nil
}

func (f *fakeStore) UpdateMetadata(_ context.Context, _, id string, metadata map[string]interface{}) error {
	rec, ok := f.records[id]
	if !ok {
		return model.ErrNotFound
	}
	rec.Metadata = metadata
	f.records[id] = rec
	return nil
}

func (f *fakeStore) Delete(_ context.Context, _, id string) (bool, error) {
	if _, ok := f.records[id]; !ok {
		return false, nil
	}
	delete(f.records, id)
	return true, nil
}

func (f *fakeStore) HealthCheck(context.Context) error { return nil }

// stubProvider scripts TextCompletion and GenerateImage responses.
type stubProvider struct {
	textCalls  int
	imageCalls int

	textResponses []string // consumed in order; empty string simulates a blank reply
	textErr       error
	imageURL      string
	imageErr      error

	lastImagePrompt string
	lastImageSize   string
}

func (s *stubProvider) TextCompletion(context.Context, string) (string, error) {
	s.textCalls++
	if s.textErr != nil {
		return "", s.textErr
	}
	if len(s.textResponses) == 0 {
		return "", nil
	}
	resp := s.textResponses[0]
	s.textResponses = s.textResponses[1:]
	return resp, nil
}

func (s *stubProvider) ChatCompletion(context.Context, []model.ChatMessage) (string, error) {
	return "", errors.New("not scripted")
}

func (s *stubProvider) FunctionCompletion(context.Context, []model.ChatMessage, completion.FunctionDef) (map[string]interface{}, error) {
	return nil, errors.New("not scripted")
}

func (s *stubProvider) GenerateImage(_ context.Context, prompt, size string) (string, error) {
	s.imageCalls++
	s.lastImagePrompt = prompt
	s.lastImageSize = size
	return s.imageURL, s.imageErr
}

func setup(t *testing.T, provider *stubProvider, fs *fakeStore) (*Enricher, string) {
	t.Helper()
	journal := dreams.NewService(fs, zerolog.Nop())
	d, err := journal.Create(context.Background(), "Flying", "2021-10-10", "soaring above clouds", "a@example.com")
	if err != nil {
		t.Fatalf("seed dream: %v", err)
	}
	e := New(provider, journal, FixedDelay{Delay: 0, MaxAttempts: 5}, zerolog.Nop())
	return e, d.ID
}

func TestEnsureAnalysisReturnsExistingWhenNotForced(t *testing.T) {
	provider := &stubProvider{}
	fs := newFakeStore()
	e, id := setup(t, provider, fs)
	journal := dreams.NewService(fs, zerolog.Nop())
	if err := journal.Update(context.Background(), id, "stored analysis", nil); err != nil {
		t.Fatal(err)
	}

	e.ForceRegenerate = false
	got, err := e.EnsureAnalysis(context.Background(), id)
	if err != nil {
		t.Fatalf("EnsureAnalysis: %v", err)
	}
	if got != "stored analysis" {
		t.Fatalf("got %q", got)
	}
	if provider.textCalls != 0 {
		t.Fatalf("provider called %d times for cached analysis", provider.textCalls)
	}
}

func TestEnsureAnalysisRegeneratesWhenForced(t *testing.T) {
	provider := &stubProvider{textResponses: []string{"fresh analysis"}}
	fs := newFakeStore()
	e, id := setup(t, provider, fs)
	journal := dreams.NewService(fs, zerolog.Nop())
	if err := journal.Update(context.Background(), id, "stale analysis", nil); err != nil {
		t.Fatal(err)
	}

	e.ForceRegenerate = true
	got, err := e.EnsureAnalysis(context.Background(), id)
	if err != nil {
		t.Fatalf("EnsureAnalysis: %v", err)
	}
	if got != "fresh analysis" || provider.textCalls != 1 {
		t.Fatalf("got %q after %d calls", got, provider.textCalls)
	}
}

func TestEnsureAnalysisRetriesBlankReplies(t *testing.T) {
	provider := &stubProvider{textResponses: []string{"", "", "third time lucky"}}
	e, id := setup(t, provider, newFakeStore())

	got, err := e.EnsureAnalysis(context.Background(), id)
	if err != nil {
		t.Fatalf("EnsureAnalysis: %v", err)
	}
	if got != "third time lucky" || provider.textCalls != 3 {
		t.Fatalf("got %q after %d calls", got, provider.textCalls)
	}
}

func TestEnsureAnalysisExhaustsPolicy(t *testing.T) {
	provider := &stubProvider{textErr: errors.New("model unavailable")}
	e, id := setup(t, provider, newFakeStore())
	e.policy = FixedDelay{Delay: 0, MaxAttempts: 1}

	_, err := e.EnsureAnalysis(context.Background(), id)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("want ErrGenerationFailed, got %v", err)
	}
	if provider.textCalls != 1 {
		t.Fatalf("provider called %d times with a single-attempt policy", provider.textCalls)
	}
}

func TestEnsureAnalysisUnknownDream(t *testing.T) {
	e, _ := setup(t, &stubProvider{}, newFakeStore())
	_, err := e.EnsureAnalysis(context.Background(), "missing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestEnsureAnalysisStopsOnContextCancel(t *testing.T) {
	provider := &stubProvider{textErr: errors.New("model unavailable")}
	e, id := setup(t, provider, newFakeStore())
	e.policy = FixedDelay{Delay: time.Hour, MaxAttempts: 5}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.EnsureAnalysis(ctx, id)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if provider.textCalls != 1 {
		t.Fatalf("provider called %d times before cancellation", provider.textCalls)
	}
}

func TestEnsureImageComposesPrompt(t *testing.T) {
	provider := &stubProvider{
		textResponses: []string{"a dreamer gliding over moonlit clouds"},
		imageURL:      "https://img.example/dream.png",
	}
	e, id := setup(t, provider, newFakeStore())

	url, err := e.EnsureImage(context.Background(), id, "abstract", "high")
	if err != nil {
		t.Fatalf("EnsureImage: %v", err)
	}
	if url != "https://img.example/dream.png" {
		t.Fatalf("url = %q", url)
	}
	if !strings.HasPrefix(provider.lastImagePrompt, "An abstract representation of a dreamer gliding over moonlit clouds") {
		t.Fatalf("prompt = %q", provider.lastImagePrompt)
	}
	if !strings.HasSuffix(provider.lastImagePrompt, "high quality, lucid dream themed.") {
		t.Fatalf("prompt = %q", provider.lastImagePrompt)
	}
	if provider.lastImageSize != "1024x1024" {
		t.Fatalf("size = %q", provider.lastImageSize)
	}
}

func TestEnsureImageDefaultsUnknownStyleAndQuality(t *testing.T) {
	provider := &stubProvider{
		textResponses: []string{"a city made of glass"},
		imageURL:      "https://img.example/dream.png",
	}
	e, id := setup(t, provider, newFakeStore())

	if _, err := e.EnsureImage(context.Background(), id, "vaporwave", "ultra"); err != nil {
		t.Fatalf("EnsureImage: %v", err)
	}
	if !strings.HasPrefix(provider.lastImagePrompt, "A renaissance painting of") {
		t.Fatalf("prompt = %q", provider.lastImagePrompt)
	}
	if provider.lastImageSize != "256x256" {
		t.Fatalf("size = %q", provider.lastImageSize)
	}
}

func TestEnsureImageRejectsDanglingRecord(t *testing.T) {
	provider := &stubProvider{}
	fs := newFakeStore()
	e, id := setup(t, provider, fs)
	fs.listEmpty = true

	_, err := e.EnsureImage(context.Background(), id, "renaissance", "low")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("want ErrGenerationFailed, got %v", err)
	}
	if provider.textCalls != 0 || provider.imageCalls != 0 {
		t.Fatalf("provider reached for dangling record: text=%d image=%d", provider.textCalls, provider.imageCalls)
	}
}

func TestEnsureImageReturnsExistingWhenNotForced(t *testing.T) {
	provider := &stubProvider{}
	fs := newFakeStore()
	e, id := setup(t, provider, fs)
	journal := dreams.NewService(fs, zerolog.Nop())
	if err := journal.Update(context.Background(), id, nil, "https://img.example/cached.png"); err != nil {
		t.Fatal(err)
	}

	e.ForceRegenerate = false
	url, err := e.EnsureImage(context.Background(), id, "renaissance", "low")
	if err != nil || url != "https://img.example/cached.png" {
		t.Fatalf("url=%q err=%v", url, err)
	}
	if provider.imageCalls != 0 {
		t.Fatalf("provider called %d times for cached image", provider.imageCalls)
	}
}

func TestUpdateEnrichmentPersistsAndReturnsDream(t *testing.T) {
	fs := newFakeStore()
	e, id := setup(t, &stubProvider{}, fs)

	d, err := e.UpdateEnrichment(context.Background(), id, "deep analysis", "https://img.example/1.png")
	if err != nil {
		t.Fatalf("UpdateEnrichment: %v", err)
	}
	if d.Analysis != "deep analysis" || d.ImageURL != "https://img.example/1.png" {
		t.Fatalf("dream after update: %+v", d)
	}
}

func TestFixedDelayPolicy(t *testing.T) {
	p := FixedDelay{Delay: 5 * time.Second, MaxAttempts: 3}
	if d, ok := p.Next(0); !ok || d != 5*time.Second {
		t.Fatalf("Next(0) = %v %v", d, ok)
	}
	if d, ok := p.Next(1); !ok || d != 5*time.Second {
		t.Fatalf("Next(1) = %v %v", d, ok)
	}
	if _, ok := p.Next(2); ok {
		t.Fatal("Next(2) should stop after the third attempt")
	}
}
