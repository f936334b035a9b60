package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lucidia/lucid-server/internal/auth"
	"github.com/lucidia/lucid-server/internal/chat"
	"github.com/lucidia/lucid-server/internal/completion"
	"github.com/lucidia/lucid-server/internal/dreams"
	"github.com/lucidia/lucid-server/internal/enrich"
	"github.com/lucidia/lucid-server/internal/memstore"
	"github.com/lucidia/lucid-server/internal/model"
	"github.com/lucidia/lucid-server/internal/prefs"
)

// tokenVerifier treats any token containing '@' as the caller's email.
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, idToken string) (string, error) {
	if !strings.Contains(idToken, "@") {
		return "", auth.ErrUnauthorized
	}
	return idToken, nil
}

type fakeStore struct {
	seq     int
	records map[string]memstore.Record
	order   []string
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
	out := []memstore.Record{}
	for _, id := range f.order {
		if rec, ok := f.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) Search(_ context.Context, _, query string, limit int) ([]memstore.Record, error) {
	out := []memstore.Record{}
	for _, id := range f.order {
		rec, ok := f.records[id]
		if ok && strings.Contains(strings.ToLower(rec.Document), strings.ToLower(query)) && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
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

type stubProvider struct {
	text      string
	chatReply string
	imageURL  string
	args      map[string]interface{}

	lastImageSize string
}

func (s *stubProvider) TextCompletion(context.Context, string) (string, error) {
	return s.text, nil
}

func (s *stubProvider) ChatCompletion(context.Context, []model.ChatMessage) (string, error) {
	return s.chatReply, nil
}

func (s *stubProvider) FunctionCompletion(context.Context, []model.ChatMessage, completion.FunctionDef) (map[string]interface{}, error) {
	return s.args, nil
}

func (s *stubProvider) GenerateImage(_ context.Context, _, size string) (string, error) {
	s.lastImageSize = size
	return s.imageURL, nil
}

type harness struct {
	server   *httptest.Server
	store    *fakeStore
	provider *stubProvider
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := newFakeStore()
	provider := &stubProvider{
		text:      "generated text",
		chatReply: "a reply",
		imageURL:  "https://img.example/out.png",
		args:      map[string]interface{}{"emotions": "calm"},
	}
	logger := zerolog.Nop()
	journal := dreams.NewService(store, logger)
	enricher := enrich.New(provider, journal, enrich.FixedDelay{Delay: 0, MaxAttempts: 2}, logger)
	chatSvc := chat.NewService(provider, journal, chat.NewSessionStore(time.Hour), logger)
	prefsStore, err := prefs.Open(context.Background(), filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	t.Cleanup(func() { _ = prefsStore.Close() })

	srv := NewServer(journal, enricher, chatSvc, prefsStore, tokenVerifier{}, store.HealthCheck, logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &harness{server: ts, store: store, provider: provider}
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, h.server.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, buf.Bytes()
}

func (h *harness) createDream(t *testing.T, email, title, entry string) model.Dream {
	t.Helper()
	resp, body := h.do(t, http.MethodPost, "/api/dreams", email, map[string]string{
		"title": title, "date": "2021-10-10", "entry": entry,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create dream: status %d body %s", resp.StatusCode, body)
	}
	var d model.Dream
	if err := json.Unmarshal(body, &d); err != nil {
		t.Fatalf("decode dream: %v", err)
	}
	return d
}

func TestCreateDream(t *testing.T) {
	h := newHarness(t)
	d := h.createDream(t, "a@example.com", "Flying", "soaring above clouds")
	if d.ID == "" || d.OwnerEmail != "a@example.com" {
		t.Fatalf("dream: %+v", d)
	}
}

func TestCreateDreamWithBodyToken(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodPost, "/api/dreams", "", map[string]string{
		"title": "Flying", "date": "2021-10-10", "entry": "entry", "id_token": "a@example.com",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d body %s", resp.StatusCode, body)
	}
}

func TestCreateDreamRejectsMissingToken(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.do(t, http.MethodPost, "/api/dreams", "", map[string]string{
		"title": "Flying", "date": "2021-10-10", "entry": "entry",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestListDreamsScopedToOwner(t *testing.T) {
	h := newHarness(t)
	h.createDream(t, "a@example.com", "Mine", "my dream")
	h.createDream(t, "b@example.com", "Theirs", "their dream")

	resp, body := h.do(t, http.MethodGet, "/api/dreams", "a@example.com", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var list []model.Dream
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "Mine" {
		t.Fatalf("list: %+v", list)
	}
}

func TestGetDreamOwnerMismatchIs404(t *testing.T) {
	h := newHarness(t)
	d := h.createDream(t, "a@example.com", "Flying", "entry")

	resp, _ := h.do(t, http.MethodGet, "/api/dreams/"+d.ID, "b@example.com", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}

	resp, _ = h.do(t, http.MethodGet, "/api/dreams/unknown", "a@example.com", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status for unknown id: %d", resp.StatusCode)
	}
}

func TestUpdateDream(t *testing.T) {
	h := newHarness(t)
	d := h.createDream(t, "a@example.com", "Flying", "entry")

	resp, body := h.do(t, http.MethodPut, "/api/dreams/"+d.ID, "", map[string]interface{}{
		"analysis": "an analysis",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d body %s", resp.StatusCode, body)
	}
	var updated model.Dream
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Analysis != "an analysis" {
		t.Fatalf("updated: %+v", updated)
	}
}

func TestUpdateDreamNonStringIs500(t *testing.T) {
	h := newHarness(t)
	d := h.createDream(t, "a@example.com", "Flying", "entry")

	resp, _ := h.do(t, http.MethodPut, "/api/dreams/"+d.ID, "", map[string]interface{}{
		"analysis": 42,
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d", resp.StatusCode)
	}
	// Stored record unchanged.
	respGet, body := h.do(t, http.MethodGet, "/api/dreams/"+d.ID, "a@example.com", nil)
	if respGet.StatusCode != http.StatusOK {
		t.Fatalf("get status %d", respGet.StatusCode)
	}
	var got model.Dream
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Analysis != "" {
		t.Fatalf("analysis stored despite invalid update: %+v", got)
	}
}

func TestDeleteDream(t *testing.T) {
	h := newHarness(t)
	d := h.createDream(t, "a@example.com", "Flying", "entry")

	resp, _ := h.do(t, http.MethodDelete, "/api/dreams/"+d.ID, "b@example.com", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("foreign delete status %d", resp.StatusCode)
	}

	resp, body := h.do(t, http.MethodDelete, "/api/dreams/"+d.ID, "a@example.com", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d body %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "successfully deleted") {
		t.Fatalf("body %s", body)
	}

	// The record is gone, so a second delete fails the ownership check.
	resp, _ = h.do(t, http.MethodDelete, "/api/dreams/"+d.ID, "a@example.com", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("double delete status %d", resp.StatusCode)
	}
}

func TestGetAnalysis(t *testing.T) {
	h := newHarness(t)
	d := h.createDream(t, "a@example.com", "Flying", "entry")

	resp, _ := h.do(t, http.MethodGet, "/api/dreams/"+d.ID+"/analysis", "b@example.com", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("foreign analysis status %d", resp.StatusCode)
	}

	resp, body := h.do(t, http.MethodGet, "/api/dreams/"+d.ID+"/analysis", "a@example.com", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var analysis string
	if err := json.Unmarshal(body, &analysis); err != nil {
		t.Fatal(err)
	}
	if analysis != "generated text" {
		t.Fatalf("analysis %q", analysis)
	}
}

func TestGetImageUsesStoredPreferences(t *testing.T) {
	h := newHarness(t)
	d := h.createDream(t, "a@example.com", "Flying", "entry")

	resp, _ := h.do(t, http.MethodPost, "/api/user/image-quality", "a@example.com", map[string]string{"quality": "high"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set quality status %d", resp.StatusCode)
	}

	resp, body := h.do(t, http.MethodGet, "/api/dreams/"+d.ID+"/image", "a@example.com", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d body %s", resp.StatusCode, body)
	}
	var out map[string]string
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out["image"] != "https://img.example/out.png" {
		t.Fatalf("body %s", body)
	}
	if h.provider.lastImageSize != "1024x1024" {
		t.Fatalf("image size %q", h.provider.lastImageSize)
	}
}

func TestGetImageOwnerMismatchIs404(t *testing.T) {
	h := newHarness(t)
	d := h.createDream(t, "a@example.com", "Flying", "entry")
	resp, _ := h.do(t, http.MethodGet, "/api/dreams/"+d.ID+"/image", "b@example.com", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestSetImageStyleValidation(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.do(t, http.MethodPost, "/api/user/image-style", "a@example.com", map[string]string{"style": "vaporwave"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	resp, _ = h.do(t, http.MethodPost, "/api/user/image-style", "a@example.com", map[string]string{"style": "abstract"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestSearchDreams(t *testing.T) {
	h := newHarness(t)
	h.createDream(t, "a@example.com", "Ocean", "swimming in the ocean")
	h.createDream(t, "b@example.com", "Ocean too", "their ocean dream")

	resp, body := h.do(t, http.MethodPost, "/api/dreams/search", "a@example.com", map[string]string{"query": "ocean"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var list []model.Dream
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].OwnerEmail != "a@example.com" {
		t.Fatalf("list %+v", list)
	}
}

func TestChatEndpoint(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodPost, "/api/chat", "a@example.com", map[string]string{"message": "hello"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out map[string]string
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out["response"] != "a reply" {
		t.Fatalf("body %s", body)
	}
}

func TestSearchChatEndpointUnknownFunction(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodPost, "/api/dreams/search-chat", "a@example.com", map[string]string{
		"function_name": "summon_dragons", "prompt": "anything",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d body %s", resp.StatusCode, body)
	}
	var out model.SearchChatResult
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Function == "summon_dragons" || out.Function == "" {
		t.Fatalf("function %q", out.Function)
	}
	if out.SearchResults == nil {
		t.Fatal("searchResults missing from payload")
	}
}

func TestExportPDF(t *testing.T) {
	h := newHarness(t)
	h.createDream(t, "a@example.com", "Flying", "entry")

	resp, body := h.do(t, http.MethodGet, "/api/dreams/export/pdf", "a@example.com", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type %q", ct)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("body prefix %q", body[:minInt(8, len(body))])
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d body %s", resp.StatusCode, body)
	}
}

func TestHealthUnavailable(t *testing.T) {
	logger := zerolog.Nop()
	journal := dreams.NewService(newFakeStore(), logger)
	failing := func(context.Context) error { return errors.New("down") }
	srv := NewServer(journal, nil, nil, nil, tokenVerifier{}, failing, logger)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
