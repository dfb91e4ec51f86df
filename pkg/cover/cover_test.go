package cover

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haivivi/songforge/pkg/catalog"
	"github.com/haivivi/songforge/pkg/store"
)

func TestFallbackDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := Fallback{}.Generate(ctx, "Midnight River", "Ann Lee", "Rock")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Fallback{}.Generate(ctx, "Midnight River", "Ann Lee", "Jazz")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("fallback cover should depend on title and artist only")
	}
	c, err := Fallback{}.Generate(ctx, "Golden Shadow", "Ann Lee", "Rock")
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Fatal("different titles produced the same cover")
	}
	if !strings.HasPrefix(a, "data:image/png;base64,") {
		t.Fatalf("cover = %.40s", a)
	}
}

func TestRenderImage(t *testing.T) {
	data, err := Render("A very long title that will certainly not fit on one line of the cover", "Пісня Гурт")
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != FallbackSize || b.Dy() != FallbackSize {
		t.Fatalf("bounds = %v", b)
	}
}

func TestDataURL(t *testing.T) {
	url := DataURL("", []byte("png"))
	mt, data, err := ParseDataURL(url)
	if err != nil {
		t.Fatal(err)
	}
	if mt != "image/png" || string(data) != "png" {
		t.Fatalf("parsed %q %q", mt, data)
	}
	for _, bad := range []string{"http://x", "data:image/png;base64", "data:text/plain,hi", "data:image/png;base64,@@"} {
		if _, _, err := ParseDataURL(bad); err == nil {
			t.Errorf("ParseDataURL(%q) should fail", bad)
		}
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt("Night Drive", "The Wolves", "Hip Hop")
	if !strings.Contains(p, `"Night Drive"`) || !strings.Contains(p, "The Wolves") || !strings.Contains(p, "hip hop") {
		t.Fatalf("prompt = %q", p)
	}
}

type stubProvider struct {
	url   string
	err   error
	calls atomic.Int32
}

func (s *stubProvider) Generate(context.Context, string, string, string) (string, error) {
	s.calls.Add(1)
	return s.url, s.err
}

func TestWithFallback(t *testing.T) {
	ctx := context.Background()
	ok := WithFallback(&stubProvider{url: "data:primary"}, &stubProvider{url: "data:fallback"})
	if got, _ := ok.Generate(ctx, "t", "a", "g"); got != "data:primary" {
		t.Fatalf("got %q", got)
	}
	failing := WithFallback(&stubProvider{err: errors.New("quota")}, &stubProvider{url: "data:fallback"})
	got, err := failing.Generate(ctx, "t", "a", "g")
	if err != nil || got != "data:fallback" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(Fallback); !ok {
		t.Fatalf("New(none) = %T", p)
	}
	if _, err := New(ctx, Config{Provider: ProviderOpenAI}); err == nil {
		t.Fatal("expected missing key error")
	}
	if _, err := New(ctx, Config{Provider: ProviderGemini}); err == nil {
		t.Fatal("expected missing key error")
	}
	if _, err := New(ctx, Config{Provider: "midjourney"}); err == nil {
		t.Fatal("expected unknown provider error")
	}
}

func TestOpenAIGenerate(t *testing.T) {
	img := base64.StdEncoding.EncodeToString([]byte("fake png"))
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/images/generations") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []map[string]any{{"b64_json": img}},
		})
	}))
	defer srv.Close()

	p, err := NewOpenAI(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1/"})
	if err != nil {
		t.Fatal(err)
	}
	url, err := p.Generate(context.Background(), "Night Drive", "Ann Lee", "Rock")
	if err != nil {
		t.Fatal(err)
	}
	if url != "data:image/png;base64,"+img {
		t.Fatalf("url = %q", url)
	}
	if gotBody["model"] != DefaultOpenAIModel || gotBody["response_format"] != "b64_json" {
		t.Fatalf("request = %v", gotBody)
	}
}

func TestOpenAINoImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"created":1,"data":[]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/v1/", Model: "gpt-image-1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Generate(context.Background(), "t", "a", "g"); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func testSongs(n int) []*catalog.Song {
	return catalog.NewGenerator(nil).Batch(catalog.Params{Page: 1, Locale: "en", Seed: 1, AvgLikes: 2, Count: n})
}

func TestEnricherCover(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	p := &stubProvider{url: "data:cover"}
	e := NewEnricher(p, st, 1, time.Second)
	s := testSongs(1)[0]

	for range 2 {
		url, err := e.Cover(ctx, s)
		if err != nil {
			t.Fatal(err)
		}
		if url != "data:cover" {
			t.Fatalf("url = %q", url)
		}
	}
	if p.calls.Load() != 1 {
		t.Fatalf("provider called %d times, want 1", p.calls.Load())
	}
	if s.Cover != "" {
		t.Fatal("enricher mutated the generated record")
	}
}

func TestEnricherEnrich(t *testing.T) {
	st := store.NewMemory()
	e := NewEnricher(Fallback{}, st, 3, time.Second)
	songs := testSongs(5)

	e.Enrich(context.Background(), songs)
	for _, s := range songs {
		got, err := st.Get(context.Background(), store.KeyOf(s))
		if err != nil {
			t.Fatal(err)
		}
		if got.Cover == "" {
			t.Fatalf("song %d has no cover", s.Index)
		}
	}
}

func TestEnricherCanceled(t *testing.T) {
	st := store.NewMemory()
	p := &stubProvider{url: "data:x"}
	e := NewEnricher(p, st, 1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.Enrich(ctx, testSongs(4))
	if p.calls.Load() != 0 {
		t.Fatalf("provider called %d times after cancel", p.calls.Load())
	}
}

func TestEnricherSkipsFailures(t *testing.T) {
	st := store.NewMemory()
	e := NewEnricher(&stubProvider{err: errors.New("down")}, st, 2, time.Second)
	songs := testSongs(3)
	e.Enrich(context.Background(), songs)
	for _, s := range songs {
		got, err := st.Get(context.Background(), store.KeyOf(s))
		if err != nil {
			t.Fatal(err)
		}
		if got.Cover != "" {
			t.Fatal("failed generation must leave the cover absent")
		}
	}
}
