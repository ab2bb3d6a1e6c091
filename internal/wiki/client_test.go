package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/skepee/knowledge-rag/internal/log"
)

// fakeWikipedia serves the subset of the MediaWiki API the client uses.
// openSearch maps a search term to the titles returned for it; terms not
// in the map return no results.
type fakeWikipedia struct {
	mu         sync.Mutex
	openSearch map[string][]string
	pages      map[string]fakePage
	searches   []string // search terms in request order
	failSearch bool     // force 500 on opensearch calls
}

type fakePage struct {
	extract   string
	parseHTML string
	missing   bool
}

func (f *fakeWikipedia) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("action") {
		case "opensearch":
			f.mu.Lock()
			f.searches = append(f.searches, q.Get("search"))
			fail := f.failSearch
			titles := f.openSearch[q.Get("search")]
			f.mu.Unlock()

			if fail {
				http.Error(w, "server error", http.StatusInternalServerError)
				return
			}
			resp := []any{q.Get("search"), titles, []string{}, []string{}}
			_ = json.NewEncoder(w).Encode(resp)

		case "query":
			title := q.Get("titles")
			f.mu.Lock()
			page, ok := f.pages[title]
			f.mu.Unlock()

			if !ok || page.missing {
				fmt.Fprintf(w, `{"query":{"pages":[{"title":%q,"missing":true}]}}`, title)
				return
			}
			body := map[string]any{
				"query": map[string]any{
					"pages": []map[string]any{{
						"title":   title,
						"extract": page.extract,
						"fullurl": "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(title, " ", "_"),
					}},
				},
			}
			_ = json.NewEncoder(w).Encode(body)

		case "parse":
			title := q.Get("page")
			f.mu.Lock()
			page, ok := f.pages[title]
			f.mu.Unlock()

			if !ok || page.missing {
				fmt.Fprint(w, `{"error":{"code":"missingtitle"}}`)
				return
			}
			body := map[string]any{
				"parse": map[string]any{"title": title, "text": page.parseHTML},
			}
			_ = json.NewEncoder(w).Encode(body)

		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}
	})
}

func newTestClient(t *testing.T, fake *fakeWikipedia) *Client {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, UserAgent: "knowledge-rag tests"}, log.NewNop())
}

func TestSearchExactTierSufficient(t *testing.T) {
	fake := &fakeWikipedia{
		openSearch: map[string][]string{
			"machine learning": {"Machine learning", "Supervised learning", "Deep learning"},
		},
	}
	client := newTestClient(t, fake)

	got := client.Search(context.Background(), "What is machine learning?", 3)

	want := []string{"Machine learning", "Supervised learning", "Deep learning"}
	if len(got) != len(want) {
		t.Fatalf("Search() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Search()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if len(fake.searches) != 1 {
		t.Errorf("expected a single opensearch call, got %v", fake.searches)
	}
}

func TestSearchPerWordTier(t *testing.T) {
	// Exact query finds nothing; the per-word tier must search each word
	// longer than three characters and merge unique titles.
	fake := &fakeWikipedia{
		openSearch: map[string][]string{
			"mobility":  {"Mobility", "Social mobility"},
			"transport": {"Transport", "Mobility"},
		},
	}
	client := newTestClient(t, fake)

	got := client.Search(context.Background(), "What is mobility transport?", 3)

	want := []string{"Mobility", "Social mobility", "Transport"}
	if len(got) != len(want) {
		t.Fatalf("Search() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Search()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSearchSynonymTier(t *testing.T) {
	// Exact and per-word find nothing; the synonym table for
	// "machine learning" supplies the remaining candidates.
	fake := &fakeWikipedia{
		openSearch: map[string][]string{
			"artificial intelligence": {"Artificial intelligence"},
			"deep learning":           {"Deep learning"},
		},
	}
	client := newTestClient(t, fake)

	got := client.Search(context.Background(), "machine learning", 2)

	want := []string{"Artificial intelligence", "Deep learning"}
	if len(got) != len(want) {
		t.Fatalf("Search() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Search()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSearchTruncatesToMaxResults(t *testing.T) {
	fake := &fakeWikipedia{
		openSearch: map[string][]string{
			"physics": {"Physics", "Quantum physics", "Particle physics", "Astrophysics"},
		},
	}
	client := newTestClient(t, fake)

	got := client.Search(context.Background(), "physics", 2)
	if len(got) != 2 {
		t.Fatalf("Search() returned %d titles, want 2", len(got))
	}
}

func TestSearchRequestFailureYieldsEmpty(t *testing.T) {
	fake := &fakeWikipedia{failSearch: true}
	client := newTestClient(t, fake)

	got := client.Search(context.Background(), "anything at all", 3)
	if len(got) != 0 {
		t.Fatalf("Search() = %v, want empty on request failure", got)
	}
}

func TestFetch(t *testing.T) {
	content := "Photosynthesis is a process used by plants.\n\nIt converts light energy into chemical energy."
	fake := &fakeWikipedia{
		pages: map[string]fakePage{
			"Photosynthesis": {extract: content},
		},
	}
	client := newTestClient(t, fake)

	article, err := client.Fetch(context.Background(), "Photosynthesis")
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	if article.Title != "Photosynthesis" {
		t.Errorf("Title = %q", article.Title)
	}
	if article.URL != "https://en.wikipedia.org/wiki/Photosynthesis" {
		t.Errorf("URL = %q", article.URL)
	}
	if article.Content != content {
		t.Errorf("Content = %q", article.Content)
	}
	if article.Summary != "Photosynthesis is a process used by plants." {
		t.Errorf("Summary = %q", article.Summary)
	}
}

func TestFetchNotFound(t *testing.T) {
	fake := &fakeWikipedia{
		pages: map[string]fakePage{
			"Ghost page": {missing: true},
		},
	}
	client := newTestClient(t, fake)

	_, err := client.Fetch(context.Background(), "Ghost page")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Fetch() = %v, want ErrNotFound", err)
	}
}

func TestFetchTransportErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()
	client := NewClient(Config{BaseURL: srv.URL}, log.NewNop())

	_, err := client.Fetch(context.Background(), "Photosynthesis")
	if err == nil {
		t.Fatal("Fetch() = nil, want transport error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("transport failure misclassified as ErrNotFound: %v", err)
	}
}

func TestFetchFallsBackToParsedHTML(t *testing.T) {
	para := strings.Repeat("Photosynthesis converts light energy into chemical energy, producing oxygen and storing sugars in plant tissue for later use. ", 3)
	html := fmt.Sprintf(
		`<div class="mw-parser-output"><table class="infobox"><tr><td>box</td></tr></table><p>%s</p><p>%s</p><p>%s</p></div>`,
		para, para, para)

	fake := &fakeWikipedia{
		pages: map[string]fakePage{
			"Photosynthesis": {extract: "", parseHTML: html},
		},
	}
	client := newTestClient(t, fake)

	article, err := client.Fetch(context.Background(), "Photosynthesis")
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	if !strings.Contains(article.Content, "Photosynthesis converts light energy") {
		t.Errorf("fallback content missing article text: %q", article.Content)
	}
	if strings.Contains(article.Content, "box") {
		t.Errorf("fallback content should drop infobox text: %q", article.Content)
	}
}
