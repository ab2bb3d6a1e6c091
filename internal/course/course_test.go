package course

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/skepee/knowledge-rag/internal/llm"
	"github.com/skepee/knowledge-rag/internal/log"
	"github.com/skepee/knowledge-rag/internal/wiki"
)

type fakeWiki struct {
	titles map[string][]string
}

func (f *fakeWiki) Search(_ context.Context, question string, maxResults int) []string {
	titles := f.titles[question]
	if len(titles) > maxResults {
		return titles[:maxResults]
	}
	return titles
}

func (f *fakeWiki) Fetch(_ context.Context, title string) (*wiki.Article, error) {
	return &wiki.Article{
		Title:   title,
		URL:     "https://en.wikipedia.org/wiki/" + title,
		Summary: "summary of " + title,
	}, nil
}

type fakePlanner struct {
	result llm.StructuredResult[Outline]
	err    error
	calls  int
}

func (f *fakePlanner) PlanOutline(_ context.Context, _, _, _ string) (llm.StructuredResult[Outline], error) {
	f.calls++
	return f.result, f.err
}

type fakeCompleter struct {
	prompts []string
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, _, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return "lecture content", nil
}

func TestFindMergesProviders(t *testing.T) {
	w := &fakeWiki{titles: map[string][]string{
		"machine learning": {"Machine learning"},
	}}
	finder := NewFinder(w, log.NewNop())

	sources := finder.Find(context.Background(), "machine learning", 4)
	if len(sources) == 0 {
		t.Fatal("Find() returned no sources")
	}

	types := map[string]bool{}
	for _, s := range sources {
		types[s.SourceType] = true
		if s.Credibility <= 0 || s.Credibility > 1 {
			t.Errorf("source %q has credibility %v", s.Title, s.Credibility)
		}
	}
	if !types["encyclopedia"] {
		t.Error("no Wikipedia source in result")
	}
	if !types["academic"] {
		t.Error("no curated academic source in result")
	}

	for i := 1; i < len(sources); i++ {
		if sources[i].Credibility > sources[i-1].Credibility {
			t.Fatalf("sources not sorted by credibility: %v after %v",
				sources[i].Credibility, sources[i-1].Credibility)
		}
	}
}

func TestFindNeverEmpty(t *testing.T) {
	finder := NewFinder(&fakeWiki{}, log.NewNop())

	sources := finder.Find(context.Background(), "underwater basket weaving", 4)
	if len(sources) == 0 {
		t.Fatal("Find() must degrade to a default source")
	}
}

func TestCatalogMatches(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "exact topic", query: "machine learning", want: 2},
		{name: "topic inside query", query: "intro to machine learning course", want: 2},
		{name: "no match", query: "gardening", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalogMatches(mitCatalog, tt.query, 4, "academic", credibilityMIT)
			if len(got) != tt.want {
				t.Errorf("catalogMatches(%q) returned %d entries, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestGenerateUsesPlannedOutline(t *testing.T) {
	outline := Outline{
		CourseTitle: "Advanced Machine Learning",
		Modules: []ModuleOutline{
			{ModuleNumber: 1, Title: "Supervised Learning", KeyConcepts: []string{"regression"}},
			{ModuleNumber: 2, Title: "Unsupervised Learning"},
		},
	}
	planner := &fakePlanner{result: llm.StructuredResult[Outline]{Parsed: &outline}}
	completer := &fakeCompleter{}
	gen := NewGenerator(planner, completer, NewFinder(&fakeWiki{}, log.NewNop()), 3, log.NewNop())

	got, err := gen.Generate(context.Background(), "machine learning", "university")
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}
	if got.CourseTitle != "Advanced Machine Learning" {
		t.Errorf("CourseTitle = %q", got.CourseTitle)
	}
	if len(got.Modules) != 2 {
		t.Fatalf("got %d modules, want 2", len(got.Modules))
	}
	if got.Modules[0].Content != "lecture content" {
		t.Errorf("module content = %q", got.Modules[0].Content)
	}
	if len(completer.prompts) != 2 {
		t.Errorf("completer called %d times, want once per module", len(completer.prompts))
	}
	if !strings.Contains(completer.prompts[0], "Supervised Learning") {
		t.Errorf("module prompt missing module title:\n%s", completer.prompts[0])
	}
}

func TestGenerateFallsBackOnUnparsedOutline(t *testing.T) {
	planner := &fakePlanner{result: llm.StructuredResult[Outline]{Raw: "not json at all"}}
	gen := NewGenerator(planner, &fakeCompleter{}, NewFinder(&fakeWiki{}, log.NewNop()), 3, log.NewNop())

	got, err := gen.Generate(context.Background(), "quantum computing", "university")
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}
	if got.CourseTitle != "Comprehensive quantum computing Studies" {
		t.Errorf("fallback CourseTitle = %q", got.CourseTitle)
	}
	if len(got.Modules) != 3 {
		t.Errorf("got %d modules, want maxModules cap of 3", len(got.Modules))
	}
	if got.Modules[0].Title != "Foundations of quantum computing" {
		t.Errorf("first fallback module = %q", got.Modules[0].Title)
	}
}

func TestGenerateFallsBackOnPlannerError(t *testing.T) {
	planner := &fakePlanner{err: errors.New("model unavailable")}
	gen := NewGenerator(planner, &fakeCompleter{}, NewFinder(&fakeWiki{}, log.NewNop()), 2, log.NewNop())

	got, err := gen.Generate(context.Background(), "logic", "university")
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}
	if len(got.Modules) != 2 {
		t.Errorf("got %d modules, want 2", len(got.Modules))
	}
}

func TestGenerateModuleFailureAborts(t *testing.T) {
	outline := Outline{
		CourseTitle: "Logic",
		Modules:     []ModuleOutline{{ModuleNumber: 1, Title: "Propositional Logic"}},
	}
	planner := &fakePlanner{result: llm.StructuredResult[Outline]{Parsed: &outline}}
	completer := &fakeCompleter{err: errors.New("model unavailable")}
	gen := NewGenerator(planner, completer, NewFinder(&fakeWiki{}, log.NewNop()), 3, log.NewNop())

	if _, err := gen.Generate(context.Background(), "logic", "university"); err == nil {
		t.Fatal("Generate() must fail when module content generation fails")
	}
}

// Course codes are cut to four runes, not four bytes; multibyte topics
// must not produce invalid UTF-8.
func TestFallbackOutlineMultibyteCourseCode(t *testing.T) {
	outline := fallbackOutline("éducation théorie", "university")

	if outline.CourseCode != "ÉDUC401" {
		t.Errorf("CourseCode = %q, want %q", outline.CourseCode, "ÉDUC401")
	}
	if !utf8.ValidString(outline.CourseCode) {
		t.Errorf("CourseCode %q is not valid UTF-8", outline.CourseCode)
	}
}

func TestTruncateRunes(t *testing.T) {
	long := strings.Repeat("é", 10)

	got := truncateRunes(long, 4)
	if got != "éééé..." {
		t.Errorf("truncateRunes() = %q, want %q", got, "éééé...")
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncateRunes() = %q, not valid UTF-8", got)
	}
	if got := truncateRunes("short", 10); got != "short" {
		t.Errorf("truncateRunes() = %q, want unchanged", got)
	}
}

func TestFallbackOutlineShape(t *testing.T) {
	outline := fallbackOutline("machine learning", "university")

	if outline.CourseCode != "MACH401" {
		t.Errorf("CourseCode = %q", outline.CourseCode)
	}
	if len(outline.Modules) != 8 {
		t.Fatalf("got %d modules, want 8", len(outline.Modules))
	}
	for i, m := range outline.Modules {
		if m.ModuleNumber != i+1 {
			t.Errorf("module %d has number %d", i, m.ModuleNumber)
		}
		if len(m.Objectives) == 0 || len(m.KeyConcepts) == 0 {
			t.Errorf("module %q missing objectives or concepts", m.Title)
		}
	}
}
