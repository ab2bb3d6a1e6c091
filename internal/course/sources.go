package course

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/skepee/knowledge-rag/internal/log"
	"github.com/skepee/knowledge-rag/internal/wiki"
)

// Provider credibility scores. Wikipedia sits below the curated academic
// catalogues and above general web content.
const (
	credibilityMIT       = 0.95
	credibilitySEP       = 0.9
	credibilityWikipedia = 0.85
	credibilityKhan      = 0.8
)

// WikiSource searches and fetches Wikipedia articles for a topic.
type WikiSource interface {
	Search(ctx context.Context, question string, maxResults int) []string
	Fetch(ctx context.Context, title string) (*wiki.Article, error)
}

// Finder gathers reference material for a topic from Wikipedia and the
// curated catalogues, most credible first.
type Finder struct {
	wiki   WikiSource
	logger log.Logger
}

func NewFinder(w WikiSource, logger log.Logger) *Finder {
	return &Finder{wiki: w, logger: logger}
}

// Find returns up to maxPerSource entries per provider, sorted by
// credibility. Provider failures degrade to the curated catalogues, so the
// result is never empty.
func (f *Finder) Find(ctx context.Context, topic string, maxPerSource int) []ContentSource {
	var all []ContentSource

	all = append(all, f.wikipediaSources(ctx, topic, maxPerSource)...)
	all = append(all, catalogMatches(mitCatalog, topic, maxPerSource, "academic", credibilityMIT)...)
	all = append(all, catalogMatches(khanCatalog, topic, maxPerSource, "educational", credibilityKhan)...)
	all = append(all, catalogMatches(sepCatalog, topic, maxPerSource, "academic", credibilitySEP)...)

	if len(all) == 0 {
		all = append(all, ContentSource{
			Title:       "Khan Academy: " + topic,
			URL:         "https://www.khanacademy.org/search?page_search_query=" + url.QueryEscape(topic),
			Description: "Interactive lessons and practice exercises on " + topic,
			SourceType:  "educational",
			Credibility: credibilityKhan,
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Credibility > all[j].Credibility
	})
	return all
}

func (f *Finder) wikipediaSources(ctx context.Context, topic string, maxResults int) []ContentSource {
	titles := f.wiki.Search(ctx, topic, maxResults)
	sources := make([]ContentSource, 0, len(titles))
	for _, title := range titles {
		article, err := f.wiki.Fetch(ctx, title)
		if err != nil {
			f.logger.Warn("fetching wikipedia source failed", "title", title, "error", err)
			continue
		}
		sources = append(sources, ContentSource{
			Title:       article.Title,
			URL:         article.URL,
			Description: article.Summary,
			SourceType:  "encyclopedia",
			Credibility: credibilityWikipedia,
		})
	}
	return sources
}

type catalogEntry struct {
	title       string
	url         string
	description string
}

// Curated real course material by topic, used because none of these
// providers exposes a public search API.
var mitCatalog = map[string][]catalogEntry{
	"computer science": {
		{
			title:       "6.0001 Introduction to Computer Science and Programming in Python",
			url:         "https://ocw.mit.edu/courses/6-0001-introduction-to-computer-science-and-programming-in-python-fall-2016/",
			description: "Introduction to computer science and programming for students with little or no programming experience.",
		},
		{
			title:       "6.006 Introduction to Algorithms",
			url:         "https://ocw.mit.edu/courses/6-006-introduction-to-algorithms-spring-2020/",
			description: "Introduction to mathematical modeling of computational problems and common algorithmic approaches.",
		},
	},
	"machine learning": {
		{
			title:       "6.034 Artificial Intelligence",
			url:         "https://ocw.mit.edu/courses/6-034-artificial-intelligence-fall-2010/",
			description: "Introduction to representations, techniques, and architectures used in AI.",
		},
		{
			title:       "6.867 Machine Learning",
			url:         "https://ocw.mit.edu/courses/6-867-machine-learning-fall-2006/",
			description: "Principles, algorithms, and applications of machine learning.",
		},
	},
	"mathematics": {
		{
			title:       "18.01 Single Variable Calculus",
			url:         "https://ocw.mit.edu/courses/18-01sc-single-variable-calculus-fall-2010/",
			description: "Differentiation and integration of functions of one variable.",
		},
		{
			title:       "18.06 Linear Algebra",
			url:         "https://ocw.mit.edu/courses/18-06-linear-algebra-spring-2010/",
			description: "Basic subject on matrix theory and linear algebra.",
		},
	},
	"physics": {
		{
			title:       "8.01 Physics I: Classical Mechanics",
			url:         "https://ocw.mit.edu/courses/8-01sc-classical-mechanics-fall-2016/",
			description: "Introduction to Newtonian mechanics, fluid mechanics, and kinetic gas theory.",
		},
	},
	"data science": {
		{
			title:       "15.071 The Analytics Edge",
			url:         "https://ocw.mit.edu/courses/15-071-the-analytics-edge-spring-2017/",
			description: "Using data and analytical models to analyze and solve real-world problems.",
		},
	},
}

var khanCatalog = map[string][]catalogEntry{
	"algebra": {
		{
			title:       "Algebra 1",
			url:         "https://www.khanacademy.org/math/algebra",
			description: "Learn algebra basics including linear equations, inequalities, graphs, and systems of equations.",
		},
	},
	"calculus": {
		{
			title:       "Calculus 1",
			url:         "https://www.khanacademy.org/math/calculus-1",
			description: "Learn differential calculus including limits, derivatives, and applications.",
		},
	},
	"computer science": {
		{
			title:       "Intro to Programming",
			url:         "https://www.khanacademy.org/computing/computer-programming",
			description: "Learn programming through drawing, animation, and interactive projects.",
		},
	},
	"machine learning": {
		{
			title:       "Statistics and Probability",
			url:         "https://www.khanacademy.org/math/statistics-probability",
			description: "Foundation for machine learning including statistical concepts and probability.",
		},
	},
}

var sepCatalog = map[string][]catalogEntry{
	"ethics": {
		{
			title:       "Ethics",
			url:         "https://plato.stanford.edu/entries/ethics-virtue/",
			description: "Comprehensive overview of virtue ethics and moral philosophy.",
		},
	},
	"philosophy": {
		{
			title:       "Epistemology",
			url:         "https://plato.stanford.edu/entries/epistemology/",
			description: "Study of knowledge, justified belief, and rationality.",
		},
	},
	"logic": {
		{
			title:       "Logic and Ontology",
			url:         "https://plato.stanford.edu/entries/logic-ontology/",
			description: "Relationship between logic and metaphysics.",
		},
	},
}

// catalogMatches returns catalogue entries whose topic key overlaps the
// query in either direction.
func catalogMatches(catalog map[string][]catalogEntry, query string, maxResults int, sourceType string, credibility float64) []ContentSource {
	queryLower := strings.ToLower(query)

	topics := make([]string, 0, len(catalog))
	for topic := range catalog {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	for _, topic := range topics {
		if !strings.Contains(queryLower, topic) && !strings.Contains(topic, queryLower) {
			continue
		}
		entries := catalog[topic]
		if len(entries) > maxResults {
			entries = entries[:maxResults]
		}
		sources := make([]ContentSource, 0, len(entries))
		for _, e := range entries {
			sources = append(sources, ContentSource{
				Title:       e.title,
				URL:         e.url,
				Description: e.description,
				SourceType:  sourceType,
				Credibility: credibility,
			})
		}
		return sources
	}
	return nil
}
