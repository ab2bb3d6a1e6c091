package wiki

import "strings"

// topicSynonyms maps known topics to semantically related search terms.
// Used as the last search tier when exact and per-word searches come up
// short. Keys are matched against the normalized query, longest key first.
var topicSynonyms = map[string][]string{
	"machine learning":   {"artificial intelligence", "deep learning", "neural network"},
	"mobility transport": {"transport", "transportation", "public transport", "sustainable transport"},
	"climate change":     {"global warming", "greenhouse effect", "climate"},
	"quantum computing":  {"quantum mechanics", "qubit", "quantum information"},
	"renewable energy":   {"solar power", "wind power", "sustainable energy"},
	"data science":       {"statistics", "data analysis", "big data"},
	"blockchain":         {"cryptocurrency", "distributed ledger", "bitcoin"},
	"genetics":           {"genome", "dna", "heredity"},
}

// synonymsFor returns related search terms for the query, or nil when no
// topic matches. An exact key match wins; otherwise any key contained in
// the query contributes its synonyms.
func synonymsFor(query string) []string {
	q := strings.ToLower(query)

	if syn, ok := topicSynonyms[q]; ok {
		return syn
	}

	var merged []string
	for key, syn := range topicSynonyms {
		if strings.Contains(q, key) {
			merged = append(merged, syn...)
		}
	}
	return merged
}
