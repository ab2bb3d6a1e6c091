package wiki

import "strings"

// questionWords are stripped from queries before searching. Interrogative
// words carry no signal for title search.
var questionWords = map[string]bool{
	"what": true, "is": true, "are": true, "who": true, "when": true,
	"where": true, "why": true, "how": true, "does": true, "do": true,
	"did": true, "can": true, "could": true, "would": true, "should": true,
}

const tokenPunctuation = "?.,!;:"

// NormalizeQuery turns a raw question into a search-friendly query:
// lower-cased, stop-words removed, punctuation trimmed from each token.
// It never returns an empty string; if every token is removed the original
// question is returned unchanged.
func NormalizeQuery(question string) string {
	var kept []string
	for _, word := range strings.Fields(strings.ToLower(question)) {
		if questionWords[word] {
			continue
		}
		word = strings.Trim(word, tokenPunctuation)
		if word == "" {
			continue
		}
		kept = append(kept, word)
	}

	if len(kept) == 0 {
		return question
	}
	return strings.Join(kept, " ")
}
