package wiki

// Article is a fetched Wikipedia article. Immutable once fetched; only its
// chunks are persisted, never the article itself.
type Article struct {
	Title   string // Canonical title (after redirects)
	URL     string // Canonical page URL
	Summary string // Leading paragraph
	Content string // Full plain-text content
}
