// Package wiki provides the Wikipedia boundary of the RAG pipeline:
// query normalization, tiered title search, and article content fetch.
//
// Search degrades rather than fails: a search tier that errors contributes
// zero results and the remaining tiers still run. Fetch distinguishes a
// missing page (ErrNotFound, expected per title) from transport failures,
// which propagate.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/skepee/knowledge-rag/internal/log"
)

// ErrNotFound indicates the requested page does not exist. It is an
// expected per-title outcome and must not abort batch indexing.
var ErrNotFound = errors.New("wiki: page not found")

// requestTimeout bounds each individual API call.
const requestTimeout = 10 * time.Second

// Config configures the Wikipedia client.
type Config struct {
	// Language selects the Wikipedia edition, e.g. "en".
	Language string

	// UserAgent is sent on every request. Wikipedia requires a
	// descriptive one.
	UserAgent string

	// BaseURL overrides the API endpoint. Test use; empty means the
	// live endpoint for Language.
	BaseURL string
}

// Client is a Wikipedia API client. Safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     log.Logger
}

// NewClient creates a Wikipedia client.
func NewClient(cfg Config, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNop()
	}

	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.wikipedia.org", lang)
	}

	return &Client{
		baseURL:    base,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// Search returns up to maxResults article titles for the question, in
// first-seen order across three tiers:
//
//  1. the normalized query itself
//  2. each query word longer than three characters
//  3. static topic synonyms
//
// Later tiers only run while the result set is short. Request failures
// within a tier are logged and yield no results for that tier; callers
// treat an empty result as "no sources found", not an error.
func (c *Client) Search(ctx context.Context, question string, maxResults int) []string {
	if maxResults <= 0 {
		return nil
	}

	query := NormalizeQuery(question)

	var results []string
	seen := make(map[string]bool)
	merge := func(titles []string) {
		for _, t := range titles {
			if len(results) >= maxResults {
				return
			}
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			results = append(results, t)
		}
	}

	// Tier 1: exact query.
	exact, err := c.openSearch(ctx, query, maxResults)
	if err != nil {
		c.logger.Warn("exact search failed", "query", query, "error", err)
	}
	merge(exact)

	// Tier 2: individual words, only when the exact tier came up short.
	if len(results) < maxResults/2 {
		for _, word := range strings.Fields(query) {
			if len(results) >= maxResults {
				break
			}
			if len(word) <= 3 {
				continue
			}
			titles, err := c.openSearch(ctx, word, maxResults)
			if err != nil {
				c.logger.Warn("per-word search failed", "word", word, "error", err)
				continue
			}
			merge(titles)
		}
	}

	// Tier 3: topic synonyms.
	if len(results) < maxResults {
		for _, syn := range synonymsFor(query) {
			if len(results) >= maxResults {
				break
			}
			titles, err := c.openSearch(ctx, syn, maxResults)
			if err != nil {
				c.logger.Warn("synonym search failed", "synonym", syn, "error", err)
				continue
			}
			merge(titles)
		}
	}

	c.logger.Debug("wikipedia search complete",
		"question", question,
		"query", query,
		"results", len(results))

	return results
}

// openSearch issues one opensearch API call and returns the title list.
func (c *Client) openSearch(ctx context.Context, term string, limit int) ([]string, error) {
	params := url.Values{
		"action": {"opensearch"},
		"search": {term},
		"limit":  {strconv.Itoa(limit)},
		"format": {"json"},
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	// Opensearch responses are a positional JSON array:
	// [query, [titles], [descriptions], [urls]].
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding opensearch response: %w", err)
	}
	if len(raw) < 2 {
		return nil, nil
	}

	var titles []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, fmt.Errorf("decoding opensearch titles: %w", err)
	}
	return titles, nil
}

// extractResponse is the shape of action=query&prop=extracts|info with
// formatversion=2.
type extractResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Missing bool   `json:"missing"`
			Extract string `json:"extract"`
			FullURL string `json:"fullurl"`
		} `json:"pages"`
	} `json:"query"`
}

// Fetch retrieves the full plain-text content and metadata for a title.
// A page that does not exist returns ErrNotFound; transport failures
// propagate as retryable errors. When the extracts API returns an empty
// body for an existing page, Fetch falls back to the rendered HTML and
// extracts readable text from it.
func (c *Client) Fetch(ctx context.Context, title string) (*Article, error) {
	params := url.Values{
		"action":        {"query"},
		"prop":          {"extracts|info"},
		"explaintext":   {"1"},
		"redirects":     {"1"},
		"inprop":        {"url"},
		"titles":        {title},
		"format":        {"json"},
		"formatversion": {"2"},
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var resp extractResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding extract response: %w", err)
	}
	if len(resp.Query.Pages) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}

	page := resp.Query.Pages[0]
	if page.Missing {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}

	content := strings.TrimSpace(page.Extract)
	if content == "" {
		// Some pages render fine but return empty extracts. Pull the
		// parsed HTML and strip it down to readable text instead.
		content, err = c.fetchReadableText(ctx, page.Title, page.FullURL)
		if err != nil {
			return nil, fmt.Errorf("extract fallback for %q: %w", page.Title, err)
		}
	}
	if content == "" {
		return nil, fmt.Errorf("%w: %q has no content", ErrNotFound, page.Title)
	}

	return &Article{
		Title:   page.Title,
		URL:     page.FullURL,
		Summary: firstParagraph(content),
		Content: content,
	}, nil
}

// parseResponse is the shape of action=parse with formatversion=2.
type parseResponse struct {
	Parse struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

// fetchReadableText fetches the rendered page HTML and reduces it to plain
// text: navigation chrome, infoboxes and reference markers are dropped
// before readability extraction.
func (c *Client) fetchReadableText(ctx context.Context, title, pageURL string) (string, error) {
	params := url.Values{
		"action":        {"parse"},
		"page":          {title},
		"prop":          {"text"},
		"format":        {"json"},
		"formatversion": {"2"},
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return "", err
	}

	var resp parseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding parse response: %w", err)
	}
	if resp.Error != nil {
		if resp.Error.Code == "missingtitle" {
			return "", fmt.Errorf("%w: %q", ErrNotFound, title)
		}
		return "", fmt.Errorf("parse API error: %s", resp.Error.Code)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Parse.Text))
	if err != nil {
		return "", fmt.Errorf("parsing article HTML: %w", err)
	}
	doc.Find("table, .infobox, .navbox, .mw-editsection, sup.reference, style").Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("serializing cleaned HTML: %w", err)
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(cleaned), parsedURL)
	if err != nil {
		return "", fmt.Errorf("readability extraction: %w", err)
	}

	return strings.TrimSpace(article.TextContent), nil
}

// get issues one GET against the API endpoint and returns the body.
// Non-2xx statuses are transport errors.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + "/w/api.php?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("wikipedia request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// firstParagraph returns the text up to the first blank line.
func firstParagraph(text string) string {
	if idx := strings.Index(text, "\n\n"); idx > 0 {
		return strings.TrimSpace(text[:idx])
	}
	return strings.TrimSpace(text)
}
