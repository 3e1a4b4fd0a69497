// ABOUTME: Web pack answers questions from outside services: weather, search,
// ABOUTME: Wikipedia, news headlines, and jokes or quotes.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/cbbisht2004/Yogi/internal/config"
	"github.com/cbbisht2004/Yogi/internal/tools"
)

// maxSearchResults caps how many search hits are read back.
const maxSearchResults = 3

// WebPack creates the web lookup pack. Base URLs come from the services
// configuration so tests can point the tools at local servers.
func WebPack(cfg config.ServicesConfig, logger *slog.Logger) *tools.Pack {
	if logger == nil {
		logger = slog.Default()
	}
	h := &webHandlers{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		logger: logger.With("component", "web"),
	}
	return &tools.Pack{
		ID: "core.web",
		Tools: []*tools.Tool{
			{
				Name:        "get_weather",
				Description: "Get the current weather for a city.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}},"required":["city"]}`),
				Handler:     h.Weather,
			},
			{
				Name:        "search_web",
				Description: "Search the web using DuckDuckGo.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`),
				Handler:     h.Search,
			},
			{
				Name:        "wikipedia_summary",
				Description: "Get a summary of a Wikipedia topic.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"topic":{"type":"string"},"sentences":{"type":"integer","description":"How many sentences to read back"}},"required":["topic"]}`),
				Handler:     h.WikipediaSummary,
			},
			{
				Name:        "get_news_headlines",
				Description: "Get latest news headlines (top stories).",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"country":{"type":"string","description":"Two-letter country code, default us"},"count":{"type":"integer","description":"How many headlines, default 5"}}}`),
				Handler:     h.NewsHeadlines,
			},
			{
				Name:        "get_joke_or_quote",
				Description: "Get a random joke or inspirational quote.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"type":{"type":"string","enum":["joke","quote"]}}}`),
				Handler:     h.JokeOrQuote,
			},
		},
	}
}

type webHandlers struct {
	cfg    config.ServicesConfig
	client *http.Client
	logger *slog.Logger
}

func (h *webHandlers) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; yogi/1.0)")
	return h.client.Do(req)
}

type weatherInput struct {
	City string `json:"city"`
}

func (h *webHandlers) Weather(ctx context.Context, input json.RawMessage) (string, error) {
	var in weatherInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.City == "" {
		return "", fmt.Errorf("city is required")
	}

	endpoint := fmt.Sprintf("%s/%s?format=3", strings.TrimRight(h.cfg.WeatherBase, "/"), url.PathEscape(in.City))
	resp, err := h.get(ctx, endpoint)
	if err != nil {
		h.logger.Error("weather fetch failed", "city", in.City, "error", err)
		return fmt.Sprintf("Couldn't fetch weather for %s.", in.City), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		h.logger.Error("weather fetch failed", "city", in.City, "status", resp.StatusCode)
		return fmt.Sprintf("Couldn't fetch weather for %s.", in.City), nil
	}
	return strings.TrimSpace(string(body)), nil
}

type searchInput struct {
	Query string `json:"query"`
}

func (h *webHandlers) Search(ctx context.Context, input json.RawMessage) (string, error) {
	var in searchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Query == "" {
		return "", fmt.Errorf("query is required")
	}

	endpoint := fmt.Sprintf("%s/?q=%s", strings.TrimRight(h.cfg.SearchBase, "/"), url.QueryEscape(in.Query))
	resp, err := h.get(ctx, endpoint)
	if err != nil {
		h.logger.Error("search failed", "query", in.Query, "error", err)
		return fmt.Sprintf("Could not perform search for '%s'.", in.Query), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.logger.Error("search failed", "query", in.Query, "status", resp.StatusCode)
		return fmt.Sprintf("Could not perform search for '%s'.", in.Query), nil
	}

	results := parseSearchResults(resp.Body, maxSearchResults)
	if len(results) == 0 {
		return fmt.Sprintf("Could not perform search for '%s'.", in.Query), nil
	}

	lines := make([]string, len(results))
	for i, r := range results {
		if r.Snippet != "" {
			lines[i] = fmt.Sprintf("%s: %s", r.Title, r.Snippet)
		} else {
			lines[i] = r.Title
		}
	}
	return strings.Join(lines, "\n"), nil
}

type searchResult struct {
	Title   string
	Snippet string
}

// parseSearchResults pulls result titles and snippets out of a DuckDuckGo
// HTML results page. Titles are anchors classed result__a; each snippet
// anchor that follows fills the most recent result.
func parseSearchResults(r io.Reader, limit int) []searchResult {
	doc, err := html.Parse(r)
	if err != nil {
		return nil
	}

	var results []searchResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			class := attrValue(n, "class")
			switch {
			case strings.Contains(class, "result__a"):
				if len(results) < limit {
					results = append(results, searchResult{Title: textContent(n)})
				}
			case strings.Contains(class, "result__snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = textContent(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

type wikipediaInput struct {
	Topic     string `json:"topic"`
	Sentences int    `json:"sentences"`
}

func (h *webHandlers) WikipediaSummary(ctx context.Context, input json.RawMessage) (string, error) {
	var in wikipediaInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Topic == "" {
		return "", fmt.Errorf("topic is required")
	}
	if in.Sentences <= 0 {
		in.Sentences = 2
	}

	base := strings.TrimRight(h.cfg.WikiBase, "/")
	resp, err := h.get(ctx, fmt.Sprintf("%s/page/summary/%s", base, url.PathEscape(in.Topic)))
	if err != nil {
		return fmt.Sprintf("Error fetching Wikipedia summary: %v", err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "Topic not found.", nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error fetching Wikipedia summary: unexpected status %d", resp.StatusCode), nil
	}

	var page struct {
		Type    string `json:"type"`
		Extract string `json:"extract"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return fmt.Sprintf("Error fetching Wikipedia summary: %v", err), nil
	}

	if page.Type == "disambiguation" {
		return fmt.Sprintf("Topic is ambiguous. Options: %s...", strings.Join(h.relatedTitles(ctx, base, in.Topic), ", ")), nil
	}
	return firstSentences(page.Extract, in.Sentences), nil
}

// relatedTitles fetches up to five related page titles for a disambiguation
// prompt. Failures just produce an empty list.
func (h *webHandlers) relatedTitles(ctx context.Context, base, topic string) []string {
	resp, err := h.get(ctx, fmt.Sprintf("%s/page/related/%s", base, url.PathEscape(topic)))
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	var related struct {
		Pages []struct {
			Title string `json:"title"`
		} `json:"pages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&related); err != nil {
		return nil
	}

	titles := make([]string, 0, 5)
	for _, p := range related.Pages {
		if len(titles) == 5 {
			break
		}
		titles = append(titles, p.Title)
	}
	return titles
}

// firstSentences trims text down to its first n sentences.
func firstSentences(text string, n int) string {
	count := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			j := i + 1
			for j < len(text) && (text[j] == '.' || text[j] == '!' || text[j] == '?') {
				j++
			}
			if j >= len(text) || text[j] == ' ' || text[j] == '\n' {
				count++
				if count >= n {
					return strings.TrimSpace(text[:j])
				}
				i = j
			}
		}
	}
	return strings.TrimSpace(text)
}

type newsInput struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

func (h *webHandlers) NewsHeadlines(ctx context.Context, input json.RawMessage) (string, error) {
	var in newsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Country == "" {
		in.Country = "us"
	}
	if in.Count <= 0 {
		in.Count = 5
	}

	endpoint := fmt.Sprintf("%s/top-headlines?country=%s&pageSize=%d&apiKey=%s",
		strings.TrimRight(h.cfg.NewsBase, "/"), url.QueryEscape(in.Country), in.Count, url.QueryEscape(h.cfg.NewsAPIKey))
	resp, err := h.get(ctx, endpoint)
	if err != nil {
		return fmt.Sprintf("Error fetching news: %v", err), nil
	}
	defer resp.Body.Close()

	var feed struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Articles []struct {
			Title string `json:"title"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return fmt.Sprintf("Error fetching news: %v", err), nil
	}

	if feed.Status != "ok" {
		msg := feed.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return fmt.Sprintf("Error from news API: %s", msg), nil
	}

	headlines := make([]string, 0, in.Count)
	for _, a := range feed.Articles {
		if len(headlines) == in.Count {
			break
		}
		headlines = append(headlines, a.Title)
	}
	if len(headlines) == 0 {
		return "No headlines found.", nil
	}
	return strings.Join(headlines, "\n"), nil
}

type jokeQuoteInput struct {
	Type string `json:"type"`
}

func (h *webHandlers) JokeOrQuote(ctx context.Context, input json.RawMessage) (string, error) {
	var in jokeQuoteInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	if in.Type == "" || in.Type == "joke" {
		resp, err := h.get(ctx, strings.TrimRight(h.cfg.JokeBase, "/")+"/random_joke")
		if err != nil {
			return fmt.Sprintf("Error fetching joke/quote: %v", err), nil
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "Couldn't fetch a joke.", nil
		}
		var joke struct {
			Setup     string `json:"setup"`
			Punchline string `json:"punchline"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&joke); err != nil {
			return fmt.Sprintf("Error fetching joke/quote: %v", err), nil
		}
		return fmt.Sprintf("%s\n%s", joke.Setup, joke.Punchline), nil
	}

	resp, err := h.get(ctx, strings.TrimRight(h.cfg.QuoteBase, "/")+"/random")
	if err != nil {
		return fmt.Sprintf("Error fetching joke/quote: %v", err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "Couldn't fetch a quote.", nil
	}
	var quote struct {
		Content string `json:"content"`
		Author  string `json:"author"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return fmt.Sprintf("Error fetching joke/quote: %v", err), nil
	}
	return fmt.Sprintf("%s — %s", quote.Content, quote.Author), nil
}
