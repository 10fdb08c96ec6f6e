// Package web is the native MCP server for interacting with websites. It
// fetches pages as cleaned summaries and searches the web through the
// DuckDuckGo HTML endpoint.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Name = "WebServer"

const Instructions = `Interacts with websites`

const (
	defaultTimeout  = 30 * time.Second
	maxBodyBytes    = 2 << 20 // 2MB
	userAgent       = "TinkerTasker/0.1 (+https://github.com/tinkertasker/tinkertasker)"
	defaultSearch   = "https://html.duckduckgo.com/html/"
	defaultSnippets = 5
)

type handler struct {
	client        *http.Client
	maxBytes      int64
	searchBaseURL string
}

func newHandler() *handler {
	return &handler{
		client:        &http.Client{Timeout: defaultTimeout},
		maxBytes:      maxBodyBytes,
		searchBaseURL: defaultSearch,
	}
}

// New creates the web MCP server.
func New() *server.MCPServer {
	return newServer(newHandler())
}

func newServer(h *handler) *server.MCPServer {
	s := server.NewMCPServer(Name, "0.1.0",
		server.WithInstructions(Instructions),
	)

	s.AddTool(mcp.NewTool("fetch",
		mcp.WithDescription("Fetches a web page and returns a cleaned summary of its content (title, description, headings, paragraphs) as JSON."),
		mcp.WithString("url", mcp.Required(),
			mcp.Description("Absolute URL to fetch (http or https).")),
		mcp.WithNumber("max_paragraphs",
			mcp.Description("Maximum number of paragraph snippets to include (default 5).")),
		mcp.WithBoolean("include_headings",
			mcp.Description("Whether to include h1-h3 headings (default true).")),
	), h.fetch)

	s.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Searches the web and returns a list of result titles, URLs and snippets."),
		mcp.WithString("query", mcp.Required(),
			mcp.Description("The search query.")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default 5).")),
	), h.search)

	return s
}

func (h *handler) get(ctx context.Context, rawURL string) (*http.Response, []byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, nil, false, err
	}
	defer resp.Body.Close()

	limited := &io.LimitedReader{R: resp.Body, N: h.maxBytes}
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, nil, false, err
	}
	return resp, body, limited.N == 0, nil
}

func (h *handler) fetch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(rawURL) == "" {
		return mcp.NewToolResultText("Error: url is required"), nil
	}
	maxParagraphs := request.GetInt("max_paragraphs", defaultSnippets)
	if maxParagraphs <= 0 {
		maxParagraphs = defaultSnippets
	}
	includeHeadings := request.GetBool("include_headings", true)

	resp, body, truncated, err := h.get(ctx, rawURL)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error fetching %s: %s", rawURL, err)), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error parsing %s: %s", rawURL, err)), nil
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	desc := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))

	var headings []string
	if includeHeadings {
		doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
			if text := normalizeWhitespace(sel.Text()); text != "" {
				headings = append(headings, text)
			}
		})
	}

	paragraphs := make([]string, 0, maxParagraphs)
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(paragraphs) >= maxParagraphs {
			return false
		}
		text := normalizeWhitespace(sel.Text())
		if len(text) < 40 { // skip super short fragments
			return true
		}
		paragraphs = append(paragraphs, text)
		return true
	})

	payload := map[string]interface{}{
		"url":              resp.Request.URL.String(),
		"status":           resp.StatusCode,
		"fetched_at":       time.Now().UTC().Format(time.RFC3339),
		"bytes_downloaded": len(body),
		"truncated":        truncated,
		"title":            title,
		"description":      desc,
		"headings":         headings,
		"paragraphs":       paragraphs,
	}

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error encoding summary of %s: %s", rawURL, err)), nil
	}
	return mcp.NewToolResultText(strings.TrimSuffix(b.String(), "\n")), nil
}

type searchResult struct {
	Title   string
	URL     string
	Snippet string
}

func (h *handler) search(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultText("Error: query is required"), nil
	}
	maxResults := request.GetInt("max_results", defaultSnippets)
	if maxResults <= 0 {
		maxResults = defaultSnippets
	}

	searchURL := h.searchBaseURL + "?q=" + url.QueryEscape(query)
	_, body, _, err := h.get(ctx, searchURL)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error searching for '%s': %s", query, err)), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error parsing search results: %s", err)), nil
	}

	results := parseResults(doc, maxResults)
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No results found for '%s'", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d results for '%s'", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n\n%d. %s\n   %s", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "\n   %s", r.Snippet)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func parseResults(doc *goquery.Document, max int) []searchResult {
	var results []searchResult
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(results) >= max {
			return false
		}
		link := sel.Find(".result__a").First()
		title := normalizeWhitespace(link.Text())
		href := link.AttrOr("href", "")
		if title == "" || href == "" {
			return true
		}
		results = append(results, searchResult{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: normalizeWhitespace(sel.Find(".result__snippet").First().Text()),
		})
		return true
	})
	return results
}

// resolveRedirect unwraps the DuckDuckGo redirect wrapper, returning the
// target URL from the uddg query parameter.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
