package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const wikipediaNoResult = "No good Wikipedia Search Result was found"

// Wikipedia looks up encyclopedia articles through the MediaWiki API.
type Wikipedia struct {
	endpoint string
	topK     int
	maxChars int
	client   *http.Client
}

func NewWikipedia(opts Options) *Wikipedia {
	opts = opts.withDefaults()
	return &Wikipedia{endpoint: opts.WikipediaURL, topK: opts.TopK, maxChars: opts.MaxChars, client: opts.HTTPClient}
}

func (w *Wikipedia) Definition() ToolDefinition {
	return ToolDefinition{
		Name: string(NameWikipedia),
		Description: "A wrapper around Wikipedia. Useful for when you need to answer general questions about " +
			"people, places, companies, facts, historical events, or other subjects. Input should be a search query.",
		InputSchema: QueryInputSchema,
		Function:    w.Run,
	}
}

// Run searches for the top pages matching query and returns their intro
// summaries as "Page: <title>\nSummary: <text>" blocks.
func (w *Wikipedia) Run(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", errEmptyQuery
	}

	titles, err := w.search(ctx, query)
	if err != nil {
		return "", err
	}

	docs := make([]string, 0, len(titles))
	var firstErr error
	for _, title := range titles {
		summary, err := w.extract(ctx, title)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if summary == "" {
			continue
		}
		docs = append(docs, fmt.Sprintf("Page: %s\nSummary: %s", title, summary))
	}
	if len(docs) == 0 {
		if firstErr != nil {
			return "", firstErr
		}
		return wikipediaNoResult, nil
	}
	out, _ := clampRunes(strings.Join(docs, "\n\n"), w.maxChars)
	return out, nil
}

func (w *Wikipedia) search(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", query)
	q.Set("srlimit", strconv.Itoa(w.topK))
	q.Set("format", "json")

	body, err := get(ctx, w.client, w.endpoint+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, ToolError{Code: CodeBadResponse, Message: "wikipedia search returned invalid JSON"}
	}
	var titles []string
	for _, t := range gjson.GetBytes(body, "query.search.#.title").Array() {
		if s := t.String(); s != "" {
			titles = append(titles, s)
		}
	}
	return titles, nil
}

func (w *Wikipedia) extract(ctx context.Context, title string) (string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "extracts")
	q.Set("exintro", "1")
	q.Set("explaintext", "1")
	q.Set("redirects", "1")
	q.Set("titles", title)
	q.Set("format", "json")

	body, err := get(ctx, w.client, w.endpoint+"?"+q.Encode())
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", ToolError{Code: CodeBadResponse, Message: "wikipedia extract returned invalid JSON"}
	}
	// pages is keyed by page id; take the first page that has an extract.
	return strings.TrimSpace(gjson.GetBytes(body, "query.pages.*.extract").String()), nil
}
