package tools

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	searchNoResult        = "No good DuckDuckGo Search Result was found"
	defaultSearchInterval = time.Second
)

// Search runs web searches against the DuckDuckGo lite endpoint.
type Search struct {
	endpoint string
	results  int
	maxChars int
	client   *http.Client

	interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

// NewSearch builds a Search tool. A negative SearchInterval disables the
// pacing between requests; zero selects the one second default.
func NewSearch(opts Options) *Search {
	opts = opts.withDefaults()
	interval := opts.SearchInterval
	switch {
	case interval == 0:
		interval = defaultSearchInterval
	case interval < 0:
		interval = 0
	}
	return &Search{
		endpoint: opts.SearchURL,
		results:  opts.SearchResults,
		maxChars: opts.MaxChars,
		client:   opts.HTTPClient,
		interval: interval,
	}
}

func (s *Search) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        string(NameSearch),
		Description: "Useful for when you need to look up current events or search the web for specific information. Input should be a search query.",
		InputSchema: QueryInputSchema,
		Function:    s.Run,
	}
}

// Run returns the snippets of the top results joined into one paragraph.
func (s *Search) Run(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", errEmptyQuery
	}
	if err := s.wait(ctx); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, ctype, err := fetch(s.client, req)
	if err != nil {
		return "", err
	}
	var r io.Reader = bytes.NewReader(body)
	if ur, err := charset.NewReader(r, ctype); err == nil {
		r = ur
	}
	snippets, err := parseSnippets(r, s.results)
	if err != nil {
		return "", ToolError{Code: CodeBadResponse, Message: "search returned unreadable HTML"}
	}
	if len(snippets) == 0 {
		return searchNoResult, nil
	}
	out, _ := clampRunes(strings.Join(snippets, " "), s.maxChars)
	return out, nil
}

// wait blocks until interval has passed since the previous request.
func (s *Search) wait(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interval > 0 && !s.last.IsZero() {
		if d := s.interval - time.Since(s.last); d > 0 {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	s.last = time.Now()
	return nil
}

// parseSnippets collects the text of up to limit result-snippet cells.
func parseSnippets(r io.Reader, limit int) ([]string, error) {
	var out []string
	var cur strings.Builder
	inSnippet := false

	z := html.NewTokenizer(r)
	for len(out) < limit {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return out, nil
			}
			return nil, z.Err()
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if !inSnippet && string(name) == "td" && hasAttr && hasClass(z, "result-snippet") {
				inSnippet = true
				cur.Reset()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if inSnippet && string(name) == "td" {
				inSnippet = false
				if s := squash(cur.String()); s != "" {
					out = append(out, s)
				}
			}
		case html.TextToken:
			if inSnippet {
				cur.Write(z.Text())
			}
		}
	}
	return out, nil
}

func hasClass(z *html.Tokenizer, class string) bool {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" {
			for _, c := range strings.Fields(string(val)) {
				if c == class {
					return true
				}
			}
		}
		if !more {
			return false
		}
	}
}
