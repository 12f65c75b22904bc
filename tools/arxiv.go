package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	arxivNoResult      = "No good Arxiv Result was found"
	arxivMaxQueryRunes = 300
)

// Matches new-style (2401.01234v2) and old-style (hep-th/9901001) identifiers.
var arxivIDPattern = regexp.MustCompile(`^(\d{4}\.\d{4,5}|(?i:[a-z\-]+(\.[a-z]{2})?)/\d{7})(v\d+)?$`)

// Arxiv queries the arXiv export API for preprints.
type Arxiv struct {
	endpoint string
	topK     int
	maxChars int
	client   *http.Client
}

func NewArxiv(opts Options) *Arxiv {
	opts = opts.withDefaults()
	return &Arxiv{endpoint: opts.ArxivURL, topK: opts.TopK, maxChars: opts.MaxChars, client: opts.HTTPClient}
}

func (a *Arxiv) Definition() ToolDefinition {
	return ToolDefinition{
		Name: string(NameArxiv),
		Description: "A wrapper around Arxiv.org. Useful for when you need to answer questions about Physics, " +
			"Mathematics, Computer Science, Quantitative Biology, Quantitative Finance, Statistics, Electrical " +
			"Engineering, and Economics from scientific articles on arxiv.org. Input should be a search query.",
		InputSchema: QueryInputSchema,
		Function:    a.Run,
	}
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// Run returns the top matching preprints, one
// "Published/Title/Authors/Summary" block each.
func (a *Arxiv) Run(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", errEmptyQuery
	}
	query, _ = clampRunes(query, arxivMaxQueryRunes)

	body, err := get(ctx, a.client, a.endpoint+"?"+a.params(query).Encode())
	if err != nil {
		return "", err
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return "", ToolError{Code: CodeBadResponse, Message: "arxiv returned an unreadable feed"}
	}

	docs := make([]string, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		title := squash(e.Title)
		// The API reports a missing id_list entry as an entry titled "Error".
		if title == "" || title == "Error" {
			continue
		}
		names := make([]string, 0, len(e.Authors))
		for _, au := range e.Authors {
			names = append(names, squash(au.Name))
		}
		docs = append(docs, fmt.Sprintf("Published: %s\nTitle: %s\nAuthors: %s\nSummary: %s",
			publishedDate(e.Published), title, strings.Join(names, ", "), squash(e.Summary)))
	}
	if len(docs) == 0 {
		return arxivNoResult, nil
	}
	out, _ := clampRunes(strings.Join(docs, "\n\n"), a.maxChars)
	return out, nil
}

// params uses id_list when every word of query is an arXiv identifier.
func (a *Arxiv) params(query string) url.Values {
	q := url.Values{}
	q.Set("start", "0")
	q.Set("max_results", strconv.Itoa(a.topK))
	if ids := strings.Fields(query); len(ids) > 0 && allArxivIDs(ids) {
		q.Set("id_list", strings.Join(ids, ","))
		return q
	}
	q.Set("search_query", "all:"+query)
	return q
}

func allArxivIDs(words []string) bool {
	for _, w := range words {
		if !arxivIDPattern.MatchString(w) {
			return false
		}
	}
	return true
}

// publishedDate keeps the YYYY-MM-DD prefix of an RFC 3339 timestamp.
func publishedDate(ts string) string {
	ts = strings.TrimSpace(ts)
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
