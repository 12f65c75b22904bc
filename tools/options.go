package tools

import (
	"net/http"
	"time"
)

const (
	defaultMaxChars      = 400
	defaultTopK          = 1
	defaultSearchResults = 4
	defaultHTTPTimeout   = 15 * time.Second
	userAgent            = "searchchat/1.0 (+https://github.com/petasbytes/searchchat)"
)

// Options configures the built-in tools. Zero values fall back to defaults.
type Options struct {
	// MaxChars caps each tool result, in runes.
	MaxChars int
	// TopK is the number of documents fetched by wikipedia and arxiv.
	TopK int
	// SearchResults is the number of web results folded into one answer.
	SearchResults int

	WikipediaURL string
	ArxivURL     string
	SearchURL    string

	// SearchInterval is the minimum gap between two web searches.
	SearchInterval time.Duration

	HTTPClient *http.Client
}

func (o Options) withDefaults() Options {
	if o.MaxChars <= 0 {
		o.MaxChars = defaultMaxChars
	}
	if o.TopK <= 0 {
		o.TopK = defaultTopK
	}
	if o.SearchResults <= 0 {
		o.SearchResults = defaultSearchResults
	}
	if o.WikipediaURL == "" {
		o.WikipediaURL = "https://en.wikipedia.org/w/api.php"
	}
	if o.ArxivURL == "" {
		o.ArxivURL = "https://export.arxiv.org/api/query"
	}
	if o.SearchURL == "" {
		o.SearchURL = "https://lite.duckduckgo.com/lite/"
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return o
}
