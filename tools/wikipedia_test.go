package tools_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/petasbytes/searchchat/tools"
)

func wikiServer(t *testing.T, search, extract string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		switch {
		case q.Get("list") == "search":
			if q.Get("srsearch") == "" {
				t.Errorf("missing srsearch")
			}
			_, _ = w.Write([]byte(search))
		case q.Get("prop") == "extracts":
			_, _ = w.Write([]byte(extract))
		default:
			http.Error(w, "unexpected", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWikipedia_ReturnsPageSummary(t *testing.T) {
	srv := wikiServer(t,
		`{"query":{"search":[{"title":"Go (programming language)"}]}}`,
		`{"query":{"pages":{"25039021":{"title":"Go (programming language)","extract":"Go is a statically typed language."}}}}`,
	)
	w := tools.NewWikipedia(tools.Options{WikipediaURL: srv.URL})

	got, err := w.Run(context.Background(), "golang")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	testboil.FailTestIfDiff(t, got, "Page: Go (programming language)\nSummary: Go is a statically typed language.")
}

func TestWikipedia_NoResults(t *testing.T) {
	srv := wikiServer(t, `{"query":{"search":[]}}`, `{}`)
	w := tools.NewWikipedia(tools.Options{WikipediaURL: srv.URL})

	got, err := w.Run(context.Background(), "zzzzzz")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	testboil.FailTestIfDiff(t, got, "No good Wikipedia Search Result was found")
}

func TestWikipedia_ClampsToMaxChars(t *testing.T) {
	long := strings.Repeat("é", 1000)
	srv := wikiServer(t,
		`{"query":{"search":[{"title":"Long"}]}}`,
		`{"query":{"pages":{"1":{"extract":"`+long+`"}}}}`,
	)
	w := tools.NewWikipedia(tools.Options{WikipediaURL: srv.URL, MaxChars: 50})

	got, err := w.Run(context.Background(), "long")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	testboil.FailTestIfDiff(t, len([]rune(got)), 50)
}

func TestWikipedia_EmptyQuery(t *testing.T) {
	w := tools.NewWikipedia(tools.Options{WikipediaURL: "http://127.0.0.1:1"})
	_, err := w.Run(context.Background(), "   ")
	var te tools.ToolError
	if !errors.As(err, &te) || te.Code != tools.CodeEmptyQuery {
		t.Fatalf("got %v want ERR_EMPTY_QUERY", err)
	}
}

func TestWikipedia_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	w := tools.NewWikipedia(tools.Options{WikipediaURL: srv.URL})

	_, err := w.Run(context.Background(), "golang")
	var te tools.ToolError
	if !errors.As(err, &te) || te.Code != tools.CodeUpstream {
		t.Fatalf("got %v want ERR_UPSTREAM", err)
	}
}

func TestWikipedia_InvalidJSON(t *testing.T) {
	srv := wikiServer(t, `not json`, `{}`)
	w := tools.NewWikipedia(tools.Options{WikipediaURL: srv.URL})

	_, err := w.Run(context.Background(), "golang")
	var te tools.ToolError
	if !errors.As(err, &te) || te.Code != tools.CodeBadResponse {
		t.Fatalf("got %v want ERR_BAD_RESPONSE", err)
	}
}

func TestWikipedia_SkipsPageWhoseExtractFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		switch {
		case q.Get("list") == "search":
			_, _ = w.Write([]byte(`{"query":{"search":[{"title":"Broken"},{"title":"Go"}]}}`))
		case q.Get("titles") == "Broken":
			http.Error(w, "down", http.StatusServiceUnavailable)
		default:
			_, _ = w.Write([]byte(`{"query":{"pages":{"1":{"title":"Go","extract":"Go is a language."}}}}`))
		}
	}))
	defer srv.Close()
	w := tools.NewWikipedia(tools.Options{WikipediaURL: srv.URL, TopK: 2})

	got, err := w.Run(context.Background(), "go")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	testboil.FailTestIfDiff(t, got, "Page: Go\nSummary: Go is a language.")
}

func TestWikipedia_AllExtractsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("list") == "search" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"query":{"search":[{"title":"A"},{"title":"B"}]}}`))
			return
		}
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	w := tools.NewWikipedia(tools.Options{WikipediaURL: srv.URL, TopK: 2})

	_, err := w.Run(context.Background(), "go")
	var te tools.ToolError
	if !errors.As(err, &te) || te.Code != tools.CodeUpstream {
		t.Fatalf("got %v want ERR_UPSTREAM", err)
	}
}
