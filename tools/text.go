package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// clampRunes cuts s to at most n runes.
func clampRunes(s string, n int) (string, bool) {
	if n <= 0 {
		return "", len(s) > 0
	}
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}

// squash collapses runs of whitespace (including newlines) into single spaces.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 2 << 20

// do sends req and returns the body of a 2xx response. Non-2xx statuses are
// reported as ERR_UPSTREAM; transport errors are returned as-is so the caller
// can tell a timeout apart.
func do(client *http.Client, req *http.Request) ([]byte, error) {
	body, _, err := fetch(client, req)
	return body, err
}

// fetch is do plus the response Content-Type.
func fetch(client *http.Client, req *http.Request) ([]byte, string, error) {
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", ToolError{Code: CodeUpstream, Message: fmt.Sprintf("%s returned %s", req.URL.Host, resp.Status)}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return do(client, req)
}
