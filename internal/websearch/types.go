// Package websearch gathers web results from several providers concurrently,
// de-duplicates and ranks them, and prepares them for injection as model
// context. It also recognizes weather-intent queries so callers can route
// them to a forecast lookup instead of general search.
package websearch

import (
	"net/url"
	"strings"
)

// Result is a single search hit from any provider.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"description"`
	URL     string `json:"url"`
	Domain  string `json:"domain"`
	Favicon string `json:"favicon"`
}

const (
	// SearchLimit bounds the merged result set for the search path.
	SearchLimit = 12
	// ContextLimit bounds results injected as model context.
	ContextLimit = 8
)

// Domain extracts a bare hostname from a URL, dropping the www prefix. On an
// unparseable URL the raw string comes back so the result stays renderable.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func favicon(domain string) string {
	return "https://www.google.com/s2/favicons?domain=" + domain + "&sz=32"
}

// normalizeURL is the de-duplication key: case-insensitive scheme and host,
// www stripped, trailing slash dropped.
func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(strings.ToLower(raw), "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.Fragment = ""
	return u.String()
}

// dedupe keeps the first occurrence per normalized URL, preserving order.
func dedupe(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	out := results[:0:0]
	for _, r := range results {
		key := normalizeURL(r.URL)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
