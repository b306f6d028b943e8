package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const (
	defaultDuckDuckGoURL = "https://api.duckduckgo.com/"
	// %s is the language subdomain.
	defaultWikipediaURL = "https://%s.wikipedia.org/w/api.php"
)

type ddgResponse struct {
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// searchDuckDuckGo queries the instant-answer API: the abstract plus up to
// five related topics.
func (g *Gatherer) searchDuckDuckGo(ctx context.Context, query string) ([]Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")

	body, err := g.fetch(ctx, g.duckduckgoURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil, nil
	}

	var parsed ddgResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode duckduckgo response: %w", err)
	}

	var results []Result
	if parsed.AbstractText != "" {
		link := parsed.AbstractURL
		if link == "" {
			link = "#"
		}
		title := parsed.Heading
		if title == "" {
			title = query
		}
		domain := Domain(link)
		results = append(results, Result{
			Title:   title,
			Snippet: parsed.AbstractText,
			URL:     link,
			Domain:  domain,
			Favicon: favicon(domain),
		})
	}

	added := 0
	for _, topic := range parsed.RelatedTopics {
		if added >= 5 {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		domain := Domain(topic.FirstURL)
		results = append(results, Result{
			Title:   strings.SplitN(topic.Text, " - ", 2)[0],
			Snippet: topic.Text,
			URL:     topic.FirstURL,
			Domain:  domain,
			Favicon: favicon(domain),
		})
		added++
	}
	return results, nil
}

type wikiResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// searchWikipedia queries the MediaWiki action API on the Arabic or English
// wiki depending on the language hint and keeps the top two pages.
func (g *Gatherer) searchWikipedia(ctx context.Context, query, lang string) ([]Result, error) {
	if lang != "ar" {
		lang = "en"
	}

	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", query)
	q.Set("format", "json")
	q.Set("srlimit", "3")
	q.Set("origin", "*")

	body, err := g.fetch(ctx, fmt.Sprintf(g.wikipediaURL, lang)+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var parsed wikiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode wikipedia response: %w", err)
	}

	host := lang + ".wikipedia.org"
	var results []Result
	for i, page := range parsed.Query.Search {
		if i >= 2 {
			break
		}
		snippet := htmlTagRe.ReplaceAllString(page.Snippet, "")
		if snippet == "" {
			snippet = "مقالة موسوعية"
		}
		slug := url.PathEscape(strings.ReplaceAll(page.Title, " ", "_"))
		results = append(results, Result{
			Title:   page.Title,
			Snippet: snippet,
			URL:     "https://" + host + "/wiki/" + slug,
			Domain:  host,
			Favicon: favicon("wikipedia.org"),
		})
	}
	return results, nil
}

func (g *Gatherer) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
