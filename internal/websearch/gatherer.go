package websearch

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"rafiq-chat/internal/logging"
	"rafiq-chat/internal/metrics"
)

const providerTimeout = 10 * time.Second

// Gatherer fans a query out to the search providers, merges and ranks
// the hits, and guarantees a non-empty result set.
type Gatherer struct {
	httpClient    *http.Client
	duckduckgoURL string
	wikipediaURL  string
	log           *zap.Logger
}

// Option customizes a Gatherer.
type Option func(*Gatherer)

// WithHTTPClient overrides the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gatherer) { g.httpClient = c }
}

// WithDuckDuckGoURL points the instant-answer provider elsewhere (tests).
func WithDuckDuckGoURL(u string) Option {
	return func(g *Gatherer) { g.duckduckgoURL = u }
}

// WithWikipediaURL overrides the MediaWiki endpoint; the format string takes
// the language subdomain.
func WithWikipediaURL(format string) Option {
	return func(g *Gatherer) { g.wikipediaURL = format }
}

// NewGatherer creates a gatherer with production provider endpoints.
func NewGatherer(opts ...Option) *Gatherer {
	g := &Gatherer{
		httpClient:    &http.Client{Timeout: providerTimeout},
		duckduckgoURL: defaultDuckDuckGoURL,
		wikipediaURL:  defaultWikipediaURL,
		log:           logging.L(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Search runs the providers concurrently and returns at most SearchLimit
// merged, ranked results. A provider failure contributes nothing and aborts
// nothing. The returned slice is never empty: when every provider comes back
// dry, the synthesized smart sources stand in.
func (g *Gatherer) Search(ctx context.Context, query, lang string) []Result {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	m := metrics.Get()

	type provider struct {
		name string
		run  func(context.Context) ([]Result, error)
	}
	providers := []provider{
		{"duckduckgo", func(ctx context.Context) ([]Result, error) {
			return g.searchDuckDuckGo(ctx, query)
		}},
		{"wikipedia", func(ctx context.Context) ([]Result, error) {
			return g.searchWikipedia(ctx, query, lang)
		}},
	}

	gathered := make([][]Result, len(providers))
	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p provider) {
			defer wg.Done()
			hits, err := p.run(ctx)
			if err != nil {
				m.SearchProviderErrors.WithLabelValues(p.name).Inc()
				g.log.Warn("search provider failed",
					zap.String("provider", p.name),
					zap.Error(err))
				return
			}
			m.SearchProviderResults.WithLabelValues(p.name).Add(float64(len(hits)))
			gathered[i] = hits
		}(i, p)
	}
	wg.Wait()

	var merged []Result
	for _, hits := range gathered {
		merged = append(merged, hits...)
	}
	merged = append(merged, SmartSources(query)...)

	merged = rank(dedupe(merged), query)
	if len(merged) > SearchLimit {
		merged = merged[:SearchLimit]
	}
	return merged
}

// ForContext trims a result set to the context-injection bound.
func ForContext(results []Result) []Result {
	if len(results) > ContextLimit {
		return results[:ContextLimit]
	}
	return results
}
