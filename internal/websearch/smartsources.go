package websearch

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	techQueryRe     = regexp.MustCompile(`code|برمج|javascript|python|react|api|function|error|bug`)
	academicQueryRe = regexp.MustCompile(`research|study|paper|علمي|بحث|دراسة`)
	newsQueryRe     = regexp.MustCompile(`news|خبر|أخبار|breaking`)
	videoQueryRe    = regexp.MustCompile(`video|tutorial|شرح|how to`)
)

func smartSource(title, snippet, link string) Result {
	domain := Domain(link)
	return Result{Title: title, Snippet: snippet, URL: link, Domain: domain, Favicon: favicon(domain)}
}

// SmartSources synthesizes curated search entries keyed to the query's
// topic. The generic-engine entries at the end make the slice non-empty for
// any query, which is what keeps the gatherer's never-empty guarantee.
func SmartSources(query string) []Result {
	encoded := url.QueryEscape(query)
	queryLower := strings.ToLower(query)

	var sources []Result
	if techQueryRe.MatchString(queryLower) || strings.Contains(queryLower, "كود") {
		sources = append(sources,
			smartSource("Stack Overflow - Programming Q&A",
				"Community-driven programming questions and answers",
				"https://stackoverflow.com/search?q="+encoded),
			smartSource("GitHub - Code Repository",
				"Open source code examples and projects",
				"https://github.com/search?q="+encoded),
			smartSource("MDN Web Docs",
				"Web development documentation and tutorials",
				"https://developer.mozilla.org/en-US/search?q="+encoded),
		)
	}
	if academicQueryRe.MatchString(queryLower) {
		sources = append(sources,
			smartSource("Google Scholar - Academic Research",
				"Academic papers and scholarly articles",
				"https://scholar.google.com/scholar?q="+encoded),
			smartSource("arXiv - Scientific Papers",
				"Open access scientific research papers",
				"https://arxiv.org/search/?query="+encoded),
		)
	}
	if newsQueryRe.MatchString(queryLower) {
		sources = append(sources,
			smartSource("Google News - Latest Headlines",
				"Breaking news and current events",
				"https://news.google.com/search?q="+encoded),
		)
	}
	if videoQueryRe.MatchString(queryLower) {
		sources = append(sources,
			smartSource("YouTube - Video Tutorials",
				"Educational videos and tutorials",
				"https://www.youtube.com/results?search_query="+encoded),
		)
	}

	sources = append(sources,
		smartSource(`Google - Search for "`+query+`"`,
			"Comprehensive web search results",
			"https://www.google.com/search?q="+encoded),
		smartSource("Bing - Search Results",
			"Alternative web search results",
			"https://www.bing.com/search?q="+encoded),
	)
	return sources
}
