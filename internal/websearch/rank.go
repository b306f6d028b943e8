package websearch

import (
	"regexp"
	"sort"
	"strings"
)

var (
	codeQueryRe    = regexp.MustCompile(`code|برمج|javascript|python|react|api|function|error|bug`)
	exampleQueryRe = regexp.MustCompile(`code|برمج|example`)
)

// score applies the fixed rubric: encyclopedia beats official docs beats
// topic-matched community sources beats generic engines, with a small bonus
// for a title containing the query.
func score(r Result, queryLower string) int {
	s := 0
	domain := strings.ToLower(r.Domain)
	switch {
	case strings.Contains(domain, "wikipedia"):
		s += 10
	case strings.Contains(domain, "mozilla.org") || strings.Contains(domain, "developer"):
		s += 8
	case strings.Contains(domain, "stackoverflow") && codeQueryRe.MatchString(queryLower):
		s += 9
	case strings.Contains(domain, "github") && exampleQueryRe.MatchString(queryLower):
		s += 7
	}
	if strings.Contains(strings.ToLower(r.Title), queryLower) {
		s += 5
	}
	return s
}

// rank sorts results by descending score. The sort is stable so providers'
// own ordering survives among equally-scored entries.
func rank(results []Result, query string) []Result {
	queryLower := strings.ToLower(query)
	sort.SliceStable(results, func(i, j int) bool {
		return score(results[i], queryLower) > score(results[j], queryLower)
	})
	return results
}
