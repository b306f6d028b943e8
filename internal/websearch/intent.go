package websearch

import (
	"regexp"
	"strings"
)

// weatherRe captures the location following an Arabic weather phrase, e.g.
// "طقس في بغداد" or "درجة الحرارة في دبي".
var weatherRe = regexp.MustCompile(`(?i)(?:طقس|حالة الطقس|الجو|درجة الحرارة|الحرارة)\s+(?:في|ب|بـ)?\s*([^?.]+)`)

// DefaultWeatherLocation is used when the query signals weather intent but
// names no place.
const DefaultWeatherLocation = "Baghdad"

// WeatherIntent reports whether the query asks about weather and extracts
// the location. Queries mentioning weather with no parsable location fall
// back to DefaultWeatherLocation.
func WeatherIntent(query string) (location string, ok bool) {
	clean := strings.TrimSpace(query)
	if match := weatherRe.FindStringSubmatch(clean); match != nil {
		return strings.TrimSpace(match[1]), true
	}
	if strings.Contains(clean, "الطقس") || strings.Contains(strings.ToLower(clean), "weather") {
		return DefaultWeatherLocation, true
	}
	return "", false
}
