// Package security holds input-hardening helpers applied at the request
// boundary before anything reaches a model.
package security

import (
	"regexp"
	"strings"
)

const maxInputLen = 10000

var (
	scriptRe = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	iframeRe = regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`)
	jsURLRe  = regexp.MustCompile(`(?i)javascript:`)
	onAttrRe = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// SanitizeInput strips script/iframe blocks, javascript: URLs and inline
// event handlers, then caps the length.
func SanitizeInput(input string) string {
	s := strings.TrimSpace(input)
	s = scriptRe.ReplaceAllString(s, "")
	s = iframeRe.ReplaceAllString(s, "")
	s = jsURLRe.ReplaceAllString(s, "")
	s = onAttrRe.ReplaceAllString(s, "")
	if len(s) > maxInputLen {
		s = s[:maxInputLen]
	}
	return s
}

const maxImageBytes = 5 * 1024 * 1024

var imageFormats = []string{
	"data:image/jpeg",
	"data:image/jpg",
	"data:image/png",
	"data:image/gif",
	"data:image/webp",
}

// ValidateImageData accepts only data URLs of known image formats within the
// size cap. The decoded size is estimated from the base64 length.
func ValidateImageData(dataURL string) bool {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return false
	}
	if len(dataURL)*3/4 > maxImageBytes {
		return false
	}
	for _, format := range imageFormats {
		if strings.HasPrefix(dataURL, format) {
			return true
		}
	}
	return false
}
