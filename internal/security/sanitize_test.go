package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeInput(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"arabic untouched", "مرحبا بالعالم", "مرحبا بالعالم"},
		{"trims whitespace", "  hi  ", "hi"},
		{"strips script block", `before<script>alert(1)</script>after`, "beforeafter"},
		{"strips iframe block", `a<iframe src="evil"></iframe>b`, "ab"},
		{"strips javascript url", `click javascript:alert(1)`, "click alert(1)"},
		{"strips event handler", `<img onerror=alert(1)>`, "<img alert(1)>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeInput(tc.in))
		})
	}
}

func TestSanitizeInputCapsLength(t *testing.T) {
	long := strings.Repeat("a", 20000)
	assert.Len(t, SanitizeInput(long), 10000)
}

func TestValidateImageData(t *testing.T) {
	assert.True(t, ValidateImageData("data:image/png;base64,AAAA"))
	assert.True(t, ValidateImageData("data:image/jpeg;base64,AAAA"))
	assert.True(t, ValidateImageData("data:image/webp;base64,AAAA"))

	assert.False(t, ValidateImageData("data:image/svg+xml;base64,AAAA"), "unknown format")
	assert.False(t, ValidateImageData("data:text/html;base64,AAAA"))
	assert.False(t, ValidateImageData("https://example.com/cat.png"), "not a data url")

	huge := "data:image/png;base64," + strings.Repeat("A", 8*1024*1024)
	assert.False(t, ValidateImageData(huge), "over the size cap")
}
