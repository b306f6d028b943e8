package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCJK(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain english untouched", "hello world", "hello world"},
		{"arabic untouched", "مرحبا بالعالم", "مرحبا بالعالم"},
		{"han removed", "abc中文def", "abcdef"},
		{"hiragana removed", "test ひらがな test", "test  test"},
		{"katakana removed", "カタカナonly", "only"},
		{"hangul removed", "한국어 mixed 한국어", " mixed "},
		{"all cjk becomes empty", "日本語のテキスト", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCJK(tc.in))
		})
	}
}

func TestStripCJKIdempotent(t *testing.T) {
	in := "mixed 中文 content with ひらがな and 한국어"
	once := StripCJK(in)
	assert.Equal(t, once, StripCJK(once))
}

func TestIsArabic(t *testing.T) {
	assert.True(t, IsArabic("مرحبا"))
	assert.True(t, IsArabic("hello مرحبا mixed"))
	assert.False(t, IsArabic("hello world"))
	assert.False(t, IsArabic(""))
	assert.False(t, IsArabic("中文"))
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "ar", DetectLanguage("ما هو الطقس اليوم؟"))
	assert.Equal(t, "en", DetectLanguage("what is the weather today?"))
	assert.Equal(t, "en", DetectLanguage(""))
}
