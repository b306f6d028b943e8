package agents

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// ```lang file="path/to/file.ext"
	attrBlockRe = regexp.MustCompile("```(\\w+)\\s+file=\"([^\"]+)\"\n([\\s\\S]*?)```")
	// plain fenced block with optional language tag
	bareBlockRe = regexp.MustCompile("```(\\w+)?\n([\\s\\S]*?)```")
)

var extensions = map[string]string{
	"typescript": "ts",
	"tsx":        "tsx",
	"javascript": "js",
	"jsx":        "jsx",
	"python":     "py",
	"go":         "go",
	"css":        "css",
	"html":       "html",
	"json":       "json",
}

func extensionFor(language string) string {
	if ext, ok := extensions[strings.ToLower(language)]; ok {
		return ext
	}
	return "txt"
}

// ParseGeneratedCode extracts files from fenced code blocks carrying a
// file-path attribute. When no block carries one, plain fenced blocks are
// taken instead and named sequentially with an extension inferred from the
// language tag.
func ParseGeneratedCode(response string) []GeneratedFile {
	var files []GeneratedFile

	for _, match := range attrBlockRe.FindAllStringSubmatch(response, -1) {
		language := match[1]
		if language == "" {
			language = "plaintext"
		}
		files = append(files, GeneratedFile{
			Name:     match[2],
			Content:  strings.TrimSpace(match[3]),
			Language: language,
		})
	}
	if len(files) > 0 {
		return files
	}

	for i, match := range bareBlockRe.FindAllStringSubmatch(response, -1) {
		language := match[1]
		if language == "" {
			language = "plaintext"
		}
		files = append(files, GeneratedFile{
			Name:     fmt.Sprintf("file-%d.%s", i, extensionFor(language)),
			Content:  strings.TrimSpace(match[2]),
			Language: language,
		})
	}
	return files
}
