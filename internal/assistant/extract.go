package assistant

import (
	"regexp"
	"strings"
)

// namePatterns are tried in order; the first capture wins.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)where\s+is\s+(?:the\s+)?(.+?)\s+located`),
	regexp.MustCompile(`(?i)where\s+is\s+the\s+(.+)`),
	regexp.MustCompile(`(?i)how\s+much\s+is\s+the\s+(.+)`),
	regexp.MustCompile(`(?i)what\s+is\s+the\s+value\s+of\s+(.+)`),
	regexp.MustCompile(`(?i)how\s+much\s+does\s+(.+?)\s+cost`),
	regexp.MustCompile(`(?i)what['’]?s\s+the\s+value\s+of\s+(.+)`),
}

var (
	leadingArticle = regexp.MustCompile(`(?i)^(?:the|my)\s+`)
	trailingWorth  = regexp.MustCompile(`(?i)\s+worth$`)
)

// ExtractAssetName pulls the asset a question refers to, or "" when no
// pattern matches.
func ExtractAssetName(utterance string) string {
	for _, pattern := range namePatterns {
		m := pattern.FindStringSubmatch(utterance)
		if m == nil {
			continue
		}
		if name := cleanName(m[1]); name != "" {
			return name
		}
	}
	return ""
}

func cleanName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimRight(name, "?!.,;: ")
	name = trailingWorth.ReplaceAllString(name, "")
	name = leadingArticle.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
