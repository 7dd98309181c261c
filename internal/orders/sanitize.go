package orders

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe   = regexp.MustCompile(`<[^>]*>`)
	blankRunsRe = regexp.MustCompile(`\n{3,}`)
	spaceRunsRe = regexp.MustCompile(`[ \t]+`)
)

// SanitizeDescription strips markup from customer free text and normalizes
// whitespace so length checks and operator views see the same thing the
// classifier does.
func SanitizeDescription(raw string) string {
	text := htmlTagRe.ReplaceAllString(raw, " ")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRunsRe.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
