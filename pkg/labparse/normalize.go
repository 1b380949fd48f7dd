package labparse

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Lines splits raw report text into trimmed, non-empty lines. Text is NFC
// normalized first so composed and decomposed forms of the same characters
// match dictionary aliases and unit tokens alike.
func Lines(raw string) []string {
	text := norm.NFC.String(lineBreaks.Replace(raw))

	parts := strings.Split(text, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}
