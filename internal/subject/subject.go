// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package subject guesses which company a profile document describes.
package subject

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Unknown is returned when no heuristic matches.
const Unknown = "Unknown Company"

const (
	// maxTitleRunes bounds the first-line heuristic: longer lines are prose, not a name.
	maxTitleRunes = 100
	scanLines     = 10
)

var labelKeywords = []string{"company:", "name:", "about"}

// Identify returns the subject name for text. The first short line wins once
// reduced to letters, digits and whitespace. Failing that, the first of the
// leading ten lines carrying a "company:", "name:" or "about" label yields
// the text after its first colon. Otherwise Identify returns Unknown.
func Identify(text string) string {
	lines := nonEmptyLines(text)

	if len(lines) > 0 && utf8.RuneCountInString(lines[0]) < maxTitleRunes {
		if name := strings.TrimSpace(keepAlnumSpace(lines[0])); name != "" {
			return name
		}
	}

	for i, line := range lines {
		if i == scanLines {
			break
		}
		if !hasLabel(line) {
			continue
		}
		_, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if name := strings.TrimSpace(rest); name != "" {
			return name
		}
	}

	return Unknown
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func keepAlnumSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

func hasLabel(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range labelKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
