// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"regexp"
	"sort"

	"github.com/pdiddy/competitor-engine/pkg/types"
)

var (
	// urlRe stops at whitespace and closing brackets so "(see https://a.test)" yields "https://a.test".
	urlRe = regexp.MustCompile(`https?://[^\s\p{Z})\]}]+`)

	// citationRe matches any bracketed span such as [1], [2, 3] or [Gartner 2024].
	citationRe = regexp.MustCompile(`\[[^\]]+\]`)
)

// MineSources extracts the URLs and bracketed citations from an answer.
// Each list is deduplicated and sorted. TotalSources counts the union of both
// lists, so a bracketed URL such as "[https://a.test]" counts once as a URL
// and once as a citation.
func MineSources(text string) types.SourceSet {
	urls := uniqueSorted(urlRe.FindAllString(text, -1))
	citations := uniqueSorted(citationRe.FindAllString(text, -1))

	union := make(map[string]struct{}, len(urls)+len(citations))
	for _, u := range urls {
		union[u] = struct{}{}
	}
	for _, c := range citations {
		union[c] = struct{}{}
	}

	return types.SourceSet{
		URLs:         urls,
		Citations:    citations,
		TotalSources: len(union),
	}
}

func uniqueSorted(matches []string) []string {
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
