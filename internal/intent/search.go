// ABOUTME: Fuzzy lookup over the intent catalog for CLI and RPC callers.
// ABOUTME: Backed by sahilm/fuzzy; an empty query returns the whole catalog.

package intent

import (
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// catalogSource adapts the catalog to fuzzy.Source, matching on keys.
type catalogSource []Intent

func (s catalogSource) String(i int) string { return s[i].Key }
func (s catalogSource) Len() int            { return len(s) }

// Search returns catalog entries whose key fuzzily matches query, best first.
// The query is narrowed and case-folded, so "BUILD" and "ＢＵＩＬＤ" both
// match building.
func Search(query string) []Intent {
	query = cases.Fold().String(width.Narrow.String(strings.TrimSpace(query)))
	if query == "" {
		return All()
	}
	src := catalogSource(All())
	matches := fuzzy.FindFrom(query, src)
	out := make([]Intent, 0, len(matches))
	for _, m := range matches {
		out = append(out, src[m.Index])
	}
	return out
}
