// ABOUTME: Display-width helpers for badge layout using grapheme-aware segmentation
// ABOUTME: Fast path for ASCII; emoji and East Asian characters count as two cells

package statusline

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// VisibleWidth returns the number of terminal cells s occupies. s must not
// contain escape sequences.
func VisibleWidth(s string) int {
	if isPlainASCII(s) {
		return len(s)
	}
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w += graphemeWidth(cluster)
	}
	return w
}

// Truncate shortens s to at most width cells, ending with an ellipsis when
// anything was cut. Grapheme clusters are never split.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if VisibleWidth(s) <= width {
		return s
	}
	budget := width - VisibleWidth(ellipsis)
	if budget <= 0 {
		return ellipsis
	}

	out := make([]byte, 0, len(s))
	used := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		cw := graphemeWidth(cluster)
		if used+cw > budget {
			break
		}
		out = append(out, cluster...)
		used += cw
	}
	return string(out) + ellipsis
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if b := s[i]; b < 0x20 || b > 0x7E {
			return false
		}
	}
	return true
}

// graphemeWidth returns the display width of a single grapheme cluster.
func graphemeWidth(cluster string) int {
	if cluster == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(cluster)
	return runewidth.RuneWidth(r)
}
