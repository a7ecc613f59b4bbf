// ABOUTME: Derives the edit event that turns one buffer state into another
// ABOUTME: Trims the common prefix and suffix; the middle is what was replaced

package interactive

import "github.com/mauromedda/intentd/internal/intent"

// changeBetween reports the single replacement that turns before into after:
// the runes of after's differing middle are inserted, and before's differing
// middle is deleted, measured in UTF-16 units like the engine's insert count.
func changeBetween(before, after []rune) intent.Change {
	prefix := 0
	for prefix < len(before) && prefix < len(after) && before[prefix] == after[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(before)-prefix && suffix < len(after)-prefix &&
		before[len(before)-1-suffix] == after[len(after)-1-suffix] {
		suffix++
	}
	return intent.Change{
		InsertedText:  string(after[prefix : len(after)-suffix]),
		DeletedLength: intent.CharCount(string(before[prefix : len(before)-suffix])),
	}
}
