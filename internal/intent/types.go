// ABOUTME: Authoring intent catalog inferred from editing telemetry.
// ABOUTME: Six fixed variants keyed by a stable string used for equality and wire transport.

package intent

// Intent describes inferred authoring behaviour. Values are compared by Key.
type Intent struct {
	Key   string
	Label string
	Emoji string
	Color string
}

// The fixed catalog. These values are never mutated.
var (
	Building      = Intent{Key: "building", Label: "Building", Emoji: "🧱", Color: "#3ecf71"}
	Exploring     = Intent{Key: "exploring", Label: "Exploring", Emoji: "🔍", Color: "#6e7bf2"}
	Experimenting = Intent{Key: "experimenting", Label: "Experimenting", Emoji: "🧪", Color: "#f0a641"}
	Refactoring   = Intent{Key: "refactoring", Label: "Refactoring", Emoji: "🧹", Color: "#9b6ef2"}
	Confused      = Intent{Key: "confused", Label: "Confused", Emoji: "❓", Color: "#e5484d"}
	Proposing     = Intent{Key: "proposing", Label: "Proposing", Emoji: "💡", Color: "#f0a641"}
)

var catalog = [...]Intent{Building, Exploring, Experimenting, Refactoring, Confused, Proposing}

// All returns the catalog in declaration order.
func All() []Intent {
	out := make([]Intent, len(catalog))
	copy(out, catalog[:])
	return out
}

// Lookup returns the catalog entry for key.
func Lookup(key string) (Intent, bool) {
	for _, i := range catalog {
		if i.Key == key {
			return i, true
		}
	}
	return Intent{}, false
}

// ParseOrDefault returns the catalog entry for key, or Exploring when the key
// is unknown.
func ParseOrDefault(key string) Intent {
	if i, ok := Lookup(key); ok {
		return i
	}
	return Exploring
}

// String returns the intent key.
func (i Intent) String() string {
	return i.Key
}

// IsZero reports whether i is the empty Intent (no intent).
func (i Intent) IsZero() bool {
	return i.Key == ""
}

// Same reports whether two intents share a key.
func (i Intent) Same(other Intent) bool {
	return i.Key == other.Key
}
