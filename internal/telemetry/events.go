// ABOUTME: Wire types for editor telemetry in and intent notifications out
// ABOUTME: Change events decode leniently: wrong types and missing fields become zero values

package telemetry

import (
	"math"

	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"

	"github.com/mauromedda/intentd/internal/intent"
)

// EventIntentUpdate names the broadcast event carrying an intent change.
const EventIntentUpdate = "intent-update"

// ChangeEvent is an editor content-change event as sent on the wire:
// {"text": "...", "rangeLength": 3, "isUndo": false, "isRedo": false}.
// The aliases "insertedText" and "deletedLength" are accepted too.
type ChangeEvent struct {
	Text        string
	RangeLength int
	IsUndo      bool
	IsRedo      bool
}

// Change converts the wire event to an engine change.
func (e ChangeEvent) Change() intent.Change {
	return intent.Change{
		InsertedText:  e.Text,
		DeletedLength: e.RangeLength,
		IsUndo:        e.IsUndo,
		IsRedo:        e.IsRedo,
	}
}

// UnmarshalJSON decodes data, coercing malformed fields. Only syntactically
// invalid JSON is an error.
func (e *ChangeEvent) UnmarshalJSON(data []byte) error {
	l := jlexer.Lexer{Data: data}
	e.UnmarshalEasyJSON(&l)
	l.Consumed()
	return l.Error()
}

// UnmarshalEasyJSON implements easyjson.Unmarshaler.
func (e *ChangeEvent) UnmarshalEasyJSON(l *jlexer.Lexer) {
	*e = ChangeEvent{}
	if l.IsNull() {
		l.Skip()
		return
	}
	if !l.IsDelim('{') {
		l.SkipRecursive()
		return
	}

	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		if l.IsNull() {
			l.Skip()
			l.WantComma()
			continue
		}
		switch key {
		case "text", "insertedText":
			e.Text = asString(l.Interface())
		case "rangeLength", "deletedLength":
			e.RangeLength = asLength(l.Interface())
		case "isUndo":
			e.IsUndo = asBool(l.Interface())
		case "isRedo":
			e.IsRedo = asBool(l.Interface())
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asLength accepts finite non-negative numbers, truncating fractions.
func asLength(v any) int {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || f <= 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// MaxCursorMoves caps the moves one cursor event can report.
const MaxCursorMoves = 10_000

// CursorMoveEvent is a batched cursor-move signal: {"count": 4}. The params
// are optional; a missing, non-numeric or non-positive count means one move.
type CursorMoveEvent struct {
	Count int
}

// Moves returns the number of moves to record, between 1 and MaxCursorMoves.
func (e CursorMoveEvent) Moves() int {
	return min(max(e.Count, 1), MaxCursorMoves)
}

// UnmarshalJSON decodes data, coercing a malformed count. Only syntactically
// invalid JSON is an error.
func (e *CursorMoveEvent) UnmarshalJSON(data []byte) error {
	l := jlexer.Lexer{Data: data}
	e.UnmarshalEasyJSON(&l)
	l.Consumed()
	return l.Error()
}

// UnmarshalEasyJSON implements easyjson.Unmarshaler.
func (e *CursorMoveEvent) UnmarshalEasyJSON(l *jlexer.Lexer) {
	*e = CursorMoveEvent{}
	if l.IsNull() {
		l.Skip()
		return
	}
	if !l.IsDelim('{') {
		l.SkipRecursive()
		return
	}

	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		if l.IsNull() {
			l.Skip()
			l.WantComma()
			continue
		}
		switch key {
		case "count":
			e.Count = asCount(l.Interface())
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}

// asCount accepts finite positive numbers, saturating at MaxCursorMoves.
func asCount(v any) int {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || f < 1 {
		return 0
	}
	if f > MaxCursorMoves {
		return MaxCursorMoves
	}
	return int(f)
}

// Payload is the outbound shape of an intent: {key, label, emoji, color}.
type Payload struct {
	Key   string
	Label string
	Emoji string
	Color string
}

// PayloadOf converts an intent to its wire payload.
func PayloadOf(i intent.Intent) Payload {
	return Payload{Key: i.Key, Label: i.Label, Emoji: i.Emoji, Color: i.Color}
}

// MarshalJSON implements json.Marshaler.
func (p Payload) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	p.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

// MarshalEasyJSON implements easyjson.Marshaler.
func (p Payload) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"key":`)
	w.String(p.Key)
	w.RawString(`,"label":`)
	w.String(p.Label)
	w.RawString(`,"emoji":`)
	w.String(p.Emoji)
	w.RawString(`,"color":`)
	w.String(p.Color)
	w.RawByte('}')
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payload) UnmarshalJSON(data []byte) error {
	l := jlexer.Lexer{Data: data}
	p.UnmarshalEasyJSON(&l)
	l.Consumed()
	return l.Error()
}

// UnmarshalEasyJSON implements easyjson.Unmarshaler.
func (p *Payload) UnmarshalEasyJSON(l *jlexer.Lexer) {
	*p = Payload{}
	if l.IsNull() {
		l.Skip()
		return
	}
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		if l.IsNull() {
			l.Skip()
			l.WantComma()
			continue
		}
		switch key {
		case "key":
			p.Key = l.String()
		case "label":
			p.Label = l.String()
		case "emoji":
			p.Emoji = l.String()
		case "color":
			p.Color = l.String()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}

// Intent resolves the payload back to a catalog entry by key, falling back
// to exploring for unknown keys.
func (p Payload) Intent() intent.Intent {
	return intent.ParseOrDefault(p.Key)
}

// State is the answer to a current/previous intent query. Previous is nil
// until the first transition.
type State struct {
	Current  Payload
	Previous *Payload
}

// StateOf reads the engine's current and previous intents.
func StateOf(e *intent.Engine) State {
	s := State{Current: PayloadOf(e.CurrentIntent())}
	if prev, ok := e.PreviousIntent(); ok {
		p := PayloadOf(prev)
		s.Previous = &p
	}
	return s
}

// MarshalJSON implements json.Marshaler.
func (s State) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	s.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

// MarshalEasyJSON implements easyjson.Marshaler.
func (s State) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"current":`)
	s.Current.MarshalEasyJSON(w)
	w.RawString(`,"previous":`)
	writeOptional(w, s.Previous)
	w.RawByte('}')
}

// Update is the broadcast message sent to the realtime layer on a transition:
// {"event":"intent-update","intent":{...},"previous":{...}|null,"rule":"growth","at":"..."}.
type Update struct {
	Intent   Payload
	Previous *Payload
	Rule     string
	At       string // RFC 3339
}

// UpdateOf builds the broadcast message for a transition.
func UpdateOf(tr intent.Transition) Update {
	u := Update{
		Intent: PayloadOf(tr.To),
		Rule:   tr.Rule.String(),
		At:     tr.At.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if !tr.From.IsZero() {
		p := PayloadOf(tr.From)
		u.Previous = &p
	}
	return u
}

// MarshalJSON implements json.Marshaler.
func (u Update) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	u.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

// MarshalEasyJSON implements easyjson.Marshaler.
func (u Update) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"event":`)
	w.String(EventIntentUpdate)
	w.RawString(`,"intent":`)
	u.Intent.MarshalEasyJSON(w)
	w.RawString(`,"previous":`)
	writeOptional(w, u.Previous)
	w.RawString(`,"rule":`)
	w.String(u.Rule)
	w.RawString(`,"at":`)
	w.String(u.At)
	w.RawByte('}')
}

func writeOptional(w *jwriter.Writer, p *Payload) {
	if p == nil {
		w.RawString("null")
		return
	}
	p.MarshalEasyJSON(w)
}
