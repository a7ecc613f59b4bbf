// ABOUTME: Tests for telemetry wire decoding and intent payload encoding
// ABOUTME: Covers lenient coercion of malformed events and exact outbound JSON shapes

package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mauromedda/intentd/internal/clock"
	"github.com/mauromedda/intentd/internal/intent"
)

func TestChangeEvent_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want ChangeEvent
	}{
		{"full event", `{"text":"ab\n","rangeLength":2,"isUndo":true,"isRedo":false}`, ChangeEvent{Text: "ab\n", RangeLength: 2, IsUndo: true}},
		{"alias names", `{"insertedText":"x","deletedLength":4}`, ChangeEvent{Text: "x", RangeLength: 4}},
		{"empty object", `{}`, ChangeEvent{}},
		{"null fields", `{"text":null,"rangeLength":null,"isRedo":null}`, ChangeEvent{}},
		{"numeric text", `{"text":42,"rangeLength":3}`, ChangeEvent{RangeLength: 3}},
		{"object text", `{"text":{"a":[1,2]},"isRedo":true}`, ChangeEvent{IsRedo: true}},
		{"string length", `{"text":"abc","rangeLength":"7"}`, ChangeEvent{Text: "abc"}},
		{"negative length", `{"rangeLength":-4}`, ChangeEvent{}},
		{"fractional length", `{"rangeLength":2.9}`, ChangeEvent{RangeLength: 2}},
		{"truthy string flag", `{"isUndo":"yes"}`, ChangeEvent{}},
		{"unknown fields skipped", `{"range":{"start":1},"text":"q","extra":[1,{"b":2}]}`, ChangeEvent{Text: "q"}},
		{"top-level null", `null`, ChangeEvent{}},
		{"top-level string", `"hello"`, ChangeEvent{}},
		{"top-level array", `[1,2,3]`, ChangeEvent{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got ChangeEvent
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("got %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestChangeEvent_SyntaxErrorFails(t *testing.T) {
	t.Parallel()

	var ev ChangeEvent
	if err := ev.UnmarshalJSON([]byte(`{"text":`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if err := ev.UnmarshalJSON([]byte(`{"text":"a"} trailing`)); err == nil {
		t.Error("expected error for trailing garbage")
	}
}

func TestCursorMoveEvent_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        string
		wantMoves int
	}{
		{"count", `{"count":4}`, 4},
		{"empty object", `{}`, 1},
		{"null count", `{"count":null}`, 1},
		{"string count", `{"count":"4"}`, 1},
		{"bool count", `{"count":true}`, 1},
		{"negative count", `{"count":-3}`, 1},
		{"fractional count", `{"count":3.9}`, 3},
		{"huge count saturates", `{"count":1e12}`, MaxCursorMoves},
		{"unknown fields skipped", `{"line":3,"count":2}`, 2},
		{"top-level null", `null`, 1},
		{"top-level array", `[5]`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got CursorMoveEvent
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.in, err)
			}
			if got.Moves() != tt.wantMoves {
				t.Errorf("Moves() = %d; want %d", got.Moves(), tt.wantMoves)
			}
		})
	}
}

func TestCursorMoveEvent_SyntaxErrorFails(t *testing.T) {
	t.Parallel()

	var ev CursorMoveEvent
	if err := ev.UnmarshalJSON([]byte(`{"count":`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestChangeEvent_Change(t *testing.T) {
	t.Parallel()

	ev := ChangeEvent{Text: "abc", RangeLength: 3, IsRedo: true}
	want := intent.Change{InsertedText: "abc", DeletedLength: 3, IsRedo: true}
	if got := ev.Change(); got != want {
		t.Errorf("Change() = %+v; want %+v", got, want)
	}
}

func TestPayload_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(PayloadOf(intent.Building))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"key":"building","label":"Building","emoji":"🧱","color":"#3ecf71"}`
	if string(data) != want {
		t.Errorf("got %s\nwant %s", data, want)
	}

	var back Payload
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Intent() != intent.Building {
		t.Errorf("Intent() = %v", back.Intent())
	}

	unknown := Payload{Key: "dreaming"}
	if unknown.Intent() != intent.Exploring {
		t.Errorf("unknown key should resolve to exploring, got %v", unknown.Intent())
	}
}

func TestStateOf(t *testing.T) {
	t.Parallel()

	clk := clock.NewManual(time.Unix(0, 0))
	e := intent.NewEngine(intent.Config{Clock: clk})

	data, err := json.Marshal(StateOf(e))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"current":{"key":"exploring","label":"Exploring","emoji":"🔍","color":"#6e7bf2"},"previous":null}`
	if string(data) != want {
		t.Errorf("got %s\nwant %s", data, want)
	}

	e.RecordChange(intent.Change{InsertedText: "// a comment about the plan"})
	e.Tick()

	s := StateOf(e)
	if s.Current.Key != "proposing" || s.Previous == nil || s.Previous.Key != "exploring" {
		t.Errorf("StateOf after transition = %+v", s)
	}
}

func TestUpdateOf_JSON(t *testing.T) {
	t.Parallel()

	tr := intent.Transition{
		From: intent.Exploring,
		To:   intent.Confused,
		Rule: intent.RuleUndoBurst,
		At:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(UpdateOf(tr))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"event":"intent-update",` +
		`"intent":{"key":"confused","label":"Confused","emoji":"❓","color":"#e5484d"},` +
		`"previous":{"key":"exploring","label":"Exploring","emoji":"🔍","color":"#6e7bf2"},` +
		`"rule":"undo_burst","at":"2024-03-01T12:00:00.000Z"}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}
