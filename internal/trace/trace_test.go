package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeRule, false},
		{LevelDetail, ScopeRule, true},
		{LevelDetail, ScopeModule, false},
		{LevelDebug, ScopeModule, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("detail"); err != nil || lvl != LevelDetail {
		t.Fatalf("ParseLevel(detail) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("ParseLevel(loud) error = nil, want error")
	}
	if _, err := ParseMode("carrier-pigeon"); err == nil {
		t.Fatalf("ParseMode(carrier-pigeon) error = nil, want error")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"run.ndjson", FormatNDJSON},
		{"run.chrome.json", FormatChrome},
		{"run.json", FormatChrome},
		{"run.txt", FormatText},
		{"-", FormatText},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRingSnapshotKeepsLastEvents(t *testing.T) {
	ring := NewRingTracer(4, LevelPhase)
	for i := 0; i < 6; i++ {
		ring.Emit(&Event{
			Time:  time.Now(),
			Kind:  KindPoint,
			Scope: ScopeDriver,
			Name:  fmt.Sprintf("ev%d", i),
		})
	}

	snap := ring.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("len(snap) = %d, want 4", len(snap))
	}
	for i, ev := range snap {
		want := fmt.Sprintf("ev%d", i+2)
		if ev.Name != want {
			t.Errorf("snap[%d].Name = %q, want %q", i, ev.Name, want)
		}
	}
}

func TestRingDropsFineGrainedEvents(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	ring.Emit(&Event{Kind: KindPoint, Scope: ScopeModule, Name: "too fine"})
	ring.Emit(&Event{Kind: KindPoint, Scope: ScopePass, Name: "kept"})

	snap := ring.Snapshot()
	if len(snap) != 1 || snap[0].Name != "kept" {
		t.Fatalf("snap = %v, want single %q event", snap, "kept")
	}
}

func TestSpanParentage(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)

	root := Begin(tr, ScopeDriver, "check", 0)
	child := Begin(tr, ScopePass, "analyze", root.ID())
	child.Point(ScopeModule, "app/main", "cached")
	child.End("")
	root.End("done")

	type line struct {
		Kind     string `json:"kind"`
		Name     string `json:"name"`
		SpanID   uint64 `json:"span_id"`
		ParentID uint64 `json:"parent_id"`
	}
	var lines []line
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var l line
		if err := dec.Decode(&l); err != nil {
			t.Fatalf("decode: %v", err)
		}
		lines = append(lines, l)
	}

	if len(lines) != 5 {
		t.Fatalf("len(lines) = %d, want 5", len(lines))
	}
	if lines[1].ParentID != root.ID() {
		t.Errorf("analyze parent = %d, want %d", lines[1].ParentID, root.ID())
	}
	if lines[2].Kind != "point" || lines[2].ParentID != child.ID() {
		t.Errorf("point = %+v, want parent %d", lines[2], child.ID())
	}
	if lines[4].Kind != "end" || lines[4].Name != "check" {
		t.Errorf("last line = %+v, want check end", lines[4])
	}
}

func TestSpanBelowLevelIsInert(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)

	sp := Begin(tr, ScopeRule, "nofixme", 0)
	sp.Point(ScopeModule, "app/main", "")
	sp.End("")

	if buf.Len() != 0 {
		t.Fatalf("buf = %q, want empty", buf.String())
	}
	if sp.ID() != 0 {
		t.Fatalf("sp.ID() = %d, want 0", sp.ID())
	}
}

func TestStreamChromeFraming(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatChrome)

	sp := Begin(tr, ScopeDriver, "check", 0)
	sp.End("")
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var doc struct {
		TraceEvents []struct {
			Name  string `json:"name"`
			Phase string `json:"ph"`
		} `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid chrome trace: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(doc.TraceEvents))
	}
	if doc.TraceEvents[0].Phase != "B" || doc.TraceEvents[1].Phase != "E" {
		t.Fatalf("phases = %q %q, want B E", doc.TraceEvents[0].Phase, doc.TraceEvents[1].Phase)
	}
}

func TestNopIsDisabled(t *testing.T) {
	if Nop.Enabled() {
		t.Fatal("Nop.Enabled() = true, want false")
	}
	// инертный спан не должен паниковать
	sp := Begin(Nop, ScopeDriver, "x", 0)
	sp.Point(ScopeModule, "y", "")
	if d := sp.End(""); d != 0 {
		t.Fatalf("End() = %v, want 0", d)
	}
}
