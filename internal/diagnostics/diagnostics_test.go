package diagnostics

import (
	"testing"

	"github.com/dshills/lspbridge/internal/position"
	"github.com/dshills/lspbridge/internal/protocol"
)

// fakeSurface counts live decorations so tests can assert that removal
// handles actually fire.
type fakeSurface struct {
	marks   map[int]markCall
	gutters map[int]gutterCall
	nextID  int
}

type markCall struct {
	start, end position.Pos
	class      string
}

type gutterCall struct {
	line          int
	text, tooltip string
	class         string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		marks:   make(map[int]markCall),
		gutters: make(map[int]gutterCall),
	}
}

func (s *fakeSurface) MarkRange(start, end position.Pos, class string) func() {
	s.nextID++
	id := s.nextID
	s.marks[id] = markCall{start: start, end: end, class: class}
	return func() { delete(s.marks, id) }
}

func (s *fakeSurface) SetGutterMark(line int, text, tooltip, class string) func() {
	s.nextID++
	id := s.nextID
	s.gutters[id] = gutterCall{line: line, text: text, tooltip: tooltip, class: class}
	return func() { delete(s.gutters, id) }
}

func (s *fakeSurface) gutterOnLine(line int) (gutterCall, bool) {
	for _, g := range s.gutters {
		if g.line == line {
			return g, true
		}
	}
	return gutterCall{}, false
}

func lineAt(int) string { return "var broken = compute()" }

func diag(line, startCh, endCh int, sev protocol.DiagnosticSeverity, msg string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: startCh},
			End:   protocol.Position{Line: line, Character: endCh},
		},
		Severity: sev,
		Message:  msg,
	}
}

func TestPublish(t *testing.T) {
	surface := newFakeSurface()
	tr := NewTracker(surface)

	tr.Publish(lineAt, []protocol.Diagnostic{
		diag(0, 4, 10, protocol.SeverityError, "undefined: broken"),
		diag(2, 0, 3, protocol.SeverityWarning, "unused variable"),
	})

	entries := tr.Entries()
	if len(entries) != 2 {
		t.Fatalf("%d entries, want 2", len(entries))
	}
	if entries[0].Severity != protocol.SeverityError || entries[0].Messages[0] != "undefined: broken" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if len(surface.marks) != 2 {
		t.Errorf("%d live marks, want 2", len(surface.marks))
	}
	if tr.GutterCount() != 2 {
		t.Errorf("gutter count = %d, want 2", tr.GutterCount())
	}
}

func TestPublishMergesIdenticalRanges(t *testing.T) {
	surface := newFakeSurface()
	tr := NewTracker(surface)

	tr.Publish(lineAt, []protocol.Diagnostic{
		diag(1, 2, 8, protocol.SeverityWarning, "first message"),
		diag(1, 2, 8, protocol.SeverityError, "second message"),
	})

	entries := tr.Entries()
	if len(entries) != 1 {
		t.Fatalf("%d entries, want 1 merged", len(entries))
	}
	e := entries[0]
	if len(e.Messages) != 2 || e.Messages[0] != "first message" || e.Messages[1] != "second message" {
		t.Errorf("merged messages = %v", e.Messages)
	}
	// Severity upgrades to the most severe of the merged set.
	if e.Severity != protocol.SeverityError {
		t.Errorf("merged severity = %v, want error", e.Severity)
	}
	if len(surface.marks) != 1 {
		t.Errorf("%d live marks, want 1", len(surface.marks))
	}

	g, ok := surface.gutterOnLine(1)
	if !ok {
		t.Fatal("no gutter marker on line 1")
	}
	if g.tooltip != "first message\nsecond message" {
		t.Errorf("gutter tooltip = %q", g.tooltip)
	}
}

func TestPublishReplacesPrevious(t *testing.T) {
	surface := newFakeSurface()
	tr := NewTracker(surface)

	tr.Publish(lineAt, []protocol.Diagnostic{
		diag(0, 0, 3, protocol.SeverityError, "old problem"),
		diag(1, 0, 3, protocol.SeverityError, "other old problem"),
	})
	tr.Publish(lineAt, []protocol.Diagnostic{
		diag(5, 2, 6, protocol.SeverityHint, "new problem"),
	})

	entries := tr.Entries()
	if len(entries) != 1 || entries[0].Messages[0] != "new problem" {
		t.Fatalf("entries after replace = %+v", entries)
	}
	if len(surface.marks) != 1 {
		t.Errorf("%d live marks after replace, want 1", len(surface.marks))
	}
	if len(surface.gutters) != 1 {
		t.Errorf("%d live gutters after replace, want 1", len(surface.gutters))
	}
}

func TestPublishEmptyClearsEverything(t *testing.T) {
	surface := newFakeSurface()
	tr := NewTracker(surface)

	tr.Publish(lineAt, []protocol.Diagnostic{diag(0, 0, 3, protocol.SeverityError, "problem")})
	tr.Publish(lineAt, nil)

	if len(tr.Entries()) != 0 || len(surface.marks) != 0 || len(surface.gutters) != 0 {
		t.Error("empty publication left decorations behind")
	}
}

func TestPublishSkipsEmptyMessages(t *testing.T) {
	surface := newFakeSurface()
	tr := NewTracker(surface)

	tr.Publish(lineAt, []protocol.Diagnostic{
		diag(0, 0, 3, protocol.SeverityError, ""),
		diag(1, 0, 3, protocol.SeverityError, "kept"),
	})

	if entries := tr.Entries(); len(entries) != 1 || entries[0].Messages[0] != "kept" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestGutterSeverityIcon(t *testing.T) {
	surface := newFakeSurface()
	tr := NewTracker(surface)

	tr.Publish(lineAt, []protocol.Diagnostic{
		diag(0, 0, 3, protocol.SeverityWarning, "warned"),
		diag(1, 0, 3, 0, "severity omitted"),
	})

	if g, _ := surface.gutterOnLine(0); g.text != "W" {
		t.Errorf("line 0 gutter text = %q, want W", g.text)
	}
	// Absent severity defaults to error.
	if g, _ := surface.gutterOnLine(1); g.text != "E" {
		t.Errorf("line 1 gutter text = %q, want E", g.text)
	}
}

func TestGutterOnePerLine(t *testing.T) {
	surface := newFakeSurface()
	tr := NewTracker(surface)

	tr.Publish(lineAt, []protocol.Diagnostic{
		diag(3, 0, 2, protocol.SeverityError, "first"),
		diag(3, 5, 9, protocol.SeverityWarning, "second"),
	})

	if tr.GutterCount() != 1 {
		t.Fatalf("gutter count = %d, want 1", tr.GutterCount())
	}
	// Distinct ranges stay distinct entries even when the line is shared.
	if len(tr.Entries()) != 2 {
		t.Errorf("%d entries, want 2", len(tr.Entries()))
	}
	// Last applied entry for the line wins the marker.
	if g, _ := surface.gutterOnLine(3); g.tooltip != "second" {
		t.Errorf("gutter tooltip = %q, want second", g.tooltip)
	}
}

func TestSetGutterEnabled(t *testing.T) {
	surface := newFakeSurface()
	tr := NewTracker(surface)

	tr.Publish(lineAt, []protocol.Diagnostic{diag(0, 0, 3, protocol.SeverityError, "problem")})
	if tr.GutterCount() != 1 {
		t.Fatal("expected a gutter marker before disabling")
	}

	tr.SetGutterEnabled(false)
	if tr.GutterCount() != 0 || len(surface.gutters) != 0 {
		t.Error("disabling did not remove existing markers")
	}

	// Marks are unaffected; only the next publish regrows gutters.
	if len(surface.marks) != 1 {
		t.Error("disabling gutters removed range marks")
	}

	tr.SetGutterEnabled(true)
	tr.Publish(lineAt, []protocol.Diagnostic{diag(0, 0, 3, protocol.SeverityError, "problem")})
	if tr.GutterCount() != 1 {
		t.Error("re-enabling did not apply on next publish")
	}
}

func TestWithGutterMarksDisabled(t *testing.T) {
	surface := newFakeSurface()
	tr := NewTracker(surface, WithGutterMarks(false))

	tr.Publish(lineAt, []protocol.Diagnostic{diag(0, 0, 3, protocol.SeverityError, "problem")})
	if tr.GutterCount() != 0 {
		t.Error("tracker created gutter markers while disabled")
	}
	if len(surface.marks) != 1 {
		t.Error("range mark missing with gutters disabled")
	}
}

func TestTrackerClasses(t *testing.T) {
	surface := newFakeSurface()
	tr := NewTracker(surface, WithMarkClass("mark-cls"), WithGutterClass("gutter-cls"))

	tr.Publish(lineAt, []protocol.Diagnostic{diag(0, 0, 3, protocol.SeverityError, "problem")})

	for _, m := range surface.marks {
		if m.class != "mark-cls" {
			t.Errorf("mark class = %q", m.class)
		}
	}
	for _, g := range surface.gutters {
		if g.class != "gutter-cls" {
			t.Errorf("gutter class = %q", g.class)
		}
	}
}

func TestSummary(t *testing.T) {
	surface := newFakeSurface()
	tr := NewTracker(surface)

	tr.Publish(lineAt, []protocol.Diagnostic{
		diag(0, 0, 1, protocol.SeverityError, "e"),
		diag(1, 0, 1, protocol.SeverityWarning, "w1"),
		diag(2, 0, 1, protocol.SeverityWarning, "w2"),
		diag(3, 0, 1, protocol.SeverityInformation, "i"),
		diag(4, 0, 1, protocol.SeverityHint, "h"),
	})

	got := tr.Summary()
	want := Summary{Entries: 5, Errors: 1, Warnings: 2, Infos: 1, Hints: 1}
	if got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}
}
