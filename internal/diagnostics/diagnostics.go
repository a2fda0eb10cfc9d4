// Package diagnostics stores published diagnostic ranges and drives the
// editor's underline marks and gutter markers.
//
// Publications are "latest wins" snapshots per document: every publish
// discards all previously marked ranges and rebuilds from scratch, which
// stays correct under out-of-order network delivery. Diagnostics sharing
// an identical (start, end) pair merge into one entry's message list so a
// range is never overlaid twice.
package diagnostics

import (
	"strings"
	"sync"

	"github.com/dshills/lspbridge/internal/position"
	"github.com/dshills/lspbridge/internal/protocol"
)

// Surface is the slice of the editor surface the tracker needs: range
// marks and removable gutter markers. Both return their removal handle.
type Surface interface {
	MarkRange(start, end position.Pos, class string) func()
	SetGutterMark(line int, text, tooltip, class string) func()
}

// Entry is one logical marked range with the merged messages of every
// diagnostic that landed exactly on it.
type Entry struct {
	Messages []string
	Severity protocol.DiagnosticSeverity
	Start    position.Pos
	End      position.Pos
}

// rangeKey identifies an entry by its exact coordinate pair.
type rangeKey struct {
	startLine, startCh int
	endLine, endCh     int
}

// Tracker de-duplicates and stores diagnostic ranges for one document.
type Tracker struct {
	mu      sync.Mutex
	surface Surface

	entries map[rangeKey]*Entry
	order   []rangeKey

	marks   []func()
	gutters map[int]func()

	markClass     string
	gutterClass   string
	gutterEnabled bool
}

// TrackerOption configures the tracker.
type TrackerOption func(*Tracker)

// WithMarkClass sets the style class applied to marked ranges.
func WithMarkClass(class string) TrackerOption {
	return func(t *Tracker) {
		t.markClass = class
	}
}

// WithGutterClass sets the style class applied to gutter markers.
func WithGutterClass(class string) TrackerOption {
	return func(t *Tracker) {
		t.gutterClass = class
	}
}

// WithGutterMarks enables or disables gutter marker creation.
func WithGutterMarks(enabled bool) TrackerOption {
	return func(t *Tracker) {
		t.gutterEnabled = enabled
	}
}

// NewTracker creates a tracker that decorates the given surface.
func NewTracker(surface Surface, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		surface:       surface,
		entries:       make(map[rangeKey]*Entry),
		gutters:       make(map[int]func()),
		markClass:     "lspbridge-mark",
		gutterClass:   "lspbridge-gutter",
		gutterEnabled: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Publish replaces the tracked set with a fresh publication. lineAt must
// return the current text of a buffer line; it is consulted to convert
// protocol ranges into editor coordinates against the live buffer.
func (t *Tracker) Publish(lineAt func(int) string, diags []protocol.Diagnostic) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.clearLocked()

	for _, d := range diags {
		if d.Message == "" {
			continue
		}

		start, end := position.RangeFromProtocol(lineAt, d.Range)
		key := rangeKey{start.Line, start.Ch, end.Line, end.Ch}

		if e, ok := t.entries[key]; ok {
			e.Messages = append(e.Messages, d.Message)
			if d.Severity != 0 && d.Severity < e.Severity {
				e.Severity = d.Severity
			}
			t.refreshGutterLocked(start.Line, e)
			continue
		}

		e := &Entry{
			Messages: []string{d.Message},
			Severity: severityOrDefault(d.Severity),
			Start:    start,
			End:      end,
		}
		t.entries[key] = e
		t.order = append(t.order, key)
		t.marks = append(t.marks, t.surface.MarkRange(start, end, t.markClass))
		t.refreshGutterLocked(start.Line, e)
	}
}

// refreshGutterLocked sets the gutter marker for a line. One marker per
// line; the last entry applied for the line wins as the tooltip.
func (t *Tracker) refreshGutterLocked(line int, e *Entry) {
	if !t.gutterEnabled {
		return
	}
	if remove, ok := t.gutters[line]; ok {
		remove()
	}
	tooltip := strings.Join(e.Messages, "\n")
	t.gutters[line] = t.surface.SetGutterMark(line, e.Severity.Icon(), tooltip, t.gutterClass)
}

// Clear removes every mark and gutter marker and forgets all entries.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
}

func (t *Tracker) clearLocked() {
	for _, remove := range t.marks {
		remove()
	}
	for _, remove := range t.gutters {
		remove()
	}
	t.marks = nil
	t.gutters = make(map[int]func())
	t.entries = make(map[rangeKey]*Entry)
	t.order = nil
}

// Entries returns the tracked entries in publication order.
func (t *Tracker) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, *t.entries[key])
	}
	return out
}

// GutterCount returns the number of lines carrying a gutter marker.
func (t *Tracker) GutterCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.gutters)
}

// SetGutterEnabled toggles gutter marker creation. Disabling removes any
// existing markers immediately; enabling applies to the next publish.
func (t *Tracker) SetGutterEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gutterEnabled = enabled
	if enabled {
		return
	}
	for _, remove := range t.gutters {
		remove()
	}
	t.gutters = make(map[int]func())
}

// SetMarkClass updates the style class used for future marks.
func (t *Tracker) SetMarkClass(class string) {
	t.mu.Lock()
	t.markClass = class
	t.mu.Unlock()
}

// Summary aggregates entry counts by severity.
type Summary struct {
	Entries  int
	Errors   int
	Warnings int
	Infos    int
	Hints    int
}

// Summary returns per-severity entry counts for the current set.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Summary{Entries: len(t.order)}
	for _, key := range t.order {
		switch t.entries[key].Severity {
		case protocol.SeverityError:
			s.Errors++
		case protocol.SeverityWarning:
			s.Warnings++
		case protocol.SeverityInformation:
			s.Infos++
		case protocol.SeverityHint:
			s.Hints++
		}
	}
	return s
}

// severityOrDefault treats an absent severity as an error, matching how
// servers that omit the field intend it.
func severityOrDefault(s protocol.DiagnosticSeverity) protocol.DiagnosticSeverity {
	if s == 0 {
		return protocol.SeverityError
	}
	return s
}
