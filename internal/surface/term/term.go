// Package term is a terminal-backed reference implementation of the
// adapter's Surface and overlay Host contracts, built on tcell. Cell
// coordinates stand in for the pixel space: one cell per column unit,
// line height 1. It exists so the demo binary runs against a real screen
// and so both contracts have a concrete in-tree implementation; the
// adapter itself never imports this package.
package term

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/lspbridge/internal/adapter"
	"github.com/dshills/lspbridge/internal/overlay"
	"github.com/dshills/lspbridge/internal/position"
)

const gutterWidth = 2

// Surface renders a document plus adapter decorations onto a tcell
// screen and fans editor events out to adapter listeners.
type Surface struct {
	mu     sync.Mutex
	screen tcell.Screen

	lines  []string
	cursor position.Pos
	scroll overlay.Point
	width  int
	height int

	nextID  int
	marks   map[int]markRecord
	gutters map[int]gutterRecord

	changeFns   map[int]func()
	refreshFns  map[int]func()
	scrollFns   map[int]func()
	focusFns    map[int]func()
	moveFns     map[int]func(adapter.PointerEvent)
	leaveFns    map[int]func()
	menuFns     map[int]func(adapter.PointerEvent)
	outsideFns  map[int]func(id string)
	layoutQueue []func()

	node *overlay.Node

	styles map[string]tcell.Style
}

// markRecord is one styled range decoration.
type markRecord struct {
	start, end position.Pos
	class      string
}

// gutterRecord is one gutter marker.
type gutterRecord struct {
	line    int
	text    string
	tooltip string
	class   string
}

// NewSurface creates a surface over an initialized tcell screen.
func NewSurface(screen tcell.Screen, text string) *Surface {
	w, h := screen.Size()
	s := &Surface{
		screen:     screen,
		lines:      strings.Split(text, "\n"),
		width:      w,
		height:     h,
		marks:      make(map[int]markRecord),
		gutters:    make(map[int]gutterRecord),
		changeFns:  make(map[int]func()),
		refreshFns: make(map[int]func()),
		scrollFns:  make(map[int]func()),
		focusFns:   make(map[int]func()),
		moveFns:    make(map[int]func(adapter.PointerEvent)),
		leaveFns:   make(map[int]func()),
		menuFns:    make(map[int]func(adapter.PointerEvent)),
		outsideFns: make(map[int]func(id string)),
		styles:     defaultStyles(),
	}
	return s
}

// defaultStyles maps the adapter's style classes onto terminal styles.
func defaultStyles() map[string]tcell.Style {
	base := tcell.StyleDefault
	return map[string]tcell.Style{
		"lspbridge-diagnostic": base.Foreground(tcell.ColorRed).Underline(true),
		"lspbridge-hover":      base.Background(tcell.ColorDarkSlateGray),
		"lspbridge-highlight":  base.Background(tcell.ColorDarkBlue),
		"lspbridge-gutter":     base.Foreground(tcell.ColorRed),
	}
}

// --- adapter.Surface: buffer access ---

// LineText returns the text of a line, or "" past the end.
func (s *Surface) LineText(line int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if line < 0 || line >= len(s.lines) {
		return ""
	}
	return s.lines[line]
}

// LineCount returns the number of buffer lines.
func (s *Surface) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Cursor returns the current cursor position.
func (s *Surface) Cursor() position.Pos {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// --- adapter.Surface: geometry ---

// PointAt converts a document position to local cell coordinates before
// scroll correction.
func (s *Surface) PointAt(pos position.Pos) overlay.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return overlay.Point{X: gutterWidth + s.colWidthLocked(pos), Y: pos.Line}
}

// colWidthLocked returns the display width of the line prefix before ch.
func (s *Surface) colWidthLocked(pos position.Pos) int {
	if pos.Line < 0 || pos.Line >= len(s.lines) {
		return 0
	}
	w := 0
	for i, r := range []rune(s.lines[pos.Line]) {
		if i >= pos.Ch {
			break
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}

// ScrollOffset returns the current scroll position.
func (s *Surface) ScrollOffset() overlay.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroll
}

// LineHeight is always one cell.
func (s *Surface) LineHeight() int { return 1 }

// ViewportHeight returns the screen height in cells.
func (s *Surface) ViewportHeight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

// PosAt maps screen cell coordinates to a document position; ok is false
// outside the visible editor area.
func (s *Surface) PosAt(x, y int) (position.Pos, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if x < gutterWidth || x >= s.width || y < 0 || y >= s.height {
		return position.Pos{}, false
	}
	line := y + s.scroll.Y
	if line < 0 || line >= len(s.lines) {
		return position.Pos{}, false
	}

	target := x - gutterWidth + s.scroll.X
	w := 0
	runes := []rune(s.lines[line])
	for i, r := range runes {
		rw := runewidth.RuneWidth(r)
		if w+rw > target {
			return position.Pos{Line: line, Ch: i}, true
		}
		w += rw
	}
	return position.Pos{Line: line, Ch: len(runes)}, true
}

// --- adapter.Surface: mutation and decoration ---

// ReplaceRange replaces [start, end) with text and fires change.
func (s *Surface) ReplaceRange(start, end position.Pos, text string) {
	s.mu.Lock()
	if start.Line < 0 || start.Line >= len(s.lines) || end.Line < start.Line || end.Line >= len(s.lines) {
		s.mu.Unlock()
		return
	}

	startRunes := []rune(s.lines[start.Line])
	endRunes := []rune(s.lines[end.Line])
	sc := clamp(start.Ch, 0, len(startRunes))
	ec := clamp(end.Ch, 0, len(endRunes))

	merged := string(startRunes[:sc]) + text + string(endRunes[ec:])
	newLines := strings.Split(merged, "\n")

	out := make([]string, 0, len(s.lines))
	out = append(out, s.lines[:start.Line]...)
	out = append(out, newLines...)
	out = append(out, s.lines[end.Line+1:]...)
	s.lines = out

	lastNew := newLines[len(newLines)-1]
	s.cursor = position.Pos{
		Line: start.Line + len(newLines) - 1,
		Ch:   len([]rune(lastNew)) - (len(endRunes) - ec),
	}
	fns := collect(s.changeFns)
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// MarkRange records a styled range and returns its removal handle.
func (s *Surface) MarkRange(start, end position.Pos, class string) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.marks[id] = markRecord{start: start, end: end, class: class}
	return func() {
		s.mu.Lock()
		delete(s.marks, id)
		s.mu.Unlock()
	}
}

// SetGutterMark records a gutter marker and returns its removal handle.
func (s *Surface) SetGutterMark(line int, text, tooltip, class string) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.gutters[id] = gutterRecord{line: line, text: text, tooltip: tooltip, class: class}
	return func() {
		s.mu.Lock()
		delete(s.gutters, id)
		s.mu.Unlock()
	}
}

// ScrollTo adjusts the scroll offset so pos is visible.
func (s *Surface) ScrollTo(pos position.Pos) {
	s.mu.Lock()
	if pos.Line < s.scroll.Y {
		s.scroll.Y = pos.Line
	} else if pos.Line >= s.scroll.Y+s.height {
		s.scroll.Y = pos.Line - s.height + 1
	}
	fns := collect(s.scrollFns)
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// --- adapter.Surface: events ---

// OnChange registers a buffer change listener.
func (s *Surface) OnChange(fn func()) func() { return s.register(s.changeFns, fn) }

// OnRefresh registers a full-redraw listener.
func (s *Surface) OnRefresh(fn func()) func() { return s.register(s.refreshFns, fn) }

// OnScroll registers a scroll listener.
func (s *Surface) OnScroll(fn func()) func() { return s.register(s.scrollFns, fn) }

// OnFocus registers a focus-gained listener.
func (s *Surface) OnFocus(fn func()) func() { return s.register(s.focusFns, fn) }

// OnPointerLeave registers a pointer-leave listener.
func (s *Surface) OnPointerLeave(fn func()) func() { return s.register(s.leaveFns, fn) }

// OnPointerMove registers a pointer-move listener.
func (s *Surface) OnPointerMove(fn func(adapter.PointerEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.moveFns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.moveFns, id)
		s.mu.Unlock()
	}
}

// OnContextMenu registers a right-click listener.
func (s *Surface) OnContextMenu(fn func(adapter.PointerEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.menuFns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.menuFns, id)
		s.mu.Unlock()
	}
}

// register adds fn to a zero-argument listener map.
func (s *Surface) register(m map[int]func(), fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	m[id] = fn
	return func() {
		s.mu.Lock()
		delete(m, id)
		s.mu.Unlock()
	}
}

// collect snapshots a listener map for invocation outside the lock.
func collect(m map[int]func()) []func() {
	out := make([]func(), 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
