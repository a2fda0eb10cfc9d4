package adapter

import (
	"github.com/dshills/lspbridge/internal/overlay"
	"github.com/dshills/lspbridge/internal/position"
)

// PointerEvent is a pointer position in the surface's pixel space,
// relative to the editor's wrapper element.
type PointerEvent struct {
	X int
	Y int
}

// Surface is the adapter's view of the text-editing widget. The adapter
// never stores buffer content or positions across events: everything is
// re-derived through these accessors at the moment an event fires.
//
// Every On* registration returns a disposer detaching that listener;
// calling a disposer more than once must be a no-op.
type Surface interface {
	// Buffer access.
	LineText(line int) string
	LineCount() int
	Cursor() position.Pos

	// Geometry. PointAt returns local pixel coordinates for a document
	// position before scroll correction; ScrollOffset is the current
	// scroll position in the same space. LineHeight is the pixel height
	// of one text line.
	PointAt(pos position.Pos) overlay.Point
	ScrollOffset() overlay.Point
	LineHeight() int
	ViewportHeight() int

	// PosAt maps wrapper-relative pixel coordinates to a document
	// position; ok is false when the coordinates fall outside the
	// editor's visible bounds.
	PosAt(x, y int) (pos position.Pos, ok bool)

	// Mutation and decoration. MarkRange and SetGutterMark return the
	// removal handle for what they created.
	ReplaceRange(start, end position.Pos, text string)
	MarkRange(start, end position.Pos, class string) func()
	SetGutterMark(line int, text, tooltip, class string) func()
	ScrollTo(pos position.Pos)

	// Events.
	OnChange(fn func()) func()
	OnRefresh(fn func()) func()
	OnScroll(fn func()) func()
	OnFocus(fn func()) func()
	OnPointerMove(fn func(PointerEvent)) func()
	OnPointerLeave(fn func()) func()
	OnContextMenu(fn func(PointerEvent)) func()
}
