package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/lspbridge/internal/adapter"
	"github.com/dshills/lspbridge/internal/overlay"
	"github.com/dshills/lspbridge/internal/position"
)

// HandleEvent routes a tcell event into the surface's listener sets.
// It reports false for events the caller should treat as a quit request.
func (s *Surface) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventResize:
		w, h := e.Size()
		s.mu.Lock()
		s.width = w
		s.height = h
		fns := collect(s.refreshFns)
		s.mu.Unlock()
		for _, fn := range fns {
			fn()
		}

	case *tcell.EventKey:
		switch e.Key() {
		case tcell.KeyCtrlC, tcell.KeyEscape:
			return false
		case tcell.KeyRune:
			s.insertRune(e.Rune())
		case tcell.KeyEnter:
			s.insertText("\n")
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			s.deleteBack()
		case tcell.KeyLeft, tcell.KeyRight, tcell.KeyUp, tcell.KeyDown:
			s.moveCursor(e.Key())
		}

	case *tcell.EventMouse:
		x, y := e.Position()
		switch {
		case e.Buttons()&tcell.Button1 != 0:
			s.handleClick(x, y)
		case e.Buttons()&tcell.Button2 != 0:
			s.fireContextMenu(adapter.PointerEvent{X: x, Y: y})
		default:
			s.firePointerMove(adapter.PointerEvent{X: x, Y: y})
		}
	}
	return true
}

// insertRune types one rune at the cursor.
func (s *Surface) insertRune(r rune) {
	s.insertText(string(r))
}

// insertText inserts text at the cursor through ReplaceRange so the
// change listeners fire.
func (s *Surface) insertText(text string) {
	cur := s.Cursor()
	s.ReplaceRange(cur, cur, text)
}

// deleteBack removes the rune before the cursor.
func (s *Surface) deleteBack() {
	cur := s.Cursor()
	if cur.Ch > 0 {
		s.ReplaceRange(position.Pos{Line: cur.Line, Ch: cur.Ch - 1}, cur, "")
	} else if cur.Line > 0 {
		prev := s.LineText(cur.Line - 1)
		s.ReplaceRange(position.Pos{Line: cur.Line - 1, Ch: len([]rune(prev))}, cur, "")
	}
}

// moveCursor handles arrow keys. Cursor motion is a focus-style event,
// not a buffer change.
func (s *Surface) moveCursor(key tcell.Key) {
	s.mu.Lock()
	cur := s.cursor
	switch key {
	case tcell.KeyLeft:
		if cur.Ch > 0 {
			cur.Ch--
		}
	case tcell.KeyRight:
		if cur.Ch < len([]rune(s.lines[cur.Line])) {
			cur.Ch++
		}
	case tcell.KeyUp:
		if cur.Line > 0 {
			cur.Line--
		}
	case tcell.KeyDown:
		if cur.Line < len(s.lines)-1 {
			cur.Line++
		}
	}
	if cur.Line >= 0 && cur.Line < len(s.lines) {
		if limit := len([]rune(s.lines[cur.Line])); cur.Ch > limit {
			cur.Ch = limit
		}
	}
	s.cursor = cur
	s.mu.Unlock()
}

// handleClick routes a left click: an entry row of the mounted overlay
// invokes its action, anywhere else fires outside-click and focus.
func (s *Surface) handleClick(x, y int) {
	s.mu.Lock()
	node := s.node
	s.mu.Unlock()

	if node != nil {
		size := nodeSize(*node)
		inside := x >= node.Pos.X && x < node.Pos.X+size.W &&
			y >= node.Pos.Y && y < node.Pos.Y+size.H
		if inside {
			row := y - node.Pos.Y - 1
			if row >= 0 && row < len(node.Entries) && node.Entries[row].Action != nil {
				node.Entries[row].Action()
			}
			return
		}
		s.mu.Lock()
		id := node.ID
		fns := make([]func(string), 0, len(s.outsideFns))
		for _, fn := range s.outsideFns {
			fns = append(fns, fn)
		}
		s.mu.Unlock()
		for _, fn := range fns {
			fn(id)
		}
	}

	if pos, ok := s.PosAt(x, y); ok {
		s.mu.Lock()
		s.cursor = pos
		fns := collect(s.focusFns)
		s.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
	}
}

// firePointerMove fans a pointer move out to listeners.
func (s *Surface) firePointerMove(ev adapter.PointerEvent) {
	s.mu.Lock()
	fns := make([]func(adapter.PointerEvent), 0, len(s.moveFns))
	for _, fn := range s.moveFns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// fireContextMenu fans a right click out to listeners.
func (s *Surface) fireContextMenu(ev adapter.PointerEvent) {
	s.mu.Lock()
	fns := make([]func(adapter.PointerEvent), 0, len(s.menuFns))
	for _, fn := range s.menuFns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Draw paints the document, decorations, and any mounted overlay, then
// runs the queued layout callbacks and shows the frame.
func (s *Surface) Draw() {
	s.mu.Lock()
	s.screen.Clear()

	base := tcell.StyleDefault
	for row := 0; row < s.height; row++ {
		line := row + s.scroll.Y
		if line < 0 || line >= len(s.lines) {
			continue
		}
		s.drawGutterLocked(row, line, base)
		s.drawLineLocked(row, line, base)
	}

	if s.node != nil {
		s.drawNodeLocked(*s.node, base.Reverse(true))
	}

	cx := gutterWidth + s.colWidthLocked(s.cursor) - s.scroll.X
	cy := s.cursor.Line - s.scroll.Y
	s.screen.ShowCursor(cx, cy)

	queue := s.layoutQueue
	s.layoutQueue = nil
	s.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	s.screen.Show()
}

// drawGutterLocked paints the gutter cell for one visible row.
func (s *Surface) drawGutterLocked(row, line int, base tcell.Style) {
	for _, g := range s.gutters {
		if g.line != line || g.text == "" {
			continue
		}
		style := s.styleFor(g.class, base)
		s.screen.SetContent(0, row, []rune(g.text)[0], nil, style)
		return
	}
}

// drawLineLocked paints one visible document line with mark styling.
func (s *Surface) drawLineLocked(row, line int, base tcell.Style) {
	x := gutterWidth - s.scroll.X
	for i, r := range []rune(s.lines[line]) {
		style := base
		for _, m := range s.marks {
			if markContains(m, line, i) {
				style = s.styleFor(m.class, base)
			}
		}
		if x >= gutterWidth {
			s.screen.SetContent(x, row, r, nil, style)
		}
		x += runewidth.RuneWidth(r)
		if x >= s.width {
			break
		}
	}
}

// markContains reports whether a mark covers rune i of line.
func markContains(m markRecord, line, i int) bool {
	p := position.Pos{Line: line, Ch: i}
	if position.Before(p, m.start) {
		return false
	}
	return position.Before(p, m.end)
}

// drawNodeLocked paints the mounted overlay as a bordered box.
func (s *Surface) drawNodeLocked(n overlay.Node, style tcell.Style) {
	size := nodeSize(n)
	for dy := 0; dy < size.H; dy++ {
		for dx := 0; dx < size.W; dx++ {
			s.screen.SetContent(n.Pos.X+dx, n.Pos.Y+dy, ' ', nil, style)
		}
	}
	for i, row := range nodeRows(n) {
		x := n.Pos.X + 1
		for _, r := range []rune(row) {
			if x >= n.Pos.X+size.W-1 {
				break
			}
			s.screen.SetContent(x, n.Pos.Y+1+i, r, nil, style)
			x += runewidth.RuneWidth(r)
		}
	}
}

// styleFor resolves a decoration class to a terminal style.
func (s *Surface) styleFor(class string, base tcell.Style) tcell.Style {
	if st, ok := s.styles[class]; ok {
		return st
	}
	return base
}
