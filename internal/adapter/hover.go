package adapter

import (
	"strings"

	"github.com/dshills/lspbridge/internal/overlay"
	"github.com/dshills/lspbridge/internal/position"
	"github.com/dshills/lspbridge/internal/protocol"
	"github.com/dshills/lspbridge/internal/token"
)

// onPointerMove drives the hover track. Movement is debounced; a request
// fires only when the pointer is over a rendered token, not over an open
// overlay, and inside the editor's visible bounds. A pointer outside the
// bounds tears hover state down immediately, without debouncing.
func (a *Adapter) onPointerMove(ev PointerEvent) {
	a.mu.Lock()
	if a.removed || !a.opts.EnableHoverInfo {
		a.mu.Unlock()
		return
	}
	surface := a.surface
	a.mu.Unlock()

	pos, ok := surface.PosAt(ev.X, ev.Y)
	if !ok {
		a.hoverDebounce.stop()
		a.mu.Lock()
		if a.removed {
			a.mu.Unlock()
			return
		}
		a.clearHoverMarkLocked()
		a.lastHoverReq = nil
		a.lastPointer = nil
		a.mu.Unlock()
		a.presenter.HideKind(overlay.KindTooltip)
		return
	}

	a.mu.Lock()
	a.lastPointer = &pos
	a.mu.Unlock()

	if a.presenter.Contains(overlay.Point{X: ev.X, Y: ev.Y}) {
		return
	}
	if !overToken(surface.LineText(pos.Line), pos) {
		return
	}

	a.hoverDebounce.trigger(func() {
		a.fireHover(pos)
	})
}

// fireHover issues a hover request for pos unless one was already issued
// for the exact same position (stationary-pointer suppression).
func (a *Adapter) fireHover(pos position.Pos) {
	a.mu.Lock()
	if a.removed || !a.opts.EnableHoverInfo {
		a.mu.Unlock()
		return
	}
	if a.lastHoverReq != nil && position.Equal(*a.lastHoverReq, pos) {
		a.mu.Unlock()
		return
	}
	a.lastHoverReq = &pos
	a.pendingHover = &hoverContext{pos: pos}
	conn := a.conn
	line := a.surface.LineText(pos.Line)
	a.mu.Unlock()

	conn.RequestHover(position.ToProtocol(line, pos))
}

// onHover renders a hover response. The pending context is consumed
// either way; validity is judged against the pointer position current
// now, not the one captured at request time.
func (a *Adapter) onHover(h protocol.Hover) {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	pend := a.pendingHover
	a.pendingHover = nil
	if pend == nil || !a.opts.EnableHoverInfo {
		a.mu.Unlock()
		return
	}

	content, ok := protocol.NormalizeContents(h.Contents)
	if !ok {
		// Empty or malformed contents: degrade to no tooltip.
		a.clearHoverMarkLocked()
		a.mu.Unlock()
		a.presenter.HideKind(overlay.KindTooltip)
		return
	}

	cur := a.lastPointer
	if cur == nil {
		// Pointer already left; the track is idle again.
		a.mu.Unlock()
		return
	}
	if h.Range != nil && !position.InProtocolRange(a.surface.LineText(cur.Line), *cur, *h.Range) {
		a.mu.Unlock()
		return
	}

	anchor := pend.pos
	a.clearHoverMarkLocked()
	if h.Range != nil {
		start, end := position.RangeFromProtocol(a.surface.LineText, *h.Range)
		a.hoverClear = a.surface.MarkRange(start, end, a.opts.HoverMarkClassName)
		anchor = start
	}

	target := a.anchorPoint(anchor)
	lineHeight := a.surface.LineHeight()
	viewport := a.surface.ViewportHeight()
	class := a.opts.HoverMarkClassName
	a.mu.Unlock()

	a.presenter.Show(overlay.Node{
		Kind:  overlay.KindTooltip,
		Class: class,
		Lines: strings.Split(content.Text, "\n"),
	}, target, lineHeight, viewport)
}

// overToken reports whether the rune at pos sits inside a word-like
// token, which is what makes a hover worth requesting.
func overToken(lineText string, pos position.Pos) bool {
	runes := []rune(lineText)
	if pos.Ch < 0 || pos.Ch >= len(runes) {
		return false
	}
	return token.IsWordRune(runes[pos.Ch])
}
