package adapter

import (
	"github.com/dshills/lspbridge/internal/position"
	"github.com/dshills/lspbridge/internal/protocol"
)

// onGoTo renders a navigation response. Locations for other documents
// are never highlighted here; they go to the ExternalGoTo hook when one
// is configured, otherwise they drop. The surviving locations replace
// the highlight set wholesale and the view scrolls to the first one; an
// empty surviving set moves nothing.
func (a *Adapter) onGoTo(kind protocol.GoToKind, locs []protocol.Location) {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}

	uri := a.conn.DocumentURI()
	var same, foreign []protocol.Location
	for _, loc := range locs {
		if loc.URI == uri {
			same = append(same, loc)
		} else {
			foreign = append(foreign, loc)
		}
	}

	a.clearHighlightsLocked()

	external := a.opts.ExternalGoTo
	if len(same) == 0 {
		a.mu.Unlock()
		if external != nil && len(foreign) > 0 {
			external(kind, foreign)
		}
		return
	}

	surface := a.surface
	class := a.opts.HighlightClassName
	var firstStart position.Pos
	for i, loc := range same {
		start, end := position.RangeFromProtocol(surface.LineText, loc.Range)
		a.highlightClears = append(a.highlightClears, surface.MarkRange(start, end, class))
		if i == 0 {
			firstStart = start
		}
	}
	a.mu.Unlock()

	surface.ScrollTo(firstStart)
	if external != nil && len(foreign) > 0 {
		external(kind, foreign)
	}
}

// HighlightCount returns the size of the active highlight set.
func (a *Adapter) HighlightCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.highlightClears)
}
