package term

import (
	"github.com/mattn/go-runewidth"

	"github.com/dshills/lspbridge/internal/overlay"
)

// The surface doubles as the overlay host: a single node is mounted as a
// bordered box drawn over the document. Layout callbacks queue until the
// next Draw, which is this backend's layout pass.

// Mount installs the overlay node.
func (s *Surface) Mount(n overlay.Node) {
	s.mu.Lock()
	s.node = &n
	s.mu.Unlock()
}

// Unmount removes the node when its id is still the mounted one.
func (s *Surface) Unmount(id string) {
	s.mu.Lock()
	if s.node != nil && s.node.ID == id {
		s.node = nil
	}
	s.mu.Unlock()
}

// Move repositions the mounted node.
func (s *Surface) Move(id string, p overlay.Point) {
	s.mu.Lock()
	if s.node != nil && s.node.ID == id {
		s.node.Pos = p
	}
	s.mu.Unlock()
}

// Measure returns the rendered extent of the mounted node, border included.
func (s *Surface) Measure(id string) overlay.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.node == nil || s.node.ID != id {
		return overlay.Size{}
	}
	return nodeSize(*s.node)
}

// OnNextLayout queues fn for the next Draw.
func (s *Surface) OnNextLayout(fn func()) {
	s.mu.Lock()
	s.layoutQueue = append(s.layoutQueue, fn)
	s.mu.Unlock()
}

// OnOutsideClick registers a listener for clicks outside the mounted node.
func (s *Surface) OnOutsideClick(fn func(id string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.outsideFns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.outsideFns, id)
		s.mu.Unlock()
	}
}

// nodeSize computes a node's box extent: widest row plus a one-cell
// border on each side.
func nodeSize(n overlay.Node) overlay.Size {
	rows := nodeRows(n)
	w := 0
	for _, row := range rows {
		if rw := runewidth.StringWidth(row); rw > w {
			w = rw
		}
	}
	return overlay.Size{W: w + 2, H: len(rows) + 2}
}

// nodeRows returns the text rows of a node regardless of variant.
func nodeRows(n overlay.Node) []string {
	if len(n.Entries) > 0 {
		rows := make([]string, len(n.Entries))
		for i, e := range n.Entries {
			rows[i] = e.Label
		}
		return rows
	}
	return n.Lines
}
