// Package overlay positions and mounts transient UI surfaces (tooltips,
// context menus, completion hint lists) relative to a screen coordinate.
//
// Placement is a pure function so the flip-on-overflow logic is testable
// without a rendering surface; the mount/unmount side effects go through
// the Host interface. At most one overlay is mounted at any time: showing
// a new one tears down the previous one synchronously first.
package overlay

import (
	"sync"

	"github.com/google/uuid"
)

// Point is a screen coordinate in the host's pixel space.
type Point struct {
	X int
	Y int
}

// Size is a rendered surface extent in the host's pixel space.
type Size struct {
	W int
	H int
}

// Kind identifies the overlay surface variants.
type Kind uint8

const (
	// KindTooltip carries hover text.
	KindTooltip Kind = iota

	// KindSignature carries signature help text. Rendered like a tooltip
	// but tracked separately so signature cancellation cannot tear down a
	// hover tooltip.
	KindSignature

	// KindMenu is the right-click context menu.
	KindMenu

	// KindList is the inline completion hint list.
	KindList
)

// String returns the string representation of the overlay kind.
func (k Kind) String() string {
	switch k {
	case KindTooltip:
		return "tooltip"
	case KindSignature:
		return "signature"
	case KindMenu:
		return "menu"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// MenuEntry is one actionable row of a menu or list overlay.
type MenuEntry struct {
	Label  string
	Action func()
}

// Node is the content of a mounted overlay. Exactly one of Lines or
// Entries is populated depending on Kind.
type Node struct {
	ID      string
	Kind    Kind
	Class   string
	Lines   []string
	Entries []MenuEntry
	Pos     Point
}

// Host mounts overlay nodes onto the real rendering surface. Measurement
// is only meaningful after the next layout pass, so final placement is
// deferred through OnNextLayout.
type Host interface {
	Mount(n Node)
	Unmount(id string)
	Move(id string, p Point)
	Measure(id string) Size
	OnNextLayout(fn func())
	OnOutsideClick(fn func(id string)) func()
}

// Place computes the final position for an overlay of a known size around
// target. The surface sits with its bottom edge touching the target line;
// when that would push its top above the viewport it flips to one line
// below the target instead. A flipped surface that still overflows the
// viewport bottom is pinned to the bottom edge.
func Place(target Point, size Size, lineHeight, viewportHeight int) Point {
	p := Point{X: target.X, Y: target.Y - size.H}
	if p.Y < 0 {
		p.Y = target.Y + lineHeight
		if viewportHeight > 0 && p.Y+size.H > viewportHeight {
			if alt := viewportHeight - size.H; alt >= 0 {
				p.Y = alt
			}
		}
	}
	if p.X < 0 {
		p.X = 0
	}
	return p
}

// Presenter owns the single mounted overlay for one adapter instance.
type Presenter struct {
	mu   sync.Mutex
	host Host

	active   *Node
	target   Point
	onClose  func(Kind)
	disposed bool

	disposeClick func()
}

// NewPresenter creates a presenter bound to a host. The outside-click
// listener is registered immediately and lives until Dispose.
func NewPresenter(host Host) *Presenter {
	p := &Presenter{host: host}
	p.disposeClick = host.OnOutsideClick(func(id string) {
		p.mu.Lock()
		hit := p.active != nil && p.active.ID == id
		p.mu.Unlock()
		if hit {
			p.Hide()
		}
	})
	return p
}

// Show mounts a new overlay at target, tearing down any previous overlay
// first. Initial placement is one text line above the target; once the
// host has laid the node out its measured size drives final placement.
func (p *Presenter) Show(n Node, target Point, lineHeight, viewportHeight int) {
	p.Hide()

	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	n.ID = uuid.NewString()
	n.Pos = Point{X: target.X, Y: target.Y - lineHeight}
	if n.Pos.Y < 0 {
		n.Pos.Y = 0
	}
	p.active = &n
	p.target = target
	id := n.ID
	p.mu.Unlock()

	p.host.Mount(n)

	p.host.OnNextLayout(func() {
		p.mu.Lock()
		if p.active == nil || p.active.ID != id {
			p.mu.Unlock()
			return
		}
		size := p.host.Measure(id)
		final := Place(target, size, lineHeight, viewportHeight)
		p.active.Pos = final
		p.mu.Unlock()
		p.host.Move(id, final)
	})
}

// Hide unmounts the active overlay, if any.
func (p *Presenter) Hide() {
	p.mu.Lock()
	n := p.active
	p.active = nil
	cb := p.onClose
	p.mu.Unlock()

	if n == nil {
		return
	}
	p.host.Unmount(n.ID)
	if cb != nil {
		cb(n.Kind)
	}
}

// HideKind unmounts the active overlay only when it is of the given kind.
func (p *Presenter) HideKind(kind Kind) {
	p.mu.Lock()
	hit := p.active != nil && p.active.Kind == kind
	p.mu.Unlock()
	if hit {
		p.Hide()
	}
}

// ActiveKind returns the kind of the mounted overlay, if one is mounted.
func (p *Presenter) ActiveKind() (Kind, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return 0, false
	}
	return p.active.Kind, true
}

// Contains reports whether pt falls inside the mounted overlay's rectangle.
func (p *Presenter) Contains(pt Point) bool {
	p.mu.Lock()
	n := p.active
	p.mu.Unlock()
	if n == nil {
		return false
	}

	size := p.host.Measure(n.ID)
	return pt.X >= n.Pos.X && pt.X < n.Pos.X+size.W &&
		pt.Y >= n.Pos.Y && pt.Y < n.Pos.Y+size.H
}

// SetOnClose registers a callback invoked after an overlay is unmounted.
func (p *Presenter) SetOnClose(fn func(Kind)) {
	p.mu.Lock()
	p.onClose = fn
	p.mu.Unlock()
}

// Dispose hides any overlay and detaches the outside-click listener.
// The presenter must not be used afterwards.
func (p *Presenter) Dispose() {
	p.Hide()
	p.mu.Lock()
	p.disposed = true
	dc := p.disposeClick
	p.disposeClick = nil
	p.mu.Unlock()
	if dc != nil {
		dc()
	}
}
