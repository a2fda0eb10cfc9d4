// Package adapter is the editor–protocol event router: the single state
// machine that turns editor activity (typing, pointer motion, right-click)
// into protocol requests and protocol responses into UI mutations on the
// editor surface.
//
// The interaction tracks (hover, completion, signature help, context menu)
// are independent: each keeps just enough context between a triggering
// event and the matching asynchronous response to decide, at the moment
// the response arrives, whether it is still worth rendering. Requests are
// never cancelled; staleness is handled on arrival. Pending context is a
// single slot per track, overwritten by newer requests and consumed by
// the first response, so at most one render happens per issued context
// and it always uses the newest one.
package adapter

import (
	"strings"
	"sync"
	"time"

	"github.com/dshills/lspbridge/internal/diagnostics"
	"github.com/dshills/lspbridge/internal/overlay"
	"github.com/dshills/lspbridge/internal/position"
	"github.com/dshills/lspbridge/internal/protocol"
	"github.com/dshills/lspbridge/internal/token"
)

// Adapter couples one editor surface to one protocol connection. Create
// with New, tear down with Remove; an adapter must not be reused after
// Remove.
type Adapter struct {
	mu      sync.Mutex
	surface Surface
	conn    protocol.Connection

	presenter *overlay.Presenter
	diags     *diagnostics.Tracker
	opts      Options

	disposers []func()
	removed   bool

	typeDebounce  *debounce
	hoverDebounce *debounce

	// Hover track.
	lastHoverReq *position.Pos
	pendingHover *hoverContext
	hoverClear   func()
	lastPointer  *position.Pos

	// Completion track.
	pendingCompletion *completionContext

	// Signature track.
	pendingSignature bool

	// Navigation highlights.
	highlightClears []func()
}

// hoverContext is the state captured when a hover request is issued.
type hoverContext struct {
	pos position.Pos
}

// completionContext is the state captured when a completion request is
// issued: the token the eventual response will be ranked against.
type completionContext struct {
	pos position.Pos
	tok token.Info
}

// New wires an adapter between surface and conn, mounting overlays on
// host. Listener registration happens here; Remove detaches everything.
// Panics when surface, conn, or host is nil: those are programmer errors,
// not runtime conditions.
func New(surface Surface, conn protocol.Connection, host overlay.Host, opts Options) *Adapter {
	if surface == nil {
		panic("adapter: New called with nil surface")
	}
	if conn == nil {
		panic("adapter: New called with nil connection")
	}
	if host == nil {
		panic("adapter: New called with nil overlay host")
	}

	opts = fillDefaults(opts)

	a := &Adapter{
		surface:       surface,
		conn:          conn,
		presenter:     overlay.NewPresenter(host),
		opts:          opts,
		typeDebounce:  newDebounce(typingInterval(opts)),
		hoverDebounce: newDebounce(opts.HoverDelay),
	}

	a.diags = diagnostics.NewTracker(surface,
		diagnostics.WithMarkClass(opts.DiagnosticMarkClassName),
		diagnostics.WithGutterClass(opts.GutterMarkClassName),
		diagnostics.WithGutterMarks(opts.EnableGutterMarks),
	)

	a.disposers = append(a.disposers,
		surface.OnChange(a.onChange),
		surface.OnRefresh(a.onInvalidate),
		surface.OnScroll(a.onInvalidate),
		surface.OnFocus(a.onFocus),
		surface.OnPointerMove(a.onPointerMove),
		surface.OnPointerLeave(a.onInvalidate),
		surface.OnContextMenu(a.onContextMenu),
		conn.OnHover(a.onHover),
		conn.OnCompletion(a.onCompletion),
		conn.OnSignature(a.onSignature),
		conn.OnGoTo(a.onGoTo),
		conn.OnDiagnostics(a.onDiagnostics),
	)

	return a
}

// Options returns the current configuration snapshot.
func (a *Adapter) Options() Options {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.opts
}

// UpdateOptions replaces the configuration. Disabling diagnostics clears
// their overlays immediately; disabling a feature tears down its overlay.
func (a *Adapter) UpdateOptions(next Options) {
	next = fillDefaults(next)

	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	prev := a.opts
	a.opts = next
	if !next.EnableHoverInfo {
		a.clearHoverMarkLocked()
	}
	a.mu.Unlock()

	a.typeDebounce.setInterval(typingInterval(next))
	a.hoverDebounce.setInterval(next.HoverDelay)

	a.diags.SetMarkClass(next.DiagnosticMarkClassName)
	a.diags.SetGutterEnabled(next.EnableGutterMarks && next.EnableDiagnostics)
	if prev.EnableDiagnostics && !next.EnableDiagnostics {
		a.diags.Clear()
	}
	if !next.Suggest {
		a.presenter.HideKind(overlay.KindList)
	}
	if !next.EnableHoverInfo {
		a.presenter.HideKind(overlay.KindTooltip)
	}
	if !next.EnableSignatures {
		a.presenter.HideKind(overlay.KindSignature)
	}
	if !next.EnableContextMenu {
		a.presenter.HideKind(overlay.KindMenu)
	}
}

// Remove tears the adapter down: every decoration, the mounted overlay,
// and every listener registered in New, disposed in reverse registration
// order. Responses arriving afterwards are no-ops.
func (a *Adapter) Remove() {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	a.removed = true
	ds := a.disposers
	a.disposers = nil
	a.pendingHover = nil
	a.pendingCompletion = nil
	a.pendingSignature = false
	a.clearHoverMarkLocked()
	a.clearHighlightsLocked()
	a.mu.Unlock()

	a.typeDebounce.stop()
	a.hoverDebounce.stop()

	for i := len(ds) - 1; i >= 0; i-- {
		ds[i]()
	}

	a.presenter.Dispose()
	a.diags.Clear()
}

// Diagnostics exposes the tracker, mainly for status surfaces that want
// severity counts.
func (a *Adapter) Diagnostics() *diagnostics.Tracker {
	return a.diags
}

// onChange handles a buffer change: re-derive the cursor and the rune
// immediately preceding it, pick the request the keystroke implies, and
// always forward the raw change notification.
func (a *Adapter) onChange() {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	opts := a.opts
	conn := a.conn
	cur := a.surface.Cursor()
	line := a.surface.LineText(cur.Line)
	a.mu.Unlock()

	conn.SendChange()

	runes := []rune(line)
	ch := cur.Ch
	if ch > len(runes) {
		ch = len(runes)
	}
	if ch <= 0 {
		// Line was cleared out from under the cursor.
		a.cancelSignature()
		return
	}
	prev := runes[ch-1]
	cur.Ch = ch

	completionChars := strings.Join(conn.CompletionCharacters(), "")
	signatureChars := strings.Join(conn.SignatureCharacters(), "")

	switch {
	case strings.ContainsRune(completionChars, prev):
		if opts.Suggest {
			a.requestCompletion(cur, completionChars, string(prev), protocol.TriggerCharacter)
		}

	case strings.ContainsRune(signatureChars, prev):
		if opts.EnableSignatures {
			a.requestSignature(cur, signatureChars)
		}

	case token.IsWordRune(prev):
		if opts.Suggest {
			union := completionChars + signatureChars
			if opts.DebounceSuggestionsWhileTyping {
				a.typeDebounce.trigger(func() {
					a.fireInvokedCompletion(union)
				})
			} else {
				a.fireInvokedCompletion(union)
			}
		}

	default:
		// Punctuation or whitespace outside every trigger set.
		a.cancelSignature()
	}
}

// onInvalidate handles scroll, refresh, and pointer leave: cheap
// invalidations that clear the hover marker and any open overlay without
// waiting for protocol confirmation.
func (a *Adapter) onInvalidate() {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	a.clearHoverMarkLocked()
	a.lastHoverReq = nil
	a.lastPointer = nil
	a.mu.Unlock()

	a.hoverDebounce.stop()
	a.presenter.Hide()
}

// onFocus handles the editor gaining focus (a click inside it): the
// active highlight set is cleared, but an open overlay stays.
func (a *Adapter) onFocus() {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	a.clearHighlightsLocked()
	a.mu.Unlock()
}

// onDiagnostics handles a diagnostics publication.
func (a *Adapter) onDiagnostics(diags []protocol.Diagnostic) {
	a.mu.Lock()
	if a.removed || !a.opts.EnableDiagnostics {
		a.mu.Unlock()
		return
	}
	surface := a.surface
	a.mu.Unlock()

	a.diags.Publish(surface.LineText, diags)
}

// anchorPoint converts a buffer position into the wrapper-relative pixel
// coordinate overlays are positioned against: local pixel coordinates
// minus the current scroll offset.
func (a *Adapter) anchorPoint(pos position.Pos) overlay.Point {
	pt := a.surface.PointAt(pos)
	off := a.surface.ScrollOffset()
	return overlay.Point{X: pt.X - off.X, Y: pt.Y - off.Y}
}

// clearHoverMarkLocked removes the hover range mark if present.
func (a *Adapter) clearHoverMarkLocked() {
	if a.hoverClear != nil {
		a.hoverClear()
		a.hoverClear = nil
	}
}

// clearHighlightsLocked drops the active highlight set.
func (a *Adapter) clearHighlightsLocked() {
	for _, clear := range a.highlightClears {
		clear()
	}
	a.highlightClears = nil
}

// typingInterval resolves the effective typing debounce interval.
func typingInterval(o Options) time.Duration {
	if !o.DebounceSuggestionsWhileTyping {
		return 0
	}
	return o.QuickSuggestionsDelay
}
