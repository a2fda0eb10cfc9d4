package adapter

import (
	"time"

	"github.com/dshills/lspbridge/internal/complete"
	"github.com/dshills/lspbridge/internal/overlay"
	"github.com/dshills/lspbridge/internal/protocol"
)

// Options is the adapter's configuration snapshot. It is immutable per
// update: UpdateOptions fills defaults into the incoming value and then
// replaces the previous snapshot wholesale. Start from DefaultOptions and
// flip what you need.
type Options struct {
	// Feature toggles.
	EnableHoverInfo   bool
	EnableDiagnostics bool
	EnableSignatures  bool
	EnableGutterMarks bool
	EnableContextMenu bool

	// Suggest enables the completion UI.
	Suggest bool

	// DebounceSuggestionsWhileTyping debounces word-character completion
	// requests by QuickSuggestionsDelay; when false they fire immediately.
	DebounceSuggestionsWhileTyping bool

	// QuickSuggestionsDelay is the typing quiet period before a debounced
	// completion request fires. Values <= 0 fire synchronously.
	QuickSuggestionsDelay time.Duration

	// HoverDelay is the pointer quiet period before a hover request
	// fires. Values <= 0 fire synchronously.
	HoverDelay time.Duration

	// Style class names applied to editor decorations.
	DiagnosticMarkClassName string
	GutterMarkClassName     string
	HoverMarkClassName      string
	HighlightClassName      string

	// Snippets is the static snippet candidate set merged into every
	// completion response.
	Snippets []complete.Candidate

	// ContextMenuProvider, when set, receives the right-click event and
	// the capability-filtered entries instead of the built-in menu.
	ContextMenuProvider func(ev PointerEvent, entries []overlay.MenuEntry)

	// ExternalGoTo receives navigation results for documents other than
	// the open one; the adapter drops them otherwise.
	ExternalGoTo func(kind protocol.GoToKind, locs []protocol.Location)
}

// DefaultOptions returns the fully enabled configuration.
func DefaultOptions() Options {
	return Options{
		EnableHoverInfo:                true,
		EnableDiagnostics:              true,
		EnableSignatures:               true,
		EnableGutterMarks:              true,
		EnableContextMenu:              true,
		Suggest:                        true,
		DebounceSuggestionsWhileTyping: true,
		QuickSuggestionsDelay:          200 * time.Millisecond,
		HoverDelay:                     300 * time.Millisecond,
		DiagnosticMarkClassName:        "lspbridge-diagnostic",
		GutterMarkClassName:            "lspbridge-gutter",
		HoverMarkClassName:             "lspbridge-hover",
		HighlightClassName:             "lspbridge-highlight",
	}
}

// fillDefaults backfills zero-valued non-boolean fields. Booleans keep
// their explicit values: callers start from DefaultOptions, so false
// means disabled, not unset.
func fillDefaults(o Options) Options {
	def := DefaultOptions()
	if o.DiagnosticMarkClassName == "" {
		o.DiagnosticMarkClassName = def.DiagnosticMarkClassName
	}
	if o.GutterMarkClassName == "" {
		o.GutterMarkClassName = def.GutterMarkClassName
	}
	if o.HoverMarkClassName == "" {
		o.HoverMarkClassName = def.HoverMarkClassName
	}
	if o.HighlightClassName == "" {
		o.HighlightClassName = def.HighlightClassName
	}
	return o
}
