package adapter

import (
	"github.com/dshills/lspbridge/internal/overlay"
	"github.com/dshills/lspbridge/internal/position"
)

// onContextMenu handles a right-click over the editor. The menu is only
// offered when the pointer is over a token and the server supports at
// least one navigation capability; entries are built per capability.
func (a *Adapter) onContextMenu(ev PointerEvent) {
	a.mu.Lock()
	if a.removed || !a.opts.EnableContextMenu {
		a.mu.Unlock()
		return
	}
	surface := a.surface
	conn := a.conn
	provider := a.opts.ContextMenuProvider
	a.mu.Unlock()

	pos, ok := surface.PosAt(ev.X, ev.Y)
	if !ok || !overToken(surface.LineText(pos.Line), pos) {
		return
	}

	line := surface.LineText(pos.Line)
	ppos := position.ToProtocol(line, pos)

	var entries []overlay.MenuEntry
	if conn.DefinitionSupported() {
		entries = append(entries, overlay.MenuEntry{
			Label:  "Go to Definition",
			Action: func() { conn.RequestDefinition(ppos) },
		})
	}
	if conn.TypeDefinitionSupported() {
		entries = append(entries, overlay.MenuEntry{
			Label:  "Go to Type Definition",
			Action: func() { conn.RequestTypeDefinition(ppos) },
		})
	}
	if conn.ReferencesSupported() {
		entries = append(entries, overlay.MenuEntry{
			Label:  "Find References",
			Action: func() { conn.RequestReferences(ppos) },
		})
	}
	if len(entries) == 0 {
		return
	}

	if provider != nil {
		provider(ev, entries)
		return
	}

	a.presenter.Show(overlay.Node{
		Kind:    overlay.KindMenu,
		Entries: entries,
	}, overlay.Point{X: ev.X, Y: ev.Y}, surface.LineHeight(), surface.ViewportHeight())
}
