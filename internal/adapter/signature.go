package adapter

import (
	"github.com/dshills/lspbridge/internal/overlay"
	"github.com/dshills/lspbridge/internal/position"
	"github.com/dshills/lspbridge/internal/protocol"
	"github.com/dshills/lspbridge/internal/token"
)

// requestSignature issues a signature help request after a signature
// trigger character was typed.
func (a *Adapter) requestSignature(cur position.Pos, splitChars string) {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	line := a.surface.LineText(cur.Line)
	// The token is the trigger character itself; extraction keeps the
	// track's bookkeeping consistent even though rendering only needs
	// the cursor position.
	if _, ok := token.Extract(line, cur, splitChars); !ok {
		a.mu.Unlock()
		return
	}
	a.pendingSignature = true
	conn := a.conn
	a.mu.Unlock()

	conn.RequestSignatureHelp(position.ToProtocol(line, cur))
}

// cancelSignature idles the signature track and removes its overlay.
func (a *Adapter) cancelSignature() {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	a.pendingSignature = false
	a.mu.Unlock()

	a.presenter.HideKind(overlay.KindSignature)
}

// onSignature renders a signature help response at the cursor.
func (a *Adapter) onSignature(sh *protocol.SignatureHelp) {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	pending := a.pendingSignature
	a.pendingSignature = false
	if !pending || !a.opts.EnableSignatures {
		a.mu.Unlock()
		return
	}
	if sh == nil || len(sh.Signatures) == 0 {
		a.mu.Unlock()
		a.presenter.HideKind(overlay.KindSignature)
		return
	}

	active := sh.ActiveSignature
	if active < 0 || active >= len(sh.Signatures) {
		active = 0
	}
	sig := sh.Signatures[active]

	lines := []string{sig.Label}
	if p := activeParam(sig, sh.ActiveParameter); p != "" {
		lines = append(lines, p)
	}
	if sig.Documentation != "" {
		lines = append(lines, sig.Documentation)
	}

	cur := a.surface.Cursor()
	target := a.anchorPoint(cur)
	lineHeight := a.surface.LineHeight()
	viewport := a.surface.ViewportHeight()
	a.mu.Unlock()

	a.presenter.Show(overlay.Node{
		Kind:  overlay.KindSignature,
		Lines: lines,
	}, target, lineHeight, viewport)
}

// activeParam resolves the active parameter's label and documentation
// into one display line, or "" when there is nothing to show.
func activeParam(sig protocol.SignatureInformation, idx int) string {
	if idx < 0 || idx >= len(sig.Parameters) {
		return ""
	}
	p := sig.Parameters[idx]
	label := protocol.ParamLabelText(p.Label, sig.Label)
	if label == "" {
		return p.Documentation
	}
	if p.Documentation == "" {
		return label
	}
	return label + ": " + p.Documentation
}
