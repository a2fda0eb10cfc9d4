package adapter

import (
	"github.com/dshills/lspbridge/internal/complete"
	"github.com/dshills/lspbridge/internal/overlay"
	"github.com/dshills/lspbridge/internal/position"
	"github.com/dshills/lspbridge/internal/protocol"
	"github.com/dshills/lspbridge/internal/token"
)

// requestCompletion issues a trigger-character completion: the token is
// the trigger character itself, extracted with the completion set.
func (a *Adapter) requestCompletion(cur position.Pos, splitChars, triggerChar string, kind protocol.CompletionTriggerKind) {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	line := a.surface.LineText(cur.Line)
	tok, ok := token.Extract(line, cur, splitChars)
	if !ok {
		tok = token.Info{Start: cur, End: cur}
	}
	a.pendingCompletion = &completionContext{pos: cur, tok: tok}
	conn := a.conn
	a.mu.Unlock()

	conn.RequestCompletion(position.ToProtocol(line, cur), tok.Text, triggerChar, kind)
}

// fireInvokedCompletion issues a word-character ("invoked") completion
// after the typing debounce. The stored token is extracted with the union
// of the completion and signature trigger sets, for use once the response
// returns.
func (a *Adapter) fireInvokedCompletion(splitChars string) {
	a.mu.Lock()
	if a.removed || !a.opts.Suggest {
		a.mu.Unlock()
		return
	}
	cur := a.surface.Cursor()
	line := a.surface.LineText(cur.Line)
	tok, ok := token.Extract(line, cur, splitChars)
	if !ok {
		tok = token.Info{Start: cur, End: cur}
	}
	a.pendingCompletion = &completionContext{pos: cur, tok: tok}
	conn := a.conn
	a.mu.Unlock()

	conn.RequestCompletion(position.ToProtocol(line, cur), tok.Text, "", protocol.TriggerInvoked)
}

// onCompletion renders a completion response against the most recently
// stored pending token. An arrival with no pending context is stale and
// drops silently.
func (a *Adapter) onCompletion(list protocol.CompletionList) {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	pend := a.pendingCompletion
	a.pendingCompletion = nil
	if pend == nil || !a.opts.Suggest {
		a.mu.Unlock()
		return
	}

	server := complete.Rank(pend.tok.Text, complete.FromItems(list.Items), false)
	snippets := complete.Rank(pend.tok.Text, a.opts.Snippets, true)
	all := append(server, snippets...)
	if len(all) == 0 {
		a.mu.Unlock()
		a.presenter.HideKind(overlay.KindList)
		return
	}

	tok := pend.tok
	entries := make([]overlay.MenuEntry, len(all))
	for i, c := range all {
		c := c
		entries[i] = overlay.MenuEntry{
			Label: completionLabel(c),
			Action: func() {
				a.applyCompletion(tok, c)
			},
		}
	}

	target := a.anchorPoint(tok.Start)
	lineHeight := a.surface.LineHeight()
	viewport := a.surface.ViewportHeight()
	a.mu.Unlock()

	a.presenter.Show(overlay.Node{
		Kind:    overlay.KindList,
		Entries: entries,
	}, target, lineHeight, viewport)
}

// applyCompletion replaces the triggering token's range with the chosen
// candidate's insert text and closes the list.
func (a *Adapter) applyCompletion(tok token.Info, c complete.Candidate) {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	surface := a.surface
	a.mu.Unlock()

	surface.ReplaceRange(tok.Start, tok.End, c.Insert())
	a.presenter.HideKind(overlay.KindList)
}

// completionLabel formats a list row: label plus optional detail.
func completionLabel(c complete.Candidate) string {
	if c.Detail == "" {
		return c.Label
	}
	return c.Label + "  " + c.Detail
}
