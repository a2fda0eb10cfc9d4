package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dshills/lspbridge/internal/position"
	"github.com/dshills/lspbridge/internal/protocol"
	"github.com/dshills/lspbridge/internal/token"
)

// scriptConn is an in-process protocol connection scripted against the
// demo document: it answers hover, completion, signature, and navigation
// requests from the document text itself, after a short delay to mimic a
// real server round trip.
type scriptConn struct {
	mu     sync.Mutex
	nextID int
	lines  []string
	delay  time.Duration
	notify func()

	hoverFns      map[int]func(protocol.Hover)
	completionFns map[int]func(protocol.CompletionList)
	signatureFns  map[int]func(*protocol.SignatureHelp)
	gotoFns       map[int]func(protocol.GoToKind, []protocol.Location)
	diagFns       map[int]func([]protocol.Diagnostic)
}

const demoURI = "file:///demo/main.txt"

// newScriptConn creates a scripted connection over the document text.
// notify runs after each delivered response so the caller can redraw.
func newScriptConn(text string, delay time.Duration, notify func()) *scriptConn {
	return &scriptConn{
		lines:         strings.Split(text, "\n"),
		delay:         delay,
		notify:        notify,
		hoverFns:      make(map[int]func(protocol.Hover)),
		completionFns: make(map[int]func(protocol.CompletionList)),
		signatureFns:  make(map[int]func(*protocol.SignatureHelp)),
		gotoFns:       make(map[int]func(protocol.GoToKind, []protocol.Location)),
		diagFns:       make(map[int]func([]protocol.Diagnostic)),
	}
}

func (c *scriptConn) SendChange() {}

func (c *scriptConn) DefinitionSupported() bool     { return true }
func (c *scriptConn) TypeDefinitionSupported() bool { return false }
func (c *scriptConn) ReferencesSupported() bool     { return true }

func (c *scriptConn) CompletionCharacters() []string { return []string{"."} }
func (c *scriptConn) SignatureCharacters() []string  { return []string{"(", ","} }

func (c *scriptConn) DocumentURI() string { return demoURI }

// wordAt extracts the word covering a protocol position, with its range.
func (c *scriptConn) wordAt(pos protocol.Position) (string, protocol.Range, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos.Line < 0 || pos.Line >= len(c.lines) {
		return "", protocol.Range{}, false
	}
	line := c.lines[pos.Line]
	p := position.FromProtocol(line, pos)

	runes := []rune(line)
	start, end := p.Ch, p.Ch
	for start > 0 && token.IsWordRune(runes[start-1]) {
		start--
	}
	for end < len(runes) && token.IsWordRune(runes[end]) {
		end++
	}
	if start == end {
		return "", protocol.Range{}, false
	}
	return string(runes[start:end]), protocol.Range{
		Start: position.ToProtocol(line, position.Pos{Line: pos.Line, Ch: start}),
		End:   position.ToProtocol(line, position.Pos{Line: pos.Line, Ch: end}),
	}, true
}

// identifiers collects the unique words of the document, in first-seen
// order. They double as the completion candidate set.
func (c *scriptConn) identifiers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, line := range c.lines {
		word := strings.Builder{}
		flush := func() {
			if w := word.String(); w != "" && !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
			word.Reset()
		}
		for _, r := range line {
			if token.IsWordRune(r) {
				word.WriteRune(r)
			} else {
				flush()
			}
		}
		flush()
	}
	return out
}

// occurrences finds every range where word appears as a whole token.
func (c *scriptConn) occurrences(word string) []protocol.Location {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []protocol.Location
	for ln, line := range c.lines {
		runes := []rune(line)
		target := []rune(word)
		for i := 0; i+len(target) <= len(runes); i++ {
			if string(runes[i:i+len(target)]) != word {
				continue
			}
			if i > 0 && token.IsWordRune(runes[i-1]) {
				continue
			}
			if j := i + len(target); j < len(runes) && token.IsWordRune(runes[j]) {
				continue
			}
			out = append(out, protocol.Location{
				URI: demoURI,
				Range: protocol.Range{
					Start: position.ToProtocol(line, position.Pos{Line: ln, Ch: i}),
					End:   position.ToProtocol(line, position.Pos{Line: ln, Ch: i + len(target)}),
				},
			})
		}
	}
	return out
}

// deliver runs fn after the scripted delay and triggers a redraw.
func (c *scriptConn) deliver(fn func()) {
	time.AfterFunc(c.delay, func() {
		fn()
		if c.notify != nil {
			c.notify()
		}
	})
}

func (c *scriptConn) RequestHover(pos protocol.Position) {
	word, rng, ok := c.wordAt(pos)
	c.deliver(func() {
		h := protocol.Hover{}
		if ok {
			h.Contents = []byte(fmt.Sprintf(`{"kind":"markdown","value":"**%s**\n\nscripted symbol, %d occurrence(s)"}`,
				word, len(c.occurrences(word))))
			h.Range = &rng
		} else {
			h.Contents = []byte(`""`)
		}
		c.fanHover(h)
	})
}

func (c *scriptConn) RequestCompletion(pos protocol.Position, tok, triggerChar string, kind protocol.CompletionTriggerKind) {
	words := c.identifiers()
	c.deliver(func() {
		items := make([]protocol.CompletionItem, len(words))
		for i, w := range words {
			items[i] = protocol.CompletionItem{Label: w, Detail: "identifier"}
		}
		c.fanCompletion(protocol.CompletionList{Items: items})
	})
}

func (c *scriptConn) RequestSignatureHelp(pos protocol.Position) {
	c.deliver(func() {
		label := "describe(word string, count int) string"
		c.fanSignature(&protocol.SignatureHelp{
			Signatures: []protocol.SignatureInformation{{
				Label:         label,
				Documentation: "Formats a scripted symbol summary.",
				Parameters: []protocol.ParameterInformation{
					{Label: []byte(`"word string"`)},
					{Label: []byte(`[22, 31]`)},
				},
			}},
			ActiveSignature: 0,
			ActiveParameter: 0,
		})
	})
}

func (c *scriptConn) RequestDefinition(pos protocol.Position) {
	word, _, ok := c.wordAt(pos)
	c.deliver(func() {
		if !ok {
			c.fanGoTo(protocol.GoToDefinition, nil)
			return
		}
		locs := c.occurrences(word)
		if len(locs) > 1 {
			locs = locs[:1]
		}
		c.fanGoTo(protocol.GoToDefinition, locs)
	})
}

func (c *scriptConn) RequestTypeDefinition(pos protocol.Position) {
	c.deliver(func() {
		c.fanGoTo(protocol.GoToTypeDefinition, nil)
	})
}

func (c *scriptConn) RequestReferences(pos protocol.Position) {
	word, _, ok := c.wordAt(pos)
	c.deliver(func() {
		if !ok {
			c.fanGoTo(protocol.GoToReferences, nil)
			return
		}
		c.fanGoTo(protocol.GoToReferences, c.occurrences(word))
	})
}

// PublishDemoDiagnostics flags every "fixme" token in the document.
func (c *scriptConn) PublishDemoDiagnostics() {
	c.deliver(func() {
		var diags []protocol.Diagnostic
		for _, loc := range c.occurrences("fixme") {
			diags = append(diags, protocol.Diagnostic{
				Range:    loc.Range,
				Severity: protocol.SeverityWarning,
				Message:  "unresolved fixme",
			})
		}
		c.fanDiagnostics(diags)
	})
}

// --- subscriptions ---

func (c *scriptConn) OnHover(fn func(protocol.Hover)) protocol.Disposer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.hoverFns[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.hoverFns, id)
		c.mu.Unlock()
	}
}

func (c *scriptConn) OnCompletion(fn func(protocol.CompletionList)) protocol.Disposer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.completionFns[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.completionFns, id)
		c.mu.Unlock()
	}
}

func (c *scriptConn) OnSignature(fn func(*protocol.SignatureHelp)) protocol.Disposer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.signatureFns[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.signatureFns, id)
		c.mu.Unlock()
	}
}

func (c *scriptConn) OnGoTo(fn func(protocol.GoToKind, []protocol.Location)) protocol.Disposer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.gotoFns[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.gotoFns, id)
		c.mu.Unlock()
	}
}

func (c *scriptConn) OnDiagnostics(fn func([]protocol.Diagnostic)) protocol.Disposer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.diagFns[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.diagFns, id)
		c.mu.Unlock()
	}
}

func (c *scriptConn) fanHover(h protocol.Hover) {
	for _, fn := range c.snapshotHover() {
		fn(h)
	}
}

func (c *scriptConn) fanCompletion(list protocol.CompletionList) {
	for _, fn := range c.snapshotCompletion() {
		fn(list)
	}
}

func (c *scriptConn) fanSignature(sh *protocol.SignatureHelp) {
	for _, fn := range c.snapshotSignature() {
		fn(sh)
	}
}

func (c *scriptConn) fanGoTo(kind protocol.GoToKind, locs []protocol.Location) {
	for _, fn := range c.snapshotGoTo() {
		fn(kind, locs)
	}
}

func (c *scriptConn) fanDiagnostics(diags []protocol.Diagnostic) {
	for _, fn := range c.snapshotDiagnostics() {
		fn(diags)
	}
}

func (c *scriptConn) snapshotHover() []func(protocol.Hover) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]func(protocol.Hover), 0, len(c.hoverFns))
	for _, fn := range c.hoverFns {
		out = append(out, fn)
	}
	return out
}

func (c *scriptConn) snapshotCompletion() []func(protocol.CompletionList) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]func(protocol.CompletionList), 0, len(c.completionFns))
	for _, fn := range c.completionFns {
		out = append(out, fn)
	}
	return out
}

func (c *scriptConn) snapshotSignature() []func(*protocol.SignatureHelp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]func(*protocol.SignatureHelp), 0, len(c.signatureFns))
	for _, fn := range c.signatureFns {
		out = append(out, fn)
	}
	return out
}

func (c *scriptConn) snapshotGoTo() []func(protocol.GoToKind, []protocol.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]func(protocol.GoToKind, []protocol.Location), 0, len(c.gotoFns))
	for _, fn := range c.gotoFns {
		out = append(out, fn)
	}
	return out
}

func (c *scriptConn) snapshotDiagnostics() []func([]protocol.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]func([]protocol.Diagnostic), 0, len(c.diagFns))
	for _, fn := range c.diagFns {
		out = append(out, fn)
	}
	return out
}
