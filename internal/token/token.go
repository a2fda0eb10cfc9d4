// Package token finds the word-like token ending at a cursor position.
// The token is the completion/signature filter key: either the contiguous
// run of word runes ending exactly at the cursor, or a single trigger
// character when the cursor sits immediately after one.
package token

import (
	"strings"
	"unicode"

	"github.com/dshills/lspbridge/internal/position"
)

// Info describes the extracted token. Text always ends exactly at End,
// which is the cursor position the extraction was asked about.
type Info struct {
	Text  string
	Start position.Pos
	End   position.Pos
}

// Extract finds the token ending at pos within lineText. splitChars is the
// set of trigger characters for the request being prepared: when the rune
// immediately before the cursor is one of them, the token is exactly that
// rune, spanning [ch-1, ch]. Otherwise the token is the backward run of
// word runes ending at the cursor. Returns false when no token ends there.
func Extract(lineText string, pos position.Pos, splitChars string) (Info, bool) {
	runes := []rune(lineText)
	ch := pos.Ch
	if ch <= 0 || ch > len(runes) {
		return Info{}, false
	}

	prev := runes[ch-1]
	if strings.ContainsRune(splitChars, prev) {
		return Info{
			Text:  string(prev),
			Start: position.Pos{Line: pos.Line, Ch: ch - 1},
			End:   position.Pos{Line: pos.Line, Ch: ch},
		}, true
	}

	start := ch
	for start > 0 && IsWordRune(runes[start-1]) {
		start--
	}
	if start == ch {
		return Info{}, false
	}

	return Info{
		Text:  string(runes[start:ch]),
		Start: position.Pos{Line: pos.Line, Ch: start},
		End:   position.Pos{Line: pos.Line, Ch: ch},
	}, true
}

// IsWordRune reports whether r belongs to the word character class used
// for token boundaries: letters, digits, and underscore.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
