// Package position converts between the editor's native cursor
// representation and protocol line/character coordinates.
//
// The editor addresses a buffer by zero-based line and rune column; the
// protocol counts characters in UTF-16 code units. Conversions are computed
// against the line text current at call time and are never cached: a
// Pos derived before a buffer mutation is stale and must be re-derived.
package position

import (

	"github.com/dshills/lspbridge/internal/protocol"
)

// Pos is an editor-native buffer position: zero-based line, rune column.
type Pos struct {
	Line int
	Ch   int
}

// ToProtocol converts an editor position to a protocol position using the
// text of the position's line.
func ToProtocol(lineText string, p Pos) protocol.Position {
	return protocol.Position{
		Line:      p.Line,
		Character: runeToUTF16Col(lineText, p.Ch),
	}
}

// FromProtocol converts a protocol position to an editor position using
// the text of the position's line.
func FromProtocol(lineText string, p protocol.Position) Pos {
	return Pos{
		Line: p.Line,
		Ch:   utf16ToRuneCol(lineText, p.Character),
	}
}

// RangeFromProtocol converts a protocol range to a pair of editor
// positions. lineAt must return the current text of the given line.
func RangeFromProtocol(lineAt func(int) string, r protocol.Range) (start, end Pos) {
	start = FromProtocol(lineAt(r.Start.Line), r.Start)
	end = FromProtocol(lineAt(r.End.Line), r.End)
	return start, end
}

// Before reports whether a is strictly before b in document order.
func Before(a, b Pos) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Ch < b.Ch
}

// Equal reports whether a and b name the same position.
func Equal(a, b Pos) bool {
	return a.Line == b.Line && a.Ch == b.Ch
}

// Compare returns -1, 0, or 1 as a is before, equal to, or after b.
func Compare(a, b Pos) int {
	switch {
	case Before(a, b):
		return -1
	case Equal(a, b):
		return 0
	default:
		return 1
	}
}

// InRange reports whether p falls within [start, end], inclusive at both
// ends, matching the protocol's hover range containment semantics.
func InRange(p, start, end Pos) bool {
	return !Before(p, start) && !Before(end, p)
}

// InProtocolRange reports whether an editor position falls within a
// protocol range, converting through the line text of p's line.
func InProtocolRange(lineText string, p Pos, r protocol.Range) bool {
	pp := ToProtocol(lineText, p)
	if pp.Line < r.Start.Line || pp.Line > r.End.Line {
		return false
	}
	if pp.Line == r.Start.Line && pp.Character < r.Start.Character {
		return false
	}
	if pp.Line == r.End.Line && pp.Character > r.End.Character {
		return false
	}
	return true
}

// utf16RuneLen reports the number of 16-bit words in the UTF-16 encoding of
// the rune, or -1 if the rune is not a valid value to encode in UTF-16. It
// matches utf16.RuneLen, which requires Go 1.23+.
func utf16RuneLen(r rune) int {
	switch {
	case 0 <= r && r < 0xd800, 0xe000 <= r && r < 0x10000:
		return 1
	case 0x10000 <= r && r <= '\U0010FFFF':
		return 2
	default:
		return -1
	}
}

// runeToUTF16Col converts a rune column within a line to UTF-16 code units.
func runeToUTF16Col(lineText string, runeCol int) int {
	if runeCol <= 0 {
		return 0
	}

	col := 0
	seen := 0
	for _, r := range lineText {
		if seen >= runeCol {
			break
		}
		col += utf16RuneLen(r)
		seen++
	}
	return col
}

// utf16ToRuneCol converts a UTF-16 code unit column to a rune column.
func utf16ToRuneCol(lineText string, utf16Col int) int {
	if utf16Col <= 0 {
		return 0
	}

	units := 0
	col := 0
	for _, r := range lineText {
		if units >= utf16Col {
			break
		}
		units += utf16RuneLen(r)
		col++
	}
	return col
}
