// Package complete filters and orders completion candidates against a
// typed prefix. Ranking is a stable partition, not an alphabetical sort:
// candidates whose label starts with the typed word keep their relative
// order ahead of the rest.
package complete

import (
	"sort"
	"strings"

	"github.com/dshills/lspbridge/internal/protocol"
	"github.com/dshills/lspbridge/internal/token"
)

// Candidate is one completion entry, from the server or from the static
// snippet set configured on the adapter.
type Candidate struct {
	Label      string
	Detail     string
	FilterText string
	InsertText string
	Kind       int
	Snippet    bool
	Edit       *protocol.TextEdit
}

// FromItem converts a server completion item into a Candidate.
func FromItem(it protocol.CompletionItem) Candidate {
	return Candidate{
		Label:      it.Label,
		Detail:     it.Detail,
		FilterText: it.FilterText,
		InsertText: it.InsertText,
		Kind:       it.Kind,
		Edit:       it.TextEdit,
	}
}

// FromItems converts a server completion list into candidates.
func FromItems(items []protocol.CompletionItem) []Candidate {
	if len(items) == 0 {
		return nil
	}
	out := make([]Candidate, len(items))
	for i, it := range items {
		out[i] = FromItem(it)
	}
	return out
}

// Insert returns the text inserting this candidate should produce:
// TextEdit text when present, then InsertText, then the label.
func (c Candidate) Insert() string {
	if c.Edit != nil {
		return c.Edit.NewText
	}
	if c.InsertText != "" {
		return c.InsertText
	}
	return c.Label
}

// Rank filters candidates against prefix and partitions the survivors so
// that label-prefix matches come first. The filter key is the first word
// of the prefix; a key with no word runes yields no results.
//
// An empty key (the prefix opens with a trigger character such as ".")
// matches every candidate: that is what populates the full member list
// after a trigger character.
//
// keepExact controls exact-label handling: server results suppress a
// candidate whose label equals the key (it would re-insert what is already
// typed), while static snippets keep it visible. keepExact also widens
// matching from filter text to the label itself.
func Rank(prefix string, items []Candidate, keepExact bool) []Candidate {
	key := strings.ToLower(firstWord(prefix))
	if hasNonWord(key) || len(items) == 0 {
		return nil
	}

	var kept []Candidate
	for _, c := range items {
		label := strings.ToLower(c.Label)
		filter := strings.ToLower(c.FilterText)
		if filter == "" {
			filter = label
		}

		if !keepExact && key != "" && label == key {
			continue
		}
		if strings.HasPrefix(filter, key) || (keepExact && strings.HasPrefix(label, key)) {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a := strings.HasPrefix(strings.ToLower(kept[i].Label), key)
		b := strings.HasPrefix(strings.ToLower(kept[j].Label), key)
		return a && !b
	})

	return kept
}

// firstWord returns the leading run of word runes in s. A prefix that
// opens with punctuation (a trigger character) has an empty first word.
func firstWord(s string) string {
	for i, r := range s {
		if !token.IsWordRune(r) {
			return s[:i]
		}
	}
	return s
}

// hasNonWord reports whether s contains a non-word rune.
func hasNonWord(s string) bool {
	for _, r := range s {
		if !token.IsWordRune(r) {
			return true
		}
	}
	return false
}
