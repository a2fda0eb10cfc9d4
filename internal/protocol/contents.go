package protocol

import (
	"strings"
	"unicode/utf16"

	"github.com/tidwall/gjson"
)

// Content is the normalized form of a hover payload: a single text block
// plus whether it should be rendered as markup. All shape branching on the
// raw payload happens here, once, at the boundary.
type Content struct {
	Text     string
	IsMarkup bool
}

// NormalizeContents resolves the four permitted shapes of a hover
// "contents" payload (plain string, markup object, marked string object,
// array of either, or null) into a single Content. The second return is
// false when the payload carries no renderable text.
func NormalizeContents(raw []byte) (Content, bool) {
	if len(raw) == 0 {
		return Content{}, false
	}

	v := gjson.ParseBytes(raw)
	c := normalizeValue(v)
	if strings.TrimSpace(c.Text) == "" {
		return Content{}, false
	}
	return c, true
}

// normalizeValue handles one element of a contents payload.
func normalizeValue(v gjson.Result) Content {
	switch {
	case v.Type == gjson.String:
		return Content{Text: v.String()}

	case v.IsArray():
		var parts []string
		markup := false
		for _, el := range v.Array() {
			c := normalizeValue(el)
			if c.Text == "" {
				continue
			}
			parts = append(parts, c.Text)
			markup = markup || c.IsMarkup
		}
		return Content{Text: strings.Join(parts, "\n\n"), IsMarkup: markup}

	case v.IsObject():
		value := v.Get("value").String()
		// MarkupContent: {kind, value}. Markdown renders as markup.
		if kind := v.Get("kind"); kind.Exists() {
			return Content{Text: value, IsMarkup: kind.String() == "markdown"}
		}
		// Deprecated MarkedString: {language, value} implies a fenced
		// code block, which is markup territory.
		if v.Get("language").Exists() {
			return Content{Text: value, IsMarkup: true}
		}
		return Content{Text: value}
	}

	return Content{}
}

// ParseLocations resolves a go-to reply payload into a flat location list.
// Servers may answer with a single Location, an array of Locations, an
// array of LocationLinks, or null.
func ParseLocations(raw []byte) []Location {
	if len(raw) == 0 {
		return nil
	}

	v := gjson.ParseBytes(raw)
	if v.IsArray() {
		var locs []Location
		for _, el := range v.Array() {
			if loc, ok := parseLocation(el); ok {
				locs = append(locs, loc)
			}
		}
		return locs
	}

	if loc, ok := parseLocation(v); ok {
		return []Location{loc}
	}
	return nil
}

// parseLocation handles one Location or LocationLink object.
func parseLocation(v gjson.Result) (Location, bool) {
	if !v.IsObject() {
		return Location{}, false
	}

	if uri := v.Get("uri"); uri.Exists() {
		return Location{URI: uri.String(), Range: parseRange(v.Get("range"))}, true
	}

	// LocationLink: prefer the selection range when present.
	if uri := v.Get("targetUri"); uri.Exists() {
		rng := v.Get("targetSelectionRange")
		if !rng.Exists() {
			rng = v.Get("targetRange")
		}
		return Location{URI: uri.String(), Range: parseRange(rng)}, true
	}

	return Location{}, false
}

// parseRange reads a {start, end} object; absent fields decode as zero.
func parseRange(v gjson.Result) Range {
	return Range{
		Start: Position{
			Line:      int(v.Get("start.line").Int()),
			Character: int(v.Get("start.character").Int()),
		},
		End: Position{
			Line:      int(v.Get("end.line").Int()),
			Character: int(v.Get("end.character").Int()),
		},
	}
}

// ParamLabelText resolves a signature parameter label, which is either a
// literal string or a [start, end] pair of UTF-16 offsets into the
// enclosing signature label.
func ParamLabelText(raw []byte, signatureLabel string) string {
	if len(raw) == 0 {
		return ""
	}

	v := gjson.ParseBytes(raw)
	if v.Type == gjson.String {
		return v.String()
	}

	if v.IsArray() {
		arr := v.Array()
		if len(arr) < 2 {
			return ""
		}
		start, end := int(arr[0].Int()), int(arr[1].Int())
		units := utf16.Encode([]rune(signatureLabel))
		if start < 0 || end > len(units) || start >= end {
			return ""
		}
		return string(utf16.Decode(units[start:end]))
	}

	return ""
}
