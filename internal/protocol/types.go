// Package protocol defines the wire-facing data model shared between the
// adapter and the abstract connection: positions, ranges, diagnostics,
// completion items, hover payloads, and the Connection contract itself.
//
// The package also owns normalization of the protocol's polymorphic payload
// shapes (hover contents, go-to locations, signature parameter labels) so
// that rendering code never branches on raw JSON structure.
package protocol

import "encoding/json"

// Position is a zero-based line/character pair. Character offsets count
// UTF-16 code units, per the protocol specification.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [Start, End) span in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location is a range within a document identified by URI.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// DiagnosticSeverity classifies a diagnostic. Lower values are more severe.
type DiagnosticSeverity int

const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeverityInformation:
		return "Information"
	case SeverityHint:
		return "Hint"
	default:
		return "Unknown"
	}
}

// Icon returns a single-character marker for the severity.
func (s DiagnosticSeverity) Icon() string {
	switch s {
	case SeverityError:
		return "E"
	case SeverityWarning:
		return "W"
	case SeverityInformation:
		return "I"
	case SeverityHint:
		return "H"
	default:
		return "?"
	}
}

// Diagnostic is one published problem report for the open document.
type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
}

// CompletionTriggerKind says why a completion request was issued.
type CompletionTriggerKind int

const (
	// TriggerInvoked means completion was requested because a word
	// character was typed (or the user asked explicitly).
	TriggerInvoked CompletionTriggerKind = 1

	// TriggerCharacter means a registered trigger character was typed.
	TriggerCharacter CompletionTriggerKind = 2
)

// TextEdit replaces a range with new text.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// CompletionItem is a single completion candidate from the server.
type CompletionItem struct {
	Label      string    `json:"label"`
	Kind       int       `json:"kind,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	FilterText string    `json:"filterText,omitempty"`
	InsertText string    `json:"insertText,omitempty"`
	TextEdit   *TextEdit `json:"textEdit,omitempty"`
}

// CompletionList is the server's reply to a completion request.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// Hover is the server's reply to a hover request. Contents is kept raw
// because the protocol permits four shapes; use NormalizeContents before
// any rendering decision.
type Hover struct {
	Contents json.RawMessage `json:"contents"`
	Range    *Range          `json:"range,omitempty"`
}

// ParameterInformation describes one parameter of a signature. Label is
// raw: either a string or a [start, end] offset pair into the signature
// label; use ParamLabelText.
type ParameterInformation struct {
	Label         json.RawMessage `json:"label"`
	Documentation string          `json:"documentation,omitempty"`
}

// SignatureInformation describes one callable signature.
type SignatureInformation struct {
	Label         string                 `json:"label"`
	Documentation string                 `json:"documentation,omitempty"`
	Parameters    []ParameterInformation `json:"parameters,omitempty"`
}

// SignatureHelp is the server's reply to a signature help request.
type SignatureHelp struct {
	Signatures      []SignatureInformation `json:"signatures"`
	ActiveSignature int                    `json:"activeSignature"`
	ActiveParameter int                    `json:"activeParameter"`
}

// GoToKind distinguishes the navigation request families that all yield
// location payloads.
type GoToKind int

const (
	GoToDefinition GoToKind = iota
	GoToTypeDefinition
	GoToReferences
)

// String returns the string representation of the navigation kind.
func (k GoToKind) String() string {
	switch k {
	case GoToDefinition:
		return "definition"
	case GoToTypeDefinition:
		return "type-definition"
	case GoToReferences:
		return "references"
	default:
		return "unknown"
	}
}
