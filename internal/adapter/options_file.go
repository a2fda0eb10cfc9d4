package adapter

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/lspbridge/internal/complete"
)

// fileOptions is the YAML shape of an options file. Pointer fields
// distinguish "absent, keep the default" from an explicit false/zero.
type fileOptions struct {
	EnableHoverInfo   *bool `yaml:"enableHoverInfo"`
	EnableDiagnostics *bool `yaml:"enableDiagnostics"`
	EnableSignatures  *bool `yaml:"enableSignatures"`
	EnableGutterMarks *bool `yaml:"enableGutterMarks"`
	EnableContextMenu *bool `yaml:"enableContextMenu"`
	Suggest           *bool `yaml:"suggest"`

	DebounceSuggestionsWhileTyping *bool `yaml:"debounceSuggestionsWhileTyping"`
	QuickSuggestionsDelayMS        *int  `yaml:"quickSuggestionsDelay"`
	HoverDelayMS                   *int  `yaml:"hoverDelay"`

	DiagnosticMarkClassName string `yaml:"diagnosticMarkClassName"`
	GutterMarkClassName     string `yaml:"gutterMarkClassName"`
	HoverMarkClassName      string `yaml:"hoverMarkClassName"`
	HighlightClassName      string `yaml:"highlightClassName"`

	Snippets []fileSnippet `yaml:"snippets"`
}

// fileSnippet is one static snippet entry in an options file.
type fileSnippet struct {
	Label  string `yaml:"label"`
	Detail string `yaml:"detail"`
	Insert string `yaml:"insert"`
}

// LoadOptions reads a YAML options file and applies it over the defaults.
// Absent keys keep their default values.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("load options: %w", err)
	}
	return parseOptions(data)
}

// parseOptions decodes YAML option data over DefaultOptions.
func parseOptions(data []byte) (Options, error) {
	var f fileOptions
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Options{}, fmt.Errorf("parse options: %w", err)
	}

	o := DefaultOptions()
	setBool(&o.EnableHoverInfo, f.EnableHoverInfo)
	setBool(&o.EnableDiagnostics, f.EnableDiagnostics)
	setBool(&o.EnableSignatures, f.EnableSignatures)
	setBool(&o.EnableGutterMarks, f.EnableGutterMarks)
	setBool(&o.EnableContextMenu, f.EnableContextMenu)
	setBool(&o.Suggest, f.Suggest)
	setBool(&o.DebounceSuggestionsWhileTyping, f.DebounceSuggestionsWhileTyping)

	if f.QuickSuggestionsDelayMS != nil {
		o.QuickSuggestionsDelay = time.Duration(*f.QuickSuggestionsDelayMS) * time.Millisecond
	}
	if f.HoverDelayMS != nil {
		o.HoverDelay = time.Duration(*f.HoverDelayMS) * time.Millisecond
	}

	if f.DiagnosticMarkClassName != "" {
		o.DiagnosticMarkClassName = f.DiagnosticMarkClassName
	}
	if f.GutterMarkClassName != "" {
		o.GutterMarkClassName = f.GutterMarkClassName
	}
	if f.HoverMarkClassName != "" {
		o.HoverMarkClassName = f.HoverMarkClassName
	}
	if f.HighlightClassName != "" {
		o.HighlightClassName = f.HighlightClassName
	}

	for _, s := range f.Snippets {
		o.Snippets = append(o.Snippets, complete.Candidate{
			Label:      s.Label,
			Detail:     s.Detail,
			InsertText: s.Insert,
			Snippet:    true,
		})
	}

	return o, nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
