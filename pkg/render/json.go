package render

import (
	"encoding/json"

	"github.com/dkoosis/qarun/pkg/pattern"
)

// JSONSchema identifies the layout of the analysis document.
const JSONSchema = "qarun.analysis/v1"

// JSONMeta describes where an analysis came from.
type JSONMeta struct {
	Generator string   // e.g. "qarun 1.4.0"
	Tab       string   // results filter the result list was built with
	Sources   []string // report files, "stdin" for piped input
}

// JSON renders an analysis as one document for scripts and CI.
type JSON struct {
	meta JSONMeta
}

// NewJSON creates a JSON renderer stamped with meta.
func NewJSON(meta JSONMeta) *JSON {
	return &JSON{meta: meta}
}

type jsonDocument struct {
	Schema    string        `json:"schema"`
	Generator string        `json:"generator,omitempty"`
	Tab       string        `json:"tab"`
	Sources   []string      `json:"sources"`
	Totals    jsonTotals    `json:"totals"`
	Patterns  []jsonPattern `json:"patterns"`
}

type jsonTotals struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Blocked int `json:"blocked"`
}

type jsonPattern struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Render formats the patterns with the source metadata and status totals.
// Totals come from the status distribution, so they cover every result
// whatever the tab.
func (j *JSON) Render(patterns []pattern.Pattern) string {
	doc := jsonDocument{
		Schema:    JSONSchema,
		Generator: j.meta.Generator,
		Tab:       j.meta.Tab,
		Sources:   j.meta.Sources,
		Patterns:  make([]jsonPattern, 0, len(patterns)),
	}
	if doc.Tab == "" {
		doc.Tab = "all"
	}
	if doc.Sources == nil {
		doc.Sources = []string{}
	}

	for _, p := range patterns {
		if d, ok := p.(*pattern.Doughnut); ok {
			doc.Totals = totalsOf(d)
		}
		doc.Patterns = append(doc.Patterns, jsonPattern{
			Type: string(p.Type()),
			Data: p,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(errJSON)
	}
	return string(data) + "\n"
}

func totalsOf(d *pattern.Doughnut) jsonTotals {
	t := jsonTotals{Total: d.Total()}
	for _, s := range d.Slices {
		switch s.Kind {
		case pattern.KindPass:
			t.Passed += s.Count
		case pattern.KindFail:
			t.Failed += s.Count
		case pattern.KindBlocked:
			t.Blocked += s.Count
		}
	}
	return t
}
