package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/launchboard/engine"
)

// ============================================================================
// OUTPUT TYPES
// ============================================================================

type stateDoc struct {
	Site         engine.SiteSelector `json:"site"`
	PayloadRange engine.PayloadRange `json:"payloadRange"`
	Outputs      []outputDoc         `json:"outputs"`
}

type outputDoc struct {
	ID       engine.Output       `json:"id"`
	Artifact engine.Artifact     `json:"artifact"`
	Chart    *engine.ChartConfig `json:"chart"`
}

// ============================================================================
// CSV OUTPUT: Sheets-ready tables, one block per output
// ============================================================================

func writeCSV(w io.Writer, tables []*engine.TableData) error {
	cw := csv.NewWriter(w)

	written := 0
	for _, t := range tables {
		if t == nil {
			continue
		}
		if written > 0 {
			cw.Write(nil)
		}
		writeTableCSV(cw, t)
		written++
	}
	if written == 0 {
		cw.Write([]string{"Result", "No data"})
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "write csv")
}

func writeTableCSV(cw *csv.Writer, t *engine.TableData) {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Label
	}
	cw.Write(headers)
	for _, row := range t.Rows {
		cw.Write(row)
	}
	if t.Summary != nil {
		row := make([]string, len(t.Columns))
		if len(row) > 0 {
			row[0] = t.Summary.Label
		}
		for i, c := range t.Columns {
			if v, ok := t.Summary.Values[c.Key]; ok {
				row[i] = v
			}
		}
		cw.Write(row)
	}
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

func writeText(w io.Writer, texts []*engine.TextData) error {
	var lines []string
	for _, t := range texts {
		if t == nil {
			continue
		}
		lines = append(lines, t.Headline)
		for _, l := range t.Lines {
			lines = append(lines, "  "+l)
		}
	}
	if len(lines) == 0 {
		lines = []string{"No result."}
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return eris.Wrap(err, "write text")
}

// ============================================================================
// JSON / YAML OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}

	if err != nil {
		return eris.Wrap(err, "marshal output")
	}
	_, err = fmt.Fprintln(w, string(out))
	return eris.Wrap(err, "write output")
}

// writeYAML goes through the JSON encoding so field names and key order
// match the json output.
func writeYAML(w io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "marshal output")
	}

	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return eris.Wrap(err, "convert output")
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return eris.Wrap(err, "write yaml")
	}
	return eris.Wrap(enc.Close(), "write yaml")
}

// blockStyle clears the flow style yaml picks up from JSON input.
func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func writeDoc(w io.Writer, v interface{}, format string) error {
	switch format {
	case "json", "pretty":
		return writeJSON(w, v, format)
	case "yaml":
		return writeYAML(w, v)
	default:
		return eris.Errorf("unknown format %q", format)
	}
}
