package main

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/launchboard/engine"
	"github.com/spektr-org/launchboard/render"
)

var (
	renderSite   string
	renderRange  string
	renderOutput string
	renderFormat string
	renderOut    string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Compute the dashboard outputs once and write them",
	Example: `  launchboard render --site "KSC LC-39A" --format text
  launchboard render --range 2000,6000 --output scatter --format png --out scatter.png
  launchboard render --format csv --out launches.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputs, err := selectOutputs(renderOutput)
		if err != nil {
			return err
		}
		if renderFormat == "png" && len(outputs) != 1 {
			return eris.New("--format png needs --output pie or --output scatter")
		}

		d, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		g := engine.NewGraph(d, engine.WithRangeCeiling(cfg.Slider.Max))
		if renderSite != "" {
			if _, err := g.SetSite(engine.SiteSelector(renderSite)); err != nil {
				return err
			}
		}
		if renderRange != "" {
			rng, err := parseRange(renderRange)
			if err != nil {
				return err
			}
			if _, err := g.SetPayloadRange(rng); err != nil {
				return err
			}
		}
		state := g.Snapshot()

		// ── Output writer ──────────────────────────────────────────────
		var w io.Writer = cmd.OutOrStdout()
		if renderOut != "" {
			f, err := os.Create(renderOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close()
			w = f
		}

		if err := writeState(w, state, outputs, renderFormat); err != nil {
			return err
		}
		if renderOut != "" {
			zap.L().Info("output written", zap.String("path", renderOut), zap.String("format", renderFormat))
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderSite, "site", "", `launch site, or ALL (default ALL)`)
	renderCmd.Flags().StringVar(&renderRange, "range", "", "payload range LOW,HIGH in kg (default dataset min,max)")
	renderCmd.Flags().StringVar(&renderOutput, "output", "all", "output to write: pie, scatter, all")
	renderCmd.Flags().StringVar(&renderFormat, "format", "json", "output format: json, pretty, yaml, csv, text, png")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "write output to file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}

func selectOutputs(name string) ([]engine.Output, error) {
	switch strings.ToLower(name) {
	case "", "all":
		return engine.Outputs(), nil
	case "pie", string(engine.OutputPie):
		return []engine.Output{engine.OutputPie}, nil
	case "scatter", string(engine.OutputScatter):
		return []engine.Output{engine.OutputScatter}, nil
	default:
		return nil, eris.Errorf("unknown output %q (want pie, scatter or all)", name)
	}
}

// parseRange reads "LOW,HIGH". Thousands separators are not allowed.
func parseRange(s string) (engine.PayloadRange, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return engine.PayloadRange{}, eris.Errorf("range %q: want LOW,HIGH", s)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return engine.PayloadRange{}, eris.Wrapf(err, "range %q: low", s)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return engine.PayloadRange{}, eris.Wrapf(err, "range %q: high", s)
	}
	return engine.PayloadRange{Low: low, High: high}, nil
}

// writeState writes the selected artifacts of state in format.
func writeState(w io.Writer, state engine.State, outputs []engine.Output, format string) error {
	switch format {
	case "json", "pretty", "yaml":
		doc := stateDoc{Site: state.Site, PayloadRange: state.Range}
		for _, o := range outputs {
			a, _ := state.Artifact(o)
			doc.Outputs = append(doc.Outputs, outputDoc{ID: o, Artifact: a, Chart: engine.BuildChart(a)})
		}
		if format == "yaml" {
			return writeYAML(w, doc)
		}
		return writeJSON(w, doc, format)
	case "csv":
		var tables []*engine.TableData
		for _, o := range outputs {
			a, _ := state.Artifact(o)
			tables = append(tables, engine.BuildTable(a))
		}
		return writeCSV(w, tables)
	case "text":
		var texts []*engine.TextData
		for _, o := range outputs {
			a, _ := state.Artifact(o)
			texts = append(texts, engine.BuildText(a))
		}
		return writeText(w, texts)
	case "png":
		a, _ := state.Artifact(outputs[0])
		return render.PNG{}.Render(w, engine.BuildChart(a))
	default:
		return eris.Errorf("unknown format %q", format)
	}
}
