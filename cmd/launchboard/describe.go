package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/spektr-org/launchboard/dataset"
	"github.com/spektr-org/launchboard/engine"
	"github.com/spektr-org/launchboard/schema"
)

var (
	describeFormat   string
	describeDiscover bool
)

type describeDoc struct {
	Summary dataset.Summary `json:"summary" yaml:"summary"`
	Layout  engine.Layout   `json:"layout" yaml:"layout"`
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the dataset summary and dashboard layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		if describeDiscover {
			sch, err := discoverSchema(cfg.Dataset.Path)
			if err != nil {
				return err
			}
			return writeDoc(w, sch, describeFormat)
		}

		d, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		return writeDoc(w, describeDoc{
			Summary: d.Summary(),
			Layout:  engine.BuildLayout(d, cfg.Slider.Engine()),
		}, describeFormat)
	},
}

func init() {
	describeCmd.Flags().StringVar(&describeFormat, "format", "pretty", "output format: json, pretty, yaml")
	describeCmd.Flags().BoolVar(&describeDiscover, "discover", false, "print the column schema detected from the CSV file instead")
	rootCmd.AddCommand(describeCmd)
}

// discoverSchema detects the column schema of a CSV file. The result can be
// saved and passed back as dataset.schema_file.
func discoverSchema(path string) (*schema.Config, error) {
	if cfg.Dataset.Spec().Kind != dataset.KindCSV {
		return nil, eris.New("--discover needs a csv dataset source")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	base, err := cfg.Dataset.Schema()
	if err != nil {
		return nil, err
	}
	opts := schema.DefaultDiscoverOptions()
	opts.Source = filepath.Base(path)
	opts.Base = &base
	return schema.DiscoverFromCSV(data, opts)
}
