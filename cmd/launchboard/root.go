package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/launchboard/config"
	"github.com/spektr-org/launchboard/dataset"
)

// ============================================================================
// LAUNCHBOARD CLI: SpaceX launch records dashboard
// ============================================================================

const version = "0.3.0"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "launchboard",
	Short:         "SpaceX launch records dashboard engine",
	Long:          "Loads a launch table and serves the success pie and payload scatter outputs, recomputed per session as the site and payload range change.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// loadDataset opens the configured source and loads it with the configured
// schema.
func loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	sch, err := cfg.Dataset.Schema()
	if err != nil {
		return nil, err
	}

	src, err := dataset.Open(ctx, cfg.Dataset.Spec())
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return dataset.Load(ctx, src, sch)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...interface{}) {
	rootCmd.PrintErrf("Error: "+format+"\n", args...)
	os.Exit(1)
}
