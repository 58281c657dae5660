package main

import (
	"fmt"

	"github.com/mimir-aip/carprice/pkg/config"
	"github.com/mimir-aip/carprice/pkg/estimator"
	"github.com/mimir-aip/carprice/pkg/features"
	"github.com/mimir-aip/carprice/pkg/logging"
	"github.com/mimir-aip/carprice/pkg/mlmodel"
	"github.com/mimir-aip/carprice/pkg/schema"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once flags are parsed
type app struct {
	configPath string
	logLevel   string
	modelPath  string

	cfg    *config.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "carprice",
		Short:         "Estimate the resale price of a used car",
		Long:          "carprice aligns vehicle details to the columns a trained model expects and returns its price estimate.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Keep stdout clean for command output outside the server
			return a.load(cmd.Name() != "serve")
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&a.modelPath, "model", "m", "", "override the model artifact path")

	rootCmd.AddCommand(newServeCmd(a), newEstimateCmd(a), newSchemaCmd(a))
	return rootCmd
}

// load reads the configuration and sets up the global logger
func (a *app) load(logToStderr bool) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.modelPath != "" {
		cfg.Model.Path = a.modelPath
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if logToStderr {
		cfg.Logging.Output = "stderr"
	}

	if err := logging.InitLogger(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logging.GetLogger()
	return nil
}

// newEstimator wires the model holder and estimate pipeline from config.
// The caller closes the holder.
func (a *app) newEstimator() (*estimator.Service, *mlmodel.Holder) {
	holder := mlmodel.NewHolder(a.cfg.Model.Path, a.logger)

	svc := estimator.NewService(estimator.Options{
		Models:  estimator.FromHolder(holder),
		Deriver: features.NewDeriver(),
		Aligner: schema.NewAligner(schema.Options{
			Separator: a.cfg.Encoding.Separator,
			Label:     a.cfg.Encoding.Label,
			Logger:    a.logger,
		}),
		FallbackSchema: a.cfg.Model.FallbackSchema,
		BrandField:     a.cfg.Form.Brand,
		FallbackBrands: a.cfg.Form.FallbackBrands,
		PriceUnit:      a.cfg.Model.PriceUnit,
		Logger:         a.logger,
	})
	return svc, holder
}
