package main

import (
	"encoding/json"
	"fmt"

	"github.com/mimir-aip/carprice/pkg/collector"
	"github.com/mimir-aip/carprice/pkg/models"
	"github.com/mimir-aip/carprice/pkg/presenter"
	"github.com/spf13/cobra"
)

type estimateFlags struct {
	set        []string
	defaults   bool
	debug      bool
	accessible bool
	json       bool
}

func newEstimateCmd(a *app) *cobra.Command {
	f := &estimateFlags{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate a price from flags or an interactive form",
		Long: `Estimate a price for one vehicle.

Without --set or --defaults the fields are asked for interactively.
Fields that are not set take their form default.`,
		Example: `  carprice estimate --set Year=2018 --set Fuel_Type=Diesel --set Brand=Maruti
  carprice estimate --defaults --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.estimate(cmd, f)
		},
	}

	cmd.Flags().StringArrayVarP(&f.set, "set", "s", nil, "set a field, as Name=value (repeatable)")
	cmd.Flags().BoolVar(&f.defaults, "defaults", false, "use the default for every field that is not set")
	cmd.Flags().BoolVarP(&f.debug, "debug", "d", false, "show the aligned feature row and failure details")
	cmd.Flags().BoolVar(&f.accessible, "accessible", false, "use plain prompts instead of the interactive form")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the result as JSON")
	return cmd
}

func (a *app) estimate(cmd *cobra.Command, f *estimateFlags) error {
	svc, holder := a.newEstimator()
	defer holder.Close()

	out := cmd.OutOrStdout()
	term := presenter.NewTerminal(out, f.debug)
	specs := svc.Fields()

	var c collector.Collector
	if len(f.set) > 0 || f.defaults {
		input, err := collector.ParseAssignments(f.set)
		if err != nil {
			return err
		}
		c = collector.NewValues(specs, input)
	} else {
		c = collector.NewPrompt(specs,
			collector.WithIO(cmd.InOrStdin(), out),
			collector.WithAccessible(f.accessible))
	}

	raw, err := c.Collect()
	if err != nil {
		failure := models.NewFailure(models.FailureInvalidInput, "Some fields are out of range.", err)
		return a.reportFailure(cmd, term, f, failure)
	}

	result, err := svc.Estimate(raw)
	if err != nil {
		failure, ok := models.AsFailure(err)
		if !ok {
			return err
		}
		return a.reportFailure(cmd, term, f, failure)
	}

	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return term.Result(result)
}

// reportFailure renders the failure and returns it so the exit code is non-zero
func (a *app) reportFailure(cmd *cobra.Command, term *presenter.Terminal, f *estimateFlags, failure *models.Failure) error {
	if f.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(failure); err != nil {
			return fmt.Errorf("failed to encode failure: %w", err)
		}
		return failure
	}
	if err := term.Failure(failure); err != nil {
		return err
	}
	return failure
}
