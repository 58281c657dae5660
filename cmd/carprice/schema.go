package main

import (
	"github.com/mimir-aip/carprice/pkg/models"
	"github.com/mimir-aip/carprice/pkg/presenter"
	"github.com/spf13/cobra"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the columns the model expects and the brand options",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, holder := a.newEstimator()
			defer holder.Close()

			term := presenter.NewTerminal(cmd.OutOrStdout(), true)
			view, err := svc.Schema()
			if err != nil {
				if failure, ok := models.AsFailure(err); ok {
					if werr := term.Failure(failure); werr != nil {
						return werr
					}
				}
				return err
			}

			return term.Schema(view.Columns.Columns(), string(view.Source), view.Brands.Values, view.Brands.Discovered)
		},
	}
}
