package main

import (
	"github.com/spf13/cobra"
)

func (a *app) formatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format [files...]",
		Short: "Print interpretations in another style",
		Long: `format reads interpretations and prints them in the style selected with
-o: yaml, standard (one line per table) or tabular (grids).`,
		Example: `  finterp format -o tabular groups.yaml
  finterp format -o standard --output-symbols '*' < groups.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := a.readModels(cmd, args)
			if err != nil {
				return err
			}
			return a.writeModels(cmd.OutOrStdout(), models)
		},
	}
}
