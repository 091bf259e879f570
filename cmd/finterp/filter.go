package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gofinite/pkg/interp"
	"github.com/gitrdm/gofinite/pkg/modelfilter"
)

func (a *app) filterCmd() *cobra.Command {
	var (
		keep         string
		formulasFile string
		inline       []string
	)
	cmd := &cobra.Command{
		Use:   "filter [files...]",
		Short: "Keep interpretations by how they evaluate a list of formulas",
		Long: `filter evaluates closed formulas in every interpretation and keeps it
according to --keep:

  all_true    every formula is true (alias: true)
  some_false  at least one formula is false (alias: false)
  all_false   every formula is false
  some_true   at least one formula is true`,
		Example: `  finterp filter -e 'all x all y (x * y = y * x)' groups.yaml
  finterp filter --formulas laws.txt --keep false < models.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := modelfilter.ParseMode(keep)
			if err != nil {
				return err
			}
			formulas, err := readFormulas(formulasFile, inline)
			if err != nil {
				return err
			}
			f, err := modelfilter.New(formulas, mode,
				modelfilter.WithWorkers(a.cfg.Filter.Workers),
				modelfilter.WithLogger(a.logger))
			if err != nil {
				return err
			}
			models, err := a.readModels(cmd, args)
			if err != nil {
				return err
			}
			res, err := f.Run(cmd.Context(), models)
			if err != nil {
				return err
			}
			kept := make([]*interp.Interpretation, len(res.Kept))
			for i, idx := range res.Kept {
				kept[i] = models[idx]
			}
			if err := a.writeModels(cmd.OutOrStdout(), kept); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%% interpfilter: %d read, %d kept\n", res.Read, len(res.Kept))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&keep, "keep", "k", string(modelfilter.AllTrue), "all_true, some_false, all_false or some_true")
	f.StringVarP(&formulasFile, "formulas", "f", "", "file of formulas, each ending with a period")
	f.StringArrayVarP(&inline, "expr", "e", nil, "formula to evaluate (repeatable)")
	f.IntVarP(&a.flags.workers, "workers", "w", 0, "parallel workers (0 = one per CPU)")
	return cmd
}
