package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gofinite/pkg/interp"
)

func (a *app) evalCmd() *cobra.Command {
	var (
		formulasFile string
		inline       []string
		clausesFile  string
	)
	cmd := &cobra.Command{
		Use:   "eval [files...]",
		Short: "Evaluate formulas or clauses in every interpretation",
		Long: `eval prints one row per interpretation and formula with the truth value.

With --clauses it instead reads clauses (free variables are universally
quantified) and prints whether each holds for every assignment together
with the number of true and false instances.`,
		Example: `  finterp eval -e 'exists x all y (x * y = y)' groups.yaml
  finterp eval --clauses laws.txt groups.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clausesFile != "" {
				return a.evalClauses(cmd, args, clausesFile)
			}
			formulas, err := readFormulas(formulasFile, inline)
			if err != nil {
				return err
			}
			if len(formulas) == 0 {
				return fmt.Errorf("nothing to evaluate: give -e, --formulas or --clauses")
			}
			models, err := a.readModels(cmd, args)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tLABEL\tFORMULA\tVALUE")
			for i, m := range models {
				for _, f := range formulas {
					v, err := m.EvalFormula(f)
					if err != nil {
						return fmt.Errorf("interpretation %d: %s: %w", i+1, f, err)
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", i+1, m.Label(), f, v)
				}
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVarP(&formulasFile, "formulas", "f", "", "file of formulas, each ending with a period")
	f.StringArrayVarP(&inline, "expr", "e", nil, "formula to evaluate (repeatable)")
	f.StringVar(&clausesFile, "clauses", "", "file of clauses to evaluate instead of formulas")
	return cmd
}

func (a *app) evalClauses(cmd *cobra.Command, args []string, path string) error {
	clauses, err := readClauseFile(path)
	if err != nil {
		return err
	}
	models, err := a.readModels(cmd, args)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tLABEL\tCLAUSE\tHOLDS\tTRUE\tFALSE")
	for i, m := range models {
		for _, c := range clauses {
			row, err := clauseRow(m, c)
			if err != nil {
				return fmt.Errorf("interpretation %d: %s: %w", i+1, c, err)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, m.Label(), c, row)
		}
	}
	return tw.Flush()
}

func clauseRow(m *interp.Interpretation, c interp.Clause) (string, error) {
	holds, err := m.EvalClauseUniversally(c)
	if err != nil {
		return "", err
	}
	t, err := m.TrueInstances(c)
	if err != nil {
		return "", err
	}
	f, err := m.FalseInstances(c)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%t\t%d\t%d", holds, t, f), nil
}
