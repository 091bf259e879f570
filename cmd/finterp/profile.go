package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gofinite/pkg/interp"
)

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile [files...]",
		Short: "Print the normalized element profiles of every interpretation",
		Long: `profile renumbers the elements of each interpretation so that their
profiles are non-increasing, then prints one line per element: the
element, its block and its profile vector. The vector holds the number
of times the element occurs as a function value, per-position
occurrence counts for every table, and discriminator counts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			discs, err := readClauseFile(a.cfg.Filter.Discriminators)
			if err != nil {
				return fmt.Errorf("discriminators: %w", err)
			}
			models, err := a.readModels(cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, m := range models {
				norm, err := interp.Normalize(cmd.Context(), m, discs)
				if err != nil {
					return fmt.Errorf("interpretation %d: %w", i+1, err)
				}
				fmt.Fprintf(w, "%% interpretation %d %s\n", i+1, m.Label())
				if err := interp.WriteProfile(w, norm); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&a.flags.discriminators, "discriminators", "d", "", "file of discriminator clauses, each ending with a period")
	return cmd
}
