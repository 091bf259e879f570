package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gofinite/internal/parallel"
	"github.com/gitrdm/gofinite/pkg/interp"
)

func (a *app) canonCmd() *cobra.Command {
	var fingerprints bool
	cmd := &cobra.Command{
		Use:   "canon [files...]",
		Short: "Print the canonical form of every interpretation",
		Long: `canon replaces every interpretation by the canonical representative of
its isomorphism class. Two interpretations are isomorphic exactly when
their canonical forms (and fingerprints) are equal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCanon(cmd, args, fingerprints)
		},
	}
	a.addSearchFlags(cmd)
	cmd.Flags().BoolVar(&fingerprints, "fingerprint", false, "print one fingerprint per line instead of the canonical forms")
	return cmd
}

func (a *app) runCanon(cmd *cobra.Command, args []string, fingerprints bool) error {
	discs, err := readClauseFile(a.cfg.Filter.Discriminators)
	if err != nil {
		return fmt.Errorf("discriminators: %w", err)
	}
	models, err := a.readModels(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := a.searchContext(cmd.Context())
	defer cancel()
	canon := make([]*interp.Interpretation, len(models))
	var totals interp.Totals
	err = parallel.ForEach(ctx, a.cfg.Filter.Workers, models, func(ctx context.Context, i int, m *interp.Interpretation) error {
		norm, err := interp.Normalize(ctx, m, discs)
		if err != nil {
			return fmt.Errorf("interpretation %d: %w", i+1, err)
		}
		c, stats, err := interp.Canonicalize(ctx, norm)
		totals.Add(stats)
		if err != nil {
			return fmt.Errorf("interpretation %d: %w", i+1, err)
		}
		canon[i] = c
		return nil
	})
	if err != nil {
		return err
	}
	stats := totals.Snapshot()
	a.logger.Info("canon finished",
		slog.Int("models", len(models)),
		slog.Int64("checks", stats.Checks),
		slog.Int64("permutations", stats.Permutations))

	w := cmd.OutOrStdout()
	if !fingerprints {
		return a.writeModels(w, canon)
	}
	for i, c := range canon {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n", interp.Fingerprint(c), i+1, models[i].Label()); err != nil {
			return err
		}
	}
	return nil
}
