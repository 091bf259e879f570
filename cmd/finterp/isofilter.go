package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gofinite/pkg/canonstore"
	"github.com/gitrdm/gofinite/pkg/dedup"
	"github.com/gitrdm/gofinite/pkg/interp"
)

// addSearchFlags registers the flags shared by commands that normalize
// and search.
func (a *app) addSearchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&a.flags.discriminators, "discriminators", "d", "", "file of discriminator clauses, each ending with a period")
	f.IntVarP(&a.flags.workers, "workers", "w", 0, "parallel workers (0 = one per CPU)")
	f.DurationVar(&a.flags.timeout, "timeout", 0, "abort the search after this long (0 = no limit)")
}

func (a *app) isofilterCmd() *cobra.Command {
	var printCanonical bool
	cmd := &cobra.Command{
		Use:   "isofilter [files...]",
		Short: "Remove isomorphic duplicates, keeping the first of each class",
		Long: `isofilter reads interpretations and prints the first member of every
isomorphism class, in input order. A one-line summary is written to
stderr.

Canonical mode computes one canonical form per interpretation and can
remember classes across runs with --store. Pairwise mode tests each
candidate against every kept interpretation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runIsofilter(cmd, args, printCanonical)
		},
	}
	a.addSearchFlags(cmd)
	f := cmd.Flags()
	f.StringVarP(&a.flags.mode, "mode", "m", "", "canonical or pairwise (default canonical)")
	f.BoolVar(&a.flags.ignoreConstants, "ignore-constants", false, "ignore constants when comparing")
	f.StringSliceVar(&a.flags.checkSymbols, "check", nil, "compare only these symbols (name or name/arity)")
	f.StringVar(&a.flags.storePath, "store", "", "canonical store directory; classes already stored are dropped")
	f.BoolVar(&a.flags.storeInMemory, "store-in-memory", false, "use a throwaway in-memory canonical store")
	f.BoolVar(&printCanonical, "canonical", false, "print canonical forms instead of the input interpretations")
	return cmd
}

func (a *app) runIsofilter(cmd *cobra.Command, args []string, printCanonical bool) error {
	cfg := a.cfg.Filter
	mode, err := dedup.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	if printCanonical && mode != dedup.Canonical {
		return fmt.Errorf("--canonical needs canonical mode")
	}
	discs, err := readClauseFile(cfg.Discriminators)
	if err != nil {
		return fmt.Errorf("discriminators: %w", err)
	}
	check, err := parseSymbols(cfg.CheckSymbols)
	if err != nil {
		return fmt.Errorf("check symbols: %w", err)
	}
	models, err := a.readModels(cmd, args)
	if err != nil {
		return err
	}

	opts := dedup.Options{
		Mode:            mode,
		Discriminators:  discs,
		CheckSymbols:    check,
		IgnoreConstants: cfg.IgnoreConstants,
		Workers:         cfg.Workers,
		Logger:          a.logger,
	}
	if a.cfg.Store.Enabled() {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Store = store
	}

	filter, err := dedup.New(opts)
	if err != nil {
		return err
	}
	ctx, cancel := a.searchContext(cmd.Context())
	defer cancel()
	res, err := filter.Run(ctx, models)
	if err != nil {
		return err
	}

	out := res.Canonical
	if !printCanonical {
		out = make([]*interp.Interpretation, len(res.Kept))
		for i, idx := range res.Kept {
			out[i] = models[idx]
		}
	}
	if err := a.writeModels(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), res.Summary())
	return nil
}

func (a *app) openStore() (*canonstore.Store, error) {
	sc := a.cfg.Store
	cfg := canonstore.InMemoryConfig()
	if !sc.InMemory {
		cfg = canonstore.DefaultConfig(sc.Path)
		cfg.SyncWrites = sc.SyncWrites
		cfg.GCInterval = sc.GCInterval
	}
	cfg.Logger = a.logger
	store, err := canonstore.Open(cfg)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("canonical store opened",
		slog.String("path", sc.Path),
		slog.Bool("in_memory", sc.InMemory))
	return store, nil
}
