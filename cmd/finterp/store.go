package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gofinite/pkg/canonstore"
	"github.com/gitrdm/gofinite/pkg/interp"
)

func (a *app) storeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect a canonical store written by isofilter --store",
	}
	cmd.PersistentFlags().StringVar(&a.flags.storePath, "store", "", "canonical store directory")

	count := &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored isomorphism classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(s *canonstore.Store) error {
				n, err := s.Count()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
				return err
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the fingerprint, id and creation time of every stored class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(s *canonstore.Store) error {
				return s.Each(func(rec canonstore.Record) error {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
						rec.Fingerprint, rec.ID, rec.Created.Format(time.RFC3339))
					return err
				})
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <fingerprint>...",
		Short: "Print the canonical interpretations stored under fingerprints",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *canonstore.Store) error {
				var models []*interp.Interpretation
				for _, fp := range args {
					rec, err := s.Get(fp)
					if err != nil {
						return err
					}
					m, err := interp.Compile(rec.Description, interp.AllowIncomplete())
					if err != nil {
						return fmt.Errorf("stored record %s: %w", fp, err)
					}
					models = append(models, m)
				}
				return a.writeModels(cmd.OutOrStdout(), models)
			})
		},
	}

	cmd.AddCommand(count, list, get)
	return cmd
}

// withStore opens the configured persistent store for the duration of fn.
func (a *app) withStore(fn func(*canonstore.Store) error) error {
	if a.cfg.Store.Path == "" {
		return canonstore.ErrPathRequired
	}
	a.cfg.Store.InMemory = false
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
