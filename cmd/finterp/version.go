package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gofinite/pkg/interp"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := interp.GetVersionInfo()
			w := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(w, "finterp %s (%s)\n", info.Version, info.GoVersion); err != nil {
				return err
			}
			if info.GitCommit != "" {
				fmt.Fprintf(w, "commit %s built %s\n", info.GitCommit, info.BuildDate)
			}
			return nil
		},
	}
}
