package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkoosis/qarun/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the qarun version",
		Args:  noArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.stdout, "qarun %s (commit %s, built %s)\n", version.Version, version.CommitHash, version.BuildDate)
		},
	}
}
