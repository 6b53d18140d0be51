package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/syssam/faber"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the faber version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "faber %s %s %s/%s\n",
				faber.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
