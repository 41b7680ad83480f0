package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const defaultConfigPath = "swapmeet.yaml"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "swap",
		Short:         "Swapmeet: peer-to-peer exchange negotiation",
		Long:          "Swapmeet lets members request, accept and review exchanges of goods and skills.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRequestCmd())
	cmd.AddCommand(newMessageCmd())
	cmd.AddCommand(newReviewCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "swap %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", describeError(err))
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
