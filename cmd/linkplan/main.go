package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "linkplan",
		Short: "cost-based execution planner for link specifications",
		Long: `
linkplan estimates how expensive a link specification is to execute over a
source and a target collection, and picks an execution plan for it.
`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "TOML configuration file")
	root.AddCommand(newPlanCmd(), newMeasuresCmd(), newReplCmd(), newServeCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
