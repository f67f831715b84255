package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newMeasuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "measures",
		Short: "lists the known measures with their family and pair cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			catalog := cfg.Catalog()

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"measure", "family", "pair cost"})
			table.SetAutoFormatHeaders(false)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			for _, name := range catalog.Names() {
				m := catalog.Lookup(name)
				table.Append([]string{m.Name, m.Family.String(), fmt.Sprintf("%g", m.PairCost)})
			}
			table.Render()
			return nil
		},
	}
}
