package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yogu/stockdash/internal/tui"
)

var dashCmd = &cobra.Command{
	Use:     "dash",
	Aliases: []string{"monitor"},
	GroupID: "core",
	Short:   "Open the interactive inventory dashboard",
	Long: `Open the full-screen dashboard: shortage and all-item tabs, search and
category filters, and inline quantity editing with debounced saves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, gw, st, err := setup()
		if err != nil {
			return err
		}
		return tui.Run(st, gw)
	},
}

func init() {
	rootCmd.AddCommand(dashCmd)
}
