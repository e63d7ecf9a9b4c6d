package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yogu/stockdash/internal/output"
)

var reportCmd = &cobra.Command{
	Use:     "report",
	GroupID: "core",
	Short:   "Render a shortage report",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, st, err := setup()
		if err != nil {
			return err
		}
		if err := st.Reload(cmd.Context()); err != nil {
			return err
		}

		md := output.ShortageReport(st.Shortages())
		rendered, err := output.RenderMarkdown(md)
		if err != nil {
			// Fall back to the raw markdown rather than failing the report.
			fmt.Println(md)
			return nil
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
