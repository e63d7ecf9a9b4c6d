package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var decrementYes bool

var decrementCmd = &cobra.Command{
	Use:     "decrement",
	GroupID: "core",
	Short:   "Run the server-side automatic decrement",
	Long: `Trigger the batch decrement on the remote store. The server applies its
configured daily consumption to every item and sends mail notifications
if any are set up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !decrementYes {
			var proceed bool
			form := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title("Run the automatic decrement on the server?").
					Description("Every item's quantity is reduced by its configured daily usage.").
					Value(&proceed),
			))
			if err := form.Run(); err != nil {
				return err
			}
			if !proceed {
				return nil
			}
		}

		_, gw, st, err := setup()
		if err != nil {
			return err
		}
		if err := gw.RunDecrement(cmd.Context()); err != nil {
			return err
		}
		if err := st.Reload(cmd.Context()); err != nil {
			return err
		}

		fmt.Printf("Decrement complete. %d item(s) now below minimum.\n", st.ShortageCount())
		return nil
	},
}

func init() {
	decrementCmd.Flags().BoolVarP(&decrementYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(decrementCmd)
}
