package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yogu/stockdash/internal/engine"
	"github.com/yogu/stockdash/internal/models"
)

var setCmd = &cobra.Command{
	Use:     "set <id> <quantity>",
	GroupID: "core",
	Short:   "Set the stock quantity for one item",
	Long: `Set an item's quantity. The value is clamped at zero, rounded to two
decimals and persisted through the same path the dashboard uses, so the
write applies an optimistic local update before the follow-up reload.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid item id %q", args[0])
		}

		_, gw, st, err := setup()
		if err != nil {
			return err
		}
		if err := st.Reload(cmd.Context()); err != nil {
			return err
		}
		if _, ok := st.Lookup(id); !ok {
			return fmt.Errorf("no item with id %d", id)
		}

		eng := engine.New(gw, st, engine.Config{})
		defer eng.Stop()
		if err := eng.OnQuantityCommit(cmd.Context(), id, args[1]); err != nil {
			return err
		}

		it, _ := st.Lookup(id)
		fmt.Printf("%s: %s%s\n", it.Name, models.Fmt2(it.CurrentQty), it.Unit)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
