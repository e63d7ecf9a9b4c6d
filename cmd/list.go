package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yogu/stockdash/internal/models"
)

var (
	listSearch   string
	listCategory string
	listShortage bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	GroupID: "core",
	Short:   "List items from the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, st, err := setup()
		if err != nil {
			return err
		}
		if err := st.Reload(cmd.Context()); err != nil {
			return err
		}

		var items []models.Item
		if listShortage {
			items = st.Shortages()
		} else {
			items = st.Filter(listSearch, listCategory)
		}
		if len(items) == 0 {
			fmt.Println("no items")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTOCK\tMIN\tCATEGORY\t")
		for _, it := range items {
			marker := ""
			if it.IsShortage() {
				marker = " !"
			}
			fmt.Fprintf(w, "%d\t%s\t%s%s%s\t%s%s\t%s\t\n",
				it.ID, it.Name,
				models.Fmt2(it.CurrentQty), it.Unit, marker,
				models.Fmt2(it.MinQty), it.Unit,
				it.Category)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "substring match on the item name")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "exact category filter")
	listCmd.Flags().BoolVar(&listShortage, "shortage", false, "only items below their minimum")
	rootCmd.AddCommand(listCmd)
}
