package output

import (
	"fmt"
	"strings"

	"github.com/yogu/stockdash/internal/models"
)

// ShortageReport builds a markdown shortage report: one row per item
// below its reorder threshold, with a purchase link.
func ShortageReport(shortages []models.Item) string {
	var b strings.Builder
	b.WriteString("# Shortage report\n\n")

	if len(shortages) == 0 {
		b.WriteString("No shortages. Everything is at or above its minimum.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d item(s) below minimum stock.\n\n", len(shortages))
	b.WriteString("| Item | Stock | Min | Category | Order |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, it := range shortages {
		fmt.Fprintf(&b, "| %s | %s%s | %s%s | %s | [order](%s) |\n",
			it.Name,
			models.Fmt2(it.CurrentQty), it.Unit,
			models.Fmt2(it.MinQty), it.Unit,
			it.Category,
			models.ShopLink(it.Name, it.SourceURL))
	}
	return b.String()
}
