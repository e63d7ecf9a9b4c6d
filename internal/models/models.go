package models

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// shopSearchURL is where items without a direct product link resolve to.
const shopSearchURL = "https://solution.soloel.com/s/?q="

// Item is the canonical stock record after normalization.
type Item struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	CurrentQty float64 `json:"current_qty"`
	MinQty     float64 `json:"min_qty"`
	Category   string  `json:"category"`
	SourceURL  string  `json:"source_url,omitempty"`
}

// IsShortage reports whether the item is below its reorder threshold.
func (it Item) IsShortage() bool {
	return it.CurrentQty < it.MinQty
}

// Round2 rounds a quantity to 2 decimal places using exact decimal
// arithmetic, so repeated stepper edits cannot accumulate float drift.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Fmt2 formats a quantity with exactly two decimal places.
func Fmt2(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

// ClampQty applies the write-boundary rules: negative values clamp to
// zero, everything rounds to 2 decimals.
func ClampQty(v float64) float64 {
	if v < 0 {
		return 0
	}
	return Round2(v)
}

// ShopLink returns the item's direct product URL when one is set,
// otherwise a search link for the item name.
func ShopLink(name, direct string) string {
	if s := strings.TrimSpace(direct); s != "" {
		return s
	}
	return shopSearchURL + url.QueryEscape(name)
}
