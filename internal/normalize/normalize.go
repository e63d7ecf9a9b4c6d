// Package normalize converts raw records from the remote store into
// canonical Items. The upstream sheet sometimes ships mojibake column
// headers (an encoding mismatch on the export side), so every logical
// field carries an ordered alias list: correct header first, known
// corrupted variants after. The first alias present with a non-empty
// value wins.
package normalize

import (
	"strconv"
	"strings"

	"github.com/yogu/stockdash/internal/models"
)

var (
	idKeys        = []string{"ID", "Id", "id"}
	nameKeys      = []string{"商品名", "啁E��吁E"}
	unitKeys      = []string{"単位", "単佁E"}
	currentKeys   = []string{"現在庫数"}
	minKeys       = []string{"最低在庫数"}
	categoryKeys  = []string{"カテゴリー", "カテゴリ", "カチE��リ"}
	sourceURLKeys = []string{"ソロエルURL（任意）", "ソロエルURL", "ソロエルURL�E�任意！E"}
)

// Normalize maps one raw record to a canonical Item. Total: unknown or
// missing fields degrade to zero values, never an error.
func Normalize(raw map[string]any) models.Item {
	return models.Item{
		ID:         asInt(firstField(raw, idKeys)),
		Name:       asString(firstField(raw, nameKeys)),
		Unit:       asString(firstField(raw, unitKeys)),
		CurrentQty: asFloat(firstField(raw, currentKeys)),
		MinQty:     asFloat(firstField(raw, minKeys)),
		Category:   asString(firstField(raw, categoryKeys)),
		SourceURL:  asString(firstField(raw, sourceURLKeys)),
	}
}

// NormalizeAll maps a whole listing.
func NormalizeAll(raw []map[string]any) []models.Item {
	items := make([]models.Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, Normalize(r))
	}
	return items
}

// firstField returns the value of the first alias present with a
// non-empty value, or nil when none match.
func firstField(raw map[string]any, keys []string) any {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v
	}
	return nil
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// asFloat coerces sheet values (JSON numbers or numeric strings) with a
// fallback of 0.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func asInt(v any) int {
	return int(asFloat(v))
}
