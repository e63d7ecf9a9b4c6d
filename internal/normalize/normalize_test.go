package normalize

import "testing"

func TestNormalizeCleanHeaders(t *testing.T) {
	it := Normalize(map[string]any{
		"ID":         float64(3),
		"商品名":        "ヨーグルト",
		"単位":         "個",
		"現在庫数":       "4.5",
		"最低在庫数":      float64(6),
		"カテゴリー":      "冷蔵",
		"ソロエルURL（任意）": "https://example.com/p/3",
	})
	if it.ID != 3 {
		t.Errorf("id: got %d", it.ID)
	}
	if it.Name != "ヨーグルト" || it.Unit != "個" {
		t.Errorf("name/unit: got %q/%q", it.Name, it.Unit)
	}
	if it.CurrentQty != 4.5 {
		t.Errorf("numeric string should coerce: got %v", it.CurrentQty)
	}
	if it.MinQty != 6 {
		t.Errorf("minQty: got %v", it.MinQty)
	}
	if it.Category != "冷蔵" {
		t.Errorf("category: got %q", it.Category)
	}
	if it.SourceURL != "https://example.com/p/3" {
		t.Errorf("sourceUrl: got %q", it.SourceURL)
	}
}

func TestNormalizeGarbledHeadersWin(t *testing.T) {
	// Only the mojibake variant present: its value must be used.
	it := Normalize(map[string]any{
		"啁E��吁E":  "コーヒー豆",
		"単佁E":    "袋",
		"カチE��リ": "乾物",
	})
	if it.Name != "コーヒー豆" {
		t.Errorf("garbled name header: got %q", it.Name)
	}
	if it.Unit != "袋" {
		t.Errorf("garbled unit header: got %q", it.Unit)
	}
	if it.Category != "乾物" {
		t.Errorf("garbled category header: got %q", it.Category)
	}
}

func TestNormalizeCorrectHeaderTakesPriority(t *testing.T) {
	it := Normalize(map[string]any{
		"カテゴリー": "正",
		"カチE��リ": "化け",
	})
	if it.Category != "正" {
		t.Errorf("correct header must win over garbled one: got %q", it.Category)
	}
}

func TestNormalizeEmptyValueSkipsToNextAlias(t *testing.T) {
	it := Normalize(map[string]any{
		"カテゴリー": "",
		"カテゴリ":  "飲料",
	})
	if it.Category != "飲料" {
		t.Errorf("empty value must not shadow a later alias: got %q", it.Category)
	}
}

func TestNormalizeTotalOnMissingFields(t *testing.T) {
	it := Normalize(map[string]any{})
	if it.ID != 0 || it.Name != "" || it.Unit != "" || it.Category != "" || it.SourceURL != "" {
		t.Errorf("missing fields must degrade to zero values: %+v", it)
	}
	if it.CurrentQty != 0 || it.MinQty != 0 {
		t.Errorf("missing numerics must be 0: %+v", it)
	}
}

func TestNormalizeBadNumerics(t *testing.T) {
	it := Normalize(map[string]any{
		"ID":    "abc",
		"現在庫数":  "n/a",
		"最低在庫数": "",
	})
	if it.ID != 0 {
		t.Errorf("unparsable id coerces to 0: got %d", it.ID)
	}
	if it.CurrentQty != 0 || it.MinQty != 0 {
		t.Errorf("unparsable quantities coerce to 0: %+v", it)
	}
}

func TestNormalizeAll(t *testing.T) {
	items := NormalizeAll([]map[string]any{
		{"ID": float64(1), "商品名": "a"},
		{"ID": float64(2), "商品名": "b"},
	})
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].ID != 1 || items[1].Name != "b" {
		t.Errorf("order must be preserved: %+v", items)
	}
}
