package ratetable

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		neutral   float64
		wantShape Shape
		want      map[int]float64
	}{
		{
			name:      "Парные значения",
			input:     "5,0.96\n",
			neutral:   NeutralCorrection,
			wantShape: ShapePaired,
			want:      map[int]float64{1: 1.0, 4: 1.0, 5: 0.96, 6: 1.0, 40: 1.0},
		},
		{
			name:      "Одна колонка",
			input:     "0.99\n0.98\n\n0.97\n",
			neutral:   NeutralCorrection,
			wantShape: ShapeSingleColumn,
			want:      map[int]float64{1: 0.99, 2: 0.98, 3: 0.97, 4: 1.0},
		},
		{
			name:      "Комментарии и заголовок",
			input:     "# поправки\nyear,value\n1,0.9\n2,0.8\n",
			neutral:   NeutralCorrection,
			wantShape: ShapePaired,
			want:      map[int]float64{1: 0.9, 2: 0.8, 3: 1.0},
		},
		{
			name:      "Суммы с разделителями",
			input:     "3,\"1,500,000\"\n",
			neutral:   NeutralAmount,
			wantShape: ShapePaired,
			want:      map[int]float64{1: 0, 3: 1500000},
		},
		{
			name:      "Пустой ввод",
			input:     "",
			neutral:   NeutralAmount,
			wantShape: ShapeUnrecognized,
			want:      map[int]float64{1: 0, 10: 0},
		},
		{
			name:      "NaN, Inf и отрицательные множители",
			input:     "2,0.9\n3,NaN\n4,-0.5\n5,Inf\n6,-Inf\nNaN,0.5\n",
			neutral:   NeutralCorrection,
			wantShape: ShapePaired,
			want:      map[int]float64{2: 0.9, 3: 1.0, 4: 1.0, 5: 1.0, 6: 1.0},
		},
		{
			name:      "Только недопустимые значения",
			input:     "1,NaN\n",
			neutral:   NeutralCorrection,
			wantShape: ShapeUnrecognized,
			want:      map[int]float64{1: 1.0},
		},
		{
			name:      "Отрицательная сумма в одной колонке",
			input:     "100\n-5\n200\n",
			neutral:   NeutralAmount,
			wantShape: ShapeSingleColumn,
			want:      map[int]float64{1: 100, 2: 200, 3: 0},
		},
		{
			name:      "Мусор",
			input:     "abc\ndef\n",
			neutral:   NeutralCorrection,
			wantShape: ShapeUnrecognized,
			want:      map[int]float64{1: 1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Parse(strings.NewReader(tt.input), tt.neutral)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if tbl.Shape() != tt.wantShape {
				t.Errorf("Shape() = %v, want %v", tbl.Shape(), tt.wantShape)
			}
			for year, want := range tt.want {
				if got := tbl.Lookup(year); got != want {
					t.Errorf("Lookup(%d) = %v, want %v", year, got, want)
				}
			}
		})
	}
}

func TestNilTableLookup(t *testing.T) {
	var tbl *Table
	if got := tbl.Lookup(3); got != 1.0 {
		t.Errorf("nil Lookup = %v, want 1.0", got)
	}
	if got := tbl.Series(2); len(got) != 2 || got[0] != 1.0 {
		t.Errorf("nil Series = %v", got)
	}
}

func TestSeries(t *testing.T) {
	tbl := FromValues(map[int]float64{2: 0.5, 0: 7}, NeutralCorrection)
	got := tbl.Series(3)
	want := []float64{1.0, 0.5, 1.0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Series[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(tbl.Series(0)) != 0 {
		t.Error("Series(0) should be empty")
	}
}

func TestLoadFallbacks(t *testing.T) {
	dir := t.TempDir()
	notCSV := writeFile(t, dir, "rates.txt", "1,0.5\n")
	empty := writeFile(t, dir, "empty.csv", "")
	good := writeFile(t, dir, "good.csv", "1,0.5\n")

	tests := []struct {
		name string
		path string
		want float64
	}{
		{name: "Пустой путь", path: "", want: 1.0},
		{name: "Не CSV", path: notCSV, want: 1.0},
		{name: "Нет файла", path: filepath.Join(dir, "missing.csv"), want: 1.0},
		{name: "Пустой файл", path: empty, want: 1.0},
		{name: "Корректный файл", path: good, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoadCorrection(tt.path).Lookup(1); got != tt.want {
				t.Errorf("Lookup(1) = %v, want %v", got, tt.want)
			}
		})
	}

	if got := LoadAmounts(filepath.Join(dir, "missing.csv")).Lookup(1); got != 0 {
		t.Errorf("LoadAmounts fallback = %v, want 0", got)
	}
}

func TestParseDepreciationRates(t *testing.T) {
	input := "# нормы\nservice_life,declining_balance_rate,straight_line_rate\n" +
		"22,0.091,0.046\n47,0.043,0.022\nbad,row,here\n"
	rates, err := ParseDepreciationRates(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDepreciationRates() error = %v", err)
	}
	if rates.Len() != 2 {
		t.Errorf("Len() = %d, want 2", rates.Len())
	}
	if sl, ok := rates.StraightLine(22); !ok || sl != 0.046 {
		t.Errorf("StraightLine(22) = %v, %v", sl, ok)
	}
	if db, ok := rates.DecliningBalance(47); !ok || db != 0.043 {
		t.Errorf("DecliningBalance(47) = %v, %v", db, ok)
	}
	if _, ok := rates.StraightLine(10); ok {
		t.Error("StraightLine(10) should be missing")
	}

	var nilRates *DepreciationRates
	if _, ok := nilRates.StraightLine(22); ok {
		t.Error("nil rates should report missing")
	}
}

func TestParseRepairsPlan(t *testing.T) {
	input := "year,capex_large,equipment_repairs\n10,5000000,300000\n15,0,800000\n"
	plan, err := ParseRepairsPlan(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRepairsPlan() error = %v", err)
	}
	if plan == nil {
		t.Fatal("plan is nil")
	}
	if got := plan.CapexLarge.Lookup(10); got != 5000000 {
		t.Errorf("CapexLarge(10) = %v", got)
	}
	if got := plan.EquipmentRepairs.Lookup(15); got != 800000 {
		t.Errorf("EquipmentRepairs(15) = %v", got)
	}
	if got := plan.CapexLarge.Lookup(11); got != 0 {
		t.Errorf("CapexLarge(11) = %v, want 0", got)
	}

	empty, err := ParseRepairsPlan(strings.NewReader("year,capex_large,equipment_repairs\n"))
	if err != nil || empty != nil {
		t.Errorf("header-only plan = %v, %v; want nil, nil", empty, err)
	}
}

func TestCacheResolvesDataDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "correction.csv", "2,0.7\n")

	c := NewCache(time.Minute, dir)
	first := c.Correction("correction.csv")
	if got := first.Lookup(2); got != 0.7 {
		t.Fatalf("Lookup(2) = %v, want 0.7", got)
	}
	second := c.Correction("correction.csv")
	if first != second {
		t.Error("second call should be served from cache")
	}

	c.Flush()
	if c.Correction("correction.csv") == first {
		t.Error("Flush should drop cached tables")
	}
	if c.RepairsPlan("") != nil {
		t.Error("empty repairs plan path should yield nil")
	}
}

func TestCacheReloadsEditedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "correction.csv", "2,0.7\n")

	c := NewCache(time.Minute, dir)
	before := c.Fingerprint(path, "")
	if got := c.Correction(path).Lookup(2); got != 0.7 {
		t.Fatalf("Lookup(2) = %v, want 0.7", got)
	}

	writeFile(t, dir, "correction.csv", "2,0.65\n3,0.6\n")
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	if got := c.Correction(path).Lookup(2); got != 0.65 {
		t.Errorf("Lookup(2) after edit = %v, want 0.65", got)
	}
	if after := c.Fingerprint(path, ""); after == before {
		t.Errorf("fingerprint did not change after edit: %s", after)
	}
	if c.Fingerprint(filepath.Join(dir, "missing.csv")) == c.Fingerprint(path) {
		t.Error("missing and existing files share a fingerprint")
	}
}

func TestBundledDataFiles(t *testing.T) {
	dataDir := filepath.Join("..", "..", "data")

	rates := LoadDepreciationRates(filepath.Join(dataDir, "depreciation_rates_jpn.csv"))
	if rates.Len() != 49 {
		t.Errorf("depreciation rates Len = %d, want 49", rates.Len())
	}
	if got, ok := rates.StraightLine(47); !ok || got != 0.022 {
		t.Errorf("StraightLine(47) = %v, %v; want 0.022", got, ok)
	}
	if got, ok := rates.StraightLine(22); !ok || got != 0.046 {
		t.Errorf("StraightLine(22) = %v, %v; want 0.046", got, ok)
	}

	corrections := LoadCorrection(filepath.Join(dataDir, "building_correction_rates.csv"))
	if corrections.Shape() != ShapePaired {
		t.Errorf("Shape = %v, want paired", corrections.Shape())
	}
	if got := corrections.Lookup(1); got != 1 {
		t.Errorf("Lookup(1) = %v, want 1", got)
	}
	if got := corrections.Lookup(41); got != 1 {
		t.Errorf("Lookup(41) = %v, want neutral 1", got)
	}

	plan := LoadRepairsPlan(filepath.Join(dataDir, "repairs_plan.csv"))
	if plan == nil || plan.CapexLarge.Lookup(12) != 18000000 {
		t.Errorf("repairs plan = %+v", plan)
	}
}

func TestParseRepairsPlanRejectsInvalidAmounts(t *testing.T) {
	plan, err := ParseRepairsPlan(strings.NewReader(
		"year,capex_large,equipment_repairs\n10,5000000,0\n11,-1,0\n12,NaN,100\n13,0,Inf\n"))
	if err != nil {
		t.Fatal(err)
	}
	if plan == nil {
		t.Fatal("expected a plan")
	}
	for _, year := range []int{11, 12, 13} {
		if c, e := plan.CapexLarge.Lookup(year), plan.EquipmentRepairs.Lookup(year); c != 0 || e != 0 {
			t.Errorf("year %d: capex %v equipment %v, want 0 and 0", year, c, e)
		}
	}
	if got := plan.CapexLarge.Lookup(10); got != 5000000 {
		t.Errorf("CapexLarge(10) = %v, want 5000000", got)
	}
}

func TestParseDepreciationRatesRejectsInvalidRates(t *testing.T) {
	rates, err := ParseDepreciationRates(strings.NewReader(
		"service_life,declining_balance_rate,straight_line_rate\n10,0.2,0.1\n11,NaN,-0.1\n12,Inf,0.084\n13,0.154,1.5\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rates.StraightLine(11); ok {
		t.Error("negative straight-line rate should be skipped")
	}
	if _, ok := rates.StraightLine(13); ok {
		t.Error("straight-line rate above 1 should be skipped")
	}
	if v, ok := rates.StraightLine(12); !ok || v != 0.084 {
		t.Errorf("StraightLine(12) = %v, %v", v, ok)
	}
	if _, ok := rates.DecliningBalance(12); ok {
		t.Error("infinite declining rate should be skipped")
	}
	if v, ok := rates.DecliningBalance(10); !ok || v != 0.2 {
		t.Errorf("DecliningBalance(10) = %v, %v", v, ok)
	}
}
