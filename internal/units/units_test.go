package units

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func keys(qs []Quantity) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.String()
	}
	return out
}

func TestExtractLongestAliasFirst(t *testing.T) {
	tax, err := NewTaxonomy([]Definition{
		{Key: "oz", TextAliases: []string{"oz"}},
		{Key: "fl oz", TextAliases: []string{"fl oz"}},
	})
	if err != nil {
		t.Fatalf("NewTaxonomy() error = %v", err)
	}

	got := ExtractQuantities("Coca Cola 12 FL OZ", tax)
	if len(got) != 1 || got[0].Unit.Key != "fl oz" || got[0].Amount != "12" {
		t.Errorf("ExtractQuantities() = %+v, expected a single 12 fl oz", got)
	}
}

func TestExtractMultiPack(t *testing.T) {
	tax, err := NewTaxonomy([]Definition{
		{Key: "pack", TextAliases: []string{"pack", "pk"}},
		{Key: "oz", TextAliases: []string{"oz"}},
		{Key: "fl oz", TextAliases: []string{"fl oz"}},
	})
	if err != nil {
		t.Fatalf("NewTaxonomy() error = %v", err)
	}

	qs := ExtractQuantities("6 PACK 12 OZ", tax)
	if expected := []string{"6 pack", "12 oz"}; !reflect.DeepEqual(keys(qs), expected) {
		t.Fatalf("ExtractQuantities() = %v, expected %v", keys(qs), expected)
	}

	plan := PlanSize(qs)
	if plan.Size != "6 pack x 12 oz" {
		t.Errorf("Size = %q, expected %q", plan.Size, "6 pack x 12 oz")
	}
	if plan.Unit != "" || !plan.Composite() {
		t.Errorf("composite plan should clear the unit, got %+v", plan)
	}
}

func TestExtractDefaultTaxonomy(t *testing.T) {
	ex := NewExtractor(Default())
	tests := []struct {
		text     string
		expected []string
	}{
		{"Whole Milk 1 Gallon", []string{"1 gal"}},
		{"Sparkling Water 1.5L", []string{"1.5 l"}},
		{"Chips 2.75-oz bag", []string{"2.75 oz"}},
		{"Eggs 12 count", []string{"12 ct"}},
		{"Soda 12 pk 12 fl oz", []string{"12 pk", "12 fl oz"}},
		{"Lemons by the bag", nil},
		{"12 grapes", nil},
		{"", nil},
	}

	for _, test := range tests {
		got := keys(ex.Extract(test.text))
		if len(got) == 0 && len(test.expected) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, test.expected) {
			t.Errorf("Extract(%q) = %v, expected %v", test.text, got, test.expected)
		}
	}
}

func TestAlcoholOverride(t *testing.T) {
	tax := Default()
	ex := NewExtractor(tax, AlcoholOverride)

	plain := ex.Extract("Lager 12 oz")
	if len(plain) != 1 || plain[0].Unit.Key != "oz" {
		t.Errorf("without flag got %+v, expected oz", plain)
	}
	drink := ex.Extract("Lager 12 oz", FlagAlcohol)
	if len(drink) != 1 || drink[0].Unit.Key != "fl oz" {
		t.Errorf("with alcohol flag got %+v, expected fl oz", drink)
	}
	if def, _ := tax.Lookup("oz"); def.Key != "oz" {
		t.Error("override must not change the taxonomy")
	}
}

func TestPlanSize(t *testing.T) {
	if plan := PlanSize(nil); !plan.Clear() || plan.Size != "" || plan.Unit != "" {
		t.Errorf("PlanSize(nil) = %+v, expected a clearing plan", plan)
	}

	def, _ := Default().ByKey("oz")
	plan := PlanSize([]Quantity{{Amount: "12.0", Unit: def}})
	if plan.Size != "12.0" || plan.Unit != "oz" || plan.Composite() {
		t.Errorf("PlanSize(single) = %+v", plan)
	}
	if !reflect.DeepEqual(plan.UnitAliases, []string{"Ounce", "oz"}) {
		t.Errorf("UnitAliases = %v", plan.UnitAliases)
	}
}

func TestSelectOption(t *testing.T) {
	options := []string{"Count", "Fluid  Ounce", "Ounce", "Pound"}
	tests := []struct {
		aliases  []string
		expected int
		ok       bool
	}{
		{[]string{"Fluid Ounce", "fl oz"}, 1, true},
		{[]string{"oz", "ounce"}, 2, true},
		{[]string{"Kilogram", "kg"}, -1, false},
		{nil, -1, false},
	}

	for _, test := range tests {
		got, ok := SelectOption(options, test.aliases)
		if got != test.expected || ok != test.ok {
			t.Errorf("SelectOption(%v) = %d/%v, expected %d/%v", test.aliases, got, ok, test.expected, test.ok)
		}
	}
}

func TestNewTaxonomyValidation(t *testing.T) {
	if _, err := NewTaxonomy([]Definition{{Key: ""}}); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewTaxonomy([]Definition{{Key: "oz"}, {Key: "OZ"}}); err == nil {
		t.Error("expected error for duplicate key")
	}

	tax, err := NewTaxonomy([]Definition{
		{Key: "a", TextAliases: []string{"x"}},
		{Key: "b", TextAliases: []string{"X"}},
	})
	if err != nil {
		t.Fatalf("NewTaxonomy() error = %v", err)
	}
	if def, _ := tax.Lookup("x"); def.Key != "a" {
		t.Errorf("shared alias resolved to %q, expected the first definition", def.Key)
	}
}

func TestLoadTaxonomy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "units.yaml")
	content := `units:
  - key: fl oz
    text_aliases: [fl oz, floz]
    display_aliases: [Fluid Ounce]
  - key: ea
    text_aliases: [each, ea]
    display_aliases: [Each]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tax, err := LoadTaxonomy(path)
	if err != nil {
		t.Fatalf("LoadTaxonomy() error = %v", err)
	}
	if len(tax.Definitions()) != 2 {
		t.Errorf("expected 2 definitions, got %d", len(tax.Definitions()))
	}
	if def, ok := tax.Lookup("FL  OZ"); !ok || def.Key != "fl oz" {
		t.Errorf("Lookup(FL  OZ) = %+v/%v", def, ok)
	}
	if got := keys(NewExtractor(tax).Extract("Eggs 6 each")); !reflect.DeepEqual(got, []string{"6 ea"}) {
		t.Errorf("Extract with loaded taxonomy = %v", got)
	}

	if err := os.WriteFile(path, []byte("units: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTaxonomy(path); err == nil {
		t.Error("expected error for empty taxonomy")
	}
	if _, err := LoadTaxonomy(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
