// Package units finds quantity and unit-of-measure mentions in item text and
// resolves them against a unit taxonomy.
package units

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"catfill/internal/textmatch"
)

// Definition is one canonical unit. TextAliases are matched in free text,
// DisplayAliases are the captions a unit dropdown may show for it.
type Definition struct {
	Key            string   `yaml:"key" json:"key"`
	TextAliases    []string `yaml:"text_aliases" json:"text_aliases"`
	DisplayAliases []string `yaml:"display_aliases" json:"display_aliases"`
}

// Taxonomy is an immutable, case-insensitive alias index over definitions.
type Taxonomy struct {
	defs    []Definition
	byAlias map[string]int
	byKey   map[string]int
}

var defaultDefinitions = []Definition{
	{Key: "oz", TextAliases: []string{"oz"}, DisplayAliases: []string{"Ounce", "oz"}},
	{Key: "fl oz", TextAliases: []string{"fl oz", "floz"}, DisplayAliases: []string{"Fluid Ounce", "fl oz", "floz"}},
	{Key: "g", TextAliases: []string{"g", "gr"}, DisplayAliases: []string{"Gram", "g", "gr"}},
	{Key: "kg", TextAliases: []string{"kg"}, DisplayAliases: []string{"Kilogram", "kg"}},
	{Key: "ml", TextAliases: []string{"ml"}, DisplayAliases: []string{"Milliliter", "ml"}},
	{Key: "l", TextAliases: []string{"l"}, DisplayAliases: []string{"Liter", "l"}},
	{Key: "lb", TextAliases: []string{"lb", "lbs"}, DisplayAliases: []string{"Pound", "lb", "lbs", "by pound"}},
	{Key: "ct", TextAliases: []string{"ct", "count"}, DisplayAliases: []string{"Count", "ct", "each"}},
	{Key: "pk", TextAliases: []string{"pk", "pack"}, DisplayAliases: []string{"Pack", "pk", "pack"}},
	{Key: "gal", TextAliases: []string{"gal", "gallon"}, DisplayAliases: []string{"Gallon", "gal"}},
	{Key: "qt", TextAliases: []string{"qt", "quart"}, DisplayAliases: []string{"Quart", "qt"}},
	{Key: "pt", TextAliases: []string{"pt", "pint"}, DisplayAliases: []string{"Pint", "pt"}},
}

// Default returns the built-in grocery taxonomy.
func Default() *Taxonomy {
	t, err := NewTaxonomy(defaultDefinitions)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTaxonomy indexes defs. Keys must be non-empty and unique. When two
// definitions share a text alias the earlier one owns it.
func NewTaxonomy(defs []Definition) (*Taxonomy, error) {
	t := &Taxonomy{
		defs:    make([]Definition, 0, len(defs)),
		byAlias: make(map[string]int),
		byKey:   make(map[string]int),
	}
	for _, d := range defs {
		key := normalizeAlias(d.Key)
		if key == "" {
			return nil, fmt.Errorf("unit definition %d has no key", len(t.defs)+1)
		}
		if _, dup := t.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate unit key %q", d.Key)
		}
		idx := len(t.defs)
		t.defs = append(t.defs, Definition{
			Key:            d.Key,
			TextAliases:    append([]string(nil), d.TextAliases...),
			DisplayAliases: append([]string(nil), d.DisplayAliases...),
		})
		t.byKey[key] = idx
		for _, a := range d.TextAliases {
			a = normalizeAlias(a)
			if a == "" {
				continue
			}
			if _, taken := t.byAlias[a]; !taken {
				t.byAlias[a] = idx
			}
		}
	}
	return t, nil
}

type taxonomyFile struct {
	Units []Definition `yaml:"units"`
}

// LoadTaxonomy reads a YAML file of the form
//
//	units:
//	  - key: fl oz
//	    text_aliases: [fl oz, floz]
//	    display_aliases: [Fluid Ounce, fl oz]
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Units) == 0 {
		return nil, fmt.Errorf("%s defines no units", path)
	}
	return NewTaxonomy(f.Units)
}

// Definitions returns a copy of the definitions in load order.
func (t *Taxonomy) Definitions() []Definition {
	return append([]Definition(nil), t.defs...)
}

// Aliases returns every text alias known to the taxonomy.
func (t *Taxonomy) Aliases() []string {
	out := make([]string, 0, len(t.byAlias))
	for _, d := range t.defs {
		out = append(out, d.TextAliases...)
	}
	return out
}

// Lookup resolves a text alias, ignoring case and inner spacing.
func (t *Taxonomy) Lookup(alias string) (Definition, bool) {
	i, ok := t.byAlias[normalizeAlias(alias)]
	if !ok {
		return Definition{}, false
	}
	return t.defs[i], true
}

// ByKey returns the definition with the given canonical key.
func (t *Taxonomy) ByKey(key string) (Definition, bool) {
	i, ok := t.byKey[normalizeAlias(key)]
	if !ok {
		return Definition{}, false
	}
	return t.defs[i], true
}

func normalizeAlias(s string) string {
	return textmatch.NormalizeForCompare(s)
}
