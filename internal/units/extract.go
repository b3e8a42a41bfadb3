package units

import (
	"regexp"
	"strings"

	"catfill/internal/textmatch"
)

// FlagAlcohol marks text describing an alcoholic beverage.
const FlagAlcohol = "alcohol"

// Override remaps one text alias to a different canonical key while Flag is
// set for an extraction. The taxonomy itself is never changed.
type Override struct {
	Flag  string
	Alias string
	Key   string
}

// AlcoholOverride reads a bare "oz" on a drink as fluid ounces.
var AlcoholOverride = Override{Flag: FlagAlcohol, Alias: "oz", Key: "fl oz"}

// Quantity is one number-unit pair found in text. Amount keeps the literal
// digits as written.
type Quantity struct {
	Amount string     `json:"amount"`
	Unit   Definition `json:"unit"`
	// Matched is the alias text as it appeared.
	Matched string `json:"matched"`
}

// String renders the quantity as "<amount> <key>".
func (q Quantity) String() string {
	return q.Amount + " " + q.Unit.Key
}

// Extractor scans text for quantities. It is safe for concurrent use.
type Extractor struct {
	tax       *Taxonomy
	pattern   *regexp.Regexp
	overrides []Override
}

// NewExtractor compiles one pattern over every alias in tax, longest alias
// first.
func NewExtractor(tax *Taxonomy, overrides ...Override) *Extractor {
	e := &Extractor{tax: tax, overrides: overrides}
	if alt := textmatch.BuildAlternation(tax.Aliases()); alt != "" {
		e.pattern = regexp.MustCompile(`(?i)(\d*\.?\d+)\s*-?\s*(` + alt + `)\b`)
	}
	return e
}

// Taxonomy returns the taxonomy the extractor resolves against.
func (e *Extractor) Taxonomy() *Taxonomy { return e.tax }

// Extract returns every quantity in text, in order of appearance. Flags
// enable the matching overrides. Aliases that resolve to no definition are
// skipped.
func (e *Extractor) Extract(text string, flags ...string) []Quantity {
	if e.pattern == nil || text == "" {
		return nil
	}
	var out []Quantity
	for _, m := range e.pattern.FindAllStringSubmatch(text, -1) {
		def, ok := e.resolve(m[2], flags)
		if !ok {
			continue
		}
		out = append(out, Quantity{Amount: m[1], Unit: def, Matched: m[2]})
	}
	return out
}

func (e *Extractor) resolve(alias string, flags []string) (Definition, bool) {
	norm := normalizeAlias(alias)
	for _, o := range e.overrides {
		if normalizeAlias(o.Alias) != norm || !hasFlag(flags, o.Flag) {
			continue
		}
		if def, ok := e.tax.ByKey(o.Key); ok {
			return def, true
		}
	}
	return e.tax.Lookup(norm)
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}

// ExtractQuantities is a one-shot Extract with no overrides.
func ExtractQuantities(text string, tax *Taxonomy) []Quantity {
	return NewExtractor(tax).Extract(text)
}
