package units

import (
	"strings"

	"catfill/internal/textmatch"
)

// CompositeSeparator joins the quantities of a multi-pack size.
const CompositeSeparator = " x "

// SizePlan is what the size and unit fields should hold after extraction.
type SizePlan struct {
	Size string `json:"size"`
	// Unit is the canonical key for the unit dropdown, empty when it should
	// be cleared.
	Unit        string     `json:"unit"`
	UnitAliases []string   `json:"unit_aliases,omitempty"`
	Quantities  []Quantity `json:"quantities"`
}

// Clear reports whether nothing was found and both fields should be emptied.
func (p SizePlan) Clear() bool { return len(p.Quantities) == 0 }

// Composite reports whether the size combines several quantities.
func (p SizePlan) Composite() bool { return len(p.Quantities) > 1 }

// PlanSize applies the fill policy: no quantity clears both fields, one
// quantity fills the size with its literal number and the unit with its
// canonical key, several quantities fill the size with "n unit x n unit" and
// clear the unit.
func PlanSize(qs []Quantity) SizePlan {
	switch len(qs) {
	case 0:
		return SizePlan{}
	case 1:
		q := qs[0]
		return SizePlan{
			Size:        q.Amount,
			Unit:        q.Unit.Key,
			UnitAliases: q.Unit.DisplayAliases,
			Quantities:  qs,
		}
	default:
		parts := make([]string, len(qs))
		for i, q := range qs {
			parts[i] = q.String()
		}
		return SizePlan{
			Size:       strings.Join(parts, CompositeSeparator),
			Quantities: qs,
		}
	}
}

// SelectOption returns the index of the first option whose normalized text
// equals one of aliases. It reports false when the dropdown should be
// cleared instead.
func SelectOption(options, aliases []string) (int, bool) {
	want := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		if a = textmatch.NormalizeForCompare(a); a != "" {
			want[a] = true
		}
	}
	for i, opt := range options {
		if want[textmatch.NormalizeForCompare(opt)] {
			return i, true
		}
	}
	return -1, false
}
