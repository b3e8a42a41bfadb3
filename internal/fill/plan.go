package fill

import (
	"strings"

	"catfill/internal/rules"
	"catfill/internal/textmatch"
	"catfill/internal/units"
)

// Page labels and form targets of the categorization tool.
const (
	LabelOriginalName  = "Original Item Name"
	LabelOriginalSize  = "Original Size"
	LabelDescription   = "Mx Provided Product Description"
	LabelOriginalBrand = "Original Brand Name"
	LabelDescriptors   = "Mx Provided Descriptor(s)"

	TargetCleanedName = "Woflow Cleaned Item Name"
	TargetCleanedSize = "Woflow Cleaned Size"
	TargetUnit        = "vs9__combobox"
	TargetBrandPath   = "Woflow brand_path"

	BrandNotAvailable = "Brand Not Available"
)

// DefaultLabels are the page fields whose text is searched for rule keywords.
var DefaultLabels = []string{
	"Secondary UPC", "Mx Provided Category 2", "Mx Provided Category 1", "Mx Provided Category 3",
	"Original Brand Name", "Mx Provided Product Description", "Original Item Name", "Mx Provided Descriptor(s)",
	"Mx Provided Size 2", "Original UOM", "Original Size", "Mx Provided CBD/THC Content", "Photo Source",
	"itemName", "Mx Provided WI Flag", "WI Type", "L1 Name", "Woflow Notes", "Exclude", "Invalid Reason",
	"upc", "itemMerchantSuppliedId",
}

// SizeSources are scanned in order for a quantity; the first with a match wins.
var SizeSources = []string{LabelOriginalName, LabelOriginalSize, LabelDescription}

// DefaultAlcoholVerticals mark a matched rule as an alcoholic beverage when its
// vertical name contains one of them.
var DefaultAlcoholVerticals = []string{"alcohol", "beer", "wine", "liquor", "spirits"}

// Dropdown maps a rule column onto a dropdown target. Default is used when
// the column is missing or blank.
type Dropdown struct {
	Target  string `toml:"target" json:"target"`
	Column  string `toml:"column" json:"column"`
	Default string `toml:"default,omitempty" json:"default,omitempty"`
}

// DefaultDropdowns is the stock column mapping.
func DefaultDropdowns() []Dropdown {
	return []Dropdown{
		{Target: "vs1__combobox", Column: "Vertical Name"},
		{Target: "vs2__combobox", Column: "vs2"},
		{Target: "vs3__combobox", Column: "vs3"},
		{Target: "vs4__combobox", Column: "vs4", Default: "No Error"},
		{Target: "vs5__combobox", Column: "vs5"},
		{Target: "vs6__combobox", Column: "vs6"},
		{Target: "vs7__combobox", Column: "vs7", Default: "Yes"},
		{Target: "vs8__combobox", Column: "vs8"},
		{Target: "vs17__combobox", Column: "vs17", Default: "Yes"},
	}
}

// Where an assignment's value came from.
const (
	SourceRule    = "rule"
	SourceDefault = "default"
	SourceSize    = "size"
	SourceBrand   = "brand"
)

// Assignment is one write to a form target. For dropdowns, Aliases lists the
// captions that may select the value; Option is the caption chosen from the
// page's options when they are known. Clear empties the target instead.
type Assignment struct {
	Target  string   `json:"target"`
	Value   string   `json:"value,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
	Option  string   `json:"option,omitempty"`
	Clear   bool     `json:"clear,omitempty"`
	Source  string   `json:"source"`
}

// Plan is the full set of writes for one page.
type Plan struct {
	Rule        rules.LookupResult `json:"rule"`
	Alcohol     bool               `json:"alcohol"`
	Size        *units.SizePlan    `json:"size,omitempty"`
	SizeSource  string             `json:"size_source,omitempty"`
	SizeSkipped bool               `json:"size_skipped"`
	Assignments []Assignment       `json:"assignments"`
}

// Planner turns a page and its matched rule into assignments.
type Planner struct {
	Dropdowns        []Dropdown
	Extractor        *units.Extractor
	AlcoholVerticals []string
}

// NewPlanner uses the stock dropdowns and alcohol verticals.
func NewPlanner(ex *units.Extractor) *Planner {
	return &Planner{
		Dropdowns:        DefaultDropdowns(),
		Extractor:        ex,
		AlcoholVerticals: DefaultAlcoholVerticals,
	}
}

// Plan builds the writes for page. Dropdowns and the brand default are only
// planned when the rule matched. Size is planned independently, and only
// when the page's size and unit targets are both empty. The alcohol flag is
// forced by alcohol or inferred from the rule's vertical.
func (pl *Planner) Plan(page *Page, rule rules.LookupResult, alcohol bool) Plan {
	plan := Plan{Rule: rule}

	if rule.Matched {
		plan.Assignments = append(plan.Assignments, pl.dropdowns(page, rule.Row)...)
		if strings.TrimSpace(page.Target(TargetBrandPath)) == "" {
			plan.Assignments = append(plan.Assignments, Assignment{
				Target: TargetBrandPath,
				Value:  BrandNotAvailable,
				Source: SourceBrand,
			})
		}
		alcohol = alcohol || pl.isAlcohol(rule.Row)
	}
	plan.Alcohol = alcohol

	if strings.TrimSpace(page.Target(TargetCleanedSize)) != "" || strings.TrimSpace(page.Target(TargetUnit)) != "" {
		plan.SizeSkipped = true
		return plan
	}
	if pl.Extractor == nil {
		return plan
	}

	var flags []string
	if alcohol {
		flags = append(flags, units.FlagAlcohol)
	}
	for _, label := range SizeSources {
		text, ok := page.Field(label)
		if !ok {
			continue
		}
		qs := pl.Extractor.Extract(text, flags...)
		if len(qs) == 0 {
			continue
		}
		size := units.PlanSize(qs)
		plan.Size = &size
		plan.SizeSource = label
		plan.Assignments = append(plan.Assignments, pl.sizeAssignments(page, size)...)
		break
	}
	return plan
}

func (pl *Planner) dropdowns(page *Page, row rules.Row) []Assignment {
	var out []Assignment
	for _, d := range pl.Dropdowns {
		value := strings.TrimSpace(row.Get(d.Column))
		source := SourceRule
		if value == "" {
			value, source = d.Default, SourceDefault
		}
		if value == "" {
			continue
		}
		out = append(out, resolve(page, Assignment{
			Target:  d.Target,
			Value:   value,
			Aliases: []string{value},
			Source:  source,
		}))
	}
	return out
}

func (pl *Planner) sizeAssignments(page *Page, size units.SizePlan) []Assignment {
	out := []Assignment{{Target: TargetCleanedSize, Value: size.Size, Source: SourceSize}}
	if size.Unit == "" {
		return append(out, Assignment{Target: TargetUnit, Clear: true, Source: SourceSize})
	}
	return append(out, resolve(page, Assignment{
		Target:  TargetUnit,
		Value:   size.Unit,
		Aliases: size.UnitAliases,
		Source:  SourceSize,
	}))
}

// resolve picks the concrete option when the page lists the dropdown's
// options; a value none of them matches clears the dropdown.
func resolve(page *Page, a Assignment) Assignment {
	options, ok := page.Options[a.Target]
	if !ok || len(options) == 0 {
		return a
	}
	if i, found := units.SelectOption(options, a.Aliases); found {
		a.Option = options[i]
		return a
	}
	a.Clear = true
	return a
}

func (pl *Planner) isAlcohol(row rules.Row) bool {
	vertical := textmatch.NormalizeForCompare(row.Get("Vertical Name"))
	if vertical == "" {
		return false
	}
	for _, v := range pl.AlcoholVerticals {
		if v = textmatch.NormalizeForCompare(v); v != "" && strings.Contains(vertical, v) {
			return true
		}
	}
	return false
}

// Apply writes the plan's assignments into the page's targets.
func (p Plan) Apply(page *Page) {
	for _, a := range p.Assignments {
		switch {
		case a.Clear:
			page.SetTarget(a.Target, "")
		case a.Option != "":
			page.SetTarget(a.Target, a.Option)
		default:
			page.SetTarget(a.Target, a.Value)
		}
	}
}
