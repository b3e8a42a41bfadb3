package fill

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var preservedUpper = map[string]bool{"LLC": true, "LTD": true}

// MergedTitle joins the non-empty brand, item and descriptor values and
// capitalizes each word. LLC and LTD stay upper-case with periods and
// commas dropped.
func MergedTitle(brand, item, descriptor string) string {
	var parts []string
	for _, s := range []string{brand, item, descriptor} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	words := strings.Fields(strings.Join(parts, " "))
	for i, w := range words {
		clean := strings.NewReplacer(".", "", ",", "").Replace(w)
		if up := strings.ToUpper(clean); preservedUpper[up] {
			words[i] = up
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// PageTitle builds the merged title from a page's brand, item and
// descriptor fields.
func PageTitle(p *Page) string {
	brand, _ := p.Field(LabelOriginalBrand)
	item, _ := p.Field(LabelOriginalName)
	desc, _ := p.Field(LabelDescriptors)
	return MergedTitle(brand, item, desc)
}

func capitalize(w string) string {
	r, n := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(w[n:])
}
