// Package rules loads categorization rule rows from a published sheet and
// picks the first row whose keywords appear in the page text.
package rules

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"catfill/internal/textmatch"
)

// KeywordColumn names the comma-separated keyword column.
const KeywordColumn = "Keyword"

// Row is one sheet record. Column names are matched loosely: case and
// whitespace are ignored, so "Vertical Name" and "verticalname" are the
// same column.
type Row struct {
	fields map[string]string
	names  map[string]string // normalized key -> column name as written
}

// NewRow builds a row from column values.
func NewRow(fields map[string]string) Row {
	r := Row{fields: make(map[string]string, len(fields)), names: make(map[string]string, len(fields))}
	for k, v := range fields {
		r.set(k, v)
	}
	return r
}

func (r *Row) set(name, value string) {
	key := columnKey(name)
	if key == "" {
		return
	}
	r.fields[key] = value
	r.names[key] = name
}

// Get returns the value of column name, or "" when absent.
func (r Row) Get(name string) string {
	return r.fields[columnKey(name)]
}

// Lookup reports whether column name is present.
func (r Row) Lookup(name string) (string, bool) {
	v, ok := r.fields[columnKey(name)]
	return v, ok
}

// Keyword returns the raw keyword column.
func (r Row) Keyword() string { return r.Get(KeywordColumn) }

// Keywords splits the keyword column on commas and normalizes each entry.
// Empty entries are dropped.
func (r Row) Keywords() []string {
	var out []string
	for _, kw := range strings.Split(r.Keyword(), ",") {
		if kw = textmatch.NormalizeForCompare(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Columns returns the column names as written in the sheet, sorted.
func (r Row) Columns() []string {
	out := make([]string, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Map returns a copy of the row keyed by the original column names.
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.fields))
	for k, v := range r.fields {
		out[r.names[k]] = v
	}
	return out
}

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// UnmarshalJSON accepts a flat object. Non-string scalars are kept in their
// JSON text form and null becomes "".
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = NewRow(nil)
	for k, v := range raw {
		s, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("column %q: %w", k, err)
		}
		r.set(k, s)
	}
	return nil
}

func scalarString(v json.RawMessage) (string, error) {
	text := strings.TrimSpace(string(v))
	switch {
	case text == "null":
		return "", nil
	case strings.HasPrefix(text, `"`):
		var s string
		err := json.Unmarshal(v, &s)
		return s, err
	case strings.HasPrefix(text, "{"), strings.HasPrefix(text, "["):
		return "", fmt.Errorf("nested values are not supported")
	default:
		return text, nil
	}
}

func columnKey(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}
