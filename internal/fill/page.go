// Package fill plans how a categorization form is filled from the labelled
// values shown on an item page and the rule row that matched them.
package fill

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"catfill/internal/textmatch"
)

// Field is one labelled value shown on the page.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Page is a snapshot of an item page: the read-only labelled fields, the
// current value of each writable target and, for dropdown targets, the
// options they offer.
type Page struct {
	Fields  []Field
	Targets map[string]string
	Options map[string][]string
}

type pageJSON struct {
	Fields  map[string]string   `json:"fields"`
	Targets map[string]string   `json:"targets"`
	Options map[string][]string `json:"options"`
}

// NewPage returns an empty page.
func NewPage() *Page {
	return &Page{Targets: make(map[string]string), Options: make(map[string][]string)}
}

// ReadPageFile parses the snapshot at path.
func ReadPageFile(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParsePage(f)
}

// ParsePage reads a page snapshot. A document starting with "{" is JSON:
//
//	{"fields": {"Original Item Name": "..."}, "targets": {...}, "options": {"vs9__combobox": [...]}}
//
// Anything else is read line by line: "Label : value" adds a field,
// "Target = value" records a target's current value, blank lines and lines
// starting with # are skipped. Text is NFKC-normalized first.
func ParsePage(r io.Reader) (*Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = norm.NFKC.Bytes(data)

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return parsePageJSON(trimmed)
	}

	p := NewPage()
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		colon := strings.Index(line, ":")
		eq := strings.Index(line, "=")
		switch {
		case eq >= 0 && (colon < 0 || eq < colon):
			p.SetTarget(strings.TrimSpace(line[:eq]), strings.TrimSpace(line[eq+1:]))
		case colon >= 0:
			p.Fields = append(p.Fields, Field{
				Label: strings.TrimSpace(line[:colon]),
				Value: strings.TrimSpace(line[colon+1:]),
			})
		default:
			return nil, fmt.Errorf("line %d: expected 'Label : value' or 'Target = value'", n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func parsePageJSON(data []byte) (*Page, error) {
	var raw pageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	p := NewPage()
	labels := make([]string, 0, len(raw.Fields))
	for l := range raw.Fields {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		p.Fields = append(p.Fields, Field{Label: l, Value: strings.TrimSpace(raw.Fields[l])})
	}
	for k, v := range raw.Targets {
		p.SetTarget(k, v)
	}
	for k, v := range raw.Options {
		p.Options[k] = v
	}
	return p, nil
}

// MarshalJSON writes the same shape ParsePage accepts.
func (p *Page) MarshalJSON() ([]byte, error) {
	out := pageJSON{Fields: make(map[string]string, len(p.Fields)), Targets: p.Targets, Options: p.Options}
	for _, f := range p.Fields {
		out.Fields[f.Label] = f.Value
	}
	return json.Marshal(out)
}

func sameLabel(a, b string) bool {
	return textmatch.NormalizeForCompare(strings.TrimSuffix(strings.TrimSpace(a), ":")) ==
		textmatch.NormalizeForCompare(strings.TrimSuffix(strings.TrimSpace(b), ":"))
}

// Field returns the value of the first field with the given label. Labels
// compare case-insensitively and a trailing colon is ignored.
func (p *Page) Field(label string) (string, bool) {
	for _, f := range p.Fields {
		if sameLabel(f.Label, label) {
			return f.Value, true
		}
	}
	return "", false
}

// FieldValues returns the normalized values of the given labels, in label
// order, skipping labels the page lacks. With no labels every field is used.
func (p *Page) FieldValues(labels []string) []string {
	var out []string
	if len(labels) == 0 {
		for _, f := range p.Fields {
			out = append(out, textmatch.NormalizeForCompare(f.Value))
		}
		return out
	}
	for _, l := range labels {
		if v, ok := p.Field(l); ok {
			out = append(out, textmatch.NormalizeForCompare(v))
		}
	}
	return out
}

// Target returns the current value of a writable target.
func (p *Page) Target(name string) string {
	return p.Targets[name]
}

// SetTarget records a target value.
func (p *Page) SetTarget(name, value string) {
	if p.Targets == nil {
		p.Targets = make(map[string]string)
	}
	p.Targets[name] = value
}

// TargetNames returns the target names in sorted order.
func (p *Page) TargetNames() []string {
	out := make([]string, 0, len(p.Targets))
	for k := range p.Targets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
