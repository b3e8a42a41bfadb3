package rules

import (
	"encoding/json"
	"reflect"
	"testing"
)

func rows(t *testing.T, src string) []Row {
	t.Helper()
	var out []Row
	if err := json.Unmarshal([]byte(src), &out); err != nil {
		t.Fatalf("unmarshal rows: %v", err)
	}
	return out
}

func TestRowColumnLookup(t *testing.T) {
	r := NewRow(map[string]string{
		"Keyword":       "wine, beer",
		" Vertical Name": "Alcohol",
		"vs4":           "",
	})

	if got := r.Get("vertical name"); got != "Alcohol" {
		t.Errorf("Get(vertical name) = %q", got)
	}
	if got := r.Get("VerticalName"); got != "Alcohol" {
		t.Errorf("Get(VerticalName) = %q", got)
	}
	if v, ok := r.Lookup("VS4"); !ok || v != "" {
		t.Errorf("Lookup(VS4) = %q/%v, expected present and empty", v, ok)
	}
	if _, ok := r.Lookup("vs5"); ok {
		t.Error("Lookup(vs5) should report absent")
	}
	if !reflect.DeepEqual(r.Keywords(), []string{"wine", "beer"}) {
		t.Errorf("Keywords() = %v", r.Keywords())
	}
}

func TestRowJSON(t *testing.T) {
	got := rows(t, `[{"Keyword": "Chips,  ,Crisps", "vs2": 7, "vs3": null, "vs7": true}]`)
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	r := got[0]
	if r.Get("vs2") != "7" || r.Get("vs3") != "" || r.Get("vs7") != "true" {
		t.Errorf("scalar columns = %v", r.Map())
	}
	if !reflect.DeepEqual(r.Keywords(), []string{"chips", "crisps"}) {
		t.Errorf("Keywords() = %v", r.Keywords())
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back map[string]string
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back["Keyword"] != "Chips,  ,Crisps" {
		t.Errorf("column names not preserved: %v", back)
	}

	var bad []Row
	if err := json.Unmarshal([]byte(`[{"Keyword": ["nested"]}]`), &bad); err == nil {
		t.Error("expected error for nested value")
	}
}

func TestFindMatchingRuleFirstMatchWins(t *testing.T) {
	rs := rows(t, `[{"Keyword": "wine", "vs2": "first"}, {"Keyword": "red wine", "vs2": "second"}]`)

	row, idx, ok := FindMatchingRule([]string{"Original Item Name : Red Wine Cooler"}, rs)
	if !ok || idx != 0 || row.Get("vs2") != "first" {
		t.Errorf("FindMatchingRule() = %v/%d/%v, expected the first row", row.Map(), idx, ok)
	}
}

func TestFindMatchingRule(t *testing.T) {
	rs := rows(t, `[
		{"Keyword": "", "vs2": "empty"},
		{"vs2": "absent"},
		{"Keyword": " , ", "vs2": "blank"},
		{"Keyword": "ice cream, gelato", "vs2": "frozen"},
		{"Keyword": "Ben &amp; Jerry", "vs2": "brand"}
	]`)

	tests := []struct {
		name     string
		values   []string
		expected string
		ok       bool
	}{
		{"second keyword", []string{"Italian GELATO pint"}, "frozen", true},
		{"any field", []string{"nothing here", "vanilla ice  cream"}, "frozen", true},
		{"entity decoded", []string{"ben & jerry's"}, "brand", true},
		{"no match", []string{"potato chips"}, "", false},
		{"no values", nil, "", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			row, _, ok := FindMatchingRule(test.values, rs)
			if ok != test.ok || row.Get("vs2") != test.expected {
				t.Errorf("FindMatchingRule(%v) = %q/%v, expected %q/%v", test.values, row.Get("vs2"), ok, test.expected, test.ok)
			}
		})
	}
}

func TestEmptyKeywordRowsNeverMatch(t *testing.T) {
	rs := rows(t, `[{"Keyword": ""}, {"Keyword": ",,"}, {"Other": "x"}]`)
	if _, _, ok := FindMatchingRule([]string{"", "anything at all", ","}, rs); ok {
		t.Error("rows without keywords must never match")
	}
}

func TestIsAuthorized(t *testing.T) {
	users := []string{"prasad", "dana"}
	tests := []struct {
		user     string
		expected bool
	}{
		{"Prasad", true},
		{" dana ", true},
		{"eve", false},
		{"", false},
	}
	for _, test := range tests {
		if got := IsAuthorized(test.user, users); got != test.expected {
			t.Errorf("IsAuthorized(%q) = %v, expected %v", test.user, got, test.expected)
		}
	}
}

func TestUsersURL(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		wantErr  bool
	}{
		{"https://opensheet.elk.sh/abc123/Sheet1", "https://opensheet.elk.sh/abc123/Users", false},
		{"https://opensheet.elk.sh/abc123/Sheet1/", "https://opensheet.elk.sh/abc123/Users", false},
		{"https://opensheet.elk.sh/abc123/Rules?x=1", "https://opensheet.elk.sh/abc123/Users?x=1", false},
		{"https://opensheet.elk.sh/Sheet1", "", true},
	}
	for _, test := range tests {
		got, err := UsersURL(test.in, "Users")
		if (err != nil) != test.wantErr || got != test.expected {
			t.Errorf("UsersURL(%q) = %q, %v; expected %q", test.in, got, err, test.expected)
		}
	}
}
