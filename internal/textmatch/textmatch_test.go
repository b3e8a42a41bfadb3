package textmatch

import (
	"reflect"
	"regexp"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"Cola", "cola", 0},
		{"CHIPS", "chps", 1},
		{"a", "b", 1},
	}

	for _, test := range tests {
		result := Distance(test.a, test.b)
		if result != test.expected {
			t.Errorf("Distance(%q, %q) = %d, expected %d", test.a, test.b, result, test.expected)
		}
	}
}

func TestRelativeDistance(t *testing.T) {
	if _, ok := RelativeDistance("", "abc", 3); ok {
		t.Error("RelativeDistance with an empty token should be undefined")
	}
	rel, ok := RelativeDistance("chips", "chps", 1)
	if !ok || rel != 0.25 {
		t.Errorf("RelativeDistance(chips, chps) = %v/%v, expected 0.25/true", rel, ok)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"Coca  Cola\t12 oz", []string{"Coca", "Cola", "12", "oz"}},
		{" Lay's\nChips ", []string{"Lay's", "Chips"}},
	}

	for _, test := range tests {
		result := Tokenize(test.input)
		if len(result) == 0 && len(test.expected) == 0 {
			continue
		}
		if !reflect.DeepEqual(result, test.expected) {
			t.Errorf("Tokenize(%q) = %v, expected %v", test.input, result, test.expected)
		}
	}
}

func TestNormalizeForCompare(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"  Ben &amp; Jerry's  ", "ben & jerry's"},
		{"Red\t\tWine\nCooler", "red wine cooler"},
		{"ABC", "abc"},
	}

	for _, test := range tests {
		result := NormalizeForCompare(test.input)
		if result != test.expected {
			t.Errorf("NormalizeForCompare(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestStripPunctuation(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"(Organic)", "Organic"},
		{`"Fresh,"`, "Fresh"},
		{"What?", "What"},
		{"Lay's", "Lays"},
		{"half-gallon", "half-gallon"},
	}

	for _, test := range tests {
		result := StripPunctuation(test.input)
		if result != test.expected {
			t.Errorf("StripPunctuation(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"chips", "Chips"},
		{"SALTED chips", "Salted Chips"},
		{"fl oz", "Fl Oz"},
	}

	for _, test := range tests {
		result := TitleCase(test.input)
		if result != test.expected {
			t.Errorf("TitleCase(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestSameWords(t *testing.T) {
	if !SameWords("Salted Potato Chips", "chips potato  SALTED") {
		t.Error("permutations of the same words should compare equal")
	}
	if SameWords("Chips Chips", "Chips") {
		t.Error("word counts must match")
	}
	if !SameWords("Ben &amp; Jerry", "Jerry & Ben") {
		t.Error("&amp; should decode before comparing")
	}
}

func TestBuildAlternation(t *testing.T) {
	alt := BuildAlternation([]string{"oz", "fl oz", "", "OZ", "fl.oz", "g"})
	expected := `fl\s+oz|fl\.oz|oz|g`
	if alt != expected {
		t.Fatalf("BuildAlternation = %q, expected %q", alt, expected)
	}

	re := regexp.MustCompile(`(?i)^(?:` + alt + `)$`)
	for _, s := range []string{"FL  OZ", "fl.oz", "oz", "G"} {
		if !re.MatchString(s) {
			t.Errorf("alternation should match %q", s)
		}
	}
	if re.MatchString("flxoz") {
		t.Error("quoted period must not match arbitrary characters")
	}

	if BuildAlternation(nil) != "" {
		t.Error("empty input should produce an empty alternation")
	}
}

func TestWordPattern(t *testing.T) {
	if WordPattern(nil) != nil {
		t.Error("WordPattern(nil) should be nil")
	}
	re := WordPattern([]string{"oz", "c++"})
	if !re.MatchString("12 OZ can") {
		t.Error("expected case-insensitive word match")
	}
	if re.MatchString("ozone") {
		t.Error("word boundary should reject partial words")
	}
}
