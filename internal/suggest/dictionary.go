package suggest

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"

	"catfill/internal/textmatch"
)

const (
	maxSuggestDistance = 2
	maxSuggestions     = 5
)

// Dictionary is an in-memory word list. It reads plain one-word-per-line
// files and hunspell .dic files (leading count line, /FLAGS suffixes).
type Dictionary struct {
	name  string
	words map[string]struct{}
	list  []string
}

// NewDictionary builds a dictionary from a word slice.
func NewDictionary(name string, words []string) *Dictionary {
	d := &Dictionary{name: name, words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		d.add(w)
	}
	sort.Strings(d.list)
	return d
}

// LoadDictionary parses a word list from r.
func LoadDictionary(name string, r io.Reader) (*Dictionary, error) {
	d := &Dictionary{name: name, words: make(map[string]struct{})}
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if first {
			first = false
			if _, err := strconv.Atoi(line); err == nil {
				continue
			}
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '/'); i >= 0 {
			line = line[:i]
		}
		d.add(line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.Strings(d.list)
	return d, nil
}

// LoadDictionaryFile opens path and parses it. The file's base name, without
// extension, becomes the dictionary name.
func LoadDictionaryFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return LoadDictionary(name, f)
}

func (d *Dictionary) add(w string) {
	w = strings.ToLower(strings.TrimSpace(w))
	if w == "" {
		return
	}
	if _, ok := d.words[w]; ok {
		return
	}
	d.words[w] = struct{}{}
	d.list = append(d.list, w)
}

// Name returns the dictionary's name.
func (d *Dictionary) Name() string { return d.name }

// Len returns the number of distinct words.
func (d *Dictionary) Len() int { return len(d.list) }

// Check reports whether word is known, ignoring case.
func (d *Dictionary) Check(word string) bool {
	_, ok := d.words[strings.ToLower(word)]
	return ok
}

// Suggest returns up to five known words within edit distance two of word,
// closest first. Equal distances are ordered by Jaro-Winkler similarity, then
// alphabetically.
func (d *Dictionary) Suggest(word string) []string {
	lower := strings.ToLower(word)
	if lower == "" {
		return nil
	}

	type scored struct {
		word string
		dist int
		sim  float64
	}
	var hits []scored
	n := len([]rune(lower))
	for _, w := range d.list {
		wn := len([]rune(w))
		if wn-n > maxSuggestDistance || n-wn > maxSuggestDistance {
			continue
		}
		dist := textmatch.Distance(lower, w)
		if dist == 0 || dist > maxSuggestDistance {
			continue
		}
		hits = append(hits, scored{word: w, dist: dist, sim: matchr.JaroWinkler(lower, w, false)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		if hits[i].sim != hits[j].sim {
			return hits[i].sim > hits[j].sim
		}
		return hits[i].word < hits[j].word
	})

	if len(hits) > maxSuggestions {
		hits = hits[:maxSuggestions]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.word
	}
	return out
}
