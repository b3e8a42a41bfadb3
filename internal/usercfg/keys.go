package usercfg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"catfill/internal/rules"
)

// Keys lists every key understood by Get, in display order.
var Keys = []string{
	"sheet_url", "users_sheet", "fallback_admin", "username",
	"fuzzy_threshold", "relative_cutoff", "spell_min_length", "search_cutoff",
	"dictionaries", "taxonomy_path",
	"cache.backend", "cache.ttl", "cache.redis_addr",
	"debounce", "monitored_labels", "alcohol_verticals", "dropdowns",
	"schema_version",
}

// readOnlyKeys are edited in the file or through `catfill setup`.
var readOnlyKeys = map[string]bool{
	"monitored_labels":  true,
	"alcohol_verticals": true,
	"dropdowns":         true,
	"schema_version":    true,
}

// SettableKeys lists the keys accepted by Set.
func SettableKeys() []string {
	var out []string
	for _, k := range Keys {
		if !readOnlyKeys[k] {
			out = append(out, k)
		}
	}
	return out
}

// UnknownKeyError reports a key outside Keys, with the closest known key.
type UnknownKeyError struct {
	Key        string
	Suggestion string
}

func (e *UnknownKeyError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown key %q (did you mean %q?)", e.Key, e.Suggestion)
	}
	return fmt.Sprintf("unknown key %q", e.Key)
}

func unknownKey(key string) error {
	return &UnknownKeyError{Key: key, Suggestion: SuggestKey(key, Keys)}
}

// Get renders the value of key. Lists are comma-joined.
func Get(c Config, key string) (string, error) {
	switch key {
	case "sheet_url":
		return c.SheetURL, nil
	case "users_sheet":
		return c.UsersSheet, nil
	case "fallback_admin":
		return c.FallbackAdmin, nil
	case "username":
		return c.Username, nil
	case "fuzzy_threshold":
		return strconv.Itoa(c.FuzzyThreshold), nil
	case "relative_cutoff":
		return strconv.FormatFloat(c.RelativeCutoff, 'g', -1, 64), nil
	case "spell_min_length":
		return strconv.Itoa(c.SpellMinLength), nil
	case "search_cutoff":
		return strconv.FormatFloat(c.SearchCutoff, 'g', -1, 64), nil
	case "dictionaries":
		return strings.Join(c.Dictionaries, ","), nil
	case "taxonomy_path":
		return c.TaxonomyPath, nil
	case "cache.backend":
		return c.Cache.Backend, nil
	case "cache.ttl":
		return c.Cache.TTL, nil
	case "cache.redis_addr":
		return c.Cache.RedisAddr, nil
	case "debounce":
		return c.Debounce, nil
	case "monitored_labels":
		return strings.Join(c.MonitoredLabels, ","), nil
	case "alcohol_verticals":
		return strings.Join(c.AlcoholVerticals, ","), nil
	case "dropdowns":
		parts := make([]string, 0, len(c.Dropdowns))
		for _, d := range c.Dropdowns {
			parts = append(parts, d.Column+"="+d.Target)
		}
		return strings.Join(parts, ","), nil
	case "schema_version":
		return strconv.Itoa(c.SchemaVersion), nil
	}
	return "", unknownKey(key)
}

// Set validates value and stores it under key.
func Set(c *Config, key, value string) error {
	if readOnlyKeys[key] {
		return fmt.Errorf("key %q cannot be set via 'config set'; edit %s or run 'catfill setup'", key, Path())
	}
	value = strings.TrimSpace(value)

	switch key {
	case "sheet_url":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("invalid sheet URL %q (must start with http:// or https://)", value)
		}
		c.SheetURL = value
	case "users_sheet":
		if value == "" {
			return fmt.Errorf("users_sheet cannot be empty")
		}
		c.UsersSheet = value
	case "fallback_admin":
		c.FallbackAdmin = strings.ToLower(value)
	case "username":
		c.Username = strings.ToLower(value)
	case "fuzzy_threshold":
		n, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		c.FuzzyThreshold = n
	case "spell_min_length":
		n, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		c.SpellMinLength = n
	case "relative_cutoff":
		f, err := fraction(key, value)
		if err != nil {
			return err
		}
		c.RelativeCutoff = f
	case "search_cutoff":
		f, err := fraction(key, value)
		if err != nil {
			return err
		}
		c.SearchCutoff = f
	case "dictionaries":
		c.Dictionaries = splitList(value)
	case "taxonomy_path":
		c.TaxonomyPath = value
	case "cache.backend":
		switch value {
		case rules.BackendMemory, rules.BackendFile, rules.BackendRedis, rules.BackendNone:
			c.Cache.Backend = value
		default:
			return fmt.Errorf("invalid cache backend %q (want memory, file, redis or none)", value)
		}
	case "cache.ttl":
		if _, err := duration(key, value); err != nil {
			return err
		}
		c.Cache.TTL = value
	case "cache.redis_addr":
		c.Cache.RedisAddr = value
	case "debounce":
		if _, err := duration(key, value); err != nil {
			return err
		}
		c.Debounce = value
	default:
		return unknownKey(key)
	}
	return nil
}

func positiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return n, nil
}

func fraction(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 || f > 1 {
		return 0, fmt.Errorf("%s must be a number in (0, 1], got %q", key, value)
	}
	return f, nil
}

func duration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 300ms or 5m, got %q", key, value)
	}
	return d, nil
}
