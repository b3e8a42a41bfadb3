package usercfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catfill/internal/errors"
	"catfill/internal/textmatch"

	"github.com/BurntSushi/toml"
)

// ErrNotConfigured is returned when no config file exists and no env vars are set.
var ErrNotConfigured = fmt.Errorf("catfill is not configured; run: catfill setup")

// IsConfigured returns true if a config file exists or the sheet URL comes from the environment.
func IsConfigured() bool {
	if os.Getenv("CATFILL_SHEET_URL") != "" {
		return true
	}
	for _, p := range []string{Path(), LegacyPath()} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

type Config struct {
	SchemaVersion    int              `toml:"schema_version,omitempty"`
	SheetURL         string           `toml:"sheet_url"`
	UsersSheet       string           `toml:"users_sheet,omitempty"`
	FallbackAdmin    string           `toml:"fallback_admin,omitempty"`
	Username         string           `toml:"username"`
	FuzzyThreshold   int              `toml:"fuzzy_threshold,omitempty"`
	RelativeCutoff   float64          `toml:"relative_cutoff,omitempty"`
	SpellMinLength   int              `toml:"spell_min_length,omitempty"`
	SearchCutoff     float64          `toml:"search_cutoff,omitempty"`
	Dictionaries     []string         `toml:"dictionaries,omitempty"`
	TaxonomyPath     string           `toml:"taxonomy_path,omitempty"`
	Cache            CacheConfig      `toml:"cache"`
	Debounce         string           `toml:"debounce,omitempty"`
	MonitoredLabels  []string         `toml:"monitored_labels,omitempty"`
	AlcoholVerticals []string         `toml:"alcohol_verticals,omitempty"`
	Dropdowns        []DropdownConfig `toml:"dropdowns,omitempty"`
	UIPrefs          UIPreferences    `toml:"ui_prefs,omitempty"`
}

// CacheConfig selects where fetched sheet rows are kept between runs.
type CacheConfig struct {
	Backend   string `toml:"backend,omitempty"`
	TTL       string `toml:"ttl,omitempty"`
	RedisAddr string `toml:"redis_addr,omitempty"`
}

// DropdownConfig maps a rule column onto a dropdown target.
type DropdownConfig struct {
	Target  string `toml:"target"`
	Column  string `toml:"column"`
	Default string `toml:"default,omitempty"`
}

type UIPreferences struct {
	LastPage     string `toml:"last_page,omitempty"`
	NoHighlight  bool   `toml:"no_highlight,omitempty"`
	LastOriginal string `toml:"last_original,omitempty"`
	LastCleaned  string `toml:"last_cleaned,omitempty"`
}

const CurrentSchemaVersion = 1

func Path() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "catfill", "config.toml")
}

func LegacyPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "catfill.toml")
}

// activePath returns the file Load would read and whether it is the legacy one.
func activePath() (string, bool, error) {
	configPath := Path()
	legacyPath := LegacyPath()
	if configPath == "" || legacyPath == "" {
		return "", false, fmt.Errorf("unable to determine home directory")
	}
	if _, err := os.Stat(configPath); err == nil {
		return configPath, false, nil
	}
	if _, err := os.Stat(legacyPath); err == nil {
		return legacyPath, true, nil
	}
	return "", false, nil
}

func Load() (Config, error) {
	actualPath, legacy, err := activePath()
	if err != nil {
		return getDefaults(), errors.NewConfigError("load", err)
	}
	if actualPath == "" {
		return getDefaults(), ErrNotConfigured
	}

	var config Config
	if _, err := toml.DecodeFile(actualPath, &config); err != nil {
		return getDefaults(), errors.NewConfigError("load", fmt.Errorf("failed to decode config file: %w", err))
	}

	if legacy {
		fmt.Fprintf(os.Stderr, "Warning: Using legacy config path %s. Consider moving to %s\n", actualPath, Path())
	}

	return mergeWithDefaults(migrateConfig(config)), nil
}

func Save(config Config) error {
	configPath := Path()
	if configPath == "" {
		return fmt.Errorf("unable to determine home directory")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func GetRuntimeConfig() Config {
	config, err := Load()
	if err != nil && err != ErrNotConfigured {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		config = getDefaults()
	}
	return applyEnvOverlays(config)
}

// mergeWithDefaults fills every zero-valued tunable. List settings stay empty
// so callers fall back to their built-in tables.
func mergeWithDefaults(config Config) Config {
	d := getDefaults()
	config.SchemaVersion = CurrentSchemaVersion

	if config.UsersSheet == "" {
		config.UsersSheet = d.UsersSheet
	}
	if config.FuzzyThreshold <= 0 {
		config.FuzzyThreshold = d.FuzzyThreshold
	}
	if config.RelativeCutoff <= 0 {
		config.RelativeCutoff = d.RelativeCutoff
	}
	if config.SpellMinLength <= 0 {
		config.SpellMinLength = d.SpellMinLength
	}
	if config.SearchCutoff <= 0 {
		config.SearchCutoff = d.SearchCutoff
	}
	if config.Cache.Backend == "" {
		config.Cache.Backend = d.Cache.Backend
	}
	if config.Cache.TTL == "" {
		config.Cache.TTL = d.Cache.TTL
	}
	if config.Cache.RedisAddr == "" {
		config.Cache.RedisAddr = d.Cache.RedisAddr
	}
	if config.Debounce == "" {
		config.Debounce = d.Debounce
	}
	return config
}

// MatchOptions returns the reconciliation thresholds.
func (c Config) MatchOptions() textmatch.Options {
	opts := textmatch.DefaultOptions()
	if c.FuzzyThreshold > 0 {
		opts.FuzzyThreshold = c.FuzzyThreshold
	}
	if c.RelativeCutoff > 0 {
		opts.RelativeCutoff = c.RelativeCutoff
	}
	return opts
}

// DebounceDuration parses Debounce, falling back to the default on bad input.
func (c Config) DebounceDuration() time.Duration {
	return parseDuration(c.Debounce, DefaultDebounce)
}

// CacheTTL parses Cache.TTL, falling back to the default on bad input.
func (c Config) CacheTTL() time.Duration {
	return parseDuration(c.Cache.TTL, DefaultCacheTTL)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// splitList parses a comma-separated env value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func applyEnvOverlays(config Config) Config {
	if v := os.Getenv("CATFILL_SHEET_URL"); v != "" {
		config.SheetURL = v
	}
	if v := os.Getenv("CATFILL_USERS_SHEET"); v != "" {
		config.UsersSheet = v
	}
	if v := os.Getenv("CATFILL_FALLBACK_ADMIN"); v != "" {
		config.FallbackAdmin = v
	}
	if v := os.Getenv("CATFILL_USER"); v != "" {
		config.Username = v
	}
	if dicts := splitList(os.Getenv("CATFILL_DICTIONARIES")); len(dicts) > 0 {
		config.Dictionaries = dicts
	}
	if v := os.Getenv("CATFILL_TAXONOMY"); v != "" {
		config.TaxonomyPath = v
	}
	if v := os.Getenv("CATFILL_CACHE"); v != "" {
		config.Cache.Backend = v
	}
	if v := os.Getenv("CATFILL_REDIS_ADDR"); v != "" {
		config.Cache.RedisAddr = v
	}
	return config
}

// migrateConfig performs in-memory migration of config from older schema versions
func migrateConfig(config Config) Config {
	if config.SchemaVersion == 0 {
		// Unversioned files share the v1 layout.
		config.SchemaVersion = 1
		if config.SheetURL != "" || config.Username != "" {
			fmt.Fprintf(os.Stderr, "Info: Migrated config from schema version 0 to %d\n", config.SchemaVersion)
		}
	}
	return config
}

// MigrateAndSave rewrites the config file at the current schema version.
// It backs `catfill config migrate`.
func MigrateAndSave() error {
	actualPath, _, err := activePath()
	if err != nil {
		return err
	}
	if actualPath == "" {
		return fmt.Errorf("no config file found to migrate")
	}

	var rawConfig Config
	if _, err := toml.DecodeFile(actualPath, &rawConfig); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	originalVersion := rawConfig.SchemaVersion
	if originalVersion == CurrentSchemaVersion {
		return fmt.Errorf("config is already at current schema version %d", CurrentSchemaVersion)
	}

	config, err := Load()
	if err != nil {
		return fmt.Errorf("failed to load config for migration: %w", err)
	}
	if err := Save(config); err != nil {
		return fmt.Errorf("failed to save migrated config: %w", err)
	}

	fmt.Printf("Successfully migrated config from schema version %d to %d\n", originalVersion, config.SchemaVersion)
	return nil
}

// SaveUIPrefs saves only the UI preferences to the config file
func SaveUIPrefs(prefs UIPreferences) error {
	config, err := Load()
	if err != nil {
		config = Config{SchemaVersion: CurrentSchemaVersion}
	}
	config.UIPrefs = prefs
	return Save(config)
}

// GetUIPrefs returns the current UI preferences from the runtime config
func GetUIPrefs() UIPreferences {
	if os.Getenv("CATFILL_IGNORE_UI_PREFS") == "1" {
		return UIPreferences{}
	}
	return GetRuntimeConfig().UIPrefs
}
