package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"catfill/internal/rules"
	"catfill/internal/suggest"
	"catfill/internal/units"
	"catfill/internal/usercfg"

	"github.com/AlecAivazis/survey/v2"
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure catfill interactively",
	Long:  "Launch a setup wizard for the rule sheet, your username, dictionaries and caching",
	Run:   runSetup,
}

// configCmd provides config management subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage catfill configuration",
}

var configMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the config file to the current schema version",
	Run:   runConfigMigrate,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	Run:   runConfigPath,
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration",
	Run:   runConfigPrint,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run:   runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run:   runConfigSet,
}

var configDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the configuration and the rule sheet",
	Run:   runConfigDoctor,
}

func validateURL(ans interface{}) error {
	s, _ := ans.(string)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return fmt.Errorf("must start with http:// or https://")
	}
	return nil
}

func validateTaxonomy(ans interface{}) error {
	s, _ := ans.(string)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := units.LoadTaxonomy(strings.TrimSpace(s))
	return err
}

func runSetup(cmd *cobra.Command, args []string) {
	fmt.Println("catfill Setup Wizard")
	fmt.Println("====================")

	currentConfig := usercfg.GetRuntimeConfig()
	newConfig := currentConfig
	isFirstRun := !usercfg.IsConfigured()

	if isFirstRun {
		fmt.Println("Welcome! Let's point catfill at your rule sheet.")
		fmt.Println()
	} else {
		fmt.Printf("Existing config found at %s, modifying.\n\n", usercfg.Path())
		fmt.Printf("  Sheet URL: %s\n", currentConfig.SheetURL)
		fmt.Printf("  Username: %s\n", currentConfig.Username)
		fmt.Printf("  Dictionaries: %v\n", currentConfig.Dictionaries)
		fmt.Printf("  Cache: %s\n", currentConfig.Cache.Backend)
		fmt.Println()
	}

	var sheetURL string
	if err := survey.AskOne(&survey.Input{
		Message: "Rule sheet JSON URL (ending in the rules tab name):",
		Default: currentConfig.SheetURL,
	}, &sheetURL, survey.WithValidator(survey.Required), survey.WithValidator(validateURL)); err != nil {
		fmt.Println("Setup cancelled")
		return
	}
	newConfig.SheetURL = strings.TrimSpace(sheetURL)

	var username string
	if err := survey.AskOne(&survey.Input{
		Message: "Your username (as listed on the Users tab):",
		Default: currentConfig.Username,
	}, &username, survey.WithValidator(survey.Required)); err != nil {
		fmt.Println("Setup cancelled")
		return
	}
	newConfig.Username = strings.ToLower(strings.TrimSpace(username))

	var fallback string
	if err := survey.AskOne(&survey.Input{
		Message: "Fallback admin allowed when the Users tab is unreachable (optional):",
		Default: currentConfig.FallbackAdmin,
	}, &fallback); err != nil {
		fmt.Println("Setup cancelled")
		return
	}
	newConfig.FallbackAdmin = strings.ToLower(strings.TrimSpace(fallback))

	var dictInput string
	if err := survey.AskOne(&survey.Input{
		Message: "Spelling dictionaries (comma-separated word list paths, optional):",
		Default: strings.Join(currentConfig.Dictionaries, ", "),
	}, &dictInput); err != nil {
		fmt.Println("Setup cancelled")
		return
	}
	var dicts []string
	for _, p := range strings.Split(dictInput, ",") {
		if p = strings.TrimSpace(p); p != "" {
			dicts = append(dicts, p)
		}
	}
	newConfig.Dictionaries = dicts

	var backend string
	if err := survey.AskOne(&survey.Select{
		Message: "Where should fetched rule rows be cached?",
		Options: []string{rules.BackendFile, rules.BackendMemory, rules.BackendRedis, rules.BackendNone},
		Default: currentConfig.Cache.Backend,
	}, &backend); err != nil {
		fmt.Println("Setup cancelled")
		return
	}
	newConfig.Cache.Backend = backend

	if backend == rules.BackendRedis {
		var addr string
		if err := survey.AskOne(&survey.Input{
			Message: "Redis address:",
			Default: currentConfig.Cache.RedisAddr,
		}, &addr, survey.WithValidator(survey.Required)); err != nil {
			fmt.Println("Setup cancelled")
			return
		}
		newConfig.Cache.RedisAddr = strings.TrimSpace(addr)
	}

	var taxonomy string
	if err := survey.AskOne(&survey.Input{
		Message: "Unit taxonomy YAML (blank for the built-in units):",
		Default: currentConfig.TaxonomyPath,
	}, &taxonomy, survey.WithValidator(validateTaxonomy)); err != nil {
		fmt.Println("Setup cancelled")
		return
	}
	newConfig.TaxonomyPath = strings.TrimSpace(taxonomy)

	newConfig.SchemaVersion = usercfg.CurrentSchemaVersion
	if err := usercfg.Save(newConfig); err != nil {
		fmt.Printf("Failed to save config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nConfiguration saved to %s\n", usercfg.Path())
	fmt.Println("Check it with: catfill config doctor")
}

func runConfigMigrate(cmd *cobra.Command, args []string) {
	if err := usercfg.MigrateAndSave(); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}
}

func runConfigPath(cmd *cobra.Command, args []string) {
	fmt.Println(usercfg.Path())
}

func runConfigPrint(cmd *cobra.Command, args []string) {
	config := usercfg.GetRuntimeConfig()

	fmt.Println("# Configuration (effective)")
	if err := toml.NewEncoder(os.Stdout).Encode(config); err != nil {
		fmt.Printf("Failed to encode config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n# Config file location: %s\n", usercfg.Path())
}

func runConfigGet(cmd *cobra.Command, args []string) {
	value, err := usercfg.Get(usercfg.GetRuntimeConfig(), args[0])
	if err != nil {
		fmt.Println(err)
		fmt.Printf("Available keys: %s\n", strings.Join(usercfg.Keys, ", "))
		os.Exit(1)
	}
	fmt.Println(value)
}

func runConfigSet(cmd *cobra.Command, args []string) {
	key, value := args[0], args[1]

	config, err := usercfg.Load()
	if err != nil && err != usercfg.ErrNotConfigured {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := usercfg.Set(&config, key, value); err != nil {
		fmt.Println(err)
		fmt.Printf("Settable keys: %s\n", strings.Join(usercfg.SettableKeys(), ", "))
		os.Exit(1)
	}

	if err := usercfg.Save(config); err != nil {
		fmt.Printf("Failed to save config: %v\n", err)
		os.Exit(1)
	}
	shown, _ := usercfg.Get(config, key)
	fmt.Printf("Set %s = %s\n", key, shown)
}

// doctorCheck is one line of the doctor report.
type doctorCheck struct {
	ok     bool
	msg    string
	advice string
}

func runConfigDoctor(cmd *cobra.Command, args []string) {
	fmt.Println("🏥 catfill Configuration Doctor")
	fmt.Println("===============================")

	var checks []doctorCheck
	configPath := usercfg.Path()
	legacyPath := usercfg.LegacyPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if _, err := os.Stat(legacyPath); os.IsNotExist(err) {
			fmt.Println("ℹ️  No config file found - using defaults")
			fmt.Printf("   Create one with: catfill setup\n")
		} else {
			checks = append(checks, doctorCheck{
				msg:    "Using legacy config path " + legacyPath,
				advice: "Consider migrating: catfill config migrate",
			})
		}
	} else {
		checks = append(checks, doctorCheck{ok: true, msg: "Config file found at XDG-compliant location"})
	}

	config := usercfg.GetRuntimeConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	checks = append(checks, doctorChecks(ctx, config)...)

	issues := 0
	for _, c := range checks {
		if c.ok {
			fmt.Printf("✅ %s\n", c.msg)
			continue
		}
		issues++
		fmt.Printf("⚠️  %s\n", c.msg)
		if c.advice != "" {
			fmt.Printf("   %s\n", c.advice)
		}
	}

	fmt.Println()
	if issues == 0 {
		fmt.Println("🎉 No issues found! Configuration looks healthy.")
		return
	}
	fmt.Printf("Found %d issue(s). See suggestions above.\n", issues)
	os.Exit(1)
}

// doctorChecks validates config and probes the resources it names.
func doctorChecks(ctx context.Context, config usercfg.Config) []doctorCheck {
	var checks []doctorCheck
	add := func(ok bool, msg, advice string) {
		checks = append(checks, doctorCheck{ok: ok, msg: msg, advice: advice})
	}

	if config.SchemaVersion < usercfg.CurrentSchemaVersion {
		add(false, fmt.Sprintf("Config schema is outdated (v%d, current: v%d)", config.SchemaVersion, usercfg.CurrentSchemaVersion), "Run: catfill config migrate")
	} else {
		add(true, fmt.Sprintf("Config schema is current (v%d)", config.SchemaVersion), "")
	}

	if config.RelativeCutoff <= 0 || config.RelativeCutoff > 1 {
		add(false, fmt.Sprintf("relative_cutoff %v is outside (0, 1]", config.RelativeCutoff), "Run: catfill config set relative_cutoff 0.5")
	}
	if config.SearchCutoff <= 0 || config.SearchCutoff > 1 {
		add(false, fmt.Sprintf("search_cutoff %v is outside (0, 1]", config.SearchCutoff), "Run: catfill config set search_cutoff 0.3")
	}

	for _, path := range config.Dictionaries {
		d, err := suggest.LoadDictionaryFile(path)
		if err != nil {
			add(false, fmt.Sprintf("Dictionary %s: %v", path, err), "Fix the path or remove it from dictionaries")
			continue
		}
		add(true, fmt.Sprintf("Dictionary %s loaded (%d words)", path, d.Len()), "")
	}
	if len(config.Dictionaries) == 0 {
		add(true, "No dictionaries configured; spelling suggestions are off", "")
	}

	if tax, err := loadTaxonomy(config.TaxonomyPath); err != nil {
		add(false, err.Error(), "")
	} else {
		add(true, fmt.Sprintf("Unit taxonomy has %d units", len(tax.Definitions())), "")
	}

	switch config.Cache.Backend {
	case rules.BackendRedis:
		rc := rules.NewRedisCache(config.Cache.RedisAddr)
		if err := rc.Ping(ctx); err != nil {
			add(false, fmt.Sprintf("Redis cache at %s unreachable: %v", config.Cache.RedisAddr, err), "Start Redis or run: catfill config set cache.backend file")
		} else {
			add(true, "Redis cache reachable at "+config.Cache.RedisAddr, "")
		}
		rc.Close()
	case rules.BackendFile, rules.BackendMemory, rules.BackendNone:
		add(true, "Cache backend: "+config.Cache.Backend, "")
	default:
		add(false, fmt.Sprintf("Unknown cache backend %q", config.Cache.Backend), "Run: catfill config set cache.backend file")
	}

	if config.SheetURL == "" {
		add(false, "Rule sheet URL not configured", "Run: catfill setup")
		return checks
	}
	if err := validateURL(config.SheetURL); err != nil {
		add(false, fmt.Sprintf("Invalid sheet URL %s: %v", config.SheetURL, err), "Run: catfill config set sheet_url <url>")
		return checks
	}

	a := &app{cfg: config}
	src, err := a.newSource()
	if err != nil {
		add(false, err.Error(), "")
		return checks
	}
	rows, err := src.Rows(ctx)
	if err != nil {
		add(false, err.Error(), "")
		return checks
	}
	add(true, fmt.Sprintf("Rule sheet reachable (%d rows)", len(rows)), "")

	if config.Username == "" {
		add(false, "Username not configured", "Run: catfill config set username <name>")
	} else if err := a.checkAccess(ctx, src); err != nil {
		add(false, err.Error(), "")
	} else {
		add(true, fmt.Sprintf("User %s is authorized", config.Username), "")
	}
	return checks
}
