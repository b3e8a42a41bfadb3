package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catfill/internal/errors"
	"catfill/internal/fill"
	"catfill/internal/httputil"
	"catfill/internal/logger"
	"catfill/internal/rules"
	"catfill/internal/suggest"
	"catfill/internal/units"
	"catfill/internal/usercfg"
)

// app holds everything a command needs that is built from the user config.
type app struct {
	cfg       usercfg.Config
	checkers  []suggest.Checker
	extractor *units.Extractor
}

// newApp loads dictionaries and the unit taxonomy named by cfg. A dictionary
// that fails to load is skipped with a warning; a bad taxonomy is an error.
func newApp(cfg usercfg.Config) (*app, error) {
	tax, err := loadTaxonomy(cfg.TaxonomyPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		extractor: units.NewExtractor(tax, units.AlcoholOverride),
	}
	for _, path := range cfg.Dictionaries {
		d, err := suggest.LoadDictionaryFile(path)
		if err != nil {
			logger.Warn("%v", errors.NewDictionaryError(path, err))
			continue
		}
		logger.Config("loaded dictionary %s (%d words)", d.Name(), d.Len())
		a.checkers = append(a.checkers, d)
	}
	return a, nil
}

func loadTaxonomy(path string) (*units.Taxonomy, error) {
	if path == "" {
		return units.Default(), nil
	}
	tax, err := units.LoadTaxonomy(path)
	if err != nil {
		return nil, errors.NewTaxonomyError(path, err)
	}
	logger.Config("loaded %d unit definitions from %s", len(tax.Definitions()), path)
	return tax, nil
}

func (a *app) suggestOptions() suggest.Options {
	return suggest.Options{
		MinSpellLength: a.cfg.SpellMinLength,
		Checkers:       a.checkers,
	}
}

// compare runs one comparison with the configured thresholds and dictionaries.
func (a *app) compare(original, cleaned string) suggest.Result {
	res := suggest.Compare(original, cleaned, a.cfg.MatchOptions(), a.suggestOptions())
	logger.Match("%q vs %q: %d suggestion(s), equivalent=%v", original, cleaned, len(res.Suggestions), res.Equivalent)
	return res
}

// labels returns the page fields searched for rule keywords.
func (a *app) labels() []string {
	if len(a.cfg.MonitoredLabels) > 0 {
		return a.cfg.MonitoredLabels
	}
	return fill.DefaultLabels
}

func (a *app) planner() *fill.Planner {
	pl := fill.NewPlanner(a.extractor)
	if len(a.cfg.Dropdowns) > 0 {
		pl.Dropdowns = make([]fill.Dropdown, len(a.cfg.Dropdowns))
		for i, d := range a.cfg.Dropdowns {
			pl.Dropdowns[i] = fill.Dropdown{Target: d.Target, Column: d.Column, Default: d.Default}
		}
	}
	if len(a.cfg.AlcoholVerticals) > 0 {
		pl.AlcoholVerticals = a.cfg.AlcoholVerticals
	}
	return pl
}

// newSource builds the rule source with the configured cache backend.
func (a *app) newSource() (*rules.Source, error) {
	if a.cfg.SheetURL == "" {
		return nil, errors.NewNotConfiguredError()
	}
	cache, err := rules.NewCache(rules.CacheOptions{
		Backend:   a.cfg.Cache.Backend,
		RedisAddr: a.cfg.Cache.RedisAddr,
	})
	if err != nil {
		return nil, errors.NewConfigError("cache", err)
	}
	return rules.NewSource(rules.SourceOptions{
		URL:           a.cfg.SheetURL,
		UsersSheet:    a.cfg.UsersSheet,
		FallbackAdmin: a.cfg.FallbackAdmin,
		Client:        httputil.NewDefaultClient(),
		Cache:         cache,
		TTL:           a.cfg.CacheTTL(),
	}), nil
}

// checkAccess verifies the configured user is listed on the users sheet.
func (a *app) checkAccess(ctx context.Context, src *rules.Source) error {
	users, err := src.AuthorizedUsers(ctx)
	if err != nil && len(users) == 0 {
		return errors.NewRuleSourceError(src.URL(), err)
	}
	if !rules.IsAuthorized(a.cfg.Username, users) {
		return errors.NewAccessDeniedError(a.cfg.Username)
	}
	return nil
}

// commandContext is cancelled on interrupt.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// mustApp builds the app from the runtime config or exits.
func mustApp() *app {
	a, err := newApp(usercfg.GetRuntimeConfig())
	if err != nil {
		fatal(err)
	}
	return a
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
