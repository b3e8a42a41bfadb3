package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"catfill/internal/errors"
	"catfill/internal/fill"
	"catfill/internal/logger"
	"catfill/internal/rules"
	"catfill/internal/suggest"
	"catfill/internal/textmatch"
	"catfill/internal/units"
	"catfill/internal/usercfg"
	"catfill/internal/version"

	"github.com/AlecAivazis/survey/v2"
	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	jsonOutput  bool
	pageFile    string
	interactive bool
	applyFlag   bool
	alcoholFlag bool
	printOnly   bool
	resultsFile string
	outFile     string
	copyTitle   bool
)

var rootCmd = &cobra.Command{
	Use:   "catfill",
	Short: "Compare cleaned item names and fill categorization forms",
	Long: `catfill checks a cleaned catalog item name against the original, suggests
fixes, extracts sizes and units, and plans form fills from a shared rule sheet.

Run without arguments to open the interactive comparer with your last input.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		prefs := usercfg.GetUIPrefs()
		if err := StartCompare(mustApp(), prefs.LastOriginal, prefs.LastCleaned); err != nil {
			fatal(err)
		}
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare [original] [cleaned]",
	Short: "Suggest edits that reconcile a cleaned name with the original",
	Long: `Compare tokenizes both names, pairs identical and near-identical words, and
suggests adding missing words, removing extra words, fixing near matches and
correcting misspellings. Use --page to read both names from a page snapshot.`,
	Args: cobra.MaximumNArgs(2),
	Run:  runCompare,
}

var sizeCmd = &cobra.Command{
	Use:   "size <text...>",
	Short: "Extract quantities and plan the size and unit fields",
	Args:  cobra.MinimumNArgs(1),
	Run:   runSize,
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find the rule row whose keywords occur on a page",
	Args:  cobra.NoArgs,
	Run:   runMatch,
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Plan the dropdown, brand and size writes for a page",
	Args:  cobra.NoArgs,
	Run:   runFill,
}

var searchCmd = &cobra.Command{
	Use:   "search [text...]",
	Short: "Open a web search for an item name",
	Run:   runSearch,
}

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Print the merged brand, item and descriptor title of a page",
	Args:  cobra.NoArgs,
	Run:   runTitle,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		report := versionReport(usercfg.GetRuntimeConfig())
		if jsonOutput {
			if err := writeJSON(os.Stdout, report); err != nil {
				fatal(err)
			}
			return
		}
		for _, line := range report.Lines() {
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging (also written to ~/.config/catfill/debug.log)")

	compareCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Open the interactive comparer")
	compareCmd.Flags().BoolVar(&applyFlag, "apply", false, "Pick suggestions to apply and print the updated name")
	compareCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	compareCmd.Flags().StringVar(&pageFile, "page", "", "Read the original and cleaned names from a page snapshot")

	sizeCmd.Flags().BoolVar(&alcoholFlag, "alcohol", false, "Treat the item as an alcoholic beverage (oz reads as fl oz)")
	sizeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan as JSON")

	matchCmd.Flags().StringVar(&pageFile, "page", "", "Page snapshot file (defaults to the last one used)")
	matchCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the lookup result as JSON")

	fillCmd.Flags().StringVar(&pageFile, "page", "", "Page snapshot file (defaults to the last one used)")
	fillCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan as JSON")
	fillCmd.Flags().BoolVar(&alcoholFlag, "alcohol", false, "Force the alcohol unit rules")
	fillCmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the filled page snapshot as JSON to this file")

	searchCmd.Flags().StringVar(&pageFile, "page", "", "Search for the cleaned name on a page snapshot")
	searchCmd.Flags().BoolVar(&printOnly, "print", false, "Print the search URL without opening a browser")
	searchCmd.Flags().StringVar(&resultsFile, "results", "", "File of search result titles, one per line, to pick the closest from")

	titleCmd.Flags().StringVar(&pageFile, "page", "", "Page snapshot file (defaults to the last one used)")
	titleCmd.Flags().BoolVar(&copyTitle, "copy", false, "Copy the title to the clipboard")

	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print build and configuration information as JSON")

	rootCmd.AddCommand(compareCmd, sizeCmd, matchCmd, fillCmd, searchCmd, titleCmd)
	rootCmd.AddCommand(setupCmd, configCmd, versionCmd)
	configCmd.AddCommand(configMigrateCmd, configPathCmd, configPrintCmd, configGetCmd, configSetCmd, configDoctorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// versionReport describes the build and the unit table and cache it would use.
func versionReport(cfg usercfg.Config) version.Report {
	n := -1
	if tax, err := loadTaxonomy(cfg.TaxonomyPath); err == nil {
		n = len(tax.Definitions())
	} else {
		logger.Debug("version: %v", err)
	}
	return version.NewReport(usercfg.CurrentSchemaVersion, cfg.TaxonomyPath, n, cfg.Cache.Backend)
}

// compareInputs resolves the two names from arguments or a page snapshot.
func compareInputs(args []string, page string) (string, string, error) {
	if page != "" {
		p, err := readPage(page)
		if err != nil {
			return "", "", err
		}
		original, _ := p.Field(fill.LabelOriginalName)
		cleaned := p.Target(fill.TargetCleanedName)
		return original, cleaned, nil
	}
	if len(args) != 2 {
		return "", "", fmt.Errorf("compare needs <original> and <cleaned>, or --page FILE")
	}
	return args[0], args[1], nil
}

type compareOutput struct {
	Original string `json:"original"`
	Cleaned  string `json:"cleaned"`
	suggest.Result
}

func runCompare(cmd *cobra.Command, args []string) {
	a := mustApp()

	if interactive && len(args) == 0 && pageFile == "" {
		prefs := usercfg.GetUIPrefs()
		if err := StartCompare(a, prefs.LastOriginal, prefs.LastCleaned); err != nil {
			fatal(err)
		}
		return
	}

	original, cleaned, err := compareInputs(args, pageFile)
	if err != nil {
		fatal(err)
	}
	if interactive {
		if err := StartCompare(a, original, cleaned); err != nil {
			fatal(err)
		}
		return
	}

	res := a.compare(original, cleaned)
	if applyFlag && len(res.Suggestions) > 0 {
		updated, err := pickAndApply(cleaned, res.Suggestions)
		if err != nil {
			fmt.Println("Cancelled")
			return
		}
		cleaned = updated
		res = a.compare(original, cleaned)
	}

	if jsonOutput {
		if err := writeJSON(os.Stdout, compareOutput{Original: original, Cleaned: cleaned, Result: res}); err != nil {
			fatal(err)
		}
		return
	}
	renderCompare(os.Stdout, original, cleaned, res)
}

// pickAndApply lets the user choose suggestions and applies them in list order.
func pickAndApply(cleaned string, list []suggest.Suggestion) (string, error) {
	options := make([]string, len(list))
	byOption := make(map[string]int, len(list))
	for i, s := range list {
		options[i] = fmt.Sprintf("%d. %s", i+1, s.Label())
		byOption[options[i]] = i
	}

	var picked []string
	if err := survey.AskOne(&survey.MultiSelect{
		Message:  "Apply which suggestions?",
		Options:  options,
		PageSize: 15,
	}, &picked); err != nil {
		return cleaned, err
	}

	chosen := make([]suggest.Suggestion, 0, len(picked))
	for _, p := range picked {
		chosen = append(chosen, list[byOption[p]])
	}
	return suggest.ApplyAll(cleaned, chosen), nil
}

func plainMark(word string) string { return "[[" + word + "]]" }

func renderCompare(w io.Writer, original, cleaned string, res suggest.Result) {
	if res.Equivalent {
		fmt.Fprintln(w, "✅ Same words in a different order; nothing to suggest.")
		return
	}
	fmt.Fprintf(w, "Original: %s\n", suggest.Highlight(original, res.Missing, plainMark))
	fmt.Fprintf(w, "Cleaned:  %s\n", cleaned)
	if len(res.Suggestions) == 0 {
		fmt.Fprintln(w, "✅ No suggestions.")
		return
	}
	fmt.Fprintln(w, "Suggestions:")
	for i, s := range res.Suggestions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s.Label())
	}
}

func runSize(cmd *cobra.Command, args []string) {
	a := mustApp()
	text := strings.Join(args, " ")

	var flags []string
	if alcoholFlag {
		flags = append(flags, units.FlagAlcohol)
	}
	plan := units.PlanSize(a.extractor.Extract(text, flags...))

	if jsonOutput {
		if err := writeJSON(os.Stdout, plan); err != nil {
			fatal(err)
		}
		return
	}
	renderSize(os.Stdout, plan)
}

func renderSize(w io.Writer, plan units.SizePlan) {
	if plan.Clear() {
		fmt.Fprintln(w, "No quantity found; size and unit would be cleared.")
		return
	}
	fmt.Fprintf(w, "Size: %s\n", plan.Size)
	if plan.Composite() {
		fmt.Fprintln(w, "Unit: (cleared, multi-quantity size)")
		return
	}
	fmt.Fprintf(w, "Unit: %s", plan.Unit)
	if len(plan.UnitAliases) > 0 {
		fmt.Fprintf(w, " (dropdown: %s)", strings.Join(plan.UnitAliases, ", "))
	}
	fmt.Fprintln(w)
}

// resolvePagePath falls back to the last page used and remembers the choice.
func resolvePagePath(path string) (string, error) {
	prefs := usercfg.GetUIPrefs()
	if path == "" {
		path = prefs.LastPage
	}
	if path == "" {
		return "", fmt.Errorf("no page snapshot given; pass --page FILE")
	}
	if path != prefs.LastPage {
		prefs.LastPage = path
		if err := usercfg.SaveUIPrefs(prefs); err != nil {
			logger.Debug("could not save last page: %v", err)
		}
	}
	return path, nil
}

func readPage(path string) (*fill.Page, error) {
	p, err := fill.ReadPageFile(path)
	if err != nil {
		return nil, errors.NewPageError(path, err)
	}
	return p, nil
}

func mustPage(path string) *fill.Page {
	path, err := resolvePagePath(path)
	if err != nil {
		fatal(err)
	}
	p, err := readPage(path)
	if err != nil {
		fatal(err)
	}
	return p
}

func runMatch(cmd *cobra.Command, args []string) {
	a := mustApp()
	page := mustPage(pageFile)

	src, err := a.newSource()
	if err != nil {
		fatal(err)
	}
	ctx, cancel := commandContext()
	defer cancel()

	res, err := src.Lookup(ctx, page.FieldValues(a.labels()))
	if err != nil {
		fatal(err)
	}
	if jsonOutput {
		if err := writeJSON(os.Stdout, res); err != nil {
			fatal(err)
		}
		return
	}
	renderLookup(os.Stdout, res)
}

func renderLookup(w io.Writer, res rules.LookupResult) {
	cached := ""
	if res.FromCache {
		cached = ", cached"
	}
	if !res.Matched {
		fmt.Fprintf(w, "No rule row matched (%d rows checked%s).\n", res.RowCount, cached)
		return
	}
	fmt.Fprintf(w, "✅ Row %d matched keywords %q (%d rows%s)\n", res.Index+1, res.Row.Keyword(), res.RowCount, cached)
	for _, col := range res.Row.Columns() {
		if v := res.Row.Get(col); v != "" {
			fmt.Fprintf(w, "  %s: %s\n", col, v)
		}
	}
}

func runFill(cmd *cobra.Command, args []string) {
	a := mustApp()
	page := mustPage(pageFile)

	src, err := a.newSource()
	if err != nil {
		fatal(err)
	}
	ctx, cancel := commandContext()
	defer cancel()

	if err := src.Prefetch(ctx); err != nil {
		logger.Debug("prefetch incomplete: %v", err)
	}
	if err := a.checkAccess(ctx, src); err != nil {
		fatal(err)
	}

	rule, err := src.Lookup(ctx, page.FieldValues(a.labels()))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Continuing with the size fields only.")
	}

	plan := a.planner().Plan(page, rule, alcoholFlag)

	if outFile != "" {
		plan.Apply(page)
		if err := writePage(outFile, page); err != nil {
			fatal(err)
		}
	}

	if jsonOutput {
		if err := writeJSON(os.Stdout, plan); err != nil {
			fatal(err)
		}
		return
	}
	renderPlan(os.Stdout, plan)
	if outFile != "" {
		fmt.Printf("\nFilled page written to %s\n", outFile)
	}
}

func writePage(path string, page *fill.Page) error {
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func renderPlan(w io.Writer, plan fill.Plan) {
	if plan.Rule.Matched {
		fmt.Fprintf(w, "Rule: row %d (keywords %q)\n", plan.Rule.Index+1, plan.Rule.Row.Keyword())
	} else {
		fmt.Fprintln(w, "Rule: no match; dropdowns left untouched")
	}

	alcohol := "no"
	if plan.Alcohol {
		alcohol = "yes"
	}
	fmt.Fprintf(w, "Alcohol: %s\n", alcohol)

	switch {
	case plan.SizeSkipped:
		fmt.Fprintln(w, "Size: skipped, size or unit already filled")
	case plan.Size == nil:
		fmt.Fprintln(w, "Size: not planned")
	case plan.Size.Clear():
		fmt.Fprintln(w, "Size: nothing found, clearing size and unit")
	default:
		fmt.Fprintf(w, "Size: %s (from %s)\n", plan.Size.Size, plan.SizeSource)
	}

	if len(plan.Assignments) == 0 {
		return
	}
	fmt.Fprintln(w, "Assignments:")
	for _, as := range plan.Assignments {
		switch {
		case as.Clear:
			fmt.Fprintf(w, "  %-28s cleared (%s)\n", as.Target, as.Source)
		case as.Option != "":
			fmt.Fprintf(w, "  %-28s = %s [option %q] (%s)\n", as.Target, as.Value, as.Option, as.Source)
		default:
			fmt.Fprintf(w, "  %-28s = %s (%s)\n", as.Target, as.Value, as.Source)
		}
	}
}

func runSearch(cmd *cobra.Command, args []string) {
	a := mustApp()
	text := strings.Join(args, " ")
	if pageFile != "" {
		page := mustPage(pageFile)
		if text = page.Target(fill.TargetCleanedName); strings.TrimSpace(text) == "" {
			text, _ = page.Field(fill.LabelOriginalName)
		}
	}
	if strings.TrimSpace(text) == "" {
		fatal(fmt.Errorf("nothing to search for; pass text or --page FILE"))
	}

	if resultsFile != "" {
		results, err := readLines(resultsFile)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Search terms: %s\n", strings.Join(textmatch.SearchTerms(text), " | "))
		if i := textmatch.PickResult(text, results, a.cfg.SearchCutoff); i >= 0 {
			fmt.Printf("Best result: %s\n", results[i])
		} else {
			fmt.Printf("No result is close enough to %q\n", text)
		}
		return
	}

	u := textmatch.WebSearchURL(text)
	fmt.Println(u)
	if printOnly {
		return
	}
	if err := browser.OpenURL(u); err != nil {
		fmt.Fprintf(os.Stderr, "Could not open browser: %v\n", err)
	}
}

// readLines returns the non-blank lines of path.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

func runTitle(cmd *cobra.Command, args []string) {
	page := mustPage(pageFile)
	title := fill.PageTitle(page)
	if title == "" {
		fatal(fmt.Errorf("page has no brand, item name or descriptor"))
	}
	fmt.Println(title)

	if copyTitle {
		if err := clipboard.WriteAll(title); err != nil {
			fmt.Fprintf(os.Stderr, "Could not copy to clipboard: %v\n", err)
			return
		}
		fmt.Fprintln(os.Stderr, "Copied to clipboard")
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
