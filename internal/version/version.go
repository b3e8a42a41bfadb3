package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables set via ldflags. When they are left at their defaults
// the VCS stamp embedded by the Go toolchain is used instead.
var (
	Version   = "dev"
	Commit    = "unknown"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo describes the binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Dirty     bool   `json:"dirty,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// readBuildInfo is swapped out in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetBuildInfo returns the ldflags values, falling back to the embedded VCS
// revision and time.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && s.Value != "" {
				info.Commit = s.Value
				if len(info.Commit) > 12 {
					info.Commit = info.Commit[:12]
				}
			}
		case "vcs.time":
			if info.Date == "unknown" && s.Value != "" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// GetVersionString returns a one-line version banner.
func GetVersionString() string {
	info := GetBuildInfo()
	commit := info.Commit
	if info.Dirty {
		commit += "-dirty"
	}
	if info.Version == "dev" {
		return fmt.Sprintf("catfill %s (%s) built with %s on %s",
			info.Version, commit, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("catfill %s (%s) built on %s with %s for %s",
		info.Version, commit, info.Date, info.GoVersion, info.Platform)
}

// UserAgent is sent with every sheet request.
func UserAgent() string {
	return fmt.Sprintf("catfill/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}

// Report is what `catfill version` prints: the build plus the data the
// matcher is running with.
type Report struct {
	BuildInfo
	ConfigSchema int    `json:"config_schema"`
	Taxonomy     string `json:"taxonomy"`
	Units        int    `json:"units"`
	RuleCache    string `json:"rule_cache"`
}

// NewReport combines the build info with the active configuration. An empty
// taxonomy path means the built-in unit table.
func NewReport(schema int, taxonomy string, units int, cache string) Report {
	if taxonomy == "" {
		taxonomy = "built-in"
	}
	return Report{
		BuildInfo:    GetBuildInfo(),
		ConfigSchema: schema,
		Taxonomy:     taxonomy,
		Units:        units,
		RuleCache:    cache,
	}
}

// Lines renders the report under the version banner.
func (r Report) Lines() []string {
	units := fmt.Sprintf("%d units", r.Units)
	if r.Units < 0 {
		units = "failed to load"
	}
	return []string{
		GetVersionString(),
		fmt.Sprintf("  config schema: %d", r.ConfigSchema),
		fmt.Sprintf("  taxonomy:      %s (%s)", r.Taxonomy, units),
		fmt.Sprintf("  rule cache:    %s", r.RuleCache),
	}
}
