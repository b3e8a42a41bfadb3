package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withBuildInfo(t *testing.T, settings ...debug.BuildSetting) {
	t.Helper()
	old := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: settings}, true
	}
	t.Cleanup(func() { readBuildInfo = old })
}

func TestGetVersionString(t *testing.T) {
	oldVersion, oldDate := Version, Date
	defer func() { Version, Date = oldVersion, oldDate }()
	withBuildInfo(t)

	Version = "dev"
	if s := GetVersionString(); !strings.HasPrefix(s, "catfill dev") {
		t.Errorf("GetVersionString() = %q", s)
	}

	Version = "1.2.0"
	Date = "2026-10-01"
	if s := GetVersionString(); !strings.Contains(s, "built on 2026-10-01") {
		t.Errorf("GetVersionString() = %q", s)
	}
}

func TestGetBuildInfoFallsBackToVCS(t *testing.T) {
	oldCommit, oldDate := Commit, Date
	defer func() { Commit, Date = oldCommit, oldDate }()
	Commit, Date = "unknown", "unknown"

	withBuildInfo(t,
		debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		debug.BuildSetting{Key: "vcs.time", Value: "2026-10-02T10:00:00Z"},
		debug.BuildSetting{Key: "vcs.modified", Value: "true"},
	)

	info := GetBuildInfo()
	if info.Commit != "0123456789ab" || info.Date != "2026-10-02T10:00:00Z" || !info.Dirty {
		t.Errorf("GetBuildInfo() = %+v", info)
	}
	if s := GetVersionString(); !strings.Contains(s, "0123456789ab-dirty") {
		t.Errorf("GetVersionString() = %q", s)
	}

	Commit = "abc123"
	if info := GetBuildInfo(); info.Commit != "abc123" {
		t.Errorf("ldflags commit should win, got %q", info.Commit)
	}
}

func TestReport(t *testing.T) {
	withBuildInfo(t)

	r := NewReport(1, "", 12, "file")
	if r.Taxonomy != "built-in" {
		t.Errorf("Taxonomy = %q, expected built-in", r.Taxonomy)
	}
	lines := r.Lines()
	if len(lines) != 4 || !strings.Contains(lines[2], "built-in (12 units)") || !strings.Contains(lines[3], "file") {
		t.Errorf("Lines() = %q", lines)
	}

	failed := NewReport(1, "/tmp/units.yaml", -1, "redis").Lines()
	if !strings.Contains(failed[2], "/tmp/units.yaml (failed to load)") {
		t.Errorf("Lines() = %q", failed)
	}
}

func TestUserAgent(t *testing.T) {
	if ua := UserAgent(); !strings.HasPrefix(ua, "catfill/") {
		t.Errorf("UserAgent() = %q", ua)
	}
}
