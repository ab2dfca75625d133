package buildinfo

import (
	"runtime"
	"runtime/debug"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo, ok bool) {
	t.Helper()
	prev := readBuildInfo
	t.Cleanup(func() { readBuildInfo = prev })
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, ok }
}

func TestCurrentFromBuildInfo(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		GoVersion: "go1.23.4",
		Main: debug.Module{
			Path:    "github.com/aidanlsb/mdvault",
			Version: "v1.2.3",
		},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-02-14T17:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "GOOS", Value: "windows"},
			{Key: "GOARCH", Value: "amd64"},
		},
	}, true)

	info := Current()

	if info.Version != "v1.2.3" {
		t.Fatalf("Version = %q, want %q", info.Version, "v1.2.3")
	}
	if info.Commit != "abc123" {
		t.Fatalf("Commit = %q, want %q", info.Commit, "abc123")
	}
	if info.CommitTime != "2026-02-14T17:00:00Z" {
		t.Fatalf("CommitTime = %q", info.CommitTime)
	}
	if !info.Modified {
		t.Fatal("Modified = false, want true")
	}
	if info.GoVersion != "go1.23.4" {
		t.Fatalf("GoVersion = %q", info.GoVersion)
	}
	if info.GOOS != "windows" || info.GOARCH != "amd64" {
		t.Fatalf("platform = %s/%s, want windows/amd64", info.GOOS, info.GOARCH)
	}
	if got := info.Short(); got != "v1.2.3 (abc123-dirty)" {
		t.Fatalf("Short() = %q", got)
	}
}

func TestCurrentFallbackWhenBuildInfoMissing(t *testing.T) {
	stubBuildInfo(t, nil, false)

	prevVersion, prevCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = prevVersion, prevCommit })
	Version, Commit = "v0.4.0", "0123456789abcdef"

	info := Current()

	if info.Version != "v0.4.0" {
		t.Fatalf("Version = %q, want ldflags value", info.Version)
	}
	if info.ModulePath != defaultModulePath {
		t.Fatalf("ModulePath = %q", info.ModulePath)
	}
	if info.GoVersion != runtime.Version() {
		t.Fatalf("GoVersion = %q, want runtime %q", info.GoVersion, runtime.Version())
	}
	if got := info.Short(); got != "v0.4.0 (0123456789ab)" {
		t.Fatalf("Short() = %q", got)
	}
}

func TestCurrentDevelVersion(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true)

	prevVersion := Version
	t.Cleanup(func() { Version = prevVersion })
	Version = ""

	info := Current()
	if info.Version != "devel" {
		t.Fatalf("Version = %q, want devel", info.Version)
	}
	if info.Short() != "devel" {
		t.Fatalf("Short() = %q, want devel", info.Short())
	}
}
