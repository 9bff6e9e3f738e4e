// Package version reports build metadata injected with -ldflags, falling
// back to the module build info embedded by the Go toolchain.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"git_commit" yaml:"git_commit"`
	BuildTime time.Time `json:"build_time" yaml:"build_time"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Platform  string    `json:"platform" yaml:"platform"`
	Release   bool      `json:"is_release" yaml:"is_release"`
	Dirty     bool      `json:"is_dirty" yaml:"is_dirty"`
}

// Set at build time, e.g.
//
//	go build -ldflags "-X github.com/conneroisu/showcase/internal/version.Version=v0.3.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// GetBuildInfo returns the build information of the running binary
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   GetVersion(),
		GitCommit: GetGitCommit(),
		BuildTime: parseBuildTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Release:   IsRelease(),
		Dirty:     IsDirty(),
	}
}

// GetVersion returns the application version
func GetVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}
	return "dev"
}

// GetGitCommit returns the commit the binary was built from
func GetGitCommit() string {
	if GitCommit != "" && GitCommit != "unknown" {
		return GitCommit
	}
	if value := buildSetting("vcs.revision"); value != "" {
		return value
	}
	return "unknown"
}

// GetShortVersion returns the version with an abbreviated commit
func GetShortVersion() string {
	v := GetVersion()
	commit := GetGitCommit()
	if commit == "unknown" || len(commit) < 7 {
		return v
	}
	if v == "dev" {
		return "dev-" + commit[:7]
	}
	return fmt.Sprintf("%s (%s)", v, commit[:7])
}

// GetDetailedVersion returns one "Key: value" line per build attribute
func GetDetailedVersion() string {
	info := GetBuildInfo()

	lines := []string{"Version: " + info.Version}
	if info.GitCommit != "unknown" {
		lines = append(lines, "Commit: "+info.GitCommit)
	}
	if !info.BuildTime.IsZero() {
		lines = append(lines, "Built: "+info.BuildTime.Format(time.RFC3339))
	}
	lines = append(lines, "Go: "+info.GoVersion, "Platform: "+info.Platform)
	return strings.Join(lines, "\n")
}

// IsRelease reports whether this is a tagged build
func IsRelease() bool {
	v := GetVersion()
	return v != "dev" && !strings.HasPrefix(v, "dev-")
}

// IsDirty reports whether the working tree had local modifications
func IsDirty() bool {
	return buildSetting("vcs.modified") == "true"
}

func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

func parseBuildTime(value string) time.Time {
	if value == "" || value == "unknown" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
