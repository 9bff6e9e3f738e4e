package sandbox

import (
	"os"
	"runtime"
	"strings"
)

// Host describes the execution environment a launch would run in.
type Host struct {
	GOOS   string
	Getenv func(string) string
}

// CurrentHost describes the running process.
func CurrentHost() Host {
	return Host{GOOS: runtime.GOOS, Getenv: os.Getenv}
}

// CanOpenBrowser reports whether an interactive browser can be opened. A
// false result means a launch is skipped, not failed.
func (h Host) CanOpenBrowser() bool {
	getenv := h.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if isSet(getenv("SHOWCASE_NO_BROWSER")) || isSet(getenv("CI")) {
		return false
	}

	switch h.GOOS {
	case "darwin", "windows":
		return true
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return getenv("DISPLAY") != "" || getenv("WAYLAND_DISPLAY") != ""
	default:
		return false
	}
}

func isSet(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no":
		return false
	default:
		return true
	}
}
