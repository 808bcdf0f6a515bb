package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/eren-998/Email-assistant/internal/version.Commit=..."
var (
	Version = "0.1.0"
	Commit  = ""
	Date    = ""
)

const shortCommit = 8

// build describes the running binary
type build struct {
	version  string
	commit   string
	date     string
	modified bool
}

// current prefers linker-injected values and falls back to the VCS stamp
// the go tool embeds in module builds
func current() build {
	b := build{version: Version, commit: Commit, date: Date}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	stamped := b.commit == ""
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if stamped {
				b.commit = s.Value
			}
		case "vcs.time":
			if b.date == "" {
				b.date = s.Value
			}
		case "vcs.modified":
			// A dirty tree only matters for the commit the go tool stamped
			b.modified = stamped && s.Value == "true"
		}
	}
	return b
}

func (b build) shortCommit() string {
	c := b.commit
	if len(c) > shortCommit {
		c = c[:shortCommit]
	}
	if c != "" && b.modified {
		c += "-dirty"
	}
	return c
}

// String is the one-line version shown by --version
func String() string {
	b := current()
	if c := b.shortCommit(); c != "" {
		return fmt.Sprintf("mailagent %s (%s)", b.version, c)
	}
	return "mailagent " + b.version
}

// Detailed is the multi-line report of the version subcommand
func Detailed() string {
	b := current()
	var sb strings.Builder
	fmt.Fprintf(&sb, "mailagent %s\n", b.version)
	fmt.Fprintf(&sb, "Commit:     %s\n", orUnknown(b.shortCommit()))
	fmt.Fprintf(&sb, "Built:      %s\n", orUnknown(b.date))
	fmt.Fprintf(&sb, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(&sb, "Platform:   %s/%s", runtime.GOOS, runtime.GOARCH)
	return sb.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
