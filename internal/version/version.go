package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the c2sema CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var partAttrs = [][]color.Attribute{
	{color.FgYellow, color.Bold},
	{color.FgGreen, color.Bold},
	{color.FgBlue, color.Bold},
}

// Colored paints the major, minor and patch numbers of Version. The
// pre-release suffix stays plain.
func Colored(enabled bool) string {
	core, suffix, hasSuffix := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", len(partAttrs))
	for i, p := range parts {
		c := color.New(partAttrs[i]...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(p)
	}
	out := strings.Join(parts, ".")
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}
