package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// GitCommit и BuildDate могут быть пустыми
	_ = GitCommit
	_ = BuildDate
}

func TestColored(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "1.2.3-rc1"
	if got := Colored(false); got != Version {
		t.Fatalf("plain: want %q, got %q", Version, got)
	}
	got := Colored(true)
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-rc1") {
		t.Fatalf("colored: %q", got)
	}
	for _, painted := range []string{"\x1b[33;1m1", "\x1b[32;1m2", "\x1b[34;1m3"} {
		if !strings.Contains(got, painted) {
			t.Fatalf("want %q in %q", painted, got)
		}
	}

	Version = "dev"
	if got := Colored(false); got != "dev" {
		t.Fatalf("non-semver: %q", got)
	}
}
