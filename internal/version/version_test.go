package version

import (
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	tests := []struct {
		in, want string
	}{
		{"1.2.3", "1.2.3"},
		{"  0.1.0-dev\n", "0.1.0-dev"},
		{"", "dev"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Current(); got != tt.want {
			t.Errorf("Current() with %q = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColored(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "1.2.3-rc.1"
	if got := Colored(false); got != "1.2.3-rc.1" {
		t.Errorf("Colored(false) = %q", got)
	}
	colored := Colored(true)
	if !strings.Contains(colored, "\x1b[") || !strings.HasSuffix(colored, "-rc.1") {
		t.Errorf("Colored(true) = %q", colored)
	}

	Version = "nightly"
	if got := Colored(true); got != "nightly" {
		t.Errorf("non-semver version = %q", got)
	}
}

func TestOptionalFieldsDefaultEmpty(t *testing.T) {
	if GitCommit != "" || GitMessage != "" || BuildDate != "" {
		t.Errorf("build metadata set without ldflags: %q %q %q", GitCommit, GitMessage, BuildDate)
	}
}

func TestReadPrefersLdflags(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	t.Cleanup(func() { GitCommit, BuildDate = origCommit, origDate })

	GitCommit = " 0123456789abcdef "
	BuildDate = "2026-10-01T00:00:00Z"
	info := Read()
	if info.GitCommit != "0123456789abcdef" || info.BuildDate != "2026-10-01T00:00:00Z" {
		t.Errorf("info = %+v", info)
	}
	if info.ShortCommit() != "0123456789ab" {
		t.Errorf("ShortCommit = %q", info.ShortCommit())
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
}
