package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"faultline/internal/config"
	"faultline/internal/diagfmt"
	"faultline/internal/oracle"
)

const dogSource = "def dog\n  def lol\nend\n"

// resetFlags puts every flag of the tree back to its default; the commands are
// package globals shared by all tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCheckInvalidFileJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dog.rb", dogSource)
	out, _, err := execute(t, "", "check", "--format", "json", path)
	if !errors.Is(err, errSyntaxFound) {
		t.Fatalf("err = %v, want errSyntaxFound", err)
	}
	var got diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if got.Count == 0 || got.Diagnostics[0].Code != "SYN2002" {
		t.Fatalf("diagnostics = %+v", got.Diagnostics)
	}
	if got.Diagnostics[0].Location.StartLine != 2 {
		t.Errorf("start line = %d, want 2", got.Diagnostics[0].Location.StartLine)
	}
}

func TestCheckValidFilePretty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ok.rb", "def ok\n  1\nend\n")
	out, _, err := execute(t, "", "check", "--color", "off", path)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "no syntax errors") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckStdinShort(t *testing.T) {
	out, _, err := execute(t, dogSource, "check", "--format", "short", "-")
	if !errors.Is(err, errSyntaxFound) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "SYN2002") || !strings.Contains(out, "<stdin>:2:") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.rb", "def a\nend\n")
	writeFile(t, dir, "lib/dog.rb", dogSource)
	writeFile(t, dir, "vendor/skip.rb", "def\n")

	out, _, err := execute(t, "", "check", "--ui", "off", "--format", "json", "--exclude", "vendor/**", dir)
	if !errors.Is(err, errSyntaxFound) {
		t.Fatalf("err = %v", err)
	}
	var got map[string]diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(got) != 2 {
		t.Fatalf("files = %d, want 2: %v", len(got), got)
	}
	invalid := 0
	for _, o := range got {
		if o.Count > 0 {
			invalid++
		}
	}
	if invalid != 1 {
		t.Errorf("invalid files = %d, want 1", invalid)
	}
}

func TestCheckUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.FileName, "[output]\nformat = \"short\"\n")
	path := writeFile(t, dir, "dog.rb", dogSource)

	out, _, err := execute(t, "", "check", path)
	if !errors.Is(err, errSyntaxFound) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "SYN2002") || strings.Contains(out, "\n\n") {
		t.Errorf("expected short output, got %q", out)
	}

	// флаг сильнее файла
	out, _, _ = execute(t, "", "check", "--format", "json", path)
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected json output, got %q", out)
	}
}

func TestCheckRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.FileName, "[oracle]\nkind = \"python\"\n")
	path := writeFile(t, dir, "dog.rb", dogSource)
	if _, _, err := execute(t, "", "check", path); err == nil || errors.Is(err, errSyntaxFound) {
		t.Errorf("err = %v, want a config error", err)
	}
}

func TestCheckMetricsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dog.rb", dogSource)
	metricsPath := filepath.Join(dir, "faultline.prom")

	if _, _, err := execute(t, "", "check", "--metrics-file", metricsPath, path); !errors.Is(err, errSyntaxFound) {
		t.Fatalf("err = %v", err)
	}
	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `faultline_files_total{result="invalid"} 1`) {
		t.Errorf("metrics = %s", data)
	}
}

func TestLinesJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dog.rb", dogSource)
	out, _, err := execute(t, "", "lines", "--format", "json", path)
	if err != nil {
		t.Fatal(err)
	}
	var lines []diagfmt.LineOutput
	if err := json.Unmarshal([]byte(out), &lines); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(lines) != 3 || lines[1].Keyword != 1 || lines[2].Keyword != -1 {
		t.Errorf("lines = %+v", lines)
	}
}

func TestLoadDiagnosesSyntaxError(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "ok.rb", "def ok\nend\n")
	bad := writeFile(t, dir, "dog.rb", dogSource)

	out, errOut, err := execute(t, "", "load", good, bad)
	if !errors.Is(err, errSyntaxFound) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, good+": loaded") {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(errOut, bad) || !strings.Contains(errOut, "SYN2002") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execute(t, "", "version", "--format", "json", "--full")
	if err != nil {
		t.Fatal(err)
	}
	var p versionPayload
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatal(err)
	}
	if p.Tool != "faultline" || p.Version == "" || p.GitCommit == "" || p.BuildDate == "" {
		t.Errorf("payload = %+v", p)
	}
}

func TestVersionYAML(t *testing.T) {
	out, _, err := execute(t, "", "version", "--format", "yaml", "--hash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "tool: faultline") || !strings.Contains(out, "git_commit:") {
		t.Errorf("yaml = %q", out)
	}
	if strings.Contains(out, "build_date") {
		t.Errorf("date printed without --date: %q", out)
	}
}

func TestVersionRejectsFormat(t *testing.T) {
	if _, _, err := execute(t, "", "version", "--format", "xml"); err == nil {
		t.Error("expected an error for --format xml")
	}
}

func TestParseSwitch(t *testing.T) {
	tests := []struct {
		in      string
		want    autoSwitch
		wantErr bool
	}{
		{"", switchAuto, false},
		{"AUTO", switchAuto, false},
		{" on ", switchOn, false},
		{"never", switchOff, false},
		{"sometimes", switchAuto, true},
	}
	for _, tt := range tests {
		got, err := parseSwitch("ui", tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseSwitch(%q) = %v, %v", tt.in, got, err)
		}
	}
	if !switchOn.enabled() || switchOff.enabled(os.Stdout) {
		t.Error("on and off must ignore terminals")
	}
	// файл во временном каталоге терминалом не бывает
	f, err := os.CreateTemp(t.TempDir(), "tty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if switchAuto.enabled(f) {
		t.Error("auto enabled for a regular file")
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, in := range []string{"", "debug", "INFO", "warn", "error"} {
		if _, err := parseLogLevel(in); err != nil {
			t.Errorf("parseLogLevel(%q) = %v", in, err)
		}
	}
	if _, err := parseLogLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestApplyFlagsOracleCommand(t *testing.T) {
	resetFlags(rootCmd)
	if err := checkCmd.Flags().Set("oracle-cmd", "ruby -wc"); err != nil {
		t.Fatal(err)
	}
	defer resetFlags(rootCmd)

	cfg := config.Default()
	if err := applyFlags(checkCmd, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Oracle.Kind != oracle.KindCommand || strings.Join(cfg.Oracle.Command, " ") != "ruby -wc" {
		t.Errorf("oracle = %+v", cfg.Oracle)
	}
	if cfg.Output.Format != "pretty" {
		t.Errorf("unchanged flags must keep the config value, format = %q", cfg.Output.Format)
	}
}

func TestCodes(t *testing.T) {
	out, _, err := execute(t, "", "codes", "syn2002", "3001")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "SYN2002") || !strings.Contains(lines[1], "Search timed out") {
		t.Errorf("codes = %q", out)
	}
	if _, _, err := execute(t, "", "codes", "SYN9"); err == nil {
		t.Error("expected an error for an unknown code")
	}
}

func TestCheckTreeSitterOracleFlag(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ok.rb", "def ok\n  1\nend\n")
	_, _, err := execute(t, "", "check", "--color", "off", "--oracle", "tree-sitter", path)
	if oracle.TreeSitterAvailable() {
		if err != nil {
			t.Errorf("err = %v", err)
		}
		return
	}
	if !errors.Is(err, oracle.ErrNoCGO) {
		t.Errorf("err = %v, want ErrNoCGO", err)
	}
}
