package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"faultline/internal/version"
)

const versionTagline = "every error has a block it came from"

// versionPayload is the json and yaml form of `faultline version`.
type versionPayload struct {
	Tool       string `json:"tool" yaml:"tool"`
	Version    string `json:"version" yaml:"version"`
	Tagline    string `json:"tagline" yaml:"tagline"`
	GoVersion  string `json:"go_version,omitempty" yaml:"go_version,omitempty"`
	GitCommit  string `json:"git_commit,omitempty" yaml:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty" yaml:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty" yaml:"build_date,omitempty"`
	Modified   bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show faultline build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("message", false, "include git commit message")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json|yaml)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" && format != "yaml" {
		return fmt.Errorf("unsupported format %q (must be pretty, json or yaml)", format)
	}
	want := map[string]bool{}
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}
	for _, name := range []string{"hash", "message", "date"} {
		on, err := cmd.Flags().GetBool(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		want[name] = on || full
	}

	info := version.Read()
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(buildVersionPayload(info, want, full))
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(buildVersionPayload(info, want, full)); err != nil {
			return err
		}
		return enc.Close()
	}
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}
	printVersion(out, info, want, colored)
	return nil
}

func buildVersionPayload(info version.Info, want map[string]bool, full bool) versionPayload {
	p := versionPayload{Tool: "faultline", Version: info.Version, Tagline: versionTagline}
	if want["hash"] {
		p.GitCommit = orUnknown(info.GitCommit)
		p.Modified = info.Modified
	}
	if want["message"] {
		p.GitMessage = orUnknown(info.GitMessage)
	}
	if want["date"] {
		p.BuildDate = orUnknown(info.BuildDate)
	}
	if full {
		p.GoVersion = info.GoVersion
	}
	return p
}

func printVersion(out io.Writer, info version.Info, want map[string]bool, colored bool) {
	fmt.Fprintf(out, "faultline %s: %s\n", version.Colored(colored), versionTagline)
	shown := false
	if want["hash"] {
		commit := orUnknown(info.ShortCommit())
		if info.Modified {
			commit += " (modified)"
		}
		fmt.Fprintf(out, "commit:  %s\n", commit)
		shown = true
	}
	if want["message"] {
		fmt.Fprintf(out, "message: %s\n", orUnknown(info.GitMessage))
		shown = true
	}
	if want["date"] {
		fmt.Fprintf(out, "built:   %s with %s\n", orUnknown(info.BuildDate), info.GoVersion)
		shown = true
	}
	if !shown {
		fmt.Fprintln(out, "set --hash, --message, --date, or --full for more build details")
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
