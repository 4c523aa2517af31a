package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// autoSwitch is the value of an on|off|auto flag such as --color and --ui.
type autoSwitch uint8

const (
	switchAuto autoSwitch = iota
	switchOn
	switchOff
)

func parseSwitch(flag, value string) (autoSwitch, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return switchAuto, nil
	case "on", "always":
		return switchOn, nil
	case "off", "never":
		return switchOff, nil
	}
	return switchAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// enabled resolves auto to true when every file in ttys is a terminal.
func (s autoSwitch) enabled(ttys ...*os.File) bool {
	switch s {
	case switchOn:
		return true
	case switchOff:
		return false
	}
	for _, f := range ttys {
		if !isTerminal(f) {
			return false
		}
	}
	return true
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color against stdout.
func useColor(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	sw, err := parseSwitch("color", value)
	if err != nil {
		return false, err
	}
	return sw.enabled(os.Stdout), nil
}

// useTUI resolves --ui. The progress view needs both streams on a terminal
// so that piped reports stay clean.
func useTUI(value string) (bool, error) {
	sw, err := parseSwitch("ui", value)
	if err != nil {
		return false, err
	}
	return sw.enabled(os.Stdout, os.Stderr), nil
}
