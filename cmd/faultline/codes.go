package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"faultline/internal/diag"
)

var codesCmd = &cobra.Command{
	Use:   "codes [CODE...]",
	Short: "List diagnostic codes",
	Long:  `Print diagnostic codes with their titles; with arguments, only the named codes (SYN2002 or 2002)`,
	RunE:  runCodes,
}

func runCodes(cmd *cobra.Command, args []string) error {
	codes := diag.Codes()
	if len(args) > 0 {
		codes = codes[:0:0]
		for _, a := range args {
			c, ok := diag.ParseCode(a)
			if !ok {
				return fmt.Errorf("unknown diagnostic code: %q", a)
			}
			codes = append(codes, c)
		}
	}
	out := cmd.OutOrStdout()
	for _, c := range codes {
		fmt.Fprintf(out, "%-9s %s\n", c.ID(), c.Title())
	}
	return nil
}
