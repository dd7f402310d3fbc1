package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ir8co/pyssa/builtinreg"
)

// newBuiltinsCmd builds the `builtins` subcommand: print the full fixed
// Builtin Registry (spec §4.2) as reference documentation, independent of
// any particular translation's closure.
func newBuiltinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "builtins",
		Short: "List every builtin the translator may emit a reference to",
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, d := range builtinreg.Reference() {
				operands := make([]string, len(d.Operands))
				for i, o := range d.Operands {
					operands[i] = o.String()
				}
				if d.Variadic {
					operands = append(operands, "...")
				}
				fmt.Printf("declare $builtins.%s(%s) : %s\n", d.Name, strings.Join(operands, ", "), d.Returns)
			}
			return nil
		},
	}
}
