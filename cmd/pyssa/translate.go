package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ir8co/pyssa/bytecode"
	"github.com/ir8co/pyssa/irprint"
	"github.com/ir8co/pyssa/translator"
)

// newTranslateCmd builds the `translate` subcommand: load a bytecode
// fixture, run the full translator + Module Assembler, and print the
// resulting Textual IR (spec §6.3 "translate").
func newTranslateCmd() *cobra.Command {
	var moduleName string
	var outPath string

	cmd := &cobra.Command{
		Use:   "translate <fixture.yaml>",
		Short: "Translate a bytecode fixture into Textual IR",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			top, err := bytecode.LoadFixture(path)
			if err != nil {
				return err
			}
			name := moduleName
			if name == "" {
				name = top.Name
			}
			if name == "" {
				name = "module"
			}
			mod, err := translator.ToModule(path, name, top)
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}
			rendered := irprint.Print(mod)
			if outPath == "" {
				fmt.Print(rendered)
				return nil
			}
			return os.WriteFile(outPath, []byte(rendered), 0o644)
		},
	}
	cmd.Flags().StringVarP(&moduleName, "module", "m", "", "module name prefixing every qualified name (default: the code object's own name)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the rendered IR to this file instead of stdout")
	return cmd
}
