package main

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// newRootCmd builds the pyssa command tree: translate, builtins, explore.
// This replaces the teacher's flag-based main.go (flag.String/flag.Bool)
// with a Cobra command tree, the CLI shape used by raymyers-ralph-cc-go
// and sunholo-data-ailang's driver commands.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "pyssa",
		Short:   "Translate bytecode code objects into typed SSA Textual IR",
		Version: version,
		SilenceUsage: true,
	}
	root.AddCommand(newTranslateCmd())
	root.AddCommand(newBuiltinsCmd())
	root.AddCommand(newExploreCmd())
	return root
}
