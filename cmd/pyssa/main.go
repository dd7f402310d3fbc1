// Command pyssa translates a stack-based dynamic-language bytecode code
// object into a typed, basic-block SSA Textual IR module, and provides a
// couple of small interactive tools for inspecting the result.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
