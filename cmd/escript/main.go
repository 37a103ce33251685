// Command escript is a bytecode compiler and interpreter for a subset
// of ECMAScript.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/escript/cmd/escript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
