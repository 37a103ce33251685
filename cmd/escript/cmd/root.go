package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "escript",
	Short: "A bytecode compiler and interpreter for a subset of ECMAScript",
	Long: `escript compiles ECMAScript source to a custom bytecode IR and
executes it on a stack-based interpreter built around the value,
property descriptor, and environment record model of ECMA-262.

The external parser (otto) covers ECMAScript 5; the compiler's own
internal/frontend tree is parser-agnostic, so later front ends can
extend what syntax is accepted without touching the compiler or VM.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built: %s
`, GitCommit, BuildDate))
}
