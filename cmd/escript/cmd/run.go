package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/escript/internal/compiler"
	"github.com/cwbudde/escript/internal/frontend"
	"github.com/cwbudde/escript/internal/interp"
	"github.com/cwbudde/escript/internal/ir"
	"github.com/cwbudde/escript/internal/realm"
	"github.com/spf13/cobra"
)

var (
	runEvalExpr string
	runDumpIR   bool
	noOptimize  bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an ECMAScript file or expression",
	Long: `Execute an ECMAScript program from a file or inline expression.

Examples:
  # Run a script file
  escript run script.js

  # Evaluate an inline expression
  escript run -e "1 + 2"

  # Run with the compiled IR dumped before execution
  escript run --dump-ir script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&runDumpIR, "dump-ir", false, "print the compiled IR before executing")
	runCmd.Flags().BoolVar(&noOptimize, "no-optimize", false, "skip the constant-folding pass")
}

func runScript(_ *cobra.Command, args []string) error {
	source, sourceFile, err := readSource(runEvalExpr, args)
	if err != nil {
		return err
	}

	fi, err := compileSource(source, sourceFile)
	if err != nil {
		return err
	}

	if runDumpIR {
		ir.Disassemble(os.Stdout, fi)
	}

	agent := realm.NewAgent(0)
	r := agent.NewRealm()

	result, err := interp.RunProgram(r, fi)
	if err != nil {
		return fmt.Errorf("%s: %w", sourceFile, err)
	}

	fmt.Println(result.DebugString())
	return nil
}

// readSource resolves the -e flag against a positional file argument:
// exactly one of the two must be given.
func readSource(evalExpr string, args []string) (source, sourceFile string, err error) {
	if evalExpr != "" {
		if len(args) > 0 {
			return "", "", fmt.Errorf("cannot combine -e with a file argument")
		}
		return evalExpr, "<eval>", nil
	}
	if len(args) == 0 {
		return "", "", fmt.Errorf("expected a file argument or -e")
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return string(content), args[0], nil
}

func compileSource(source, sourceFile string) (*ir.FunctionInfo, error) {
	prog, err := frontend.Parse(source, sourceFile)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	fi, err := compiler.Compile(prog)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}
	if !noOptimize {
		ir.Optimize(fi)
	}
	return fi, nil
}
