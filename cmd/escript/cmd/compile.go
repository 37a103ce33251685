package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/escript/internal/frontend/tsvalidate"
	"github.com/cwbudde/escript/internal/ir"
	"github.com/spf13/cobra"
)

var (
	compileOutput     string
	compileDisasm     bool
	compileSyntaxOnly bool
	compileVerbose    bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile an ECMAScript file to bytecode",
	Long: `Compile an ECMAScript program to bytecode and save it as a .esc file.

Examples:
  # Compile a script to bytecode
  escript compile script.js

  # Compile with custom output file
  escript compile script.js -o output.esc

  # Compile and show disassembled bytecode
  escript compile script.js --disasm

  # Only run the tree-sitter syntax cross-check, skip codegen
  escript compile script.js --syntax-only`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file (default: <input>.esc)")
	compileCmd.Flags().BoolVar(&compileDisasm, "disasm", false, "print disassembled bytecode after compilation")
	compileCmd.Flags().BoolVar(&compileSyntaxOnly, "syntax-only", false, "only run the tree-sitter syntax validator, skip codegen")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func compileScript(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	source := string(content)

	if compileSyntaxOnly {
		return tsvalidate.ValidateBytes(filename, content)
	}

	if err := tsvalidate.ValidateBytes(filename, content); err != nil && compileVerbose {
		fmt.Fprintf(os.Stderr, "tree-sitter cross-check: %v\n", err)
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	fi, err := compileSource(source, filename)
	if err != nil {
		return err
	}

	if compileDisasm {
		ir.Disassemble(os.Stdout, fi)
	}

	out := compileOutput
	if out == "" {
		out = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".esc"
	}
	if err := os.WriteFile(out, ir.Encode(fi), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
	}
	return nil
}
