package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/escript/internal/compiler"
	"github.com/cwbudde/escript/internal/frontend"
	"github.com/cwbudde/escript/internal/frontend/tsvalidate"
	"github.com/cwbudde/escript/internal/interp"
	"github.com/cwbudde/escript/internal/ir"
	"github.com/cwbudde/escript/internal/realm"
	"github.com/cwbudde/escript/internal/value"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	test262Root      string
	test262Single    string
	test262ParseOnly bool
)

var test262Cmd = &cobra.Command{
	Use:   "test262",
	Short: "Run test262 conformance cases against the engine",
	Long: `Run test262 conformance cases against the engine.

Examples:
  # Run the cases given as arguments, as paths relative to the test262 root
  escript test262 --root /path/to/test262 test/language/types/number/S8.5_A1.js

  # Run a single case, given as a path relative to the test262 root
  escript test262 --root /path/to/test262 --single test/language/types/number/S8.5_A1.js

  # Only cross-check that each case parses, skip compiling/running it
  escript test262 --root /path/to/test262 --parseOnly test/language/types/number/S8.5_A1.js`,
	RunE: runTest262,
}

func init() {
	rootCmd.AddCommand(test262Cmd)

	test262Cmd.Flags().StringVar(&test262Root, "root", "", "path to a test262 checkout")
	test262Cmd.Flags().StringVar(&test262Single, "single", "", "run one test case, given as a path relative to -root")
	test262Cmd.Flags().BoolVar(&test262ParseOnly, "parseOnly", false, "only run the tree-sitter syntax cross-check, skip compile/execute")
	test262Cmd.MarkFlagRequired("root")
}

// test262Metadata is the subset of a test262 case's /*--- ... ---*/
// YAML frontmatter this driver understands.
type test262Metadata struct {
	Negative struct {
		Phase string `yaml:"phase"`
		Type  string `yaml:"type"`
	} `yaml:"negative"`
	Includes []string `yaml:"includes"`
	Flags    []string `yaml:"flags"`
}

func (m test262Metadata) noStrict() bool {
	return contains(m.Flags, "noStrict") || contains(m.Flags, "raw") || contains(m.Flags, "module")
}

func (m test262Metadata) onlyStrict() bool {
	return contains(m.Flags, "onlyStrict")
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func parseTest262Metadata(src []byte) (test262Metadata, error) {
	var mt test262Metadata
	start := bytes.Index(src, []byte("/*---"))
	if start == -1 {
		return mt, nil
	}
	rest := src[start+5:]
	end := bytes.Index(rest, []byte("---*/"))
	if end == -1 {
		return mt, fmt.Errorf("unterminated metadata comment")
	}
	err := yaml.Unmarshal(rest[:end], &mt)
	return mt, err
}

type test262Outcome struct {
	Path       string
	StrictMode bool
	Success    bool
	Err        error
}

func runTest262(_ *cobra.Command, args []string) error {
	harnessSta, err := os.ReadFile(filepath.Join(test262Root, "harness", "sta.js"))
	if err != nil {
		return fmt.Errorf("reading harness/sta.js: %w", err)
	}
	harnessAssert, err := os.ReadFile(filepath.Join(test262Root, "harness", "assert.js"))
	if err != nil {
		return fmt.Errorf("reading harness/assert.js: %w", err)
	}

	var cases []string
	if test262Single != "" {
		cases = []string{test262Single}
	} else {
		cases = args
	}
	if len(cases) == 0 {
		return fmt.Errorf("expected -single or one or more test case paths")
	}

	var outcomes []test262Outcome
	for _, rel := range cases {
		outcomes = append(outcomes, runTest262Case(rel, harnessSta, harnessAssert)...)
	}

	successes, failures := 0, 0
	for _, o := range outcomes {
		if o.Success {
			successes++
		} else {
			failures++
		}
	}

	for _, o := range outcomes {
		if o.Success {
			continue
		}
		mode := "sloppy"
		if o.StrictMode {
			mode = "strict"
		}
		fmt.Printf("FAIL %s (%s): %v\n", o.Path, mode, o.Err)
	}
	fmt.Printf("\n%d total, %d passed, %d failed\n", len(outcomes), successes, failures)
	if failures > 0 {
		return fmt.Errorf("%d test262 case(s) failed", failures)
	}
	return nil
}

// runTest262Case runs one case path in both sloppy and strict mode,
// honoring onlyStrict/noStrict metadata flags the way the harness
// requires: a case skipped by metadata reports as a success, matching
// the teacher's own "case disabled in metadata" treatment.
func runTest262Case(rel string, harnessSta, harnessAssert []byte) []test262Outcome {
	abs := rel
	if !filepath.IsAbs(rel) {
		abs = filepath.Join(test262Root, rel)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return []test262Outcome{{Path: rel, Err: fmt.Errorf("reading %s: %w", abs, err)}}
	}

	mt, err := parseTest262Metadata(src)
	if err != nil {
		e := fmt.Errorf("parsing metadata: %w", err)
		return []test262Outcome{
			{Path: rel, StrictMode: true, Err: e},
			{Path: rel, StrictMode: false, Err: e},
		}
	}

	var outcomes []test262Outcome
	if mt.onlyStrict() {
		outcomes = append(outcomes, test262Outcome{Path: rel, StrictMode: false, Success: true})
	} else {
		outcomes = append(outcomes, runTest262Mode(rel, abs, src, mt, harnessSta, harnessAssert, false))
	}
	if mt.noStrict() {
		outcomes = append(outcomes, test262Outcome{Path: rel, StrictMode: true, Success: true})
	} else {
		outcomes = append(outcomes, runTest262Mode(rel, abs, src, mt, harnessSta, harnessAssert, true))
	}
	return outcomes
}

func runTest262Mode(rel, abs string, src []byte, mt test262Metadata, harnessSta, harnessAssert []byte, strict bool) test262Outcome {
	text := string(src)
	if strict {
		text = "\"use strict\";\n" + text
	}

	if test262ParseOnly {
		if err := tsvalidate.ValidateBytes(abs, []byte(text)); err != nil {
			if mt.Negative.Type != "" {
				return test262Outcome{Path: rel, StrictMode: strict, Success: true}
			}
			return test262Outcome{Path: rel, StrictMode: strict, Err: err}
		}
		return test262Outcome{Path: rel, StrictMode: strict, Success: true}
	}

	agent := realm.NewAgent(0)
	r := agent.NewRealm()

	includeSources := []string{string(harnessSta), string(harnessAssert)}
	for _, inc := range mt.Includes {
		b, err := os.ReadFile(filepath.Join(test262Root, "harness", inc))
		if err != nil {
			return test262Outcome{Path: rel, StrictMode: strict, Err: fmt.Errorf("reading include %s: %w", inc, err)}
		}
		includeSources = append(includeSources, string(b))
	}

	for i, s := range includeSources {
		if _, err := compileAndRun(r, s, fmt.Sprintf("%s#include%d", abs, i)); err != nil {
			return test262Outcome{Path: rel, StrictMode: strict, Err: fmt.Errorf("running harness include: %w", err)}
		}
	}

	result, err := compileAndRun(r, text, abs)
	success, outErr := judgeTest262Result(mt, result, err)
	return test262Outcome{Path: rel, StrictMode: strict, Success: success, Err: outErr}
}

func compileAndRun(r *realm.Realm, source, sourceFile string) (value.Value, error) {
	prog, err := frontend.Parse(source, sourceFile)
	if err != nil {
		return value.Undefined(), err
	}
	fi, err := compiler.Compile(prog)
	if err != nil {
		return value.Undefined(), err
	}
	ir.Optimize(fi)
	return interp.RunProgram(r, fi)
}

// judgeTest262Result compares an executed case's outcome against its
// negative-test metadata: a case with no negative block must succeed
// cleanly, a case with one must fail: a non-thrown (parse/compile)
// error passes only for a "parse" or "early" phase, and a thrown value
// passes when its own `name` property matches negative.type, whatever
// phase the metadata declares.
func judgeTest262Result(mt test262Metadata, result value.Value, err error) (bool, error) {
	if mt.Negative.Type == "" {
		if err != nil {
			return false, err
		}
		return true, nil
	}

	if err == nil {
		return false, fmt.Errorf("expected a %s (%s) but the case completed normally with %s",
			mt.Negative.Type, mt.Negative.Phase, result.DebugString())
	}

	thrown, ok := err.(*interp.ThrownValue)
	if !ok {
		// A parse/compile-time error stands in for a "parse"-phase
		// negative regardless of Type, since this driver does not
		// thread SyntaxError/ReferenceError distinctions through the
		// frontend's own error values yet.
		if mt.Negative.Phase == "parse" || mt.Negative.Phase == "early" {
			return true, nil
		}
		return false, fmt.Errorf("expected a runtime %s but got a %s-phase error: %w", mt.Negative.Type, mt.Negative.Phase, err)
	}

	obj := thrown.Value.AsObject()
	if obj == nil {
		return false, fmt.Errorf("thrown value %s is not an object, cannot check its name", thrown.Value.DebugString())
	}
	nameVal, getErr := obj.Get(value.StringKey("name"), thrown.Value)
	if getErr != nil {
		return false, fmt.Errorf("reading thrown error's name: %w", getErr)
	}
	name := nameVal.AsString()
	if name != mt.Negative.Type {
		return false, fmt.Errorf("expected thrown %s, got %s", mt.Negative.Type, name)
	}
	return true, nil
}
