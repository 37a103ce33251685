// Package compiler walks a frontend.Program and emits IR
// (internal/ir.FunctionInfo) for the interpreter to run. It never sees
// a specific external parser's AST directly - only internal/frontend's
// parser-agnostic tree - so swapping the front end never touches this
// package.
package compiler

import (
	"fmt"

	"github.com/cwbudde/escript/internal/errs"
	"github.com/cwbudde/escript/internal/frontend"
	"github.com/cwbudde/escript/internal/ir"
)

// bindingKind records where a declared name lives at runtime.
type bindingKind int

const (
	bindLocal bindingKind = iota // indexed local slot (OpGetLocal/OpSetLocal)
	bindEnv                      // environment-record binding (OpGetBinding/OpSetBinding)
)

type binding struct {
	kind bindingKind
	slot int // valid when kind == bindLocal
	vkind frontend.VariableKind
}

// blockScope is one lexical block's binding table. Function bodies and
// each braced block push one.
type blockScope struct {
	bindings map[string]*binding
	slotBase int // NewLocalSlot floor to restore on block exit
}

// loopContext tracks the jump-patch state needed by break/continue,
// including labels attached via a LabelledStatement wrapping the loop.
// continueTarget is -1 while the jump-back target (loop header for
// while, the update expression for a C-style for) is not yet known at
// the point a continue is compiled, in which case its jump offset is
// queued in continueJumps for a deferred patch once the target is
// reached; otherwise continue patches straight to it.
type loopContext struct {
	label          string
	continueJumps  []int
	breakJumps     []int
	continueTarget int
	// isSwitch marks an entry pushed for a switch statement's own
	// unlabelled break target: continue must skip over it and keep
	// searching for an enclosing loop, since `continue` inside a
	// switch always targets the loop around the switch, never the
	// switch itself.
	isSwitch bool
}

// labelContext tracks a label attached to a non-loop statement, which
// only `break label;` (never `continue label;`) may target.
type labelContext struct {
	label      string
	breakJumps []int
}

// Compiler compiles one function body (or the top-level program) into
// a single ir.FunctionInfo. Nested functions get their own Compiler
// sharing the same captured-name analysis.
type Compiler struct {
	builder *ir.Builder
	parent  *Compiler

	scopes []*blockScope
	loops  []*loopContext
	labels []*labelContext

	// pendingLabel is set by LabelledStatement just before it compiles
	// its body, so a loop statement reached directly underneath can
	// claim it as its own loopContext.label; any statement that reads
	// it clears it immediately.
	pendingLabel string

	// captured holds every name this function's body (transitively,
	// except inside nested function bodies themselves) reads or writes
	// from within a nested function/arrow literal - the set of names
	// that must live in an environment-record binding rather than a
	// local slot so a closure can capture them (DESIGN.md's
	// environment-chain generalization). Capture analysis is
	// whole-function granularity, not per-block: a captured `let`
	// inside one block still reserves an env binding even if no other
	// block's same-named local could collide, which only costs an
	// unused binding slot, never correctness.
	captured map[string]bool

	sourceFile string
	inClassCtorWithSuper bool

	// isGenerator marks a `function*`/method* body currently being
	// compiled, so `yield` can be rejected outside of one. Arrows never
	// set this even when lexically nested inside a generator, since
	// `yield` in an arrow body refers to the enclosing function in real
	// JS only when the arrow is itself inside a generator - out of
	// scope here, so an arrow simply inherits isGenerator=false.
	isGenerator bool
}

// Compile compiles a top-level program into its FunctionInfo, named
// "<script>" the way a module's implicit top-level function is named
// in stack traces.
func Compile(prog *frontend.Program) (*ir.FunctionInfo, error) {
	c := &Compiler{
		builder:    ir.NewBuilder("<script>", prog.SourceFile),
		sourceFile: prog.SourceFile,
	}
	c.captured = collectCaptured(prog.Body)
	c.pushScope()
	if err := c.declareHoisted(prog.Body); err != nil {
		return nil, err
	}

	// completionSlot tracks the script's completion value (ECMA-262
	// 16.1's "the return value of evaluating the last Statement"),
	// which falling off the end of a function body's opcodes otherwise
	// always reports as undefined regardless of what ran. Only a
	// top-level ExpressionStatement updates it; a statement's value
	// flowing out of an if/for/block the way real completion records
	// do is not tracked, since almost nothing but a REPL-style "last
	// expression wins" reading actually depends on it here.
	completionSlot := c.builder.NewLocalSlot()
	line, col := 0, 0
	if len(prog.Body) > 0 {
		line, col = c.line(prog.Body[0])
	}
	c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
	c.builder.Emit(ir.OpInitLocal, 0, uint16(completionSlot), line, col)

	for _, stmt := range prog.Body {
		if es, ok := stmt.(*frontend.ExpressionStatement); ok {
			l, cl := c.line(es)
			if err := c.compileExpression(es.Expression); err != nil {
				return nil, err
			}
			c.builder.Emit(ir.OpSetLocal, 0, uint16(completionSlot), l, cl)
			c.builder.EmitSimple(ir.OpPop, l, cl)
			continue
		}
		if err := c.compileStatement(stmt); err != nil {
			return nil, err
		}
	}

	endLine, endCol := line, col
	if len(prog.Body) > 0 {
		endLine, endCol = c.line(prog.Body[len(prog.Body)-1])
	}
	c.builder.Emit(ir.OpGetLocal, 0, uint16(completionSlot), endLine, endCol)
	c.builder.EmitSimple(ir.OpReturn, endLine, endCol)

	c.popScope()
	return c.builder.FinalizeOpcodes(), nil
}

func (c *Compiler) pushScope() {
	c.scopes = append(c.scopes, &blockScope{bindings: make(map[string]*binding), slotBase: c.builder.CurrentSlotFloor()})
}

func (c *Compiler) popScope() {
	top := c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.builder.ReleaseLocalsTo(top.slotBase)
}

func (c *Compiler) currentScope() *blockScope { return c.scopes[len(c.scopes)-1] }

// declare registers name in the current block scope, choosing a local
// slot or an environment binding per the capture analysis, and returns
// the binding so the caller can emit the matching init instruction.
func (c *Compiler) declare(name string, vkind frontend.VariableKind) *binding {
	var b *binding
	if c.captured[name] {
		b = &binding{kind: bindEnv, vkind: vkind}
	} else {
		b = &binding{kind: bindLocal, vkind: vkind, slot: c.builder.NewLocalSlot()}
	}
	c.currentScope().bindings[name] = b
	return b
}

// resolve looks up name from the innermost scope of this function
// outward; nil means "not found in this function" (the caller then
// tries the parent Compiler chain, and ultimately the global object).
func (c *Compiler) resolve(name string) *binding {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if b, ok := c.scopes[i].bindings[name]; ok {
			return b
		}
	}
	return nil
}

func (c *Compiler) line(n frontend.Node) (int, int) {
	p := n.Pos()
	return p.Line, p.Column
}

func (c *Compiler) errorf(n frontend.Node, format string, args ...any) error {
	pos := n.Pos()
	return errs.NewInternal("compiler: "+format+" (line %d)", append(args, pos.Line)...)
}

// takeLabel consumes and clears any label a LabelledStatement just
// attached, for a loop's own loopContext to claim.
func (c *Compiler) takeLabel() string {
	l := c.pendingLabel
	c.pendingLabel = ""
	return l
}

// bindingFor resolves name to a binding in the current function, or a
// synthetic environment-record binding when it is not declared in any
// scope this Compiler tracks: an identifier free in the function
// being compiled is either an outer function's captured binding, an
// enclosing block's let/const, or global - all three are reached the
// same way at runtime, by name through the environment chain, so the
// compiler does not need to know which.
func (c *Compiler) bindingFor(name string) *binding {
	if b := c.resolve(name); b != nil {
		return b
	}
	return &binding{kind: bindEnv}
}

func (c *Compiler) currentLoop() *loopContext {
	if len(c.loops) == 0 {
		return nil
	}
	return c.loops[len(c.loops)-1]
}

func (c *Compiler) findLoop(label string) *loopContext {
	for i := len(c.loops) - 1; i >= 0; i-- {
		if label == "" || c.loops[i].label == label {
			return c.loops[i]
		}
	}
	return nil
}

// findContinueLoop is like findLoop but skips switch entries, since a
// bare or labelled continue always targets an enclosing loop.
func (c *Compiler) findContinueLoop(label string) *loopContext {
	for i := len(c.loops) - 1; i >= 0; i-- {
		if c.loops[i].isSwitch {
			continue
		}
		if label == "" || c.loops[i].label == label {
			return c.loops[i]
		}
	}
	return nil
}

func (c *Compiler) findLabel(label string) *labelContext {
	for i := len(c.labels) - 1; i >= 0; i-- {
		if c.labels[i].label == label {
			return c.labels[i]
		}
	}
	return nil
}

// emitGetBinding/emitSetBinding/emitInitBinding interpret a binding,
// local or environment-record, consistently across statement and
// expression codegen. name is needed even for local slots so callers
// can share one call site; it is only encoded into the instruction
// for the environment-record path.
func (c *Compiler) emitGetBinding(name string, b *binding, line, col int) {
	if b.kind == bindLocal {
		c.builder.Emit(ir.OpGetLocal, 0, uint16(b.slot), line, col)
		return
	}
	c.builder.Emit(ir.OpGetBinding, 0, uint16(c.builder.AddStringConstant(name)), line, col)
}

func (c *Compiler) emitSetBinding(name string, b *binding, line, col int) {
	if b.kind == bindLocal {
		c.builder.Emit(ir.OpSetLocal, 0, uint16(b.slot), line, col)
		return
	}
	c.builder.Emit(ir.OpSetBinding, 0, uint16(c.builder.AddStringConstant(name)), line, col)
}

func (c *Compiler) emitInitBinding(name string, b *binding, line, col int) {
	if b.kind == bindLocal {
		c.builder.Emit(ir.OpInitLocal, 0, uint16(b.slot), line, col)
		return
	}
	c.builder.Emit(ir.OpInitBinding, 0, uint16(c.builder.AddStringConstant(name)), line, col)
}

// emitDeclare emits the hoisting/declaration opcode for a fresh
// environment-record binding (only meaningful when b.kind == bindEnv;
// local slots need no declare step, NewLocalSlot already reserved the
// slot).
func (c *Compiler) emitDeclare(name string, vkind frontend.VariableKind, line, col int) {
	idx := uint16(c.builder.AddStringConstant(name))
	switch vkind {
	case frontend.VarKindVar:
		c.builder.Emit(ir.OpDeclareVar, 0, idx, line, col)
	case frontend.VarKindLet:
		c.builder.Emit(ir.OpDeclareLet, 0, idx, line, col)
	case frontend.VarKindConst:
		c.builder.Emit(ir.OpDeclareConst, 0, idx, line, col)
	}
}

var _ = fmt.Sprintf // this file has no other use of its fmt import
