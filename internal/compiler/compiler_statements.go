package compiler

import (
	"github.com/cwbudde/escript/internal/frontend"
	"github.com/cwbudde/escript/internal/ir"
)

// identifierName extracts a plain identifier name from a binding
// target, rejecting destructuring patterns cleanly.
func (c *Compiler) identifierName(e frontend.Expression) (string, error) {
	if id, ok := e.(*frontend.Identifier); ok {
		return id.Name, nil
	}
	return "", c.errorf(e, "destructuring targets are not supported")
}

// declareHoisted runs the two hoisting passes a function body (or the
// top-level program) needs before any statement is compiled: a deep
// walk declaring every `var` name reachable without crossing into a
// nested function/class body, and a shallow walk declaring and
// initializing every function declaration directly in body.
func (c *Compiler) declareHoisted(body []frontend.Statement) error {
	if err := c.hoistVars(body); err != nil {
		return err
	}
	return c.hoistFunctions(body)
}

func (c *Compiler) declareVarName(name string, line, col int) {
	if c.resolve(name) != nil {
		return
	}
	b := c.declare(name, frontend.VarKindVar)
	if b.kind == bindEnv {
		c.emitDeclare(name, frontend.VarKindVar, line, col)
	}
}

func (c *Compiler) hoistVars(body []frontend.Statement) error {
	for _, stmt := range body {
		if err := c.hoistVarsStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// hoistVarsStmt recurses into every statement shape that shares the
// enclosing function's var scope. It never looks inside a nested
// FunctionDeclaration/FunctionExpression/ClassDeclaration body - those
// get their own Compiler and their own hoisting pass.
func (c *Compiler) hoistVarsStmt(stmt frontend.Statement) error {
	line, col := c.line(stmt)
	switch s := stmt.(type) {
	case *frontend.VariableStatement:
		if s.Kind != frontend.VarKindVar {
			return nil
		}
		for _, d := range s.Declarations {
			name, err := c.identifierName(d.Target)
			if err != nil {
				return err
			}
			c.declareVarName(name, line, col)
		}
	case *frontend.BlockStatement:
		return c.hoistVars(s.Body)
	case *frontend.IfStatement:
		if err := c.hoistVarsStmt(s.Consequent); err != nil {
			return err
		}
		if s.Alternate != nil {
			return c.hoistVarsStmt(s.Alternate)
		}
	case *frontend.ForStatement:
		if vs, ok := s.Init.(*frontend.VariableStatement); ok {
			if err := c.hoistVarsStmt(vs); err != nil {
				return err
			}
		}
		return c.hoistVarsStmt(s.Body)
	case *frontend.ForInStatement:
		if s.IsDecl && s.Kind == frontend.VarKindVar {
			name, err := c.identifierName(s.Left)
			if err != nil {
				return err
			}
			c.declareVarName(name, line, col)
		}
		return c.hoistVarsStmt(s.Body)
	case *frontend.ForOfStatement:
		if s.IsDecl && s.Kind == frontend.VarKindVar {
			name, err := c.identifierName(s.Left)
			if err != nil {
				return err
			}
			c.declareVarName(name, line, col)
		}
		return c.hoistVarsStmt(s.Body)
	case *frontend.WhileStatement:
		return c.hoistVarsStmt(s.Body)
	case *frontend.DoWhileStatement:
		return c.hoistVarsStmt(s.Body)
	case *frontend.WithStatement:
		return c.hoistVarsStmt(s.Body)
	case *frontend.LabelledStatement:
		return c.hoistVarsStmt(s.Body)
	case *frontend.SwitchStatement:
		for _, cs := range s.Cases {
			for _, st := range cs.Consequent {
				if err := c.hoistVarsStmt(st); err != nil {
					return err
				}
			}
		}
	case *frontend.TryStatement:
		if err := c.hoistVars(s.Block.Body); err != nil {
			return err
		}
		if s.Handler != nil {
			if err := c.hoistVars(s.Handler.Body.Body); err != nil {
				return err
			}
		}
		if s.Finalizer != nil {
			return c.hoistVars(s.Finalizer.Body)
		}
	}
	return nil
}

// hoistFunctions declares and immediately builds a closure for every
// function declaration directly in body (not recursing into nested
// blocks - a block hoists its own directly-contained declarations when
// it is compiled, see compileBlockBody).
func (c *Compiler) hoistFunctions(body []frontend.Statement) error {
	for _, stmt := range body {
		fd, ok := stmt.(*frontend.FunctionDeclaration)
		if !ok {
			continue
		}
		line, col := c.line(fd)
		childIdx, err := c.compileFunctionLiteral(fd.Name, fd.Params, fd.Body, nil, fd.IsGenerator, fd.IsAsync, false)
		if err != nil {
			return err
		}
		b := c.declare(fd.Name, frontend.VarKindVar)
		if b.kind == bindEnv {
			c.emitDeclare(fd.Name, frontend.VarKindVar, line, col)
		}
		c.builder.Emit(ir.OpMakeClosure, 0, uint16(childIdx), line, col)
		c.emitInitBinding(fd.Name, b, line, col)
	}
	return nil
}

// compileBlockBody compiles a braced block's statements in their own
// lexical scope, shallow-hoisting any function declarations directly
// inside it first. var hoisting is not repeated here: it already
// happened once, deeply, at the enclosing function's entry.
func (c *Compiler) compileBlockBody(body []frontend.Statement) error {
	c.pushScope()
	defer c.popScope()
	if err := c.hoistFunctions(body); err != nil {
		return err
	}
	for _, s := range body {
		if err := c.compileStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileVariableStatement(s *frontend.VariableStatement) error {
	for _, d := range s.Declarations {
		line, col := c.line(d)
		name, err := c.identifierName(d.Target)
		if err != nil {
			return err
		}
		if s.Kind == frontend.VarKindVar {
			b := c.resolve(name)
			if b == nil {
				b = c.declare(name, frontend.VarKindVar)
			}
			if d.Initializer != nil {
				if err := c.compileExpression(d.Initializer); err != nil {
					return err
				}
				c.emitSetBinding(name, b, line, col)
				c.builder.EmitSimple(ir.OpPop, line, col)
			}
			continue
		}
		b := c.declare(name, s.Kind)
		if b.kind == bindEnv {
			c.emitDeclare(name, s.Kind, line, col)
		}
		if d.Initializer != nil {
			if err := c.compileExpression(d.Initializer); err != nil {
				return err
			}
		} else {
			c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
		}
		c.emitInitBinding(name, b, line, col)
	}
	return nil
}

func (c *Compiler) compileStatement(stmt frontend.Statement) error {
	switch s := stmt.(type) {
	case *frontend.ExpressionStatement:
		line, col := c.line(s)
		if err := c.compileExpression(s.Expression); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpPop, line, col)
		return nil
	case *frontend.VariableStatement:
		return c.compileVariableStatement(s)
	case *frontend.BlockStatement:
		return c.compileBlockBody(s.Body)
	case *frontend.EmptyStatement:
		return nil
	case *frontend.DebuggerStatement:
		line, col := c.line(s)
		c.builder.EmitSimple(ir.OpDebugger, line, col)
		return nil
	case *frontend.IfStatement:
		return c.compileIf(s)
	case *frontend.ForStatement:
		return c.compileFor(s)
	case *frontend.ForInStatement:
		return c.compileForIn(s)
	case *frontend.ForOfStatement:
		return c.compileForOf(s)
	case *frontend.WhileStatement:
		return c.compileWhile(s)
	case *frontend.DoWhileStatement:
		return c.compileDoWhile(s)
	case *frontend.BreakStatement:
		return c.compileBreak(s)
	case *frontend.ContinueStatement:
		return c.compileContinue(s)
	case *frontend.ReturnStatement:
		line, col := c.line(s)
		if s.Argument != nil {
			if err := c.compileExpression(s.Argument); err != nil {
				return err
			}
			c.builder.EmitSimple(ir.OpReturn, line, col)
		} else {
			c.builder.EmitSimple(ir.OpReturnUndef, line, col)
		}
		return nil
	case *frontend.WithStatement:
		// No environment-record opcode exists to push an object
		// environment at runtime (internal/env.ObjectRecord is only
		// ever constructed for the global object), and spec.md never
		// calls for `with`, so it is rejected here rather than given a
		// half-working lowering.
		return c.errorf(s, "with statements are not supported")
	case *frontend.LabelledStatement:
		return c.compileLabelled(s)
	case *frontend.SwitchStatement:
		return c.compileSwitch(s)
	case *frontend.ThrowStatement:
		line, col := c.line(s)
		if err := c.compileExpression(s.Argument); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpThrow, line, col)
		return nil
	case *frontend.TryStatement:
		return c.compileTry(s)
	case *frontend.FunctionDeclaration:
		return nil // already hoisted
	case *frontend.ClassDeclaration:
		return c.compileClassDeclaration(s)
	default:
		return c.errorf(stmt, "unsupported statement %T", stmt)
	}
}

func (c *Compiler) compileIf(s *frontend.IfStatement) error {
	line, col := c.line(s)
	if err := c.compileExpression(s.Test); err != nil {
		return err
	}
	elseJump := c.builder.IfHelper(ir.OpJumpIfFalse, line, col)
	if err := c.compileStatement(s.Consequent); err != nil {
		return err
	}
	if s.Alternate != nil {
		endJump, err := c.builder.IfElseHelper(elseJump, line, col)
		if err != nil {
			return err
		}
		if err := c.compileStatement(s.Alternate); err != nil {
			return err
		}
		return c.builder.PatchJump(endJump)
	}
	return c.builder.PatchJump(elseJump)
}

func (c *Compiler) compileFor(s *frontend.ForStatement) error {
	line, col := c.line(s)
	label := c.takeLabel()
	c.pushScope()
	defer c.popScope()
	if s.Init != nil {
		switch init := s.Init.(type) {
		case *frontend.VariableStatement:
			if err := c.compileVariableStatement(init); err != nil {
				return err
			}
		case frontend.Expression:
			if err := c.compileExpression(init); err != nil {
				return err
			}
			c.builder.EmitSimple(ir.OpPop, line, col)
		}
	}
	loopStart := c.builder.Len()
	hasTest := s.Test != nil
	var exitJump int
	if hasTest {
		if err := c.compileExpression(s.Test); err != nil {
			return err
		}
		exitJump = c.builder.IfHelper(ir.OpJumpIfFalse, line, col)
	}
	lc := &loopContext{label: label, continueTarget: -1}
	c.loops = append(c.loops, lc)
	bodyErr := c.compileStatement(s.Body)
	if bodyErr != nil {
		c.loops = c.loops[:len(c.loops)-1]
		return bodyErr
	}
	updatePos := c.builder.Len()
	for _, j := range lc.continueJumps {
		if err := c.builder.PatchJumpTo(j, updatePos); err != nil {
			return err
		}
	}
	if s.Update != nil {
		if err := c.compileExpression(s.Update); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpPop, line, col)
	}
	if err := c.builder.EmitLoop(loopStart, line, col); err != nil {
		return err
	}
	endPos := c.builder.Len()
	if hasTest {
		if err := c.builder.PatchJumpTo(exitJump, endPos); err != nil {
			return err
		}
	}
	for _, j := range lc.breakJumps {
		if err := c.builder.PatchJumpTo(j, endPos); err != nil {
			return err
		}
	}
	c.loops = c.loops[:len(c.loops)-1]
	return nil
}

func (c *Compiler) compileWhile(s *frontend.WhileStatement) error {
	line, col := c.line(s)
	label := c.takeLabel()
	loopStart := c.builder.Len()
	if err := c.compileExpression(s.Test); err != nil {
		return err
	}
	exitJump := c.builder.IfHelper(ir.OpJumpIfFalse, line, col)
	lc := &loopContext{label: label, continueTarget: loopStart}
	c.loops = append(c.loops, lc)
	if err := c.compileStatement(s.Body); err != nil {
		c.loops = c.loops[:len(c.loops)-1]
		return err
	}
	if err := c.builder.EmitLoop(loopStart, line, col); err != nil {
		return err
	}
	endPos := c.builder.Len()
	if err := c.builder.PatchJumpTo(exitJump, endPos); err != nil {
		return err
	}
	for _, j := range lc.breakJumps {
		if err := c.builder.PatchJumpTo(j, endPos); err != nil {
			return err
		}
	}
	c.loops = c.loops[:len(c.loops)-1]
	return nil
}

func (c *Compiler) compileDoWhile(s *frontend.DoWhileStatement) error {
	line, col := c.line(s)
	label := c.takeLabel()
	loopStart := c.builder.Len()
	lc := &loopContext{label: label, continueTarget: -1}
	c.loops = append(c.loops, lc)
	if err := c.compileStatement(s.Body); err != nil {
		c.loops = c.loops[:len(c.loops)-1]
		return err
	}
	testPos := c.builder.Len()
	for _, j := range lc.continueJumps {
		if err := c.builder.PatchJumpTo(j, testPos); err != nil {
			return err
		}
	}
	if err := c.compileExpression(s.Test); err != nil {
		return err
	}
	backJump := c.builder.EmitJump(ir.OpJumpIfTrue, line, col)
	if err := c.builder.PatchJumpTo(backJump, loopStart); err != nil {
		return err
	}
	endPos := c.builder.Len()
	for _, j := range lc.breakJumps {
		if err := c.builder.PatchJumpTo(j, endPos); err != nil {
			return err
		}
	}
	c.loops = c.loops[:len(c.loops)-1]
	return nil
}

// compileForEach drives the shared for-in/for-of loop shape: both
// forms reduce to "get an iterator, then repeatedly call next()",
// differing only in how the source iterator is produced (see
// compileForIn/compileForOf). OpIterNext leaves [value, done] with
// done on top; the done=true exit path never consumes value, so it is
// popped at the dedicated doneLabel landing pad rather than at endPos,
// which break jumps (body already consumed value) also target.
func (c *Compiler) compileForEach(left frontend.Expression, isDecl bool, kind frontend.VariableKind, body frontend.Statement, label string, line, col int) error {
	iterSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(iterSlot), line, col)

	loopStart := c.builder.Len()
	c.builder.Emit(ir.OpGetLocal, 0, uint16(iterSlot), line, col)
	c.builder.EmitSimple(ir.OpIterNext, line, col)
	doneJump := c.builder.EmitJump(ir.OpJumpIfTrue, line, col)

	c.pushScope()
	lc := &loopContext{label: label, continueTarget: loopStart}
	c.loops = append(c.loops, lc)

	var err error
	if isDecl {
		var name string
		name, err = c.identifierName(left)
		if err == nil {
			b := c.declare(name, kind)
			if b.kind == bindEnv {
				c.emitDeclare(name, kind, line, col)
			}
			c.emitInitBinding(name, b, line, col)
		}
	} else {
		err = c.compileStoreTarget(left, line, col)
		if err == nil {
			c.builder.EmitSimple(ir.OpPop, line, col)
		}
	}
	if err == nil {
		err = c.compileStatement(body)
	}
	c.popScope()
	c.loops = c.loops[:len(c.loops)-1]
	if err != nil {
		return err
	}

	if err := c.builder.EmitLoop(loopStart, line, col); err != nil {
		return err
	}
	doneLabel := c.builder.Len()
	if err := c.builder.PatchJumpTo(doneJump, doneLabel); err != nil {
		return err
	}
	c.builder.EmitSimple(ir.OpPop, line, col) // discard the leftover value from the done=true exit
	endPos := c.builder.Len()
	for _, j := range lc.breakJumps {
		if err := c.builder.PatchJumpTo(j, endPos); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileForOf(s *frontend.ForOfStatement) error {
	if s.IsAwait {
		return c.errorf(s, "for-await-of is not supported")
	}
	line, col := c.line(s)
	label := c.takeLabel()
	if err := c.compileExpression(s.Right); err != nil {
		return err
	}
	c.builder.EmitSimple(ir.OpGetIterator, line, col)
	return c.compileForEach(s.Left, s.IsDecl, s.Kind, s.Body, label, line, col)
}

func (c *Compiler) compileForIn(s *frontend.ForInStatement) error {
	line, col := c.line(s)
	label := c.takeLabel()
	if err := c.compileExpression(s.Right); err != nil {
		return err
	}
	c.builder.EmitSimple(ir.OpForInKeys, line, col)
	c.builder.EmitSimple(ir.OpGetIterator, line, col)
	return c.compileForEach(s.Left, s.IsDecl, s.Kind, s.Body, label, line, col)
}

func (c *Compiler) compileBreak(s *frontend.BreakStatement) error {
	line, col := c.line(s)
	if lc := c.findLoop(s.Label); lc != nil {
		tok := c.builder.EmitJump(ir.OpJump, line, col)
		lc.breakJumps = append(lc.breakJumps, tok)
		return nil
	}
	if s.Label != "" {
		if lbl := c.findLabel(s.Label); lbl != nil {
			tok := c.builder.EmitJump(ir.OpJump, line, col)
			lbl.breakJumps = append(lbl.breakJumps, tok)
			return nil
		}
	}
	return c.errorf(s, "undefined label %q", s.Label)
}

func (c *Compiler) compileContinue(s *frontend.ContinueStatement) error {
	line, col := c.line(s)
	lc := c.findContinueLoop(s.Label)
	if lc == nil {
		return c.errorf(s, "undefined label %q", s.Label)
	}
	if lc.continueTarget >= 0 {
		tok := c.builder.EmitJump(ir.OpJump, line, col)
		return c.builder.PatchJumpTo(tok, lc.continueTarget)
	}
	tok := c.builder.EmitJump(ir.OpJump, line, col)
	lc.continueJumps = append(lc.continueJumps, tok)
	return nil
}

func (c *Compiler) compileLabelled(s *frontend.LabelledStatement) error {
	switch s.Body.(type) {
	case *frontend.ForStatement, *frontend.ForInStatement, *frontend.ForOfStatement,
		*frontend.WhileStatement, *frontend.DoWhileStatement:
		c.pendingLabel = s.Label
		return c.compileStatement(s.Body)
	default:
		lbl := &labelContext{label: s.Label}
		c.labels = append(c.labels, lbl)
		err := c.compileStatement(s.Body)
		c.labels = c.labels[:len(c.labels)-1]
		if err != nil {
			return err
		}
		endPos := c.builder.Len()
		for _, j := range lbl.breakJumps {
			if err := c.builder.PatchJumpTo(j, endPos); err != nil {
				return err
			}
		}
		return nil
	}
}

// compileSwitch evaluates the discriminant once, tests each case in
// source order with strict equality, and lays out case bodies
// back-to-back in their original order so fallthrough (no break) just
// falls into the next case regardless of where `default` sits among
// them, matching how a switch actually runs.
func (c *Compiler) compileSwitch(s *frontend.SwitchStatement) error {
	line, col := c.line(s)
	if err := c.compileExpression(s.Discriminant); err != nil {
		return err
	}
	discSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(discSlot), line, col)

	sw := &loopContext{label: c.takeLabel(), isSwitch: true}
	c.loops = append(c.loops, sw)
	c.pushScope()

	type caseJump struct {
		jump int
		idx  int
	}
	var tests []caseJump
	defaultIdx := -1
	for i, cs := range s.Cases {
		if cs.Test == nil {
			defaultIdx = i
			continue
		}
		tl, tc := c.line(cs)
		c.builder.Emit(ir.OpGetLocal, 0, uint16(discSlot), tl, tc)
		if err := c.compileExpression(cs.Test); err != nil {
			c.popScope()
			c.loops = c.loops[:len(c.loops)-1]
			return err
		}
		c.builder.EmitSimple(ir.OpStrictEq, tl, tc)
		jump := c.builder.EmitJump(ir.OpJumpIfTrue, tl, tc)
		tests = append(tests, caseJump{jump, i})
	}

	var toDefault int
	hasDefault := defaultIdx >= 0
	if hasDefault {
		toDefault = c.builder.EmitJump(ir.OpJump, line, col)
	}
	noMatchJump := -1
	if !hasDefault {
		noMatchJump = c.builder.EmitJump(ir.OpJump, line, col)
	}

	caseStarts := make([]int, len(s.Cases))
	var stmtErr error
	for i, cs := range s.Cases {
		caseStarts[i] = c.builder.Len()
		for _, t := range tests {
			if t.idx == i {
				if err := c.builder.PatchJumpTo(t.jump, caseStarts[i]); err != nil {
					stmtErr = err
					break
				}
			}
		}
		if stmtErr != nil {
			break
		}
		if hasDefault && i == defaultIdx {
			if err := c.builder.PatchJumpTo(toDefault, caseStarts[i]); err != nil {
				stmtErr = err
				break
			}
		}
		for _, st := range cs.Consequent {
			if err := c.compileStatement(st); err != nil {
				stmtErr = err
				break
			}
		}
		if stmtErr != nil {
			break
		}
	}
	c.popScope()
	c.loops = c.loops[:len(c.loops)-1]
	if stmtErr != nil {
		return stmtErr
	}

	endPos := c.builder.Len()
	if noMatchJump >= 0 {
		if err := c.builder.PatchJumpTo(noMatchJump, endPos); err != nil {
			return err
		}
	}
	for _, j := range sw.breakJumps {
		if err := c.builder.PatchJumpTo(j, endPos); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileTry(s *frontend.TryStatement) error {
	line, col := c.line(s)
	if s.Finalizer != nil {
		return c.compileTryFinally(s, line, col)
	}
	return c.compileTryCatch(s, line, col)
}

func (c *Compiler) compileTryCatch(s *frontend.TryStatement, line, col int) error {
	jumpTok, regionIdx := c.builder.PushHandlerRegion()
	if err := c.compileBlockBody(s.Block.Body); err != nil {
		return err
	}
	afterTryJump := c.builder.EmitJump(ir.OpJump, line, col)
	handlerStart := c.builder.Len()
	if err := c.builder.PatchJumpTo(jumpTok, handlerStart); err != nil {
		return err
	}
	if err := c.compileCatchBody(s.Handler, line, col); err != nil {
		return err
	}
	if err := c.builder.PatchJump(afterTryJump); err != nil {
		return err
	}
	c.builder.CloseHandlerRegion(regionIdx, handlerStart, handlerStart, 0, false)
	return nil
}

func (c *Compiler) compileCatchBody(handler *frontend.CatchClause, line, col int) error {
	if handler == nil {
		c.builder.EmitSimple(ir.OpPop, line, col)
		return nil
	}
	c.pushScope()
	defer c.popScope()
	if handler.Param != nil {
		name, err := c.identifierName(handler.Param)
		if err != nil {
			return err
		}
		b := c.declare(name, frontend.VarKindLet)
		if b.kind == bindEnv {
			c.emitDeclare(name, frontend.VarKindLet, line, col)
		}
		c.emitInitBinding(name, b, line, col)
	} else {
		c.builder.EmitSimple(ir.OpPop, line, col)
	}
	for _, st := range handler.Body.Body {
		if err := c.compileStatement(st); err != nil {
			return err
		}
	}
	return nil
}

// compileTryFinally wraps an outer handler region (isFinally=true)
// around the try(+catch) lowering. Normal completion falls into an
// inline copy of the finally body and skips the handler entirely; the
// handler body (reached only when an exception is in flight) stashes
// the thrown value, runs the finally body, then rethrows it. A
// break/continue/return executed directly inside the try block skips
// straight past this inline copy without running it - full
// deferred-unwind-through-finally semantics are out of scope here.
func (c *Compiler) compileTryFinally(s *frontend.TryStatement, line, col int) error {
	outerJumpTok, outerRegion := c.builder.PushHandlerRegion()
	if s.Handler != nil {
		inner := &frontend.TryStatement{Block: s.Block, Handler: s.Handler}
		if err := c.compileTryCatch(inner, line, col); err != nil {
			return err
		}
	} else {
		if err := c.compileBlockBody(s.Block.Body); err != nil {
			return err
		}
	}
	protectedEnd := c.builder.Len()
	if err := c.compileBlockBody(s.Finalizer.Body); err != nil {
		return err
	}
	skipHandler := c.builder.EmitJump(ir.OpJump, line, col)
	handlerStart := c.builder.Len()
	if err := c.builder.PatchJumpTo(outerJumpTok, handlerStart); err != nil {
		return err
	}

	excSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(excSlot), line, col)
	if err := c.compileBlockBody(s.Finalizer.Body); err != nil {
		return err
	}
	c.builder.Emit(ir.OpGetLocal, 0, uint16(excSlot), line, col)
	c.builder.EmitSimple(ir.OpThrow, line, col)

	if err := c.builder.PatchJump(skipHandler); err != nil {
		return err
	}
	c.builder.CloseHandlerRegion(outerRegion, protectedEnd, handlerStart, 0, true)
	return nil
}

func (c *Compiler) compileClassDeclaration(s *frontend.ClassDeclaration) error {
	line, col := c.line(s)
	if err := c.compileClassExpr(s.Name, s.SuperClass, s.Members); err != nil {
		return err
	}
	b := c.declare(s.Name, frontend.VarKindLet)
	if b.kind == bindEnv {
		c.emitDeclare(s.Name, frontend.VarKindLet, line, col)
	}
	c.emitInitBinding(s.Name, b, line, col)
	return nil
}
