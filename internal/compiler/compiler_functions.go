package compiler

import (
	"github.com/cwbudde/escript/internal/frontend"
	"github.com/cwbudde/escript/internal/ir"
)

func functionDisplayName(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return name
}

// bindParam registers a parameter already sitting in local slot at
// runtime (the frame prologue fills locals[0:ParamCount) from the call
// arguments positionally, so every parameter gets a slot reserved in
// declaration order regardless of capture status - otherwise a
// captured parameter ahead of a plain one would throw every later
// slot index out of alignment with its argument). A captured
// parameter additionally gets a copy declared as an environment
// binding, which is what closures further in actually read from.
func (c *Compiler) bindParam(name string, slot int, line, col int) *binding {
	if c.captured[name] {
		b := &binding{kind: bindEnv, vkind: frontend.VarKindVar}
		c.currentScope().bindings[name] = b
		c.emitDeclare(name, frontend.VarKindVar, line, col)
		c.builder.Emit(ir.OpGetLocal, 0, uint16(slot), line, col)
		c.emitInitBinding(name, b, line, col)
		return b
	}
	b := &binding{kind: bindLocal, vkind: frontend.VarKindVar, slot: slot}
	c.currentScope().bindings[name] = b
	return b
}

// compileFunctionLiteral builds a child FunctionInfo for a function
// declaration, function expression, method, or arrow and registers it
// on the enclosing builder via AddChild, returning its index. It never
// emits OpMakeClosure itself - the same literal gets wired up
// differently depending on the caller (a declaration's binding, an
// expression's immediate push, a class method slot), so the caller
// always does that with the index this returns.
func (c *Compiler) compileFunctionLiteral(name string, params []*frontend.Param, body *frontend.BlockStatement, exprBody frontend.Expression, isGenerator, isAsync, isArrow bool) (int, error) {
	fc := &Compiler{
		builder:     ir.NewBuilder(functionDisplayName(name), c.sourceFile),
		parent:      c,
		sourceFile:  c.sourceFile,
		isGenerator: isGenerator && !isArrow,
	}
	// An arrow body shares its enclosing function's `this` and super
	// binding (ECMA-262 - arrows have no [[HomeObject]] of their own),
	// so a bare super() reached through one is only valid when the
	// enclosing constructor itself allows it.
	if isArrow {
		fc.inClassCtorWithSuper = c.inClassCtorWithSuper
	}

	var bodyStmts []frontend.Statement
	var captureStmts []frontend.Statement
	if exprBody != nil {
		captureStmts = []frontend.Statement{&frontend.ReturnStatement{Argument: exprBody}}
	} else if body != nil {
		bodyStmts = body.Body
		captureStmts = bodyStmts
	}
	fc.captured = collectCaptured(captureStmts)
	fc.pushScope()

	line, col := 0, 0
	switch {
	case len(params) > 0:
		line, col = fc.line(params[0])
	case body != nil:
		line, col = fc.line(body)
	}

	nonRest := params
	var restParam *frontend.Param
	if n := len(params); n > 0 && params[n-1].Rest {
		restParam = params[n-1]
		nonRest = params[:n-1]
	}

	for _, p := range nonRest {
		pl, pc := fc.line(p)
		slot := fc.builder.NewLocalSlot()
		pname, err := fc.identifierName(p.Target)
		if err != nil {
			return 0, err
		}
		if p.Default != nil {
			fc.builder.Emit(ir.OpGetLocal, 0, uint16(slot), pl, pc)
			fc.builder.EmitSimple(ir.OpLoadUndefined, pl, pc)
			fc.builder.EmitSimple(ir.OpStrictEq, pl, pc)
			skip := fc.builder.EmitJump(ir.OpJumpIfFalse, pl, pc)
			if err := fc.compileExpression(p.Default); err != nil {
				return 0, err
			}
			fc.builder.Emit(ir.OpSetLocal, 0, uint16(slot), pl, pc)
			fc.builder.EmitSimple(ir.OpPop, pl, pc)
			if err := fc.builder.PatchJump(skip); err != nil {
				return 0, err
			}
		}
		fc.bindParam(pname, slot, pl, pc)
	}
	fc.builder.SetParamCount(len(nonRest))

	if restParam != nil {
		rname, err := fc.identifierName(restParam.Target)
		if err != nil {
			return 0, err
		}
		rl, rc := fc.line(restParam)
		fc.builder.Emit(ir.OpCollectRest, 0, uint16(len(nonRest)), rl, rc)
		restSlot := fc.builder.NewLocalSlot()
		fc.builder.Emit(ir.OpInitLocal, 0, uint16(restSlot), rl, rc)
		fc.bindParam(rname, restSlot, rl, rc)
		fc.builder.SetHasRest(true)
	}

	if !isArrow {
		fc.builder.Emit(ir.OpCreateArguments, 0, 0, line, col)
		argsSlot := fc.builder.NewLocalSlot()
		fc.builder.Emit(ir.OpInitLocal, 0, uint16(argsSlot), line, col)
		if fc.captured["arguments"] {
			b := &binding{kind: bindEnv, vkind: frontend.VarKindVar}
			fc.currentScope().bindings["arguments"] = b
			fc.emitDeclare("arguments", frontend.VarKindVar, line, col)
			fc.builder.Emit(ir.OpGetLocal, 0, uint16(argsSlot), line, col)
			fc.emitInitBinding("arguments", b, line, col)
		} else {
			fc.currentScope().bindings["arguments"] = &binding{kind: bindLocal, vkind: frontend.VarKindVar, slot: argsSlot}
		}
	}

	fc.builder.SetArrow(isArrow)
	fc.builder.SetGenerator(isGenerator)
	fc.builder.SetAsync(isAsync)

	if exprBody != nil {
		if err := fc.compileExpression(exprBody); err != nil {
			return 0, err
		}
		fc.builder.EmitSimple(ir.OpReturn, line, col)
	} else {
		if err := fc.declareHoisted(bodyStmts); err != nil {
			return 0, err
		}
		for _, stmt := range bodyStmts {
			if err := fc.compileStatement(stmt); err != nil {
				return 0, err
			}
		}
	}

	fc.popScope()
	fi := fc.builder.FinalizeOpcodes()
	return c.builder.AddChild(fi), nil
}
