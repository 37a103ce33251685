package compiler

import (
	"github.com/cwbudde/escript/internal/frontend"
	"github.com/cwbudde/escript/internal/ir"
)

// compileClassExpr compiles a full class (constructor, instance and
// static methods/accessors, instance and static fields) and leaves the
// resulting constructor value on top of the stack. It never declares
// or initializes a binding itself - compileClassDeclaration does that
// with the value this leaves behind.
func (c *Compiler) compileClassExpr(name string, superClass frontend.Expression, members []*frontend.ClassMember) error {
	line, col := 0, 0
	if len(members) > 0 {
		line, col = c.line(members[0])
	}

	var ctorMember *frontend.ClassMember
	var instanceFields, staticFields, instanceMethods, staticMethods []*frontend.ClassMember
	for _, m := range members {
		if m.Kind == frontend.ClassMethod && !m.Static && !m.Computed {
			if id, ok := m.Key.(*frontend.Identifier); ok && id.Name == "constructor" {
				ctorMember = m
				continue
			}
		}
		switch {
		case m.Kind == frontend.ClassField && m.Static:
			staticFields = append(staticFields, m)
		case m.Kind == frontend.ClassField:
			instanceFields = append(instanceFields, m)
		case m.Static:
			staticMethods = append(staticMethods, m)
		default:
			instanceMethods = append(instanceMethods, m)
		}
	}

	isDerived := superClass != nil
	var ctorIdx int
	var err error
	switch {
	case ctorMember != nil:
		fe, ok := ctorMember.Value.(*frontend.FunctionExpression)
		if !ok {
			return c.errorf(ctorMember, "constructor must be a method")
		}
		ctorIdx, err = c.compileConstructor(fe.Params, fe.Body.Body, instanceFields, isDerived)
	case isDerived:
		// A derived class with no explicit constructor gets the default
		// ECMA-262 one: forward every argument straight to the
		// superclass (ECMA-262 15.7.7).
		restParam := &frontend.Param{Target: &frontend.Identifier{Name: "args"}, Rest: true}
		superCall := &frontend.ExpressionStatement{Expression: &frontend.CallExpression{
			Callee:    &frontend.SuperExpression{},
			Arguments: []frontend.ArrayElement{{Expression: &frontend.Identifier{Name: "args"}, Spread: true}},
		}}
		ctorIdx, err = c.compileConstructor([]*frontend.Param{restParam}, []frontend.Statement{superCall}, instanceFields, true)
	default:
		ctorIdx, err = c.compileConstructor(nil, nil, instanceFields, false)
	}
	if err != nil {
		return err
	}

	if superClass != nil {
		if err := c.compileExpression(superClass); err != nil {
			return err
		}
	} else {
		c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
	}
	c.builder.Emit(ir.OpMakeClass, 0, uint16(ctorIdx), line, col)

	ctorSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(ctorSlot), line, col)

	for _, m := range instanceMethods {
		if err := c.compileClassMethod(m, ctorSlot, false); err != nil {
			return err
		}
	}
	for _, m := range staticMethods {
		if err := c.compileClassMethod(m, ctorSlot, true); err != nil {
			return err
		}
	}
	for _, m := range staticFields {
		if err := c.compileStaticField(m, ctorSlot); err != nil {
			return err
		}
	}

	c.builder.Emit(ir.OpGetLocal, 0, uint16(ctorSlot), line, col)
	return nil
}

// compileConstructor parallels compileFunctionLiteral's parameter
// prologue but additionally threads instance field initializers into
// the body: for a base class they run before any user statement
// (`this` is live from frame creation); for a derived class they run
// right after the body's own super() call, since `this` stays
// uninitialized until then and reading or writing to it any earlier
// would be a ReferenceError at runtime (ECMA-262 10.2.2's derived
// [[Construct]] leaves the this-binding status Uninitialized until
// super() resolves it).
func (c *Compiler) compileConstructor(params []*frontend.Param, stmts []frontend.Statement, instanceFields []*frontend.ClassMember, isDerived bool) (int, error) {
	fc := &Compiler{
		builder:    ir.NewBuilder("constructor", c.sourceFile),
		parent:     c,
		sourceFile: c.sourceFile,
	}
	fc.captured = collectCaptured(stmts)
	fc.pushScope()

	line, col := 0, 0
	if len(stmts) > 0 {
		line, col = fc.line(stmts[0])
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

	fc.inClassCtorWithSuper = isDerived
	if err := fc.compileCtorBody(stmts, instanceFields, isDerived); err != nil {
		return 0, err
	}

	fc.popScope()
	fi := fc.builder.FinalizeOpcodes()
	return c.builder.AddChild(fi), nil
}

func (c *Compiler) compileCtorBody(stmts []frontend.Statement, instanceFields []*frontend.ClassMember, isDerived bool) error {
	if err := c.declareHoisted(stmts); err != nil {
		return err
	}
	if !isDerived {
		if err := c.compileFieldInits(instanceFields); err != nil {
			return err
		}
		for _, s := range stmts {
			if err := c.compileStatement(s); err != nil {
				return err
			}
		}
		return nil
	}

	injected := false
	for _, s := range stmts {
		if err := c.compileStatement(s); err != nil {
			return err
		}
		if !injected && isSuperCallStatement(s) {
			if err := c.compileFieldInits(instanceFields); err != nil {
				return err
			}
			injected = true
		}
	}
	if !injected {
		// super() never appeared as its own top-level statement (it was
		// nested in a conditional, or omitted entirely, which will fail
		// at runtime on first `this` use anyway) - running field inits
		// at the end is the best this placement strategy can do.
		return c.compileFieldInits(instanceFields)
	}
	return nil
}

func isSuperCallStatement(s frontend.Statement) bool {
	es, ok := s.(*frontend.ExpressionStatement)
	if !ok {
		return false
	}
	ce, ok := es.Expression.(*frontend.CallExpression)
	if !ok {
		return false
	}
	_, ok = ce.Callee.(*frontend.SuperExpression)
	return ok
}

func (c *Compiler) compileFieldInits(fields []*frontend.ClassMember) error {
	for _, m := range fields {
		line, col := c.line(m)
		c.builder.Emit(ir.OpGetBinding, 0, uint16(c.builder.AddStringConstant("this")), line, col)
		if m.Computed {
			if err := c.compileExpression(m.Key); err != nil {
				return err
			}
		}
		if m.Value != nil {
			if err := c.compileExpression(m.Value); err != nil {
				return err
			}
		} else {
			c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
		}
		if m.Computed {
			c.builder.EmitSimple(ir.OpSetPropComp, line, col)
		} else {
			name, err := c.propertyKeyName(m.Key)
			if err != nil {
				return err
			}
			c.builder.Emit(ir.OpSetProp, 0, uint16(c.builder.AddStringConstant(name)), line, col)
		}
		c.builder.EmitSimple(ir.OpPop, line, col)
	}
	return nil
}

// compileClassMethod reloads ctorSlot and pushes the member's key the
// same stack-based way an object literal's accessor does, since
// OpClassDefineMethod (like OpObjectDefineAccessor) always reads its
// key off the stack rather than baking a non-computed name into an
// operand.
func (c *Compiler) compileClassMethod(m *frontend.ClassMember, ctorSlot int, isStatic bool) error {
	line, col := c.line(m)
	fe, ok := m.Value.(*frontend.FunctionExpression)
	if !ok {
		return c.errorf(m, "class member must be a method")
	}
	childIdx, err := c.compileFunctionLiteral("", fe.Params, fe.Body, fe.ExpressionBody, fe.IsGenerator, fe.IsAsync, false)
	if err != nil {
		return err
	}
	c.builder.Emit(ir.OpGetLocal, 0, uint16(ctorSlot), line, col)
	if err := c.pushPropertyKey(m.Key, m.Computed, line, col); err != nil {
		return err
	}
	c.builder.Emit(ir.OpMakeClosure, 0, uint16(childIdx), line, col)

	kind := uint8(0)
	switch m.Kind {
	case frontend.ClassGetter:
		kind = 1
	case frontend.ClassSetter:
		kind = 2
	}
	a := kind << 1
	if isStatic {
		a |= 1
	}
	c.builder.Emit(ir.OpClassDefineMethod, a, 0, line, col)
	c.builder.EmitSimple(ir.OpPop, line, col)
	return nil
}

// compileStaticField runs once at class-definition time, with `this`
// bound to the class constructor itself (ECMA-262 15.7.10): a
// non-trivial initializer is compiled as its own zero-arg function so
// it gets a genuine `this` binding, then called immediately with the
// constructor as the receiver. A field with no initializer skips that
// detour entirely, since undefined needs no `this` context to produce.
func (c *Compiler) compileStaticField(m *frontend.ClassMember, ctorSlot int) error {
	line, col := c.line(m)
	if m.Value == nil {
		c.builder.Emit(ir.OpGetLocal, 0, uint16(ctorSlot), line, col)
		if m.Computed {
			if err := c.compileExpression(m.Key); err != nil {
				return err
			}
			c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
			c.builder.EmitSimple(ir.OpSetPropComp, line, col)
		} else {
			name, err := c.propertyKeyName(m.Key)
			if err != nil {
				return err
			}
			c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
			c.builder.Emit(ir.OpSetProp, 0, uint16(c.builder.AddStringConstant(name)), line, col)
		}
		c.builder.EmitSimple(ir.OpPop, line, col)
		return nil
	}

	childIdx, err := c.compileFunctionLiteral("", nil, nil, m.Value, false, false, false)
	if err != nil {
		return err
	}
	c.builder.Emit(ir.OpGetLocal, 0, uint16(ctorSlot), line, col)
	if m.Computed {
		if err := c.compileExpression(m.Key); err != nil {
			return err
		}
	}
	c.builder.Emit(ir.OpMakeClosure, 0, uint16(childIdx), line, col)
	c.builder.Emit(ir.OpGetLocal, 0, uint16(ctorSlot), line, col)
	c.builder.Emit(ir.OpCall, 0, 0, line, col)
	if m.Computed {
		c.builder.EmitSimple(ir.OpSetPropComp, line, col)
	} else {
		name, err := c.propertyKeyName(m.Key)
		if err != nil {
			return err
		}
		c.builder.Emit(ir.OpSetProp, 0, uint16(c.builder.AddStringConstant(name)), line, col)
	}
	c.builder.EmitSimple(ir.OpPop, line, col)
	return nil
}
