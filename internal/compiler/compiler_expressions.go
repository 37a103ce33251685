package compiler

import (
	"strconv"

	"github.com/cwbudde/escript/internal/frontend"
	"github.com/cwbudde/escript/internal/ir"
)

// assignTarget abstracts over the three shapes a reference that can be
// read and written needs: a plain binding, and a (possibly computed)
// member expression whose object/key are evaluated once and stashed in
// scratch locals so compound assignment, logical assignment, and
// increment/decrement never double-evaluate them.
type assignTarget struct {
	isMember bool
	b        *binding
	name     string
	objSlot  int
	computed bool
	keySlot  int
	keyName  string
}

func (c *Compiler) resolveAssignTarget(target frontend.Expression, line, col int) (*assignTarget, error) {
	switch t := target.(type) {
	case *frontend.Identifier:
		return &assignTarget{b: c.bindingFor(t.Name), name: t.Name}, nil
	case *frontend.MemberExpression:
		if err := c.compileExpression(t.Object); err != nil {
			return nil, err
		}
		objSlot := c.builder.NewLocalSlot()
		c.builder.Emit(ir.OpInitLocal, 0, uint16(objSlot), line, col)
		at := &assignTarget{isMember: true, objSlot: objSlot, computed: t.Computed}
		if t.Computed {
			if err := c.compileExpression(t.Property); err != nil {
				return nil, err
			}
			keySlot := c.builder.NewLocalSlot()
			c.builder.Emit(ir.OpInitLocal, 0, uint16(keySlot), line, col)
			at.keySlot = keySlot
		} else {
			name, err := c.identifierName(t.Property)
			if err != nil {
				return nil, err
			}
			at.keyName = name
		}
		return at, nil
	default:
		return nil, c.errorf(target, "invalid assignment target")
	}
}

func (c *Compiler) emitTargetGet(at *assignTarget, line, col int) {
	if !at.isMember {
		c.emitGetBinding(at.name, at.b, line, col)
		return
	}
	c.builder.Emit(ir.OpGetLocal, 0, uint16(at.objSlot), line, col)
	if at.computed {
		c.builder.Emit(ir.OpGetLocal, 0, uint16(at.keySlot), line, col)
		c.builder.EmitSimple(ir.OpGetPropComp, line, col)
		return
	}
	c.builder.Emit(ir.OpGetProp, 0, uint16(c.builder.AddStringConstant(at.keyName)), line, col)
}

// emitTargetSet assumes the new value is already on top of the stack
// and leaves it there afterward, since SetProp/SetPropComp/SetLocal/
// SetBinding all peek rather than pop.
func (c *Compiler) emitTargetSet(at *assignTarget, line, col int) {
	if !at.isMember {
		c.emitSetBinding(at.name, at.b, line, col)
		return
	}
	valSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(valSlot), line, col)
	c.builder.Emit(ir.OpGetLocal, 0, uint16(at.objSlot), line, col)
	if at.computed {
		c.builder.Emit(ir.OpGetLocal, 0, uint16(at.keySlot), line, col)
		c.builder.Emit(ir.OpGetLocal, 0, uint16(valSlot), line, col)
		c.builder.EmitSimple(ir.OpSetPropComp, line, col)
		return
	}
	c.builder.Emit(ir.OpGetLocal, 0, uint16(valSlot), line, col)
	c.builder.Emit(ir.OpSetProp, 0, uint16(c.builder.AddStringConstant(at.keyName)), line, col)
}

// compileStoreTarget stores a value already on top of the stack into
// target, for write-only destinations (for-in/for-of loop variables)
// that never need to read the target first.
func (c *Compiler) compileStoreTarget(target frontend.Expression, line, col int) error {
	switch t := target.(type) {
	case *frontend.Identifier:
		b := c.bindingFor(t.Name)
		c.emitSetBinding(t.Name, b, line, col)
		return nil
	case *frontend.MemberExpression:
		valSlot := c.builder.NewLocalSlot()
		c.builder.Emit(ir.OpInitLocal, 0, uint16(valSlot), line, col)
		if err := c.compileExpression(t.Object); err != nil {
			return err
		}
		if t.Computed {
			if err := c.compileExpression(t.Property); err != nil {
				return err
			}
			c.builder.Emit(ir.OpGetLocal, 0, uint16(valSlot), line, col)
			c.builder.EmitSimple(ir.OpSetPropComp, line, col)
			return nil
		}
		name, err := c.identifierName(t.Property)
		if err != nil {
			return err
		}
		c.builder.Emit(ir.OpGetLocal, 0, uint16(valSlot), line, col)
		c.builder.Emit(ir.OpSetProp, 0, uint16(c.builder.AddStringConstant(name)), line, col)
		return nil
	default:
		return c.errorf(target, "invalid assignment target")
	}
}

// emitSpreadAppend iterates expr and OpArrayPush's each produced value
// onto the array held in arrSlot. Leaves nothing extra on the stack.
func (c *Compiler) emitSpreadAppend(expr frontend.Expression, arrSlot int, line, col int) error {
	if err := c.compileExpression(expr); err != nil {
		return err
	}
	c.builder.EmitSimple(ir.OpGetIterator, line, col)
	iterSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(iterSlot), line, col)

	loopStart := c.builder.Len()
	c.builder.Emit(ir.OpGetLocal, 0, uint16(arrSlot), line, col)
	c.builder.Emit(ir.OpGetLocal, 0, uint16(iterSlot), line, col)
	c.builder.EmitSimple(ir.OpIterNext, line, col) // [array, value, done]
	doneJump := c.builder.EmitJump(ir.OpJumpIfTrue, line, col)
	c.builder.EmitSimple(ir.OpArrayPush, line, col)
	c.builder.EmitSimple(ir.OpPop, line, col)
	if err := c.builder.EmitLoop(loopStart, line, col); err != nil {
		return err
	}
	doneLabel := c.builder.Len()
	if err := c.builder.PatchJumpTo(doneJump, doneLabel); err != nil {
		return err
	}
	c.builder.EmitSimple(ir.OpPop, line, col) // leftover value
	c.builder.EmitSimple(ir.OpPop, line, col) // leftover array copy
	return nil
}

// compileArguments compiles a call/new argument list. Without a spread
// element it just pushes each value for OpCall/OpNew's argument count
// to cover; with one it builds an actual array for OpCallSpread/
// OpNewSpread, since those opcodes require a real array-like payload.
func (c *Compiler) compileArguments(args []frontend.ArrayElement, line, col int) (bool, error) {
	spread := false
	for _, a := range args {
		if a.Spread {
			spread = true
			break
		}
	}
	if !spread {
		for _, a := range args {
			if a.Expression == nil {
				c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
				continue
			}
			if err := c.compileExpression(a.Expression); err != nil {
				return false, err
			}
		}
		return false, nil
	}
	c.builder.Emit(ir.OpNewArray, 0, 0, line, col)
	arrSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(arrSlot), line, col)
	for _, a := range args {
		if a.Spread {
			if err := c.emitSpreadAppend(a.Expression, arrSlot, line, col); err != nil {
				return true, err
			}
			continue
		}
		c.builder.Emit(ir.OpGetLocal, 0, uint16(arrSlot), line, col)
		if a.Expression == nil {
			c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
		} else if err := c.compileExpression(a.Expression); err != nil {
			return true, err
		}
		c.builder.EmitSimple(ir.OpArrayPush, line, col)
		c.builder.EmitSimple(ir.OpPop, line, col)
	}
	c.builder.Emit(ir.OpGetLocal, 0, uint16(arrSlot), line, col)
	return true, nil
}

func (c *Compiler) compileArrayLiteral(lit *frontend.ArrayLiteral) error {
	line, col := c.line(lit)
	hasSpread := false
	for _, el := range lit.Elements {
		if el.Spread {
			hasSpread = true
			break
		}
	}
	if !hasSpread {
		for _, el := range lit.Elements {
			if el.Expression == nil {
				c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
				continue
			}
			if err := c.compileExpression(el.Expression); err != nil {
				return err
			}
		}
		c.builder.Emit(ir.OpNewArray, 0, uint16(len(lit.Elements)), line, col)
		return nil
	}
	c.builder.Emit(ir.OpNewArray, 0, 0, line, col)
	arrSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(arrSlot), line, col)
	for _, el := range lit.Elements {
		if el.Spread {
			if err := c.emitSpreadAppend(el.Expression, arrSlot, line, col); err != nil {
				return err
			}
			continue
		}
		c.builder.Emit(ir.OpGetLocal, 0, uint16(arrSlot), line, col)
		if el.Expression == nil {
			c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
		} else if err := c.compileExpression(el.Expression); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpArrayPush, line, col)
		c.builder.EmitSimple(ir.OpPop, line, col)
	}
	c.builder.Emit(ir.OpGetLocal, 0, uint16(arrSlot), line, col)
	return nil
}

func (c *Compiler) propertyKeyName(key frontend.Expression) (string, error) {
	switch k := key.(type) {
	case *frontend.Identifier:
		return k.Name, nil
	case *frontend.StringLiteral:
		return k.Value, nil
	case *frontend.NumberLiteral:
		return strconv.FormatFloat(k.Value, 'f', -1, 64), nil
	default:
		return "", c.errorf(key, "unsupported property key")
	}
}

// pushPropertyKey pushes a property key onto the stack, unlike
// OpSetProp/OpGetProp which bake a non-computed key into the
// instruction's B operand: OpObjectDefineAccessor always takes its key
// from the stack.
func (c *Compiler) pushPropertyKey(key frontend.Expression, computed bool, line, col int) error {
	if computed {
		return c.compileExpression(key)
	}
	name, err := c.propertyKeyName(key)
	if err != nil {
		return err
	}
	c.builder.Emit(ir.OpLoadConst, 0, uint16(c.builder.AddStringConstant(name)), line, col)
	return nil
}

func (c *Compiler) emitObjectSpread(source frontend.Expression, objSlot int, line, col int) error {
	if err := c.compileExpression(source); err != nil {
		return err
	}
	srcSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(srcSlot), line, col)

	c.builder.Emit(ir.OpGetLocal, 0, uint16(srcSlot), line, col)
	c.builder.EmitSimple(ir.OpForInKeys, line, col)
	c.builder.EmitSimple(ir.OpGetIterator, line, col)
	iterSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(iterSlot), line, col)

	loopStart := c.builder.Len()
	c.builder.Emit(ir.OpGetLocal, 0, uint16(iterSlot), line, col)
	c.builder.EmitSimple(ir.OpIterNext, line, col) // [key, done]
	doneJump := c.builder.EmitJump(ir.OpJumpIfTrue, line, col)

	keySlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(keySlot), line, col)

	c.builder.Emit(ir.OpGetLocal, 0, uint16(srcSlot), line, col)
	c.builder.Emit(ir.OpGetLocal, 0, uint16(keySlot), line, col)
	c.builder.EmitSimple(ir.OpGetPropComp, line, col) // [value]
	valSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(valSlot), line, col)

	c.builder.Emit(ir.OpGetLocal, 0, uint16(objSlot), line, col)
	c.builder.Emit(ir.OpGetLocal, 0, uint16(keySlot), line, col)
	c.builder.Emit(ir.OpGetLocal, 0, uint16(valSlot), line, col)
	c.builder.EmitSimple(ir.OpSetPropComp, line, col)
	c.builder.EmitSimple(ir.OpPop, line, col)

	if err := c.builder.EmitLoop(loopStart, line, col); err != nil {
		return err
	}
	doneLabel := c.builder.Len()
	if err := c.builder.PatchJumpTo(doneJump, doneLabel); err != nil {
		return err
	}
	c.builder.EmitSimple(ir.OpPop, line, col) // leftover key
	return nil
}

func (c *Compiler) compileObjectLiteral(lit *frontend.ObjectLiteral) error {
	line, col := c.line(lit)
	c.builder.Emit(ir.OpNewObject, 0, 0, line, col)
	objSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(objSlot), line, col)

	for _, p := range lit.Properties {
		pl, pc := c.line(p)
		switch p.Kind {
		case frontend.PropertySpread:
			if err := c.emitObjectSpread(p.Key, objSlot, pl, pc); err != nil {
				return err
			}
		case frontend.PropertyGetter, frontend.PropertySetter:
			fe, ok := p.Value.(*frontend.FunctionExpression)
			if !ok {
				return c.errorf(p, "accessor value must be a function")
			}
			childIdx, err := c.compileFunctionLiteral("", fe.Params, fe.Body, fe.ExpressionBody, false, false, false)
			if err != nil {
				return err
			}
			c.builder.Emit(ir.OpGetLocal, 0, uint16(objSlot), pl, pc)
			if err := c.pushPropertyKey(p.Key, p.Computed, pl, pc); err != nil {
				return err
			}
			c.builder.Emit(ir.OpMakeClosure, 0, uint16(childIdx), pl, pc)
			kindA := uint8(0)
			if p.Kind == frontend.PropertySetter {
				kindA = 1
			}
			c.builder.Emit(ir.OpObjectDefineAccessor, kindA, 0, pl, pc)
			c.builder.EmitSimple(ir.OpPop, pl, pc)
		default: // PropertyInit, PropertyMethod
			c.builder.Emit(ir.OpGetLocal, 0, uint16(objSlot), pl, pc)
			if p.Computed {
				if err := c.compileExpression(p.Key); err != nil {
					return err
				}
				if err := c.compileExpression(p.Value); err != nil {
					return err
				}
				c.builder.EmitSimple(ir.OpSetPropComp, pl, pc)
			} else {
				name, err := c.propertyKeyName(p.Key)
				if err != nil {
					return err
				}
				if err := c.compileExpression(p.Value); err != nil {
					return err
				}
				c.builder.Emit(ir.OpSetProp, 0, uint16(c.builder.AddStringConstant(name)), pl, pc)
			}
			c.builder.EmitSimple(ir.OpPop, pl, pc)
		}
	}
	c.builder.Emit(ir.OpGetLocal, 0, uint16(objSlot), line, col)
	return nil
}

func (c *Compiler) compileTemplateLiteral(t *frontend.TemplateLiteral) error {
	line, col := c.line(t)
	c.builder.Emit(ir.OpLoadConst, 0, uint16(c.builder.AddStringConstant(t.Quasis[0])), line, col)
	for i, expr := range t.Expressions {
		if err := c.compileExpression(expr); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpAdd, line, col)
		c.builder.Emit(ir.OpLoadConst, 0, uint16(c.builder.AddStringConstant(t.Quasis[i+1])), line, col)
		c.builder.EmitSimple(ir.OpAdd, line, col)
	}
	return nil
}

func (c *Compiler) compileDelete(u *frontend.UnaryExpression) error {
	line, col := c.line(u)
	m, ok := u.Argument.(*frontend.MemberExpression)
	if !ok {
		return c.errorf(u, "delete target must be a member expression")
	}
	if err := c.compileExpression(m.Object); err != nil {
		return err
	}
	if m.Computed {
		if err := c.compileExpression(m.Property); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpDeletePropComp, line, col)
		return nil
	}
	name, err := c.identifierName(m.Property)
	if err != nil {
		return err
	}
	c.builder.Emit(ir.OpDeleteProp, 0, uint16(c.builder.AddStringConstant(name)), line, col)
	return nil
}

// compileIncDec coerces the operand to a number the same way unary
// `+` does (x - 0), both to get the right numeric result and to reject
// BigInt operands the way the runtime's numeric ops already do.
func (c *Compiler) compileIncDec(u *frontend.UnaryExpression) error {
	line, col := c.line(u)
	at, err := c.resolveAssignTarget(u.Argument, line, col)
	if err != nil {
		return err
	}
	c.emitTargetGet(at, line, col)
	c.builder.Emit(ir.OpLoadConst, 0, uint16(c.builder.AddNumberConstant(0)), line, col)
	c.builder.EmitSimple(ir.OpSub, line, col)

	isInc := u.Operator == frontend.OpPreInc || u.Operator == frontend.OpPostInc
	isPost := u.Operator == frontend.OpPostInc || u.Operator == frontend.OpPostDec

	var oldSlot int
	if isPost {
		oldSlot = c.builder.NewLocalSlot()
		c.builder.Emit(ir.OpInitLocal, 0, uint16(oldSlot), line, col)
	}
	if isInc {
		c.builder.EmitSimple(ir.OpInc, line, col)
	} else {
		c.builder.EmitSimple(ir.OpDec, line, col)
	}
	c.emitTargetSet(at, line, col)
	if isPost {
		c.builder.EmitSimple(ir.OpPop, line, col)
		c.builder.Emit(ir.OpGetLocal, 0, uint16(oldSlot), line, col)
	}
	return nil
}

func (c *Compiler) compileUnary(u *frontend.UnaryExpression) error {
	line, col := c.line(u)
	switch u.Operator {
	case frontend.OpPlus:
		if err := c.compileExpression(u.Argument); err != nil {
			return err
		}
		c.builder.Emit(ir.OpLoadConst, 0, uint16(c.builder.AddNumberConstant(0)), line, col)
		c.builder.EmitSimple(ir.OpSub, line, col)
		return nil
	case frontend.OpMinus:
		if err := c.compileExpression(u.Argument); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpNeg, line, col)
		return nil
	case frontend.OpNot:
		if err := c.compileExpression(u.Argument); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpNot, line, col)
		return nil
	case frontend.OpBitNot:
		if err := c.compileExpression(u.Argument); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpBitNot, line, col)
		return nil
	case frontend.OpTypeof:
		if err := c.compileExpression(u.Argument); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpTypeOf, line, col)
		return nil
	case frontend.OpVoid:
		if err := c.compileExpression(u.Argument); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpPop, line, col)
		c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
		return nil
	case frontend.OpDelete:
		return c.compileDelete(u)
	case frontend.OpPreInc, frontend.OpPreDec, frontend.OpPostInc, frontend.OpPostDec:
		return c.compileIncDec(u)
	default:
		return c.errorf(u, "unsupported unary operator %s", u.Operator)
	}
}

var binaryOpcodes = map[frontend.BinaryOperator]ir.OpCode{
	frontend.OpAdd: ir.OpAdd, frontend.OpSub: ir.OpSub, frontend.OpMul: ir.OpMul,
	frontend.OpDiv: ir.OpDiv, frontend.OpMod: ir.OpMod, frontend.OpPow: ir.OpPow,
	frontend.OpBitAnd: ir.OpBitAnd, frontend.OpBitOr: ir.OpBitOr, frontend.OpBitXor: ir.OpBitXor,
	frontend.OpShl: ir.OpShl, frontend.OpShr: ir.OpShr, frontend.OpUShr: ir.OpUShr,
	frontend.OpEq: ir.OpEq, frontend.OpNotEq: ir.OpNotEq,
	frontend.OpStrictEq: ir.OpStrictEq, frontend.OpStrictNeq: ir.OpStrictNotEq,
	frontend.OpLess: ir.OpLess, frontend.OpLessEq: ir.OpLessEq,
	frontend.OpGreater: ir.OpGreater, frontend.OpGreaterEq: ir.OpGreaterEq,
}

// compileBinary relies on `in`/`instanceof`'s operand order matching
// the opcodes' pop order exactly under ordinary left-to-right
// compilation - see OpInKeyword/OpInstanceOf in internal/ir.
func (c *Compiler) compileBinary(b *frontend.BinaryExpression) error {
	line, col := c.line(b)
	if b.Operator == frontend.OpIn {
		if err := c.compileExpression(b.Left); err != nil {
			return err
		}
		if err := c.compileExpression(b.Right); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpInKeyword, line, col)
		return nil
	}
	if b.Operator == frontend.OpInstanceof {
		if err := c.compileExpression(b.Left); err != nil {
			return err
		}
		if err := c.compileExpression(b.Right); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpInstanceOf, line, col)
		return nil
	}
	op, ok := binaryOpcodes[b.Operator]
	if !ok {
		return c.errorf(b, "unsupported binary operator %s", b.Operator)
	}
	if err := c.compileExpression(b.Left); err != nil {
		return err
	}
	if err := c.compileExpression(b.Right); err != nil {
		return err
	}
	c.builder.EmitSimple(op, line, col)
	return nil
}

func (c *Compiler) compileLogical(l *frontend.LogicalExpression) error {
	line, col := c.line(l)
	if err := c.compileExpression(l.Left); err != nil {
		return err
	}
	switch l.Operator {
	case frontend.OpAnd:
		tok := c.builder.EmitJump(ir.OpJumpIfFalseNP, line, col)
		c.builder.EmitSimple(ir.OpPop, line, col)
		if err := c.compileExpression(l.Right); err != nil {
			return err
		}
		return c.builder.PatchJump(tok)
	case frontend.OpOr:
		tok := c.builder.EmitJump(ir.OpJumpIfTrueNP, line, col)
		c.builder.EmitSimple(ir.OpPop, line, col)
		if err := c.compileExpression(l.Right); err != nil {
			return err
		}
		return c.builder.PatchJump(tok)
	case frontend.OpNullish:
		nullishTok := c.builder.EmitJump(ir.OpJumpIfNullish, line, col)
		endTok := c.builder.EmitJump(ir.OpJump, line, col)
		if err := c.builder.PatchJump(nullishTok); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpPop, line, col)
		if err := c.compileExpression(l.Right); err != nil {
			return err
		}
		return c.builder.PatchJump(endTok)
	default:
		return c.errorf(l, "unsupported logical operator %s", l.Operator)
	}
}

func (c *Compiler) compileConditional(e *frontend.ConditionalExpression) error {
	line, col := c.line(e)
	if err := c.compileExpression(e.Test); err != nil {
		return err
	}
	elseJump := c.builder.IfHelper(ir.OpJumpIfFalse, line, col)
	if err := c.compileExpression(e.Consequent); err != nil {
		return err
	}
	endJump, err := c.builder.IfElseHelper(elseJump, line, col)
	if err != nil {
		return err
	}
	if err := c.compileExpression(e.Alternate); err != nil {
		return err
	}
	return c.builder.PatchJump(endJump)
}

var compoundAssignOps = map[frontend.AssignOperator]ir.OpCode{
	frontend.AssignAdd: ir.OpAdd, frontend.AssignSub: ir.OpSub, frontend.AssignMul: ir.OpMul,
	frontend.AssignDiv: ir.OpDiv, frontend.AssignMod: ir.OpMod, frontend.AssignPow: ir.OpPow,
	frontend.AssignBitAnd: ir.OpBitAnd, frontend.AssignBitOr: ir.OpBitOr, frontend.AssignBitXor: ir.OpBitXor,
	frontend.AssignShl: ir.OpShl, frontend.AssignShr: ir.OpShr, frontend.AssignUShr: ir.OpUShr,
}

func (c *Compiler) compileAssign(a *frontend.AssignExpression) error {
	line, col := c.line(a)
	switch a.Target.(type) {
	case *frontend.ArrayPattern, *frontend.ObjectPattern:
		return c.errorf(a, "destructuring assignment is not supported")
	}

	if a.Operator == frontend.AssignPlain {
		at, err := c.resolveAssignTarget(a.Target, line, col)
		if err != nil {
			return err
		}
		if err := c.compileExpression(a.Value); err != nil {
			return err
		}
		c.emitTargetSet(at, line, col)
		return nil
	}

	if op, ok := compoundAssignOps[a.Operator]; ok {
		at, err := c.resolveAssignTarget(a.Target, line, col)
		if err != nil {
			return err
		}
		c.emitTargetGet(at, line, col)
		if err := c.compileExpression(a.Value); err != nil {
			return err
		}
		c.builder.EmitSimple(op, line, col)
		c.emitTargetSet(at, line, col)
		return nil
	}

	at, err := c.resolveAssignTarget(a.Target, line, col)
	if err != nil {
		return err
	}
	c.emitTargetGet(at, line, col)
	switch a.Operator {
	case frontend.AssignAnd:
		tok := c.builder.EmitJump(ir.OpJumpIfFalseNP, line, col)
		c.builder.EmitSimple(ir.OpPop, line, col)
		if err := c.compileExpression(a.Value); err != nil {
			return err
		}
		c.emitTargetSet(at, line, col)
		return c.builder.PatchJump(tok)
	case frontend.AssignOr:
		tok := c.builder.EmitJump(ir.OpJumpIfTrueNP, line, col)
		c.builder.EmitSimple(ir.OpPop, line, col)
		if err := c.compileExpression(a.Value); err != nil {
			return err
		}
		c.emitTargetSet(at, line, col)
		return c.builder.PatchJump(tok)
	case frontend.AssignNullish:
		nullishTok := c.builder.EmitJump(ir.OpJumpIfNullish, line, col)
		endTok := c.builder.EmitJump(ir.OpJump, line, col)
		if err := c.builder.PatchJump(nullishTok); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpPop, line, col)
		if err := c.compileExpression(a.Value); err != nil {
			return err
		}
		c.emitTargetSet(at, line, col)
		return c.builder.PatchJump(endTok)
	default:
		return c.errorf(a, "unsupported assignment operator %s", a.Operator)
	}
}

func (c *Compiler) emitMemberGet(m *frontend.MemberExpression, line, col int) error {
	if m.Computed {
		if err := c.compileExpression(m.Property); err != nil {
			return err
		}
		c.builder.EmitSimple(ir.OpGetPropComp, line, col)
		return nil
	}
	name, err := c.identifierName(m.Property)
	if err != nil {
		return err
	}
	c.builder.Emit(ir.OpGetProp, 0, uint16(c.builder.AddStringConstant(name)), line, col)
	return nil
}

// emitSuperProp only handles a literal property name: there is no
// OpGetSuperProp variant that reads a computed key off the stack the
// way OpGetPropComp does for plain member access, so `super[expr]` is
// rejected rather than miscompiled.
func (c *Compiler) emitSuperProp(m *frontend.MemberExpression, line, col int) error {
	if m.Computed {
		return c.errorf(m, "computed super property access is not supported")
	}
	name, err := c.identifierName(m.Property)
	if err != nil {
		return err
	}
	c.builder.Emit(ir.OpGetSuperProp, 0, uint16(c.builder.AddStringConstant(name)), line, col)
	return nil
}

// compileMember's optional-chaining support short-circuits only its
// own immediate link to undefined, not the rest of a longer chain
// (`a?.b.c` still throws if `a?.b` lands on undefined and `.c` is then
// read from it) - full chain-wide short-circuiting needs threading a
// single short-circuit target through every link of a chain, which
// this compiler does not do.
func (c *Compiler) compileMember(m *frontend.MemberExpression) error {
	line, col := c.line(m)
	if _, ok := m.Object.(*frontend.SuperExpression); ok {
		return c.emitSuperProp(m, line, col)
	}
	if err := c.compileExpression(m.Object); err != nil {
		return err
	}
	if !m.Optional {
		return c.emitMemberGet(m, line, col)
	}
	nullishJump := c.builder.EmitJump(ir.OpJumpIfNullish, line, col)
	if err := c.emitMemberGet(m, line, col); err != nil {
		return err
	}
	endJump := c.builder.EmitJump(ir.OpJump, line, col)
	if err := c.builder.PatchJump(nullishJump); err != nil {
		return err
	}
	c.builder.EmitSimple(ir.OpPop, line, col)
	c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
	return c.builder.PatchJump(endJump)
}

// compileMethodCall evaluates the object once, stashed in a scratch
// local, and reloads it twice (once to read the method, once as
// `this`) since there is no stack-swap opcode to reorder [obj, method]
// into the [method, obj] order OpCall needs.
func (c *Compiler) compileMethodCall(m *frontend.MemberExpression, call *frontend.CallExpression, line, col int) error {
	if _, ok := m.Object.(*frontend.SuperExpression); ok {
		if err := c.emitSuperProp(m, line, col); err != nil {
			return err
		}
		c.builder.Emit(ir.OpGetBinding, 0, uint16(c.builder.AddStringConstant("this")), line, col)
		spread, err := c.compileArguments(call.Arguments, line, col)
		if err != nil {
			return err
		}
		if spread {
			c.builder.EmitSimple(ir.OpCallSpread, line, col)
		} else {
			c.builder.Emit(ir.OpCall, 0, uint16(len(call.Arguments)), line, col)
		}
		return nil
	}

	if err := c.compileExpression(m.Object); err != nil {
		return err
	}
	objSlot := c.builder.NewLocalSlot()
	c.builder.Emit(ir.OpInitLocal, 0, uint16(objSlot), line, col)

	c.builder.Emit(ir.OpGetLocal, 0, uint16(objSlot), line, col)
	if err := c.emitMemberGet(m, line, col); err != nil {
		return err
	}
	c.builder.Emit(ir.OpGetLocal, 0, uint16(objSlot), line, col)

	spread, err := c.compileArguments(call.Arguments, line, col)
	if err != nil {
		return err
	}
	if spread {
		c.builder.EmitSimple(ir.OpCallSpread, line, col)
	} else {
		c.builder.Emit(ir.OpCall, 0, uint16(len(call.Arguments)), line, col)
	}
	return nil
}

func (c *Compiler) compileCall(call *frontend.CallExpression) error {
	line, col := c.line(call)
	if _, ok := call.Callee.(*frontend.SuperExpression); ok {
		if !c.inClassCtorWithSuper {
			return c.errorf(call, "'super' keyword is only valid inside a derived class constructor")
		}
		spread, err := c.compileArguments(call.Arguments, line, col)
		if err != nil {
			return err
		}
		if spread {
			c.builder.EmitSimple(ir.OpSuperCallSpread, line, col)
		} else {
			c.builder.Emit(ir.OpSuperCall, 0, uint16(len(call.Arguments)), line, col)
		}
		c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
		return nil
	}
	if m, ok := call.Callee.(*frontend.MemberExpression); ok {
		return c.compileMethodCall(m, call, line, col)
	}
	if err := c.compileExpression(call.Callee); err != nil {
		return err
	}
	c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
	spread, err := c.compileArguments(call.Arguments, line, col)
	if err != nil {
		return err
	}
	if spread {
		c.builder.EmitSimple(ir.OpCallSpread, line, col)
	} else {
		c.builder.Emit(ir.OpCall, 0, uint16(len(call.Arguments)), line, col)
	}
	return nil
}

func (c *Compiler) compileNew(n *frontend.NewExpression) error {
	line, col := c.line(n)
	if err := c.compileExpression(n.Callee); err != nil {
		return err
	}
	spread, err := c.compileArguments(n.Arguments, line, col)
	if err != nil {
		return err
	}
	if spread {
		c.builder.EmitSimple(ir.OpNewSpread, line, col)
	} else {
		c.builder.Emit(ir.OpNew, 0, uint16(len(n.Arguments)), line, col)
	}
	return nil
}

func (c *Compiler) compileSequence(s *frontend.SequenceExpression) error {
	for i, e := range s.Expressions {
		if err := c.compileExpression(e); err != nil {
			return err
		}
		if i < len(s.Expressions)-1 {
			line, col := c.line(e)
			c.builder.EmitSimple(ir.OpPop, line, col)
		}
	}
	return nil
}

func (c *Compiler) compileYield(y *frontend.YieldExpression) error {
	if !c.isGenerator {
		return c.errorf(y, "yield is only valid inside a generator function")
	}
	if y.Delegate {
		return c.errorf(y, "yield* delegation is not supported")
	}
	line, col := c.line(y)
	if y.Argument != nil {
		if err := c.compileExpression(y.Argument); err != nil {
			return err
		}
	} else {
		c.builder.EmitSimple(ir.OpLoadUndefined, line, col)
	}
	c.builder.EmitSimple(ir.OpYield, line, col)
	return nil
}

func (c *Compiler) compileExpression(expr frontend.Expression) error {
	line, col := c.line(expr)
	switch e := expr.(type) {
	case *frontend.Identifier:
		b := c.bindingFor(e.Name)
		c.emitGetBinding(e.Name, b, line, col)
		return nil
	case *frontend.ThisExpression:
		c.builder.Emit(ir.OpGetBinding, 0, uint16(c.builder.AddStringConstant("this")), line, col)
		return nil
	case *frontend.SuperExpression:
		return c.errorf(e, "'super' keyword is only valid in a member or call expression")
	case *frontend.NullLiteral:
		c.builder.EmitSimple(ir.OpLoadNull, line, col)
		return nil
	case *frontend.BooleanLiteral:
		if e.Value {
			c.builder.EmitSimple(ir.OpLoadTrue, line, col)
		} else {
			c.builder.EmitSimple(ir.OpLoadFalse, line, col)
		}
		return nil
	case *frontend.NumberLiteral:
		c.builder.Emit(ir.OpLoadConst, 0, uint16(c.builder.AddNumberConstant(e.Value)), line, col)
		return nil
	case *frontend.StringLiteral:
		c.builder.Emit(ir.OpLoadConst, 0, uint16(c.builder.AddStringConstant(e.Value)), line, col)
		return nil
	case *frontend.RegExpLiteral:
		return c.errorf(e, "regular expressions are not supported")
	case *frontend.TemplateLiteral:
		return c.compileTemplateLiteral(e)
	case *frontend.ArrayLiteral:
		return c.compileArrayLiteral(e)
	case *frontend.ObjectLiteral:
		return c.compileObjectLiteral(e)
	case *frontend.FunctionExpression:
		childIdx, err := c.compileFunctionLiteral(e.Name, e.Params, e.Body, e.ExpressionBody, e.IsGenerator, e.IsAsync, e.IsArrow)
		if err != nil {
			return err
		}
		c.builder.Emit(ir.OpMakeClosure, 0, uint16(childIdx), line, col)
		return nil
	case *frontend.ClassExpression:
		return c.compileClassExpr(e.Name, e.SuperClass, e.Members)
	case *frontend.UnaryExpression:
		return c.compileUnary(e)
	case *frontend.BinaryExpression:
		return c.compileBinary(e)
	case *frontend.LogicalExpression:
		return c.compileLogical(e)
	case *frontend.AssignExpression:
		return c.compileAssign(e)
	case *frontend.ConditionalExpression:
		return c.compileConditional(e)
	case *frontend.CallExpression:
		return c.compileCall(e)
	case *frontend.NewExpression:
		return c.compileNew(e)
	case *frontend.MemberExpression:
		return c.compileMember(e)
	case *frontend.SequenceExpression:
		return c.compileSequence(e)
	case *frontend.SpreadExpression:
		return c.compileExpression(e.Argument)
	case *frontend.YieldExpression:
		return c.compileYield(e)
	case *frontend.AwaitExpression:
		return c.errorf(e, "await is not supported")
	case *frontend.TaggedTemplateExpression:
		return c.errorf(e, "tagged templates are not supported")
	case *frontend.ArrayPattern, *frontend.ObjectPattern:
		return c.errorf(expr, "destructuring patterns are not supported in expression position")
	default:
		return c.errorf(expr, "unsupported expression %T", expr)
	}
}
