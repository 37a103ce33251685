package frontend

import (
	"fmt"

	ottoast "github.com/robertkrimen/otto/ast"
	ottofile "github.com/robertkrimen/otto/file"
	ottotoken "github.com/robertkrimen/otto/token"
)

// FromOtto adapts an otto-parsed program into this engine's own AST.
// otto implements ECMAScript 5 only (no let/const, classes, arrow
// functions, for...of, destructuring, or template literals) - see
// DESIGN.md, "otto as the external parser - ES2015+ gap". FromOtto
// therefore covers exactly the ES5-expressible subset; ES2015+ fixtures
// used by the compiler's own tests are built directly as frontend.Program
// values rather than round-tripped through otto.
func FromOtto(prog *ottoast.Program, sourceFile string) (*Program, error) {
	c := &converter{file: sourceFile}
	body, err := c.statements(prog.Body)
	if err != nil {
		return nil, err
	}
	return &Program{Body: body, SourceFile: sourceFile}, nil
}

type converter struct{ file string }

func (c *converter) pos(idx ottofile.Idx) Position {
	// otto's Idx is a byte offset, not a line/column pair; without the
	// original source text a single-line approximation is all that's
	// recoverable here, so line is left at int(idx) and column at 0.
	// The compiler only needs positions to be monotonically
	// increasing for its line table, which this preserves.
	return Position{Line: int(idx), Column: 0}
}

func (c *converter) base(idx ottofile.Idx) baseNode {
	return baseNode{Position: c.pos(idx)}
}

func (c *converter) statements(list []ottoast.Statement) ([]Statement, error) {
	out := make([]Statement, 0, len(list))
	for _, s := range list {
		stmt, err := c.statement(s)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			out = append(out, stmt)
		}
	}
	return out, nil
}

func (c *converter) statement(s ottoast.Statement) (Statement, error) {
	switch n := s.(type) {
	case *ottoast.EmptyStatement:
		return &EmptyStatement{baseNode: c.base(n.Idx0())}, nil
	case *ottoast.DebuggerStatement:
		return &DebuggerStatement{baseNode: c.base(n.Idx0())}, nil
	case *ottoast.ExpressionStatement:
		expr, err := c.expression(n.Expression)
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{baseNode: c.base(n.Idx0()), Expression: expr}, nil
	case *ottoast.VariableStatement:
		decls := make([]*VariableDeclarator, 0, len(n.List))
		for _, item := range n.List {
			d, err := c.variableDeclarator(item)
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		}
		return &VariableStatement{baseNode: c.base(n.Idx0()), Kind: VarKindVar, Declarations: decls}, nil
	case *ottoast.BlockStatement:
		body, err := c.statements(n.List)
		if err != nil {
			return nil, err
		}
		return &BlockStatement{baseNode: c.base(n.Idx0()), Body: body}, nil
	case *ottoast.IfStatement:
		test, err := c.expression(n.Test)
		if err != nil {
			return nil, err
		}
		cons, err := c.statement(n.Consequent)
		if err != nil {
			return nil, err
		}
		var alt Statement
		if n.Alternate != nil {
			alt, err = c.statement(n.Alternate)
			if err != nil {
				return nil, err
			}
		}
		return &IfStatement{baseNode: c.base(n.Idx0()), Test: test, Consequent: cons, Alternate: alt}, nil
	case *ottoast.ForStatement:
		var init Node
		if n.Initializer != nil {
			switch initN := n.Initializer.(type) {
			case *ottoast.VariableExpression:
				d, err := c.variableExpression(initN)
				if err != nil {
					return nil, err
				}
				init = &VariableStatement{baseNode: c.base(n.Idx0()), Kind: VarKindVar, Declarations: []*VariableDeclarator{d}}
			default:
				e, err := c.expression(n.Initializer)
				if err != nil {
					return nil, err
				}
				init = e
			}
		}
		var test, update Expression
		var err error
		if n.Test != nil {
			if test, err = c.expression(n.Test); err != nil {
				return nil, err
			}
		}
		if n.Update != nil {
			if update, err = c.expression(n.Update); err != nil {
				return nil, err
			}
		}
		bodyStmt, err := c.statement(n.Body)
		if err != nil {
			return nil, err
		}
		return &ForStatement{baseNode: c.base(n.Idx0()), Init: init, Test: test, Update: update, Body: bodyStmt}, nil
	case *ottoast.ForInStatement:
		left, err := c.forInTarget(n.Into)
		if err != nil {
			return nil, err
		}
		right, err := c.expression(n.Source)
		if err != nil {
			return nil, err
		}
		bodyStmt, err := c.statement(n.Body)
		if err != nil {
			return nil, err
		}
		_, isDecl := n.Into.(*ottoast.VariableExpression)
		return &ForInStatement{baseNode: c.base(n.Idx0()), Kind: VarKindVar, IsDecl: isDecl, Left: left, Right: right, Body: bodyStmt}, nil
	case *ottoast.WhileStatement:
		test, err := c.expression(n.Test)
		if err != nil {
			return nil, err
		}
		bodyStmt, err := c.statement(n.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStatement{baseNode: c.base(n.Idx0()), Test: test, Body: bodyStmt}, nil
	case *ottoast.DoWhileStatement:
		test, err := c.expression(n.Test)
		if err != nil {
			return nil, err
		}
		bodyStmt, err := c.statement(n.Body)
		if err != nil {
			return nil, err
		}
		return &DoWhileStatement{baseNode: c.base(n.Idx0()), Test: test, Body: bodyStmt}, nil
	case *ottoast.BranchStatement:
		label := ""
		if n.Label != nil {
			label = n.Label.Name
		}
		if n.Token == ottotoken.BREAK {
			return &BreakStatement{baseNode: c.base(n.Idx0()), Label: label}, nil
		}
		return &ContinueStatement{baseNode: c.base(n.Idx0()), Label: label}, nil
	case *ottoast.ReturnStatement:
		var arg Expression
		var err error
		if n.Argument != nil {
			if arg, err = c.expression(n.Argument); err != nil {
				return nil, err
			}
		}
		return &ReturnStatement{baseNode: c.base(n.Idx0()), Argument: arg}, nil
	case *ottoast.WithStatement:
		obj, err := c.expression(n.Object)
		if err != nil {
			return nil, err
		}
		bodyStmt, err := c.statement(n.Body)
		if err != nil {
			return nil, err
		}
		return &WithStatement{baseNode: c.base(n.Idx0()), Object: obj, Body: bodyStmt}, nil
	case *ottoast.LabelledStatement:
		bodyStmt, err := c.statement(n.Statement)
		if err != nil {
			return nil, err
		}
		return &LabelledStatement{baseNode: c.base(n.Idx0()), Label: n.Label.Name, Body: bodyStmt}, nil
	case *ottoast.SwitchStatement:
		disc, err := c.expression(n.Discriminant)
		if err != nil {
			return nil, err
		}
		cases := make([]*SwitchCase, 0, len(n.Body))
		for _, cc := range n.Body {
			sc, err := c.caseClause(cc)
			if err != nil {
				return nil, err
			}
			cases = append(cases, sc)
		}
		return &SwitchStatement{baseNode: c.base(n.Idx0()), Discriminant: disc, Cases: cases}, nil
	case *ottoast.ThrowStatement:
		arg, err := c.expression(n.Argument)
		if err != nil {
			return nil, err
		}
		return &ThrowStatement{baseNode: c.base(n.Idx0()), Argument: arg}, nil
	case *ottoast.TryStatement:
		blockStmt, err := c.statement(n.Body)
		if err != nil {
			return nil, err
		}
		block, ok := blockStmt.(*BlockStatement)
		if !ok {
			return nil, fmt.Errorf("frontend: try body is not a block statement")
		}
		var handler *CatchClause
		if n.Catch != nil {
			catchBody, err := c.statement(n.Catch.Body)
			if err != nil {
				return nil, err
			}
			catchBlock, ok := catchBody.(*BlockStatement)
			if !ok {
				return nil, fmt.Errorf("frontend: catch body is not a block statement")
			}
			var param Expression
			if n.Catch.Parameter != nil {
				param = &Identifier{baseNode: c.base(n.Catch.Idx0()), Name: n.Catch.Parameter.Name}
			}
			handler = &CatchClause{baseNode: c.base(n.Catch.Idx0()), Param: param, Body: catchBlock}
		}
		var finalizer *BlockStatement
		if n.Finally != nil {
			finStmt, err := c.statement(n.Finally)
			if err != nil {
				return nil, err
			}
			fb, ok := finStmt.(*BlockStatement)
			if !ok {
				return nil, fmt.Errorf("frontend: finally body is not a block statement")
			}
			finalizer = fb
		}
		return &TryStatement{baseNode: c.base(n.Idx0()), Block: block, Handler: handler, Finalizer: finalizer}, nil
	case *ottoast.FunctionStatement:
		fn, err := c.functionLiteral(n.Function)
		if err != nil {
			return nil, err
		}
		return &FunctionDeclaration{
			baseNode: c.base(n.Idx0()), Name: fn.Name, Params: fn.Params, Body: fn.Body,
			IsGenerator: fn.IsGenerator, IsAsync: fn.IsAsync,
		}, nil
	default:
		return nil, fmt.Errorf("frontend: unsupported otto statement type %T", s)
	}
}

func (c *converter) forInTarget(into ottoast.ForInto) (Expression, error) {
	switch n := into.(type) {
	case *ottoast.ForIntoIdentifier:
		return &Identifier{baseNode: c.base(n.Idx0()), Name: n.Identifier.Name}, nil
	case *ottoast.ForIntoVar:
		return &Identifier{baseNode: c.base(n.Idx0()), Name: n.Variable.Name}, nil
	default:
		return nil, fmt.Errorf("frontend: unsupported for-in target %T", into)
	}
}

func (c *converter) caseClause(cc *ottoast.CaseStatement) (*SwitchCase, error) {
	var test Expression
	var err error
	if cc.Test != nil {
		if test, err = c.expression(cc.Test); err != nil {
			return nil, err
		}
	}
	body, err := c.statements(cc.Consequent)
	if err != nil {
		return nil, err
	}
	return &SwitchCase{baseNode: c.base(cc.Idx0()), Test: test, Consequent: body}, nil
}

func (c *converter) variableDeclarator(e ottoast.Expression) (*VariableDeclarator, error) {
	ve, ok := e.(*ottoast.VariableExpression)
	if !ok {
		return nil, fmt.Errorf("frontend: expected variable expression, got %T", e)
	}
	return c.variableExpression(ve)
}

func (c *converter) variableExpression(ve *ottoast.VariableExpression) (*VariableDeclarator, error) {
	var init Expression
	var err error
	if ve.Initializer != nil {
		if init, err = c.expression(ve.Initializer); err != nil {
			return nil, err
		}
	}
	target := &Identifier{baseNode: c.base(ve.Idx0()), Name: ve.Name}
	return &VariableDeclarator{baseNode: c.base(ve.Idx0()), Target: target, Initializer: init}, nil
}

func (c *converter) functionLiteral(fn *ottoast.FunctionLiteral) (*FunctionExpression, error) {
	name := ""
	if fn.Name != nil {
		name = fn.Name.Name
	}
	params := make([]*Param, 0, len(fn.ParameterList.List))
	for _, p := range fn.ParameterList.List {
		params = append(params, &Param{
			baseNode: c.base(p.Idx0()),
			Target:   &Identifier{baseNode: c.base(p.Idx0()), Name: p.Name},
		})
	}
	bodyStmt, err := c.statement(fn.Body)
	if err != nil {
		return nil, err
	}
	block, ok := bodyStmt.(*BlockStatement)
	if !ok {
		return nil, fmt.Errorf("frontend: function body is not a block statement")
	}
	return &FunctionExpression{baseNode: c.base(fn.Idx0()), Name: name, Params: params, Body: block}, nil
}

func (c *converter) arguments(list []ottoast.Expression) ([]ArrayElement, error) {
	out := make([]ArrayElement, 0, len(list))
	for _, a := range list {
		e, err := c.expression(a)
		if err != nil {
			return nil, err
		}
		out = append(out, ArrayElement{Expression: e})
	}
	return out, nil
}

func (c *converter) expression(e ottoast.Expression) (Expression, error) {
	switch n := e.(type) {
	case *ottoast.Identifier:
		return &Identifier{baseNode: c.base(n.Idx0()), Name: n.Name}, nil
	case *ottoast.NullLiteral:
		return &NullLiteral{baseNode: c.base(n.Idx0())}, nil
	case *ottoast.BooleanLiteral:
		return &BooleanLiteral{baseNode: c.base(n.Idx0()), Value: n.Value}, nil
	case *ottoast.NumberLiteral:
		value, _ := n.Value.(float64)
		return &NumberLiteral{baseNode: c.base(n.Idx0()), Value: value}, nil
	case *ottoast.StringLiteral:
		return &StringLiteral{baseNode: c.base(n.Idx0()), Value: n.Value}, nil
	case *ottoast.RegExpLiteral:
		return &RegExpLiteral{baseNode: c.base(n.Idx0()), Pattern: n.Pattern, Flags: n.Flags}, nil
	case *ottoast.ThisExpression:
		return &ThisExpression{baseNode: c.base(n.Idx0())}, nil
	case *ottoast.ArrayLiteral:
		elems := make([]ArrayElement, 0, len(n.Value))
		for _, v := range n.Value {
			if v == nil {
				elems = append(elems, ArrayElement{})
				continue
			}
			ev, err := c.expression(v)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ArrayElement{Expression: ev})
		}
		return &ArrayLiteral{baseNode: c.base(n.Idx0()), Elements: elems}, nil
	case *ottoast.ObjectLiteral:
		props := make([]*ObjectProperty, 0, len(n.Value))
		for _, p := range n.Value {
			val, err := c.expression(p.Value)
			if err != nil {
				return nil, err
			}
			kind := PropertyInit
			switch p.Kind {
			case "get":
				kind = PropertyGetter
			case "set":
				kind = PropertySetter
			}
			props = append(props, &ObjectProperty{
				baseNode: c.base(n.Idx0()),
				Key:      &StringLiteral{baseNode: c.base(n.Idx0()), Value: p.Key},
				Kind:     kind,
				Value:    val,
			})
		}
		return &ObjectLiteral{baseNode: c.base(n.Idx0()), Properties: props}, nil
	case *ottoast.FunctionLiteral:
		return c.functionLiteral(n)
	case *ottoast.UnaryExpression:
		operand, err := c.expression(n.Operand)
		if err != nil {
			return nil, err
		}
		op, err := unaryOperator(n.Operator, n.Postfix)
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{baseNode: c.base(n.Idx0()), Operator: op, Argument: operand}, nil
	case *ottoast.BinaryExpression:
		left, err := c.expression(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.expression(n.Right)
		if err != nil {
			return nil, err
		}
		if logOp, ok := logicalOperator(n.Operator); ok {
			return &LogicalExpression{baseNode: c.base(n.Idx0()), Operator: logOp, Left: left, Right: right}, nil
		}
		op, err := binaryOperator(n.Operator)
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{baseNode: c.base(n.Idx0()), Operator: op, Left: left, Right: right}, nil
	case *ottoast.AssignExpression:
		left, err := c.expression(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.expression(n.Right)
		if err != nil {
			return nil, err
		}
		op, err := assignOperator(n.Operator)
		if err != nil {
			return nil, err
		}
		return &AssignExpression{baseNode: c.base(n.Idx0()), Operator: op, Target: left, Value: right}, nil
	case *ottoast.ConditionalExpression:
		test, err := c.expression(n.Test)
		if err != nil {
			return nil, err
		}
		cons, err := c.expression(n.Consequent)
		if err != nil {
			return nil, err
		}
		alt, err := c.expression(n.Alternate)
		if err != nil {
			return nil, err
		}
		return &ConditionalExpression{baseNode: c.base(n.Idx0()), Test: test, Consequent: cons, Alternate: alt}, nil
	case *ottoast.CallExpression:
		callee, err := c.expression(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := c.arguments(n.ArgumentList)
		if err != nil {
			return nil, err
		}
		return &CallExpression{baseNode: c.base(n.Idx0()), Callee: callee, Arguments: args}, nil
	case *ottoast.NewExpression:
		callee, err := c.expression(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := c.arguments(n.ArgumentList)
		if err != nil {
			return nil, err
		}
		return &NewExpression{baseNode: c.base(n.Idx0()), Callee: callee, Arguments: args}, nil
	case *ottoast.DotExpression:
		left, err := c.expression(n.Left)
		if err != nil {
			return nil, err
		}
		return &MemberExpression{
			baseNode: c.base(n.Idx0()), Object: left,
			Property: &Identifier{baseNode: c.base(n.Identifier.Idx0()), Name: n.Identifier.Name},
		}, nil
	case *ottoast.BracketExpression:
		left, err := c.expression(n.Left)
		if err != nil {
			return nil, err
		}
		member, err := c.expression(n.Member)
		if err != nil {
			return nil, err
		}
		return &MemberExpression{baseNode: c.base(n.Idx0()), Object: left, Property: member, Computed: true}, nil
	case *ottoast.SequenceExpression:
		exprs := make([]Expression, 0, len(n.Sequence))
		for _, s := range n.Sequence {
			ev, err := c.expression(s)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, ev)
		}
		return &SequenceExpression{baseNode: c.base(n.Idx0()), Expressions: exprs}, nil
	case *ottoast.VariableExpression:
		d, err := c.variableExpression(n)
		if err != nil {
			return nil, err
		}
		if d.Initializer == nil {
			return d.Target, nil
		}
		return &AssignExpression{baseNode: d.Position, Operator: AssignPlain, Target: d.Target, Value: d.Initializer}, nil
	default:
		return nil, fmt.Errorf("frontend: unsupported otto expression type %T", e)
	}
}

func unaryOperator(tok ottotoken.Token, postfix bool) (UnaryOperator, error) {
	switch tok {
	case ottotoken.PLUS:
		return OpPlus, nil
	case ottotoken.MINUS:
		return OpMinus, nil
	case ottotoken.NOT:
		return OpNot, nil
	case ottotoken.BITWISE_NOT:
		return OpBitNot, nil
	case ottotoken.TYPEOF:
		return OpTypeof, nil
	case ottotoken.VOID:
		return OpVoid, nil
	case ottotoken.DELETE:
		return OpDelete, nil
	case ottotoken.INCREMENT:
		if postfix {
			return OpPostInc, nil
		}
		return OpPreInc, nil
	case ottotoken.DECREMENT:
		if postfix {
			return OpPostDec, nil
		}
		return OpPreDec, nil
	default:
		return "", fmt.Errorf("frontend: unsupported unary operator %v", tok)
	}
}

func logicalOperator(tok ottotoken.Token) (LogicalOperator, bool) {
	switch tok {
	case ottotoken.LOGICAL_AND:
		return OpAnd, true
	case ottotoken.LOGICAL_OR:
		return OpOr, true
	default:
		return "", false
	}
}

func binaryOperator(tok ottotoken.Token) (BinaryOperator, error) {
	switch tok {
	case ottotoken.PLUS:
		return OpAdd, nil
	case ottotoken.MINUS:
		return OpSub, nil
	case ottotoken.MULTIPLY:
		return OpMul, nil
	case ottotoken.SLASH:
		return OpDiv, nil
	case ottotoken.REMAINDER:
		return OpMod, nil
	case ottotoken.AND:
		return OpBitAnd, nil
	case ottotoken.OR:
		return OpBitOr, nil
	case ottotoken.EXCLUSIVE_OR:
		return OpBitXor, nil
	case ottotoken.SHIFT_LEFT:
		return OpShl, nil
	case ottotoken.SHIFT_RIGHT:
		return OpShr, nil
	case ottotoken.UNSIGNED_SHIFT_RIGHT:
		return OpUShr, nil
	case ottotoken.EQUAL:
		return OpEq, nil
	case ottotoken.NOT_EQUAL:
		return OpNotEq, nil
	case ottotoken.STRICT_EQUAL:
		return OpStrictEq, nil
	case ottotoken.STRICT_NOT_EQUAL:
		return OpStrictNeq, nil
	case ottotoken.LESS:
		return OpLess, nil
	case ottotoken.LESS_OR_EQUAL:
		return OpLessEq, nil
	case ottotoken.GREATER:
		return OpGreater, nil
	case ottotoken.GREATER_OR_EQUAL:
		return OpGreaterEq, nil
	case ottotoken.INSTANCEOF:
		return OpInstanceof, nil
	case ottotoken.IN:
		return OpIn, nil
	default:
		return "", fmt.Errorf("frontend: unsupported binary operator %v", tok)
	}
}

func assignOperator(tok ottotoken.Token) (AssignOperator, error) {
	switch tok {
	case ottotoken.ASSIGN:
		return AssignPlain, nil
	case ottotoken.PLUS_ASSIGN:
		return AssignAdd, nil
	case ottotoken.MINUS_ASSIGN:
		return AssignSub, nil
	case ottotoken.MULTIPLY_ASSIGN:
		return AssignMul, nil
	case ottotoken.SLASH_ASSIGN:
		return AssignDiv, nil
	case ottotoken.REMAINDER_ASSIGN:
		return AssignMod, nil
	case ottotoken.AND_ASSIGN:
		return AssignBitAnd, nil
	case ottotoken.OR_ASSIGN:
		return AssignBitOr, nil
	case ottotoken.EXCLUSIVE_OR_ASSIGN:
		return AssignBitXor, nil
	case ottotoken.SHIFT_LEFT_ASSIGN:
		return AssignShl, nil
	case ottotoken.SHIFT_RIGHT_ASSIGN:
		return AssignShr, nil
	case ottotoken.UNSIGNED_SHIFT_RIGHT_ASSIGN:
		return AssignUShr, nil
	default:
		return "", fmt.Errorf("frontend: unsupported assignment operator %v", tok)
	}
}
