package compiler

import "github.com/cwbudde/escript/internal/frontend"

// collectCaptured returns the set of identifier names referenced
// anywhere inside a nested function/arrow/class body within body, at
// any nesting depth. A name in this set must be compiled as an
// environment-record binding rather than a local slot wherever it is
// declared in the function currently being compiled, so a closure
// further in can still reach it after this function returns.
func collectCaptured(body []frontend.Statement) map[string]bool {
	names := make(map[string]bool)
	w := &captureWalker{names: names}
	for _, s := range body {
		w.walkStatement(s, false)
	}
	return names
}

type captureWalker struct {
	names map[string]bool
}

// walkStatement recurses through a statement tree. insideNested marks
// that we're inside a nested function/class body, so every identifier
// found from here down is recorded as captured.
func (w *captureWalker) walkStatement(s frontend.Statement, insideNested bool) {
	if s == nil {
		return
	}
	switch n := s.(type) {
	case *frontend.ExpressionStatement:
		w.walkExpression(n.Expression, insideNested)
	case *frontend.VariableStatement:
		for _, d := range n.Declarations {
			w.walkExpression(d.Target, insideNested)
			if d.Initializer != nil {
				w.walkExpression(d.Initializer, insideNested)
			}
		}
	case *frontend.BlockStatement:
		for _, st := range n.Body {
			w.walkStatement(st, insideNested)
		}
	case *frontend.IfStatement:
		w.walkExpression(n.Test, insideNested)
		w.walkStatement(n.Consequent, insideNested)
		w.walkStatement(n.Alternate, insideNested)
	case *frontend.ForStatement:
		switch init := n.Init.(type) {
		case frontend.Statement:
			w.walkStatement(init, insideNested)
		case frontend.Expression:
			w.walkExpression(init, insideNested)
		}
		w.walkExpression(n.Test, insideNested)
		w.walkExpression(n.Update, insideNested)
		w.walkStatement(n.Body, insideNested)
	case *frontend.ForInStatement:
		w.walkExpression(n.Left, insideNested)
		w.walkExpression(n.Right, insideNested)
		w.walkStatement(n.Body, insideNested)
	case *frontend.ForOfStatement:
		w.walkExpression(n.Left, insideNested)
		w.walkExpression(n.Right, insideNested)
		w.walkStatement(n.Body, insideNested)
	case *frontend.WhileStatement:
		w.walkExpression(n.Test, insideNested)
		w.walkStatement(n.Body, insideNested)
	case *frontend.DoWhileStatement:
		w.walkExpression(n.Test, insideNested)
		w.walkStatement(n.Body, insideNested)
	case *frontend.ReturnStatement:
		w.walkExpression(n.Argument, insideNested)
	case *frontend.WithStatement:
		w.walkExpression(n.Object, insideNested)
		w.walkStatement(n.Body, insideNested)
	case *frontend.LabelledStatement:
		w.walkStatement(n.Body, insideNested)
	case *frontend.SwitchStatement:
		w.walkExpression(n.Discriminant, insideNested)
		for _, cc := range n.Cases {
			w.walkExpression(cc.Test, insideNested)
			for _, st := range cc.Consequent {
				w.walkStatement(st, insideNested)
			}
		}
	case *frontend.ThrowStatement:
		w.walkExpression(n.Argument, insideNested)
	case *frontend.TryStatement:
		w.walkStatement(n.Block, insideNested)
		if n.Handler != nil {
			w.walkExpression(n.Handler.Param, insideNested)
			w.walkStatement(n.Handler.Body, insideNested)
		}
		w.walkStatement(n.Finalizer, insideNested)
	case *frontend.FunctionDeclaration:
		// The declaration's own name binds in the enclosing scope, not
		// inside the nested body, so it is recorded only if we're
		// already inside a nested function when this declaration is
		// reached (a function declared inside a closure, itself
		// referenced by a further-nested closure).
		if insideNested {
			w.names[n.Name] = true
		}
		w.walkFunctionBody(n.Params, n.Body)
	case *frontend.ClassDeclaration:
		if insideNested {
			w.names[n.Name] = true
		}
		w.walkExpression(n.SuperClass, insideNested)
		w.walkClassMembers(n.Members)
	}
}

func (w *captureWalker) walkFunctionBody(params []*frontend.Param, body *frontend.BlockStatement) {
	for _, p := range params {
		w.walkExpression(p.Default, true)
	}
	if body == nil {
		return
	}
	for _, st := range body.Body {
		w.walkStatement(st, true)
	}
}

func (w *captureWalker) walkClassMembers(members []*frontend.ClassMember) {
	for _, m := range members {
		if m.Computed {
			w.walkExpression(m.Key, true)
		}
		w.walkExpression(m.Value, true)
	}
}

func (w *captureWalker) walkExpression(e frontend.Expression, insideNested bool) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *frontend.Identifier:
		if insideNested {
			w.names[n.Name] = true
		}
	case *frontend.TemplateLiteral:
		for _, ex := range n.Expressions {
			w.walkExpression(ex, insideNested)
		}
	case *frontend.ArrayLiteral:
		for _, el := range n.Elements {
			w.walkExpression(el.Expression, insideNested)
		}
	case *frontend.ObjectLiteral:
		for _, p := range n.Properties {
			if p.Computed {
				w.walkExpression(p.Key, insideNested)
			}
			w.walkExpression(p.Value, insideNested)
		}
	case *frontend.FunctionExpression:
		if n.Name != "" && insideNested {
			w.names[n.Name] = true
		}
		for _, p := range n.Params {
			w.walkExpression(p.Default, true)
		}
		if n.Body != nil {
			for _, st := range n.Body.Body {
				w.walkStatement(st, true)
			}
		}
		w.walkExpression(n.ExpressionBody, true)
	case *frontend.ClassExpression:
		w.walkExpression(n.SuperClass, insideNested)
		w.walkClassMembers(n.Members)
	case *frontend.UnaryExpression:
		w.walkExpression(n.Argument, insideNested)
	case *frontend.BinaryExpression:
		w.walkExpression(n.Left, insideNested)
		w.walkExpression(n.Right, insideNested)
	case *frontend.LogicalExpression:
		w.walkExpression(n.Left, insideNested)
		w.walkExpression(n.Right, insideNested)
	case *frontend.AssignExpression:
		w.walkExpression(n.Target, insideNested)
		w.walkExpression(n.Value, insideNested)
	case *frontend.ConditionalExpression:
		w.walkExpression(n.Test, insideNested)
		w.walkExpression(n.Consequent, insideNested)
		w.walkExpression(n.Alternate, insideNested)
	case *frontend.CallExpression:
		w.walkExpression(n.Callee, insideNested)
		for _, a := range n.Arguments {
			w.walkExpression(a.Expression, insideNested)
		}
	case *frontend.NewExpression:
		w.walkExpression(n.Callee, insideNested)
		for _, a := range n.Arguments {
			w.walkExpression(a.Expression, insideNested)
		}
	case *frontend.MemberExpression:
		w.walkExpression(n.Object, insideNested)
		if n.Computed {
			w.walkExpression(n.Property, insideNested)
		}
	case *frontend.SequenceExpression:
		for _, ex := range n.Expressions {
			w.walkExpression(ex, insideNested)
		}
	case *frontend.SpreadExpression:
		w.walkExpression(n.Argument, insideNested)
	case *frontend.YieldExpression:
		w.walkExpression(n.Argument, insideNested)
	case *frontend.AwaitExpression:
		w.walkExpression(n.Argument, insideNested)
	case *frontend.TaggedTemplateExpression:
		w.walkExpression(n.Tag, insideNested)
		w.walkExpression(n.Template, insideNested)
	case *frontend.ArrayPattern:
		for _, el := range n.Elements {
			w.walkExpression(el.Expression, insideNested)
		}
	case *frontend.ObjectPattern:
		for _, p := range n.Properties {
			w.walkExpression(p.Value, insideNested)
			w.walkExpression(p.Default, insideNested)
		}
	}
}
