package interp

import (
	"github.com/cwbudde/escript/internal/env"
	"github.com/cwbudde/escript/internal/errs"
	"github.com/cwbudde/escript/internal/value"
)

// getBinding reads a named binding out of the current scope chain.
// "this" and "new.target" are never real declared bindings in any
// Record - they are intercepted here by name and resolved through the
// dedicated helpers in internal/env instead of a generic Resolve walk.
func (f *Frame) getBinding(name string) (value.Value, error) {
	switch name {
	case "this":
		return env.GetThisBinding(f.curEnv)
	case "new.target":
		return value.FromObject(env.GetNewTarget(f.curEnv)), nil
	}
	rec := env.Resolve(f.curEnv, name)
	if rec == nil {
		return value.Undefined(), &env.ReferenceError{Name: name, Reason: "undeclared"}
	}
	return rec.GetBindingValue(name, true)
}

func (f *Frame) setBinding(name string, v value.Value) error {
	rec := env.Resolve(f.curEnv, name)
	if rec == nil {
		return &env.ReferenceError{Name: name, Reason: "undeclared"}
	}
	return rec.SetMutableBinding(name, v, true)
}

// initBinding installs v into the binding a preceding OpDeclareLet /
// OpDeclareConst created in this same scope, clearing its TDZ. Failure
// to resolve here means the compiler emitted an init without a prior
// declare, an engine bug rather than a user-facing error.
func (f *Frame) initBinding(name string, v value.Value) error {
	rec := env.Resolve(f.curEnv, name)
	if rec == nil {
		return errs.NewInternal("InitBinding on undeclared binding %q", name)
	}
	return rec.InitializeBinding(name, v)
}

// declareVar/declareLet/declareConst dispatch on the concrete Record
// implementation because CreateGlobalVarBinding/CreateGlobalLexicalBinding
// (env.Global) and CreateLexicalBinding (env.Declarative, embedded by
// env.Function) are not part of the generic env.Record interface.
// declareVar is the only one of the three that can fail: a global
// `var`/function declaration can be blocked by an existing
// non-configurable global property of the same name.
func declareVar(rec env.Record, name string) error {
	switch e := rec.(type) {
	case *env.Global:
		return e.CreateGlobalVarBinding(name, false)
	case *env.Function:
		if !e.HasBinding(name) {
			e.CreateMutableBinding(name, false)
		}
	case *env.Declarative:
		if !e.HasBinding(name) {
			e.CreateMutableBinding(name, false)
		}
	}
	return nil
}

func declareLet(rec env.Record, name string) {
	switch e := rec.(type) {
	case *env.Global:
		e.CreateGlobalLexicalBinding(name, true)
	case *env.Function:
		e.CreateLexicalBinding(name)
	case *env.Declarative:
		e.CreateLexicalBinding(name)
	}
}

func declareConst(rec env.Record, name string) {
	switch e := rec.(type) {
	case *env.Global:
		e.CreateGlobalLexicalBinding(name, false)
	case *env.Function:
		e.CreateImmutableBinding(name, true)
	case *env.Declarative:
		e.CreateImmutableBinding(name, true)
	}
}
