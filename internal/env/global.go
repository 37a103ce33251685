package env

import "github.com/cwbudde/escript/internal/value"

// Global is the global environment record (ECMA-262 9.1.1.4): a
// composite of an object environment record over the global object
// (for `var`/function declarations, matching their observable
// behavior as configurable/non-configurable own properties of
// globalThis) and a declarative record (for `let`/`const`/`class` at
// top level).
type Global struct {
	ObjectRec      *ObjectRecord
	DeclarativeRec *Declarative
	varNames       map[string]bool
}

func NewGlobal(globalObject *value.Object) *Global {
	g := &Global{varNames: make(map[string]bool)}
	g.ObjectRec = NewObjectRecord(globalObject, false, nil)
	g.DeclarativeRec = NewDeclarative(nil)
	return g
}

func (g *Global) Outer() Record { return nil }

func (g *Global) HasBinding(name string) bool {
	return g.DeclarativeRec.HasBinding(name) || g.ObjectRec.HasBinding(name)
}

func (g *Global) HasVarDeclaration(name string) bool { return g.varNames[name] }

func (g *Global) HasLexicalDeclaration(name string) bool {
	return g.DeclarativeRec.HasBinding(name)
}

// hasRestrictedGlobalProperty implements hasRestrictedGlobalProperty
// (9.1.1.4.15): true when name is already an own, non-configurable
// property of the global object, which blocks declaring a var or
// function binding of the same name rather than silently coexisting
// with it (the prototype chain never counts - only an own property
// of globalThis restricts a declaration).
func (g *Global) hasRestrictedGlobalProperty(name string) bool {
	desc := g.ObjectRec.Bindings.GetOwnProperty(value.StringKey(name))
	return desc != nil && !desc.Configurable
}

// CreateGlobalVarBinding implements CreateGlobalVarBinding (9.1.1.4.14):
// `var`/function-declaration bindings live as properties of the
// global object itself. It returns a RestrictedGlobalError instead of
// declaring over a non-configurable global property of the same name
// (9.1.1.4.15/9.1.1.4.16's GlobalDeclarationInstantiation pre-check).
func (g *Global) CreateGlobalVarBinding(name string, deletable bool) error {
	if g.hasRestrictedGlobalProperty(name) {
		return &RestrictedGlobalError{Name: name}
	}
	g.varNames[name] = true
	if !g.ObjectRec.Bindings.HasProperty(value.StringKey(name)) {
		g.ObjectRec.CreateMutableBinding(name, deletable)
		g.ObjectRec.InitializeBinding(name, value.Undefined())
	}
	return nil
}

// CreateGlobalLexicalBinding implements CreateGlobalLexicalBinding
// (9.1.1.4.16): `let`/`const`/`class` at top level live in the
// declarative half, never as properties of globalThis.
func (g *Global) CreateGlobalLexicalBinding(name string, mutable bool) {
	if mutable {
		g.DeclarativeRec.CreateLexicalBinding(name)
	} else {
		g.DeclarativeRec.CreateImmutableBinding(name, true)
	}
}

func (g *Global) CreateMutableBinding(name string, deletable bool) {
	g.ObjectRec.CreateMutableBinding(name, deletable)
}

func (g *Global) CreateImmutableBinding(name string, strict bool) {
	g.DeclarativeRec.CreateImmutableBinding(name, strict)
}

func (g *Global) InitializeBinding(name string, v value.Value) error {
	if g.DeclarativeRec.HasBinding(name) {
		return g.DeclarativeRec.InitializeBinding(name, v)
	}
	return g.ObjectRec.InitializeBinding(name, v)
}

func (g *Global) SetMutableBinding(name string, v value.Value, strict bool) error {
	if g.DeclarativeRec.HasBinding(name) {
		return g.DeclarativeRec.SetMutableBinding(name, v, strict)
	}
	return g.ObjectRec.SetMutableBinding(name, v, strict)
}

func (g *Global) GetBindingValue(name string, strict bool) (value.Value, error) {
	if g.DeclarativeRec.HasBinding(name) {
		return g.DeclarativeRec.GetBindingValue(name, strict)
	}
	return g.ObjectRec.GetBindingValue(name, strict)
}

func (g *Global) DeleteBinding(name string) bool {
	if g.DeclarativeRec.HasBinding(name) {
		return false
	}
	delete(g.varNames, name)
	return g.ObjectRec.DeleteBinding(name)
}
