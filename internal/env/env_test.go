package env

import (
	"errors"
	"testing"

	"github.com/cwbudde/escript/internal/value"
)

func TestTemporalDeadZone(t *testing.T) {
	d := NewDeclarative(nil)
	d.CreateLexicalBinding("x")

	if _, err := d.GetBindingValue("x", true); err == nil {
		t.Fatal("reading an uninitialized let binding must fail")
	}
	if err := d.InitializeBinding("x", value.Number(1)); err != nil {
		t.Fatal(err)
	}
	v, err := d.GetBindingValue("x", true)
	if err != nil || v.Num != 1 {
		t.Fatalf("expected 1 after initialization, got %v err=%v", v.DebugString(), err)
	}
}

func TestConstReassignmentFails(t *testing.T) {
	d := NewDeclarative(nil)
	d.CreateImmutableBinding("c", true)
	d.InitializeBinding("c", value.Number(1))

	err := d.SetMutableBinding("c", value.Number(2), true)
	var typeErr *TypeErrorBinding
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected TypeErrorBinding, got %v", err)
	}
}

func TestResolveWalksChain(t *testing.T) {
	outer := NewDeclarative(nil)
	outer.CreateMutableBinding("a", false)
	outer.InitializeBinding("a", value.Number(1))

	inner := NewDeclarative(outer)
	inner.CreateMutableBinding("b", false)

	if Resolve(inner, "a") == nil {
		t.Fatal("should resolve outer binding from inner scope")
	}
	if Resolve(inner, "missing") != nil {
		t.Fatal("should not resolve undeclared name")
	}
}

func TestCreateGlobalVarBindingRejectsRestrictedProperty(t *testing.T) {
	obj := value.NewObject(nil)
	obj.DefineOwnProperty(value.StringKey("undefined"), value.DataDescriptor(value.Undefined(), false, false, false))
	g := NewGlobal(obj)

	err := g.CreateGlobalVarBinding("undefined", false)
	var restricted *RestrictedGlobalError
	if !errors.As(err, &restricted) {
		t.Fatalf("expected RestrictedGlobalError, got %v", err)
	}
	if restricted.Name != "undefined" {
		t.Fatalf("expected name %q, got %q", "undefined", restricted.Name)
	}
}

func TestCreateGlobalVarBindingAllowsConfigurableProperty(t *testing.T) {
	obj := value.NewObject(nil)
	obj.DefineOwnProperty(value.StringKey("x"), value.DataDescriptor(value.Number(1), true, true, true))
	g := NewGlobal(obj)

	if err := g.CreateGlobalVarBinding("x", false); err != nil {
		t.Fatalf("declaring over a configurable property should succeed, got %v", err)
	}
}

func TestPerIterationBindingIndependence(t *testing.T) {
	// Models what the compiler does for `for (let i = 0; ...)`: a fresh
	// declarative environment per iteration, each capturing its own `i`.
	outer := NewDeclarative(nil)
	var captured []Record
	for i := 0; i < 3; i++ {
		iter := NewDeclarative(outer)
		iter.CreateLexicalBinding("i")
		iter.InitializeBinding("i", value.Number(float64(i)))
		captured = append(captured, iter)
	}
	for i, rec := range captured {
		v, err := rec.GetBindingValue("i", true)
		if err != nil {
			t.Fatal(err)
		}
		if int(v.Num) != i {
			t.Fatalf("iteration %d: binding captured %v, want %d", i, v.Num, i)
		}
	}
}
