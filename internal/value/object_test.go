package value

import "testing"

func TestOrdinaryGetSetPrototypeChain(t *testing.T) {
	proto := NewObject(nil)
	proto.DefineDataProperty(StringKey("greeting"), String("hi"))

	obj := NewObject(proto)
	got, err := obj.Get(StringKey("greeting"), FromObject(obj))
	if err != nil {
		t.Fatal(err)
	}
	if got.AsString() != "hi" {
		t.Fatalf("expected inherited property, got %v", got.DebugString())
	}

	ok, err := obj.Set(StringKey("greeting"), String("own"), FromObject(obj))
	if err != nil || !ok {
		t.Fatalf("set should succeed: ok=%v err=%v", ok, err)
	}
	got, _ = obj.Get(StringKey("greeting"), FromObject(obj))
	if got.AsString() != "own" {
		t.Fatalf("own property should shadow prototype, got %v", got.DebugString())
	}
	protoVal, _ := proto.Get(StringKey("greeting"), FromObject(proto))
	if protoVal.AsString() != "hi" {
		t.Fatal("prototype's own property must be unaffected by shadowing")
	}
}

func TestNonWritableBlocksSet(t *testing.T) {
	obj := NewObject(nil)
	obj.DefineOwnProperty(StringKey("x"), DataDescriptor(Number(1), false, true, true))

	ok, err := obj.Set(StringKey("x"), Number(2), FromObject(obj))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("set on non-writable property must fail")
	}
	v, _ := obj.Get(StringKey("x"), FromObject(obj))
	if v.Num != 1 {
		t.Fatal("non-writable property value must be unchanged")
	}
}

func TestPreventExtensionsBlocksNewProperty(t *testing.T) {
	obj := NewObject(nil)
	obj.PreventExtensions()
	if obj.DefineOwnProperty(StringKey("x"), DataDescriptor(Number(1), true, true, true)) {
		t.Fatal("defining a new property on a non-extensible object must fail")
	}
}

func TestNonConfigurableBlocksDelete(t *testing.T) {
	obj := NewObject(nil)
	obj.DefineOwnProperty(StringKey("x"), DataDescriptor(Number(1), true, true, false))
	if obj.Delete(StringKey("x")) {
		t.Fatal("deleting a non-configurable property must fail")
	}
	if !obj.HasProperty(StringKey("x")) {
		t.Fatal("property must still be present after failed delete")
	}
}

func TestOwnPropertyKeysOrdering(t *testing.T) {
	obj := NewObject(nil)
	obj.DefineDataProperty(StringKey("b"), Number(1))
	obj.DefineDataProperty(StringKey("2"), Number(1))
	obj.DefineDataProperty(StringKey("a"), Number(1))
	obj.DefineDataProperty(StringKey("0"), Number(1))
	sym := SymbolKey(NewSymbol("s"))
	obj.DefineOwnProperty(sym, DataDescriptor(Number(1), true, true, true))

	keys := obj.OwnPropertyKeys()
	want := []string{"0", "2", "b", "a"}
	for i, w := range want {
		if keys[i].DebugString() != w {
			t.Fatalf("key[%d] = %s, want %s", i, keys[i].DebugString(), w)
		}
	}
	if !keys[len(keys)-1].IsSymbol() {
		t.Fatal("symbol keys must come last")
	}
}

func TestSetPrototypeOfRejectsCycle(t *testing.T) {
	a := NewObject(nil)
	b := NewObject(a)
	if a.SetPrototypeOf(b) {
		t.Fatal("setting a prototype cycle must fail")
	}
}

func TestAccessorProperty(t *testing.T) {
	obj := NewObject(nil)
	backing := Number(0)
	get := NewObject(nil)
	get.Call = func(this Value, args []Value) (Value, error) { return backing, nil }
	set := NewObject(nil)
	set.Call = func(this Value, args []Value) (Value, error) {
		backing = args[0]
		return Undefined(), nil
	}
	obj.DefineOwnProperty(StringKey("x"), AccessorDescriptor(get, set, true, true))

	if _, err := obj.Set(StringKey("x"), Number(42), FromObject(obj)); err != nil {
		t.Fatal(err)
	}
	got, _ := obj.Get(StringKey("x"), FromObject(obj))
	if got.Num != 42 {
		t.Fatalf("accessor round-trip failed, got %v", got.DebugString())
	}
}
