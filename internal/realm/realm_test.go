package realm

import (
	"testing"

	"github.com/cwbudde/escript/internal/value"
)

func newTestRealm() *Realm {
	agent := NewAgent(0)
	return agent.NewRealm()
}

func getGlobal(r *Realm, name string) value.Value {
	v, _ := r.GlobalObject.Get(value.StringKey(name), value.FromObject(r.GlobalObject))
	return v
}

func callGlobalMethod(t *testing.T, r *Realm, owner value.Value, name string, args ...value.Value) value.Value {
	t.Helper()
	obj := owner.AsObject()
	m, _ := obj.Get(value.StringKey(name), owner)
	fn := m.AsObject()
	if fn == nil || !fn.IsCallable() {
		t.Fatalf("%s is not callable", name)
	}
	result, err := fn.Call(owner, args)
	if err != nil {
		t.Fatalf("%s call failed: %v", name, err)
	}
	return result
}

func TestObjectFreezeBlocksWrites(t *testing.T) {
	r := newTestRealm()
	obj := value.NewObject(r.ObjectPrototype)
	obj.DefineDataProperty(value.StringKey("x"), value.Number(1))

	objectCtor := getGlobal(r, "Object")
	callGlobalMethod(t, r, objectCtor, "freeze", value.FromObject(obj))

	ok, err := obj.Set(value.StringKey("x"), value.Number(2), value.FromObject(obj))
	if err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if ok {
		t.Fatalf("Set succeeded on frozen object")
	}
	v, _ := obj.Get(value.StringKey("x"), value.FromObject(obj))
	if v.Num != 1 {
		t.Fatalf("expected x to remain 1, got %v", v.Num)
	}
	if obj.DefineOwnProperty(value.StringKey("y"), value.DataDescriptor(value.Number(9), true, true, true)) {
		t.Fatalf("new property defined on frozen object")
	}
}

func TestObjectIsFrozen(t *testing.T) {
	r := newTestRealm()
	obj := value.NewObject(r.ObjectPrototype)
	objectCtor := getGlobal(r, "Object")

	if callGlobalMethod(t, r, objectCtor, "isFrozen", value.FromObject(obj)).ToBoolean() {
		t.Fatalf("expected fresh object to not be frozen")
	}
	callGlobalMethod(t, r, objectCtor, "freeze", value.FromObject(obj))
	if !callGlobalMethod(t, r, objectCtor, "isFrozen", value.FromObject(obj)).ToBoolean() {
		t.Fatalf("expected frozen object to report isFrozen true")
	}
}

func TestObjectGetSetPrototypeOf(t *testing.T) {
	r := newTestRealm()
	objectCtor := getGlobal(r, "Object")
	base := value.NewObject(r.ObjectPrototype)
	child := value.NewObject(nil)

	callGlobalMethod(t, r, objectCtor, "setPrototypeOf", value.FromObject(child), value.FromObject(base))
	got := callGlobalMethod(t, r, objectCtor, "getPrototypeOf", value.FromObject(child))
	if got.AsObject() != base {
		t.Fatalf("expected prototype to be base object")
	}
}

func TestObjectKeysEnumerableOnly(t *testing.T) {
	r := newTestRealm()
	obj := value.NewObject(r.ObjectPrototype)
	obj.DefineDataProperty(value.StringKey("a"), value.Number(1))
	obj.DefineOwnProperty(value.StringKey("hidden"), value.DataDescriptor(value.Number(2), true, false, true))

	objectCtor := getGlobal(r, "Object")
	keysArr := callGlobalMethod(t, r, objectCtor, "keys", value.FromObject(obj)).AsObject()
	length, _ := keysArr.Get(value.StringKey("length"), value.FromObject(keysArr))
	if length.Num != 1 {
		t.Fatalf("expected 1 enumerable key, got %v", length.Num)
	}
}

func TestAgentJobQueueFIFO(t *testing.T) {
	agent := NewAgent(0)
	var order []int
	agent.EnqueueJob(func() error { order = append(order, 1); return nil })
	agent.EnqueueJob(func() error {
		order = append(order, 2)
		agent.EnqueueJob(func() error { order = append(order, 3); return nil })
		return nil
	})
	if err := agent.RunJobs(); err != nil {
		t.Fatalf("RunJobs returned error: %v", err)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("unexpected job order: %v", order)
	}
}

func TestAgentCallDepthGuard(t *testing.T) {
	agent := NewAgent(2)
	if !agent.EnterCall() {
		t.Fatalf("first EnterCall should succeed")
	}
	if !agent.EnterCall() {
		t.Fatalf("second EnterCall should succeed")
	}
	if agent.EnterCall() {
		t.Fatalf("third EnterCall should fail at max depth 2")
	}
	agent.ExitCall()
	if !agent.EnterCall() {
		t.Fatalf("EnterCall should succeed again after ExitCall")
	}
}
