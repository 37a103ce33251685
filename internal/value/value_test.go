package value

import "testing"

func TestToBoolean(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Undefined(), false},
		{Null(), false},
		{Bool(false), false},
		{Bool(true), true},
		{Number(0), false},
		{Number(-0.0), false},
		{Number(1), true},
		{String(""), false},
		{String("0"), true},
	}
	for _, c := range cases {
		if got := c.v.ToBoolean(); got != c.want {
			t.Errorf("ToBoolean(%s) = %v, want %v", c.v.DebugString(), got, c.want)
		}
	}
}

func TestSameValueZeroNaN(t *testing.T) {
	nan := Number(nan())
	if !SameValueZero(nan, nan) {
		t.Fatal("SameValueZero(NaN, NaN) should be true")
	}
	if SameValueZero(Number(0), Number(1)) {
		t.Fatal("0 should not equal 1")
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestTypeOf(t *testing.T) {
	if Undefined().TypeOf() != "undefined" {
		t.Fatal("typeof undefined")
	}
	if Null().TypeOf() != "object" {
		t.Fatal("typeof null must be object")
	}
	fn := NewObject(nil)
	fn.Call = func(this Value, args []Value) (Value, error) { return Undefined(), nil }
	if FromObject(fn).TypeOf() != "function" {
		t.Fatal("typeof callable object must be function")
	}
}

func TestArrayIndexKey(t *testing.T) {
	if idx, ok := StringKey("0").ArrayIndex(); !ok || idx != 0 {
		t.Fatal("\"0\" should be array index 0")
	}
	if _, ok := StringKey("01").ArrayIndex(); ok {
		t.Fatal("\"01\" is not a canonical array index")
	}
	if _, ok := StringKey("-1").ArrayIndex(); ok {
		t.Fatal("\"-1\" is not an array index")
	}
}
