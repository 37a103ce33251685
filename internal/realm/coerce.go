package realm

import "github.com/cwbudde/escript/internal/value"

// ToObject implements ToObject (ECMA-262 7.1.18). It needs a Realm
// (not just internal/value) because boxing a primitive means handing
// it the realm's own prototype object, which internal/value has no
// way to reach without creating an import cycle back to this package.
func (r *Realm) ToObject(v value.Value) (*value.Object, error) {
	switch {
	case v.IsUndefined() || v.IsNull():
		return nil, &value.CoercionError{Message: "cannot convert undefined or null to object"}
	case v.IsObject():
		return v.AsObject(), nil
	case v.IsBoolean():
		o := value.NewObject(r.ObjectPrototype)
		o.Class = "Boolean"
		o.Extra = v.AsBool()
		return o, nil
	case v.IsNumber():
		o := value.NewObject(r.ObjectPrototype)
		o.Class = "Number"
		o.Extra = v.Num
		return o, nil
	case v.IsBigInt():
		o := value.NewObject(r.ObjectPrototype)
		o.Class = "BigInt"
		o.Extra = v.AsBigInt()
		return o, nil
	case v.IsString():
		o := value.NewObject(r.ObjectPrototype)
		o.Class = "String"
		o.Extra = v.AsString()
		return o, nil
	case v.IsSymbol():
		o := value.NewObject(r.ObjectPrototype)
		o.Class = "Symbol"
		o.Extra = v.AsSymbol()
		return o, nil
	default:
		return nil, &value.CoercionError{Message: "cannot convert value to object"}
	}
}
