package value

// OrdinaryHasInstance implements OrdinaryHasInstance (ECMA-262 7.3.22)
// for the common case: ctor is not a bound function, so instanceof
// walks obj's prototype chain comparing against ctor's own "prototype"
// property.
func OrdinaryHasInstance(ctor, obj *Object) (bool, error) {
	if ctor == nil || !ctor.IsCallable() {
		return false, typeError("right-hand side of 'instanceof' is not callable")
	}
	if obj == nil {
		return false, nil
	}
	protoVal, err := ctor.Get(StringKey("prototype"), FromObject(ctor))
	if err != nil {
		return false, err
	}
	proto := protoVal.AsObject()
	if proto == nil {
		return false, typeError("function has non-object prototype in instanceof check")
	}
	for cur := obj.GetPrototypeOf(); cur != nil; cur = cur.GetPrototypeOf() {
		if cur == proto {
			return true, nil
		}
	}
	return false, nil
}
