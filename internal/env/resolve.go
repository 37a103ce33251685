package env

// Resolve implements GetIdentifierReference (ECMA-262 9.4.2): walk the
// environment chain from env outward and return the first record that
// has a binding for name, or nil if none does (an unresolvable
// reference, which the caller turns into a ReferenceError on use but
// not on mere `typeof` inspection).
func Resolve(start Record, name string) Record {
	for cur := start; cur != nil; cur = cur.Outer() {
		if cur.HasBinding(name) {
			return cur
		}
	}
	return nil
}
