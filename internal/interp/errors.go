package interp

import (
	"fmt"
	"strings"

	"github.com/cwbudde/escript/internal/env"
	"github.com/cwbudde/escript/internal/realm"
	"github.com/cwbudde/escript/internal/value"
)

// valueFromError converts a Go error raised by an opcode handler into
// the JS value that should land in the enclosing catch binding. It is
// never called with an *errs.InternalError - raiseAt filters that case
// out before reaching here.
func valueFromError(r *realm.Realm, err error) value.Value {
	switch e := err.(type) {
	case *jsThrow:
		return e.val
	case *ThrownValue:
		return e.Value
	case *value.CoercionError:
		return value.FromObject(r.NewNativeError("TypeError", e.Message))
	case *env.ReferenceError:
		msg := fmt.Sprintf("%s is not defined", e.Name)
		if e.Reason == "accessed before initialization" {
			msg = fmt.Sprintf("Cannot access '%s' before initialization", e.Name)
		}
		return value.FromObject(r.NewNativeError("ReferenceError", msg))
	case *env.TypeErrorBinding:
		return value.FromObject(r.NewNativeError("TypeError", fmt.Sprintf("Assignment to constant variable '%s'", e.Name)))
	case *env.RestrictedGlobalError:
		return value.FromObject(r.NewNativeError("TypeError", fmt.Sprintf("Identifier '%s' has already been declared", e.Name)))
	}

	msg := err.Error()
	for _, kind := range []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError"} {
		prefix := kind + ": "
		if strings.HasPrefix(msg, prefix) {
			return value.FromObject(r.NewNativeError(kind, strings.TrimPrefix(msg, prefix)))
		}
	}
	return value.FromObject(r.NewNativeError("Error", msg))
}
