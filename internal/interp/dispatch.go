package interp

import (
	"math/big"

	"github.com/cwbudde/escript/internal/env"
	"github.com/cwbudde/escript/internal/errs"
	"github.com/cwbudde/escript/internal/ir"
	"github.com/cwbudde/escript/internal/value"
)

// ThrownValue is the error type a Call/Construct/RunProgram invocation
// returns for an uncaught script exception: the live Value that was
// thrown (for embedders and for an enclosing Go caller that wants to
// inspect it) alongside the rendered errs.RuntimeError every other
// part of the engine deals in.
type ThrownValue struct {
	*errs.RuntimeError
	Value value.Value
}

// jsThrow is the internal error shape for a value in flight to the
// nearest handler region; it is never returned across a Call/Construct
// boundary unhandled (raiseAt always converts it to a ThrownValue
// first via propagate).
type jsThrow struct{ val value.Value }

func (e *jsThrow) Error() string { return "uncaught: " + e.val.DebugString() }

// run is the bytecode dispatch loop for one Frame. It returns when the
// function body completes (outcomeReturn) or, for a generator body,
// when it hits a yield point (outcomeYield) - in the latter case f is
// still live and a later call resumes exactly where this left off,
// since f.ip and f.stack are untouched by returning.
func run(f *Frame) (value.Value, outcome, error) {
	fi := f.fd.FI
	code := fi.Code

	for {
		if f.ip >= len(code) {
			return value.Undefined(), outcomeReturn, nil
		}
		instOffset := f.ip
		inst := code[f.ip]
		f.ip++
		op := inst.OpCode()

		var err error

		switch op {
		// ---- stack / constants ----
		case ir.OpLoadConst:
			f.push(loadConstant(fi, inst.B()))
		case ir.OpLoadUndefined:
			f.push(value.Undefined())
		case ir.OpLoadNull:
			f.push(value.Null())
		case ir.OpLoadTrue:
			f.push(value.Bool(true))
		case ir.OpLoadFalse:
			f.push(value.Bool(false))
		case ir.OpPop:
			f.pop()
		case ir.OpDup:
			f.push(f.peek())

		// ---- locals ----
		case ir.OpGetLocal:
			f.push(f.locals[inst.B()])
		case ir.OpSetLocal:
			f.locals[inst.B()] = f.peek()
		case ir.OpInitLocal:
			f.locals[inst.B()] = f.pop()

		// ---- environment-record bindings ----
		case ir.OpGetBinding:
			name := fi.Constants[inst.B()].Str
			var v value.Value
			v, err = f.getBinding(name)
			if err == nil {
				f.push(v)
			}
		case ir.OpSetBinding:
			name := fi.Constants[inst.B()].Str
			err = f.setBinding(name, f.peek())
		case ir.OpInitBinding:
			name := fi.Constants[inst.B()].Str
			err = f.initBinding(name, f.pop())
		case ir.OpDeclareVar:
			err = declareVar(f.curEnv, fi.Constants[inst.B()].Str)
		case ir.OpDeclareLet:
			declareLet(f.curEnv, fi.Constants[inst.B()].Str)
		case ir.OpDeclareConst:
			declareConst(f.curEnv, fi.Constants[inst.B()].Str)
		case ir.OpPushScope:
			f.curEnv = env.NewDeclarative(f.curEnv)
		case ir.OpPopScope:
			f.curEnv = f.curEnv.Outer()

		// ---- properties ----
		case ir.OpGetProp:
			key := constKey(fi, inst.B())
			objVal := f.pop()
			var v value.Value
			v, err = f.getProperty(objVal, key)
			if err == nil {
				f.push(v)
			}
		case ir.OpSetProp:
			key := constKey(fi, inst.B())
			v := f.pop()
			objVal := f.pop()
			err = f.setProperty(objVal, key, v)
			if err == nil {
				f.push(v)
			}
		case ir.OpGetPropComp:
			keyVal := f.pop()
			objVal := f.pop()
			var key value.PropertyKey
			key, err = value.ToPropertyKey(keyVal)
			if err == nil {
				var v value.Value
				v, err = f.getProperty(objVal, key)
				if err == nil {
					f.push(v)
				}
			}
		case ir.OpSetPropComp:
			v := f.pop()
			keyVal := f.pop()
			objVal := f.pop()
			var key value.PropertyKey
			key, err = value.ToPropertyKey(keyVal)
			if err == nil {
				err = f.setProperty(objVal, key, v)
				if err == nil {
					f.push(v)
				}
			}
		case ir.OpGetSuperProp:
			key := constKey(fi, inst.B())
			var thisVal value.Value
			thisVal, err = env.GetThisBinding(f.curEnv)
			if err == nil {
				base := env.GetSuperBase(f.curEnv)
				if base == nil {
					err = errs.NewInternal("super property access outside a method")
				} else {
					var v value.Value
					v, err = base.Get(key, thisVal)
					if err == nil {
						f.push(v)
					}
				}
			}
		case ir.OpSetSuperProp:
			key := constKey(fi, inst.B())
			v := f.pop()
			var thisVal value.Value
			thisVal, err = env.GetThisBinding(f.curEnv)
			if err == nil {
				base := env.GetSuperBase(f.curEnv)
				if base == nil {
					err = errs.NewInternal("super property access outside a method")
				} else {
					var ok bool
					ok, err = base.Set(key, v, thisVal)
					if err == nil && !ok {
						err = typeErr("cannot set property %s", key.DebugString())
					}
					if err == nil {
						f.push(v)
					}
				}
			}
		case ir.OpDeleteProp:
			key := constKey(fi, inst.B())
			objVal := f.pop()
			f.push(value.Bool(deleteProperty(objVal, key)))
		case ir.OpDeletePropComp:
			keyVal := f.pop()
			objVal := f.pop()
			var key value.PropertyKey
			key, err = value.ToPropertyKey(keyVal)
			if err == nil {
				f.push(value.Bool(deleteProperty(objVal, key)))
			}
		case ir.OpInKeyword:
			objVal := f.pop()
			keyVal := f.pop()
			obj := objVal.AsObject()
			if obj == nil {
				err = typeErr("cannot use 'in' operator on a non-object")
			} else {
				var key value.PropertyKey
				key, err = value.ToPropertyKey(keyVal)
				if err == nil {
					f.push(value.Bool(obj.HasProperty(key)))
				}
			}
		case ir.OpInstanceOf:
			ctorVal := f.pop()
			v := f.pop()
			var result bool
			result, err = value.OrdinaryHasInstance(ctorVal.AsObject(), v.AsObject())
			if err == nil {
				f.push(value.Bool(result))
			}

		// ---- object / array / class construction ----
		case ir.OpNewObject:
			n := int(inst.B())
			pairs := f.popN(n * 2)
			obj := value.NewObject(f.fd.Realm.ObjectPrototype)
			for i := 0; i < n && err == nil; i++ {
				var key value.PropertyKey
				key, err = value.ToPropertyKey(pairs[i*2])
				if err == nil {
					obj.DefineDataProperty(key, pairs[i*2+1])
				}
			}
			if err == nil {
				f.push(value.FromObject(obj))
			}
		case ir.OpNewArray:
			n := int(inst.B())
			elems := f.popN(n)
			f.push(value.FromObject(value.NewArray(f.fd.Realm.ArrayPrototype, elems...)))
		case ir.OpArrayPush:
			v := f.pop()
			arr := f.peek().AsObject()
			n := arrayLenOf(arr)
			arr.DefineDataProperty(value.StringKey(itoaKey(n)), v)
			setArrayLen(arr, n+1)
		case ir.OpObjectDefineAccessor:
			fn := f.pop()
			keyVal := f.pop()
			obj := f.peek().AsObject()
			var key value.PropertyKey
			key, err = value.ToPropertyKey(keyVal)
			if err == nil {
				defineAccessor(obj, key, fn.AsObject(), inst.A() == 1)
			}
		case ir.OpMakeClosure:
			child := fi.Children[inst.B()]
			f.push(value.FromObject(makeClosure(f.fd.Realm, child, f.curEnv)))
		case ir.OpMakeClass:
			superVal := f.pop()
			child := fi.Children[inst.B()]
			var ctor *value.Object
			ctor, err = makeClass(f.fd.Realm, child, f.curEnv, superVal)
			if err == nil {
				f.push(value.FromObject(ctor))
			}
		case ir.OpClassDefineMethod:
			fn := f.pop()
			keyVal := f.pop()
			ctor := f.peek().AsObject()
			var key value.PropertyKey
			key, err = value.ToPropertyKey(keyVal)
			if err == nil {
				defineClassMethod(ctor, key, fn.AsObject(), inst.A())
			}
		case ir.OpCollectRest:
			consumed := int(inst.B())
			var rest []value.Value
			if consumed < len(f.rawArgs) {
				rest = append(rest, f.rawArgs[consumed:]...)
			}
			f.push(value.FromObject(value.NewArray(f.fd.Realm.ArrayPrototype, rest...)))
		case ir.OpCreateArguments:
			args := value.NewArray(f.fd.Realm.ArrayPrototype, f.rawArgs...)
			args.Class = "Arguments"
			f.push(value.FromObject(args))
		case ir.OpForInKeys:
			objVal := f.pop()
			f.push(value.FromObject(value.NewArray(f.fd.Realm.ArrayPrototype, forInKeys(objVal)...)))

		// ---- arithmetic ----
		case ir.OpAdd:
			b := f.pop()
			a := f.pop()
			var v value.Value
			v, err = addValues(a, b)
			if err == nil {
				f.push(v)
			}
		case ir.OpSub:
			b := f.pop()
			a := f.pop()
			var v value.Value
			v, err = numericBinOp(a, b, func(x, y float64) float64 { return x - y }, func(x, y *big.Int) (*big.Int, error) { return new(big.Int).Sub(x, y), nil })
			if err == nil {
				f.push(v)
			}
		case ir.OpMul:
			b := f.pop()
			a := f.pop()
			var v value.Value
			v, err = numericBinOp(a, b, func(x, y float64) float64 { return x * y }, func(x, y *big.Int) (*big.Int, error) { return new(big.Int).Mul(x, y), nil })
			if err == nil {
				f.push(v)
			}
		case ir.OpDiv:
			b := f.pop()
			a := f.pop()
			var v value.Value
			v, err = numericBinOp(a, b, func(x, y float64) float64 { return x / y }, bigDiv)
			if err == nil {
				f.push(v)
			}
		case ir.OpMod:
			b := f.pop()
			a := f.pop()
			var v value.Value
			v, err = numericBinOp(a, b, bigModFloat, bigMod)
			if err == nil {
				f.push(v)
			}
		case ir.OpPow:
			b := f.pop()
			a := f.pop()
			var v value.Value
			v, err = numericBinOp(a, b, bigPowFloat, bigPow)
			if err == nil {
				f.push(v)
			}
		case ir.OpNeg:
			a := f.pop()
			var v value.Value
			v, err = negateValue(a)
			if err == nil {
				f.push(v)
			}
		case ir.OpInc:
			a := f.pop()
			var v value.Value
			v, err = incDecValue(a, 1)
			if err == nil {
				f.push(v)
			}
		case ir.OpDec:
			a := f.pop()
			var v value.Value
			v, err = incDecValue(a, -1)
			if err == nil {
				f.push(v)
			}

		// ---- bitwise ----
		case ir.OpBitAnd:
			err = f.bitwiseOp(func(a, b int32) int32 { return a & b })
		case ir.OpBitOr:
			err = f.bitwiseOp(func(a, b int32) int32 { return a | b })
		case ir.OpBitXor:
			err = f.bitwiseOp(func(a, b int32) int32 { return a ^ b })
		case ir.OpBitNot:
			a := f.pop()
			var ai int32
			ai, err = value.ToInt32(a)
			if err == nil {
				f.push(value.Number(float64(^ai)))
			}
		case ir.OpShl:
			err = f.shiftOp(func(a int32, b uint32) float64 { return float64(a << (b & 31)) })
		case ir.OpShr:
			err = f.shiftOp(func(a int32, b uint32) float64 { return float64(a >> (b & 31)) })
		case ir.OpUShr:
			b := f.pop()
			a := f.pop()
			var au, bu uint32
			au, err = value.ToUint32(a)
			if err == nil {
				bu, err = value.ToUint32(b)
			}
			if err == nil {
				f.push(value.Number(float64(au >> (bu & 31))))
			}

		// ---- comparison / equality ----
		case ir.OpEq:
			b := f.pop()
			a := f.pop()
			var r bool
			r, err = value.IsLooselyEqual(a, b)
			if err == nil {
				f.push(value.Bool(r))
			}
		case ir.OpNotEq:
			b := f.pop()
			a := f.pop()
			var r bool
			r, err = value.IsLooselyEqual(a, b)
			if err == nil {
				f.push(value.Bool(!r))
			}
		case ir.OpStrictEq:
			b := f.pop()
			a := f.pop()
			f.push(value.Bool(value.IsStrictlyEqual(a, b)))
		case ir.OpStrictNotEq:
			b := f.pop()
			a := f.pop()
			f.push(value.Bool(!value.IsStrictlyEqual(a, b)))
		case ir.OpLess:
			b := f.pop()
			a := f.pop()
			var r *bool
			r, err = value.IsLessThan(a, b, true)
			if err == nil {
				f.push(cmpToBool(r, false))
			}
		case ir.OpGreater:
			b := f.pop()
			a := f.pop()
			var r *bool
			r, err = value.IsLessThan(b, a, false)
			if err == nil {
				f.push(cmpToBool(r, false))
			}
		case ir.OpLessEq:
			b := f.pop()
			a := f.pop()
			var r *bool
			r, err = value.IsLessThan(b, a, false)
			if err == nil {
				f.push(cmpToBool(r, true))
			}
		case ir.OpGreaterEq:
			b := f.pop()
			a := f.pop()
			var r *bool
			r, err = value.IsLessThan(a, b, true)
			if err == nil {
				f.push(cmpToBool(r, true))
			}

		// ---- logical / unary ----
		case ir.OpNot:
			a := f.pop()
			f.push(value.Bool(!a.ToBoolean()))
		case ir.OpTypeOf:
			a := f.pop()
			f.push(value.String(a.TypeOf()))
		case ir.OpToBoolean:
			a := f.pop()
			f.push(value.Bool(a.ToBoolean()))
		case ir.OpNullishCoalesce:
			b := f.pop()
			a := f.pop()
			if a.IsNullish() {
				f.push(b)
			} else {
				f.push(a)
			}

		// ---- control flow ----
		case ir.OpJump:
			f.ip += int(inst.SignedB())
		case ir.OpJumpIfTrue:
			if f.pop().ToBoolean() {
				f.ip += int(inst.SignedB())
			}
		case ir.OpJumpIfFalse:
			if !f.pop().ToBoolean() {
				f.ip += int(inst.SignedB())
			}
		case ir.OpJumpIfTrueNP:
			if f.peek().ToBoolean() {
				f.ip += int(inst.SignedB())
			}
		case ir.OpJumpIfFalseNP:
			if !f.peek().ToBoolean() {
				f.ip += int(inst.SignedB())
			}
		case ir.OpJumpIfNullish:
			if f.peek().IsNullish() {
				f.ip += int(inst.SignedB())
			}

		// ---- calls ----
		case ir.OpCall:
			n := int(inst.B())
			args := f.popN(n)
			thisVal := f.pop()
			calleeVal := f.pop()
			if callee := calleeVal.AsObject(); callee != nil && callee.IsCallable() {
				var result value.Value
				result, err = callee.Call(thisVal, args)
				if err == nil {
					f.push(result)
				}
			} else {
				err = typeErr("%s is not a function", calleeVal.DebugString())
			}
		case ir.OpCallSpread:
			argsArrVal := f.pop()
			thisVal := f.pop()
			calleeVal := f.pop()
			callee := calleeVal.AsObject()
			argsArr := argsArrVal.AsObject()
			switch {
			case callee == nil || !callee.IsCallable():
				err = typeErr("%s is not a function", calleeVal.DebugString())
			case argsArr == nil:
				err = typeErr("spread argument is not an array")
			default:
				var result value.Value
				result, err = callee.Call(thisVal, valuesFromArrayLike(argsArr))
				if err == nil {
					f.push(result)
				}
			}
		case ir.OpNew:
			n := int(inst.B())
			args := f.popN(n)
			ctorVal := f.pop()
			if ctor := ctorVal.AsObject(); ctor != nil && ctor.IsConstructor() {
				var result value.Value
				result, err = ctor.Construct(args, ctor)
				if err == nil {
					f.push(result)
				}
			} else {
				err = typeErr("%s is not a constructor", ctorVal.DebugString())
			}
		case ir.OpNewSpread:
			argsArrVal := f.pop()
			ctorVal := f.pop()
			ctor := ctorVal.AsObject()
			argsArr := argsArrVal.AsObject()
			switch {
			case ctor == nil || !ctor.IsConstructor():
				err = typeErr("%s is not a constructor", ctorVal.DebugString())
			case argsArr == nil:
				err = typeErr("spread argument is not an array")
			default:
				var result value.Value
				result, err = ctor.Construct(valuesFromArrayLike(argsArr), ctor)
				if err == nil {
					f.push(result)
				}
			}
		case ir.OpSuperCall:
			n := int(inst.B())
			err = f.doSuperCall(f.popN(n))
		case ir.OpSuperCallSpread:
			argsArrVal := f.pop()
			argsArr := argsArrVal.AsObject()
			if argsArr == nil {
				err = typeErr("spread argument is not an array")
			} else {
				err = f.doSuperCall(valuesFromArrayLike(argsArr))
			}
		case ir.OpReturn:
			return f.pop(), outcomeReturn, nil
		case ir.OpReturnUndef:
			return value.Undefined(), outcomeReturn, nil

		// ---- iteration ----
		case ir.OpGetIterator:
			v := f.pop()
			var iterObj *value.Object
			iterObj, err = getIterator(f.fd.Realm, v)
			if err == nil {
				f.push(value.FromObject(iterObj))
			}
		case ir.OpIterNext:
			iterObj := f.pop().AsObject()
			if iterObj == nil {
				err = typeErr("iterator is not an object")
			} else {
				var val value.Value
				var done bool
				val, done, err = iterNext(iterObj)
				if err == nil {
					f.push(val)
					f.push(value.Bool(done))
				}
			}
		case ir.OpIterClose:
			iterClose(f.pop().AsObject())

		// ---- generators ----
		case ir.OpYield:
			return f.pop(), outcomeYield, nil

		// ---- exception handling ----
		case ir.OpThrow:
			err = &jsThrow{val: f.pop()}
		case ir.OpPushHandler, ir.OpPopHandler, ir.OpPushFinally, ir.OpPopFinally:
			// structural markers only; the validator-checked static
			// Handlers table on FunctionInfo drives dispatch, not a
			// runtime push/pop stack.

		// ---- misc ----
		case ir.OpHalt:
			return value.Undefined(), outcomeReturn, nil
		case ir.OpDebugger, ir.OpNop:
			// no-op

		default:
			return value.Undefined(), outcomeReturn, errs.NewInternal("unhandled opcode %s at offset %d", op, instOffset)
		}

		if err != nil {
			handled, newIP, val, propagated := f.raiseAt(instOffset, err)
			if !handled {
				return value.Undefined(), outcomeReturn, propagated
			}
			f.truncate(0)
			f.ip = newIP
			f.push(val)
		}
	}
}

// raiseAt looks up the handler region (if any) covering instOffset and
// reports whether err was caught there. An *errs.InternalError is
// never caught - it unwinds straight to the Go caller, matching
// errs.InternalError's own documented contract.
func (f *Frame) raiseAt(instOffset int, err error) (handled bool, newIP int, pushVal value.Value, propagated error) {
	if ie, ok := err.(*errs.InternalError); ok {
		return false, 0, value.Value{}, ie
	}
	thrownVal := valueFromError(f.fd.Realm, err)
	region := f.fd.FI.HandlerFor(instOffset)
	if region == nil {
		return false, 0, value.Value{}, f.propagate(thrownVal, err)
	}
	return true, region.Handler, thrownVal, nil
}

// propagate wraps thrownVal (and the triggering Go error, if it is
// already a ThrownValue from a nested call) into the ThrownValue this
// frame hands to its own caller, putting its own stack frame in front
// of the trace (callers are older, per errs.StackTrace's
// oldest-to-newest order) each time it passes through an activation
// with no handler.
func (f *Frame) propagate(thrownVal value.Value, err error) error {
	frame := errs.StackFrame{FunctionName: frameName(f.fd.FI), Pos: errs.Position{Line: f.fd.FI.GetLine(f.ip - 1)}}
	if tv, ok := err.(*ThrownValue); ok {
		tv.Trace = append(errs.StackTrace{frame}, tv.Trace...)
		return tv
	}
	return &ThrownValue{
		RuntimeError: &errs.RuntimeError{Message: errorMessage(thrownVal), Trace: errs.StackTrace{frame}},
		Value:        thrownVal,
	}
}

func frameName(fi *ir.FunctionInfo) string {
	if fi.Name == "" {
		return "<anonymous>"
	}
	return fi.Name
}

func errorMessage(v value.Value) string {
	if v.IsObject() {
		obj := v.AsObject()
		nameVal, _ := obj.Get(value.StringKey("name"), v)
		msgVal, _ := obj.Get(value.StringKey("message"), v)
		name, _ := value.ToString(nameVal)
		msg, _ := value.ToString(msgVal)
		if name != "" {
			if msg != "" {
				return name + ": " + msg
			}
			return name
		}
	}
	return v.DebugString()
}

func loadConstant(fi *ir.FunctionInfo, b uint16) value.Value {
	c := fi.Constants[b]
	switch c.Kind {
	case ir.ConstNumber:
		return value.Number(c.Number)
	case ir.ConstString:
		return value.String(c.Str)
	case ir.ConstBigInt:
		n := new(big.Int)
		n.SetString(c.Str, 10)
		return value.BigInt(n)
	default:
		return value.Undefined()
	}
}

func constKey(fi *ir.FunctionInfo, b uint16) value.PropertyKey {
	return value.StringKey(fi.Constants[b].Str)
}

func cmpToBool(r *bool, negate bool) value.Value {
	if r == nil {
		return value.Bool(false)
	}
	if negate {
		return value.Bool(!*r)
	}
	return value.Bool(*r)
}
