package ir

import "fmt"

// ValidationError describes a single structural defect found by
// Validate. A non-empty validator result means the compiler produced
// malformed IR: this is always an engine-internal bug (see spec.md §7
// error kind 3), never something a well-formed script can trigger.
type ValidationError struct {
	Offset  int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ir: invalid instruction at offset %d: %s", e.Offset, e.Message)
}

// Validate checks a compiled FunctionInfo for the invariants the
// interpreter relies on instead of checking them itself on every
// dispatch: in-range jump targets, well-nested (non-overlapping except
// by containment, identical regions allowed) handler regions, in-range local slots and
// constant/child indices, and that the function never falls through
// its end without a terminating instruction.
func Validate(fi *FunctionInfo) error {
	n := len(fi.Code)
	if n == 0 {
		return &ValidationError{Message: "function body is empty"}
	}

	for offset, inst := range fi.Code {
		op := inst.OpCode()
		if op >= opCodeCount {
			return &ValidationError{Offset: offset, Message: fmt.Sprintf("unknown opcode %d", byte(op))}
		}
		if IsJump(op) {
			target := offset + 1 + int(inst.SignedB())
			if target < 0 || target > n {
				return &ValidationError{Offset: offset, Message: fmt.Sprintf("jump target %d out of range [0,%d]", target, n)}
			}
		}
		switch op {
		case OpGetLocal, OpSetLocal, OpInitLocal:
			if int(inst.B()) >= fi.LocalCount {
				return &ValidationError{Offset: offset, Message: fmt.Sprintf("local slot %d >= LocalCount %d", inst.B(), fi.LocalCount)}
			}
		case OpLoadConst:
			if int(inst.B()) >= len(fi.Constants) {
				return &ValidationError{Offset: offset, Message: fmt.Sprintf("constant index %d out of range", inst.B())}
			}
		case OpGetBinding, OpSetBinding, OpInitBinding, OpDeclareVar, OpDeclareLet, OpDeclareConst,
			OpGetProp, OpSetProp, OpGetSuperProp, OpSetSuperProp, OpDeleteProp:
			if int(inst.B()) >= len(fi.Constants) {
				return &ValidationError{Offset: offset, Message: fmt.Sprintf("name constant index %d out of range", inst.B())}
			}
		case OpMakeClosure, OpMakeClass:
			if int(inst.B()) >= len(fi.Children) {
				return &ValidationError{Offset: offset, Message: fmt.Sprintf("child function index %d out of range", inst.B())}
			}
		}
	}

	last := fi.Code[n-1].OpCode()
	if !isTerminator(last) {
		return &ValidationError{Offset: n - 1, Message: "function does not end in a terminating instruction"}
	}

	if err := validateHandlerNesting(fi.Handlers, n); err != nil {
		return err
	}

	if err := validateStackBalance(fi); err != nil {
		return err
	}

	for _, child := range fi.Children {
		if err := Validate(child); err != nil {
			return err
		}
	}
	return nil
}

// stackEffect reports how deep into the operand stack an instruction
// reads (required, counting values it only peeks as well as values it
// pops) and the net change in stack depth it leaves behind (delta,
// after - before). Variable-arity instructions (calls, array/object
// literals) read their count from B.
func stackEffect(inst Instruction) (required, delta int) {
	op := inst.OpCode()
	switch op {
	case OpLoadConst, OpLoadUndefined, OpLoadNull, OpLoadTrue, OpLoadFalse,
		OpGetLocal, OpGetBinding, OpGetSuperProp, OpMakeClosure, OpCollectRest, OpCreateArguments:
		return 0, 1
	case OpDup:
		return 1, 1
	case OpPop, OpInitLocal, OpInitBinding:
		return 1, -1
	case OpSetLocal, OpSetBinding:
		return 1, 0
	case OpDeclareVar, OpDeclareLet, OpDeclareConst, OpPushScope, OpPopScope:
		return 0, 0
	case OpGetProp:
		return 1, 0
	case OpSetProp:
		return 2, -1
	case OpGetPropComp:
		return 2, -1
	case OpSetPropComp:
		return 3, -2
	case OpSetSuperProp, OpDeleteProp, OpForInKeys, OpGetIterator, OpMakeClass:
		return 1, 0
	case OpDeletePropComp, OpInKeyword, OpInstanceOf:
		return 2, -1
	case OpNewObject:
		n := int(inst.B()) * 2
		return n, 1 - n
	case OpNewArray:
		n := int(inst.B())
		return n, 1 - n
	case OpArrayPush:
		return 2, -1
	case OpObjectDefineAccessor, OpClassDefineMethod:
		return 3, -2
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow,
		OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr, OpUShr,
		OpEq, OpNotEq, OpStrictEq, OpStrictNotEq, OpLess, OpLessEq, OpGreater, OpGreaterEq,
		OpNullishCoalesce:
		return 2, -1
	case OpNeg, OpInc, OpDec, OpBitNot, OpNot, OpTypeOf, OpToBoolean:
		return 1, 0
	case OpJump, OpReturnUndef, OpHalt, OpPushHandler, OpPopHandler, OpPushFinally, OpPopFinally,
		OpDebugger, OpNop:
		return 0, 0
	case OpJumpIfTrue, OpJumpIfFalse:
		return 1, -1
	case OpJumpIfTrueNP, OpJumpIfFalseNP, OpJumpIfNullish:
		return 1, 0
	case OpCall:
		n := int(inst.B()) + 2
		return n, 1 - n
	case OpCallSpread:
		return 3, -2
	case OpNew:
		n := int(inst.B()) + 1
		return n, 1 - n
	case OpNewSpread:
		return 2, -1
	case OpSuperCall:
		n := int(inst.B())
		return n, -n
	case OpSuperCallSpread, OpIterClose:
		return 1, -1
	case OpReturn, OpThrow:
		return 1, -1
	case OpIterNext:
		return 1, 1
	case OpYield:
		// pops the yielded value; resumption pushes the .next()
		// argument in its place before control continues past this
		// instruction, so the net depth across a suspend/resume round
		// trip is unchanged.
		return 1, 0
	default:
		return 0, 0
	}
}

// controlKind classifies how an instruction hands off to its
// successor(s), for the stack-depth simulation below.
type controlKind int

const (
	flowSequential controlKind = iota
	flowTerminator             // no successor
	flowJumpUnconditional      // only the jump target is a successor
	flowJumpConditional        // both fallthrough and jump target are successors
)

func controlFlowKind(op OpCode) controlKind {
	switch op {
	case OpReturn, OpReturnUndef, OpHalt, OpThrow:
		return flowTerminator
	case OpJump:
		return flowJumpUnconditional
	case OpJumpIfTrue, OpJumpIfFalse, OpJumpIfTrueNP, OpJumpIfFalseNP, OpJumpIfNullish:
		return flowJumpConditional
	default:
		return flowSequential
	}
}

// validateStackBalance simulates the operand-stack depth reached at
// every instruction a function can fall into, branch to, or be
// entered at (offset 0, and every HandlerRegion's Handler offset,
// which the interpreter always enters at depth 1: raiseAt truncates
// the frame's stack to empty and pushes exactly the thrown/caught
// value before jumping there). It rejects an instruction that reads
// deeper than the stack can have at that point, and rejects two
// control-flow paths reaching the same offset with different depths -
// the static counterpart of the bug that let a doubled OpPop silently
// underflow Frame.stack at runtime instead of failing IR validation.
func validateStackBalance(fi *FunctionInfo) error {
	n := len(fi.Code)
	const unset = -1
	depthAt := make([]int, n)
	for i := range depthAt {
		depthAt[i] = unset
	}

	var queue []int
	propagate := func(offset, depth int) error {
		if offset >= n {
			// A jump landing exactly at the function's end (validator's
			// jump-target check allows target == n); nothing to check
			// there, and FinalizeOpcodes guarantees the real body never
			// relies on falling off the end.
			return nil
		}
		if depthAt[offset] == unset {
			depthAt[offset] = depth
			queue = append(queue, offset)
			return nil
		}
		if depthAt[offset] != depth {
			return &ValidationError{Offset: offset, Message: fmt.Sprintf("stack depth mismatch: %d vs %d", depthAt[offset], depth)}
		}
		return nil
	}

	if err := propagate(0, 0); err != nil {
		return err
	}
	for _, h := range fi.Handlers {
		if err := propagate(h.Handler, 1); err != nil {
			return err
		}
	}

	for len(queue) > 0 {
		offset := queue[0]
		queue = queue[1:]
		inst := fi.Code[offset]
		depth := depthAt[offset]

		required, delta := stackEffect(inst)
		if depth < required {
			return &ValidationError{Offset: offset, Message: fmt.Sprintf("stack underflow: instruction needs %d operand(s), only %d available", required, depth)}
		}
		after := depth + delta

		switch controlFlowKind(inst.OpCode()) {
		case flowTerminator:
			// no successor to propagate to
		case flowJumpUnconditional:
			target := offset + 1 + int(inst.SignedB())
			if err := propagate(target, after); err != nil {
				return err
			}
		case flowJumpConditional:
			target := offset + 1 + int(inst.SignedB())
			if err := propagate(target, after); err != nil {
				return err
			}
			if err := propagate(offset+1, after); err != nil {
				return err
			}
		default:
			if err := propagate(offset+1, after); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateHandlerNesting checks that handler regions are well-nested:
// any two regions are either disjoint or one contains the other
// (possibly with equal bounds), and every region's bounds fall within the code.
func validateHandlerNesting(handlers []HandlerRegion, codeLen int) error {
	for i, h := range handlers {
		if h.Start < 0 || h.End > codeLen || h.Start >= h.End {
			return &ValidationError{Offset: h.Start, Message: fmt.Sprintf("handler region %d has invalid bounds [%d,%d)", i, h.Start, h.End)}
		}
		if h.Handler < 0 || h.Handler > codeLen {
			return &ValidationError{Offset: h.Handler, Message: fmt.Sprintf("handler region %d target %d out of range", i, h.Handler)}
		}
		for j, o := range handlers {
			if i == j {
				continue
			}
			nested := o.Start >= h.Start && o.End <= h.End
			disjoint := o.End <= h.Start || o.Start >= h.End
			containing := h.Start >= o.Start && h.End <= o.End
			if !nested && !disjoint && !containing {
				return &ValidationError{Offset: h.Start, Message: fmt.Sprintf("handler regions %d and %d overlap without nesting", i, j)}
			}
		}
	}
	return nil
}
