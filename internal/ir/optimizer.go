package ir

import "math"

// Optimize runs a constant-folding peephole pass over fi and its
// Children. It never changes the length of Code (folded instructions
// are replaced by OpNop rather than removed), so every jump target and
// line-table offset already computed by the builder stays valid
// without a second patching pass.
func Optimize(fi *FunctionInfo) {
	optimizeOne(fi)
	for _, child := range fi.Children {
		Optimize(child)
	}
}

func optimizeOne(fi *FunctionInfo) {
	code := fi.Code
	for i := 0; i+2 < len(code); i++ {
		if code[i].OpCode() != OpLoadConst || code[i+1].OpCode() != OpLoadConst {
			continue
		}
		op := code[i+2].OpCode()
		lhs := fi.Constants[code[i].B()]
		rhs := fi.Constants[code[i+1].B()]
		if lhs.Kind != ConstNumber || rhs.Kind != ConstNumber {
			continue
		}
		folded, ok := foldNumeric(op, lhs.Number, rhs.Number)
		if !ok {
			continue
		}
		idx := len(fi.Constants)
		fi.Constants = append(fi.Constants, Constant{Kind: ConstNumber, Number: folded})
		code[i] = MakeSimpleInstruction(OpNop)
		code[i+1] = MakeSimpleInstruction(OpNop)
		code[i+2] = MakeInstruction(OpLoadConst, 0, uint16(idx))
	}
}

func foldNumeric(op OpCode, a, b float64) (float64, bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSub:
		return a - b, true
	case OpMul:
		return a * b, true
	case OpDiv:
		return a / b, true
	case OpMod:
		return numericMod(a, b), true
	default:
		return 0, false
	}
}

// numericMod implements the ECMAScript `%` operator (ECMA-262 6.1.6.1.6),
// which is a remainder operation, not a true modulo: the sign of the
// result follows the dividend, matching Go's math.Mod.
func numericMod(a, b float64) float64 {
	return math.Mod(a, b)
}
