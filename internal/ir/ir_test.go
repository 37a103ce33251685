package ir

import "testing"

func TestBuilderIfElsePatches(t *testing.T) {
	b := NewBuilder("test", "")
	b.AddNumberConstant(0)
	b.EmitSimple(OpLoadTrue, 1, 1)
	elseJump := b.IfHelper(OpJumpIfFalse, 1, 1)
	b.EmitSimple(OpLoadConst, 1, 1)
	endJump, err := b.IfElseHelper(elseJump, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	b.EmitSimple(OpLoadConst, 1, 1)
	if err := b.PatchJump(endJump); err != nil {
		t.Fatal(err)
	}
	fi := b.FinalizeOpcodes()
	if err := Validate(fi); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejectsOutOfRangeJump(t *testing.T) {
	fi := NewFunctionInfo("bad", "")
	fi.Code = []Instruction{
		MakeInstruction(OpJump, 0, 9999),
		MakeSimpleInstruction(OpReturnUndef),
	}
	if err := Validate(fi); err == nil {
		t.Fatal("expected validation error for out-of-range jump")
	}
}

func TestValidateRejectsOverlappingHandlers(t *testing.T) {
	fi := NewFunctionInfo("bad", "")
	fi.Code = make([]Instruction, 10)
	for i := range fi.Code {
		fi.Code[i] = MakeSimpleInstruction(OpNop)
	}
	fi.Code[9] = MakeSimpleInstruction(OpReturnUndef)
	fi.Handlers = []HandlerRegion{
		{Start: 0, End: 5, Handler: 5},
		{Start: 3, End: 8, Handler: 5},
	}
	if err := Validate(fi); err == nil {
		t.Fatal("expected validation error for overlapping handler regions")
	}
}

func TestValidateAcceptsNestedHandlers(t *testing.T) {
	// Models a nested try/catch's real shape: each protected region's
	// normal-completion path jumps over its own handler, and each
	// handler pops the synthetic thrown value a raiseAt entry always
	// pushes, so every path back into shared code agrees on depth.
	fi := NewFunctionInfo("ok", "")
	fi.Code = []Instruction{
		MakeSimpleInstruction(OpNop),          // 0: inner protected body
		MakeInstruction(OpJump, 0, 1),         // 1: jump -> 3, skip inner handler
		MakeSimpleInstruction(OpPop),          // 2: inner handler (Handler=2)
		MakeInstruction(OpJump, 0, 1),         // 3: jump -> 5, skip outer handler
		MakeSimpleInstruction(OpPop),          // 4: outer handler (Handler=4)
		MakeSimpleInstruction(OpReturnUndef),  // 5
	}
	fi.Handlers = []HandlerRegion{
		{Start: 0, End: 4, Handler: 4},
		{Start: 0, End: 1, Handler: 2},
	}
	if err := Validate(fi); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejectsStackUnderflow(t *testing.T) {
	// The exact shape of the redundant-OpPop regression: an opcode that
	// already consumes its operand (OpInitLocal) followed by a second
	// pop with nothing left underneath it.
	fi := NewFunctionInfo("bad", "")
	fi.LocalCount = 1
	fi.Code = []Instruction{
		MakeInstruction(OpLoadUndefined, 0, 0),
		MakeInstruction(OpInitLocal, 0, 0),
		MakeSimpleInstruction(OpPop),
		MakeSimpleInstruction(OpReturnUndef),
	}
	if err := Validate(fi); err == nil {
		t.Fatal("expected validation error for stack underflow")
	}
}

func TestValidateRejectsMismatchedMergeDepth(t *testing.T) {
	// if (true) { <push an extra value and leave it> } else {}
	// then falls through to a single RETURN: the two branches disagree
	// on depth at the merge point.
	fi := NewFunctionInfo("bad", "")
	fi.Code = []Instruction{
		MakeSimpleInstruction(OpLoadTrue),      // 0
		MakeInstruction(OpJumpIfFalse, 0, 2),   // 1: -> 4 (else)
		MakeSimpleInstruction(OpLoadUndefined), // 2: then-branch leaves a value
		MakeInstruction(OpJump, 0, 1),          // 3: -> 5
		MakeSimpleInstruction(OpNop),           // 4: else-branch leaves nothing
		MakeSimpleInstruction(OpReturnUndef),   // 5
	}
	if err := Validate(fi); err == nil {
		t.Fatal("expected validation error for a stack depth mismatch at a merge point")
	}
}

func TestOptimizeFoldsConstantArithmetic(t *testing.T) {
	b := NewBuilder("fold", "")
	c1 := b.AddNumberConstant(2)
	c2 := b.AddNumberConstant(3)
	b.Emit(OpLoadConst, 0, uint16(c1), 1, 1)
	b.Emit(OpLoadConst, 0, uint16(c2), 1, 1)
	b.EmitSimple(OpAdd, 1, 1)
	fi := b.FinalizeOpcodes()

	Optimize(fi)

	if fi.Code[0].OpCode() != OpNop || fi.Code[1].OpCode() != OpNop {
		t.Fatalf("expected folded operands to become NOPs, got %s %s", fi.Code[0].OpCode(), fi.Code[1].OpCode())
	}
	if fi.Code[2].OpCode() != OpLoadConst {
		t.Fatalf("expected folded LOAD_CONST at index 2, got %s", fi.Code[2].OpCode())
	}
	folded := fi.Constants[fi.Code[2].B()]
	if folded.Number != 5 {
		t.Fatalf("expected folded constant 5, got %v", folded.Number)
	}
	if err := Validate(fi); err != nil {
		t.Fatal(err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := NewBuilder("roundtrip", "main.js")
	idx := b.AddStringConstant("hello")
	b.Emit(OpLoadConst, 0, uint16(idx), 3, 1)
	fi := b.FinalizeOpcodes()

	data := Encode(fi)
	decoded, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Name != fi.Name || decoded.SourceFile != fi.SourceFile {
		t.Fatalf("round trip lost metadata: %+v", decoded)
	}
	if len(decoded.Code) != len(fi.Code) || decoded.Code[0] != fi.Code[0] {
		t.Fatal("round trip lost code")
	}
	if decoded.Constants[0].Str != "hello" {
		t.Fatal("round trip lost constant")
	}
}
