package ir

import "fmt"

// Builder incrementally constructs a FunctionInfo. The compiler owns
// one Builder per function being compiled (including the top-level
// script) and calls FinalizeOpcodes once the body has been walked.
type Builder struct {
	fi         *FunctionInfo
	nextSlot   int
	maxSlot    int
	lastLine   int
	lastColumn int
	constIndex map[Constant]int
}

func NewBuilder(name, sourceFile string) *Builder {
	return &Builder{fi: NewFunctionInfo(name, sourceFile), constIndex: make(map[Constant]int)}
}

// AddOpcode appends an instruction and records its source position,
// returning the instruction's offset (used by callers that need to
// patch a jump target back to it, e.g. loop bodies).
func (b *Builder) AddOpcode(inst Instruction, line, column int) int {
	offset := len(b.fi.Code)
	b.fi.Code = append(b.fi.Code, inst)
	if line != b.lastLine || column != b.lastColumn || len(b.fi.Lines) == 0 {
		b.fi.Lines = append(b.fi.Lines, LineInfo{InstructionOffset: offset, Line: line, Column: column})
		b.lastLine, b.lastColumn = line, column
	}
	return offset
}

// Emit is a convenience wrapper building the instruction inline.
func (b *Builder) Emit(op OpCode, a uint8, arg uint16, line, column int) int {
	return b.AddOpcode(MakeInstruction(op, a, arg), line, column)
}

func (b *Builder) EmitSimple(op OpCode, line, column int) int {
	return b.AddOpcode(MakeSimpleInstruction(op), line, column)
}

// NewLocalSlot allocates the next free indexed local slot for a
// non-escaping binding (function parameter, or a var/let the compiler
// proved no nested closure captures) and returns its index.
func (b *Builder) NewLocalSlot() int {
	slot := b.nextSlot
	b.nextSlot++
	if b.nextSlot > b.maxSlot {
		b.maxSlot = b.nextSlot
	}
	return slot
}

// ReleaseLocalsTo resets the next-slot cursor to floor, as when
// leaving a block scope whose non-escaping locals can be reused by a
// sibling block. MaxSlot (and therefore FunctionInfo.LocalCount)
// never shrinks.
func (b *Builder) ReleaseLocalsTo(floor int) {
	b.nextSlot = floor
}

func (b *Builder) CurrentSlotFloor() int { return b.nextSlot }

// AddConstant interns a constant, returning its pool index. Repeated
// equal constants share one slot.
func (b *Builder) AddConstant(c Constant) int {
	if idx, ok := b.constIndex[c]; ok {
		return idx
	}
	idx := len(b.fi.Constants)
	b.fi.Constants = append(b.fi.Constants, c)
	b.constIndex[c] = idx
	return idx
}

func (b *Builder) AddStringConstant(s string) int { return b.AddConstant(Constant{Kind: ConstString, Str: s}) }
func (b *Builder) AddNumberConstant(n float64) int { return b.AddConstant(Constant{Kind: ConstNumber, Number: n}) }

// AddChild registers a nested FunctionInfo (for a function expression,
// declaration, method, or class constructor compiled inside this
// function) and returns its index for OpMakeClosure/OpMakeClass's B
// operand.
func (b *Builder) AddChild(child *FunctionInfo) int {
	idx := len(b.fi.Children)
	b.fi.Children = append(b.fi.Children, child)
	return idx
}

// EmitJump emits a jump-family instruction with a placeholder offset
// and returns its instruction offset, for later patching by PatchJump.
func (b *Builder) EmitJump(op OpCode, line, column int) int {
	return b.Emit(op, 0, 0xFFFF, line, column)
}

// PatchJump rewrites the jump instruction at offset so that it lands
// at the current end of the code array (the common "patch forward
// jump to here" pattern used for if/else and short-circuit
// operators).
func (b *Builder) PatchJump(offset int) error {
	return b.PatchJumpTo(offset, len(b.fi.Code))
}

// PatchJumpTo rewrites the jump at offset to target the instruction at
// targetOffset.
func (b *Builder) PatchJumpTo(offset, targetOffset int) error {
	if offset < 0 || offset >= len(b.fi.Code) {
		return fmt.Errorf("ir: patch offset %d out of range", offset)
	}
	inst := b.fi.Code[offset]
	delta := targetOffset - (offset + 1)
	if delta < -32768 || delta > 32767 {
		return fmt.Errorf("ir: jump offset %d out of 16-bit range", delta)
	}
	b.fi.Code[offset] = MakeInstruction(inst.OpCode(), inst.A(), uint16(int16(delta)))
	return nil
}

// EmitLoop emits an unconditional backward jump to loopStart.
func (b *Builder) EmitLoop(loopStart int, line, column int) error {
	offset := b.Emit(OpJump, 0, 0, line, column)
	return b.PatchJumpTo(offset, loopStart)
}

// IfHelper emits a conditional forward jump (consuming the tested
// value) and returns a token for PatchJump once the "then" branch has
// been compiled.
func (b *Builder) IfHelper(op OpCode, line, column int) int {
	return b.EmitJump(op, line, column)
}

// IfElseHelper emits the unconditional jump past the "else" branch
// that an if/else needs at the end of its "then" branch, patching the
// earlier conditional jump (elseJumpToken) to land right after it.
// Returns a token for the final PatchJump once the "else" branch is
// compiled.
func (b *Builder) IfElseHelper(elseJumpToken int, line, column int) (int, error) {
	endJump := b.EmitJump(OpJump, line, column)
	if err := b.PatchJump(elseJumpToken); err != nil {
		return 0, err
	}
	return endJump, nil
}

// PushHandlerRegion emits a PUSH_HANDLER placeholder and records a
// HandlerRegion starting at the next instruction; the caller patches
// Handler/End once the protected region and handler body are known.
func (b *Builder) PushHandlerRegion() (jumpToken int, regionIndex int) {
	jumpToken = b.EmitJump(OpPushHandler, 0, 0)
	regionIndex = len(b.fi.Handlers)
	b.fi.Handlers = append(b.fi.Handlers, HandlerRegion{Start: len(b.fi.Code)})
	return
}

func (b *Builder) CloseHandlerRegion(regionIndex int, end, handler, stackDepth int, isFinally bool) {
	b.fi.Handlers[regionIndex].End = end
	b.fi.Handlers[regionIndex].Handler = handler
	b.fi.Handlers[regionIndex].StackDepth = stackDepth
	b.fi.Handlers[regionIndex].IsFinally = isFinally
}

// SetParamCount/SetArrow/SetGenerator/SetAsync/SetHasRest record the
// function-level metadata the parser-level signature carries, once the
// compiler knows it (usually right after NewBuilder, before the body
// is walked).
func (b *Builder) SetParamCount(n int)  { b.fi.ParamCount = n }
func (b *Builder) SetArrow(v bool)      { b.fi.IsArrow = v }
func (b *Builder) SetGenerator(v bool)  { b.fi.IsGenerator = v }
func (b *Builder) SetAsync(v bool)      { b.fi.IsAsync = v }
func (b *Builder) SetHasRest(v bool)    { b.fi.HasRest = v }

// FinalizeOpcodes closes out the function body: records LocalCount,
// and ensures the function always ends in an explicit return so the
// interpreter never falls off the end of Code.
func (b *Builder) FinalizeOpcodes() *FunctionInfo {
	b.fi.LocalCount = b.maxSlot
	if len(b.fi.Code) == 0 || !isTerminator(b.fi.Code[len(b.fi.Code)-1].OpCode()) {
		b.EmitSimple(OpReturnUndef, b.lastLine, b.lastColumn)
	}
	return b.fi
}

func isTerminator(op OpCode) bool {
	return op == OpReturn || op == OpReturnUndef || op == OpHalt || op == OpThrow
}

func (b *Builder) Len() int { return len(b.fi.Code) }
