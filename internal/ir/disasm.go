package ir

import (
	"fmt"
	"io"
	"strings"
)

// Disassemble renders a human-readable listing of fi and (recursively)
// its nested Children, for `escript compile --disasm` and
// `escript run --dump-ir`.
func Disassemble(w io.Writer, fi *FunctionInfo) {
	disassemble(w, fi, 0)
}

func disassemble(w io.Writer, fi *FunctionInfo, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s== %s ==\n", indent, functionLabel(fi))
	fmt.Fprintf(w, "%sparams=%d locals=%d instructions=%d constants=%d handlers=%d\n",
		indent, fi.ParamCount, fi.LocalCount, len(fi.Code), len(fi.Constants), len(fi.Handlers))

	if len(fi.Constants) > 0 {
		fmt.Fprintf(w, "%sConstants:\n", indent)
		for i, c := range fi.Constants {
			fmt.Fprintf(w, "%s  [%04d] %s\n", indent, i, constantString(c))
		}
	}

	fmt.Fprintf(w, "%sCode:\n", indent)
	for offset, inst := range fi.Code {
		fmt.Fprintf(w, "%s  %04d %4d | %s\n", indent, offset, fi.GetLine(offset), formatInstruction(fi, inst, offset))
	}

	for i, h := range fi.Handlers {
		kind := "catch"
		if h.IsFinally {
			kind = "finally"
		}
		fmt.Fprintf(w, "%sHandler[%d]: [%d,%d) -> %d (%s, stack=%d)\n", indent, i, h.Start, h.End, h.Handler, kind, h.StackDepth)
	}

	for i, child := range fi.Children {
		fmt.Fprintf(w, "%sChild[%d]:\n", indent, i)
		disassemble(w, child, depth+1)
	}
}

func functionLabel(fi *FunctionInfo) string {
	name := fi.Name
	if name == "" {
		name = "<anonymous>"
	}
	if fi.SourceFile != "" {
		return fmt.Sprintf("%s (%s)", name, fi.SourceFile)
	}
	return name
}

func constantString(c Constant) string {
	switch c.Kind {
	case ConstNumber:
		return fmt.Sprintf("%v", c.Number)
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	case ConstBigInt:
		return c.Str + "n"
	default:
		return "?"
	}
}

func formatInstruction(fi *FunctionInfo, inst Instruction, offset int) string {
	op := inst.OpCode()
	switch op {
	case OpLoadConst:
		idx := int(inst.B())
		if idx < len(fi.Constants) {
			return fmt.Sprintf("%-16s %d (%s)", op, idx, constantString(fi.Constants[idx]))
		}
	case OpGetBinding, OpSetBinding, OpInitBinding, OpDeclareVar, OpDeclareLet, OpDeclareConst,
		OpGetProp, OpSetProp, OpGetSuperProp, OpSetSuperProp, OpDeleteProp:
		idx := int(inst.B())
		if idx < len(fi.Constants) {
			return fmt.Sprintf("%-16s %s", op, fi.Constants[idx].Str)
		}
	case OpMakeClosure, OpMakeClass:
		return fmt.Sprintf("%-16s child[%d]", op, inst.B())
	}
	if IsJump(op) {
		target := offset + 1 + int(inst.SignedB())
		return fmt.Sprintf("%-16s -> %d", op, target)
	}
	if inst.A() == 0 && inst.B() == 0 {
		return op.String()
	}
	return fmt.Sprintf("%-16s A=%d B=%d", op, inst.A(), inst.B())
}
