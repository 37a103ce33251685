package ir

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// magic tags the start of an encoded FunctionInfo so Decode can reject
// unrelated byte streams with a clear error rather than panicking
// partway through.
const magic = "ESIR"

// Encode serializes fi (and its Children, recursively) to a compact
// binary form, used by `escript compile -o` to write compiled bytecode
// to a file.
func Encode(fi *FunctionInfo) []byte {
	var buf bytes.Buffer
	buf.WriteString(magic)
	encodeFunctionInfo(&buf, fi)
	return buf.Bytes()
}

func encodeFunctionInfo(buf *bytes.Buffer, fi *FunctionInfo) {
	writeString(buf, fi.Name)
	writeString(buf, fi.SourceFile)
	writeUint32(buf, uint32(fi.ParamCount))
	writeUint32(buf, uint32(fi.LocalCount))
	writeFlags(buf, fi.IsArrow, fi.IsGenerator, fi.IsAsync)

	writeUint32(buf, uint32(len(fi.Code)))
	for _, inst := range fi.Code {
		writeUint32(buf, uint32(inst))
	}

	writeUint32(buf, uint32(len(fi.Constants)))
	for _, c := range fi.Constants {
		buf.WriteByte(byte(c.Kind))
		switch c.Kind {
		case ConstNumber:
			writeUint64(buf, math.Float64bits(c.Number))
		case ConstString, ConstBigInt:
			writeString(buf, c.Str)
		}
	}

	writeUint32(buf, uint32(len(fi.Handlers)))
	for _, h := range fi.Handlers {
		writeUint32(buf, uint32(h.Start))
		writeUint32(buf, uint32(h.End))
		writeUint32(buf, uint32(h.Handler))
		writeUint32(buf, uint32(h.StackDepth))
		if h.IsFinally {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}

	writeUint32(buf, uint32(len(fi.Lines)))
	for _, l := range fi.Lines {
		writeUint32(buf, uint32(l.InstructionOffset))
		writeUint32(buf, uint32(l.Line))
		writeUint32(buf, uint32(l.Column))
	}

	writeUint32(buf, uint32(len(fi.Children)))
	for _, child := range fi.Children {
		encodeFunctionInfo(buf, child)
	}
}

// Decode deserializes a FunctionInfo previously produced by Encode.
func Decode(data []byte) (*FunctionInfo, error) {
	r := bytes.NewReader(data)
	hdr := make([]byte, len(magic))
	if _, err := r.Read(hdr); err != nil || string(hdr) != magic {
		return nil, fmt.Errorf("ir: not an encoded FunctionInfo (bad magic)")
	}
	return decodeFunctionInfo(r)
}

func decodeFunctionInfo(r *bytes.Reader) (*FunctionInfo, error) {
	fi := &FunctionInfo{}
	var err error
	if fi.Name, err = readString(r); err != nil {
		return nil, err
	}
	if fi.SourceFile, err = readString(r); err != nil {
		return nil, err
	}
	paramCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	fi.ParamCount = int(paramCount)
	localCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	fi.LocalCount = int(localCount)
	fi.IsArrow, fi.IsGenerator, fi.IsAsync, err = readFlags(r)
	if err != nil {
		return nil, err
	}

	codeLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	fi.Code = make([]Instruction, codeLen)
	for i := range fi.Code {
		v, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		fi.Code[i] = Instruction(v)
	}

	constLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	fi.Constants = make([]Constant, constLen)
	for i := range fi.Constants {
		kindByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		c := Constant{Kind: ConstantKind(kindByte)}
		switch c.Kind {
		case ConstNumber:
			bits, err := readUint64(r)
			if err != nil {
				return nil, err
			}
			c.Number = math.Float64frombits(bits)
		case ConstString, ConstBigInt:
			if c.Str, err = readString(r); err != nil {
				return nil, err
			}
		}
		fi.Constants[i] = c
	}

	handlerLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	fi.Handlers = make([]HandlerRegion, handlerLen)
	for i := range fi.Handlers {
		start, _ := readUint32(r)
		end, _ := readUint32(r)
		handler, _ := readUint32(r)
		depth, _ := readUint32(r)
		isFinally, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		fi.Handlers[i] = HandlerRegion{
			Start: int(start), End: int(end), Handler: int(handler),
			StackDepth: int(depth), IsFinally: isFinally != 0,
		}
	}

	lineLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	fi.Lines = make([]LineInfo, lineLen)
	for i := range fi.Lines {
		off, _ := readUint32(r)
		line, _ := readUint32(r)
		col, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		fi.Lines[i] = LineInfo{InstructionOffset: int(off), Line: int(line), Column: int(col)}
	}

	childLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	fi.Children = make([]*FunctionInfo, childLen)
	for i := range fi.Children {
		if fi.Children[i], err = decodeFunctionInfo(r); err != nil {
			return nil, err
		}
	}

	return fi, nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil && n > 0 {
		return "", err
	}
	return string(b), nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func writeFlags(buf *bytes.Buffer, arrow, generator, async bool) {
	var flags byte
	if arrow {
		flags |= 1
	}
	if generator {
		flags |= 2
	}
	if async {
		flags |= 4
	}
	buf.WriteByte(flags)
}

func readFlags(r *bytes.Reader) (arrow, generator, async bool, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, false, false, err
	}
	return b&1 != 0, b&2 != 0, b&4 != 0, nil
}
