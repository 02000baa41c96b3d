package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"masm/arch"
)

// pass1 walks the expanded source, defines symbols, fills the data
// image and encodes instructions into the code image, leaving mode-1
// operand words as placeholders.
func (a *Assembler) pass1(lines []string) {
	for i, text := range lines {
		st, ok := parseStatement(i+1, text)
		if !ok {
			continue
		}
		a.firstPassLine(st)

		if a.code.Len()+a.data.Len() > arch.MemorySize-arch.Origin {
			a.log.Errorf(st.Line, "program exceeds the %d-word memory", arch.MemorySize)
			return
		}
	}
}

func (a *Assembler) firstPassLine(st Statement) {
	switch st.Op {
	case arch.DirData:
		a.encodeData(st)
	case arch.DirString:
		a.encodeString(st)
	case arch.DirExtern:
		a.declareExtern(st)
	case arch.DirEntry:
		// Resolved in the second pass; a label here defines nothing.
		if st.HasLabel() {
			a.log.Noticef(st.Line, "label before .entry is ignored")
		}
	case "":
		a.log.Errorf(st.Line, "label %q with no operation", st.Label)
	default:
		a.encodeInstruction(st)
	}
}

// defineLabel validates a label name and inserts it. It reports and
// returns false on any defect so the caller can abandon the line.
func (a *Assembler) defineLabel(name string, value int, kind SymKind, line int) bool {
	switch {
	case len(name) > arch.MaxLabelLen:
		a.log.Errorf(line, "label %q exceeds %d characters", name, arch.MaxLabelLen)
	case !arch.ValidName(name):
		a.log.Errorf(line, "invalid label name %q", name)
	case arch.Reserved(name):
		a.log.Errorf(line, "label %q is a reserved word", name)
	case a.macros.IsMacro(name):
		a.log.Errorf(line, "label %q is already a macro name", name)
	default:
		if err := a.symbols.Insert(name, value, kind); err != nil {
			a.log.Errorf(line, "%v", err)
			return false
		}
		return true
	}
	return false
}

func (a *Assembler) encodeData(st Statement) {
	if st.HasLabel() {
		if !a.defineLabel(st.Label, a.data.Len(), SymData, st.Line) {
			return
		}
	}

	args, err := splitOperandList(st.Rest)
	if err != nil {
		a.log.Errorf(st.Line, "%v", err)
		return
	}
	if len(args) == 0 {
		a.log.Errorf(st.Line, ".data requires at least one value")
		return
	}

	words := make([]arch.Word, 0, len(args))
	for _, tok := range args {
		v, err := parseDataValue(tok)
		if err != nil {
			a.log.Errorf(st.Line, "%v", err)
			return
		}
		words = append(words, arch.Truncate(v))
	}
	for _, w := range words {
		a.data.Append(w)
	}
}

func (a *Assembler) encodeString(st Statement) {
	if st.HasLabel() {
		if !a.defineLabel(st.Label, a.data.Len(), SymData, st.Line) {
			return
		}
	}

	s := st.Rest
	if len(s) == 0 || s[0] != '"' {
		a.log.Errorf(st.Line, ".string requires a quoted string")
		return
	}
	closing := strings.LastIndexByte(s, '"')
	if closing == 0 {
		a.log.Errorf(st.Line, "unterminated string")
		return
	}
	if trailing := strings.TrimSpace(s[closing+1:]); trailing != "" {
		a.log.Errorf(st.Line, "extraneous tokens after .string")
		return
	}

	for _, c := range []byte(s[1:closing]) {
		a.data.Append(arch.Word(c) & arch.WordMask)
	}
	a.data.Append(0)
}

func (a *Assembler) declareExtern(st Statement) {
	if st.HasLabel() {
		a.log.Noticef(st.Line, "label before .extern is ignored")
	}

	args := strings.Fields(st.Rest)
	if len(args) == 0 {
		a.log.Errorf(st.Line, ".extern requires a symbol")
		return
	}
	if len(args) > 1 {
		a.log.Errorf(st.Line, "extraneous tokens after .extern")
		return
	}
	name := args[0]
	if !arch.ValidName(name) || arch.Reserved(name) || a.macros.IsMacro(name) {
		a.log.Errorf(st.Line, "invalid external symbol name %q", name)
		return
	}
	if err := a.symbols.Insert(name, 0, SymExternal); err != nil {
		a.log.Errorf(st.Line, "%v", err)
	}
}

func (a *Assembler) encodeInstruction(st Statement) {
	if st.HasLabel() {
		if !a.defineLabel(st.Label, a.code.Len()+arch.Origin, SymCode, st.Line) {
			return
		}
	}

	op, ok := arch.Lookup(st.Op)
	if !ok {
		a.log.Errorf(st.Line, "unknown mnemonic %q", st.Op)
		return
	}

	tokens, err := splitOperandList(st.Rest)
	if err != nil {
		a.log.Errorf(st.Line, "%v", err)
		return
	}
	if len(tokens) != op.Operands {
		a.log.Errorf(st.Line, "%s takes %d operands, got %d", op.Name, op.Operands, len(tokens))
		return
	}

	args := make([]operand, len(tokens))
	for i, tok := range tokens {
		args[i], err = parseOperand(tok)
		if err != nil {
			a.log.Errorf(st.Line, "%v", err)
			return
		}
	}

	var src, dst *operand
	switch op.Operands {
	case 2:
		src, dst = &args[0], &args[1]
	case 1:
		dst = &args[0]
	}
	if err := checkModes(op, src, dst); err != nil {
		a.log.Errorf(st.Line, "%v", err)
		return
	}

	words, refs := encode(op, args)
	a.code.Append(words, refs, st.Line)
}

// parseDataValue parses one .data integer and range-checks it against
// the 15-bit two's-complement representation.
func parseDataValue(tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("bad number %q in .data", tok)
	}
	if v < arch.DataMin || v > arch.DataMax {
		return 0, fmt.Errorf(".data value %d out of range [%d, %d]", v, arch.DataMin, arch.DataMax)
	}
	return v, nil
}
