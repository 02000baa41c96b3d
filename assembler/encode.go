package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"masm/arch"
)

// operand is one parsed instruction operand.
type operand struct {
	mode  arch.AddrMode
	value int    // immediate payload
	reg   int    // register number for modes 2 and 3
	sym   string // symbol name for mode 1
}

// Ref marks an operand word that waits for symbol resolution. Offset
// is relative to the instruction's first word.
type Ref struct {
	Offset int
	Symbol string
}

// parseOperand classifies a single operand token.
func parseOperand(s string) (operand, error) {
	switch {
	case strings.HasPrefix(s, "#"):
		v, err := strconv.Atoi(s[1:])
		if err != nil {
			return operand{}, fmt.Errorf("bad number in immediate %q", s)
		}
		if v < arch.ImmediateMin || v > arch.ImmediateMax {
			return operand{}, fmt.Errorf("immediate %d out of range [%d, %d]", v, arch.ImmediateMin, arch.ImmediateMax)
		}
		return operand{mode: arch.ModeImmediate, value: v}, nil

	case strings.HasPrefix(s, "*"):
		r, ok := arch.Register(s[1:])
		if !ok {
			return operand{}, fmt.Errorf("bad register in %q", s)
		}
		return operand{mode: arch.ModeRegIndirect, reg: r}, nil
	}

	if r, ok := arch.Register(s); ok {
		return operand{mode: arch.ModeRegDirect, reg: r}, nil
	}
	if arch.ValidName(s) && !arch.Reserved(s) {
		return operand{mode: arch.ModeDirect, sym: s}, nil
	}
	return operand{}, fmt.Errorf("invalid operand %q", s)
}

// checkModes validates the operands against the instruction's permitted
// addressing-mode sets.
func checkModes(op *arch.Op, src, dst *operand) error {
	if src != nil && !op.SrcModes.Has(src.mode) {
		return fmt.Errorf("illegal source addressing mode for %s", op.Name)
	}
	if dst != nil && !op.DstModes.Has(dst.mode) {
		return fmt.Errorf("illegal target addressing mode for %s", op.Name)
	}
	return nil
}

// encode produces the words for one instruction: the info word followed
// by operand words. Mode-1 operands yield zeroed words tagged for the
// second pass. Two adjacent register-mode operands share one word.
func encode(op *arch.Op, args []operand) ([]arch.Word, []Ref) {
	var src, dst *operand
	switch op.Operands {
	case 2:
		src, dst = &args[0], &args[1]
	case 1:
		dst = &args[0]
	}

	info := op.Code<<arch.OpcodeShift | arch.AREAbsolute
	if src != nil {
		info |= src.mode.Bit(arch.SrcModeBase)
	}
	if dst != nil {
		info |= dst.mode.Bit(arch.DstModeBase)
	}
	words := []arch.Word{info}

	if src != nil && src.mode.IsRegisterMode() && dst.mode.IsRegisterMode() {
		shared := arch.AREAbsolute |
			arch.Word(src.reg)<<arch.SrcRegShift |
			arch.Word(dst.reg)<<arch.DstRegShift
		return append(words, shared), nil
	}

	var refs []Ref
	appendOperand := func(o *operand, regShift int) {
		switch o.mode {
		case arch.ModeImmediate:
			words = append(words, arch.AREAbsolute|arch.Payload(o.value))
		case arch.ModeDirect:
			refs = append(refs, Ref{Offset: len(words), Symbol: o.sym})
			words = append(words, 0)
		case arch.ModeRegIndirect, arch.ModeRegDirect:
			words = append(words, arch.AREAbsolute|arch.Word(o.reg)<<regShift)
		}
	}
	if src != nil {
		appendOperand(src, arch.SrcRegShift)
	}
	if dst != nil {
		appendOperand(dst, arch.DstRegShift)
	}
	return words, refs
}
