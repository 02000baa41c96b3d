// Command obdump decodes an object file produced by masm and
// pretty-prints it: the count header, each instruction with its
// mnemonic and addressing modes, and the raw data words.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"

	"masm/arch"
)

// Cell is one raw memory word.
type Cell struct {
	Address int
	Octal   string
}

// Instr is one decoded instruction: the info word's fields plus the
// operand words that follow it.
type Instr struct {
	Address  int
	Octal    string
	Mnemonic string
	Source   string
	Target   string
	Operands []Cell
}

// Dump is the decoded object file.
type Dump struct {
	CodeWords int
	DataWords int
	Code      []Instr
	Data      []Cell
}

func main() {
	flag.Parse()

	var r io.Reader = os.Stdin
	if flag.NArg() > 1 {
		glog.Fatalf("usage: obdump [file.ob]")
	}
	if flag.NArg() == 1 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			glog.Fatalf("Failed to open input: %s", err)
		}
		defer f.Close()
		r = f
	}

	words, codeWords, dataWords, err := readObject(r)
	if err != nil {
		glog.Fatalf("Failed to read object file: %s", err)
	}

	dump, err := decode(words, codeWords, dataWords)
	if err != nil {
		glog.Fatalf("Failed to decode object file: %s", err)
	}

	pp.Println(dump)
}

// readObject parses the textual object format: a "code data" count
// header, then one "address octal-word" line per memory cell.
func readObject(r io.Reader) ([]arch.Word, int, int, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, 0, 0, fmt.Errorf("missing count header")
	}
	counts := strings.Fields(sc.Text())
	if len(counts) != 2 {
		return nil, 0, 0, fmt.Errorf("malformed count header %q", sc.Text())
	}
	codeWords, err := strconv.Atoi(counts[0])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("bad code count %q", counts[0])
	}
	dataWords, err := strconv.Atoi(counts[1])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("bad data count %q", counts[1])
	}

	var words []arch.Word
	addr := arch.Origin
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			return nil, 0, 0, fmt.Errorf("malformed line %q", sc.Text())
		}
		a, err := strconv.Atoi(fields[0])
		if err != nil || a != addr {
			return nil, 0, 0, fmt.Errorf("unexpected address %q, want %04d", fields[0], addr)
		}
		w, err := strconv.ParseUint(fields[1], 8, 16)
		if err != nil || w > arch.WordMask {
			return nil, 0, 0, fmt.Errorf("bad word %q at %04d", fields[1], addr)
		}
		words = append(words, arch.Word(w))
		addr++
	}
	if err := sc.Err(); err != nil {
		return nil, 0, 0, err
	}
	if len(words) != codeWords+dataWords {
		return nil, 0, 0, fmt.Errorf("header promises %d words, file has %d", codeWords+dataWords, len(words))
	}
	return words, codeWords, dataWords, nil
}

func decode(words []arch.Word, codeWords, dataWords int) (*Dump, error) {
	d := &Dump{CodeWords: codeWords, DataWords: dataWords}

	i := 0
	for i < codeWords {
		addr := arch.Origin + i
		w := words[i]
		op, ok := arch.LookupCode(w >> arch.OpcodeShift)
		if !ok {
			return nil, fmt.Errorf("no instruction with opcode %d at %04d", w>>arch.OpcodeShift, addr)
		}

		in := Instr{
			Address:  addr,
			Octal:    octal(w),
			Mnemonic: op.Name,
		}
		var srcMode, dstMode arch.AddrMode = arch.ModeNone, arch.ModeNone
		if op.Operands == 2 {
			srcMode, ok = modeAt(w, arch.SrcModeBase)
			if !ok {
				return nil, fmt.Errorf("bad source mode bits at %04d", addr)
			}
			in.Source = modeName(srcMode)
		}
		if op.Operands >= 1 {
			dstMode, ok = modeAt(w, arch.DstModeBase)
			if !ok {
				return nil, fmt.Errorf("bad target mode bits at %04d", addr)
			}
			in.Target = modeName(dstMode)
		}

		extra := operandWords(op, srcMode, dstMode)
		if i+1+extra > codeWords {
			return nil, fmt.Errorf("truncated instruction at %04d", addr)
		}
		for k := 1; k <= extra; k++ {
			in.Operands = append(in.Operands, Cell{Address: addr + k, Octal: octal(words[i+k])})
		}
		d.Code = append(d.Code, in)
		i += 1 + extra
	}

	for k := 0; k < dataWords; k++ {
		d.Data = append(d.Data, Cell{Address: arch.Origin + codeWords + k, Octal: octal(words[codeWords+k])})
	}
	return d, nil
}

// operandWords mirrors the encoder's sizing rule: one word per operand,
// except two register-mode operands sharing a single word.
func operandWords(op *arch.Op, src, dst arch.AddrMode) int {
	if op.Operands == 2 && src.IsRegisterMode() && dst.IsRegisterMode() {
		return 1
	}
	return op.Operands
}

// modeAt extracts the one-hot addressing mode from a four-bit field.
func modeAt(w arch.Word, base int) (arch.AddrMode, bool) {
	found := arch.ModeNone
	for m := arch.ModeImmediate; m <= arch.ModeRegDirect; m++ {
		if w&m.Bit(base) != 0 {
			if found != arch.ModeNone {
				return arch.ModeNone, false
			}
			found = m
		}
	}
	return found, found != arch.ModeNone
}

func modeName(m arch.AddrMode) string {
	switch m {
	case arch.ModeImmediate:
		return "immediate"
	case arch.ModeDirect:
		return "direct"
	case arch.ModeRegIndirect:
		return "indirect register"
	case arch.ModeRegDirect:
		return "direct register"
	}
	return "none"
}

func octal(w arch.Word) string {
	return fmt.Sprintf("%05o", w&arch.WordMask)
}
