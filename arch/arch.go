// Package arch describes the target machine: a 15-bit word, eight
// registers and a 4096-word memory loaded at address 100.
package arch

// Machine limits.
const (
	// MemorySize is the number of addressable words.
	MemorySize = 4096
	// Origin is the load address of the first code word.
	Origin = 100
	// MaxLineLen is the longest accepted source line, excluding the terminator.
	MaxLineLen = 80
	// MaxLabelLen is the longest accepted identifier.
	MaxLabelLen = 31
)

// Word is one 15-bit machine word. Only the low 15 bits are meaningful.
type Word uint16

// WordMask keeps the low 15 bits.
const WordMask = 0x7FFF

// ARE bits occupy the low three bits of every instruction-image word.
// Exactly one is set. Data-image words carry their raw value instead.
const (
	// AREAbsolute marks a word whose payload needs no relocation.
	AREAbsolute Word = 1 << 2
	// ARERelocatable marks a word holding a relocated symbol address.
	ARERelocatable Word = 1 << 1
	// AREExternal marks a word whose address is supplied by the loader.
	AREExternal Word = 1 << 0
)

// Bit offsets of the instruction word fields.
const (
	OpcodeShift = 11 // opcode in bits 11-14
	SrcModeBase = 7  // source addressing one-hot in bits 7-10
	DstModeBase = 3  // target addressing one-hot in bits 3-6
	PayloadBits = 3  // immediates and addresses sit in bits 3-14
	SrcRegShift = 6  // source register in bits 6-8
	DstRegShift = 3  // target register in bits 3-5
)

// AddrMode is one of the four operand addressing modes.
type AddrMode int

const (
	// ModeImmediate is #<signed-integer>.
	ModeImmediate AddrMode = 0
	// ModeDirect is an identifier resolved through the symbol table.
	ModeDirect AddrMode = 1
	// ModeRegIndirect is *rN.
	ModeRegIndirect AddrMode = 2
	// ModeRegDirect is rN.
	ModeRegDirect AddrMode = 3
	// ModeNone marks an absent operand.
	ModeNone AddrMode = -1
)

// IsRegisterMode reports whether the mode shares an operand word with
// another register-mode operand.
func (m AddrMode) IsRegisterMode() bool {
	return m == ModeRegIndirect || m == ModeRegDirect
}

// Bit returns the one-hot encoding of the mode at the given field base.
func (m AddrMode) Bit(base int) Word {
	return 1 << (base + int(m))
}

// Value ranges.
const (
	// DataMax bounds .data operands; 15-bit two's complement.
	DataMax = 16383
	// DataMin is the lower .data bound.
	DataMin = -16384
	// ImmediateMax bounds immediate operands.
	ImmediateMax = 4095
	// ImmediateMin is the lower immediate bound.
	ImmediateMin = -4095
)

// NumRegisters is the register file size; names run r0..r7.
const NumRegisters = 8

// Register parses "r0".."r7" and reports whether the name is a register.
func Register(s string) (int, bool) {
	if len(s) != 2 || s[0] != 'r' || s[1] < '0' || s[1] > '7' {
		return 0, false
	}
	return int(s[1] - '0'), true
}

// Truncate masks a signed value into a 15-bit word.
func Truncate(v int) Word {
	return Word(v) & WordMask
}

// Payload places a signed value into bits 3-14 of a word.
func Payload(v int) Word {
	return (Word(v) << PayloadBits) & WordMask
}
