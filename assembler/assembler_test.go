package assembler_test

import (
	"fmt"
	"strings"
	"testing"

	"masm/assembler"
)

// assemble runs the pipeline over src and returns the output.
func assemble(t *testing.T, src string) *assembler.Output {
	t.Helper()
	var diag strings.Builder
	asm := assembler.New("test.as", &diag)
	out, err := asm.Assemble(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble failed: %v\ndiagnostics:\n%s", err, diag.String())
	}
	t.Logf("diagnostics:\n%s", diag.String())
	return out
}

// assembleAndMatch assembles src and compares all three artifacts.
func assembleAndMatch(t *testing.T, name, src, wantOb, wantEnt, wantExt string) {
	t.Helper()
	out := assemble(t, src)
	if !out.OK() {
		t.Fatalf("[%s] %d errors assembling:\n%s", name, out.Errors, src)
	}
	if out.Object != wantOb {
		t.Errorf("[%s] object mismatch\ngot:\n%swant:\n%s", name, out.Object, wantOb)
	}
	if out.Entries != wantEnt {
		t.Errorf("[%s] entries mismatch\ngot:\n%swant:\n%s", name, out.Entries, wantEnt)
	}
	if out.Externals != wantExt {
		t.Errorf("[%s] externals mismatch\ngot:\n%swant:\n%s", name, out.Externals, wantExt)
	}
}

func TestStopAlone(t *testing.T) {
	assembleAndMatch(t, "stop", "stop\n",
		"1 0\n0100 74004\n", "", "")
}

func TestCodeAndData(t *testing.T) {
	src := `MAIN: mov r3, LEN
LEN:  .data 6
`
	want := "3 1\n" +
		"0100 02024\n" + // mov info: src reg-direct, dst direct
		"0101 00304\n" + // r3 as source
		"0102 01472\n" + // LEN = 103, relocatable
		"0103 00006\n"
	assembleAndMatch(t, "code+data", src, want, "", "")
}

func TestExternalReference(t *testing.T) {
	src := `.extern X
      jmp  X
`
	want := "2 0\n" +
		"0100 44024\n" +
		"0101 00001\n" // E=1, address left to the loader
	assembleAndMatch(t, "extern", src, want, "", "X 0101\n")
}

func TestTwoRegisterCompression(t *testing.T) {
	src := `LOOP: cmp  r1, r2
      bne  LOOP
      stop
`
	want := "5 0\n" +
		"0100 06104\n" +
		"0101 00124\n" + // r1 and r2 share one operand word
		"0102 50024\n" +
		"0103 01442\n" + // LOOP = 100
		"0104 74004\n"
	assembleAndMatch(t, "two-register", src, want, "", "")
}

func TestForwardReference(t *testing.T) {
	src := `      jmp END
END:  stop
`
	want := "3 0\n" +
		"0100 44024\n" +
		"0101 01462\n" + // END = 102
		"0102 74004\n"
	assembleAndMatch(t, "forward", src, want, "", "")
}

func TestEntrySymbol(t *testing.T) {
	src := `.entry MAIN
MAIN: stop
`
	assembleAndMatch(t, "entry", src, "1 0\n0100 74004\n", "MAIN 100\n", "")
}

func TestEntryOnDataSymbol(t *testing.T) {
	src := `MAIN: stop
.entry LEN
LEN: .data 7
`
	// LEN sits after the single code word: 100 + 1 + 0 = 101.
	assembleAndMatch(t, "entry-data", src,
		"1 1\n0100 74004\n0101 00007\n", "LEN 101\n", "")
}

func TestMultipleExternalSites(t *testing.T) {
	src := `.extern X
      jmp X
      jsr X
`
	want := "4 0\n" +
		"0100 44024\n" +
		"0101 00001\n" +
		"0102 64024\n" +
		"0103 00001\n"
	assembleAndMatch(t, "multi-extern", src, want, "", "X 0101\nX 0103\n")
}

func TestStringDirective(t *testing.T) {
	src := `STR: .string "ab"
`
	want := "0 3\n" +
		"0100 00141\n" +
		"0101 00142\n" +
		"0102 00000\n"
	assembleAndMatch(t, "string", src, want, "", "")
}

func TestImmediateEncoding(t *testing.T) {
	src := "prn #4095\n"
	want := "2 0\n" +
		"0100 60014\n" +
		"0101 77774\n"
	assembleAndMatch(t, "immediate-max", src, want, "", "")
}

func TestDataBoundaries(t *testing.T) {
	src := ".data 16383, -16384, -1\n"
	want := "0 3\n" +
		"0100 37777\n" +
		"0101 40000\n" +
		"0102 77777\n"
	assembleAndMatch(t, "data-bounds", src, want, "", "")
}

func TestMacroMatchesInlined(t *testing.T) {
	withMacro := `macr AB
	inc r1
	mov r2, r3
endmacr
AB
stop
`
	inlined := `	inc r1
	mov r2, r3
stop
`
	a := assemble(t, withMacro)
	b := assemble(t, inlined)
	if !a.OK() || !b.OK() {
		t.Fatalf("errors: macro=%d inlined=%d", a.Errors, b.Errors)
	}
	if a.Object != b.Object {
		t.Errorf("macro expansion differs from inlined source\nmacro:\n%sinlined:\n%s", a.Object, b.Object)
	}
}

func TestDeterministicOutput(t *testing.T) {
	src := `.entry MAIN
.extern X
MAIN: mov #3, COUNT
      jsr X
      stop
COUNT: .data 0
`
	a := assemble(t, src)
	b := assemble(t, src)
	if !a.OK() || !b.OK() {
		t.Fatalf("errors: %d, %d", a.Errors, b.Errors)
	}
	if a.Object != b.Object || a.Entries != b.Entries || a.Externals != b.Externals {
		t.Error("re-running the assembler changed the outputs")
	}
}

func TestObjectLineCount(t *testing.T) {
	src := `MAIN: mov #3, COUNT
      stop
COUNT: .data 0, 1, 2
`
	out := assemble(t, src)
	if !out.OK() {
		t.Fatalf("%d errors", out.Errors)
	}
	lines := strings.Split(strings.TrimSuffix(out.Object, "\n"), "\n")
	if got, want := len(lines)-1, 4+3; got != want {
		t.Errorf("object has %d cell lines, want %d", got, want)
	}
	var ic, dc int
	if _, err := fmt.Sscanf(lines[0], "%d %d", &ic, &dc); err != nil {
		t.Fatalf("bad header %q: %v", lines[0], err)
	}
	if ic+dc != len(lines)-1 {
		t.Errorf("header %d+%d does not match %d cells", ic, dc, len(lines)-1)
	}
}

func TestLineErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"duplicate label", "X: stop\nX: stop\n"},
		{"unknown mnemonic", "foo r1\n"},
		{"arity too few", "mov r1\n"},
		{"arity too many", "stop r1\n"},
		{"illegal target mode", "mov r1, #5\n"},
		{"illegal source mode", "lea r1, r2\n"},
		{"jmp immediate", "jmp #5\n"},
		{"jmp register", "jmp r1\n"},
		{"bad comma leading", "mov ,r1, r2\n"},
		{"bad comma double", "mov r1,, r2\n"},
		{"missing comma", "mov r1 r2\n"},
		{"immediate out of range", "prn #4096\n"},
		{"data out of range", ".data 16384\n"},
		{"data bad number", ".data five\n"},
		{"data empty", ".data\n"},
		{"unterminated string", ".string \"abc\n"},
		{"string missing quotes", ".string abc\n"},
		{"string trailing text", ".string \"abc\" def\n"},
		{"entry undefined", ".entry NOWHERE\nstop\n"},
		{"entry external", ".extern X\n.entry X\nstop\n"},
		{"entry extra token", "MAIN: stop\n.entry MAIN extra\n"},
		{"extern missing name", ".extern\n"},
		{"extern extra token", ".extern X Y\n"},
		{"reserved label", "mov: stop\n"},
		{"register label", "r1: stop\n"},
		{"label alone", "X:\n"},
		{"unknown symbol", "jmp NOWHERE\nstop\n"},
		{"label too long", "abcdefghijklmnopqrstuvwxyzabcdef: stop\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := assemble(t, tc.src)
			if out.OK() {
				t.Errorf("expected errors for:\n%s", tc.src)
			}
			if out.Object != "" || out.Entries != "" || out.Externals != "" {
				t.Errorf("artifacts emitted despite errors")
			}
		})
	}
}

func TestLabelBeforeExternIgnored(t *testing.T) {
	// The label is a notice, not a definition: referencing it later
	// must fail as an unknown symbol.
	src := `L: .extern X
      jmp L
      stop
`
	out := assemble(t, src)
	if out.OK() {
		t.Error("expected an unknown-symbol error for L")
	}
}

func TestMemoryOverflow(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString(".data 1, 2, 3, 4, 5, 6, 7, 8\n")
	}
	out := assemble(t, b.String())
	if out.OK() {
		t.Error("expected a memory overflow error")
	}
}

func TestEightyColumnBoundary(t *testing.T) {
	pad := strings.Repeat(" ", 76)
	out := assemble(t, pad+"stop\n")
	if !out.OK() {
		t.Errorf("80-character line rejected: %d errors", out.Errors)
	}

	out = assemble(t, " "+pad+"stop\n")
	if out.OK() {
		t.Error("81-character line accepted")
	}
}
