package preproc

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"masm/arch"
)

// Expander runs the macro pass over one source file. Diagnostics are
// written to Diag; ErrCnt counts the lines that failed.
type Expander struct {
	Name   string // source file name, used in diagnostics
	Diag   io.Writer
	ErrCnt int

	macros *Table
}

// NewExpander creates an expander reporting to diag.
func NewExpander(name string, diag io.Writer) *Expander {
	return &Expander{Name: name, Diag: diag, macros: NewTable()}
}

// Macros exposes the macro table built during Expand; the assembler
// passes consult it when validating label names.
func (e *Expander) Macros() *Table {
	return e.macros
}

func (e *Expander) errorf(line int, format string, args ...any) {
	e.ErrCnt++
	fmt.Fprintf(e.Diag, "%s: line %d: ", e.Name, line)
	fmt.Fprintf(e.Diag, format, args...)
	fmt.Fprintln(e.Diag)
}

// Expand reads the source and returns the macro-expanded line stream.
// Macro definitions are removed, macro calls are replaced by their
// recorded bodies, blank and comment lines outside a definition are
// dropped, and everything else passes through unchanged.
// A non-nil error is returned only for a read failure.
func (e *Expander) Expand(r io.Reader) ([]string, error) {
	var out []string
	var current string // name of the macro being defined, or ""

	sc := bufio.NewScanner(r)
	num := 0
	for sc.Scan() {
		num++
		line := sc.Text()
		line = strings.TrimSuffix(line, "\r")

		if len(line) > arch.MaxLineLen {
			e.errorf(num, "line exceeds %d characters", arch.MaxLineLen)
			continue
		}

		fields := strings.Fields(line)

		// Inside a definition everything except the closing line is
		// captured verbatim.
		if current != "" {
			if len(fields) == 1 && fields[0] == "endmacr" {
				current = ""
				continue
			}
			e.macros.Append(current, line)
			continue
		}

		if len(fields) == 0 || strings.HasPrefix(strings.TrimSpace(line), ";") {
			continue
		}

		first := fields[0]
		switch {
		case e.macros.IsMacro(first):
			if len(fields) > 1 {
				e.errorf(num, "excess tokens after call to macro %q", first)
				continue
			}
			out = append(out, e.macros.Body(first)...)
			continue

		case first == "macr":
			if len(fields) < 2 {
				e.errorf(num, "macr without a name")
				continue
			}
			if len(fields) > 2 {
				e.errorf(num, "excess tokens after macro definition")
				continue
			}
			name := fields[1]
			if len(name) > arch.MaxLabelLen {
				e.errorf(num, "macro name %q exceeds %d characters", name, arch.MaxLabelLen)
				continue
			}
			if e.macros.IsMacro(name) {
				e.errorf(num, "macro %q is already defined", name)
				continue
			}
			if !e.macros.ValidName(name) {
				e.errorf(num, "invalid macro name %q", name)
				continue
			}
			e.macros.Define(name)
			current = name
			continue

		case first == "endmacr":
			e.errorf(num, "endmacr without a matching macr")
			continue
		}

		// A macro keyword or macro name anywhere past the first token
		// is never legal.
		if bad, ok := e.misplacedMacroToken(fields[1:]); ok {
			e.errorf(num, "misplaced macro token %q", bad)
			continue
		}

		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", e.Name, err)
	}

	if current != "" {
		e.errorf(num, "macro %q is missing endmacr", current)
	}

	return out, nil
}

func (e *Expander) misplacedMacroToken(rest []string) (string, bool) {
	for _, f := range rest {
		// Operands arrive comma-joined; split them up before comparing.
		for _, tok := range strings.FieldsFunc(f, func(r rune) bool { return r == ',' }) {
			if tok == "macr" || tok == "endmacr" || e.macros.IsMacro(tok) {
				return tok, true
			}
		}
	}
	return "", false
}
