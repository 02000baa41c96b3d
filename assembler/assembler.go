// Package assembler translates source for the 15-bit educational
// machine into its object, entries and externals artifacts. It runs the
// macro pre-processor, a first pass that builds the symbol table and
// memory images, and a second pass that resolves symbolic references.
package assembler

import (
	"io"

	"masm/preproc"
)

// Assembler holds the state for assembling one source file. Nothing is
// shared between files; create a fresh Assembler per input.
type Assembler struct {
	name    string
	log     *ErrorLog
	macros  *preproc.Table
	symbols *SymTable
	data    *DataImage
	code    *CodeImage
	externs []ExternRef
}

// New creates an assembler for one named source file. Diagnostics are
// written to diag as they are found.
func New(name string, diag io.Writer) *Assembler {
	return &Assembler{
		name:    name,
		log:     &ErrorLog{Name: name, Diag: diag},
		symbols: NewSymTable(),
		data:    &DataImage{},
		code:    &CodeImage{},
	}
}

// Output is the result of assembling one file. Object, Entries and
// Externals are empty when errors prevented emission; Entries and
// Externals are also empty when there is nothing to list.
type Output struct {
	Expanded  []string // the macro-expanded source
	Object    string
	Entries   string
	Externals string
	Errors    int
}

// OK reports whether the file assembled without errors.
func (o *Output) OK() bool {
	return o.Errors == 0
}

// Assemble runs the full pipeline over src. Line defects are reported
// to the diagnostics writer and counted in Output.Errors; any non-zero
// count suppresses the artifacts. The returned error is reserved for
// read failures.
func (a *Assembler) Assemble(src io.Reader) (*Output, error) {
	exp := preproc.NewExpander(a.name, a.log.Diag)
	lines, err := exp.Expand(src)
	if err != nil {
		return nil, err
	}
	if exp.ErrCnt > 0 {
		return &Output{Errors: exp.ErrCnt}, nil
	}
	a.macros = exp.Macros()

	a.pass1(lines)
	if a.log.ErrCnt > 0 {
		return &Output{Expanded: lines, Errors: a.log.ErrCnt}, nil
	}

	a.symbols.Relocate(a.code.Len())

	a.pass2(lines)
	if a.log.ErrCnt > 0 {
		return &Output{Expanded: lines, Errors: a.log.ErrCnt}, nil
	}

	out := &Output{
		Expanded: lines,
		Object:   renderObject(a.code, a.data),
	}
	if ents := a.symbols.Entries(); len(ents) > 0 {
		out.Entries = renderEntries(ents)
	}
	if len(a.externs) > 0 {
		out.Externals = renderExternals(a.externs)
	}
	return out, nil
}
