// Package preproc expands macro definitions and calls, turning raw
// source into the line stream consumed by the assembler passes.
package preproc

import "masm/arch"

// Table maps macro names to their recorded bodies.
type Table struct {
	macros map[string][]string
}

// NewTable creates an empty macro table.
func NewTable() *Table {
	return &Table{macros: make(map[string][]string)}
}

// Define registers a new, empty macro.
func (t *Table) Define(name string) {
	t.macros[name] = nil
}

// Append adds one verbatim body line to a defined macro.
func (t *Table) Append(name, line string) {
	t.macros[name] = append(t.macros[name], line)
}

// Body returns the recorded body of a macro.
func (t *Table) Body(name string) []string {
	return t.macros[name]
}

// IsMacro reports whether the name is defined.
func (t *Table) IsMacro(name string) bool {
	_, ok := t.macros[name]
	return ok
}

// ValidName reports whether a name may introduce a macro: a well-formed
// identifier that is not reserved and not already a macro.
func (t *Table) ValidName(name string) bool {
	return arch.ValidName(name) && !arch.Reserved(name) && !t.IsMacro(name)
}
