package assembler

import (
	"strings"

	"masm/arch"
)

// ExternRef records one mode-1 reference to an external symbol; Address
// is the load address of the operand word holding the reference.
type ExternRef struct {
	Name    string
	Address int
}

// pass2 resolves the .entry directives deferred by pass one, then fills
// every placeholder operand word. References to externals get E=1 and a
// zero payload plus an entry in the externals list; everything else gets
// R=1 and the symbol's relocated value.
func (a *Assembler) pass2(lines []string) {
	for i, text := range lines {
		st, ok := parseStatement(i+1, text)
		if !ok || st.Op != arch.DirEntry {
			continue
		}
		args := strings.Fields(st.Rest)
		if len(args) == 0 {
			a.log.Errorf(st.Line, ".entry requires a symbol")
			continue
		}
		if len(args) > 1 {
			a.log.Errorf(st.Line, "extraneous tokens after .entry")
			continue
		}
		if err := a.symbols.MarkEntry(args[0]); err != nil {
			a.log.Errorf(st.Line, "%v", err)
		}
	}

	for _, h := range a.code.Holes() {
		sym, ok := a.symbols.Lookup(h.Symbol)
		if !ok {
			a.log.Errorf(h.Line, "unknown symbol %q", h.Symbol)
			continue
		}
		if sym.Kind == SymExternal {
			a.code.Set(h.Index, arch.AREExternal)
			a.externs = append(a.externs, ExternRef{Name: sym.Name, Address: arch.Origin + h.Index})
			continue
		}
		a.code.Set(h.Index, arch.ARERelocatable|arch.Payload(sym.Value))
	}
}
