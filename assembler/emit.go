package assembler

import (
	"fmt"
	"strings"

	"masm/arch"
)

// renderObject lays the code image and then the data image out from the
// load origin: a count header, then one "address word" line per cell,
// the address as four decimal digits and the word as five octal digits.
func renderObject(code *CodeImage, data *DataImage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %d\n", code.Len(), data.Len())
	addr := arch.Origin
	for _, w := range code.Words() {
		fmt.Fprintf(&b, "%04d %05o\n", addr, w&arch.WordMask)
		addr++
	}
	for _, w := range data.Words() {
		fmt.Fprintf(&b, "%04d %05o\n", addr, w&arch.WordMask)
		addr++
	}
	return b.String()
}

// renderEntries lists the entry symbols in definition order.
func renderEntries(syms []*Symbol) string {
	var b strings.Builder
	for _, s := range syms {
		fmt.Fprintf(&b, "%s %d\n", s.Name, s.Value)
	}
	return b.String()
}

// renderExternals lists every external reference in address order.
func renderExternals(refs []ExternRef) string {
	var b strings.Builder
	for _, r := range refs {
		fmt.Fprintf(&b, "%s %04d\n", r.Name, r.Address)
	}
	return b.String()
}
