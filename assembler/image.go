package assembler

import "masm/arch"

// DataImage is the ordered sequence of words produced by .data and
// .string. Its length after pass one is DC.
type DataImage struct {
	words []arch.Word
}

// Append adds one word.
func (d *DataImage) Append(w arch.Word) {
	d.words = append(d.words, w)
}

// Len returns the word count.
func (d *DataImage) Len() int {
	return len(d.words)
}

// Words returns the image contents.
func (d *DataImage) Words() []arch.Word {
	return d.words
}

// Placeholder tags an operand word whose payload waits for the second
// pass: the word's index in the code image, the symbol it names and the
// source line that produced it.
type Placeholder struct {
	Index  int
	Symbol string
	Line   int
}

// CodeImage is the ordered sequence of instruction words. Its length
// after pass one is IC.
type CodeImage struct {
	words []arch.Word
	holes []Placeholder
}

// Append adds finished words plus their pending symbol references,
// whose offsets are relative to the first appended word. Nothing is
// committed until the whole instruction encoded cleanly.
func (c *CodeImage) Append(words []arch.Word, refs []Ref, line int) {
	base := len(c.words)
	c.words = append(c.words, words...)
	for _, r := range refs {
		c.holes = append(c.holes, Placeholder{
			Index:  base + r.Offset,
			Symbol: r.Symbol,
			Line:   line,
		})
	}
}

// Set rewrites one word; the second pass uses it to fill placeholders.
func (c *CodeImage) Set(i int, w arch.Word) {
	c.words[i] = w
}

// Len returns the word count.
func (c *CodeImage) Len() int {
	return len(c.words)
}

// Words returns the image contents.
func (c *CodeImage) Words() []arch.Word {
	return c.words
}

// Holes returns the placeholders in address order.
func (c *CodeImage) Holes() []Placeholder {
	return c.holes
}
