package assembler

import (
	"fmt"
	"io"
)

// ErrorLog collects per-file diagnostics. Line errors are counted and
// written to Diag; notices are written but not counted, so they never
// block emission.
type ErrorLog struct {
	Name   string
	Diag   io.Writer
	ErrCnt int
}

// Errorf records a line error.
func (l *ErrorLog) Errorf(line int, format string, args ...any) {
	l.ErrCnt++
	fmt.Fprintf(l.Diag, "%s: line %d: ", l.Name, line)
	fmt.Fprintf(l.Diag, format, args...)
	fmt.Fprintln(l.Diag)
}

// Noticef reports a condition worth flagging that does not fail the line.
func (l *ErrorLog) Noticef(line int, format string, args ...any) {
	fmt.Fprintf(l.Diag, "%s: line %d: notice: ", l.Name, line)
	fmt.Fprintf(l.Diag, format, args...)
	fmt.Fprintln(l.Diag)
}
