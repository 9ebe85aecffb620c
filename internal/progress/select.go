package progress

import (
	"io"
	"os"

	"golang.org/x/term"
)

// New picks a reporter for w: nothing when quiet, an animated bar on a
// terminal, plain lines otherwise.
func New(w io.Writer, quiet bool) Reporter {
	if quiet {
		return Nop{}
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewBar(w)
	}
	return NewPlain(w)
}
