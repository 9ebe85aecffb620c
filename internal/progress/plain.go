package progress

import (
	"fmt"
	"io"
)

// Plain writes one line per phase. It is used when stderr is not a terminal.
type Plain struct {
	w    io.Writer
	next Handle
}

// NewPlain returns a line-oriented reporter writing to w.
func NewPlain(w io.Writer) *Plain {
	return &Plain{w: w}
}

func (p *Plain) Open(label string, weight int) Handle {
	p.next++
	fmt.Fprintf(p.w, "%s...\n", label)
	return p.next
}

func (p *Plain) Advance(Handle, int) {}
func (p *Plain) Complete(Handle)     {}
func (p *Plain) Close()              {}
