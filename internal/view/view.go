// Package view renders lookup reports. The terminal renderer draws panels,
// the JSON and PDF renderers export the same report for other tools.
package view

import (
	"errors"
	"fmt"
	"io"

	"github.com/kluth/wtfis/internal/handler"
)

// Formats
const (
	FormatTerminal = "terminal"
	FormatJSON     = "json"
	FormatPDF      = "pdf"
)

var (
	// ErrUnsupportedEntity is returned for a report with no entity data.
	ErrUnsupportedEntity = errors.New("unsupported entity")

	// ErrUnknownFormat is returned for an output format with no renderer.
	ErrUnknownFormat = errors.New("unknown output format")
)

// Options control how a report is rendered.
type Options struct {
	Format    string
	OneColumn bool
	NoColor   bool
}

// ValidFormat reports whether format names a renderer.
func ValidFormat(format string) bool {
	switch format {
	case "", FormatTerminal, FormatJSON, FormatPDF:
		return true
	}
	return false
}

// New returns the renderer for opts.Format writing to w.
func New(w io.Writer, opts Options) (handler.Visitor, error) {
	switch opts.Format {
	case "", FormatTerminal:
		return NewTerminal(w, opts.OneColumn, opts.NoColor), nil
	case FormatJSON:
		return NewJSON(w), nil
	case FormatPDF:
		return NewPDF(w), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
}

// Render writes r to w in the requested format.
func Render(w io.Writer, r handler.Report, opts Options) error {
	if r == nil {
		return ErrUnsupportedEntity
	}
	v, err := New(w, opts)
	if err != nil {
		return err
	}
	return r.Accept(v)
}
