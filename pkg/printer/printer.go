// Package printer writes human-readable JSON to a terminal or file.
package printer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/pretty"
)

// Printer formats values as indented JSON.
type Printer struct {
	w     io.Writer
	color bool
	opts  *pretty.Options
}

// Option applies a configuration option to the Printer.
type Option func(*Printer)

// WithColor enables ANSI colors, for terminals only.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		p.color = enabled
	}
}

// New creates a Printer writing to w.
func New(w io.Writer, opts ...Option) *Printer {
	o := *pretty.DefaultOptions
	p := &Printer{w: w, opts: &o}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Heading writes a blank line followed by a formatted title line.
func (p *Printer) Heading(format string, args ...any) error {
	if _, err := fmt.Fprintf(p.w, "\n"+format+"\n", args...); err != nil {
		return fmt.Errorf("write heading: %w", err)
	}
	return nil
}

// JSON writes v as indented JSON. Struct field order is kept; map keys are
// sorted by encoding/json. Non-ASCII text is written as is.
func (p *Printer) JSON(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	out := pretty.PrettyOptions(buf.Bytes(), p.opts)
	if p.color {
		out = pretty.Color(out, nil)
	}
	if _, err := p.w.Write(out); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
