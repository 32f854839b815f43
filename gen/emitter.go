package gen

import (
	"bytes"
	"fmt"
	"strings"
)

// emitter accumulates one generated source unit. Generation is pure: each
// declaration renders into its own emitter and the driver assembles the
// finished units.
type emitter struct {
	buf    bytes.Buffer
	indent int
}

// p writes one line at the current indent.
func (e *emitter) p(line string) {
	if line != "" {
		e.buf.WriteString(strings.Repeat("\t", e.indent))
		e.buf.WriteString(line)
	}
	e.buf.WriteByte('\n')
}

// pf writes one formatted line at the current indent.
func (e *emitter) pf(format string, args ...any) {
	e.p(fmt.Sprintf(format, args...))
}

// in increases the indent for subsequent lines.
func (e *emitter) in() { e.indent++ }

// out decreases the indent for subsequent lines.
func (e *emitter) out() { e.indent-- }

// blank writes an empty line.
func (e *emitter) blank() { e.buf.WriteByte('\n') }

// bytes returns the accumulated source.
func (e *emitter) bytes() []byte { return e.buf.Bytes() }

func (e *emitter) String() string { return e.buf.String() }
