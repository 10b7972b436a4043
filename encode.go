package formfs

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Encoder writes multipart/form-data in the dialect a [Decoder] reads. It is
// mostly useful to produce input for offline runs and tests.
type Encoder struct {
	w        *bufio.Writer
	boundary Boundary
	parts    int
	closed   bool
}

// NewEncoder creates a new [Encoder] that writes parts delimited by b to w.
func NewEncoder(w io.Writer, b Boundary) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), boundary: b}
}

// ContentType returns the Content-Type value announcing the encoder's
// boundary.
func (e *Encoder) ContentType() string {
	return "multipart/form-data; boundary=" + e.boundary.Token()
}

// WriteField writes one part named name with the given body. Parameters are
// added to the Content-Disposition header in order, with quoted values.
func (e *Encoder) WriteField(name string, body []byte, params ...Param) error {
	if e.closed {
		return ErrEncoderClosed
	}
	if name == "" {
		return fmt.Errorf("form: empty field name")
	}

	sep := e.boundary.Separator()
	if e.parts == 0 {
		sep = e.boundary.leading()
	}
	e.w.Write(sep)

	var b strings.Builder
	b.WriteString(dispositionPrefix)
	writeParam(&b, "name", name)
	for _, p := range params {
		b.WriteString("; ")
		writeParam(&b, p.Key, p.Value)
	}
	b.WriteString("\r\n\r\n")
	e.w.WriteString(b.String())
	e.w.Write(body)
	e.parts++

	return e.w.Flush()
}

// Close writes the closing boundary. The encoder cannot be used afterwards.
func (e *Encoder) Close() error {
	if e.closed {
		return ErrEncoderClosed
	}
	e.closed = true
	e.w.Write(e.boundary.Terminator())
	return e.w.Flush()
}

func writeParam(b *strings.Builder, key, val string) {
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(val)
	b.WriteString(`"`)
}
