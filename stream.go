package formfs

import (
	"io"
	"log/slog"
)

// Decoder reads multipart/form-data from an [io.Reader] and writes its fields
// into a [Namespace].
type Decoder struct {
	r        io.Reader
	boundary Boundary
	size     int
	seq      io.Writer
	logger   *slog.Logger
}

// NewDecoder creates a new [Decoder] that reads parts delimited by b from r.
func NewDecoder(r io.Reader, b Boundary) *Decoder {
	return &Decoder{
		r:        r,
		boundary: b,
		size:     DefaultBufferSize,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// SetBufferSize sets the capacity of the read window. Header lines must fit
// into it, and it must hold at least two terminators.
func (d *Decoder) SetBufferSize(n int) {
	d.size = n
}

// SetSequenceLog makes the decoder write every field name to w, one per line,
// in the order the fields arrive. Repeated names are written each time.
func (d *Decoder) SetSequenceLog(w io.Writer) {
	d.seq = w
}

// SetLogger sets the logger for field and conversion events.
func (d *Decoder) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d.logger = logger
}

// Split is a convenience function that decodes the form in r, delimited by
// b, into the directory dir.
func Split(r io.Reader, b Boundary, dir string) (Summary, error) {
	ns, err := OpenNamespace(dir)
	if err != nil {
		return Summary{}, err
	}
	return NewDecoder(r, b).Decode(ns)
}
