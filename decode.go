package formfs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// state is the position of the decoder within the multipart body.
type state int

const (
	// statePreamble skips everything up to the first boundary.
	statePreamble state = iota
	// stateHeader consumes the header lines of a part.
	stateHeader
	// stateBody streams the part body to its destination.
	stateBody
	// stateDone is reached after the terminator.
	stateDone
)

func (s state) String() string {
	switch s {
	case statePreamble:
		return "preamble"
	case stateHeader:
		return "header"
	case stateBody:
		return "body"
	case stateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var crlf = []byte("\r\n")

// Summary describes a finished decode.
type Summary struct {
	// Fields is the number of field values written.
	Fields int
	// Bytes is the total number of body bytes written.
	Bytes int64
	// Terminated reports whether the closing boundary was seen. Input that
	// ends without it is accepted, and whatever arrived is kept.
	Terminated bool
}

// Decode reads the whole form and writes its fields into ns. It stops at the
// closing boundary or at the end of the input, whichever comes first. Any
// error aborts the decode and leaves what was written so far in place.
func (d *Decoder) Decode(ns *Namespace) (Summary, error) {
	if d.boundary.IsZero() {
		return Summary{}, ErrInvalidBoundary
	}
	if d.size < d.boundary.minBuffer() {
		return Summary{}, fmt.Errorf("%w: %d bytes, need %d", ErrBufferTooSmall, d.size, d.boundary.minBuffer())
	}

	run := &decodeRun{
		src:      d.r,
		boundary: d.boundary,
		ns:       ns,
		win:      newWindow(d.size),
		seq:      sequenceLog{w: d.seq},
		logger:   d.logger,
	}
	sum, err := run.run()
	if cerr := run.out.close(); err == nil {
		err = cerr
	}
	return sum, err
}

// decodeRun holds the state of one pass over the input.
type decodeRun struct {
	src      io.Reader
	boundary Boundary
	ns       *Namespace
	win      *window
	out      partWriter
	seq      sequenceLog
	logger   *slog.Logger

	state state
	eof   bool
	sum   Summary
}

func (r *decodeRun) run() (Summary, error) {
	for r.state != stateDone {
		progressed, err := r.step()
		if err != nil {
			return r.sum, err
		}
		if progressed {
			continue
		}

		if r.eof {
			r.logger.Warn("form data ended without closing boundary",
				"state", r.state.String(),
				"dropped", r.win.len(),
			)
			r.win.discard(r.win.len())
			break
		}
		if _, err := r.win.fill(r.src); err != nil {
			if !errors.Is(err, io.EOF) {
				return r.sum, fmt.Errorf("form: read input: %w", err)
			}
			r.eof = true
		}
	}
	return r.sum, nil
}

// step processes buffered input for the current state. It reports false when
// nothing can be done without more input.
func (r *decodeRun) step() (bool, error) {
	switch r.state {
	case statePreamble:
		return r.preamble(), nil
	case stateHeader:
		return r.header()
	case stateBody:
		return r.body()
	case stateDone:
		return false, nil
	default:
		panic("form: unknown decoder state " + r.state.String())
	}
}

func (r *decodeRun) preamble() bool {
	if n, ok := r.boundary.findPreamble(r.win.bytes()); ok {
		r.win.discard(n)
		r.state = stateHeader
		return true
	}
	if !r.win.full() {
		return false
	}
	// A boundary straddling the middle of a saturated window is lost here.
	r.win.discard(r.win.len() / 2)
	return true
}

func (r *decodeRun) header() (bool, error) {
	data := r.win.bytes()
	end := bytes.Index(data, crlf)
	if end < 0 {
		if r.win.full() {
			return false, fmt.Errorf("%w: no line break in %d bytes", ErrHeaderLineTooLong, r.win.cap())
		}
		return false, nil
	}

	h, err := parseHeaderLine(string(data[:end]))
	if err != nil {
		return false, err
	}
	r.win.discard(end + len(crlf))

	switch {
	case h.blank:
		r.state = stateBody
	case h.disposition && h.name != "":
		if err := r.openField(h); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r *decodeRun) openField(h header) error {
	if err := r.seq.record(h.name); err != nil {
		return err
	}

	a, err := r.ns.Allocate(h.name)
	if err != nil {
		return err
	}
	if a.Converted {
		r.logger.Info("field repeated, converted to directory", "field", a.Name)
	}
	if err := r.out.open(r.ns, a.Path); err != nil {
		return err
	}
	if err := r.ns.writeSidecars(a.Path, h.params); err != nil {
		return err
	}

	r.sum.Fields++
	r.logger.Debug("field", "field", a.Name, "path", a.Path, "params", len(h.params))
	return nil
}

func (r *decodeRun) body() (bool, error) {
	data := r.win.bytes()
	saturated := r.win.full() && !r.eof

	if m, ok := r.boundary.findBody(data, saturated); ok {
		if err := r.write(data[:m.offset]); err != nil {
			return false, err
		}
		if err := r.out.close(); err != nil {
			return false, err
		}
		r.win.discard(m.offset + m.length)
		if m.final {
			r.state = stateDone
			r.sum.Terminated = true
		} else {
			r.state = stateHeader
		}
		return true, nil
	}

	n := len(data)
	if !r.eof {
		n = r.boundary.flushable(data, r.win.cap())
	}
	if n == 0 {
		return false, nil
	}
	if err := r.write(data[:n]); err != nil {
		return false, err
	}
	r.win.discard(n)
	return true, nil
}

func (r *decodeRun) write(p []byte) error {
	n, err := r.out.write(p)
	if r.out.f != nil {
		r.sum.Bytes += int64(n)
	}
	return err
}
