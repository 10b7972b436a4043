package formfs

import "io"

// DefaultBufferSize is the capacity of the window a [Decoder] reads through
// unless [Decoder.SetBufferSize] says otherwise.
const DefaultBufferSize = 2048

// window is a fixed-capacity buffer over the unconsumed tail of the input.
// Bytes [0, n) are pending, in input order. It is allocated once per decode
// run and never grows.
type window struct {
	buf []byte
	n   int
}

func newWindow(size int) *window {
	return &window{buf: make([]byte, size)}
}

// fill performs a single read into the free tail of the window. It reports
// io.EOF once the source is exhausted, possibly together with the last bytes
// read.
func (w *window) fill(r io.Reader) (int, error) {
	if w.full() {
		return 0, nil
	}

	n, err := r.Read(w.buf[w.n:])
	w.n += n
	return n, err
}

// bytes returns the pending bytes. The slice is only valid until the next
// call to fill or discard.
func (w *window) bytes() []byte {
	return w.buf[:w.n]
}

// discard drops the first n pending bytes and moves the rest to the front.
func (w *window) discard(n int) {
	if n <= 0 {
		return
	}
	if n >= w.n {
		w.n = 0
		return
	}
	copy(w.buf, w.buf[n:w.n])
	w.n -= n
}

func (w *window) len() int { return w.n }

func (w *window) cap() int { return len(w.buf) }

func (w *window) full() bool { return w.n == len(w.buf) }
