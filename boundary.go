package formfs

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
)

// Boundary holds the two markers derived from a multipart boundary token.
// Parts are separated by "\r\n--token\r\n" and the body ends with
// "\r\n--token--\r\n".
type Boundary struct {
	token      string
	separator  []byte
	terminator []byte
}

// NewBoundary derives the separator and terminator for token.
func NewBoundary(token string) (Boundary, error) {
	if token == "" || strings.ContainsAny(token, "\r\n") {
		return Boundary{}, fmt.Errorf("%w: %q", ErrInvalidBoundary, token)
	}
	return Boundary{
		token:      token,
		separator:  []byte("\r\n--" + token + "\r\n"),
		terminator: []byte("\r\n--" + token + "--\r\n"),
	}, nil
}

// BoundaryFromContentType extracts the boundary from a Content-Type value
// such as `multipart/form-data; boundary=XYZ`.
func BoundaryFromContentType(value string) (Boundary, error) {
	if strings.TrimSpace(value) == "" {
		return Boundary{}, ErrNoContentType
	}

	mediaType, params, err := mime.ParseMediaType(value)
	if err != nil {
		return Boundary{}, fmt.Errorf("%w: %q: %v", ErrNotMultipart, value, err)
	}
	if mediaType != "multipart/form-data" {
		return Boundary{}, fmt.Errorf("%w: %q", ErrNotMultipart, mediaType)
	}

	token, ok := params["boundary"]
	if !ok || token == "" {
		return Boundary{}, ErrMissingBoundary
	}
	return NewBoundary(token)
}

// Token returns the boundary token the markers were derived from.
func (b Boundary) Token() string { return b.token }

// Separator returns "\r\n--token\r\n".
func (b Boundary) Separator() []byte { return b.separator }

// Terminator returns "\r\n--token--\r\n".
func (b Boundary) Terminator() []byte { return b.terminator }

// IsZero reports whether b was not built by [NewBoundary].
func (b Boundary) IsZero() bool { return b.token == "" }

// leading is the separator without its CRLF. The first boundary of a body
// need not follow a line break.
func (b Boundary) leading() []byte {
	return b.separator[2:]
}

// margin is the number of bytes that must stay unflushed in the body state
// so that a marker split across two reads is still seen whole.
func (b Boundary) margin() int {
	return len(b.terminator) - 1
}

// minBuffer is the smallest window that keeps the body state making progress
// when the window is saturated.
func (b Boundary) minBuffer() int {
	return 2 * len(b.terminator)
}

// match is the result of a body search.
type match struct {
	offset int
	length int
	final  bool
}

// findBody looks for the end of the current part, taking whichever marker
// comes first so that an epilogue after the terminator is never parsed. While
// the window is saturated a terminator only counts at the very front, leaving
// one more read before the final part is closed.
func (b Boundary) findBody(data []byte, saturated bool) (match, bool) {
	sep := bytes.Index(data, b.separator)
	term := bytes.Index(data, b.terminator)
	if term >= 0 && (sep < 0 || term < sep) {
		if saturated && term > 0 {
			return match{}, false
		}
		return match{offset: term, length: len(b.terminator), final: true}, true
	}
	if sep < 0 {
		return match{}, false
	}
	return match{offset: sep, length: len(b.separator)}, true
}

// flushable returns how many leading body bytes can be written out without
// a marker split across reads being missed: at most half the window, always
// keeping margin bytes back, and never past a deferred terminator.
func (b Boundary) flushable(data []byte, capacity int) int {
	n := min(capacity/2, len(data)-b.margin())
	if i := bytes.Index(data, b.terminator); i >= 0 && i < n {
		n = i
	}
	return max(n, 0)
}

// findPreamble looks for the first boundary, which may not be preceded by a
// line break. It returns the number of bytes up to and including the marker.
func (b Boundary) findPreamble(data []byte) (int, bool) {
	lead := b.leading()
	i := bytes.Index(data, lead)
	if i < 0 {
		return 0, false
	}
	return i + len(lead), true
}
