package formfs

import "errors"

var (
	// ErrInvalidBoundary is returned for an empty boundary token or one that
	// contains a line break.
	ErrInvalidBoundary = errors.New("form: invalid boundary")

	// ErrNoContentType is returned when no content type is available to
	// derive the boundary from.
	ErrNoContentType = errors.New("form: no content type")

	// ErrNotMultipart is returned when the content type is not
	// multipart/form-data.
	ErrNotMultipart = errors.New("form: content type is not multipart/form-data")

	// ErrMissingBoundary is returned when a multipart/form-data content type
	// carries no boundary parameter.
	ErrMissingBoundary = errors.New("form: no boundary in content type")

	// ErrBufferTooSmall is returned when the buffer cannot hold two
	// terminators, which the body flushing policy depends on.
	ErrBufferTooSmall = errors.New("form: buffer too small for boundary")

	// ErrHeaderLineTooLong is returned when a part header line does not fit
	// into the buffer.
	ErrHeaderLineTooLong = errors.New("form: header line too long")

	// ErrMalformedDisposition is returned for a form-data header whose name
	// parameter has no value.
	ErrMalformedDisposition = errors.New("form: malformed content disposition")

	// ErrSequenceLog is returned when a field name cannot be appended to the
	// sequence log.
	ErrSequenceLog = errors.New("form: sequence log")

	// ErrEncoderClosed is returned when writing to a closed [Encoder].
	ErrEncoderClosed = errors.New("form: encoder closed")
)
