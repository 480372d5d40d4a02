package cbev

import "fmt"

// Sentinel errors a host compares against with errors.Is. They mirror
// spec.md §7's flat error taxonomy: there is no recovery, a Context that
// has returned a non-ErrContinue error must be reconstructed before
// feeding it more bytes.
var (
	// ErrBadCoding means the input is not well-formed CBOR: a reserved
	// minor value (28-30), a SIMPLEX8 byte <= 31, a BREAK with no
	// indefinite-length parent, or an indefinite-length chunk nested
	// inside an indefinite-length string.
	ErrBadCoding = fmt.Errorf("cbev: bad CBOR coding")

	// ErrOverflow means a fixed-size internal buffer (frame stack, path
	// buffer, or the EnterSubparse stack) ran out of room. LeaveSubparse
	// also returns it when there is no sub-parse to leave.
	ErrOverflow = fmt.Errorf("cbev: overflow")

	// ErrRejectedByCallback means a Callback returned a non-nil error,
	// which aborted the parse.
	ErrRejectedByCallback = fmt.Errorf("cbev: rejected by callback")

	// ErrContinue is not a failure: Feed returns it to say the chunk
	// was consumed but the document is not yet complete.
	ErrContinue = fmt.Errorf("cbev: need more input")
)

// ParseError wraps one of the sentinel errors above with the byte offset
// (cumulative across every call to Feed on the same Context) at which it
// was detected, and, where applicable, the event that the parser was
// about to deliver.
type ParseError struct {
	Err    error
	Offset int64
	Event  Event
}

func (e *ParseError) Error() string {
	if e.Err == ErrRejectedByCallback {
		return fmt.Sprintf("cbev: callback rejected %s event at offset %d", e.Event, e.Offset)
	}
	return fmt.Sprintf("%s at offset %d", e.Err, e.Offset)
}

func (e *ParseError) Unwrap() error { return e.Err }

// newParseError builds a *ParseError for the current cumulative offset.
func (c *Context) newParseError(err error, ev Event) *ParseError {
	return &ParseError{Err: err, Offset: c.offset, Event: ev}
}
