package cbev

import (
	"errors"
	"testing"
)

// FuzzFeed seeds the corpus with the same well-formed and deliberately
// malformed inputs exercised by the table-driven tests, then throws
// arbitrary mutations at Context.Feed. A conforming Context must never
// panic and must never return an error outside the sentinel set defined
// in errors.go.
func FuzzFeed(f *testing.F) {
	seeds := [][]byte{
		{0x00},                                           // uint immediate
		{0x1a, 0x00, 0x01, 0x00, 0x00},                    // uint, 4-byte argument
		{0x38, 0x63},                                      // negative int
		{0xf4}, {0xf5}, {0xf6}, {0xf7},                    // false/true/null/undefined
		{0xf8, 0xff},                                      // simplex8
		{0xf9, 0x3c, 0x00},                                // float16 1.0
		{0xfa, 0x3f, 0x80, 0x00, 0x00},                    // float32 1.0
		{0xfb, 0x3f, 0xf0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, // float64 1.0
		{0x83, 0x01, 0x02, 0x03},                          // definite array
		{0x80},                                            // empty definite array
		{0x9f, 0x01, 0x02, 0xff},                          // indefinite array
		{0xa1, 0x61, 'a', 0x01},                           // definite map
		{0xbf, 0x61, 'a', 0x01, 0xff},                     // indefinite map
		{0x81, 0xa1, 0x62, 'i', 'd', 0x07},                // nested map in array
		{0x44, 0x01, 0x02, 0x03, 0x04},                    // byte string
		{0x7f, 0x61, 'a', 0x61, 'b', 0xff},                // indefinite text string
		{0x7f, 0x61, 'a', 0x41, 0x00, 0xff},               // mismatched chunk type (malformed)
		{0x7f, 0x7f, 0x61, 'a', 0xff, 0xff},               // nested indefinite chunk (malformed)
		{0xc1, 0x1a, 0x59, 0x68, 0x24, 0x00},              // tag
		{0xc0, 0x18, 0x2a},                                // tag + subparse target
		{0xff},                                             // BREAK outside indefinite (malformed)
		{0x1c},                                             // reserved minor (malformed)
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		ctx := NewContext(func(c *Context, ev Event) error { return nil }, nil, nil)
		defer ctx.Destruct()

		err := ctx.Feed(data)
		if err == nil || errors.Is(err, ErrContinue) {
			return
		}
		switch {
		case errors.Is(err, ErrBadCoding),
			errors.Is(err, ErrOverflow),
			errors.Is(err, ErrRejectedByCallback):
		default:
			t.Fatalf("Feed returned an error outside the sentinel set: %v", err)
		}
	})
}
