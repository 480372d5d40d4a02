// Package cbev implements an allocation-free, callback-driven, streaming
// push-parser for RFC 8949 CBOR. A Context is fed arbitrarily-sized
// chunks of input one call at a time; as each structural or scalar
// element of the document is recognized, the Context invokes a Callback
// with an Event describing what just happened, and the host reads the
// decoded value (or string chunk) off the Context itself through its
// accessor methods before returning.
//
// No value tree is ever built: every buffer a Context needs (the
// container stack, the dotted path, the string content buffer) is a
// fixed-size array sized at compile time, so a Context can live on a
// constrained embedded target. Matching a pattern that contains "*"
// does build a small slice of wildcard offsets on each match attempt.
//
// A Context parses exactly one top-level data item. Once that item is
// complete, further Feed calls are rejected rather than starting a new
// item, so each document needs its own Context.
//
//	ctx := cbev.NewContext(func(c *cbev.Context, ev cbev.Event) error {
//		switch ev {
//		case cbev.EventUint:
//			fmt.Println(c.Path(), c.Uint64())
//		}
//		return nil
//	}, nil, []string{".*.id"})
//	defer ctx.Destruct()
//
//	for {
//		n, rerr := r.Read(buf)
//		err := ctx.Feed(buf[:n])
//		if err == nil {
//			break // the document is complete
//		}
//		if !errors.Is(err, cbev.ErrContinue) {
//			return err
//		}
//		if rerr != nil {
//			return rerr
//		}
//	}
//
// # Path matching
//
// Every scalar and container boundary carries a dotted path built from
// the map keys and "[]" array markers on the way down to it (see
// path.go). A Context can be constructed with a set of glob patterns
// (a literal byte sequence plus "*" wildcards) and will report, via
// [Context.PathMatched], whether the current path matches one of them —
// letting a host pull out only the values it cares about from a
// document it never fully materializes.
//
// # Tag dispatch
//
// CBOR tag numbers (major type 6) are reported as a bare event with the
// tag value available through [Context.Tag]; the tagreg subpackage
// offers a lookup table from tag number to handler for hosts that want
// to interpret well-known tags (epoch timestamps, bignums, ...) without
// a long switch in the callback itself.
package cbev
