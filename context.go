package cbev

import (
	"errors"
	"fmt"
	"math"
)

// Fixed capacities. These bound a Context's memory footprint; they are
// not configurable per-instance because doing so would require a heap
// allocation at construction time, defeating the point.
const (
	maxDepth         = 64  // container nesting (arrays, maps, tags, string fragments)
	maxPathLen       = 512 // bytes in the dotted path buffer
	maxChunk         = 256 // bytes in the string/blob content buffer
	maxWildcards     = 16  // '*' captures a single pattern may contain
	maxSubparseDepth = 8   // nested EnterSubparse calls
)

// parseFrame is one level of the parsing-context stack: its own
// callback, pattern set and path-match state. A Context starts with one
// entry (installed by NewContext) and grows only when a callback calls
// EnterSubparse to hand a sub-tree to a different callback/pattern set.
type parseFrame struct {
	cb       Callback
	patterns []string

	pathMatch    int // index into patterns of the current match, or -1
	pathMatchLen int
	wild         [maxWildcards]int
	wildCount    int
}

// Context is a single in-progress (or completed, or failed) CBOR parse.
// Once Feed returns an error other than ErrContinue, the Context is done
// and must be discarded; there is no way to resume or skip past a parse
// error mid-document.
type Context struct {
	user any

	frames [maxDepth]frame
	sp     int

	path    [maxPathLen]byte
	pathLen int

	buf    [maxChunk]byte
	bufLen int
	strMajor byte

	collectRem     int
	collectWidth   int
	collectAcc     uint64
	collectIsFloat bool

	item item

	pst   [maxSubparseDepth]parseFrame
	pstSP int

	offset int64

	done       bool
	failed     bool
	destructed bool
}

// NewContext constructs a Context wired to cb with the given pattern set
// (see Path, PathMatched and checkPathMatch) and fires EventConstructed
// before returning. user is opaque host data retrievable from inside the
// callback via Context.User.
func NewContext(cb Callback, user any, patterns []string) *Context {
	c := &Context{user: user}
	c.pst[0] = parseFrame{cb: cb, patterns: patterns, pathMatch: -1}
	c.frames[0] = frame{state: stateOPC}
	if cb != nil {
		_ = cb(c, EventConstructed)
	}
	return c
}

// ChangeCallback swaps the active parsing context's callback, firing
// EventDestructed on the outgoing one (if any) and EventConstructed on
// the incoming one. Mid-document state (stack, path, item) is untouched.
func (c *Context) ChangeCallback(cb Callback) {
	pst := &c.pst[c.pstSP]
	if pst.cb != nil {
		_ = pst.cb(c, EventDestructed)
	}
	pst.cb = cb
	if cb != nil {
		_ = cb(c, EventConstructed)
	}
}

// Destruct fires EventDestructed and marks the Context unusable. It is
// idempotent. A host that owns a Context should always call Destruct,
// even after a failed parse, so the callback can release any resources
// it associated with this parse via User.
func (c *Context) Destruct() {
	if c.destructed {
		return
	}
	c.destructed = true
	if cb := c.pst[c.pstSP].cb; cb != nil {
		_ = cb(c, EventDestructed)
	}
}

// EnterSubparse pushes a new parsing context with its own callback and
// pattern set, active until the matching LeaveSubparse. A callback
// invokes this to hand off a sub-tree (for example, a tagged enclosure
// whose contents need different dispatch) without unwinding the
// container/path state already built up by the outer parse.
func (c *Context) EnterSubparse(cb Callback, patterns []string) error {
	if c.pstSP+1 >= len(c.pst) {
		return ErrOverflow
	}
	c.pstSP++
	c.pst[c.pstSP] = parseFrame{cb: cb, patterns: patterns, pathMatch: -1}
	return nil
}

// LeaveSubparse pops back to the parsing context active before the
// matching EnterSubparse.
func (c *Context) LeaveSubparse() error {
	if c.pstSP == 0 {
		return ErrOverflow
	}
	c.pstSP--
	return nil
}

// User returns the opaque value passed to NewContext.
func (c *Context) User() any { return c.user }

// emit re-evaluates path matching and invokes the active callback. A
// non-nil return from the callback is reported as ErrRejectedByCallback,
// already wrapped with the offset and event it was rejected at.
func (c *Context) emit(ev Event) error {
	c.checkPathMatch()
	cb := c.pst[c.pstSP].cb
	if cb == nil {
		return nil
	}
	if err := cb(c, ev); err != nil {
		return c.newParseError(ErrRejectedByCallback, ev)
	}
	return nil
}

// finishItem closes out a leaf scalar or just-closed container by
// walking the stack's completion accounting, then — if that walk
// unwound all the way back to the document root — fires EventComplete
// exactly once.
func (c *Context) finishItem(indet bool) error {
	if err := c.completed(indet); err != nil {
		return err
	}
	if c.sp == 0 && !c.done {
		c.done = true
		return c.emit(EventComplete)
	}
	return nil
}

// Feed parses as much of chunk as it can. It returns ErrContinue (check
// with errors.Is) when the chunk was fully consumed but the document is
// not yet complete; nil once the single top-level CBOR data item has
// been fully parsed; or a *ParseError wrapping ErrBadCoding, ErrOverflow
// or ErrRejectedByCallback. Once Feed returns anything other than
// ErrContinue, the Context must not be fed further.
func (c *Context) Feed(chunk []byte) error {
	if c.destructed {
		return c.newParseError(fmt.Errorf("cbev: fed bytes to a destructed context"), EventFailed)
	}
	if c.failed {
		return c.newParseError(ErrBadCoding, EventFailed)
	}
	if c.done {
		return c.newParseError(fmt.Errorf("cbev: fed bytes after the document already completed"), EventFailed)
	}

	for _, b := range chunk {
		if err := c.step(b); err != nil {
			c.failed = true
			pe := c.asParseError(err)
			_ = c.emit(EventFailed)
			return pe
		}
		c.offset++
		if c.done {
			return nil
		}
	}
	return ErrContinue
}

func (c *Context) asParseError(err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}
	return c.newParseError(err, EventFailed)
}

// step dispatches one input byte according to the current top frame's
// state.
func (c *Context) step(b byte) error {
	switch c.frames[c.sp].state {
	case stateOPC:
		return c.handleOPC(b)
	case stateCollect:
		if c.collectByte(b) {
			return c.finishCollect()
		}
		return nil
	case stateSimplex8:
		return c.handleSimplex8(b)
	case stateCollate:
		return c.handleCollate(b)
	case stateOnlySame:
		return c.handleOnlySame(b)
	}
	return ErrBadCoding
}

// handleOPC processes a head byte: major type and minor value dispatch
// to whichever component (number/string/stack) owns that major type.
func (c *Context) handleOPC(b byte) error {
	major, minor := decodeHead(b)

	if major == majFloat && minor == m7Break {
		if c.sp == 0 || !c.parent().indefinite {
			return ErrBadCoding
		}
		return c.finishItem(true)
	}

	f := &c.frames[c.sp]
	f.opcode = major

	switch major {
	case majUint, majNeg:
		return c.beginIntArgument(major, minor)
	case majBstr, majTstr:
		return c.beginStringArgument(major, minor)
	case majArray:
		return c.beginContainerArgument(majArray, minor)
	case majMap:
		return c.beginContainerArgument(majMap, minor)
	case majTag:
		return c.beginTagArgument(minor)
	case majFloat:
		return c.beginFloatOrSimple(minor)
	}
	return ErrBadCoding
}

func (c *Context) beginIntArgument(major, minor byte) error {
	switch {
	case minor <= minorImmediateMax:
		return c.finishInt(major, uint64(minor))
	case minor >= minorArg1 && minor <= minorArg8:
		c.beginCollect(widthForMinor(minor))
		return nil
	default:
		return ErrBadCoding
	}
}

func (c *Context) finishInt(major byte, value uint64) error {
	if major == majUint {
		c.item = item{kind: itemU64, u64: value}
		if err := c.emit(EventUint); err != nil {
			return err
		}
		return c.finishItem(false)
	}
	// value is the well-formed CBOR argument (0..2^64-1); the represented
	// negative value is -1-value, which can run to -2^64 and so does not
	// always fit an int64 (the representable negative range is only down
	// to -2^63). This is not a capacity failure like ErrOverflow — the
	// input is perfectly valid CBOR — so out-of-range magnitudes wrap via
	// ordinary two's-complement truncation (the same bit pattern lecp.c's
	// "(-1ll) - (int64_t)sm" cast produces) rather than failing the
	// parse. u64 keeps the exact argument alongside the (possibly
	// wrapped) i64 for a host that needs the true magnitude.
	c.item = item{kind: itemI64, u64: value, i64: -1 - int64(value)}
	if err := c.emit(EventInt); err != nil {
		return err
	}
	return c.finishItem(false)
}

func (c *Context) beginStringArgument(major, minor byte) error {
	switch {
	case minor == minorIndefinite:
		return c.beginIndefiniteString(major)
	case minor <= minorImmediateMax:
		return c.beginDefiniteString(major, uint64(minor))
	case minor >= minorArg1 && minor <= minorArg8:
		c.beginCollect(widthForMinor(minor))
		return nil
	default:
		return ErrBadCoding
	}
}

func (c *Context) beginContainerArgument(major, minor byte) error {
	switch {
	case minor == minorIndefinite:
		return c.pushContainer(major, 0, true)
	case minor <= minorImmediateMax:
		return c.pushContainer(major, uint64(minor), false)
	case minor >= minorArg1 && minor <= minorArg8:
		c.beginCollect(widthForMinor(minor))
		return nil
	default:
		return ErrBadCoding
	}
}

// pushContainer opens an array or map. The Start event fires before the
// child frame is pushed (mirroring lecp.c firing ARRAY_START/OBJECT_START
// directly, not through lecp_push's own start-event hook), so the
// callback observes ArrayIndex as it stood just before entering the new
// scope. For an array the "[]" marker is already on the path when
// EventArrayStart fires; a map adds nothing to the path until its first
// key.
func (c *Context) pushContainer(major byte, count uint64, indefinite bool) error {
	pathBefore := c.pathLen
	if major == majArray {
		if _, ok := c.pathAppendArray(); !ok {
			return ErrOverflow
		}
	}

	startEv, endEv := EventArrayStart, EventArrayEnd
	if major == majMap {
		startEv, endEv = EventObjectStart, EventObjectEnd
	}
	if err := c.emit(startEv); err != nil {
		return err
	}

	if !indefinite && count == 0 {
		c.setPathLen(pathBefore)
		if err := c.emit(endEv); err != nil {
			return err
		}
		return c.finishItem(false)
	}

	f := &c.frames[c.sp]
	f.remaining = count
	f.indefinite = indefinite
	f.expectKey = true
	f.mapKeyPathLen = pathBefore
	return c.push(stateOPC, pathBefore, endEv, true)
}

func (c *Context) beginTagArgument(minor byte) error {
	switch {
	case minor <= minorImmediateMax:
		return c.pushTag(uint64(minor))
	case minor >= minorArg1 && minor <= minorArg8:
		c.beginCollect(widthForMinor(minor))
		return nil
	default:
		return ErrBadCoding
	}
}

func (c *Context) pushTag(tagNum uint64) error {
	c.item = item{kind: itemTag, tag: tagNum}
	pathBefore := c.pathLen
	if err := c.emit(EventTagStart); err != nil {
		return err
	}
	f := &c.frames[c.sp]
	f.remaining = 1
	f.indefinite = false
	return c.push(stateOPC, pathBefore, EventTagEnd, true)
}

func (c *Context) beginFloatOrSimple(minor byte) error {
	switch {
	case minor <= 19:
		c.item = item{kind: itemU64, u64: uint64(minor)}
		if err := c.emit(EventSimple); err != nil {
			return err
		}
		return c.finishItem(false)
	case minor == simpleFalse:
		if err := c.emit(EventFalse); err != nil {
			return err
		}
		return c.finishItem(false)
	case minor == simpleTrue:
		if err := c.emit(EventTrue); err != nil {
			return err
		}
		return c.finishItem(false)
	case minor == simpleNull:
		if err := c.emit(EventNull); err != nil {
			return err
		}
		return c.finishItem(false)
	case minor == simpleUndefined:
		if err := c.emit(EventUndefined); err != nil {
			return err
		}
		return c.finishItem(false)
	case minor == simpleExt8:
		c.frames[c.sp].state = stateSimplex8
		return nil
	case minor == floatSubtype16:
		c.beginCollectFloat(2)
		return nil
	case minor == floatSubtype32:
		c.beginCollectFloat(4)
		return nil
	case minor == floatSubtype64:
		c.beginCollectFloat(8)
		return nil
	default: // 28, 29, 30: reserved
		return ErrBadCoding
	}
}

func (c *Context) handleSimplex8(b byte) error {
	if b <= 31 {
		// RFC 8949 §3.3: simple values 0-31 must use the short form.
		return ErrBadCoding
	}
	c.item = item{kind: itemU64, u64: uint64(b)}
	if err := c.emit(EventSimple); err != nil {
		return err
	}
	return c.finishItem(false)
}

// finishCollect runs once the big-endian collector assembled in
// beginCollect/beginCollectFloat has its full width.
func (c *Context) finishCollect() error {
	if c.collectIsFloat {
		switch c.collectWidth {
		case 2:
			c.item = item{kind: itemF16Bits, f16: uint16(c.collectAcc)}
			if err := c.emit(EventFloat16); err != nil {
				return err
			}
		case 4:
			c.item = item{kind: itemF32, f32: math.Float32frombits(uint32(c.collectAcc))}
			if err := c.emit(EventFloat32); err != nil {
				return err
			}
		case 8:
			c.item = item{kind: itemF64, f64: math.Float64frombits(c.collectAcc)}
			if err := c.emit(EventFloat64); err != nil {
				return err
			}
		}
		return c.finishItem(false)
	}

	f := &c.frames[c.sp]
	switch f.opcode {
	case majUint, majNeg:
		return c.finishInt(f.opcode, c.collectAcc)
	case majBstr, majTstr:
		if c.isIndetString() {
			// a fragment of an indefinite string: its Start event already
			// fired when the outer string opened.
			f.remaining = c.collectAcc
			f.state = stateCollate
			c.bufLen = 0
			if c.collectAcc == 0 {
				return c.spillChunk(true)
			}
			return nil
		}
		return c.beginDefiniteString(f.opcode, c.collectAcc)
	case majArray, majMap:
		return c.pushContainer(f.opcode, c.collectAcc, false)
	case majTag:
		return c.pushTag(c.collectAcc)
	}
	return ErrBadCoding
}

// Uint64 returns the value of the most recently decoded EventUint item.
// For an EventInt item it instead returns the raw CBOR argument (the
// represented value is -1-Uint64()), which is exact even when that value
// does not fit in an int64; see Int64.
func (c *Context) Uint64() uint64 { return c.item.u64 }

// Int64 returns the value of the most recently decoded EventInt item as
// -1-argument. A negative int whose magnitude exceeds int64's range
// (argument > math.MaxInt64, representing a value below -2^63) wraps via
// two's-complement truncation rather than failing the parse; use Uint64
// for the exact argument if that range matters to the host.
func (c *Context) Int64() int64 { return c.item.i64 }

// Float16Bits returns the raw IEEE 754-2008 binary16 bit pattern of the
// most recently decoded EventFloat16 item; decode it with package
// ieee754's ToFloat32 or ToFloat64.
func (c *Context) Float16Bits() uint16 { return c.item.f16 }

// Float32 returns the value of the most recently decoded EventFloat32 item.
func (c *Context) Float32() float32 { return c.item.f32 }

// Float64 returns the value of the most recently decoded EventFloat64 item.
func (c *Context) Float64() float64 { return c.item.f64 }

// Tag returns the tag number of the most recently opened EventTagStart.
func (c *Context) Tag() uint64 { return c.item.tag }

// Simple returns the simple-value number of the most recently decoded
// EventSimple item (0-19 or, via SIMPLEX8, 32-255).
func (c *Context) Simple() uint64 { return c.item.u64 }

// Chunk returns the bytes of the string/blob fragment that triggered the
// current EventStrChunk, EventStrEnd, EventBlobChunk or EventBlobEnd.
// The returned slice aliases the Context's internal buffer and is only
// valid for the duration of the Callback invocation.
func (c *Context) Chunk() []byte { return c.buf[:c.bufLen] }
