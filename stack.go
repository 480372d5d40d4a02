package cbev

// parserState is the top-level FSM state, tracked per stack frame so that
// a container frame and the item currently being decoded inside it can be
// at different states simultaneously (e.g. a MAP frame sitting idle in
// stateOPC while its most recent value is mid-COLLECT).
type parserState uint8

const (
	stateOPC      parserState = iota // waiting for / dispatching a head byte
	stateCollect                     // assembling a big-endian argument or float
	stateSimplex8                    // assembling a one-byte simple value (major 7, minor 24)
	stateCollate                     // copying string/blob chunk bytes into the content buffer
	stateOnlySame                    // inside an indefinite string, awaiting a same-type fragment or BREAK
)

// frame is one level of the container stack. Depth 0 is the implicit
// top-level document; depths 1..maxDepth-1 are open arrays, maps, tag
// enclosures, or (transiently) the single extra slot an indefinite string
// pushes to decode its fragments.
//
// opcode is the major type of whatever item is currently being decoded at
// this depth: the container's own type immediately after it is pushed,
// then overwritten with each child item's major type as OPC processes it.
type frame struct {
	state parserState
	opcode byte

	remaining  uint64 // items (or array elements) left to close this container
	indefinite bool

	ordinal uint64 // how many items this frame has completed so far

	// intermediate is reset to false by push; nothing else in this
	// package sets or reads it.
	intermediate bool

	pathLen int // path buffer length to restore when this frame pops

	hasPopEvent bool
	popEvent    Event

	arrayIndex uint64 // current element ordinal, exposed to the host via Context.ArrayIndex

	// Map bookkeeping. expectKey is true when the next item at the child
	// (element-decode) depth is a key, false when it is a value.
	// mapKeyPathLen is the path length to restore once the value of the
	// current pair finishes, so the next key starts from the map's own
	// path rather than stacking onto the previous key's segment.
	expectKey     bool
	mapKeyPathLen int
}

// push opens a new frame one level deeper than the current top. The new
// frame clones the current top (preserving its opcode, which is the
// container's own major type immediately after push) before resetting
// remaining/indefinite/ordinal/intermediate/arrayIndex to zero, exactly
// as lecp.c's lecp_push does. The container's Start event is the
// caller's responsibility to emit before calling push — lecp.c itself
// fires ARRAY_START/OBJECT_START/TAG_START/STR_START this way, while sp
// still points at the pre-push frame — push only installs the state and
// the event to fire when this new frame eventually pops.
func (c *Context) push(state parserState, pathLen int, popEvent Event, hasPop bool) error {
	if c.sp+1 >= len(c.frames) {
		return ErrOverflow
	}
	parent := c.frames[c.sp]
	c.sp++
	child := parent
	child.state = state
	child.remaining = 0
	child.indefinite = false
	child.ordinal = 0
	child.intermediate = false
	child.arrayIndex = 0
	child.pathLen = pathLen
	child.hasPopEvent = hasPop
	child.popEvent = popEvent
	c.frames[c.sp] = child
	return nil
}

// pop closes the current top frame, restoring the path cursor it recorded
// and firing its pop event if it has one.
func (c *Context) pop() error {
	if c.sp == 0 {
		return ErrOverflow
	}
	f := &c.frames[c.sp]
	c.setPathLen(f.pathLen)
	hasPop, popEvent := f.hasPopEvent, f.popEvent
	c.sp--
	if hasPop {
		if err := c.emit(popEvent); err != nil {
			return err
		}
	}
	return nil
}

// parent returns the frame one level below the current top; callers must
// only invoke it when c.sp > 0.
func (c *Context) parent() *frame {
	return &c.frames[c.sp-1]
}

// completed walks up the stack after a leaf item (scalar, or a
// just-closed container) finishes, decrementing each ancestor's remaining
// count and popping any ancestor whose count has now reached zero. indet
// is true when the just-finished item was itself closed by an explicit
// BREAK rather than by exhausting a definite remaining count; it only
// matters for the first step of the walk, mirroring lwcp_completed's
// "indet" parameter.
func (c *Context) completed(indet bool) error {
	c.frames[c.sp].state = stateOPC

	for c.sp > 0 {
		p := c.parent()
		p.ordinal++

		// A BREAK (indet == true) closes p itself regardless of
		// array/map bookkeeping — it is a terminator, not an element —
		// so only run the per-element accounting on a normal finish.
		if !indet {
			switch p.opcode {
			case majArray:
				p.arrayIndex++
			case majMap:
				if p.expectKey {
					// a key just finished; the matching value comes
					// next at the same depth, so the pair (and this
					// walk) isn't done yet.
					p.expectKey = false
					return nil
				}
				p.expectKey = true
				c.setPathLen(p.mapKeyPathLen)
			}
		}

		if !indet && p.indefinite {
			break
		}
		if !p.indefinite {
			if p.remaining > 0 {
				p.remaining--
			}
			if p.remaining > 0 {
				break
			}
		}

		c.frames[c.sp-1].state = stateOPC
		if err := c.pop(); err != nil {
			return err
		}
		indet = false
	}
	return nil
}
