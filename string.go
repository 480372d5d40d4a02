package cbev

// String/byte-string collation (spec.md §4.E): copying raw content bytes
// into a fixed content buffer and spilling it as a Start/Chunk/End (or
// Chunk-only) event whenever the buffer fills or a chunk's byte count is
// exhausted, without ever allocating storage sized by the input.

func stringStartEvent(major byte) Event {
	if major == majBstr {
		return EventStrStart + strBlobOffset
	}
	return EventStrStart
}

func stringChunkEvent(major byte) Event {
	if major == majBstr {
		return EventStrChunk + strBlobOffset
	}
	return EventStrChunk
}

func stringEndEvent(major byte) Event {
	if major == majBstr {
		return EventStrEnd + strBlobOffset
	}
	return EventStrEnd
}

// isIndetString reports whether the current top frame is the fragment
// slot of an indefinite-length string: its own indefinite flag is unset,
// but its parent is a BSTR/TSTR frame marked indefinite. Mirrors
// lwcp_is_indet_string.
func (c *Context) isIndetString() bool {
	f := &c.frames[c.sp]
	if f.indefinite {
		return false
	}
	if c.sp == 0 {
		return false
	}
	p := c.parent()
	if p.opcode != majBstr && p.opcode != majTstr {
		return false
	}
	return p.indefinite
}

// maybeBeginMapKeyPath appends a "." plus the upcoming text onto the path
// buffer when this string is a map key, recording where to truncate back
// to once the matching value finishes. Only text-string keys get a path
// segment; a non-text key (a legal but unusual choice in CBOR) leaves the
// path untouched for that pair, matching spec.md's dotted-path scheme
// which is defined in terms of map keys as names.
func (c *Context) maybeBeginMapKeyPath(major byte) error {
	if c.sp == 0 {
		return nil
	}
	p := c.parent()
	if p.opcode != majMap || !p.expectKey || major != majTstr {
		return nil
	}
	p.mapKeyPathLen = c.pathLen
	if _, ok := c.pathAppend([]byte{'.'}); !ok {
		return ErrOverflow
	}
	return nil
}

// buildingMapKeyPath reports whether the string currently being collated
// is a map key whose text is also being mirrored into the path buffer.
func (c *Context) buildingMapKeyPath() bool {
	if c.sp == 0 {
		return false
	}
	p := c.parent()
	return p.opcode == majMap && p.expectKey && c.strMajor == majTstr
}

// beginDefiniteString starts collating a string/blob whose total length
// is already known, directly at the current frame (no push: a definite
// string is a leaf item, not a container). A zero-length string has no
// content byte to trigger a spill, so it emits START and then
// immediately spills the (empty) END itself; spec.md §4.E's "empty
// strings emit START immediately followed by END" and pushContainer's
// handling of empty arrays/maps are the same shape.
func (c *Context) beginDefiniteString(major byte, length uint64) error {
	if err := c.maybeBeginMapKeyPath(major); err != nil {
		return err
	}
	c.strMajor = major
	f := &c.frames[c.sp]
	f.opcode = major
	f.remaining = length
	f.state = stateCollate
	c.bufLen = 0
	if err := c.emit(stringStartEvent(major)); err != nil {
		return err
	}
	if length == 0 {
		return c.spillChunk(true)
	}
	return nil
}

// beginIndefiniteString starts an indefinite-length string: the Start
// event fires immediately (mirroring lecp.c firing it before the push,
// rather than through push's own start-event hook), then a child frame
// is pushed to decode each fragment header in turn.
func (c *Context) beginIndefiniteString(major byte) error {
	if err := c.maybeBeginMapKeyPath(major); err != nil {
		return err
	}
	c.strMajor = major
	if err := c.emit(stringStartEvent(major)); err != nil {
		return err
	}
	c.frames[c.sp].indefinite = true
	return c.push(stateOnlySame, c.pathLen, stringEndEvent(major), true)
}

// handleCollate processes one content byte while the top frame is in
// stateCollate.
func (c *Context) handleCollate(b byte) error {
	f := &c.frames[c.sp]
	c.buf[c.bufLen] = b
	c.bufLen++
	if f.remaining > 0 {
		f.remaining--
	}
	if c.buildingMapKeyPath() {
		if _, ok := c.pathAppend([]byte{b}); !ok {
			return ErrOverflow
		}
	}

	full := c.bufLen == len(c.buf)
	chunkDone := f.remaining == 0
	if !full && !chunkDone {
		return nil
	}
	return c.spillChunk(chunkDone)
}

// spillChunk emits the content buffer collated so far as a Chunk or End
// event, depending on whether the current chunk is complete and, if so,
// whether the enclosing string is indefinite, then advances state
// accordingly. Called both from handleCollate once a buffer fill or
// remaining-count boundary is reached, and directly for a zero-length
// chunk, which has no content byte to trigger that boundary on its own.
func (c *Context) spillChunk(chunkDone bool) error {
	f := &c.frames[c.sp]
	indet := c.isIndetString()
	final := chunkDone && !indet
	ev := stringChunkEvent(c.strMajor)
	if final {
		ev = stringEndEvent(c.strMajor)
	}
	if err := c.emit(ev); err != nil {
		return err
	}
	c.bufLen = 0

	switch {
	case !chunkDone:
		// buffer spilled mid-chunk; same chunk continues
		return nil
	case final:
		return c.finishItem(false)
	default:
		// chunk exhausted but the enclosing string is indefinite: the
		// spec requires the next head byte to be a same-majtype
		// definite chunk or BREAK, so go back to stateOnlySame rather
		// than the bare stateOPC lecp.c itself reverts to after the
		// first fragment (see DESIGN.md's note on this divergence).
		f.state = stateOnlySame
		return nil
	}
}

// handleOnlySame processes one head byte while the top frame is in
// stateOnlySame: it must be BREAK (closing the indefinite string) or the
// head of a definite-length chunk whose major type matches the string's.
func (c *Context) handleOnlySame(b byte) error {
	if b == majFloat|m7Break {
		if c.sp == 0 || !c.parent().indefinite {
			return ErrBadCoding
		}
		return c.finishItem(true)
	}

	major, minor := decodeHead(b)
	if major != c.strMajor {
		return ErrBadCoding
	}
	if minor >= minorReservedMin {
		return ErrBadCoding
	}

	f := &c.frames[c.sp]
	if minor <= minorImmediateMax {
		f.remaining = uint64(minor)
		f.state = stateCollate
		c.bufLen = 0
		if minor == 0 {
			// zero-length fragment: no content byte will ever arrive to
			// trigger handleCollate's spill, so decide now.
			return c.spillChunk(true)
		}
		return nil
	}

	f.opcode = major
	c.beginCollect(widthForMinor(minor))
	return nil
}
