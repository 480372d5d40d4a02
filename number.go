package cbev

// CBOR major types (top 3 bits of a head byte, already shifted into the
// high bits so they can be compared directly against byte&majMask).
const (
	majUint  byte = 0x00
	majNeg   byte = 0x20
	majBstr  byte = 0x40
	majTstr  byte = 0x60
	majArray byte = 0x80
	majMap   byte = 0xA0
	majTag   byte = 0xC0
	majFloat byte = 0xE0

	majMask byte = 0xE0
	subMask byte = 0x1F
)

// Minor-value classification (RFC 8949 §3), in the low 5 bits of a head
// byte.
const (
	minorImmediateMax byte = 23 // 0..23: immediate value is the minor itself
	minorArg1         byte = 24 // next 1/2/4/8 bytes hold a big-endian argument
	minorArg2         byte = 25
	minorArg4         byte = 26
	minorArg8         byte = 27
	minorReservedMin  byte = 28 // 28..30: reserved, always bad coding
	minorIndefinite   byte = 31 // indefinite-length marker, or BREAK under major 7
)

// Major-7 (float/simple) minor values with dedicated meaning.
const (
	simpleFalse     byte = 20
	simpleTrue      byte = 21
	simpleNull      byte = 22
	simpleUndefined byte = 23
	simpleExt8      byte = 24 // one more byte follows (SIMPLEX8)
	floatSubtype16  byte = 25
	floatSubtype32  byte = 26
	floatSubtype64  byte = 27
	m7Break         byte = 31
)

// itemKind discriminates the tagged union held in item. A discriminated
// Go struct is used instead of an untagged union (spec.md §9's design
// note) so the kind of the last decoded scalar is statically inspectable.
type itemKind uint8

const (
	itemNone itemKind = iota
	itemU64
	itemI64
	itemF16Bits
	itemF32
	itemF64
	itemTag
)

// item is the most recently decoded (or being-collected) scalar.
type item struct {
	kind itemKind
	u64  uint64
	i64  int64
	f16  uint16
	f32  float32
	f64  float64
	tag  uint64
}

// beginCollect arms the big-endian collector (component B) to assemble an
// n-byte argument or float payload. Rather than chasing a pointer into the
// destination scalar's storage as lecp.c's ex() does (and branching on host
// endianness to decide which end of it to start from), the collector
// always assembles into a uint64 register by repeated shift-and-or — the
// "may always assemble into a u64 in registers" alternative spec.md §9
// explicitly endorses as equivalent to the byte-pointer approach.
func (c *Context) beginCollect(width int) {
	f := &c.frames[c.sp]
	f.state = stateCollect
	c.collectRem = width
	c.collectWidth = width
	c.collectAcc = 0
	c.collectIsFloat = false
}

// beginCollectFloat is beginCollect's counterpart for a major-7 float
// payload, so the COLLECT-completion dispatch in context.go knows to
// build an item.f16/f32/f64 instead of branching on the enclosing
// frame's opcode.
func (c *Context) beginCollectFloat(width int) {
	f := &c.frames[c.sp]
	f.state = stateCollect
	c.collectRem = width
	c.collectWidth = width
	c.collectAcc = 0
	c.collectIsFloat = true
}

// collectByte feeds one byte to the in-progress collector. It reports
// whether the collector has now assembled its full width.
func (c *Context) collectByte(b byte) bool {
	c.collectAcc = c.collectAcc<<8 | uint64(b)
	c.collectRem--
	return c.collectRem == 0
}

// widthForMinor maps an argument-length minor (24/25/26/27) to its byte
// width, per RFC 8949 §3 Table 1.
func widthForMinor(minor byte) int {
	return 1 << (minor - minorArg1)
}

// decodeHead splits a CBOR head byte into its major type and minor value.
func decodeHead(b byte) (major, minor byte) {
	return b & majMask, b & subMask
}

