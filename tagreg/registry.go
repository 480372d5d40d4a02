// Package tagreg is a small convenience layer on top of cbev: a registry
// mapping a CBOR tag number (RFC 8949 §3.4) to a Handler a host can look
// up once it has observed an EventTagStart and read cbev.Context.Tag.
//
// cbev itself never interprets tag semantics (spec.md's core is
// deliberately tag-number-agnostic; see cbev's own doc comment) — tagreg
// is where a host wires "tag 0 is an RFC 3339 string", "tag 2 is an
// unsigned bignum" and so on, without every host re-inventing its own
// dispatch table.
package tagreg

import (
	"encoding/binary"
	"hash/maphash"

	"github.com/aristanetworks/gomap"
)

// Handler reacts to a tag whose content is about to be parsed. ctx is
// positioned right after EventTagStart fired: the handler may read
// ctx.Path, ctx.PathMatched and ctx.Tag. The Context interface does not
// expose EnterSubparse, so a handler cannot take over dispatch of the
// tag's enclosed item through ctx.
type Handler func(ctx Context, tag uint64) error

// Context is the subset of *cbev.Context a Handler needs. Kept as an
// interface (rather than importing cbev directly into the handler
// signature) so tagreg has no hard dependency cycle back onto the
// package it augments; cbev's *Context already satisfies it.
type Context interface {
	Path() string
	PathMatched() bool
	Tag() uint64
}

// Registry maps tag numbers to Handlers. Built on gomap.Map, the same
// open-addressed generic map kisielk/og-rek's Dict type uses for its
// Python-keyed dictionaries, here specialized to a trivial uint64 key.
// The zero Registry is not usable; construct one with New.
type Registry struct {
	m *gomap.Map[uint64, Handler]
}

// New returns an empty Registry.
func New() Registry {
	return NewWithSizeHint(0)
}

// NewWithSizeHint returns an empty Registry with preallocated space for
// size entries.
func NewWithSizeHint(size int) Registry {
	return Registry{m: gomap.NewHint[uint64, Handler](size, equalTag, hashTag)}
}

// Register associates tag with h, replacing any previous handler for the
// same tag number.
func (r Registry) Register(tag uint64, h Handler) {
	r.m.Set(tag, h)
}

// Lookup returns the handler registered for tag, if any.
func (r Registry) Lookup(tag uint64) (h Handler, ok bool) {
	return r.m.Get(tag)
}

// Dispatch looks up tag and invokes its handler, if one is registered. It
// reports false when no handler was found, so the caller can fall back to
// its own default behavior (e.g. treating the tag as transparent and just
// parsing its content normally, which is always a CBOR item's encoding
// regardless of whether any host understands the tag wrapping it).
func (r Registry) Dispatch(ctx Context, tag uint64) (called bool, err error) {
	h, ok := r.Lookup(tag)
	if !ok {
		return false, nil
	}
	return true, h(ctx, tag)
}

// Len returns the number of registered tags.
func (r Registry) Len() int {
	return r.m.Len()
}

// ---- hash/equal pair, adapted from og-rek's dict.go hash_Uint ----

func equalTag(a, b uint64) bool {
	return a == b
}

func hashTag(seed maphash.Seed, x uint64) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], x)
	h.Write(b[:])
	return h.Sum64()
}

// Well-known tag numbers (RFC 8949 §3.4) a host commonly wants to
// register handlers for.
const (
	TagDateTimeString uint64 = 0 // standard date/time string
	TagEpochTime      uint64 = 1 // epoch-based date/time (int or float)
	TagPositiveBignum uint64 = 2 // unsigned bignum, content is a byte string
	TagNegativeBignum uint64 = 3 // negative bignum, content is a byte string
)
