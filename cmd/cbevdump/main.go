// Command cbevdump feeds a CBOR document through cbev.Context in
// caller-chosen chunk sizes and logs every event it observes, optionally
// highlighting events whose dotted path matches one of the -match
// patterns and interpreting well-known tag numbers via tagreg.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gocbor/cbev"
	"github.com/gocbor/cbev/ieee754"
	"github.com/gocbor/cbev/tagreg"
)

type matchFlags []string

func (m *matchFlags) String() string { return fmt.Sprint([]string(*m)) }
func (m *matchFlags) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin))
}

func run(args []string, stdin io.Reader) int {
	fs := flag.NewFlagSet("cbevdump", flag.ContinueOnError)
	chunkSize := fs.Int("chunk", 4096, "bytes read per Feed call")
	file := fs.String("file", "", "CBOR file to read (default: stdin)")
	var matches matchFlags
	fs.Var(&matches, "match", "dotted-path glob to highlight (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	in := stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			logger.Error("open input", "file", *file, "err", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	tags := tagreg.New()
	registerWellKnownTags(tags, logger)

	var activeTag uint64
	var tagPending bool

	cb := func(c *cbev.Context, ev cbev.Event) error {
		if c.PathMatched() {
			logger.Info("match", "event", ev.String(), "path", c.Path())
		}
		switch ev {
		case cbev.EventTagStart:
			activeTag, tagPending = c.Tag(), true
			if h, ok := tags.Lookup(activeTag); ok {
				if err := h(tagAdapter{c}, activeTag); err != nil {
					logger.Warn("tag handler", "tag", activeTag, "err", err)
				}
			}
		case cbev.EventUint:
			logger.Debug("uint", "path", c.Path(), "value", c.Uint64())
		case cbev.EventInt:
			logger.Debug("int", "path", c.Path(), "value", c.Int64())
		case cbev.EventFloat16:
			logger.Debug("float16", "path", c.Path(), "value", ieee754.ToFloat64(c.Float16Bits()))
		case cbev.EventFloat32:
			logger.Debug("float32", "path", c.Path(), "value", c.Float32())
		case cbev.EventFloat64:
			logger.Debug("float64", "path", c.Path(), "value", c.Float64())
		case cbev.EventStrStart, cbev.EventStrChunk, cbev.EventStrEnd,
			cbev.EventBlobStart, cbev.EventBlobChunk, cbev.EventBlobEnd:
			logger.Debug("chunk", "event", ev.String(), "path", c.Path(), "len", len(c.Chunk()))
		default:
			logger.Debug("event", "event", ev.String(), "path", c.Path())
		}
		if tagPending && ev != cbev.EventTagStart {
			tagPending = false
		}
		return nil
	}

	ctx := cbev.NewContext(cb, nil, []string(matches))
	defer ctx.Destruct()

	buf := make([]byte, *chunkSize)
	for {
		n, readErr := in.Read(buf)
		if n > 0 {
			if err := ctx.Feed(buf[:n]); err != nil && !errors.Is(err, cbev.ErrContinue) {
				logger.Error("parse failed", "err", err)
				return 1
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			logger.Error("read input", "err", readErr)
			return 1
		}
	}

	logger.Info("done")
	return 0
}

// tagAdapter satisfies tagreg.Context with a *cbev.Context.
type tagAdapter struct{ c *cbev.Context }

func (a tagAdapter) Path() string      { return a.c.Path() }
func (a tagAdapter) PathMatched() bool { return a.c.PathMatched() }
func (a tagAdapter) Tag() uint64       { return a.c.Tag() }

func registerWellKnownTags(tags tagreg.Registry, logger *slog.Logger) {
	tags.Register(tagreg.TagDateTimeString, func(ctx tagreg.Context, tag uint64) error {
		logger.Info("tag", "tag", tag, "meaning", "date/time string")
		return nil
	})
	tags.Register(tagreg.TagEpochTime, func(ctx tagreg.Context, tag uint64) error {
		logger.Info("tag", "tag", tag, "meaning", "epoch-based date/time")
		return nil
	})
	tags.Register(tagreg.TagPositiveBignum, func(ctx tagreg.Context, tag uint64) error {
		logger.Info("tag", "tag", tag, "meaning", "positive bignum")
		return nil
	})
	tags.Register(tagreg.TagNegativeBignum, func(ctx tagreg.Context, tag uint64) error {
		logger.Info("tag", "tag", tag, "meaning", "negative bignum")
		return nil
	})
}
