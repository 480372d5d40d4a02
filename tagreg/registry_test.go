package tagreg_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gocbor/cbev/tagreg"
)

type fakeContext struct {
	path    string
	matched bool
	tag     uint64
}

func (f fakeContext) Path() string      { return f.path }
func (f fakeContext) PathMatched() bool { return f.matched }
func (f fakeContext) Tag() uint64       { return f.tag }

func TestRegistryLookupMiss(t *testing.T) {
	r := tagreg.New()
	_, ok := r.Lookup(tagreg.TagEpochTime)
	require.False(t, ok)
	require.Equal(t, 0, r.Len())
}

func TestRegistryRegisterAndDispatch(t *testing.T) {
	r := tagreg.New()

	var seen uint64
	r.Register(tagreg.TagPositiveBignum, func(ctx tagreg.Context, tag uint64) error {
		seen = tag
		require.True(t, ctx.PathMatched())
		return nil
	})
	require.Equal(t, 1, r.Len())

	called, err := r.Dispatch(fakeContext{matched: true}, tagreg.TagPositiveBignum)
	require.NoError(t, err)
	require.True(t, called)
	require.Equal(t, tagreg.TagPositiveBignum, seen)
}

func TestRegistryDispatchNoHandler(t *testing.T) {
	r := tagreg.New()
	called, err := r.Dispatch(fakeContext{}, 999)
	require.NoError(t, err)
	require.False(t, called)
}

func TestRegistryHandlerError(t *testing.T) {
	r := tagreg.New()
	boom := errors.New("boom")
	r.Register(0, func(ctx tagreg.Context, tag uint64) error { return boom })

	called, err := r.Dispatch(fakeContext{}, 0)
	require.True(t, called)
	require.ErrorIs(t, err, boom)
}

func TestRegistryReplaceHandler(t *testing.T) {
	r := tagreg.New()
	r.Register(5, func(ctx tagreg.Context, tag uint64) error { return nil })
	r.Register(5, func(ctx tagreg.Context, tag uint64) error { return errors.New("second") })
	require.Equal(t, 1, r.Len())

	_, err := r.Dispatch(fakeContext{}, 5)
	require.EqualError(t, err, "second")
}
