package ref_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/refkit/ref"
)

func TestUnique_NewAndMutate(t *testing.T) {
	u := ref.NewUnique(int32(5))
	defer u.Release()

	require.Equal(t, int64(1), ref.UniqueCountOf(u))
	*u.Get() = 6
	assert.Equal(t, int32(6), *u.Get())
}

func TestUnique_Shareable(t *testing.T) {
	u := ref.NewUnique(int64(77))
	payload := u.Get()

	s := u.Shareable()
	defer s.Release()

	assert.Panics(t, func() { u.Get() }, "Shareable consumes the unique handle")
	assert.Equal(t, int64(1), ref.CountOf(s), "downgrade costs no count traffic")
	assert.Same(t, payload, s.Get(), "downgrade keeps the same block")
}

func TestUnique_TryUniqueSuccess(t *testing.T) {
	s := ref.New(9)
	u, ok := s.TryUnique()
	require.True(t, ok)
	defer u.Release()

	assert.Panics(t, func() { s.Get() }, "success consumes the shared handle")
	*u.Get() = 10
	assert.Equal(t, 10, *u.Get())
}

func TestUnique_TryUniqueFailure(t *testing.T) {
	s := ref.New(9)
	defer s.Release()
	c := s.Clone()
	defer c.Release()

	_, ok := s.TryUnique()
	require.False(t, ok, "a shared block must not upgrade")
	assert.Equal(t, 9, *s.Get(), "failed upgrade leaves the handle untouched")
	assert.Equal(t, int64(2), ref.CountOf(s))
}

func TestUnique_RoundTrip(t *testing.T) {
	u := ref.NewUnique(uint16(3))
	s := u.Shareable()

	u2, ok := s.TryUnique()
	require.True(t, ok, "a never-cloned downgrade upgrades right back")
	assert.Equal(t, uint16(3), *u2.Get())
	u2.Release()
}

func TestUnique_ShareableCountGuard(t *testing.T) {
	s := ref.New(4)
	defer s.Release()
	c := s.Clone()
	defer c.Release()

	bad := ref.MakeUniqueUnchecked(s)
	assert.PanicsWithValue(t, "ref: Unique handle to block with count 2", func() {
		bad.Shareable()
	}, "the guard names the observed count")
}

func TestUnique_ReleaseIdempotent(t *testing.T) {
	u := ref.NewUnique(1)
	u.Release()
	assert.NotPanics(t, func() { u.Release() })
}
