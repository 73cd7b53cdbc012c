package ref_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/refkit/ref"
)

func TestStr_RoundTrip(t *testing.T) {
	s := ref.NewStr("registry")
	defer s.Release()

	require.Equal(t, 8, s.Len())
	assert.Equal(t, "registry", s.String())
	assert.Equal(t, []byte("registry"), s.Bytes())
	assert.True(t, s.IsUnique())
}

func TestStr_CloneShares(t *testing.T) {
	s := ref.NewStr("shared bytes")
	defer s.Release()

	c := s.Clone()
	assert.True(t, ref.StrPtrEqual(s, c))
	assert.Equal(t, int64(2), ref.StrCountOf(s))
	c.Release()
	assert.Equal(t, "shared bytes", s.String())
}

func TestStr_NonASCII(t *testing.T) {
	const v = "héllo, 世界"
	s := ref.NewStr(v)
	defer s.Release()

	assert.Equal(t, v, s.String())
	assert.Equal(t, len(v), s.Len(), "length is bytes, not runes")
}

func TestStr_Empty(t *testing.T) {
	s := ref.NewStr("")
	defer s.Release()

	assert.Zero(t, s.Len())
	assert.Equal(t, "", s.String())
}

func TestStr_DistinctBlocksNotPtrEqual(t *testing.T) {
	a := ref.NewStr("same")
	defer a.Release()
	b := ref.NewStr("same")
	defer b.Release()

	assert.False(t, ref.StrPtrEqual(a, b))
	assert.Equal(t, a.String(), b.String())
}
