package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumSet(t *testing.T) {
	e := NewEnumSet(2)
	i, added := e.Add("B")
	assert.Equal(t, 0, i)
	assert.True(t, added)
	e.Add("A")
	i, added = e.Add("B")
	assert.Equal(t, 0, i)
	assert.False(t, added)

	assert.Equal(t, 2, e.Len())
	assert.Equal(t, "A", e.ValueOf(1))
	_, exists := e.IndexOf("C")
	assert.False(t, exists)
	assert.Panics(t, func() { e.ValueOf(2) })

	e.Frozen = true
	assert.Panics(t, func() { e.Add("C") })
}

func TestAffixes(t *testing.T) {
	assert.Equal(t, "日本", Prefix("日本語", 2))
	assert.Equal(t, "ab", Prefix("ab", 3))
	assert.Equal(t, "lo", Suffix("hello", 2))
	assert.Equal(t, "", Suffix("", 2))
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "fttffft", Signature("Dog"))
	assert.Equal(t, "tffffff", Signature("42"))
}

func TestFiles(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "data")
	assert.False(t, Exists(filename))
	require.NoError(t, os.WriteFile(filename, []byte("abc"), 0o644))
	assert.True(t, Exists(filename))

	sum, err := MD5File(filename)
	require.NoError(t, err)
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", sum)
}

func TestRangeInt(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, RangeInt(3))
	assert.Empty(t, RangeInt(0))
}
