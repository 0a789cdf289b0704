package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC32Validator_RegisteredAndSigns(t *testing.T) {
	factory, err := GetFactory("crc32")
	require.NoError(t, err)
	v := factory()
	assert.Equal(t, uint16(0x0002), v.AlgID())

	sum, err := v.Sign([]byte("hello"))
	require.NoError(t, err)
	assert.Len(t, sum, 4)
}

func TestSHA256Validator_RegisteredAndSigns(t *testing.T) {
	factory, err := GetFactory("sha256")
	require.NoError(t, err)
	v := factory()
	sum, err := v.Sign([]byte("hello"))
	require.NoError(t, err)
	assert.Len(t, sum, 32)
}

func TestNewHMACSHA256_DifferentKeysDifferentDigests(t *testing.T) {
	a := NewHMACSHA256([]byte("key-a"))
	b := NewHMACSHA256([]byte("key-b"))

	sumA, err := a.Sign([]byte("span"))
	require.NoError(t, err)
	sumB, err := b.Sign([]byte("span"))
	require.NoError(t, err)
	assert.NotEqual(t, sumA, sumB)
}

func TestGetFactory_NotFound(t *testing.T) {
	_, err := GetFactory("does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_IsSortedAndContainsBuiltins(t *testing.T) {
	names := List()
	assert.Contains(t, names, "crc32")
	assert.Contains(t, names, "sha256")
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}

func TestRegister_PanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		Register("crc32", func() Validator { return crc32Validator{} })
	})
}
