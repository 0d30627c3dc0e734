package codec

import (
	"testing"

	"github.com/kostaleonard/leocoin/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderBigEndian(t *testing.T) {
	w := NewWriter(0)
	w.Uint16(0x0102)
	w.Uint32(0x03040506)
	w.Uint64(0x0708090a0b0c0d0e)
	w.Bytes([]byte{0xff})

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 0xff}, w.Result())

	r := NewReader(w.Result())
	v16, err := r.Uint16()
	require.NoError(t, err)
	v32, err := r.Uint32()
	require.NoError(t, err)
	v64, err := r.Uint64()
	require.NoError(t, err)
	tail, err := r.Bytes(1)
	require.NoError(t, err)

	assert.Equal(t, uint16(0x0102), v16)
	assert.Equal(t, uint32(0x03040506), v32)
	assert.Equal(t, uint64(0x0708090a0b0c0d0e), v64)
	assert.Equal(t, []byte{0xff}, tail)
	assert.Zero(t, r.Remaining())
}

func TestReaderShortInput(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, err := r.Uint64()
	assert.ErrorIs(t, err, errors.ErrBufferTooSmall)
	assert.Equal(t, 0, r.Offset(), "failed read must not advance")

	var dst [4]byte
	assert.ErrorIs(t, r.Fixed(dst[:]), errors.ErrBufferTooSmall)
}

func TestCountBoundedByInput(t *testing.T) {
	w := NewWriter(0)
	w.Uint64(1 << 40)
	w.Bytes(make([]byte, 16))

	_, err := NewReader(w.Result()).Count(8)
	assert.ErrorIs(t, err, errors.ErrBufferTooSmall)

	w = NewWriter(0)
	w.Uint64(2)
	w.Bytes(make([]byte, 16))
	n, err := NewReader(w.Result()).Count(8)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
