package binio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U8(0x42)
	w.U16LE(0xBEEF)
	w.I16LE(-100)
	w.U32LE(0xDEADBEEF)
	w.CString([]byte("hello"))

	r := NewReader(w.Bytes())
	b, err := r.U8()
	require.NoError(t, err)
	require.EqualValues(t, 0x42, b)

	u16, err := r.U16LE()
	require.NoError(t, err)
	require.EqualValues(t, 0xBEEF, u16)

	i16, err := r.I16LE()
	require.NoError(t, err)
	require.EqualValues(t, -100, i16)

	u32, err := r.U32LE()
	require.NoError(t, err)
	require.EqualValues(t, 0xDEADBEEF, u32)

	s, err := r.CString()
	require.NoError(t, err)
	require.Equal(t, "hello", string(s))

	require.Equal(t, 0, r.Len())
}

func TestReaderPastEndErrors(t *testing.T) {
	r := NewReader([]byte{1, 2})
	_, err := r.U32LE()
	require.Error(t, err)
}

func TestXORIsInvolution(t *testing.T) {
	orig := []byte{0x00, 0x10, 0xFF, 0x42, 0x69}
	obfuscated := XOR(orig, ArchiveXORKey)
	require.NotEqual(t, orig, obfuscated)
	require.Equal(t, orig, XOR(obfuscated, ArchiveXORKey))
}

func TestFixDiskOneSoundChunk(t *testing.T) {
	buf := append([]byte("junkjunk"), diskOneLengthBug...)
	buf = append(buf, []byte("trailer")...)
	require.True(t, FixDiskOneSoundChunk(buf))

	idx := len("junkjunk")
	got := NewReader(buf[idx:])
	v, err := got.U32LE()
	require.NoError(t, err)
	require.EqualValues(t, diskOneLengthFix, v)
}

func TestFixDiskOneSoundChunkAbsent(t *testing.T) {
	require.False(t, FixDiskOneSoundChunk([]byte("nothing interesting here")))
}
