// Package binio provides the little-endian integer codec and XOR
// obfuscation transform shared by every layer of the archive format.
package binio

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Reader wraps a byte slice with a cursor, giving short, panic-free
// accessors for the fixed-width fields the container and bytecode formats
// are built from.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current byte offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// Seek repositions the cursor to an absolute offset.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return errors.Errorf("binio: seek %d out of range [0,%d]", pos, len(r.buf))
	}
	r.pos = pos
	return nil
}

func (r *Reader) require(n int) error {
	if r.pos+n > len(r.buf) {
		return errors.Errorf("binio: read past end at offset %d (want %d bytes, have %d)", r.pos, n, len(r.buf)-r.pos)
	}
	return nil
}

// U8 reads a single unsigned byte.
func (r *Reader) U8() (byte, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// U16LE reads a little-endian uint16.
func (r *Reader) U16LE() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// I16LE reads a little-endian signed int16.
func (r *Reader) I16LE() (int16, error) {
	v, err := r.U16LE()
	return int16(v), err
}

// U32LE reads a little-endian uint32.
func (r *Reader) U32LE() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// Bytes reads n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// CString reads a NUL-terminated byte string, consuming the terminator.
func (r *Reader) CString() ([]byte, error) {
	idx := bytes.IndexByte(r.buf[r.pos:], 0)
	if idx < 0 {
		return nil, errors.Errorf("binio: unterminated string at offset %d", r.pos)
	}
	v := r.buf[r.pos : r.pos+idx]
	r.pos += idx + 1
	return v, nil
}

// Writer accumulates bytes for the serializer half of the codec.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// U8 appends a single byte.
func (w *Writer) U8(v byte) { w.buf = append(w.buf, v) }

// U16LE appends a little-endian uint16.
func (w *Writer) U16LE(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// I16LE appends a little-endian signed int16.
func (w *Writer) I16LE(v int16) { w.U16LE(uint16(v)) }

// U32LE appends a little-endian uint32.
func (w *Writer) U32LE(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// Raw appends raw bytes verbatim.
func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// CString appends s followed by a NUL terminator.
func (w *Writer) CString(s []byte) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// ArchiveXORKey obfuscates whole DISKnn.LEC archive files.
const ArchiveXORKey = 0x69

// NameTableXORKey obfuscates the 9-byte room-name entries embedded in the
// master index's RN chunk.
const NameTableXORKey = 0xFF

// XOR returns a copy of buf with every byte XORed against key. The 000.LFL
// master index container is stored unobfuscated at the file level; only
// its RN entries are individually XORed with NameTableXORKey.
func XOR(buf []byte, key byte) []byte {
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = b ^ key
	}
	return out
}

// diskOneLengthBug is the known bit-rot pattern in DISK01.LEC: an SO sound
// chunk whose stored length field was corrupted. It is searched for and
// repaired unconditionally on load of that one archive, and is a fatal
// decode error anywhere else.
var diskOneLengthBug = []byte("\x15\x82\x00\x00SO--")

const diskOneLengthFix = 0x8115

// FixDiskOneSoundChunk scans a decoded (de-obfuscated) DISK01.LEC buffer
// for the known corrupted SO chunk-length field and patches it in place.
// It is a no-op (returns false) if the pattern is not present, since not
// every extracted copy of the file carries the bug.
func FixDiskOneSoundChunk(buf []byte) bool {
	idx := bytes.Index(buf, diskOneLengthBug)
	if idx < 0 {
		return false
	}
	binary.LittleEndian.PutUint32(buf[idx:idx+4], diskOneLengthFix)
	return true
}
