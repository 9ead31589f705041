// Package resource builds the in-memory room/resource model on top of the
// container package's chunk tree: archive loading (with the whole-file XOR
// and the DISK01.LEC bodge fixup), the master index's resource offset
// tables, and the save-path offset repair that keeps those tables pointing
// at the right place after a room's scripts have been re-encoded to a
// different size.
package resource

import (
	"bytes"

	"github.com/pkg/errors"

	"j5.nz/mi1rando/internal/binio"
)

// FOEntry is one row of an archive's file-offset table: the absolute
// offset, within that archive's decoded byte stream, of the room's LF
// chunk.
type FOEntry struct {
	RoomID byte
	Offset uint32
}

// ParseFO decodes an FO leaf chunk's body.
func ParseFO(body []byte) ([]FOEntry, error) {
	r := binio.NewReader(body)
	count, err := r.U8()
	if err != nil {
		return nil, errors.Wrap(err, "resource: FO count")
	}
	out := make([]FOEntry, count)
	for i := range out {
		out[i].RoomID, err = r.U8()
		if err != nil {
			return nil, errors.Wrapf(err, "resource: FO entry %d room id", i)
		}
		out[i].Offset, err = r.U32LE()
		if err != nil {
			return nil, errors.Wrapf(err, "resource: FO entry %d offset", i)
		}
	}
	return out, nil
}

// EmitFO re-serializes an FO leaf chunk's body.
func EmitFO(entries []FOEntry) []byte {
	w := binio.NewWriter()
	w.U8(byte(len(entries)))
	for _, e := range entries {
		w.U8(e.RoomID)
		w.U32LE(e.Offset)
	}
	return w.Bytes()
}

// GlobalIndexItem is one row of a 000.LFL resource lookup table (0S, 0N, or
// 0C): the room that owns the resource, and the byte position of its chunk
// among that room's LF children, counted from the first child (just after
// the LF's 2-byte room id).
type GlobalIndexItem struct {
	RoomID byte
	Offset uint32
}

// ParseGlobalIndex decodes a 0S/0N/0C leaf chunk's body.
func ParseGlobalIndex(body []byte) ([]GlobalIndexItem, error) {
	r := binio.NewReader(body)
	count, err := r.U16LE()
	if err != nil {
		return nil, errors.Wrap(err, "resource: global index count")
	}
	out := make([]GlobalIndexItem, count)
	for i := range out {
		out[i].RoomID, err = r.U8()
		if err != nil {
			return nil, errors.Wrapf(err, "resource: global index entry %d room id", i)
		}
		out[i].Offset, err = r.U32LE()
		if err != nil {
			return nil, errors.Wrapf(err, "resource: global index entry %d offset", i)
		}
	}
	return out, nil
}

// EmitGlobalIndex re-serializes a 0S/0N/0C leaf chunk's body.
func EmitGlobalIndex(items []GlobalIndexItem) []byte {
	w := binio.NewWriter()
	w.U16LE(uint16(len(items)))
	for _, it := range items {
		w.U8(it.RoomID)
		w.U32LE(it.Offset)
	}
	return w.Bytes()
}

// RoomName is one entry of the master index's room name table.
type RoomName struct {
	ID   byte
	Name string
}

// ParseRN decodes an RN leaf chunk's body: a run of (id byte, 9-byte
// NameTableXORKey-obfuscated name) pairs terminated by a bare 0x00 id byte.
func ParseRN(body []byte) ([]RoomName, error) {
	r := binio.NewReader(body)
	var out []RoomName
	for {
		id, err := r.U8()
		if err != nil {
			return nil, errors.Wrap(err, "resource: RN entry id")
		}
		if id == 0 {
			return out, nil
		}
		raw, err := r.Bytes(9)
		if err != nil {
			return nil, errors.Wrapf(err, "resource: RN entry %d name", id)
		}
		name := bytes.TrimRight(binio.XOR(raw, binio.NameTableXORKey), "\x00")
		out = append(out, RoomName{ID: id, Name: string(name)})
	}
}

// EmitRN re-serializes an RN leaf chunk's body.
func EmitRN(entries []RoomName) []byte {
	w := binio.NewWriter()
	for _, e := range entries {
		w.U8(e.ID)
		padded := make([]byte, 9)
		copy(padded, e.Name)
		w.Raw(binio.XOR(padded, binio.NameTableXORKey))
	}
	w.U8(0)
	return w.Bytes()
}
