// Package container implements the recursive length-prefixed chunk format
// shared by the DISKnn.LEC resource archives and the 000.LFL master index:
// a 4-byte little-endian length (inclusive of the length field and the
// 2-byte tag that follow it), a 2-byte ASCII tag, then the chunk body.
//
// Branch tags (LEC, LE, LF, RO) hold a further sequence of chunks as their
// body; every other tag is treated as an opaque leaf whose body is
// interpreted by the resource and scumm packages. An LF's body additionally
// carries the room's own 2-byte id ahead of its nested sequence (see
// Chunk.RoomID). Lengths are never precomputed: Emit always recomputes them
// bottom-up from the bytes its children actually produce.
package container

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"j5.nz/mi1rando/internal/binio"
)

// Chunk is one node of the parsed tree. For a branch tag, Children holds
// the parsed sub-chunks and Body is nil; for a leaf tag, Body holds the
// raw, still-undecoded payload and Children is nil.
//
// RoomID is only meaningful on an "LF" chunk: unlike every other branch
// tag, an LF's body carries the room's own 2-byte id before its nested
// chunk sequence starts, rather than being a pure back-to-back sequence.
type Chunk struct {
	Tag      string
	RoomID   uint16
	Body     []byte
	Children []*Chunk
}

// BranchTags is the set of tags whose body is itself a sequence of
// chunks, per the archive grammar: LEC -> LE -> {FO|LF} -> {RO|SC|SO|CO}
// -> {LS|OC|EN|EX}. FO is a leaf here (its body is a fixed-shape table,
// not a nested chunk sequence) even though it sits at the same grammar
// level as LF.
func BranchTags() map[string]bool {
	return map[string]bool{
		"LEC": true,
		"LE":  true,
		"LF":  true,
		"RO":  true,
	}
}

// IsLeaf reports whether c has no parsed children.
func (c *Chunk) IsLeaf() bool { return c.Children == nil }

// Find returns the first direct child with the given tag, or nil.
func (c *Chunk) Find(tag string) *Chunk {
	for _, ch := range c.Children {
		if ch.Tag == tag {
			return ch
		}
	}
	return nil
}

// FindAll returns every direct child with the given tag.
func (c *Chunk) FindAll(tag string) []*Chunk {
	var out []*Chunk
	for _, ch := range c.Children {
		if ch.Tag == tag {
			out = append(out, ch)
		}
	}
	return out
}

// ParseSequence parses buf as a flat, back-to-back sequence of chunks
// (used both for a branch chunk's body and for the unwrapped 000.LFL
// master index file).
func ParseSequence(buf []byte, branch map[string]bool) ([]*Chunk, error) {
	r := binio.NewReader(buf)
	var out []*Chunk
	for r.Len() > 0 {
		c, err := ParseChunk(r, branch)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseChunk parses a single chunk starting at r's current position,
// recursing into its body if its tag is a branch tag.
func ParseChunk(r *binio.Reader, branch map[string]bool) (*Chunk, error) {
	start := r.Pos()
	length, err := r.U32LE()
	if err != nil {
		return nil, errors.Wrapf(err, "container: chunk length at offset %d", start)
	}
	if length < 6 {
		return nil, errors.Errorf("container: implausible chunk length %d at offset %d", length, start)
	}
	tagBytes, err := r.Bytes(2)
	if err != nil {
		return nil, errors.Wrapf(err, "container: chunk tag at offset %d", start+4)
	}
	tag := string(tagBytes)
	bodyLen := int(length) - 6
	body, err := r.Bytes(bodyLen)
	if err != nil {
		return nil, errors.Wrapf(err, "container: chunk %q body at offset %d (want %d bytes)", tag, start+6, bodyLen)
	}

	c := &Chunk{Tag: tag}
	if branch[tag] {
		seq := body
		if tag == "LF" {
			if len(body) < 2 {
				return nil, errors.Errorf("container: LF chunk at offset %d too short for room id", start)
			}
			c.RoomID = binary.LittleEndian.Uint16(body)
			seq = body[2:]
		}
		children, err := ParseSequence(seq, branch)
		if err != nil {
			return nil, errors.Wrapf(err, "container: chunk %q children at offset %d", tag, start+6)
		}
		c.Children = children
	} else {
		c.Body = body
	}
	return c, nil
}

// Size returns the number of bytes Emit(c) would produce, without actually
// serializing it.
func Size(c *Chunk) int {
	if c.Children != nil {
		total := 0
		for _, ch := range c.Children {
			total += Size(ch)
		}
		if c.Tag == "LF" {
			total += 2
		}
		return total + 6
	}
	return len(c.Body) + 6
}

// OffsetOf returns the byte offset of siblings[index], relative to the
// start of the sequence siblings belongs to, by summing the emitted size of
// every preceding sibling. The resource package uses this to keep the
// master index's and the per-archive file-offset table's pointers correct
// after a sibling's size changes, without needing to re-serialize anything
// to measure it.
func OffsetOf(siblings []*Chunk, index int) int {
	pos := 0
	for _, c := range siblings[:index] {
		pos += Size(c)
	}
	return pos
}

// EmitSequence serializes a flat sequence of chunks back to back.
func EmitSequence(chunks []*Chunk) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, Emit(c)...)
	}
	return out
}

// Emit serializes a single chunk, recomputing its length field from the
// actual bytes its body (or, for a branch chunk, its re-serialized
// children) occupies.
func Emit(c *Chunk) []byte {
	var body []byte
	if c.Children != nil {
		body = EmitSequence(c.Children)
		if c.Tag == "LF" {
			idBytes := make([]byte, 2)
			binary.LittleEndian.PutUint16(idBytes, c.RoomID)
			body = append(idBytes, body...)
		}
	} else {
		body = c.Body
	}

	w := binio.NewWriter()
	w.U32LE(uint32(len(body) + 6))
	w.Raw([]byte(c.Tag))
	w.Raw(body)
	return w.Bytes()
}
