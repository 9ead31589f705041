package container

import (
	"testing"

	"github.com/stretchr/testify/require"

	"j5.nz/mi1rando/internal/binio"
)

func TestEmitParseRoundTrip(t *testing.T) {
	leaf := &Chunk{Tag: "SC", Body: []byte{1, 2, 3, 4, 5}}
	branch := &Chunk{Tag: "RO", Children: []*Chunk{leaf}}
	top := &Chunk{Tag: "LF", Children: []*Chunk{branch}}

	data := Emit(top)

	r := binio.NewReader(data)
	got, err := ParseChunk(r, BranchTags())
	require.NoError(t, err)
	require.Equal(t, 0, r.Len())

	require.Equal(t, "LF", got.Tag)
	require.Len(t, got.Children, 1)
	require.Equal(t, "RO", got.Children[0].Tag)
	require.Len(t, got.Children[0].Children, 1)
	require.Equal(t, "SC", got.Children[0].Children[0].Tag)
	require.Equal(t, leaf.Body, got.Children[0].Children[0].Body)
}

func TestParseSequenceFlat(t *testing.T) {
	a := &Chunk{Tag: "0S", Body: []byte{9, 9}}
	b := &Chunk{Tag: "0N", Body: []byte{1, 2, 3}}
	data := EmitSequence([]*Chunk{a, b})

	got, err := ParseSequence(data, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "0S", got[0].Tag)
	require.Equal(t, a.Body, got[0].Body)
	require.Equal(t, "0N", got[1].Tag)
	require.Equal(t, b.Body, got[1].Body)
}

func TestEmitRecomputesLength(t *testing.T) {
	// Mutate a leaf's body after the fact; Emit must reflect the new size,
	// never a stale precomputed length.
	leaf := &Chunk{Tag: "SO", Body: []byte{1, 2, 3}}
	top := &Chunk{Tag: "LF", Children: []*Chunk{leaf}}
	leaf.Body = append(leaf.Body, 4, 5, 6, 7)

	data := Emit(top)
	r := binio.NewReader(data)
	got, err := ParseChunk(r, BranchTags())
	require.NoError(t, err)
	require.Equal(t, leaf.Body, got.Children[0].Body)
}

func TestChunkFindHelpers(t *testing.T) {
	a := &Chunk{Tag: "SC", Body: []byte{1}}
	b := &Chunk{Tag: "SO", Body: []byte{2}}
	c := &Chunk{Tag: "SO", Body: []byte{3}}
	parent := &Chunk{Tag: "RO", Children: []*Chunk{a, b, c}}

	require.Same(t, a, parent.Find("SC"))
	require.Nil(t, parent.Find("CO"))
	require.Len(t, parent.FindAll("SO"), 2)
}

func TestLFRoomIDRoundTrip(t *testing.T) {
	sc := &Chunk{Tag: "SC", Body: []byte{1, 2, 3}}
	lf := &Chunk{Tag: "LF", RoomID: 12, Children: []*Chunk{sc}}

	data := Emit(lf)
	r := binio.NewReader(data)
	got, err := ParseChunk(r, BranchTags())
	require.NoError(t, err)
	require.Equal(t, uint16(12), got.RoomID)
	require.Len(t, got.Children, 1)
	require.Equal(t, "SC", got.Children[0].Tag)
}

func TestOffsetOfMatchesEmitLayout(t *testing.T) {
	leafA := &Chunk{Tag: "SC", Body: []byte{1, 2, 3}}
	leafB := &Chunk{Tag: "SO", Body: []byte{4, 5}}
	ro := &Chunk{Tag: "RO", Children: []*Chunk{leafA}}
	top := []*Chunk{ro, leafB}

	data := EmitSequence(top)

	require.Equal(t, 0, OffsetOf(top, 0))
	require.Equal(t, Size(ro), OffsetOf(top, 1))

	r := binio.NewReader(data[OffsetOf(top, 1):])
	got, err := ParseChunk(r, BranchTags())
	require.NoError(t, err)
	require.Equal(t, "SO", got.Tag)
	require.Equal(t, leafB.Body, got.Body)
}

func TestParseChunkRejectsTruncatedBody(t *testing.T) {
	w := binio.NewWriter()
	w.U32LE(100) // claims a 94-byte body that isn't present
	w.Raw([]byte("SC"))
	w.Raw([]byte{1, 2, 3})

	r := binio.NewReader(w.Bytes())
	_, err := ParseChunk(r, BranchTags())
	require.Error(t, err)
}
