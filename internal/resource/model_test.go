package resource

import (
	"testing"

	"github.com/stretchr/testify/require"

	"j5.nz/mi1rando/internal/container"
	"j5.nz/mi1rando/internal/scumm"
)

// buildSyntheticGame constructs a minimal but structurally complete one-room
// game: a single DISK01.LEC archive holding room 1 (a global script, a local
// script, one object with one verb, and entry/exit scripts) plus a 000.LFL
// master index whose RN/0S/0N/0C tables correctly reference it.
func buildSyntheticGame(t *testing.T) *Game {
	t.Helper()

	stop := scumm.Instr{Name: "stopObjectCode"}
	stopBytes, err := scumm.Encode(stop)
	require.NoError(t, err)

	globalSC := &container.Chunk{Tag: "SC", Body: append([]byte(nil), stopBytes...)}
	localLS := &container.Chunk{Tag: "LS", Body: append([]byte{5}, stopBytes...)}

	obj := &Object{
		ID:      100,
		Width:   1,
		Height:  1,
		Padding: make([]byte, 6),
		Name:    "door",
	}
	obj.Events = []ObjectEvent{{VerbID: 10}}
	obj.Events[0].CodeOffset = uint16(objectDataOffset(obj))
	obj.Data = append([]byte(nil), stopBytes...)
	objOC := &container.Chunk{Tag: "OC", Body: EmitObject(obj)}

	enChunk := &container.Chunk{Tag: "EN", Body: append([]byte(nil), stopBytes...)}
	exChunk := &container.Chunk{Tag: "EX", Body: append([]byte(nil), stopBytes...)}

	ro := &container.Chunk{Tag: "RO", Children: []*container.Chunk{localLS, objOC, enChunk, exChunk}}
	lf := &container.Chunk{Tag: "LF", RoomID: 1, Children: []*container.Chunk{globalSC, ro}}

	// FO's own encoded size depends only on its entry count, not the offset
	// values inside it, so a placeholder offset of 0 gives fo its real
	// final size up front; the real offset is filled in once le's children
	// (and therefore lf's position within them) are known.
	fo := &container.Chunk{Tag: "FO", Body: EmitFO([]FOEntry{{RoomID: 1, Offset: 0}})}
	le := &container.Chunk{Tag: "LE", Children: []*container.Chunk{fo, lf}}
	fo.Body = EmitFO([]FOEntry{{RoomID: 1, Offset: uint32(container.OffsetOf(le.Children, 1) + 6)}})

	rn := &container.Chunk{Tag: "RN"}
	rn.Body = EmitRN([]RoomName{{ID: 1, Name: "alley"}})

	zeroS := &container.Chunk{Tag: "0S"}
	zeroS.Body = EmitGlobalIndex([]GlobalIndexItem{{RoomID: 1, Offset: uint32(container.OffsetOf(lf.Children, 0))}})
	zeroN := &container.Chunk{Tag: "0N"}
	zeroN.Body = EmitGlobalIndex(nil)
	zeroC := &container.Chunk{Tag: "0C"}
	zeroC.Body = EmitGlobalIndex(nil)

	g := &Game{
		Archives: map[string]*Archive{
			"DISK01.LEC": {Name: "DISK01.LEC", Root: []*container.Chunk{le}},
			"DISK02.LEC": {Name: "DISK02.LEC"},
			"DISK03.LEC": {Name: "DISK03.LEC"},
			"DISK04.LEC": {Name: "DISK04.LEC"},
		},
		Index: &MasterIndex{Root: []*container.Chunk{rn, zeroS, zeroN, zeroC}},
	}

	rooms, err := buildRooms(g)
	require.NoError(t, err)
	g.Rooms = rooms
	return g
}

func TestBuildRoomsResolvesRoom(t *testing.T) {
	g := buildSyntheticGame(t)

	room, ok := g.Rooms[1]
	require.True(t, ok)
	require.Equal(t, "alley", room.Name)
	require.Equal(t, "DISK01.LEC", room.Archive)

	require.Contains(t, room.Globals, 0)
	require.Equal(t, "stopObjectCode", room.Globals[0].Instrs[0].Name)

	require.Contains(t, room.Locals, 5)
	require.Equal(t, byte(5), room.Locals[5].ID)

	require.Contains(t, room.Objects, 100)
	verbInstrs := room.Objects[100].Verbs[10]
	require.Len(t, verbInstrs, 1)
	require.Equal(t, "stopObjectCode", verbInstrs[0].Name)

	require.NotNil(t, room.Entry)
	require.NotNil(t, room.Exit)
}
