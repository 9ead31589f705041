package resource

import (
	"testing"

	"github.com/stretchr/testify/require"

	"j5.nz/mi1rando/internal/container"
	"j5.nz/mi1rando/internal/scumm"
)

// buildRepairScenario builds a two-room game: room 1 has two global scripts
// straddling its RO chunk (SC0, RO, SC1), so that growing something inside
// RO shifts SC1's position — exercising the 0S table repair — and room 2
// shares the same LE, so growing room 1's LF shifts room 2's FO entry too.
func buildRepairScenario(t *testing.T) *Game {
	t.Helper()

	stop := scumm.Instr{Name: "stopObjectCode"}
	stopBytes, err := scumm.Encode(stop)
	require.NoError(t, err)

	sc0 := &container.Chunk{Tag: "SC", Body: append([]byte(nil), stopBytes...)}
	sc1 := &container.Chunk{Tag: "SC", Body: append([]byte(nil), stopBytes...)}
	localLS := &container.Chunk{Tag: "LS", Body: append([]byte{5}, stopBytes...)}
	ro := &container.Chunk{Tag: "RO", Children: []*container.Chunk{localLS}}

	lf1 := &container.Chunk{Tag: "LF", RoomID: 1, Children: []*container.Chunk{sc0, ro, sc1}}
	lf2 := &container.Chunk{Tag: "LF", RoomID: 2, Children: []*container.Chunk{
		{Tag: "SC", Body: append([]byte(nil), stopBytes...)},
	}}

	fo := &container.Chunk{Tag: "FO", Body: EmitFO([]FOEntry{{RoomID: 1}, {RoomID: 2}})}
	le := &container.Chunk{Tag: "LE", Children: []*container.Chunk{fo, lf1, lf2}}
	fo.Body = EmitFO([]FOEntry{
		{RoomID: 1, Offset: uint32(container.OffsetOf(le.Children, 1) + 6)},
		{RoomID: 2, Offset: uint32(container.OffsetOf(le.Children, 2) + 6)},
	})

	rn := &container.Chunk{Tag: "RN"}
	rn.Body = EmitRN([]RoomName{{ID: 1, Name: "alley"}, {ID: 2, Name: "pub"}})

	zeroS := &container.Chunk{Tag: "0S"}
	zeroS.Body = EmitGlobalIndex([]GlobalIndexItem{
		{RoomID: 1, Offset: uint32(container.OffsetOf(lf1.Children, 0))},
		{RoomID: 1, Offset: uint32(container.OffsetOf(lf1.Children, 2))},
	})
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

func TestSaveRepairsOffsetTablesAfterGrowth(t *testing.T) {
	g := buildRepairScenario(t)

	// Grow room 1's local script by one instruction, which grows its LS
	// chunk, which grows its enclosing RO chunk, which shifts SC1 (the
	// global script sitting after RO) and room 2's LF (sitting after room
	// 1's LF in the same LE).
	local := g.Rooms[1].Locals[5]
	local.Instrs = append(local.Instrs, scumm.Instr{Name: "stopObjectCode"})
	local.Offsets = append(local.Offsets, 1)

	written := map[string][]byte{}
	err := g.Save(func(name string, data []byte) error {
		written[name] = data
		return nil
	})
	require.NoError(t, err)

	require.Contains(t, written, "000.LFL")
	require.Contains(t, written, "DISK01.LEC")

	reloadedIndex, err := LoadMasterIndex(written["000.LFL"])
	require.NoError(t, err)
	reloadedArchive, err := LoadArchive("DISK01.LEC", written["DISK01.LEC"])
	require.NoError(t, err)

	g2 := &Game{
		Archives: map[string]*Archive{
			"DISK01.LEC": reloadedArchive,
			"DISK02.LEC": {Name: "DISK02.LEC"},
			"DISK03.LEC": {Name: "DISK03.LEC"},
			"DISK04.LEC": {Name: "DISK04.LEC"},
		},
		Index: reloadedIndex,
	}
	rooms, err := buildRooms(g2)
	require.NoError(t, err)

	// Both global scripts and both rooms must still resolve correctly
	// against the repaired tables, even though room 1's LF grew by a byte.
	require.Contains(t, rooms, 1)
	require.Contains(t, rooms, 2)
	require.Len(t, rooms[1].Globals, 2)
	require.Len(t, rooms[1].Locals[5].Instrs, 2)
}
