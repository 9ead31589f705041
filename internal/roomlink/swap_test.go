package roomlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

func fourRoomGame() *resource.Game {
	mk := func(roomID, dest int) *resource.Room {
		return &resource.Room{
			ID: roomID,
			Objects: map[int]*resource.ObjectScript{
				1: {
					Verbs:       map[byte][]scumm.Instr{10: {{Name: "loadRoomWithEgo", Args: map[string]any{"room": byte(dest)}}}},
					VerbOffsets: map[byte][]int{10: {0}},
				},
			},
			Locals: map[int]*resource.LocalScript{},
		}
	}
	return &resource.Game{Rooms: map[int]*resource.Room{
		33: mk(33, 59),
		59: mk(59, 33),
		85: mk(85, 36),
		36: mk(36, 85),
	}}
}

func roomDest(t *testing.T, room *resource.Room) byte {
	t.Helper()
	instrs := room.Objects[1].Verbs[10]
	require.Len(t, instrs, 1)
	dest, ok := instrs[0].Args["room"].(byte)
	require.True(t, ok)
	return dest
}

func TestSwapRoomLinksCrossesLinkPairs(t *testing.T) {
	game := fourRoomGame()
	require.NoError(t, SwapRoomLinks(game, [2]int{33, 59}, [2]int{85, 36}, nil))

	assert.Equal(t, byte(36), roomDest(t, game.Rooms[33]))
	assert.Equal(t, byte(85), roomDest(t, game.Rooms[59]))
	assert.Equal(t, byte(59), roomDest(t, game.Rooms[85]))
	assert.Equal(t, byte(33), roomDest(t, game.Rooms[36]))
}

func TestSwapRoomLinksHalfOnlyRewiresOneConnection(t *testing.T) {
	game := fourRoomGame()
	require.NoError(t, SwapRoomLinksHalf(game, [2]int{33, 59}, [2]int{85, 36}, nil))

	assert.Equal(t, byte(36), roomDest(t, game.Rooms[33]))
	assert.Equal(t, byte(33), roomDest(t, game.Rooms[59]), "linkSrc's reverse site must stay untouched in half mode")
	assert.Equal(t, byte(33), roomDest(t, game.Rooms[36]), "linkDest's reverse site must lead back to linkSrc[0] in half mode")
}

func TestGetSnippetSynthesizesCameraFollowForPutActorInRoom(t *testing.T) {
	room := &resource.Room{
		ID: 33,
		Locals: map[int]*resource.LocalScript{
			5: {
				ID: 5,
				Instrs: []scumm.Instr{
					{Name: "putActorInRoom", Args: map[string]any{"act": scumm.VarRef{ID: varEgo}, "room": byte(59)}},
					{Name: "putActor", Args: map[string]any{"x": byte(10), "y": byte(20)}},
				},
				Offsets: []int{0, 5},
			},
		},
	}
	link := RoomLink{RoomSrc: 33, RoomDest: 59, Offset: 0, Op: "putActorInRoom",
		Location: ScriptLocation{Type: "local", LocalID: 5}}

	snippet, err := getSnippet(room, link)
	require.NoError(t, err)
	require.Len(t, snippet, 3)
	assert.Equal(t, "putActorInRoom", snippet[0].Name)
	assert.Equal(t, "putActor", snippet[1].Name)
	assert.Equal(t, "actorFollowCamera", snippet[2].Name)
	act, ok := snippet[2].Args["act"].(scumm.VarRef)
	require.True(t, ok)
	assert.Equal(t, uint16(varEgo), act.ID)
}

func TestSpliceInstrsAssignsStrictlyDecreasingSyntheticOffsets(t *testing.T) {
	instrs := []scumm.Instr{
		{Name: "a"}, {Name: "b"}, {Name: "c"},
	}
	offsets := []int{0, 4, 8}
	replacement := []scumm.Instr{{Name: "x"}, {Name: "y"}}
	synth := 0

	newInstrs, newOffsets := spliceInstrs(instrs, offsets, 1, 1, replacement, &synth)
	require.Len(t, newInstrs, 4)
	assert.Equal(t, []string{"a", "x", "y", "c"}, []string{newInstrs[0].Name, newInstrs[1].Name, newInstrs[2].Name, newInstrs[3].Name})
	assert.Equal(t, 0, newOffsets[0])
	assert.Equal(t, 8, newOffsets[3])
	assert.Less(t, newOffsets[2], 0)
	assert.Less(t, newOffsets[1], newOffsets[0])
	assert.NotEqual(t, newOffsets[1], newOffsets[2])
}
