package roomlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

func twoRoomGame() *resource.Game {
	roomA := &resource.Room{
		ID: 33,
		Objects: map[int]*resource.ObjectScript{
			1: {
				Verbs: map[byte][]scumm.Instr{
					10: {
						{Name: "loadRoomWithEgo", Args: map[string]any{"room": byte(59)}},
					},
				},
				VerbOffsets: map[byte][]int{10: {0}},
			},
		},
		Locals: map[int]*resource.LocalScript{},
	}
	roomB := &resource.Room{
		ID: 59,
		Objects: map[int]*resource.ObjectScript{
			2: {
				Verbs: map[byte][]scumm.Instr{
					10: {
						{Name: "loadRoomWithEgo", Args: map[string]any{"room": byte(33)}},
					},
				},
				VerbOffsets: map[byte][]int{10: {0}},
			},
		},
		Locals: map[int]*resource.LocalScript{},
	}
	return &resource.Game{Rooms: map[int]*resource.Room{33: roomA, 59: roomB}}
}

func TestFindScriptLinksExcludesSelfAndSentinelRooms(t *testing.T) {
	instrs := []scumm.Instr{
		{Name: "loadRoomWithEgo", Args: map[string]any{"room": byte(33)}},
		{Name: "loadRoomWithEgo", Args: map[string]any{"room": byte(0)}},
		{Name: "loadRoomWithEgo", Args: map[string]any{"room": byte(201)}},
		{Name: "loadRoomWithEgo", Args: map[string]any{"room": byte(59)}},
	}
	offsets := []int{0, 4, 8, 12}
	out := findScriptLinks(33, instrs, offsets)
	require.Len(t, out, 1)
	assert.Equal(t, 59, out[0].room)
	assert.Equal(t, 12, out[0].offset)
}

func TestFindScriptLinksSkipsVarRefRoomArg(t *testing.T) {
	instrs := []scumm.Instr{
		{Name: "loadRoomWithEgo", Args: map[string]any{"room": scumm.VarRef{ID: 200}}},
	}
	out := findScriptLinks(33, instrs, []int{0})
	assert.Empty(t, out)
}

func TestFindScriptLinksExcludesCardAndCloseupScreens(t *testing.T) {
	cardRoom := 90
	closeupRoom := 44
	instrs := []scumm.Instr{
		{Name: "loadRoomWithEgo", Args: map[string]any{"room": byte(33)}},
	}
	assert.Empty(t, findScriptLinks(cardRoom, instrs, []int{0}))
	assert.Empty(t, findScriptLinks(closeupRoom, instrs, []int{0}))

	intoCard := []scumm.Instr{
		{Name: "loadRoomWithEgo", Args: map[string]any{"room": byte(cardRoom)}},
	}
	assert.Empty(t, findScriptLinks(33, intoCard, []int{0}))
}

func TestFindScriptLinksRecognisesPutActorInRoomForEgoOnly(t *testing.T) {
	egoMove := []scumm.Instr{
		{Name: "putActorInRoom", Args: map[string]any{"act": scumm.VarRef{ID: varEgo}, "room": byte(59)}},
	}
	out := findScriptLinks(33, egoMove, []int{0})
	require.Len(t, out, 1)
	assert.Equal(t, "putActorInRoom", out[0].op)

	npcMove := []scumm.Instr{
		{Name: "putActorInRoom", Args: map[string]any{"act": scumm.VarRef{ID: 7}, "room": byte(59)}},
	}
	assert.Empty(t, findScriptLinks(33, npcMove, []int{0}))
}

func TestGenerateRoomLinksAndLinkmapRoundTrip(t *testing.T) {
	game := twoRoomGame()
	links := GenerateRoomLinks(game)
	key := linkKey(33, 59)
	require.Contains(t, links, key)
	require.Len(t, links[key], 2)

	linkmap := GenerateRoomLinkmap(links)
	assert.True(t, linkmap[33][59])
	assert.True(t, linkmap[59][33])
}

func TestGenerateRoomLinkmapDropsOneWayMentions(t *testing.T) {
	links := map[LinkKey][]RoomLink{
		linkKey(1, 2): {{RoomSrc: 1, RoomDest: 2, Offset: 0, Op: "loadRoomWithEgo"}},
	}
	linkmap := GenerateRoomLinkmap(links)
	assert.Empty(t, linkmap[1])
	assert.Empty(t, linkmap[2])
}

func TestFindRoomCluster(t *testing.T) {
	linkmap := map[int]map[int]bool{
		1: {2: true},
		2: {1: true, 3: true},
		3: {2: true},
		9: {8: true},
	}
	cluster := FindRoomCluster(linkmap, 1)
	assert.True(t, cluster[2])
	assert.True(t, cluster[3])
	assert.False(t, cluster[9])
}
