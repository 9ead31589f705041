package roomlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

func TestFixHighStreetNopsArrivalSpecialCase(t *testing.T) {
	game := &resource.Game{Rooms: map[int]*resource.Room{
		34: {
			ID: 34,
			Entry: &resource.RoomScript{
				Instrs: []scumm.Instr{
					{Name: "isEqual", Args: map[string]any{"a": scumm.VarRef{ID: 101}, "b": int16(38)}},
					{Name: "putActor", Args: map[string]any{}},
					{Name: "walkActorTo", Args: map[string]any{}},
					{Name: "roomOps", Args: map[string]any{"ops": []map[string]any{{"op": "SO_ROOM_SCROLL"}}}},
					{Name: "breakHere", Args: map[string]any{}},
				},
			},
		},
	}}

	fixHighStreet(game)

	instrs := game.Rooms[34].Entry.Instrs
	assert.True(t, instrs[0].IsNop())
	assert.True(t, instrs[1].IsNop())
	assert.True(t, instrs[2].IsNop())
	assert.True(t, instrs[3].IsNop(), "roomOps with SO_ROOM_SCROLL should also be blanked")
	assert.False(t, instrs[4].IsNop())
}

func TestFixBridgeOnMapNopsStartScript200(t *testing.T) {
	game := &resource.Game{Rooms: map[int]*resource.Room{
		85: {
			ID: 85,
			Entry: &resource.RoomScript{
				Instrs: []scumm.Instr{
					{Name: "startScript", Args: map[string]any{"script": byte(200)}},
					{Name: "startScript", Args: map[string]any{"script": byte(5)}},
				},
			},
		},
	}}

	fixBridgeOnMap(game)

	instrs := game.Rooms[85].Entry.Instrs
	assert.True(t, instrs[0].IsNop())
	assert.False(t, instrs[1].IsNop())
}

func TestBlankGetObjectOwnerCheckNopsRunOfGivenLength(t *testing.T) {
	room := &resource.Room{
		ID: 58,
		Objects: map[int]*resource.ObjectScript{
			669: {
				Verbs: map[byte][]scumm.Instr{
					10: {
						{Name: "breakHere"},
						{Name: "getObjectOwner", Args: map[string]any{"obj": int16(449)}},
						{Name: "isEqual", Args: map[string]any{}},
						{Name: "jumpRelative", Args: map[string]any{"offset": int16(4)}},
						{Name: "stopObjectCode"},
					},
				},
			},
		},
	}

	blankGetObjectOwnerCheck(room, 669, 3)

	instrs := room.Objects[669].Verbs[10]
	require.Len(t, instrs, 5)
	assert.False(t, instrs[0].IsNop())
	assert.True(t, instrs[1].IsNop())
	assert.True(t, instrs[2].IsNop())
	assert.True(t, instrs[3].IsNop())
	assert.False(t, instrs[4].IsNop())
}
