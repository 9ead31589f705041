package mutate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

func timerMoveGame() *resource.Game {
	timerTarget := scumm.VarRef{ID: varTimerNext}
	otherTarget := scumm.VarRef{ID: 7}
	room := &resource.Room{
		ID: 10,
		Globals: map[int]*resource.GlobalScript{
			1: {Instrs: []scumm.Instr{
				{Name: "move", Target: &timerTarget, Args: map[string]any{"value": int16(50)}},
				{Name: "move", Target: &otherTarget, Args: map[string]any{"value": int16(1)}},
				{Name: "startScript", Args: map[string]any{"script": byte(152), "args": []any{}}},
				{Name: "breakHere"},
				{Name: "breakHere"},
				{Name: "breakHere"},
				{Name: "stopObjectCode"},
			}, Offsets: []int{0, 5, 10, 15, 18, 21, 24}},
			149: {Instrs: []scumm.Instr{
				{Name: "print", Args: map[string]any{
					"act": byte(1),
					"ops": []map[string]any{
						{"op": "SO_TEXTSTRING", "str": []scumm.TextToken{{Name: "text", Data: []byte("(c) 1990 LucasArts")}}},
					},
				}},
			}, Offsets: []int{0}},
		},
		Locals: map[int]*resource.LocalScript{
			5: {Instrs: []scumm.Instr{
				{Name: "move", Target: &timerTarget, Args: map[string]any{"value": int16(80)}},
			}, Offsets: []int{0}},
		},
	}
	return &resource.Game{Rooms: map[int]*resource.Room{10: room}}
}

func TestTurboModeRewritesEveryTimerSite(t *testing.T) {
	game := timerMoveGame()
	TurboMode(game, 4)

	global := game.Rooms[10].Globals[1].Instrs
	assert.Equal(t, int16(4), global[0].Args["value"])
	assert.Equal(t, int16(1), global[1].Args["value"], "non-timer move must be left alone")

	local := game.Rooms[10].Locals[5].Instrs
	assert.Equal(t, int16(4), local[0].Args["value"])
}

func TestDebugModePrependsEnableInstruction(t *testing.T) {
	game := timerMoveGame()
	before := len(game.Rooms[10].Globals[1].Instrs)

	require.NoError(t, DebugMode(game))

	instrs := game.Rooms[10].Globals[1].Instrs
	require.Len(t, instrs, before+1)
	assert.Equal(t, "move", instrs[0].Name)
	require.NotNil(t, instrs[0].Target)
	assert.Equal(t, uint16(varDebugMode), instrs[0].Target.ID)
	assert.Equal(t, int16(1), instrs[0].Args["value"])
}

func TestSkipCodeWheelDeletesFourInstructions(t *testing.T) {
	game := timerMoveGame()
	before := len(game.Rooms[10].Globals[1].Instrs)

	require.NoError(t, SkipCodeWheel(game))

	instrs := game.Rooms[10].Globals[1].Instrs
	assert.Len(t, instrs, before-4)
	for _, instr := range instrs {
		assert.NotEqual(t, "startScript", instr.Name)
	}
}

func TestVersionBannerAppendsTextToken(t *testing.T) {
	game := timerMoveGame()
	require.NoError(t, VersionBanner(game, "mi1rando", "1", 42))

	ops := game.Rooms[10].Globals[149].Instrs[0].Args["ops"].([]map[string]any)
	tokens := ops[0]["str"].([]scumm.TextToken)
	require.Len(t, tokens, 3)
	assert.Equal(t, "newline", tokens[1].Name)
	assert.Equal(t, "mi1rando v1 seed #42", string(tokens[2].Data.([]byte)))
}
