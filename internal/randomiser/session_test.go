package randomiser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

func minimalGame() *resource.Game {
	room10 := &resource.Room{
		ID: 10,
		Globals: map[int]*resource.GlobalScript{
			149: {Instrs: []scumm.Instr{
				{Name: "print", Args: map[string]any{
					"act": byte(1),
					"ops": []map[string]any{
						{"op": "SO_TEXTSTRING", "str": []scumm.TextToken{{Name: "text", Data: []byte("(c) 1990")}}},
					},
				}},
			}, Offsets: []int{0}},
		},
		Locals:  map[int]*resource.LocalScript{},
		Objects: map[int]*resource.ObjectScript{},
	}
	return &resource.Game{Rooms: map[int]*resource.Room{10: room10}}
}

func TestApplyWithNoShufflesStillTagsVersionBanner(t *testing.T) {
	s := &Session{Game: minimalGame()}
	require.NoError(t, s.Apply(Options{Seed: 1, ToolName: "mi1rando", Version: "0"}))

	tokens := s.Game.Rooms[10].Globals[149].Instrs[0].Args["ops"].([]map[string]any)[0]["str"].([]scumm.TextToken)
	require.Len(t, tokens, 3)
	assert.Equal(t, "mi1rando v0 seed #1", string(tokens[2].Data.([]byte)))
}

func TestApplyRejectsCallBeforeLoad(t *testing.T) {
	s := NewSession()
	err := s.Apply(Options{})
	assert.Error(t, err)
}
