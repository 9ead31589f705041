package mutate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

func printLine(text string) scumm.Instr {
	return scumm.Instr{
		Name: "print",
		Args: map[string]any{
			"act": byte(1),
			"ops": []map[string]any{
				{"op": "SO_TEXTSTRING", "str": []scumm.TextToken{{Name: "text", Data: []byte(text)}}},
			},
		},
	}
}

func fillerScript(length int, at map[int]scumm.Instr) []scumm.Instr {
	out := make([]scumm.Instr, length)
	for i := range out {
		out[i] = scumm.Instr{Name: "breakHere"}
	}
	for pos, instr := range at {
		out[pos] = instr
	}
	return out
}

func swordGame(t *testing.T) *resource.Game {
	t.Helper()
	jabLines := map[int]scumm.Instr{}
	for i := 0; i < insultCount; i++ {
		jabLines[insultJabPos+insultStride*i] = printLine("jab")
		jabLines[insultSmPos+insultStride*i] = printLine("smjab")
	}
	retortLines := map[int]scumm.Instr{}
	for i := 0; i < insultCount; i++ {
		retortLines[insultJabPos+insultStride*i] = printLine("retort")
	}

	jabScript := fillerScript(insultSmPos+insultStride*insultCount, jabLines)
	retortScript := fillerScript(insultJabPos+insultStride*insultCount, retortLines)

	for i := 0; i < insultCount; i++ {
		jabScript[insultJabPos+insultStride*i] = printLine(label("jab", i))
		jabScript[insultSmPos+insultStride*i] = printLine(label("smjab", i))
		retortScript[insultJabPos+insultStride*i] = printLine(label("retort", i))
	}

	tutorial := fillerScript(630, map[int]scumm.Instr{
		521: printLine("^'placeholder jab'"),
		558: printLine("^'placeholder retort'"),
		567: printLine("^'placeholder jab'"),
		619: printLine("^'placeholder jab'^"),
		622: printLine("^'placeholder retort'"),
	})

	room88 := &resource.Room{
		ID: swordRoom,
		Globals: map[int]*resource.GlobalScript{
			swordJabGlobal: {Instrs: jabScript},
			swordRetGlobal: {Instrs: retortScript},
		},
	}
	room43 := &resource.Room{
		ID: tutorialRoom,
		Globals: map[int]*resource.GlobalScript{
			tutorialGlobal: {Instrs: tutorial},
		},
	}
	return &resource.Game{Rooms: map[int]*resource.Room{swordRoom: room88, tutorialRoom: room43}}
}

func label(prefix string, i int) string {
	return prefix + "-" + string(rune('a'+i))
}

func lineText(t *testing.T, instrs []scumm.Instr, pos int) string {
	t.Helper()
	data, err := lineData(instrs, pos)
	require.NoError(t, err)
	return string(data)
}

func TestNonSequiturSwordfightingPermutesJabLinesWithoutLosingAny(t *testing.T) {
	game := swordGame(t)

	before := map[int]string{}
	for i := 0; i < insultCount; i++ {
		before[i] = lineText(t, game.Rooms[swordRoom].Globals[swordJabGlobal].Instrs, insultJabPos+insultStride*i)
	}

	rng := rand.New(rand.NewSource(3))
	require.NoError(t, NonSequiturSwordfighting(game, rng, true))

	after := map[string]bool{}
	for i := 0; i < insultCount; i++ {
		after[lineText(t, game.Rooms[swordRoom].Globals[swordJabGlobal].Instrs, insultJabPos+insultStride*i)] = true
	}
	// every original jab line must still be present somewhere, just reordered
	for _, v := range before {
		assert.True(t, after[v], "jab %q should survive the shuffle", v)
	}
}

func TestNonSequiturSwordfightingPatchesTutorialReferencePoints(t *testing.T) {
	game := swordGame(t)
	rng := rand.New(rand.NewSource(11))
	require.NoError(t, NonSequiturSwordfighting(game, rng, false))

	tutorial := game.Rooms[tutorialRoom].Globals[tutorialGlobal].Instrs
	assert.NotEqual(t, "^'placeholder jab'", lineText(t, tutorial, 521))
	assert.NotEqual(t, "^'placeholder retort'", lineText(t, tutorial, 558))
}
