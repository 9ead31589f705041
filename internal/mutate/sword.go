package mutate

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

const (
	swordRoom      = 88
	swordJabGlobal = 82
	swordRetGlobal = 83

	insultCount  = 16
	insultJabPos = 2
	insultSmPos  = 50
	insultStride = 3

	insultFarmer = 7
	insultShish  = 1

	tutorialRoom   = 43
	tutorialGlobal = 57
)

// lineAt returns, and lets the caller overwrite, the first text-string
// token attached to the print/printEgo instruction sitting at instrs[pos].
func lineAt(instrs []scumm.Instr, pos int) (*scumm.TextToken, error) {
	if pos < 0 || pos >= len(instrs) {
		return nil, errors.Errorf("mutate: instruction index %d out of range", pos)
	}
	instr := instrs[pos]
	if instr.Name != "print" && instr.Name != "printEgo" {
		return nil, errors.Errorf("mutate: instruction %d is %q, not a print op", pos, instr.Name)
	}
	ops, ok := instr.Args["ops"].([]map[string]any)
	if !ok {
		return nil, errors.Errorf("mutate: instruction %d has no text ops", pos)
	}
	for _, op := range ops {
		tokens, ok := op["str"].([]scumm.TextToken)
		if !ok || len(tokens) == 0 {
			continue
		}
		return &tokens[0], nil
	}
	return nil, errors.Errorf("mutate: instruction %d has no SO_TEXTSTRING token", pos)
}

func lineData(instrs []scumm.Instr, pos int) ([]byte, error) {
	tok, err := lineAt(instrs, pos)
	if err != nil {
		return nil, err
	}
	data, ok := tok.Data.([]byte)
	if !ok {
		return nil, errors.Errorf("mutate: instruction %d's text token carries no byte data", pos)
	}
	return data, nil
}

func setLineData(instrs []scumm.Instr, pos int, data []byte) error {
	tok, err := lineAt(instrs, pos)
	if err != nil {
		return err
	}
	tok.Data = data
	return nil
}

// NonSequiturSwordfighting permutes the swordfight's insult/retort lines:
// the 16 jabs always get new retorts matched to them (the retort ids are
// always shuffled), and, when shuffleOrder is set, the jabs themselves
// also answer to a different insult line than they originally followed.
// The sword-school tutorial script is patched at a handful of fixed
// reference points so its scripted example exchange still quotes a real
// jab/retort pair.
func NonSequiturSwordfighting(game *resource.Game, rng *rand.Rand, shuffleOrder bool) error {
	room := game.Rooms[swordRoom]
	if room == nil {
		return errors.Errorf("mutate: swordfighting: room %d not loaded", swordRoom)
	}
	jabScript, ok := room.Globals[swordJabGlobal]
	if !ok {
		return errors.Errorf("mutate: swordfighting: room %d has no global %d", swordRoom, swordJabGlobal)
	}
	retortScript, ok := room.Globals[swordRetGlobal]
	if !ok {
		return errors.Errorf("mutate: swordfighting: room %d has no global %d", swordRoom, swordRetGlobal)
	}

	jabIDs := identityPerm(insultCount)
	retortIDs := identityPerm(insultCount)
	if shuffleOrder {
		rng.Shuffle(len(jabIDs), func(i, j int) { jabIDs[i], jabIDs[j] = jabIDs[j], jabIDs[i] })
	}
	rng.Shuffle(len(retortIDs), func(i, j int) { retortIDs[i], retortIDs[j] = retortIDs[j], retortIDs[i] })

	jabs := make([][]byte, insultCount)
	smJabs := make([][]byte, insultCount)
	retorts := make([][]byte, insultCount)
	for i := 0; i < insultCount; i++ {
		var err error
		if jabs[i], err = lineData(jabScript.Instrs, insultJabPos+insultStride*i); err != nil {
			return err
		}
		if smJabs[i], err = lineData(jabScript.Instrs, insultSmPos+insultStride*i); err != nil {
			return err
		}
		if retorts[i], err = lineData(retortScript.Instrs, insultJabPos+insultStride*i); err != nil {
			return err
		}
	}

	for i, x := range jabIDs {
		if err := setLineData(jabScript.Instrs, insultJabPos+insultStride*i, jabs[x]); err != nil {
			return err
		}
		if err := setLineData(jabScript.Instrs, insultSmPos+insultStride*i, smJabs[x]); err != nil {
			return err
		}
	}
	for i, x := range retortIDs {
		if err := setLineData(retortScript.Instrs, insultJabPos+insultStride*i, retorts[x]); err != nil {
			return err
		}
	}

	if err := patchSwordTutorial(room, jabs, retorts, jabIDs, retortIDs); err != nil {
		return err
	}

	logrus.WithField("shuffle_order", shuffleOrder).Info("shuffled swordfight insults and retorts")
	return nil
}

func identityPerm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// patchSwordTutorial rewrites the sword master's scripted example exchange
// at a handful of fixed reference points so it quotes one of the
// now-shuffled jab/retort pairs instead of the line the original bytecode
// hardcoded. Only the reference points carried by a plain print/SO_TEXTSTRING
// instruction are patched here; a few of the original's reference points
// live inside array-string-assignment opcodes this port's decoder does not
// model and are left alone.
func patchSwordTutorial(room *resource.Room, jabs, retorts [][]byte, jabIDs, retortIDs []int) error {
	training, ok := room.Globals[tutorialGlobal]
	if !ok {
		return errors.Errorf("mutate: swordfighting: room %d has no global %d", room.ID, tutorialGlobal)
	}

	quote := func(s []byte) []byte {
		out := append([]byte("^'"), s...)
		return append(out, '\'')
	}

	patches := []struct {
		pos  int
		data []byte
	}{
		{521, quote(jabs[jabIDs[insultFarmer]])},
		{558, quote(retorts[retortIDs[insultFarmer]])},
		{567, quote(jabs[jabIDs[insultShish]])},
		{619, append(quote(jabs[jabIDs[insultShish]]), '^')},
		{622, quote(retorts[retortIDs[insultShish]])},
	}
	for _, p := range patches {
		if err := setLineData(training.Instrs, p.pos, p.data); err != nil {
			return errors.Wrapf(err, "mutate: swordfighting: tutorial position %d", p.pos)
		}
	}
	return nil
}
