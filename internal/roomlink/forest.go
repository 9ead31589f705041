package roomlink

import (
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

// varRoom is VAR_ROOM, the variable the forest dispatcher compares against
// a literal source room id before loading the matching destination.
const varRoom = 4

// forestDispatchObjects and forestDispatchVerb locate the two hotspot objects
// whose walk-to script implements the forest's "if you're standing in
// subroom X, walk into subroom Y" dispatch table.
var forestDispatchObjects = [2]int{666, 669}

const forestDispatchVerb = 10

// fixedOuterForestExits are the four forest subrooms whose route back to
// the ordinary overworld must never be touched by the forest shuffle.
var fixedOuterForestExits = map[int]bool{201: true, 206: true, 209: true, 218: true}

// forestEntry is one dispatch table row: walking out of Src leads to Dest,
// implemented by the loadRoomWithEgo instruction at Instrs[Index].
type forestEntry struct {
	Src, Dest int
	Instrs    []scumm.Instr
	Index     int
}

func (e *forestEntry) retarget(dest int) {
	e.Dest = dest
	instr := e.Instrs[e.Index]
	args := make(map[string]any, len(instr.Args))
	for k, v := range instr.Args {
		args[k] = v
	}
	args["room"] = byte(dest)
	instr.Args = args
	e.Instrs[e.Index] = instr
}

// scanForestDispatch finds every (src, dest) dispatch row in one verb
// script: an isEqual{a: VAR_ROOM, b: src} guard followed, within the next
// four instructions, by a loadRoomWithEgo targeting a forest subroom (room
// id 200 or above). Only the first loadRoomWithEgo in that window counts.
func scanForestDispatch(instrs []scumm.Instr) []forestEntry {
	var out []forestEntry
	for i, instr := range instrs {
		if instr.Name != "isEqual" {
			continue
		}
		a, ok := instr.Args["a"].(scumm.VarRef)
		if !ok || a.ID != varRoom {
			continue
		}
		src, ok := instr.Args["b"].(int16)
		if !ok {
			continue
		}
		for j := i + 1; j < len(instrs) && j <= i+4; j++ {
			if instrs[j].Name != "loadRoomWithEgo" {
				continue
			}
			dest, ok := instrs[j].Args["room"].(byte)
			if !ok || int(dest) < 200 {
				break
			}
			out = append(out, forestEntry{Src: int(src), Dest: int(dest), Instrs: instrs, Index: j})
			break
		}
	}
	return out
}

// FindForestDispatch collects every dispatch row from both of room 58's
// forest-hotspot objects.
func FindForestDispatch(game *resource.Game) []forestEntry {
	room := game.Rooms[58]
	if room == nil {
		return nil
	}
	var out []forestEntry
	for _, objID := range forestDispatchObjects {
		obj, ok := room.Objects[objID]
		if !ok {
			continue
		}
		instrs, ok := obj.Verbs[forestDispatchVerb]
		if !ok {
			continue
		}
		out = append(out, scanForestDispatch(instrs)...)
	}
	return out
}

// ShuffleForest permutes the forest's three hub subrooms' exits against
// each other, then relocates every 2-exit passage subroom between a
// randomly chosen hub and one of that hub's (post-permutation) exits,
// while leaving every entry that leads out of the forest (a fixed outer
// exit) untouched.
func ShuffleForest(game *resource.Game, rng *rand.Rand) error {
	entries := FindForestDispatch(game)
	if len(entries) == 0 {
		logrus.Warn("no forest dispatch entries found; skipping forest shuffle")
		return nil
	}

	bySrc := map[int][]*forestEntry{}
	byPair := map[[2]int]*forestEntry{}
	for i := range entries {
		e := &entries[i]
		if fixedOuterForestExits[e.Dest] {
			continue
		}
		bySrc[e.Src] = append(bySrc[e.Src], e)
		byPair[[2]int{e.Src, e.Dest}] = e
	}

	var hubIDs, passageIDs []int
	for src, es := range bySrc {
		switch len(es) {
		case 3:
			hubIDs = append(hubIDs, src)
		case 2:
			passageIDs = append(passageIDs, src)
		}
	}
	sort.Ints(hubIDs)
	sort.Ints(passageIDs)

	shuffleHubs(bySrc, hubIDs, rng)
	for _, p := range passageIDs {
		relocatePassage(bySrc, byPair, hubIDs, p, rng)
	}

	logrus.WithField("hubs", len(hubIDs)).WithField("passages", len(passageIDs)).
		Info("shuffled forest connections")
	return nil
}

// shuffleHubs rotates the hub rooms (there are normally exactly three) so
// each hub's three exits are replaced by a random permutation of the next
// hub's original exits, guaranteeing every hub ends up wired like a
// different hub rather than like itself.
func shuffleHubs(bySrc map[int][]*forestEntry, hubIDs []int, rng *rand.Rand) {
	if len(hubIDs) < 2 {
		return
	}
	order := append([]int(nil), hubIDs...)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	originalDests := make(map[int][]int, len(order))
	for _, h := range order {
		dests := make([]int, len(bySrc[h]))
		for i, e := range bySrc[h] {
			dests[i] = e.Dest
		}
		originalDests[h] = dests
	}

	for i, hubID := range order {
		donor := order[(i+1)%len(order)]
		donorDests := append([]int(nil), originalDests[donor]...)
		rng.Shuffle(len(donorDests), func(a, b int) { donorDests[a], donorDests[b] = donorDests[b], donorDests[a] })
		for j, e := range bySrc[hubID] {
			e.retarget(donorDests[j%len(donorDests)])
		}
	}
}

// relocatePassage removes passage p from between its two current
// neighbours (wiring them directly to each other instead), then splices p
// in between a randomly chosen hub and one of that hub's current exits.
func relocatePassage(bySrc map[int][]*forestEntry, byPair map[[2]int]*forestEntry, hubIDs []int, p int, rng *rand.Rand) {
	legs := bySrc[p]
	if len(legs) != 2 {
		return
	}
	n1, n2 := legs[0].Dest, legs[1].Dest

	if back := byPair[[2]int{n1, p}]; back != nil {
		back.retarget(n2)
	}
	if back := byPair[[2]int{n2, p}]; back != nil {
		back.retarget(n1)
	}

	if len(hubIDs) == 0 {
		return
	}
	hubID := hubIDs[rng.Intn(len(hubIDs))]
	hubLegs := bySrc[hubID]
	if len(hubLegs) == 0 {
		return
	}
	chosen := hubLegs[rng.Intn(len(hubLegs))]
	t := chosen.Dest

	if back := byPair[[2]int{t, hubID}]; back != nil {
		back.retarget(p)
	}
	chosen.retarget(p)
	legs[0].retarget(hubID)
	legs[1].retarget(t)
}
