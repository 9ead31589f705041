package roomlink

import (
	"github.com/pkg/errors"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

func getScript(room *resource.Room, loc ScriptLocation) ([]scumm.Instr, []int, bool) {
	switch loc.Type {
	case "object":
		obj, ok := room.Objects[loc.ObjID]
		if !ok {
			return nil, nil, false
		}
		instrs, ok := obj.Verbs[loc.VerbID]
		if !ok {
			return nil, nil, false
		}
		return instrs, obj.VerbOffsets[loc.VerbID], true
	case "local":
		ls, ok := room.Locals[loc.LocalID]
		if !ok {
			return nil, nil, false
		}
		return ls.Instrs, ls.Offsets, true
	default:
		return nil, nil, false
	}
}

func setScript(room *resource.Room, loc ScriptLocation, instrs []scumm.Instr, offsets []int) {
	switch loc.Type {
	case "object":
		obj := room.Objects[loc.ObjID]
		obj.Verbs[loc.VerbID] = instrs
		obj.VerbOffsets[loc.VerbID] = offsets
	case "local":
		ls := room.Locals[loc.LocalID]
		ls.Instrs = instrs
		ls.Offsets = offsets
	}
}

// spliceInstrs replaces instrs[start:start+count] with replacement,
// assigning each replacement instruction a synthetic, strictly-decreasing
// old-offset so scumm.EncodeScript's per-script old-offset index stays
// collision-free; instructions outside the spliced span keep the exact
// old offsets decode produced, so any real branch elsewhere in the same
// script still resolves correctly.
func spliceInstrs(instrs []scumm.Instr, offsets []int, start, count int, replacement []scumm.Instr, synth *int) ([]scumm.Instr, []int) {
	newInstrs := make([]scumm.Instr, 0, len(instrs)-count+len(replacement))
	newOffsets := make([]int, 0, cap(newInstrs))

	newInstrs = append(newInstrs, instrs[:start]...)
	newOffsets = append(newOffsets, offsets[:start]...)
	for _, instr := range replacement {
		*synth--
		newInstrs = append(newInstrs, instr)
		newOffsets = append(newOffsets, *synth)
	}
	newInstrs = append(newInstrs, instrs[start+count:]...)
	newOffsets = append(newOffsets, offsets[start+count:]...)
	return newInstrs, newOffsets
}

// getSnippet extracts the instructions that actually perform link's room
// transition: a single loadRoomWithEgo call, or a putActorInRoom call (plus
// a following putActor, if the script sets the actor's on-screen position
// before switching rooms) followed by a synthesized actorFollowCamera so
// the camera keeps tracking ego into the new room.
func getSnippet(room *resource.Room, link RoomLink) ([]scumm.Instr, error) {
	instrs, offsets, ok := getScript(room, link.Location)
	if !ok {
		return nil, errors.Errorf("roomlink: link in room %d has no matching script", link.RoomSrc)
	}
	idx := indexOfOffset(offsets, link.Offset)
	if idx < 0 {
		return nil, errors.Errorf("roomlink: link in room %d references offset %d, not present in its script", link.RoomSrc, link.Offset)
	}

	switch link.Op {
	case "loadRoomWithEgo":
		return []scumm.Instr{instrs[idx]}, nil
	case "putActorInRoom":
		snippet := []scumm.Instr{instrs[idx]}
		next := idx + 1
		if next < len(instrs) && instrs[next].Name == "putActor" {
			snippet = append(snippet, instrs[next])
		}
		snippet = append(snippet, scumm.Instr{
			Name: "actorFollowCamera",
			Args: map[string]any{"act": scumm.VarRef{ID: varEgo}},
		})
		return snippet, nil
	default:
		return nil, errors.Errorf("roomlink: unknown link op %q", link.Op)
	}
}

// injectSnippet overwrites the instructions at link's site with snippet,
// then replaces the room's script in place.
func injectSnippet(room *resource.Room, link RoomLink, snippet []scumm.Instr, synth *int) error {
	instrs, offsets, ok := getScript(room, link.Location)
	if !ok {
		return errors.Errorf("roomlink: link in room %d has no matching script", link.RoomSrc)
	}
	idx := indexOfOffset(offsets, link.Offset)
	if idx < 0 {
		return errors.Errorf("roomlink: link in room %d references offset %d, not present in its script", link.RoomSrc, link.Offset)
	}

	count := 1
	if link.Op == "putActorInRoom" && idx+1 < len(instrs) && instrs[idx+1].Name == "putActor" {
		count = 2
	}

	newInstrs, newOffsets := spliceInstrs(instrs, offsets, idx, count, snippet, synth)
	setScript(room, link.Location, newInstrs, newOffsets)
	return nil
}

func indexOfOffset(offsets []int, target int) int {
	for i, o := range offsets {
		if o == target {
			return i
		}
	}
	return -1
}

func reversed(pair [2]int) [2]int { return [2]int{pair[1], pair[0]} }

// SwapRoomLinks rewires the connection between linkSrc's two rooms to
// instead connect linkSrc[0] to linkDest[1] (and, unless half is set,
// linkDest[0] to linkSrc[1]), by swapping the actual transition snippets
// each side's script executes. roomLinks may be nil, in which case it is
// computed fresh; callers doing many swaps in a row should compute it once
// and pass it through, since it goes stale the moment a script it indexes
// is rewritten.
func SwapRoomLinks(game *resource.Game, linkSrc, linkDest [2]int, roomLinks map[LinkKey][]RoomLink) error {
	if roomLinks == nil {
		roomLinks = GenerateRoomLinks(game)
	}
	return swapRoomLinks(game, linkSrc, linkDest, roomLinks, false)
}

// SwapRoomLinksHalf behaves like SwapRoomLinks but only rewires the
// linkSrc[0]<->linkDest[1] connection: linkSrc[0]'s exit now leads to
// linkDest[1] and linkDest[1]'s exit now leads back to linkSrc[0], while
// the exits in linkSrc[1] and linkDest[0] are left untouched. The main
// shuffle uses it to wire one new connection at a time.
func SwapRoomLinksHalf(game *resource.Game, linkSrc, linkDest [2]int, roomLinks map[LinkKey][]RoomLink) error {
	if roomLinks == nil {
		roomLinks = GenerateRoomLinks(game)
	}
	return swapRoomLinks(game, linkSrc, linkDest, roomLinks, true)
}

func swapRoomLinks(game *resource.Game, linkSrc, linkDest [2]int, roomLinks map[LinkKey][]RoomLink, half bool) error {
	src := roomLinks[linkKey(linkSrc[0], linkSrc[1])]
	dest := roomLinks[linkKey(linkDest[0], linkDest[1])]
	all := append(append([]RoomLink{}, src...), dest...)

	codeSnippets := map[[2]int][]scumm.Instr{}
	for _, link := range all {
		test := [2]int{link.RoomSrc, link.RoomDest}
		room := game.Rooms[link.RoomSrc]
		var key [2]int
		switch test {
		case linkSrc, reversed(linkSrc), linkDest, reversed(linkDest):
			key = test
		default:
			continue
		}
		if _, have := codeSnippets[key]; have {
			continue
		}
		snippet, err := getSnippet(room, link)
		if err != nil {
			return err
		}
		codeSnippets[key] = snippet
	}

	synth := 0
	for _, link := range all {
		test := [2]int{link.RoomSrc, link.RoomDest}
		room := game.Rooms[link.RoomSrc]
		switch {
		case test == linkSrc:
			if err := injectSnippet(room, link, codeSnippets[linkDest], &synth); err != nil {
				return err
			}
		case test == reversed(linkSrc) && !half:
			if err := injectSnippet(room, link, codeSnippets[reversed(linkDest)], &synth); err != nil {
				return err
			}
		case test == linkDest && !half:
			if err := injectSnippet(room, link, codeSnippets[linkSrc], &synth); err != nil {
				return err
			}
		case test == reversed(linkDest):
			if err := injectSnippet(room, link, codeSnippets[reversed(linkSrc)], &synth); err != nil {
				return err
			}
		}
	}
	return nil
}
