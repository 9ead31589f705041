package roomlink

import (
	"sort"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

// varEgo is the well-known SCUMM variable holding the current ego actor's
// id, used to recognise a putActorInRoom call that actually moves the
// player (as opposed to some background NPC).
const varEgo = 1

// ScriptLocation identifies which of a room's scripts a RoomLink's code
// lives in, so SwapRoomLinks knows which Instrs/Offsets slice to edit.
type ScriptLocation struct {
	Type    string // "object" or "local"
	ObjID   int    // set when Type == "object"
	VerbID  byte   // set when Type == "object"
	LocalID int    // set when Type == "local"
}

// RoomLink is one instruction that transitions the player from one room to
// another, found inside an object verb or a local script.
type RoomLink struct {
	RoomSrc  int
	RoomDest int
	Offset   int
	Op       string // "loadRoomWithEgo" or "putActorInRoom"
	Location ScriptLocation
}

// LinkKey canonicalizes a room pair (lowest id first) so links discovered
// from either direction group together.
type LinkKey struct {
	A, B int
}

func linkKey(a, b int) LinkKey {
	if a < b {
		return LinkKey{a, b}
	}
	return LinkKey{b, a}
}

type scriptMatch struct {
	offset int
	room   int
	op     string
}

// findScriptLinks scans one instruction list for loadRoomWithEgo/
// putActorInRoom calls that move the player into a different, walkable,
// non-forest room. A script belonging to (or targeting) a card or closeup
// screen is never treated as a walkable link: card screens' "room"
// literals are selection state, not a destination, and closeups have
// nothing on the other side worth wiring into the shuffle.
func findScriptLinks(roomID int, instrs []scumm.Instr, offsets []int) []scriptMatch {
	var out []scriptMatch
	for i, instr := range instrs {
		var target int
		switch instr.Name {
		case "loadRoomWithEgo":
			b, ok := instr.Args["room"].(byte)
			if !ok {
				continue
			}
			target = int(b)
		case "putActorInRoom":
			act, ok := instr.Args["act"].(scumm.VarRef)
			if !ok || act.ID != varEgo {
				continue
			}
			b, ok := instr.Args["room"].(byte)
			if !ok {
				continue
			}
			target = int(b)
		default:
			continue
		}

		if target == roomID || target == 0 || target >= 200 {
			continue
		}
		if RoomClasses[ClassCloseup][roomID] {
			return nil
		}
		if RoomClasses[ClassCloseup][target] {
			continue
		}
		if RoomClasses[ClassCard][roomID] {
			return nil
		}
		if RoomClasses[ClassCard][target] {
			continue
		}
		out = append(out, scriptMatch{offset: offsets[i], room: target, op: instr.Name})
	}
	return out
}

// GenerateRoomLinks scans every object verb and local script in the game
// for walking transitions, grouping them by the (unordered) room pair they
// connect.
func GenerateRoomLinks(game *resource.Game) map[LinkKey][]RoomLink {
	result := map[LinkKey][]RoomLink{}

	roomIDs := make([]int, 0, len(game.Rooms))
	for id := range game.Rooms {
		roomIDs = append(roomIDs, id)
	}
	sort.Ints(roomIDs)

	for _, roomID := range roomIDs {
		room := game.Rooms[roomID]

		objIDs := make([]int, 0, len(room.Objects))
		for id := range room.Objects {
			objIDs = append(objIDs, id)
		}
		sort.Ints(objIDs)
		for _, objID := range objIDs {
			obj := room.Objects[objID]
			verbIDs := make([]byte, 0, len(obj.Verbs))
			for id := range obj.Verbs {
				verbIDs = append(verbIDs, id)
			}
			sort.Slice(verbIDs, func(i, j int) bool { return verbIDs[i] < verbIDs[j] })
			for _, verbID := range verbIDs {
				matches := findScriptLinks(roomID, obj.Verbs[verbID], obj.VerbOffsets[verbID])
				for _, m := range matches {
					key := linkKey(roomID, m.room)
					result[key] = append(result[key], RoomLink{
						RoomSrc: roomID, RoomDest: m.room, Offset: m.offset, Op: m.op,
						Location: ScriptLocation{Type: "object", ObjID: objID, VerbID: verbID},
					})
				}
			}
		}

		localIDs := make([]int, 0, len(room.Locals))
		for id := range room.Locals {
			localIDs = append(localIDs, id)
		}
		sort.Ints(localIDs)
		for _, localID := range localIDs {
			local := room.Locals[localID]
			matches := findScriptLinks(roomID, local.Instrs, local.Offsets)
			for _, m := range matches {
				key := linkKey(roomID, m.room)
				result[key] = append(result[key], RoomLink{
					RoomSrc: roomID, RoomDest: m.room, Offset: m.offset, Op: m.op,
					Location: ScriptLocation{Type: "local", LocalID: localID},
				})
			}
		}
	}

	return result
}

// GenerateRoomLinkmap reduces GenerateRoomLinks' output to a plain
// adjacency map, keeping only pairs that are linked in both directions
// (a one-way mention — usually a cutscene jump rather than a walkable
// exit — is not enough to treat a pair as swappable).
func GenerateRoomLinkmap(roomLinks map[LinkKey][]RoomLink) map[int]map[int]bool {
	seen := map[[2]int]bool{}
	for _, links := range roomLinks {
		for _, l := range links {
			seen[[2]int{l.RoomSrc, l.RoomDest}] = true
		}
	}

	linkmap := map[int]map[int]bool{}
	for pair := range seen {
		src, dest := pair[0], pair[1]
		if !seen[[2]int{dest, src}] {
			continue
		}
		if linkmap[src] == nil {
			linkmap[src] = map[int]bool{}
		}
		linkmap[src][dest] = true
	}
	return linkmap
}

// FindRoomCluster returns every room reachable from start by following
// linkmap edges.
func FindRoomCluster(linkmap map[int]map[int]bool, start int) map[int]bool {
	result := map[int]bool{}
	var visit func(int)
	visit = func(room int) {
		for target := range linkmap[room] {
			if !result[target] {
				result[target] = true
				visit(target)
			}
		}
	}
	visit(start)
	return result
}
