package mutate

import (
	"sort"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

// pickupSite records one place in the scripts where a pickupObject call,
// or a setOwner call transferring ownership to ego, removes an object from
// the scene and hands it to the player.
type pickupSite struct {
	RoomID  int
	Offset  int
	Op      string
	ObjID   int
	HasObjI bool // false when ObjID came from a variable reference, not a literal
}

func findPickupSites(roomID int, instrs []scumm.Instr, offsets []int) []pickupSite {
	var out []pickupSite
	for i, instr := range instrs {
		switch instr.Name {
		case "pickupObject":
			if id, ok := instr.Args["obj"].(int16); ok {
				out = append(out, pickupSite{RoomID: roomID, Offset: offsets[i], Op: instr.Name, ObjID: int(id), HasObjI: true})
			} else {
				out = append(out, pickupSite{RoomID: roomID, Offset: offsets[i], Op: instr.Name})
			}
		case "setOwner":
			owner, ok := instr.Args["val"].(scumm.VarRef)
			if !ok || owner.ID != varEgoOwner {
				continue
			}
			if id, ok := instr.Args["obj"].(int16); ok {
				out = append(out, pickupSite{RoomID: roomID, Offset: offsets[i], Op: instr.Name, ObjID: int(id), HasObjI: true})
			}
		}
	}
	return out
}

const varEgoOwner = 1

// shuffleObjects is the original tool's incomplete object-relocation
// scaffold, kept as an unwired reference rather than deleted: SCUMM only
// lets the player interact with an object while standing in the room that
// owns its hotspot, so actually relocating an item means splitting its
// pickup hotspot from the item itself, retargeting every reference to it,
// and re-drawing it without the original room's background art — none of
// which this scaffold attempts. It only does the first half of the
// original's job, inventorying every pickup site in the game; nothing
// calls it, and no CLI flag reaches it.
func shuffleObjects(game *resource.Game) map[int][]pickupSite { //nolint:unused
	byRoom := map[int][]pickupSite{}

	roomIDs := make([]int, 0, len(game.Rooms))
	for id := range game.Rooms {
		roomIDs = append(roomIDs, id)
	}
	sort.Ints(roomIDs)

	for _, roomID := range roomIDs {
		room := game.Rooms[roomID]
		var sites []pickupSite

		globalIDs := make([]int, 0, len(room.Globals))
		for id := range room.Globals {
			globalIDs = append(globalIDs, id)
		}
		sort.Ints(globalIDs)
		for _, id := range globalIDs {
			gs := room.Globals[id]
			sites = append(sites, findPickupSites(roomID, gs.Instrs, gs.Offsets)...)
		}

		localIDs := make([]int, 0, len(room.Locals))
		for id := range room.Locals {
			localIDs = append(localIDs, id)
		}
		sort.Ints(localIDs)
		for _, id := range localIDs {
			ls := room.Locals[id]
			sites = append(sites, findPickupSites(roomID, ls.Instrs, ls.Offsets)...)
		}

		objIDs := make([]int, 0, len(room.Objects))
		for id := range room.Objects {
			objIDs = append(objIDs, id)
		}
		sort.Ints(objIDs)
		for _, id := range objIDs {
			obj := room.Objects[id]
			verbIDs := make([]byte, 0, len(obj.Verbs))
			for id := range obj.Verbs {
				verbIDs = append(verbIDs, id)
			}
			sort.Slice(verbIDs, func(i, j int) bool { return verbIDs[i] < verbIDs[j] })
			for _, verbID := range verbIDs {
				sites = append(sites, findPickupSites(roomID, obj.Verbs[verbID], obj.VerbOffsets[verbID])...)
			}
		}

		if len(sites) > 0 {
			byRoom[roomID] = sites
		}
	}

	return byRoom
}
