package roomlink

import (
	"github.com/sirupsen/logrus"

	"j5.nz/mi1rando/internal/resource"
	"j5.nz/mi1rando/internal/scumm"
)

// RoomScriptFixups applies the handful of room-script patches the original
// game relies on that don't make sense once rooms are no longer wired the
// way the map screen originally drew them.
func RoomScriptFixups(game *resource.Game) {
	fixHighStreet(game)
	fixBridgeOnMap(game)
	fixDamnForestBlock(game)
}

// fixHighStreet disables high street's entry-script special case that
// snaps ego to a fixed spot (and scrolls the screen there) only when
// arriving from lookout point — a scripted nicety tied to that one
// specific, now-arbitrary, room connection.
func fixHighStreet(game *resource.Game) {
	room := game.Rooms[34]
	if room == nil || room.Entry == nil {
		return
	}
	src := room.Entry.Instrs
	modded := false

	for i, instr := range src {
		if instr.Name != "isEqual" {
			continue
		}
		a, ok := instr.Args["a"].(scumm.VarRef)
		if !ok || a.ID != 101 {
			continue
		}
		b, ok := instr.Args["b"].(int16)
		if !ok || b != 38 {
			continue
		}
		if i+2 >= len(src) {
			break
		}
		src[i] = scumm.Nop()
		src[i+1] = scumm.Nop()
		src[i+2] = scumm.Nop()
		modded = true
		break
	}

	for i, instr := range src {
		if instr.Name != "roomOps" {
			continue
		}
		ops, ok := instr.Args["ops"].([]map[string]any)
		if !ok {
			continue
		}
		for _, op := range ops {
			if op["op"] == "SO_ROOM_SCROLL" {
				src[i] = scumm.Nop()
				modded = true
				break
			}
		}
	}

	if modded {
		logrus.Debug("patched high street's arrival-from-lookout special case")
	}
}

// fixBridgeOnMap stops the map screen's entry script from auto-booting the
// player back off the bridge hotspot: the shuffle treats that hotspot like
// any other map exit, so the original troll-gate check no longer applies.
func fixBridgeOnMap(game *resource.Game) {
	room := game.Rooms[85]
	if room == nil || room.Entry == nil {
		return
	}
	src := room.Entry.Instrs
	modded := false
	for i, instr := range src {
		if instr.Name != "startScript" {
			continue
		}
		script, ok := instr.Args["script"].(byte)
		if !ok || script != 200 {
			continue
		}
		src[i] = scumm.Nop()
		modded = true
	}
	if modded {
		logrus.Debug("patched map screen's bridge auto-boot script")
	}
}

// fixDamnForestBlock disables the inventory check that normally keeps the
// player out of the forest until they've picked up a map or are stalking
// the storekeeper; once rooms are shuffled this guard no longer protects
// anything meaningful, it just blocks movement.
func fixDamnForestBlock(game *resource.Game) {
	room := game.Rooms[58]
	if room == nil {
		return
	}
	blankGetObjectOwnerCheck(room, 669, 6)
	blankGetObjectOwnerCheck(room, 666, 9)
}

func blankGetObjectOwnerCheck(room *resource.Room, objID int, runLength int) {
	objScript := room.Objects[objID]
	if objScript == nil {
		return
	}
	src := objScript.Verbs[10]
	if src == nil {
		return
	}
	for i, instr := range src {
		if instr.Name != "getObjectOwner" {
			continue
		}
		arg, ok := instr.Args["obj"].(int16)
		if !ok || arg != 449 {
			continue
		}
		if i+runLength > len(src) {
			break
		}
		for k := 0; k < runLength; k++ {
			src[i+k] = scumm.Nop()
		}
		logrus.WithField("object", objID).Debug("patched forest-entry map check")
		break
	}
}
