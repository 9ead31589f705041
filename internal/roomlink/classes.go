// Package roomlink extracts the inter-room walking connections encoded in
// each room's object verbs and local scripts, classifies rooms by the kind
// of screen they are, and rewires those connections into a shuffled map.
package roomlink

// RoomClass names the handful of room kinds the room table classifies:
// closeups and card screens are excluded from link discovery entirely
// (their "room" literals are UI state, not a walkable destination), and
// the rest, map screens included, describe the overworld's general shape
// and get no special handling during link discovery or shuffling.
type RoomClass string

const (
	ClassCard     RoomClass = "card"
	ClassMap      RoomClass = "map"
	ClassOutdoors RoomClass = "outdoors"
	ClassIndoors  RoomClass = "indoors"
	ClassCloseup  RoomClass = "closeup"
	ClassBeach    RoomClass = "beach"
)

// RoomClasses mirrors the original shuffler's hand-classified room table.
// Rooms absent from every set are ordinary walkable overworld screens with
// no special handling.
var RoomClasses = map[RoomClass]map[int]bool{
	ClassCard: setOf(90, 96, 10, 97, 98, 95, 94),
	ClassMap:  setOf(63, 85, 2, 3, 4, 5, 6),
	ClassOutdoors: setOf(
		38, 33, 61, 35, 32, 34, 57, 36, 59, 58, 43, 52, 48, 64, 15, 19, 17, 12,
		69, 21, 18, 11, 16, 40, 25, 80,
	),
	ClassIndoors: setOf(
		28, 41, 29, 53, 31, 30, 78, 7, 8, 9, 14, 65, 70, 39, 71, 72, 73, 74,
		75, 77, 27,
	),
	ClassCloseup: setOf(
		44, 83, 42, 79, 82, 81, 23, 45, 89, 62, 49, 60, 76, 88, 51, 37, 50,
		84, 87, 86,
	),
	ClassBeach: setOf(20, 1),
}

// RoomCluster names the three disconnected overworld landmasses the game's
// fast-travel map screen jumps between.
type RoomCluster string

const (
	ClusterMelee  RoomCluster = "melee"
	ClusterShip   RoomCluster = "ship"
	ClusterMonkey RoomCluster = "monkey"
)

// RoomClusters mirrors the original shuffler's MI1EGA_ROOM_CLUSTER table.
var RoomClusters = map[RoomCluster]map[int]bool{
	ClusterMelee: setOf(
		63, 85, 38, 33, 61, 35, 32, 34, 57, 36, 59, 58, 43, 52, 48, 64, 28,
		41, 29, 53, 31, 30, 78, 44, 83, 42, 79, 82, 81, 23, 45, 89, 62, 49,
		60, 76, 88, 51, 37, 50, 15,
	),
	ClusterShip: setOf(7, 8, 9, 14, 19, 17, 84, 87),
	ClusterMonkey: setOf(
		12, 69, 65, 70, 39, 71, 72, 73, 74, 75, 77, 20, 1, 2, 3, 4, 5, 6, 21,
		18, 11, 16, 40, 25, 27, 80,
	),
}

// UnusableRoomLinks lists (src, dest) room pairs that must never be chosen
// as a shuffle target even though they are structurally valid links, e.g.
// because the destination script does something src-specific that would
// misbehave from anywhere else.
var UnusableRoomLinks = [][2]int{
	{53, 36}, // foyer -> mansion-e
}

func setOf(ids ...int) map[int]bool {
	out := make(map[int]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// classOf reports the class a room belongs to, and whether it belongs to
// any classified set at all.
func classOf(roomID int) (RoomClass, bool) {
	for class, ids := range RoomClasses {
		if ids[roomID] {
			return class, true
		}
	}
	return "", false
}

func isUnusable(src, dest int) bool {
	for _, pair := range UnusableRoomLinks {
		if pair[0] == src && pair[1] == dest {
			return true
		}
	}
	return false
}
