package roomlink

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"j5.nz/mi1rando/internal/resource"
)

// originRoom is the shuffle's starting point: the docks, the first room
// the player's cluster-reachability walk begins from.
const originRoom = 33

// ShuffleRooms rewires the main-world cluster's walkable connections into
// a new layout: starting from originRoom's hub, it repeatedly grabs an
// unresolved exit, picks a still-unvisited hub room, and swaps that hub's
// exits in for the original exit — feeding the hub's remaining exits back
// into the pool — until every hub has been placed, then hooks any
// leftover loose ends up to dead ends.
func ShuffleRooms(game *resource.Game, rng *rand.Rand) error {
	roomLinks := GenerateRoomLinks(game)
	linkmap := GenerateRoomLinkmap(roomLinks)
	cluster := FindRoomCluster(linkmap, originRoom)
	cluster[originRoom] = true

	hubs := map[int]map[int]bool{}
	deadEnds := map[int]map[int]bool{}
	for room, targets := range linkmap {
		if !cluster[room] {
			continue
		}
		switch {
		case len(targets) > 1:
			hubs[room] = cloneSet(targets)
		case len(targets) == 1:
			deadEnds[room] = cloneSet(targets)
		}
	}

	startHub, ok := hubs[originRoom]
	if !ok {
		return errors.Errorf("roomlink: origin room %d is not a hub in its own cluster", originRoom)
	}
	delete(hubs, originRoom)

	type linkPair [2]int
	pending := map[linkPair]bool{}
	for dest := range startHub {
		pending[linkPair{originRoom, dest}] = true
	}

	for len(pending) > 0 {
		origLink := popRandom(pending, rng)

		if len(hubs) > 0 {
			hubID := pickRandomKey(hubs, rng)
			hub := hubs[hubID]
			delete(hubs, hubID)

			hubLinks := make([]linkPair, 0, len(hub))
			for h := range hub {
				hubLinks = append(hubLinks, linkPair{hubID, h})
			}
			sort.Slice(hubLinks, func(i, j int) bool { return hubLinks[i][1] < hubLinks[j][1] })

			var kept []linkPair
			for _, hl := range hubLinks {
				reverse := linkPair{hl[1], hl[0]}
				if isUnusable(hl[1], hl[0]) || reverse == origLink {
					pending[hl] = true
					continue
				}
				kept = append(kept, hl)
			}
			if len(kept) == 0 {
				continue
			}
			newLinkIdx := rng.Intn(len(kept))
			newLink := kept[newLinkIdx]
			kept = append(kept[:newLinkIdx], kept[newLinkIdx+1:]...)
			newLink = linkPair{newLink[1], newLink[0]}

			if err := SwapRoomLinksHalf(game, origLink, newLink, roomLinks); err != nil {
				return err
			}
			for _, hl := range kept {
				pending[hl] = true
			}
		} else {
			if len(deadEnds) == 0 {
				return errors.New("roomlink: ran out of dead ends to close off the remaining exits")
			}
			deadEndID := pickRandomKey(deadEnds, rng)
			deadEnd := deadEnds[deadEndID]
			delete(deadEnds, deadEndID)
			target := popSetMember(deadEnd, rng)
			newLink := linkPair{target, deadEndID}

			if err := SwapRoomLinksHalf(game, origLink, newLink, roomLinks); err != nil {
				return err
			}
		}
	}

	logrus.Info("shuffled main-world room connections")
	return nil
}

func cloneSet(in map[int]bool) map[int]bool {
	out := make(map[int]bool, len(in))
	for k := range in {
		out[k] = true
	}
	return out
}

func popRandom[K comparable](m map[K]bool, rng *rand.Rand) K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return anyLess(keys[i], keys[j]) })
	k := keys[rng.Intn(len(keys))]
	delete(m, k)
	return k
}

func pickRandomKey[V any](m map[int]V, rng *rand.Rand) int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys[rng.Intn(len(keys))]
}

func popSetMember(m map[int]bool, rng *rand.Rand) int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	v := keys[rng.Intn(len(keys))]
	delete(m, v)
	return v
}

// anyLess orders two comparable values that happen to both be [2]int link
// pairs, giving popRandom a deterministic iteration order so the same rng
// stream always produces the same shuffle.
func anyLess[K comparable](a, b K) bool {
	pa, pb := any(a).([2]int), any(b).([2]int)
	if pa[0] != pb[0] {
		return pa[0] < pb[0]
	}
	return pa[1] < pb[1]
}
