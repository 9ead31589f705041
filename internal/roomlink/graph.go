package roomlink

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"j5.nz/mi1rando/internal/resource"
)

// roomNode wraps a room id and name so dot.Marshal renders a readable
// label instead of a bare graph id.
type roomNode struct {
	id   int64
	name string
}

func (n roomNode) ID() int64 { return n.id }

// DOTID gives the node a stable, graphviz-safe identifier distinct from
// its display label.
func (n roomNode) DOTID() string { return fmt.Sprintf("room%d", n.id) }

// Attributes supplies the node's DOT label, satisfying
// gonum.org/v1/gonum/graph/encoding.Attributer.
func (n roomNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: fmt.Sprintf("%q", fmt.Sprintf("%d %s", n.id, n.name))}}
}

// BuildGraph renders linkmap as an undirected graph of the rooms it
// connects, one node per room that appears in game.Rooms, labeled with
// that room's display name.
func BuildGraph(game *resource.Game, linkmap map[int]map[int]bool) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()

	roomIDs := make([]int, 0, len(game.Rooms))
	for id := range game.Rooms {
		roomIDs = append(roomIDs, id)
	}
	sort.Ints(roomIDs)

	for _, id := range roomIDs {
		g.AddNode(roomNode{id: int64(id), name: game.Rooms[id].Name})
	}
	for src, targets := range linkmap {
		destIDs := make([]int, 0, len(targets))
		for dest := range targets {
			destIDs = append(destIDs, dest)
		}
		sort.Ints(destIDs)
		for _, dest := range destIDs {
			if src < dest && g.Node(int64(src)) != nil && g.Node(int64(dest)) != nil {
				g.SetEdge(g.NewEdge(g.Node(int64(src)), g.Node(int64(dest))))
			}
		}
	}
	return g
}

// WriteDOT renders g as Graphviz DOT source to w.
func WriteDOT(w io.Writer, g *simple.UndirectedGraph) error {
	data, err := dot.Marshal(g, "rooms", "", "  ")
	if err != nil {
		return errors.Wrap(err, "roomlink: rendering DOT graph")
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "roomlink: writing DOT graph")
}
