// Package route finds risk-aware paths over a team's traversal grid and
// reduces them to a single next step.
package route

import (
	"container/heap"
	"math"

	"github.com/Garsondee/Flag-Sense/internal/config"
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

// Terrain is the routing view of a map.
type Terrain interface {
	Size() (rows, cols int)
	TraversalAt(c grid.Cell) grid.Traversal
}

// Router runs a fresh A* search per query. It holds only the cost model.
type Router struct {
	cfg config.Router
}

// New creates a router with the given cost model.
func New(cfg config.Router) *Router {
	return &Router{cfg: cfg}
}

// --- A* pathfinding ---

type pathNode struct {
	cell   grid.Cell
	g, f   float64
	seq    int // insertion order, breaks priority ties
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	if ol[i].f != ol[j].f {
		return ol[i].f < ol[j].f
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// Down, Up, Right, Left.
var dirs = [4]grid.Direction{grid.Down, grid.Up, grid.Right, grid.Left}

// stepCost is the price of entering a cell of the given class.
func (r *Router) stepCost(t grid.Traversal) float64 {
	switch t {
	case grid.TravThreatened:
		return r.cfg.ThreatCost()
	case grid.TravUnknown:
		return r.cfg.UnknownCost()
	default:
		return r.cfg.FreeCost
	}
}

// repulsion is the extra priority of standing at c given known enemies. It
// falls off with distance and vanishes beyond FearRadius.
func (r *Router) repulsion(c grid.Cell, enemies []grid.Cell) float64 {
	total := 0.0
	for _, e := range enemies {
		d := c.Dist(e)
		if d > r.cfg.FearRadius {
			continue
		}
		total += r.cfg.Repulsion / (d + 1)
	}
	return total
}

// Path returns the cells from start to goal inclusive, or nil when goal is
// unreachable, equal to start, or the expansion budget runs out.
func (r *Router) Path(t Terrain, start, goal grid.Cell, enemies []grid.Cell) []grid.Cell {
	rows, cols := t.Size()
	in := func(c grid.Cell) bool { return c.Row >= 0 && c.Row < rows && c.Col >= 0 && c.Col < cols }
	if start == goal || !in(start) || !in(goal) {
		return nil
	}

	closed := grid.NewLayer[bool](rows, cols)
	best := grid.NewLayer[*pathNode](rows, cols)

	seq := 0
	startNode := &pathNode{cell: start, f: start.Dist(goal)}
	ol := &openList{startNode}
	heap.Init(ol)
	best.Set(start, startNode)

	expanded := 0
	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cell == goal {
			return buildPath(cur)
		}
		if closed.At(cur.cell) {
			continue
		}
		closed.Set(cur.cell, true)
		expanded++
		if r.cfg.MaxExpansions > 0 && expanded > r.cfg.MaxExpansions {
			return nil
		}

		for _, d := range dirs {
			next := cur.cell.Step(d)
			if !in(next) || closed.At(next) {
				continue
			}
			tr := t.TraversalAt(next)
			if tr == grid.TravBlocked {
				continue
			}
			g := cur.g + r.stepCost(tr)
			if prev := best.At(next); prev != nil && g >= prev.g {
				continue
			}
			seq++
			node := &pathNode{
				cell:   next,
				g:      g,
				f:      g + next.Dist(goal) + r.repulsion(next, enemies),
				seq:    seq,
				parent: cur,
			}
			best.Set(next, node)
			heap.Push(ol, node)
		}
	}
	return nil
}

// Direction returns the first step of the best path from start to goal, or
// grid.None when already there or no path exists.
func (r *Router) Direction(t Terrain, start, goal grid.Cell, enemies []grid.Cell) grid.Direction {
	path := r.Path(t, start, goal, enemies)
	if len(path) < 2 {
		return grid.None
	}
	return grid.Toward(path[0], path[1])
}

// Cost returns the accumulated step cost of a path, excluding the start
// cell. It is +Inf when any step is blocked or not orthogonal.
func (r *Router) Cost(t Terrain, path []grid.Cell) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		tr := t.TraversalAt(path[i])
		if tr == grid.TravBlocked || grid.Toward(path[i-1], path[i]) == grid.None {
			return math.Inf(1)
		}
		total += r.stepCost(tr)
	}
	return total
}

func buildPath(end *pathNode) []grid.Cell {
	var cells []grid.Cell
	for n := end; n != nil; n = n.parent {
		cells = append(cells, n.cell)
	}
	// Reverse
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}
