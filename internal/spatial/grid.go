package spatial

import (
	"cmp"
	"math"
	"slices"

	"github.com/udisondev/elemental/internal/geom"
)

// DefaultCellSize is the grid cell edge in arena units.
const DefaultCellSize = 4.0

// Entity is anything that can be found by an area query.
type Entity interface {
	ID() uint32
	Position() geom.Vec2
}

// Query is the narrow lookup used by chain lightning and area combos.
// Results are synchronous, uncached and ordered by ID.
type Query interface {
	Query(center geom.Vec2, radius float64) []Entity
}

type cell struct {
	x, y int32
}

// Grid is a uniform bucket grid over the arena floor.
// Single-threaded, owned by the simulation step.
type Grid struct {
	size    float64
	cells   map[cell][]Entity
	located map[uint32]cell
}

var _ Query = (*Grid)(nil)

// NewGrid creates an empty grid. Non-positive sizes fall back to DefaultCellSize.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		size:    cellSize,
		cells:   make(map[cell][]Entity),
		located: make(map[uint32]cell),
	}
}

func (g *Grid) cellOf(p geom.Vec2) cell {
	return cell{
		x: int32(math.Floor(p.X / g.size)),
		y: int32(math.Floor(p.Y / g.size)),
	}
}

// Insert adds e, or re-buckets it if already present.
func (g *Grid) Insert(e Entity) {
	if _, ok := g.located[e.ID()]; ok {
		g.Update(e)
		return
	}
	c := g.cellOf(e.Position())
	g.cells[c] = append(g.cells[c], e)
	g.located[e.ID()] = c
}

// Update moves e to the cell matching its current position.
func (g *Grid) Update(e Entity) {
	old, ok := g.located[e.ID()]
	if !ok {
		g.Insert(e)
		return
	}
	c := g.cellOf(e.Position())
	if c == old {
		return
	}
	g.removeFromCell(old, e.ID())
	g.cells[c] = append(g.cells[c], e)
	g.located[e.ID()] = c
}

// Remove drops the entity with id. Unknown ids are ignored.
func (g *Grid) Remove(id uint32) {
	c, ok := g.located[id]
	if !ok {
		return
	}
	g.removeFromCell(c, id)
	delete(g.located, id)
}

func (g *Grid) removeFromCell(c cell, id uint32) {
	bucket := g.cells[c]
	for i, e := range bucket {
		if e.ID() == id {
			bucket = slices.Delete(bucket, i, i+1)
			break
		}
	}
	if len(bucket) == 0 {
		delete(g.cells, c)
		return
	}
	g.cells[c] = bucket
}

// Len returns the number of indexed entities.
func (g *Grid) Len() int {
	return len(g.located)
}

// Query returns every entity within radius of center (inclusive), ordered by ID.
func (g *Grid) Query(center geom.Vec2, radius float64) []Entity {
	if radius < 0 {
		return nil
	}
	lo := g.cellOf(geom.V(center.X-radius, center.Y-radius))
	hi := g.cellOf(geom.V(center.X+radius, center.Y+radius))
	r2 := radius * radius

	var out []Entity
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for _, e := range g.cells[cell{x: x, y: y}] {
				if e.Position().DistanceSquared(center) <= r2 {
					out = append(out, e)
				}
			}
		}
	}
	slices.SortFunc(out, func(a, b Entity) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return out
}
