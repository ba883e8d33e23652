package combat

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/elemental/internal/chaos"
	"github.com/udisondev/elemental/internal/combo"
	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/event"
	"github.com/udisondev/elemental/internal/geom"
	"github.com/udisondev/elemental/internal/model"
	"github.com/udisondev/elemental/internal/resistance"
	"github.com/udisondev/elemental/internal/spatial"
	"github.com/udisondev/elemental/internal/status"
)

// ErrUnitNotFound is returned for ids that are not registered.
var ErrUnitNotFound = errors.New("unit not found")

// Options tune a combat context.
type Options struct {
	Combo       combo.Config
	ChainRadius float64
	CellSize    float64
}

// DefaultOptions returns the stock combo tuning, chain range and grid cell.
func DefaultOptions() Options {
	return Options{
		Combo:       combo.DefaultConfig(),
		ChainRadius: status.DefaultChainRange,
		CellSize:    spatial.DefaultCellSize,
	}
}

// Context is the per-run combat state passed explicitly to weapons and
// projectiles: chaos modifier, clock, event bus, spatial index, combo
// resolver and the registry of per-target units.
// Single-threaded; every call runs to completion inside the current step.
type Context struct {
	bus    *event.Bus
	chaos  *chaos.Modifier
	clock  *Clock
	grid   *spatial.Grid
	combos *combo.Resolver
	opts   Options

	units  map[uint32]*Unit
	order  []uint32
	nextID uint32
}

// New creates an empty run. A nil bus is replaced by a fresh one.
func New(bus *event.Bus, opts Options) *Context {
	if bus == nil {
		bus = event.NewBus()
	}
	grid := spatial.NewGrid(opts.CellSize)
	return &Context{
		bus:    bus,
		chaos:  chaos.NewModifier(bus),
		clock:  &Clock{},
		grid:   grid,
		combos: combo.NewResolver(opts.Combo, grid, bus),
		opts:   opts,
		units:  make(map[uint32]*Unit),
	}
}

func (c *Context) Bus() *event.Bus        { return c.bus }
func (c *Context) Chaos() *chaos.Modifier { return c.chaos }
func (c *Context) Clock() *Clock          { return c.clock }
func (c *Context) Now() float64           { return c.clock.Now() }

// ChooseModifier sets the run modifier at run start. random picks one of the
// four real modifiers from rng; otherwise k is used as is.
func (c *Context) ChooseModifier(k chaos.Kind, random bool, rng *rand.Rand) chaos.Kind {
	if random && rng != nil {
		return c.chaos.Randomize(rng)
	}
	c.chaos.Set(k)
	return k
}

// Spawn registers a new unit built from tmpl at pos.
func (c *Context) Spawn(tmpl model.Template, pos geom.Vec2) (*Unit, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("spawning unit: %w", err)
	}

	c.nextID++
	u := &Unit{
		enemy:    model.NewEnemy(c.nextID, tmpl, pos),
		template: tmpl.Name,
		ctx:      c,
	}
	u.resistance = resistance.NewProfile(u, c.bus, tmpl.Resistances...)
	u.effects = status.NewEngine(u, status.Options{
		Chaos:       c.chaos,
		Clock:       c.clock,
		Area:        c.grid,
		Bus:         c.bus,
		ChainRadius: c.opts.ChainRadius,
	})

	c.units[u.ID()] = u
	c.order = append(c.order, u.ID())
	c.grid.Insert(u)

	slog.Debug("unit spawned", "id", u.ID(), "template", tmpl.Name, "x", pos.X, "y", pos.Y)
	return u, nil
}

// Despawn removes a unit from the registry and the spatial index.
func (c *Context) Despawn(id uint32) bool {
	u, ok := c.units[id]
	if !ok {
		return false
	}
	u.effects.ClearAll()
	delete(c.units, id)
	c.grid.Remove(id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Unit looks up a registered unit.
func (c *Context) Unit(id uint32) (*Unit, bool) {
	u, ok := c.units[id]
	return u, ok
}

// Units returns registered units in spawn order.
func (c *Context) Units() []*Unit {
	out := make([]*Unit, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.units[id])
	}
	return out
}

// Alive counts units with health left.
func (c *Context) Alive() int {
	n := 0
	for _, id := range c.order {
		if !c.units[id].IsDead() {
			n++
		}
	}
	return n
}

// HitResult describes what one elemental hit did.
type HitResult struct {
	Damage  float64
	Combos  []combo.Kind
	Applied bool
}

// Hit resolves one elemental hit on a unit: resistance, direct damage,
// combo check against the pre-application state, then Apply.
// A zero post-resistance amount stops the pipeline.
func (c *Context) Hit(id uint32, el element.Kind, amount float64) (HitResult, error) {
	u, ok := c.units[id]
	if !ok {
		return HitResult{}, fmt.Errorf("hitting unit %d: %w", id, ErrUnitNotFound)
	}
	return c.HitUnit(u, status.NewDescriptor(el, amount)), nil
}

// HitUnit is Hit with a full descriptor, for weapons that set duration or strength.
func (c *Context) HitUnit(u *Unit, d status.Descriptor) HitResult {
	if u.IsDead() {
		return HitResult{}
	}

	d.Amount = u.resistance.ModifyDamage(d.Amount, d.Element)
	if d.Amount <= 0 {
		return HitResult{}
	}
	u.TakeDamage(d.Amount)

	res := HitResult{Damage: d.Amount}
	if d.Element == element.None {
		return res
	}
	res.Combos = c.combos.Check(u, d.Element, d.Amount)
	u.effects.Apply(d)
	res.Applied = true
	return res
}

// Step advances the clock by dt and runs Advance once per unit.
// While paused the clock holds and ticks stay frozen.
func (c *Context) Step(dt float64) {
	now := c.clock.Advance(dt)
	for _, id := range c.order {
		c.units[id].effects.Advance(now)
	}
}

func (c *Context) Pause()  { c.clock.Pause() }
func (c *Context) Resume() { c.clock.Resume() }

// Reset wipes every unit's effects without removal events and revives it.
func (c *Context) Reset() {
	for _, id := range c.order {
		u := c.units[id]
		u.effects.ClearAll()
		u.enemy.Revive()
	}
}

// Clear despawns every unit, for the next wave.
func (c *Context) Clear() {
	for _, id := range append([]uint32(nil), c.order...) {
		c.Despawn(id)
	}
}

// EffectiveSpeed returns the unit's move speed after stun and slow.
func (c *Context) EffectiveSpeed(id uint32) (float64, error) {
	u, ok := c.units[id]
	if !ok {
		return 0, fmt.Errorf("speed of unit %d: %w", id, ErrUnitNotFound)
	}
	return u.EffectiveSpeed(), nil
}
