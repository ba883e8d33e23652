package status

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/udisondev/elemental/internal/chaos"
	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/event"
	"github.com/udisondev/elemental/internal/spatial"
)

// Per-element tuning.
const (
	FireDPSFactor    = 0.3
	FireTickFactor   = 0.5
	FireTickInterval = 0.5

	IceSlowFactor = 0.3
	MinSlow       = 0.1
	MaxSlow       = 0.9

	BaseChains        = 3
	ChainFalloff      = 0.7
	StunDuration      = 0.3
	DefaultChainRange = 5.0

	PoisonDPSFactor    = 0.2
	PoisonTickInterval = 1.0
	MaxPoisonStacks    = 5
)

// Options wires an engine to its run.
type Options struct {
	Chaos chaos.Source
	Clock Clock
	Area  spatial.Query
	Bus   *event.Bus

	// ChainRadius bounds lightning hops; zero means DefaultChainRange.
	ChainRadius float64
}

type zeroClock struct{}

func (zeroClock) Now() float64 { return 0 }

// Engine owns one target's active effects: at most one State per element.
// Single-threaded; mutated only from the simulation step.
type Engine struct {
	owner  Owner
	states [element.Count]*State

	chaos       chaos.Source
	clock       Clock
	area        spatial.Query
	bus         *event.Bus
	chainRadius float64
}

// NewEngine creates an empty engine for owner.
func NewEngine(owner Owner, opts Options) *Engine {
	e := &Engine{
		owner:       owner,
		chaos:       opts.Chaos,
		clock:       opts.Clock,
		area:        opts.Area,
		bus:         opts.Bus,
		chainRadius: opts.ChainRadius,
	}
	if e.chaos == nil {
		e.chaos = chaos.NewModifier(nil)
	}
	if e.clock == nil {
		e.clock = zeroClock{}
	}
	if e.chainRadius <= 0 {
		e.chainRadius = DefaultChainRange
	}
	return e
}

func (e *Engine) ownerID() uint32 {
	if e.owner == nil {
		return 0
	}
	return e.owner.ID()
}

// Apply starts, refreshes or stacks the descriptor's element.
// No-op for element None or a non-positive amount.
// Multipliers are read from the chaos source now, never at tick time.
func (e *Engine) Apply(d Descriptor) {
	if d.Element == element.None || !d.Element.Valid() || d.Amount <= 0 {
		return
	}
	d = d.normalized()
	now := e.clock.Now()

	switch d.Element {
	case element.Fire:
		e.applyFire(now, d)
	case element.Ice:
		e.applyIce(now, d)
	case element.Lightning:
		e.applyLightning(now, d)
	case element.Poison:
		e.applyPoison(now, d)
	}

	st := e.states[d.Element]
	e.bus.Publish(EffectApplied{TargetID: e.ownerID(), Element: d.Element, Stacks: st.StackCount})
}

func (e *Engine) applyFire(now float64, d Descriptor) {
	dps := d.Amount * FireDPSFactor * e.chaos.FireDamageMultiplier()
	tick := dps * FireTickFactor
	end := now + d.Duration

	if st := e.states[element.Fire]; st != nil {
		st.EndTime = math.Max(st.EndTime, end)
		st.TickDamage = math.Max(st.TickDamage, tick)
		slog.Debug("fire refreshed", "target", e.ownerID(), "tick", st.TickDamage, "end", st.EndTime)
		return
	}

	e.states[element.Fire] = &State{
		Element:      element.Fire,
		StartTime:    now,
		EndTime:      end,
		TickDamage:   tick,
		TickInterval: FireTickInterval,
		NextTickTime: now + FireTickInterval,
		StackCount:   1,
	}
	slog.Debug("fire applied", "target", e.ownerID(), "dps", dps, "tick", tick)
}

func (e *Engine) applyIce(now float64, d Descriptor) {
	slow := clamp(d.Strength*IceSlowFactor*e.chaos.IceSlowMultiplier(), MinSlow, MaxSlow)
	end := now + d.Duration

	if st := e.states[element.Ice]; st != nil {
		st.EndTime = math.Max(st.EndTime, end)
		st.SlowFraction = math.Max(st.SlowFraction, slow)
		slog.Debug("ice refreshed", "target", e.ownerID(), "slow", st.SlowFraction)
		return
	}

	e.states[element.Ice] = &State{
		Element:      element.Ice,
		StartTime:    now,
		EndTime:      end,
		SlowFraction: slow,
		StackCount:   1,
	}
	slog.Debug("ice applied", "target", e.ownerID(), "slow", slow)
}

func (e *Engine) applyLightning(now float64, d Descriptor) {
	e.overwriteStun(now, StunDuration)
	e.chain(now, d.Amount, BaseChains+e.chaos.LightningChainBonus())
}

// overwriteStun replaces any Lightning state unconditionally; no merge.
func (e *Engine) overwriteStun(now, duration float64) {
	e.states[element.Lightning] = &State{
		Element:    element.Lightning,
		StartTime:  now,
		EndTime:    now + duration,
		Stunned:    true,
		StackCount: 1,
	}
}

// chain damages up to maxChains nearby targets, nearest first.
// Hop i deals amount*0.7^(i+1); stunnable hits are stunned without chaining further.
func (e *Engine) chain(now, amount float64, maxChains int) {
	if e.area == nil || e.owner == nil || maxChains <= 0 {
		return
	}
	origin := e.owner.Position()

	var candidates []spatial.Entity
	for _, ent := range e.area.Query(origin, e.chainRadius) {
		if ent.ID() == e.owner.ID() {
			continue
		}
		_, receives := ent.(ChainReceiver)
		if _, ok := ent.(Damageable); !ok && !receives {
			continue
		}
		if sink, ok := ent.(HealthSink); ok && sink.IsDead() {
			continue
		}
		candidates = append(candidates, ent)
	}
	slices.SortFunc(candidates, func(a, b spatial.Entity) int {
		return cmp.Or(
			cmp.Compare(a.Position().DistanceSquared(origin), b.Position().DistanceSquared(origin)),
			cmp.Compare(a.ID(), b.ID()),
		)
	})
	if len(candidates) > maxChains {
		candidates = candidates[:maxChains]
	}

	for hop, ent := range candidates {
		dmg := hopDamage(ent, amount*math.Pow(ChainFalloff, float64(hop+1)))
		if dmg <= 0 {
			continue
		}
		e.bus.Publish(ChainHit{
			SourceID: e.owner.ID(),
			TargetID: ent.ID(),
			Hop:      hop,
			Amount:   dmg,
			Position: ent.Position(),
		})
	}

	if len(candidates) > 0 {
		slog.Debug("lightning chained", "source", e.owner.ID(), "hops", len(candidates), "now", now)
	}
}

// hopDamage lands one hop. A ChainReceiver decides for itself; plain
// targets take the full amount and are stunned if they can be.
func hopDamage(ent spatial.Entity, amount float64) float64 {
	if r, ok := ent.(ChainReceiver); ok {
		return r.ReceiveChain(amount, StunDuration)
	}
	ent.(Damageable).TakeDamage(amount)
	if s, ok := ent.(Stunnable); ok {
		s.Stun(StunDuration)
	}
	return amount
}

func (e *Engine) applyPoison(now float64, d Descriptor) {
	baseDPS := d.Amount * PoisonDPSFactor
	duration := d.Duration * e.chaos.PoisonDurationMultiplier()

	if st := e.states[element.Poison]; st != nil {
		st.StackCount = min(st.StackCount+1, MaxPoisonStacks)
		st.TickDamage = baseDPS * float64(st.StackCount)
		st.EndTime = now + duration
		slog.Debug("poison stacked", "target", e.ownerID(), "stacks", st.StackCount, "tick", st.TickDamage)
		return
	}

	e.states[element.Poison] = &State{
		Element:      element.Poison,
		StartTime:    now,
		EndTime:      now + duration,
		TickDamage:   baseDPS,
		TickInterval: PoisonTickInterval,
		NextTickTime: now + PoisonTickInterval,
		StackCount:   1,
	}
	slog.Debug("poison applied", "target", e.ownerID(), "tick", baseDPS)
}

// Stun overwrites the Lightning state with a plain stun (lightning chain hit).
func (e *Engine) Stun(duration float64) {
	if duration <= 0 {
		return
	}
	e.overwriteStun(e.clock.Now(), duration)
	e.bus.Publish(EffectApplied{TargetID: e.ownerID(), Element: element.Lightning, Stacks: 1})
}

// Advance runs one simulation step: expire finished states, then tick the
// rest at most once each. There is no catch-up: a long frame that spans
// several intervals still yields a single tick.
func (e *Engine) Advance(now float64) {
	sink, _ := e.owner.(HealthSink)
	var expired [element.Count]bool

	for i, st := range e.states {
		if st == nil {
			continue
		}
		if now >= st.EndTime {
			expired[i] = true
			continue
		}
		if st.TickDamage <= 0 || now < st.NextTickTime {
			continue
		}
		st.NextTickTime = now + st.TickInterval
		if sink == nil || sink.IsDead() {
			continue
		}
		sink.TakeDamage(st.TickDamage)
		e.bus.Publish(DamageOverTime{
			TargetID: e.ownerID(),
			Element:  st.Element,
			Amount:   st.TickDamage,
			Position: e.owner.Position(),
		})
	}

	for i, gone := range expired {
		if !gone {
			continue
		}
		e.states[i] = nil
		slog.Debug("effect expired", "target", e.ownerID(), "element", element.Kind(i).String())
		e.bus.Publish(EffectRemoved{TargetID: e.ownerID(), Element: element.Kind(i)})
	}
}

// ClearAll drops every state immediately, without removal events.
func (e *Engine) ClearAll() {
	e.states = [element.Count]*State{}
}

// HasEffect reports whether el is active.
func (e *Engine) HasEffect(el element.Kind) bool {
	return el.Valid() && e.states[el] != nil
}

// SlowFraction is the Ice slow in [0.1, 0.9], or 0 without Ice.
func (e *Engine) SlowFraction() float64 {
	if st := e.states[element.Ice]; st != nil {
		return st.SlowFraction
	}
	return 0
}

// IsStunned reports an active Lightning stun.
func (e *Engine) IsStunned() bool {
	if st := e.states[element.Lightning]; st != nil {
		return st.Stunned
	}
	return false
}

// State returns a copy of the state for el.
func (e *Engine) State(el element.Kind) (State, bool) {
	if !el.Valid() || e.states[el] == nil {
		return State{}, false
	}
	return *e.states[el], true
}

// Snapshot returns copies of all active states in element order.
func (e *Engine) Snapshot() []State {
	out := make([]State, 0, element.Count)
	for _, st := range e.states {
		if st != nil {
			out = append(out, *st)
		}
	}
	return out
}

// ActiveCount returns the number of active states.
func (e *Engine) ActiveCount() int {
	n := 0
	for _, st := range e.states {
		if st != nil {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
